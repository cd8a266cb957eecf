package visual

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
)

// SVGHeader is the sizing information of an svg document's root element.
type SVGHeader struct {
	Width   float32
	Height  float32
	ViewBox [4]float32
	HasView bool
}

// Size returns the document size: width and height when given, else the
// view box size.
func (h SVGHeader) Size() text.Vector2 {
	w, ht := h.Width, h.Height
	if w <= 0 && h.HasView {
		w = h.ViewBox[2]
	}
	if ht <= 0 && h.HasView {
		ht = h.ViewBox[3]
	}
	return text.Vector2{X: w, Y: ht}
}

// ParseSVGHeader reads the root svg element of data.
func ParseSVGHeader(data []byte) (SVGHeader, error) {
	var h SVGHeader
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return h, errors.New("failed to parse svg: no svg element")
		}
		if err != nil {
			return h, errors.Wrap(err, "failed to parse svg")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return h, errors.Errorf("failed to parse svg: root element is %q", start.Name.Local)
		}
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				h.Width = parseLength(attr.Value)
			case "height":
				h.Height = parseLength(attr.Value)
			case "viewBox":
				fields := strings.FieldsFunc(attr.Value, func(r rune) bool { return r == ' ' || r == ',' })
				if len(fields) != 4 {
					continue
				}
				for i, f := range fields {
					h.ViewBox[i] = parseLength(f)
				}
				h.HasView = true
			}
		}
		return h, nil
	}
}

// parseLength reads a number with an optional px unit. Percentages and
// other units give zero.
func parseLength(s string) float32 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// SVGVisual draws a vector image. Only the document size is read; the
// renderer rasterizes the document.
type SVGVisual struct {
	Base

	loader *Loader
	url    string
	data   []byte
	header SVGHeader
	load   pending
}

// NewSVG creates an svg visual.
func NewSVG(props PropertyMap, loader *Loader) *SVGVisual {
	v := &SVGVisual{loader: loader}
	v.init(v, v, SVG, props)
	v.url, _ = props.String(KeyURL)
	return v
}

// Document returns the svg source, nil until ready.
func (v *SVGVisual) Document() []byte { return v.data }

// Header returns the parsed document size information.
func (v *SVGVisual) Header() SVGHeader { return v.header }

// NaturalSize returns the document size.
func (v *SVGVisual) NaturalSize() text.Vector2 {
	if v.data == nil {
		return v.Base.NaturalSize()
	}
	return v.header.Size()
}

func (v *SVGVisual) doSetOnScene() {
	if v.data != nil {
		v.resourceReady(Ready)
		return
	}
	if v.loader == nil || v.url == "" {
		v.resourceReady(Failed)
		return
	}
	ctx, gen := v.load.start()
	v.loader.LoadData(ctx, v.url, func(data []byte, err error) {
		if !v.load.current(gen) || !v.onScene {
			return
		}
		v.apply(data, err)
	})
}

func (v *SVGVisual) apply(data []byte, err error) {
	if err == nil {
		v.header, err = ParseSVGHeader(data)
	}
	if err != nil {
		v.loader.log.Warn("svg rejected", zap.String("url", v.url), zap.Error(err))
		v.resourceReady(Failed)
		return
	}
	v.data = data
	v.resourceReady(Ready)
}

func (v *SVGVisual) doSetOffScene() {
	v.load.stop()
}

func (v *SVGVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyURL] = v.url
}

func (v *SVGVisual) doCreateInstancePropertyMap(PropertyMap) {}
