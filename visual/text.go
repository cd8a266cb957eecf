package visual

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
)

// TextVisual draws read-only text laid out by a text controller.
type TextVisual struct {
	Base
	noHooks

	ctrl      *controller.Controller
	text      string
	color     colorful.Color
	multiLine bool
	align     text.HorizontalAlignment
}

var alignNames = map[string]text.HorizontalAlignment{
	"BEGIN":  text.AlignBegin,
	"CENTER": text.AlignCenter,
	"END":    text.AlignEnd,
}

// NewText creates a text visual using fonts, or a default font client when
// nil.
func NewText(props PropertyMap, fonts *text.FontClient) *TextVisual {
	v := &TextVisual{}
	v.init(v, v, Text, props)

	config := controller.DefaultConfig()
	if c, ok := props.Color(KeyTextColor); ok {
		v.color = c
		config.TextColor = c
	}
	if b, ok := props.Bool(KeyMultiLine); ok && b {
		v.multiLine = true
		config.Layout = text.MultiLineBox
	}
	if s, ok := props.String(KeyHorizontalAlignment); ok {
		if a, ok := alignNames[strings.ToUpper(s)]; ok {
			v.align = a
			config.HorizontalAlignment = a
		}
	}
	v.ctrl = controller.New(nil, fonts, config)
	v.text, _ = props.String(KeyText)
	v.ctrl.SetText(v.text)
	return v
}

// Text returns the text drawn.
func (v *TextVisual) Text() string { return v.text }

// SetText replaces the text drawn.
func (v *TextVisual) SetText(s string) {
	v.text = s
	v.ctrl.SetText(s)
}

// Controller returns the controller holding the text models, for renderers.
func (v *TextVisual) Controller() *controller.Controller { return v.ctrl }

// NaturalSize returns the size of the text laid out on one line per
// paragraph.
func (v *TextVisual) NaturalSize() text.Vector2 {
	return v.ctrl.NaturalSize()
}

// HeightForWidth returns the height of the text laid out in width.
func (v *TextVisual) HeightForWidth(width float32) float32 {
	return v.ctrl.HeightForWidth(width)
}

// Relayout lays the text out in size.
func (v *TextVisual) Relayout(size text.Vector2) {
	v.ctrl.Relayout(size)
}

func (v *TextVisual) doSetOnScene() {
	v.resourceReady(Ready)
}

func (v *TextVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyText] = v.text
	m[KeyTextColor] = FormatColor(v.color)
	if v.multiLine {
		m[KeyMultiLine] = true
	}
	for name, a := range alignNames {
		if a == v.align && a != text.AlignBegin {
			m[KeyHorizontalAlignment] = name
		}
	}
}
