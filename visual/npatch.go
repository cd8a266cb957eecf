package visual

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/agiangrant/toolkit/text"
)

// StretchRange is a run of stretchable pixels, End exclusive.
type StretchRange struct {
	Start, End int
}

// NPatchVisual draws an image whose borders keep their size while the
// marked middle regions stretch. Nine-patch files (.9.png, .#.png) carry
// the marks in a one pixel frame; plain images take them from the border
// property as left, right, top, bottom.
type NPatchVisual struct {
	Base

	loader     *Loader
	url        string
	border     [4]int
	borderOnly bool

	img      image.Image
	stretchX []StretchRange
	stretchY []StretchRange
	content  image.Rectangle
	load     pending
}

// NewNPatch creates an n-patch visual.
func NewNPatch(props PropertyMap, loader *Loader) *NPatchVisual {
	v := &NPatchVisual{loader: loader}
	v.init(v, v, NPatch, props)
	v.url, _ = props.String(KeyURL)
	if b, ok := props.Floats(KeyBorder); ok && len(b) == 4 {
		for i := range b {
			v.border[i] = int(b[i])
		}
	}
	v.borderOnly, _ = props.Bool(KeyBorderOnly)
	return v
}

// IsNinePatchURL reports whether u names a nine-patch file.
func IsNinePatchURL(u string) bool {
	u = strings.ToLower(u)
	return strings.HasSuffix(u, ".9.png") || strings.HasSuffix(u, ".#.png")
}

// Image returns the image without its marker frame, nil until ready.
func (v *NPatchVisual) Image() image.Image { return v.img }

// StretchX returns the horizontally stretchable column ranges.
func (v *NPatchVisual) StretchX() []StretchRange { return v.stretchX }

// StretchY returns the vertically stretchable row ranges.
func (v *NPatchVisual) StretchY() []StretchRange { return v.stretchY }

// Content returns the region content is placed in.
func (v *NPatchVisual) Content() image.Rectangle { return v.content }

// NaturalSize returns the image size without the marker frame.
func (v *NPatchVisual) NaturalSize() text.Vector2 {
	if v.img == nil {
		return v.Base.NaturalSize()
	}
	b := v.img.Bounds()
	return text.Vector2{X: float32(b.Dx()), Y: float32(b.Dy())}
}

func (v *NPatchVisual) doSetOnScene() {
	if v.img != nil {
		v.resourceReady(Ready)
		return
	}
	if v.loader == nil || v.url == "" {
		v.resourceReady(Failed)
		return
	}
	req := ImageRequest{URL: v.url}
	if img, ok := v.loader.CachedImage(req); ok {
		v.apply(img)
		return
	}
	ctx, gen := v.load.start()
	v.loader.LoadImage(ctx, req, func(img image.Image, err error) {
		if !v.load.current(gen) || !v.onScene {
			return
		}
		if err != nil {
			v.resourceReady(Failed)
			return
		}
		v.apply(img)
	})
}

func (v *NPatchVisual) apply(img image.Image) {
	if IsNinePatchURL(v.url) {
		v.parseNinePatch(img)
	} else {
		v.img = img
		b := img.Bounds()
		l, r, t, btm := v.border[0], v.border[1], v.border[2], v.border[3]
		v.stretchX = []StretchRange{{Start: l, End: max(l, b.Dx()-r)}}
		v.stretchY = []StretchRange{{Start: t, End: max(t, b.Dy()-btm)}}
		v.content = image.Rect(l, t, b.Dx()-r, b.Dy()-btm)
	}
	v.resourceReady(Ready)
}

// parseNinePatch reads the marks from the frame of img: the top and left
// rows give the stretch ranges, the bottom and right rows the content.
func (v *NPatchVisual) parseNinePatch(img image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		v.img = img
		v.content = image.Rect(0, 0, w, h)
		return
	}
	marked := func(x, y int) bool {
		r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return a > 0x8000 && r < 0x8000 && g < 0x8000 && bl < 0x8000
	}
	v.stretchX = markedRanges(w-2, func(i int) bool { return marked(i+1, 0) })
	v.stretchY = markedRanges(h-2, func(i int) bool { return marked(0, i+1) })

	v.content = image.Rect(0, 0, w-2, h-2)
	if cx := markedRanges(w-2, func(i int) bool { return marked(i+1, h-1) }); len(cx) > 0 {
		v.content.Min.X, v.content.Max.X = cx[0].Start, cx[len(cx)-1].End
	}
	if cy := markedRanges(h-2, func(i int) bool { return marked(w-1, i+1) }); len(cy) > 0 {
		v.content.Min.Y, v.content.Max.Y = cy[0].Start, cy[len(cy)-1].End
	}
	v.img = imaging.Crop(img, image.Rect(b.Min.X+1, b.Min.Y+1, b.Max.X-1, b.Max.Y-1))
}

func markedRanges(n int, marked func(i int) bool) []StretchRange {
	var out []StretchRange
	start := -1
	for i := 0; i <= n; i++ {
		on := i < n && marked(i)
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			out = append(out, StretchRange{Start: start, End: i})
			start = -1
		}
	}
	return out
}

func (v *NPatchVisual) doSetOffScene() {
	v.load.stop()
}

func (v *NPatchVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyURL] = v.url
	if v.border != [4]int{} {
		m[KeyBorder] = []any{int64(v.border[0]), int64(v.border[1]), int64(v.border[2]), int64(v.border[3])}
	}
	if v.borderOnly {
		m[KeyBorderOnly] = true
	}
}

func (v *NPatchVisual) doCreateInstancePropertyMap(PropertyMap) {}
