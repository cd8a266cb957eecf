package visual

import "github.com/lucasb-eyer/go-colorful"

// ColorVisual fills the control with a solid color.
type ColorVisual struct {
	Base
	noHooks

	color colorful.Color
	alpha float32
}

// NewColor creates a color visual. mixColor is the fill color.
func NewColor(props PropertyMap) *ColorVisual {
	v := &ColorVisual{alpha: 1}
	v.init(v, v, Color, props)
	if c, a, ok := props.ColorAlpha(KeyMixColor); ok {
		v.color, v.alpha = c, a
	}
	return v
}

// FillColor returns the fill color and its alpha.
func (v *ColorVisual) FillColor() (colorful.Color, float32) {
	return v.color, v.alpha
}

func (v *ColorVisual) doSetOnScene() {
	v.resourceReady(Ready)
}

func (v *ColorVisual) doCreatePropertyMap(m PropertyMap) {
	if v.alpha != 1 {
		m[KeyMixColor] = []any{v.color.R, v.color.G, v.color.B, float64(v.alpha)}
		return
	}
	m[KeyMixColor] = FormatColor(v.color)
}

// BorderVisual draws an outline along the control edges.
type BorderVisual struct {
	Base
	noHooks

	color        colorful.Color
	size         float32
	antiAliasing bool
}

// NewBorder creates a border visual.
func NewBorder(props PropertyMap) *BorderVisual {
	v := &BorderVisual{}
	v.init(v, v, Border, props)
	if c, ok := props.Color(KeyBorderColor); ok {
		v.color = c
	}
	if s, ok := props.Float(KeyBorderSize); ok && s > 0 {
		v.size = s
	}
	v.antiAliasing, _ = props.Bool(KeyAntiAliasing)
	return v
}

// BorderColor returns the outline color.
func (v *BorderVisual) BorderColor() colorful.Color { return v.color }

// BorderSize returns the outline width in pixels.
func (v *BorderVisual) BorderSize() float32 { return v.size }

func (v *BorderVisual) doSetOnScene() {
	v.resourceReady(Ready)
}

func (v *BorderVisual) doCreatePropertyMap(m PropertyMap) {
	m[KeyBorderColor] = FormatColor(v.color)
	m[KeyBorderSize] = float64(v.size)
	if v.antiAliasing {
		m[KeyAntiAliasing] = true
	}
}
