package visual

import (
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/agiangrant/toolkit/text"
)

// GradientUnits selects the space gradient coordinates are given in.
type GradientUnits uint8

const (
	// ObjectBoundingBox coordinates run from -0.5 to 0.5 across the control.
	ObjectBoundingBox GradientUnits = iota
	// UserSpace coordinates are pixels.
	UserSpace
)

// SpreadMethod selects what is drawn outside the gradient vector.
type SpreadMethod uint8

const (
	SpreadPad SpreadMethod = iota
	SpreadReflect
	SpreadRepeat
)

// GradientStop is one color stop. Offset is in [0, 1].
type GradientStop struct {
	Offset float32
	Color  colorful.Color
}

// GradientVisual fills the control with a linear or radial gradient.
type GradientVisual struct {
	Base
	noHooks

	radial bool
	start  text.Vector2
	end    text.Vector2
	center text.Vector2
	radius float32
	stops  []GradientStop
	units  GradientUnits
	spread SpreadMethod
}

// NewGradient creates a gradient visual. A center and radius make it
// radial, otherwise it runs from startPosition to endPosition. Without
// stops it fades from black to white.
func NewGradient(props PropertyMap) *GradientVisual {
	v := &GradientVisual{
		start: text.Vector2{X: -0.5, Y: -0.5},
		end:   text.Vector2{X: 0.5, Y: 0.5},
	}
	v.init(v, v, Gradient, props)

	if c, ok := props.Vector2(KeyCenter); ok {
		if r, ok := props.Float(KeyRadius); ok {
			v.radial, v.center, v.radius = true, c, r
		}
	}
	if p, ok := props.Vector2(KeyStartPosition); ok {
		v.start = p
	}
	if p, ok := props.Vector2(KeyEndPosition); ok {
		v.end = p
	}
	if s, ok := props.String(KeyUnits); ok && strings.EqualFold(s, "USER_SPACE") {
		v.units = UserSpace
	}
	if s, ok := props.String(KeySpreadMethod); ok {
		switch strings.ToUpper(s) {
		case "REFLECT":
			v.spread = SpreadReflect
		case "REPEAT":
			v.spread = SpreadRepeat
		}
	}
	v.stops = parseStops(props)
	return v
}

func parseStops(props PropertyMap) []GradientStop {
	colors, ok := props.Colors(KeyStopColor)
	if !ok || len(colors) == 0 {
		return []GradientStop{
			{Offset: 0, Color: colorful.Color{}},
			{Offset: 1, Color: colorful.Color{R: 1, G: 1, B: 1}},
		}
	}
	offsets, _ := props.Floats(KeyStopOffset)
	stops := make([]GradientStop, len(colors))
	for i, c := range colors {
		var off float32
		switch {
		case i < len(offsets):
			off = offsets[i]
		case len(colors) > 1:
			off = float32(i) / float32(len(colors)-1)
		}
		stops[i] = GradientStop{Offset: min(max(off, 0), 1), Color: c}
	}
	sort.SliceStable(stops, func(a, b int) bool { return stops[a].Offset < stops[b].Offset })
	return stops
}

// IsRadial reports whether the gradient is radial.
func (v *GradientVisual) IsRadial() bool { return v.radial }

// Stops returns the color stops sorted by offset.
func (v *GradientVisual) Stops() []GradientStop { return v.stops }

// ColorAt returns the gradient color at position t along the gradient
// vector, after applying the spread method. Colors are blended in Lab.
func (v *GradientVisual) ColorAt(t float32) colorful.Color {
	t = v.applySpread(t)
	first, last := v.stops[0], v.stops[len(v.stops)-1]
	if t <= first.Offset {
		return first.Color
	}
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(v.stops); i++ {
		a, b := v.stops[i-1], v.stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return a.Color.BlendLab(b.Color, float64((t-a.Offset)/span)).Clamped()
	}
	return last.Color
}

// Sample returns the color at point p, given in the gradient's units.
func (v *GradientVisual) Sample(p text.Vector2) colorful.Color {
	if v.radial {
		if v.radius <= 0 {
			return v.ColorAt(1)
		}
		d := p.Sub(v.center)
		return v.ColorAt(math32.Hypot(d.X, d.Y) / v.radius)
	}
	dir := v.end.Sub(v.start)
	lenSq := dir.X*dir.X + dir.Y*dir.Y
	if lenSq == 0 {
		return v.ColorAt(0)
	}
	rel := p.Sub(v.start)
	return v.ColorAt((rel.X*dir.X + rel.Y*dir.Y) / lenSq)
}

// SamplePixel returns the color at pixel p of a control of the given size.
func (v *GradientVisual) SamplePixel(p, size text.Vector2) colorful.Color {
	if v.units == ObjectBoundingBox && size.X > 0 && size.Y > 0 {
		p = text.Vector2{X: p.X/size.X - 0.5, Y: p.Y/size.Y - 0.5}
	}
	return v.Sample(p)
}

func (v *GradientVisual) applySpread(t float32) float32 {
	switch v.spread {
	case SpreadRepeat:
		t -= math32.Floor(t)
	case SpreadReflect:
		t = math32.Mod(math32.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
	}
	return t
}

func (v *GradientVisual) doSetOnScene() {
	v.resourceReady(Ready)
}

func (v *GradientVisual) doCreatePropertyMap(m PropertyMap) {
	if v.radial {
		m[KeyCenter] = []any{float64(v.center.X), float64(v.center.Y)}
		m[KeyRadius] = float64(v.radius)
	} else {
		m[KeyStartPosition] = []any{float64(v.start.X), float64(v.start.Y)}
		m[KeyEndPosition] = []any{float64(v.end.X), float64(v.end.Y)}
	}
	offsets := make([]any, len(v.stops))
	colors := make([]any, len(v.stops))
	for i, s := range v.stops {
		offsets[i] = float64(s.Offset)
		colors[i] = FormatColor(s.Color)
	}
	m[KeyStopOffset] = offsets
	m[KeyStopColor] = colors
	if v.units == UserSpace {
		m[KeyUnits] = "USER_SPACE"
	}
	switch v.spread {
	case SpreadReflect:
		m[KeySpreadMethod] = "REFLECT"
	case SpreadRepeat:
		m[KeySpreadMethod] = "REPEAT"
	}
}
