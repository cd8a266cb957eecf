package visual

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/toolkit/text"
)

type recorder struct {
	ready  []Visual
	events []int
}

func (r *recorder) ResourceReady(v Visual)             { r.ready = append(r.ready, v) }
func (r *recorder) NotifyVisualEvent(_ Visual, id int) { r.events = append(r.events, id) }

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"COLOR", Color, true},
		{"color", Color, true},
		{" n_patch ", NPatch, true},
		{"ANIMATED_IMAGE", AnimatedImage, true},
		{"SPARKLES", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseType(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.want, mustParse(t, got.String()))
			}
		})
	}
}

func mustParse(t *testing.T, s string) Type {
	t.Helper()
	typ, ok := ParseType(s)
	require.True(t, ok, s)
	return typ
}

func TestParsePropertyMap(t *testing.T) {
	m, err := ParsePropertyMap([]byte(`
visualType = "GRADIENT"
opacity = 0.5
desiredWidth = 64
startPosition = [-0.5, 0]
stopColor = ["#ff0000", [0.0, 0.0, 1.0]]
url = ["a.png", "b.png"]

[transform]
offset = [10, 20]
size = [100, 50]
`))
	require.NoError(t, err)

	s, ok := m.String(KeyVisualType)
	assert.True(t, ok)
	assert.Equal(t, "GRADIENT", s)

	f, ok := m.Float(KeyOpacity)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, f, 1e-6)

	n, ok := m.Int(KeyDesiredWidth)
	assert.True(t, ok)
	assert.Equal(t, 64, n)

	p, ok := m.Vector2(KeyStartPosition)
	assert.True(t, ok)
	assert.Equal(t, text.Vector2{X: -0.5, Y: 0}, p)

	colors, ok := m.Colors(KeyStopColor)
	require.True(t, ok)
	require.Len(t, colors, 2)
	assert.Equal(t, colorful.Color{R: 1}, colors[0])
	assert.Equal(t, colorful.Color{B: 1}, colors[1])

	urls, ok := m.Strings(KeyURL)
	assert.True(t, ok)
	assert.Equal(t, []string{"a.png", "b.png"}, urls)

	tm, ok := m.Map(KeyTransform)
	require.True(t, ok)
	assert.Equal(t, Transform{
		Offset: text.Vector2{X: 10, Y: 20},
		Size:   text.Vector2{X: 100, Y: 50},
	}, ParseTransform(tm))

	_, err = ParsePropertyMap([]byte("visualType = "))
	assert.Error(t, err)
}

func TestColorAlpha(t *testing.T) {
	tests := []struct {
		name  string
		value any
		color colorful.Color
		alpha float32
		ok    bool
	}{
		{"hex", "#00ff00", colorful.Color{G: 1}, 1, true},
		{"hex with alpha", "#0000ff80", colorful.Color{B: 1}, 128.0 / 255, true},
		{"name", "White", colorful.Color{R: 1, G: 1, B: 1}, 1, true},
		{"transparent", "transparent", colorful.Color{}, 0, true},
		{"array", []any{1.0, 0.0, 0.0, 0.25}, colorful.Color{R: 1}, 0.25, true},
		{"short array", []any{1.0, 0.0}, colorful.Color{}, 0, false},
		{"garbage", "#zzzzzz", colorful.Color{}, 0, false},
		{"missing", nil, colorful.Color{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, a, ok := PropertyMap{"c": tt.value}.ColorAlpha("c")
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.True(t, c.AlmostEqualRgb(tt.color), "got %v", c)
			assert.InDelta(t, tt.alpha, a, 1e-3)
		})
	}
}

func TestOnSceneReadiness(t *testing.T) {
	tests := []struct {
		name  string
		props PropertyMap
	}{
		{"color", PropertyMap{KeyVisualType: "COLOR", KeyMixColor: "#336699"}},
		{"border", PropertyMap{KeyVisualType: "BORDER", KeyBorderColor: "red", KeyBorderSize: 2}},
		{"gradient", PropertyMap{KeyVisualType: "GRADIENT"}},
		{"primitive", PropertyMap{KeyVisualType: "PRIMITIVE", KeyShape: "CUBE"}},
		{"text", PropertyMap{KeyVisualType: "TEXT", KeyText: "hello"}},
		{"wireframe", PropertyMap{KeyVisualType: "WIREFRAME"}},
	}
	f := NewFactory(nil, nil, nil, FactoryConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.CreateVisual(tt.props)
			require.NotNil(t, v)
			rec := &recorder{}
			v.AddEventObserver(rec)
			v.AddEventObserver(rec)

			assert.False(t, v.IsResourceReady())
			assert.Equal(t, Preparing, v.ResourceStatus())

			v.SetOnScene()
			v.SetOnScene()
			assert.True(t, v.IsOnScene())
			assert.Equal(t, Ready, v.ResourceStatus())
			assert.Len(t, rec.ready, 1)

			v.SetOffScene()
			assert.False(t, v.IsOnScene())
		})
	}
}

func TestRemoveEventObserver(t *testing.T) {
	v := NewColor(PropertyMap{KeyMixColor: "red"})
	rec := &recorder{}
	v.AddEventObserver(rec)
	v.RemoveEventObserver(rec)
	v.SetOnScene()
	assert.Empty(t, rec.ready)
	assert.True(t, v.IsResourceReady())
}

func TestCreatePropertyMapRecreates(t *testing.T) {
	f := NewFactory(nil, nil, nil, FactoryConfig{})
	tests := []struct {
		name  string
		props PropertyMap
	}{
		{"color", PropertyMap{
			KeyVisualType: "COLOR",
			KeyMixColor:   "#336699",
			KeyOpacity:    0.5,
			KeyTransform:  PropertyMap{KeyOffset: []any{1.0, 2.0}, KeySize: []any{30.0, 40.0}},
		}},
		{"border", PropertyMap{KeyVisualType: "BORDER", KeyBorderColor: "#ff0000", KeyBorderSize: 3.0}},
		{"primitive", PropertyMap{KeyVisualType: "PRIMITIVE", KeyShape: "CONE", KeySlices: 12}},
		{"gradient", PropertyMap{
			KeyVisualType: "GRADIENT",
			KeyCenter:     []any{0.0, 0.0},
			KeyRadius:     0.5,
			KeyStopColor:  []any{"#ff0000", "#0000ff"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := f.CreateVisual(tt.props).CreatePropertyMap()
			again := f.CreateVisual(first).CreatePropertyMap()
			assert.True(t, first.Equal(again), "first %v\nagain %v", first, again)
			assert.Equal(t, tt.props[KeyVisualType], first[KeyVisualType])
		})
	}
}

func TestGradientColorAt(t *testing.T) {
	black := colorful.Color{}
	white := colorful.Color{R: 1, G: 1, B: 1}
	linear := NewGradient(PropertyMap{
		KeyStartPosition: []any{0.0, 0.0},
		KeyEndPosition:   []any{1.0, 0.0},
	})

	assert.Equal(t, black, linear.ColorAt(-1))
	assert.Equal(t, white, linear.ColorAt(2))
	assert.True(t, linear.ColorAt(0.5).AlmostEqualRgb(black.BlendLab(white, 0.5)))
	assert.True(t, linear.Sample(text.Vector2{X: 0.25, Y: 7}).AlmostEqualRgb(linear.ColorAt(0.25)))

	tests := []struct {
		spread string
		t      float32
		want   float32
	}{
		{"PAD", 1.25, 1},
		{"REPEAT", 1.25, 0.25},
		{"REFLECT", 1.25, 0.75},
		{"REFLECT", -0.25, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.spread, func(t *testing.T) {
			g := NewGradient(PropertyMap{KeySpreadMethod: tt.spread})
			assert.True(t, g.ColorAt(tt.t).AlmostEqualRgb(g.ColorAt(tt.want)))
		})
	}

	radial := NewGradient(PropertyMap{
		KeyCenter:    []any{0.0, 0.0},
		KeyRadius:    0.5,
		KeyStopColor: []any{"#ff0000", "#0000ff"},
	})
	require.True(t, radial.IsRadial())
	assert.Equal(t, colorful.Color{R: 1}, radial.SamplePixel(text.Vector2{X: 50, Y: 50}, text.Vector2{X: 100, Y: 100}))
	assert.Equal(t, colorful.Color{B: 1}, radial.SamplePixel(text.Vector2{X: 0, Y: 50}, text.Vector2{X: 100, Y: 100}))
}

func TestPrimitiveClamps(t *testing.T) {
	p := NewPrimitive(PropertyMap{KeyShape: "sphere", KeySlices: 1, KeyStacks: 1000})
	assert.Equal(t, Sphere, p.Shape())
	assert.Equal(t, 3*(maxPartitions-1)+2, p.VertexCount())
}

func TestTextNaturalSize(t *testing.T) {
	v := NewText(PropertyMap{KeyText: "hello"}, nil)
	size := v.NaturalSize()
	assert.InDelta(t, 35, size.X, 1e-3)
	assert.Greater(t, size.Y, float32(0))

	v.SetText("hello world")
	assert.InDelta(t, 77, v.NaturalSize().X, 1e-3)
}

func TestFactoryDispatch(t *testing.T) {
	tests := []struct {
		name  string
		props PropertyMap
		want  Type
	}{
		{"default image", PropertyMap{KeyURL: "a.png"}, Image},
		{"nine patch", PropertyMap{KeyURL: "button.9.png"}, NPatch},
		{"hash patch", PropertyMap{KeyURL: "button.#.png"}, NPatch},
		{"svg", PropertyMap{KeyURL: "icon.SVG"}, SVG},
		{"gif", PropertyMap{KeyURL: "spin.gif"}, AnimatedImage},
		{"url array", PropertyMap{KeyURL: []any{"a.png", "b.png"}}, AnimatedImage},
		{"explicit image type", PropertyMap{KeyVisualType: "IMAGE", KeyURL: "x.svg"}, SVG},
		{"mesh", PropertyMap{KeyVisualType: "MESH", KeyObjectURL: "m.obj"}, Mesh},
	}
	f := NewFactory(nil, nil, nil, FactoryConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.CreateVisual(tt.props)
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.Type())
		})
	}
}

func TestFactoryUnknownType(t *testing.T) {
	f := NewFactory(nil, nil, nil, FactoryConfig{})
	assert.Nil(t, f.CreateVisual(PropertyMap{KeyVisualType: "HOLOGRAM"}))
}

func TestFactoryDebugWireframe(t *testing.T) {
	f := NewFactory(nil, nil, nil, FactoryConfig{DebugWireframe: true})
	v := f.CreateVisual(PropertyMap{KeyVisualType: "COLOR", KeyMixColor: "red"})
	require.NotNil(t, v)
	assert.Equal(t, Wireframe, v.Type())

	w := v.(*WireframeVisual)
	require.NotNil(t, w.Inner())
	assert.Equal(t, Color, w.Inner().Type())

	rec := &recorder{}
	v.AddEventObserver(rec)
	v.SetOnScene()
	assert.True(t, w.Inner().IsOnScene())
	assert.True(t, v.IsResourceReady())
	assert.Len(t, rec.ready, 1)

	v.SetDepthIndex(7)
	assert.Equal(t, 7, w.Inner().DepthIndex())
	assert.Equal(t, "#ff0000", v.CreatePropertyMap()[KeyMixColor])
}
