package visual

import (
	"maps"
	"reflect"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/agiangrant/toolkit/text"
)

// Property keys shared by the factory and the visuals.
const (
	KeyVisualType   = "visualType"
	KeyMixColor     = "mixColor"
	KeyOpacity      = "opacity"
	KeyCornerRadius = "cornerRadius"
	KeyTransform    = "transform"
	KeyOffset       = "offset"
	KeySize         = "size"

	KeyBorderColor  = "borderColor"
	KeyBorderSize   = "borderSize"
	KeyAntiAliasing = "antiAliasing"

	KeyStartPosition = "startPosition"
	KeyEndPosition   = "endPosition"
	KeyCenter        = "center"
	KeyRadius        = "radius"
	KeyStopOffset    = "stopOffset"
	KeyStopColor     = "stopColor"
	KeyUnits         = "units"
	KeySpreadMethod  = "spreadMethod"

	KeyURL                = "url"
	KeyDesiredWidth       = "desiredWidth"
	KeyDesiredHeight      = "desiredHeight"
	KeyFittingMode        = "fittingMode"
	KeySynchronousLoading = "synchronousLoading"
	KeyBorder             = "border"
	KeyBorderOnly         = "borderOnly"

	KeyBatchSize  = "batchSize"
	KeyCacheSize  = "cacheSize"
	KeyFrameDelay = "frameDelay"
	KeyLoopCount  = "loopCount"

	KeyText                = "text"
	KeyTextColor           = "textColor"
	KeyMultiLine           = "multiLine"
	KeyHorizontalAlignment = "horizontalAlignment"

	KeyObjectURL   = "objectUrl"
	KeyMaterialURL = "materialUrl"

	KeyShape      = "shape"
	KeySlices     = "slices"
	KeyStacks     = "stacks"
	KeyShapeColor = "shapeColor"
)

// PropertyMap describes a visual. Values are the types TOML decodes to
// (string, bool, int64, float64, []any, map[string]any) or their Go
// equivalents.
type PropertyMap map[string]any

// ParsePropertyMap decodes a TOML document into a property map.
func ParsePropertyMap(data []byte) (PropertyMap, error) {
	m := PropertyMap{}
	if err := toml.Unmarshal(data, (*map[string]any)(&m)); err != nil {
		return nil, errors.Wrap(err, "failed to parse property map")
	}
	return m, nil
}

// Clone returns a shallow copy of m.
func (m PropertyMap) Clone() PropertyMap {
	return maps.Clone(m)
}

// Merge returns a copy of m with the entries of other added or replaced.
func (m PropertyMap) Merge(other PropertyMap) PropertyMap {
	out := maps.Clone(m)
	if out == nil {
		out = PropertyMap{}
	}
	maps.Copy(out, other)
	return out
}

// Equal reports whether m and other hold the same values.
func (m PropertyMap) Equal(other PropertyMap) bool {
	return reflect.DeepEqual(m, other)
}

// String returns the string at key.
func (m PropertyMap) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Bool returns the bool at key.
func (m PropertyMap) Bool(key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Float returns the number at key.
func (m PropertyMap) Float(key string) (float32, bool) {
	return toFloat(m[key])
}

// Int returns the number at key, truncated.
func (m PropertyMap) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	}
	return 0, false
}

// Map returns the nested map at key.
func (m PropertyMap) Map(key string) (PropertyMap, bool) {
	switch v := m[key].(type) {
	case PropertyMap:
		return v, true
	case map[string]any:
		return PropertyMap(v), true
	}
	return nil, false
}

// Strings returns the string array at key.
func (m PropertyMap) Strings(key string) ([]string, bool) {
	switch v := m[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Floats returns the number array at key.
func (m PropertyMap) Floats(key string) ([]float32, bool) {
	return toFloats(m[key])
}

// Vector2 returns the two element number array at key.
func (m PropertyMap) Vector2(key string) (text.Vector2, bool) {
	if v, ok := m[key].(text.Vector2); ok {
		return v, true
	}
	f, ok := m.Floats(key)
	if !ok || len(f) != 2 {
		return text.Vector2{}, false
	}
	return text.Vector2{X: f[0], Y: f[1]}, true
}

// Color returns the color at key: a hex string, a color name or an array
// of three or four components in [0, 1].
func (m PropertyMap) Color(key string) (colorful.Color, bool) {
	c, _, ok := m.ColorAlpha(key)
	return c, ok
}

// ColorAlpha returns the color at key and its alpha, 1 when not given.
func (m PropertyMap) ColorAlpha(key string) (colorful.Color, float32, bool) {
	return parseColor(m[key])
}

// Colors returns the color array at key.
func (m PropertyMap) Colors(key string) ([]colorful.Color, bool) {
	arr, ok := m[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]colorful.Color, 0, len(arr))
	for _, e := range arr {
		c, _, ok := parseColor(e)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

// FormatColor returns c in the hex form Color accepts.
func FormatColor(c colorful.Color) string {
	return c.Clamped().Hex()
}

var namedColors = map[string]colorful.Color{
	"black":       {R: 0, G: 0, B: 0},
	"white":       {R: 1, G: 1, B: 1},
	"red":         {R: 1, G: 0, B: 0},
	"green":       {R: 0, G: 1, B: 0},
	"blue":        {R: 0, G: 0, B: 1},
	"yellow":      {R: 1, G: 1, B: 0},
	"cyan":        {R: 0, G: 1, B: 1},
	"magenta":     {R: 1, G: 0, B: 1},
	"transparent": {R: 0, G: 0, B: 0},
}

func parseColor(v any) (colorful.Color, float32, bool) {
	switch v := v.(type) {
	case colorful.Color:
		return v, 1, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if c, ok := namedColors[s]; ok {
			if s == "transparent" {
				return c, 0, true
			}
			return c, 1, true
		}
		alpha := float32(1)
		if len(s) == 9 && s[0] == '#' {
			a, err := colorful.Hex("#" + s[7:9] + "0000")
			if err != nil {
				return colorful.Color{}, 0, false
			}
			alpha = float32(a.R)
			s = s[:7]
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		return c, alpha, true
	default:
		f, ok := toFloats(v)
		if !ok || len(f) < 3 || len(f) > 4 {
			return colorful.Color{}, 0, false
		}
		alpha := float32(1)
		if len(f) == 4 {
			alpha = f[3]
		}
		return colorful.Color{R: float64(f[0]), G: float64(f[1]), B: float64(f[2])}, alpha, true
	}
}

func toFloat(v any) (float32, bool) {
	switch v := v.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int64:
		return float32(v), true
	}
	return 0, false
}

func toFloats(v any) ([]float32, bool) {
	switch v := v.(type) {
	case []float32:
		return v, true
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, true
	case []any:
		out := make([]float32, 0, len(v))
		for _, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}
