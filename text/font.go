package text

import (
	"errors"
	"sync"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyFont is returned when a nil face is registered.
var ErrEmptyFont = errors.New("text: nil font face")

// FontMetrics holds the vertical metrics of a face. Descender is negative.
type FontMetrics struct {
	Ascender  float32
	Descender float32
	Height    float32
}

// LineHeight returns Ascender - Descender.
func (m FontMetrics) LineHeight() float32 {
	return m.Ascender - m.Descender
}

// FontClient owns the faces used for shaping and metrics.
type FontClient struct {
	mu        sync.RWMutex
	faces     []font.Face
	names     map[string]FontID
	defaultID FontID
}

// NewFontClient creates a client with basicfont.Face7x13 as default face.
func NewFontClient() *FontClient {
	fc := &FontClient{names: make(map[string]FontID)}
	id, _ := fc.AddFace("basic7x13", basicfont.Face7x13)
	fc.defaultID = id
	return fc
}

// AddFace registers face under name and returns its id. Registering an
// existing name replaces the face.
func (fc *FontClient) AddFace(name string, face font.Face) (FontID, error) {
	if face == nil {
		return 0, ErrEmptyFont
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if id, ok := fc.names[name]; ok {
		fc.faces[id-1] = face
		return id, nil
	}
	fc.faces = append(fc.faces, face)
	id := FontID(len(fc.faces))
	fc.names[name] = id
	return id, nil
}

// FontByName returns the id of a registered face.
func (fc *FontClient) FontByName(name string) (FontID, bool) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	id, ok := fc.names[name]
	return id, ok
}

// DefaultFontID returns the default face id.
func (fc *FontClient) DefaultFontID() FontID {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.defaultID
}

// SetDefaultFont makes id the default face if registered.
func (fc *FontClient) SetDefaultFont(id FontID) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if id > 0 && int(id) <= len(fc.faces) {
		fc.defaultID = id
	}
}

func (fc *FontClient) face(id FontID) font.Face {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if id == 0 || int(id) > len(fc.faces) {
		id = fc.defaultID
	}
	return fc.faces[id-1]
}

// FontMetrics returns the vertical metrics of the face.
func (fc *FontClient) FontMetrics(id FontID) FontMetrics {
	m := fc.face(id).Metrics()
	return FontMetrics{
		Ascender:  toFloat(m.Ascent),
		Descender: -toFloat(m.Descent),
		Height:    toFloat(m.Height),
	}
}

// GetGlyphMetrics fills the metrics of glyphs. The terminal cell width of
// the rune scales the face metrics: zero width runes such as combining marks
// and joiners take no space and wide East Asian runes take two advances.
func (fc *FontClient) GetGlyphMetrics(glyphs []GlyphInfo) {
	for i := range glyphs {
		g := &glyphs[i]
		face := fc.face(g.FontID)
		bounds, adv, _ := face.GlyphBounds(g.Index)
		g.Height = toFloat(bounds.Max.Y - bounds.Min.Y)
		g.YBearing = -toFloat(bounds.Min.Y)

		cells := runewidth.RuneWidth(g.Index)
		if cells == 0 {
			g.Width, g.XBearing, g.Advance = 0, 0, 0
			continue
		}
		scale := float32(1)
		if cells > 1 {
			scale = float32(cells)
		}
		g.Width = scale * toFloat(bounds.Max.X-bounds.Min.X)
		g.XBearing = toFloat(bounds.Min.X)
		g.Advance = scale * toFloat(adv)
	}
}

// ValidateFonts assigns a font to every character of [start, start+count)
// and merges the result into runs, which must not cover that range yet.
// Characters fontID has no glyph for fall back to the default face.
func (fc *FontClient) ValidateFonts(text []rune, runs []FontRun, fontID FontID, start, count int) []FontRun {
	if count == 0 {
		return runs
	}
	if fontID == 0 {
		fontID = fc.DefaultFontID()
	}
	face := fc.face(fontID)
	fallback := fc.DefaultFontID()

	var created []FontRun
	for i := start; i < start+count; i++ {
		id := fontID
		if _, ok := face.GlyphAdvance(text[i]); !ok && !IsNewParagraph(text[i]) {
			id = fallback
		}
		if n := len(created); n > 0 && created[n-1].FontID == id {
			created[n-1].Count++
			continue
		}
		created = append(created, FontRun{CharacterRun{i, 1}, id})
	}
	runs = InsertRuns(runs, created, start, count)

	out := runs[:0]
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].FontID == r.FontID && out[n-1].End() == r.Index {
			out[n-1].Count += r.Count
			continue
		}
		out = append(out, r)
	}
	return out
}

func toFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
