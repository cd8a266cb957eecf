package text

import "github.com/lucasb-eyer/go-colorful"

// VisualModel holds the glyphs shaped from a LogicalModel and their layout.
type VisualModel struct {
	Glyphs             []GlyphInfo
	GlyphsToCharacters []int
	CharactersToGlyph  []int
	CharactersPerGlyph []int
	GlyphsPerCharacter []int
	GlyphPositions     []Vector2
	Lines              []LineRun
	UnderlineRuns      []GlyphRun
	ColorIndices       []int // per glyph, into Colors

	// Colors is the palette of ColorRun indices; Colors[0] is the text color.
	Colors []colorful.Color

	ControlSize    Vector2
	LayoutSize     Vector2
	VerticalOffset float32 // from vertical alignment, applied by renderers

	UnderlineEnabled bool
}

// NewVisualModel creates a model whose text color is c.
func NewVisualModel(c colorful.Color) *VisualModel {
	return &VisualModel{Colors: []colorful.Color{c}}
}

// NumberOfGlyphs returns the glyph count.
func (m *VisualModel) NumberOfGlyphs() int {
	return len(m.Glyphs)
}

// ColorIndex returns the palette index of c, adding it when missing.
func (m *VisualModel) ColorIndex(c colorful.Color) int {
	for i, existing := range m.Colors {
		if existing == c {
			return i
		}
	}
	m.Colors = append(m.Colors, c)
	return len(m.Colors) - 1
}

// CreateGlyphsPerCharacterTable inserts the glyph count of the characters
// [start, start+count), shaped into glyphs starting at startGlyph, into
// GlyphsPerCharacter.
func (m *VisualModel) CreateGlyphsPerCharacterTable(start, startGlyph, count int) {
	if count == 0 {
		return
	}
	table := make([]int, count)
	pending := 0
	for g := startGlyph; g < len(m.Glyphs); g++ {
		c := m.GlyphsToCharacters[g]
		if c >= start+count {
			break
		}
		pending++
		if n := m.CharactersPerGlyph[g]; n > 0 {
			table[c-start] += pending
			pending = 0
		}
	}
	m.GlyphsPerCharacter = InsertAt(m.GlyphsPerCharacter, start, table...)
}

// CreateCharacterToGlyphTable inserts the first glyph of the characters
// [start, start+count) into CharactersToGlyph and moves the entries of the
// following characters past the new glyphs.
func (m *VisualModel) CreateCharacterToGlyphTable(start, startGlyph, count int) {
	if count == 0 {
		return
	}
	table := make([]int, count)
	newGlyphs := 0
	clusterGlyph := -1
	for g := startGlyph; g < len(m.Glyphs); g++ {
		c := m.GlyphsToCharacters[g]
		if c >= start+count {
			break
		}
		newGlyphs++
		if clusterGlyph < 0 {
			clusterGlyph = g
		}
		if n := m.CharactersPerGlyph[g]; n > 0 {
			for k := 0; k < n && c+k < start+count; k++ {
				table[c+k-start] = clusterGlyph
			}
			clusterGlyph = -1
		}
	}

	for i := start; i < len(m.CharactersToGlyph); i++ {
		m.CharactersToGlyph[i] += newGlyphs
	}
	m.CharactersToGlyph = InsertAt(m.CharactersToGlyph, start, table...)
}

// GetNumberOfLines returns the line of glyphIndex and how many lines the
// glyph range [glyphIndex, glyphIndex+count) spans.
func (m *VisualModel) GetNumberOfLines(glyphIndex, count int) (firstLine, numberOfLines int) {
	if len(m.Lines) == 0 {
		return 0, 0
	}
	firstLine = m.GetLineOfGlyph(glyphIndex)
	lastLine := firstLine
	if count > 1 {
		lastLine = m.GetLineOfGlyph(glyphIndex + count - 1)
	}
	return firstLine, lastLine - firstLine + 1
}

// GetLineOfCharacter returns the line containing the character at index.
// The index past the last character belongs to the last line.
func (m *VisualModel) GetLineOfCharacter(index int) int {
	for i, line := range m.Lines {
		if index < line.Characters.End() {
			return i
		}
	}
	if len(m.Lines) == 0 {
		return 0
	}
	return len(m.Lines) - 1
}

// GetLineOfGlyph returns the line containing the glyph.
func (m *VisualModel) GetLineOfGlyph(glyph int) int {
	for i, line := range m.Lines {
		if glyph < line.Glyphs.End() {
			return i
		}
	}
	if len(m.Lines) == 0 {
		return 0
	}
	return len(m.Lines) - 1
}

// AddUnderlineRun underlines the glyph range.
func (m *VisualModel) AddUnderlineRun(run GlyphRun) {
	m.UnderlineRuns = append(m.UnderlineRuns, run)
}

// ClearUnderlineRuns removes every underline run.
func (m *VisualModel) ClearUnderlineRuns() {
	m.UnderlineRuns = m.UnderlineRuns[:0]
}

// CalculateLineOffset returns the vertical offset of the top of a line.
func CalculateLineOffset(lines []LineRun, line int) float32 {
	var offset float32
	for i := 0; i < line && i < len(lines); i++ {
		offset += lines[i].Height()
	}
	return offset
}
