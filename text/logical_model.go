package text

// LogicalModel holds the text and its per-character information. Every run
// array covers the whole text once the model update pipeline has run.
type LogicalModel struct {
	Text []rune

	LineBreakInfo       []LineBreakInfo
	WordBreakInfo       []WordBreakInfo
	ScriptRuns          []ScriptRun
	FontRuns            []FontRun
	ColorRuns           []ColorRun
	Paragraphs          []ParagraphRun
	BidiParagraphs      []BidiParagraphRun
	CharacterDirections []Direction
	MirroredText        []rune
}

// NumberOfCharacters returns the text length.
func (m *LogicalModel) NumberOfCharacters() int {
	return len(m.Text)
}

// CreateParagraphInfo splits [start, start+count) into paragraphs at
// LineMustBreak characters that are new paragraph characters, and inserts
// them into Paragraphs.
func (m *LogicalModel) CreateParagraphInfo(start, count int) {
	if count == 0 {
		return
	}
	var created []ParagraphRun
	paragraphStart := start
	for i := start; i < start+count; i++ {
		last := i == start+count-1
		if last || (m.LineBreakInfo[i] == LineMustBreak && IsNewParagraph(m.Text[i])) {
			created = append(created, ParagraphRun{CharacterRun{paragraphStart, i + 1 - paragraphStart}})
			paragraphStart = i + 1
		}
	}
	m.Paragraphs = InsertRuns(m.Paragraphs, created, start, count)
}

// FindParagraphs returns the positions in Paragraphs of the paragraphs
// overlapping [index, index+count).
func (m *LogicalModel) FindParagraphs(index, count int) []int {
	var out []int
	end := index + count
	for i, p := range m.Paragraphs {
		if p.End() > index && p.Index < end {
			out = append(out, i)
		}
		if p.Index >= end {
			break
		}
	}
	return out
}

// GetScript returns the script of the character at index.
func (m *LogicalModel) GetScript(index int) Script {
	if i := RunAt(m.ScriptRuns, index); i >= 0 {
		return m.ScriptRuns[i].Script
	}
	return ScriptUnknown
}

// GetCharacterDirection returns the resolved direction of the character at
// index, left to right when no direction was computed.
func (m *LogicalModel) GetCharacterDirection(index int) Direction {
	if index < 0 || index >= len(m.CharacterDirections) {
		return LeftToRight
	}
	return m.CharacterDirections[index]
}

// HasRightToLeft reports whether any paragraph contains right to left text.
func (m *LogicalModel) HasRightToLeft() bool {
	return len(m.BidiParagraphs) > 0
}

// ParagraphDirectionAt returns the direction of the paragraph containing
// index.
func (m *LogicalModel) ParagraphDirectionAt(index int) Direction {
	for _, b := range m.BidiParagraphs {
		if b.Contains(index) {
			return b.Direction
		}
	}
	return LeftToRight
}

// RetrieveStyle returns the color index and font of the character at index.
func (m *LogicalModel) RetrieveStyle(index int) (colorIndex int, fontID FontID) {
	if i := RunAt(m.ColorRuns, index); i >= 0 {
		colorIndex = m.ColorRuns[i].ColorIndex
	}
	if i := RunAt(m.FontRuns, index); i >= 0 {
		fontID = m.FontRuns[i].FontID
	}
	return colorIndex, fontID
}

// UpdateTextStyleRuns keeps the color runs covering the text after delta
// characters were inserted (delta > 0) or removed (delta < 0) at index.
// Inserted characters join the run of the preceding character.
func (m *LogicalModel) UpdateTextStyleRuns(index, delta int) {
	if delta == 0 {
		return
	}
	if delta < 0 {
		m.ColorRuns, _ = ClearRuns(m.ColorRuns, index, index-delta-1)
		return
	}
	if len(m.ColorRuns) == 0 {
		m.ColorRuns = []ColorRun{{CharacterRun: CharacterRun{0, len(m.Text)}}}
		return
	}
	owner := max(index-1, 0)
	for i := range m.ColorRuns {
		r := &m.ColorRuns[i]
		switch {
		case r.Contains(owner) || (r.End() == owner && i == len(m.ColorRuns)-1):
			r.Count += delta
		case r.Index > owner:
			r.Index += delta
		}
	}
}

// SetColorRun applies colorIndex to [index, index+count), splitting
// existing runs as needed.
func (m *LogicalModel) SetColorRun(index, count, colorIndex int) {
	if count <= 0 {
		return
	}
	runs, _ := ClearRuns(m.ColorRuns, index, index+count-1)
	created := []ColorRun{{CharacterRun{index, count}, colorIndex}}
	m.ColorRuns = InsertRuns(runs, created, index, count)
}
