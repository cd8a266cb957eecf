package text

import (
	"strings"

	"github.com/chewxy/math32"
)

// LayoutType selects how lines are formed.
type LayoutType uint8

const (
	SingleLineBox LayoutType = iota
	MultiLineBox
)

// HorizontalAlignment places lines inside the control width.
type HorizontalAlignment uint8

const (
	AlignBegin HorizontalAlignment = iota
	AlignCenter
	AlignEnd
)

// VerticalAlignment places the text block inside the control height.
type VerticalAlignment uint8

const (
	AlignTop VerticalAlignment = iota
	AlignMiddle
	AlignBottom
)

var (
	horizontalNames = [...]string{AlignBegin: "begin", AlignCenter: "center", AlignEnd: "end"}
	verticalNames   = [...]string{AlignTop: "top", AlignMiddle: "center", AlignBottom: "bottom"}
)

func (a HorizontalAlignment) String() string {
	if int(a) < len(horizontalNames) {
		return horizontalNames[a]
	}
	return "unknown"
}

func (a VerticalAlignment) String() string {
	if int(a) < len(verticalNames) {
		return verticalNames[a]
	}
	return "unknown"
}

// ParseHorizontalAlignment accepts begin, center or end, case insensitive.
func ParseHorizontalAlignment(s string) (HorizontalAlignment, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range horizontalNames {
		if name == s {
			return HorizontalAlignment(a), true
		}
	}
	return 0, false
}

// ParseVerticalAlignment accepts top, center or bottom, case insensitive.
func ParseVerticalAlignment(s string) (VerticalAlignment, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range verticalNames {
		if name == s {
			return VerticalAlignment(a), true
		}
	}
	return 0, false
}

// LayoutParameters configures one layout pass.
type LayoutParameters struct {
	BoundingBox         Vector2
	Type                LayoutType
	HorizontalAlignment HorizontalAlignment
	VerticalAlignment   VerticalAlignment
}

// LayoutEngine positions glyphs into lines.
type LayoutEngine struct {
	fonts *FontClient
}

// NewLayoutEngine creates an engine using fonts for line metrics.
func NewLayoutEngine(fonts *FontClient) *LayoutEngine {
	return &LayoutEngine{fonts: fonts}
}

// glyphUnit is the glyphs of one cluster: every glyph up to and including
// the one carrying the characters.
type glyphUnit struct {
	first, last        int
	charStart, charEnd int
	advance            float32
}

func buildUnits(vm *VisualModel) []glyphUnit {
	n := len(vm.Glyphs)
	units := make([]glyphUnit, 0, n)
	for g := 0; g < n; g++ {
		first := g
		var adv float32
		for ; g < n-1 && vm.CharactersPerGlyph[g] == 0; g++ {
			adv += vm.Glyphs[g].Advance
		}
		adv += vm.Glyphs[g].Advance
		cs := vm.GlyphsToCharacters[first]
		units = append(units, glyphUnit{
			first:     first,
			last:      g,
			charStart: cs,
			charEnd:   cs + vm.CharactersPerGlyph[g],
			advance:   adv,
		})
	}
	return units
}

// Layout lays out the glyphs of vm. When store is false only the layout
// size is computed and vm is left untouched.
func (e *LayoutEngine) Layout(lm *LogicalModel, vm *VisualModel, params LayoutParameters, store bool) Vector2 {
	units := buildUnits(vm)
	ranges := e.breakLines(lm, units, params)

	defaultMetrics := e.fonts.FontMetrics(e.fonts.DefaultFontID())
	lines := make([]LineRun, 0, len(ranges)+1)
	var positions []Vector2
	if store {
		positions = make([]Vector2, len(vm.Glyphs))
	}

	var size Vector2
	var penY float32
	for _, r := range ranges {
		line := e.buildLine(lm, vm, units[r[0]:r[1]], defaultMetrics)
		if store {
			e.positionLine(lm, vm, units[r[0]:r[1]], line, penY, positions)
		}
		lines = append(lines, line)
		size.X = math32.Max(size.X, line.Width)
		penY += line.Height()
	}

	// A trailing new paragraph opens an empty line for the cursor.
	numChars := len(lm.Text)
	if params.Type == MultiLineBox && numChars > 0 && IsNewParagraph(lm.Text[numChars-1]) {
		lines = append(lines, LineRun{
			Glyphs:     GlyphRun{Index: len(vm.Glyphs)},
			Characters: CharacterRun{Index: numChars},
			Ascender:   defaultMetrics.Ascender,
			Descender:  defaultMetrics.Descender,
		})
		penY += defaultMetrics.LineHeight()
	}
	size.Y = penY

	for i := range lines {
		lines[i].AlignmentOffset = alignLine(lines[i], params)
	}

	if store {
		vm.Lines = lines
		vm.GlyphPositions = positions
		vm.LayoutSize = size
		vm.VerticalOffset = alignBlock(size.Y, params)
	}
	return size
}

// breakLines returns [start, end) unit ranges of every line.
func (e *LayoutEngine) breakLines(lm *LogicalModel, units []glyphUnit, params LayoutParameters) [][2]int {
	if len(units) == 0 {
		return nil
	}
	if params.Type == SingleLineBox {
		return [][2]int{{0, len(units)}}
	}

	width := params.BoundingBox.X
	var ranges [][2]int
	lineStart := 0
	lastBreak := -1
	var penX float32

	for i := 0; i < len(units); i++ {
		u := units[i]
		lastChar := u.charEnd - 1
		if lastChar < u.charStart {
			lastChar = u.charStart
		}
		white := IsWhiteSpace(lm.Text[lastChar])

		if !white && penX > 0 && penX+u.advance > width {
			breakAt := i
			if lastBreak > lineStart {
				breakAt = lastBreak
			}
			ranges = append(ranges, [2]int{lineStart, breakAt})
			lineStart = breakAt
			lastBreak = -1
			penX = 0
			i = breakAt - 1
			continue
		}

		penX += u.advance
		switch lm.LineBreakInfo[lastChar] {
		case LineMustBreak:
			ranges = append(ranges, [2]int{lineStart, i + 1})
			lineStart = i + 1
			lastBreak = -1
			penX = 0
		case LineAllowBreak:
			lastBreak = i + 1
		}
	}
	if lineStart < len(units) {
		ranges = append(ranges, [2]int{lineStart, len(units)})
	}
	return ranges
}

func (e *LayoutEngine) buildLine(lm *LogicalModel, vm *VisualModel, units []glyphUnit, def FontMetrics) LineRun {
	first, last := units[0], units[len(units)-1]
	line := LineRun{
		Glyphs:     GlyphRun{Index: first.first, Count: last.last + 1 - first.first},
		Characters: CharacterRun{Index: first.charStart, Count: last.charEnd - first.charStart},
		Ascender:   def.Ascender,
		Descender:  def.Descender,
		Direction:  lm.ParagraphDirectionAt(first.charStart),
	}

	seen := map[FontID]bool{}
	for g := line.Glyphs.Index; g < line.Glyphs.End(); g++ {
		id := vm.Glyphs[g].FontID
		if seen[id] {
			continue
		}
		seen[id] = true
		m := e.fonts.FontMetrics(id)
		line.Ascender = math32.Max(line.Ascender, m.Ascender)
		line.Descender = math32.Min(line.Descender, m.Descender)
	}

	trailing := true
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if trailing && u.charEnd > u.charStart && IsWhiteSpace(lm.Text[u.charEnd-1]) {
			line.ExtraLength += u.advance
			continue
		}
		trailing = false
		line.Width += u.advance
	}
	return line
}

// positionLine writes the positions of the line's glyphs in visual order.
func (e *LayoutEngine) positionLine(lm *LogicalModel, vm *VisualModel, units []glyphUnit, line LineRun, penY float32, positions []Vector2) {
	order := visualOrder(lm, units, line.Direction)

	var penX float32
	for _, ui := range order {
		u := units[ui]
		for g := u.first; g <= u.last; g++ {
			glyph := vm.Glyphs[g]
			positions[g] = Vector2{
				X: penX + glyph.XBearing,
				Y: penY + line.Ascender - glyph.YBearing,
			}
			penX += glyph.Advance
		}
	}
}

// visualOrder returns the unit indices of a line left to right, reversing
// right to left runs by embedding level.
func visualOrder(lm *LogicalModel, units []glyphUnit, base Direction) []int {
	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	if !lm.HasRightToLeft() || len(lm.CharacterDirections) == 0 {
		return order
	}

	baseLevel := 0
	if base == RightToLeft {
		baseLevel = 1
	}
	levels := acquireIndexSlice(len(units))
	defer releaseIndexSlice(levels)
	maxLevel := baseLevel
	for i, u := range units {
		dir := lm.GetCharacterDirection(u.charStart)
		switch {
		case dir == RightToLeft:
			levels[i] = 1
		case baseLevel == 1:
			levels[i] = 2
		default:
			levels[i] = 0
		}
		maxLevel = max(maxLevel, levels[i])
	}
	// trailing white space takes the paragraph level
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if u.charEnd <= u.charStart || !IsWhiteSpace(lm.Text[u.charEnd-1]) {
			break
		}
		levels[i] = baseLevel
	}

	for level := maxLevel; level >= 1; level-- {
		for i := 0; i < len(order); {
			if levels[order[i]] < level {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= level {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}

func alignLine(line LineRun, params LayoutParameters) float32 {
	space := params.BoundingBox.X - line.Width
	var offset float32
	if space > 0 {
		switch params.HorizontalAlignment {
		case AlignCenter:
			offset = math32.Floor(0.5 * space)
		case AlignEnd:
			if line.Direction != RightToLeft {
				offset = space
			}
		default:
			if line.Direction == RightToLeft {
				offset = space
			}
		}
	}
	// Trailing white space of a right to left line sits on its visual left.
	if line.Direction == RightToLeft {
		offset -= line.ExtraLength
	}
	return offset
}

func alignBlock(height float32, params LayoutParameters) float32 {
	space := params.BoundingBox.Y - height
	if space <= 0 {
		return 0
	}
	switch params.VerticalAlignment {
	case AlignMiddle:
		return math32.Floor(0.5 * space)
	case AlignBottom:
		return space
	}
	return 0
}
