package text

import (
	"github.com/chewxy/math32"
)

// CursorInfo is the position of a cursor in layout coordinates.
type CursorInfo struct {
	LineOffset            float32
	LineHeight            float32
	PrimaryPosition       Vector2
	SecondaryPosition     Vector2
	PrimaryCursorHeight   float32
	SecondaryCursorHeight float32
	IsSecondaryCursor     bool
}

// carrierGlyph returns the glyph carrying the characters of the cluster
// containing character c, and the cluster's first glyph.
func carrierGlyph(vm *VisualModel, c int) (first, carrier int) {
	first = vm.CharactersToGlyph[c]
	carrier = first
	for carrier < len(vm.Glyphs)-1 && vm.CharactersPerGlyph[carrier] == 0 {
		carrier++
	}
	return first, carrier
}

// characterExtent returns the horizontal extent of character c. Characters
// of a ligature get an equal share of the glyph advance.
func characterExtent(lm *LogicalModel, vm *VisualModel, line LineRun, c int) (left, right float32) {
	first, carrier := carrierGlyph(vm, c)

	left = math32.MaxFloat32
	right = -math32.MaxFloat32
	for g := first; g <= carrier; g++ {
		x := vm.GlyphPositions[g].X - vm.Glyphs[g].XBearing
		left = math32.Min(left, x)
		right = math32.Max(right, x+vm.Glyphs[g].Advance)
	}

	if n := vm.CharactersPerGlyph[carrier]; first == carrier && n > 1 {
		adv := (right - left) / float32(n)
		inter := float32(c - vm.GlyphsToCharacters[carrier])
		if lm.GetCharacterDirection(c) == RightToLeft {
			right -= inter * adv
			left = right - adv
		} else {
			left += inter * adv
			right = left + adv
		}
	}
	return left + line.AlignmentOffset, right + line.AlignmentOffset
}

func leadingEdge(lm *LogicalModel, vm *VisualModel, line LineRun, c int) float32 {
	l, r := characterExtent(lm, vm, line, c)
	if lm.GetCharacterDirection(c) == RightToLeft {
		return r
	}
	return l
}

func trailingEdge(lm *LogicalModel, vm *VisualModel, line LineRun, c int) float32 {
	l, r := characterExtent(lm, vm, line, c)
	if lm.GetCharacterDirection(c) == RightToLeft {
		return l
	}
	return r
}

// GetCursorPosition returns where the cursor is drawn for the logical
// position index. When the characters on both sides have different
// directions a secondary cursor marks the other edge and both cursors take
// half the line height.
func GetCursorPosition(lm *LogicalModel, vm *VisualModel, index int) CursorInfo {
	var info CursorInfo
	if len(vm.Lines) == 0 {
		return info
	}

	lineIndex := vm.GetLineOfCharacter(index)
	line := vm.Lines[lineIndex]
	info.LineOffset = CalculateLineOffset(vm.Lines, lineIndex)
	info.LineHeight = line.Height()
	info.PrimaryCursorHeight = info.LineHeight
	info.PrimaryPosition.Y = info.LineOffset

	lineStart, lineEnd := line.Characters.Index, line.Characters.End()
	if line.Characters.Count == 0 {
		info.PrimaryPosition.X = line.AlignmentOffset
		return info
	}

	if index <= lineStart {
		info.PrimaryPosition.X = leadingEdge(lm, vm, line, lineStart)
		return info
	}

	prev := index - 1
	hasCurrent := index < lineEnd && !IsNewParagraph(lm.Text[index])
	if !hasCurrent {
		info.PrimaryPosition.X = trailingEdge(lm, vm, line, prev)
		return info
	}

	prevDir := lm.GetCharacterDirection(prev)
	curDir := lm.GetCharacterDirection(index)
	if prevDir == curDir {
		info.PrimaryPosition.X = trailingEdge(lm, vm, line, prev)
		return info
	}

	prevX := trailingEdge(lm, vm, line, prev)
	curX := leadingEdge(lm, vm, line, index)
	if prevDir == line.Direction {
		info.PrimaryPosition.X, info.SecondaryPosition.X = prevX, curX
	} else {
		info.PrimaryPosition.X, info.SecondaryPosition.X = curX, prevX
	}
	info.IsSecondaryCursor = true
	info.PrimaryCursorHeight = 0.5 * info.LineHeight
	info.SecondaryCursorHeight = 0.5 * info.LineHeight
	info.SecondaryPosition.Y = info.LineOffset + 0.5*info.LineHeight
	return info
}

// lineAt returns the line under the vertical coordinate y, clamped to the
// first and last lines.
func lineAt(vm *VisualModel, y float32) int {
	var offset float32
	for i, line := range vm.Lines {
		offset += line.Height()
		if y < offset {
			return i
		}
	}
	return len(vm.Lines) - 1
}

// isCursorStop reports whether the cursor may be placed before character c.
func isCursorStop(lm *LogicalModel, vm *VisualModel, c int) bool {
	if c >= len(vm.GlyphsPerCharacter) || vm.GlyphsPerCharacter[c] > 0 {
		return true
	}
	first, carrier := carrierGlyph(vm, c)
	return first == carrier && vm.CharactersPerGlyph[carrier] > 1 && HasLigatureMustBreak(lm.GetScript(c))
}

// GetClosestCursorIndex returns the logical cursor position closest to the
// point (x, y) in layout coordinates.
func GetClosestCursorIndex(lm *LogicalModel, vm *VisualModel, x, y float32) int {
	if len(vm.Lines) == 0 {
		return 0
	}
	lineIndex := lineAt(vm, y)
	line := vm.Lines[lineIndex]
	if line.Characters.Count == 0 {
		return line.Characters.Index
	}

	last := line.Characters.End()
	if lineIndex < len(vm.Lines)-1 || IsNewParagraph(lm.Text[last-1]) {
		last--
	}

	best := line.Characters.Index
	bestDistance := float32(math32.MaxFloat32)
	for i := line.Characters.Index; i <= last; i++ {
		if i > line.Characters.Index && i < line.Characters.End() && !isCursorStop(lm, vm, i) {
			continue
		}
		info := GetCursorPosition(lm, vm, i)
		d := math32.Abs(info.PrimaryPosition.X - x)
		if info.IsSecondaryCursor {
			d = math32.Min(d, math32.Abs(info.SecondaryPosition.X-x))
		}
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return best
}

// FindSelectionIndices returns the word under the point (x, y). found is
// false when the point is over white space or outside the text, in which
// case end is the closest cursor position.
func FindSelectionIndices(lm *LogicalModel, vm *VisualModel, x, y float32) (start, end int, found bool) {
	if len(lm.Text) == 0 || len(vm.Lines) == 0 {
		return 0, 0, false
	}
	closest := GetClosestCursorIndex(lm, vm, x, y)

	line := vm.Lines[lineAt(vm, y)]
	hit := -1
	for c := line.Characters.Index; c < line.Characters.End(); c++ {
		l, r := characterExtent(lm, vm, line, c)
		if x >= l && x < r {
			hit = c
			break
		}
	}
	if hit < 0 || IsWhiteSpace(lm.Text[hit]) {
		return closest, closest, false
	}

	n := len(lm.Text)
	start = hit
	for start > 0 && lm.WordBreakInfo[start-1] == WordNoBreak {
		start--
	}
	end = hit
	for end < n-1 && lm.WordBreakInfo[end] == WordNoBreak {
		end++
	}
	return start, end + 1, true
}
