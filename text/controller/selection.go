package controller

import (
	"math"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// selectionBoxInfo is the highlighted extent of one line.
type selectionBoxInfo struct {
	lineOffset float32
	lineHeight float32
	minX, maxX float32
}

func newSelectionBoxInfo(offset, height float32) selectionBoxInfo {
	return selectionBoxInfo{lineOffset: offset, lineHeight: height, minX: math.MaxFloat32, maxX: -math.MaxFloat32}
}

func (b *selectionBoxInfo) add(x1, x2 float32) {
	b.minX = min(b.minX, x1)
	b.maxX = max(b.maxX, x2)
}

// repositionSelectionHandles rebuilds the highlight between the selection
// handles. Lines other than the last are extended to the control edge in
// the direction the selection continues.
func (c *Controller) repositionSelectionHandles() {
	ev := c.event
	lm, vm := c.logical, c.visual
	d := ev.decorator

	start, end := ev.leftSelectionPosition, ev.rightSelectionPosition
	if start == end {
		return
	}
	d.ClearHighlights()

	isLastCharacter := end >= len(lm.Text)
	lastIndex := end
	if isLastCharacter {
		lastIndex = end - 1
	}
	startDirection := lm.GetCharacterDirection(start)
	endDirection := lm.GetCharacterDirection(lastIndex)

	swapped := start > end
	d.SetSelectionHandleFlipState(swapped, startDirection, endDirection)
	if swapped {
		start, end = end, start
	}
	if end > len(vm.CharactersToGlyph) || len(vm.Lines) == 0 {
		return
	}

	endMinusOne := end - 1
	glyphStart := vm.CharactersToGlyph[start]
	glyphEnd := vm.CharactersToGlyph[endMinusOne] + max(vm.GlyphsPerCharacter[endMinusOne]-1, 0)
	for glyphEnd < len(vm.Glyphs)-1 && vm.CharactersPerGlyph[glyphEnd] == 0 {
		glyphEnd++
	}

	firstLine, numberOfLines := vm.GetNumberOfLines(glyphStart, 1+glyphEnd-glyphStart)
	lineIndex := firstLine
	line := vm.Lines[lineIndex]
	lastGlyphOfLine := line.Glyphs.End() - 1

	boxes := make([]selectionBoxInfo, 1, numberOfLines)
	boxes[0] = newSelectionBoxInfo(text.CalculateLineOffset(vm.Lines, firstLine)+c.scrollPosition.Y, line.Height())
	box := &boxes[0]

	charsStart := vm.CharactersPerGlyph[glyphStart]
	splitStart := charsStart > 1 && text.HasLigatureMustBreak(lm.GetScript(start))
	charsEnd := vm.CharactersPerGlyph[glyphEnd]
	splitEnd := glyphStart != glyphEnd && charsEnd > 1 && text.HasLigatureMustBreak(lm.GetScript(endMinusOne))

	for g := glyphStart; g <= glyphEnd; g++ {
		glyph := vm.Glyphs[g]
		base := line.AlignmentOffset + vm.GlyphPositions[g].X - glyph.XBearing + c.scrollPosition.X

		switch {
		case splitStart:
			adv := glyph.Advance / float32(charsStart)
			inter := start - vm.GlyphsToCharacters[glyphStart]
			count := charsStart - inter
			if glyphStart == glyphEnd {
				count = end - start
			}
			shift := inter
			if lm.GetCharacterDirection(start) == text.RightToLeft {
				shift = charsStart - inter - count
			}
			x := base + adv*float32(shift)
			x2 := x + float32(count)*adv
			box.add(x, x2)
			d.AddHighlight(x, box.lineOffset, x2, box.lineOffset+box.lineHeight)
			splitStart = false
			continue

		case splitEnd && g == glyphEnd:
			adv := glyph.Advance / float32(charsEnd)
			inter := end - vm.GlyphsToCharacters[glyphEnd]
			count := charsEnd - inter
			x := base
			if lm.GetCharacterDirection(end) == text.RightToLeft {
				x += adv * float32(count)
			}
			x2 := x + float32(inter)*adv
			box.add(x, x2)
			d.AddHighlight(x, box.lineOffset, x2, box.lineOffset+box.lineHeight)
			splitEnd = false
			continue
		}

		x2 := base + glyph.Advance
		box.add(base, x2)
		d.AddHighlight(base, box.lineOffset, x2, box.lineOffset+box.lineHeight)

		if g == lastGlyphOfLine && lineIndex+1 < len(vm.Lines) {
			lineIndex++
			line = vm.Lines[lineIndex]
			lastGlyphOfLine = line.Glyphs.End() - 1
			if lineIndex < firstLine+numberOfLines {
				boxes = append(boxes, newSelectionBoxInfo(box.lineOffset+box.lineHeight, line.Height()))
				box = &boxes[len(boxes)-1]
			}
		}
	}

	minX := float32(math.MaxFloat32)
	maxX := float32(-math.MaxFloat32)
	var size text.Vector2
	for _, b := range boxes {
		size.Y += b.lineHeight
		minX = min(minX, b.minX)
		maxX = max(maxX, b.maxX)
	}

	if len(boxes) > 1 {
		width := vm.ControlSize.X
		first := boxes[0]
		firstDir := vm.Lines[firstLine].Direction
		if firstDir != text.LeftToRight && startDirection != text.LeftToRight {
			d.AddHighlight(0, first.lineOffset, first.minX, first.lineOffset+first.lineHeight)
			minX = 0
		}
		if firstDir == text.LeftToRight && startDirection == text.LeftToRight {
			d.AddHighlight(first.maxX, first.lineOffset, width, first.lineOffset+first.lineHeight)
			maxX = width
		}

		if len(boxes) > 2 {
			for _, b := range boxes[1 : len(boxes)-1] {
				d.AddHighlight(0, b.lineOffset, b.minX, b.lineOffset+b.lineHeight)
				d.AddHighlight(b.maxX, b.lineOffset, width, b.lineOffset+b.lineHeight)
			}
			minX = 0
			maxX = width
		}

		last := boxes[len(boxes)-1]
		lastDir := vm.Lines[firstLine+len(boxes)-1].Direction
		if lastDir == text.LeftToRight && endDirection == text.LeftToRight {
			d.AddHighlight(0, last.lineOffset, last.minX, last.lineOffset+last.lineHeight)
			minX = 0
		}
		if lastDir != text.LeftToRight && endDirection != text.LeftToRight {
			d.AddHighlight(last.maxX, last.lineOffset, width, last.lineOffset+last.lineHeight)
			maxX = width
		}
	}

	size.X = maxX - minX
	d.SetHighlightBox(text.Vector2{X: minX, Y: boxes[0].lineOffset}, size)

	if !d.IsSmoothHandlePanEnabled() {
		left := c.getCursorPosition(ev.leftSelectionPosition)
		lp := left.PrimaryPosition.Add(c.scrollPosition)
		d.SetHandlePosition(decorator.LeftSelectionHandle, lp.X, left.LineOffset+c.scrollPosition.Y, left.LineHeight)

		right := c.getCursorPosition(ev.rightSelectionPosition)
		rp := right.PrimaryPosition.Add(c.scrollPosition)
		d.SetHandlePosition(decorator.RightSelectionHandle, rp.X, right.LineOffset+c.scrollPosition.Y, right.LineHeight)
	}

	if swapped {
		ev.primaryCursorPosition = ev.leftSelectionPosition
	} else {
		ev.primaryCursorPosition = ev.rightSelectionPosition
	}
	ev.decoratorUpdated = true
}

// repositionSelectionHandlesAt selects the word under (x, y), in text
// coordinates. Over white space the cursor moves there instead.
func (c *Controller) repositionSelectionHandlesAt(x, y float32) {
	ev := c.event
	if c.IsShowingPlaceholderText() || len(c.visual.Glyphs) == 0 || len(c.visual.Lines) == 0 {
		return
	}

	start, end, found := text.FindSelectionIndices(c.logical, c.visual, x, y)
	if found {
		c.ChangeState(Selecting)
		ev.leftSelectionPosition = start
		ev.rightSelectionPosition = end
		ev.updateLeftSelectionPosition = true
		ev.updateRightSelectionPosition = true
		ev.updateHighlightBox = true
		ev.scrollAfterUpdatePosition = start != end
		return
	}

	c.ChangeState(Editing)
	ev.primaryCursorPosition = end
	ev.updateCursorPosition = true
	ev.updateGrabHandlePosition = true
	ev.scrollAfterUpdatePosition = true
	ev.updateInputStyle = true
}

// retrieveSelection returns the text between the selection handles and
// removes it from the model when remove is set.
func (c *Controller) retrieveSelection(remove bool) string {
	ev := c.event
	left, right := ev.leftSelectionPosition, ev.rightSelectionPosition
	if left == right {
		return ""
	}

	start, stop := min(left, right), max(left, right)
	length := stop - start
	lm := c.logical
	if start+length > len(lm.Text) {
		return ""
	}
	selected := string(lm.Text[start:stop])

	if remove {
		c.retrieveInputStyle(start)
		lm.UpdateTextStyleRuns(start, -length)
		c.updateInfo.CharacterIndex = start
		c.updateInfo.NumberOfCharactersToRemove = length
		lm.Text = text.EraseRange(lm.Text, start, stop)
		ev.primaryCursorPosition = start
	} else {
		ev.primaryCursorPosition = stop
	}
	ev.decoratorUpdated = true
	return selected
}

// sendSelectionToClipboard copies, or cuts when remove is set, the selected
// text and returns to editing.
func (c *Controller) sendSelectionToClipboard(remove bool) {
	selected := c.retrieveSelection(remove)
	if c.clipboard != nil && selected != "" {
		c.clipboard.SetItem(selected)
	}
	c.ChangeState(Editing)
}

// removeSelectedText deletes the selection. Returns whether text was
// removed.
func (c *Controller) removeSelectedText() bool {
	if c.event.state != Selecting {
		return false
	}
	if c.retrieveSelection(true) == "" {
		return false
	}
	c.ChangeState(Editing)
	return true
}

// SelectedText returns the text between the selection handles.
func (c *Controller) SelectedText() string {
	if c.event == nil {
		return ""
	}
	start := min(c.event.leftSelectionPosition, c.event.rightSelectionPosition)
	stop := max(c.event.leftSelectionPosition, c.event.rightSelectionPosition)
	if stop > len(c.logical.Text) {
		return ""
	}
	return string(c.logical.Text[start:stop])
}
