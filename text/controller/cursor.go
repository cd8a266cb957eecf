package controller

import (
	"math"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// IsShowingPlaceholderText reports whether the models hold the placeholder.
func (c *Controller) IsShowingPlaceholderText() bool {
	return c.event != nil && c.event.isShowingPlaceholderText
}

// IsShowingRealText reports whether the models hold user text.
func (c *Controller) IsShowingRealText() bool {
	return !c.IsShowingPlaceholderText() && len(c.logical.Text) > 0
}

// getCursorPosition returns the cursor geometry of the logical position
// index in layout coordinates.
func (c *Controller) getCursorPosition(index int) text.CursorInfo {
	if !c.IsShowingRealText() {
		var info text.CursorInfo
		info.LineHeight = c.fonts.FontMetrics(c.fontID()).LineHeight()
		info.PrimaryCursorHeight = info.LineHeight

		switch c.config.HorizontalAlignment {
		case text.AlignBegin:
			info.PrimaryPosition.X = 0
		case text.AlignCenter:
			info.PrimaryPosition.X = float32(math.Floor(0.5 * float64(c.visual.ControlSize.X)))
		case text.AlignEnd:
			info.PrimaryPosition.X = c.visual.ControlSize.X - c.event.decorator.CursorWidth()
		}
		return info
	}

	info := text.GetCursorPosition(c.logical, c.visual, index)
	if c.IsMultiLineEnabled() {
		// Keep the cursor inside the control when trailing white space
		// overflows the line.
		limit := c.visual.ControlSize.X - c.event.decorator.CursorWidth()
		if info.PrimaryPosition.X < 0 {
			info.PrimaryPosition.X = 0
		} else if info.PrimaryPosition.X > limit {
			info.PrimaryPosition.X = limit
		}
	}
	return info
}

// calculateNewCursorIndex returns the cursor position one step from the
// current one towards index. Glyph clusters are skipped as a whole, ligatures
// of scripts that must break are stepped through character by character.
func (c *Controller) calculateNewCursorIndex(index int) int {
	ev := c.event
	vm := c.visual
	cursor := ev.primaryCursorPosition
	if index >= len(vm.CharactersToGlyph) {
		return cursor
	}

	glyph := vm.CharactersToGlyph[index]
	n := vm.CharactersPerGlyph[glyph]
	if n > 1 && text.HasLigatureMustBreak(c.logical.GetScript(index)) {
		n = 1
	}
	for n == 0 && glyph < len(vm.CharactersPerGlyph)-1 {
		glyph++
		n = vm.CharactersPerGlyph[glyph]
	}

	if index < cursor {
		cursor -= n
	} else {
		cursor += n
	}
	ev.updateCursorHookPosition = true
	return cursor
}

// updateCursorPosition moves the cursors and the grab handle to info.
func (c *Controller) updateCursorPosition(info text.CursorInfo) {
	ev := c.event
	d := ev.decorator
	scroll := c.scrollPosition

	primary := info.PrimaryPosition.Add(scroll)
	d.SetCursorPosition(decorator.PrimaryCursor, primary.X, primary.Y, info.PrimaryCursorHeight, info.LineHeight)

	if ev.updateGrabHandlePosition {
		d.SetHandlePosition(decorator.GrabHandle, primary.X, info.LineOffset+scroll.Y, info.LineHeight)
	}

	if info.IsSecondaryCursor {
		secondary := info.SecondaryPosition.Add(scroll)
		d.SetCursorPosition(decorator.SecondaryCursor, secondary.X, secondary.Y, info.SecondaryCursorHeight, info.LineHeight)
	}

	if isEditingState(ev.state) || ev.state == GrabHandlePanning {
		if info.IsSecondaryCursor {
			d.SetActiveCursor(decorator.ActiveCursorBoth)
		} else {
			d.SetActiveCursor(decorator.ActiveCursorPrimary)
		}
	} else {
		d.SetActiveCursor(decorator.ActiveCursorNone)
	}
}

// updateSelectionHandle moves a selection handle to info.
func (c *Controller) updateSelectionHandle(h decorator.HandleType, info text.CursorInfo) {
	if h != decorator.LeftSelectionHandle && h != decorator.RightSelectionHandle {
		return
	}
	ev := c.event
	pos := info.PrimaryPosition.Add(c.scrollPosition)
	ev.decorator.SetHandlePosition(h, pos.X, info.LineOffset+c.scrollPosition.Y, info.LineHeight)

	lo := min(ev.leftSelectionPosition, ev.rightSelectionPosition)
	hi := max(ev.leftSelectionPosition, ev.rightSelectionPosition)
	ev.allTextSelected = lo == 0 && hi == len(c.logical.Text)
}

// getNumberOfWhiteSpaces returns the run of white space starting at index.
func (c *Controller) getNumberOfWhiteSpaces(index int) int {
	n := 0
	for i := index; i < len(c.logical.Text); i++ {
		if !text.IsWhiteSpace(c.logical.Text[i]) {
			break
		}
		n++
	}
	return n
}

// getLogicalCursorPosition returns the cursor position reported to the
// input method: the start of the selection while selecting.
func (c *Controller) getLogicalCursorPosition() int {
	ev := c.event
	switch ev.state {
	case Selecting, SelectionHandlePanning:
		return min(ev.leftSelectionPosition, ev.rightSelectionPosition)
	}
	return ev.primaryCursorPosition
}

func (c *Controller) notifyImfManager() {
	ev := c.event
	if ev.imf == nil {
		return
	}
	cursor := c.getLogicalCursorPosition() - c.getNumberOfWhiteSpaces(0)
	ev.imf.SetCursorPosition(max(cursor, 0))
	ev.imf.NotifyCursorPosition()
}

func (c *Controller) resetImfManager() {
	if c.event != nil && c.event.imf != nil {
		c.event.preEditFlag = false
		c.event.imf.Reset()
	}
}

// resetCursorPosition moves the cursor to index and collapses any selection.
func (c *Controller) resetCursorPosition(index int) {
	ev := c.event
	if ev == nil {
		return
	}
	ev.primaryCursorPosition = index
	if ev.state == Selecting || ev.state == SelectionHandlePanning {
		ev.leftSelectionPosition = index
		ev.rightSelectionPosition = index
	}
}

// retrieveInputStyle sets the input style from the character before the
// cursor and reports a change to the control.
func (c *Controller) retrieveInputStyle(index int) {
	ev := c.event
	old := ev.inputStyle
	style := c.defaultInputStyle()
	if index < len(c.logical.Text) {
		colorIndex, fontID := c.logical.RetrieveStyle(index)
		if colorIndex > 0 && colorIndex < len(c.visual.Colors) {
			style.TextColor = c.visual.Colors[colorIndex]
		}
		if fontID != 0 {
			style.FontID = fontID
		}
	}
	ev.inputStyle = style
	if style != old && c.control != nil {
		c.control.InputStyleChanged(style)
	}
}
