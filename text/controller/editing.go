package controller

import (
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// ============================================================================
// Text
// ============================================================================

// SetText replaces the whole text. The cursor moves to the end.
func (c *Controller) SetText(s string) {
	c.resetText()

	if ev := c.event; ev != nil {
		switch ev.state {
		case EditingWithPopup, EditingWithGrabHandle, EditingWithPastePopup:
			c.ChangeState(Editing)
		}
	}

	runes := []rune(s)
	if max := c.config.MaximumNumberOfCharacters; max > 0 && len(runes) > max {
		runes = runes[:max]
	}

	if len(runes) > 0 {
		c.logical.Text = runes
		c.logical.UpdateTextStyleRuns(0, len(runes))
		c.updateInfo.NumberOfCharactersToAdd = len(runes)
		c.modifyEvents = append(c.modifyEvents, textReplaced)
	} else {
		c.showPlaceholderText()
	}

	c.resetCursorPosition(len(runes))
	c.scrollPosition = text.Vector2{}
	if c.event != nil {
		c.event.scrollAfterUpdatePosition = true
		c.event.queue = c.event.queue[:0]
	}

	c.requestRelayout()
	c.textChanged()
}

// Text returns the user text; empty while the placeholder is shown.
func (c *Controller) Text() string {
	if c.IsShowingPlaceholderText() {
		return ""
	}
	return string(c.logical.Text)
}

func (c *Controller) resetText() {
	c.logical.Text = nil
	c.logical.ColorRuns = nil
	c.updateInfo.CharacterIndex = 0
	c.updateInfo.NumberOfCharactersToRemove = c.updateInfo.PreviousNumberOfCharacters
	c.updateInfo.NumberOfCharactersToAdd = 0
	c.updateInfo.ClearAll = true
	c.operationsPending = AllOperations
	c.recalculateNaturalSize = true

	if ev := c.event; ev != nil {
		ev.isShowingPlaceholderText = false
		ev.preEditFlag = false
		ev.preEditLength = 0
		c.visual.Colors[0] = c.config.TextColor
	}
	c.visual.ClearUnderlineRuns()
}

// ============================================================================
// Placeholder
// ============================================================================

// SetPlaceholderText sets the text shown while empty, when unfocused
// (inactive) or focused (active).
func (c *Controller) SetPlaceholderText(inactive, active string) {
	ev := c.event
	if ev == nil {
		return
	}
	ev.placeholderInactive = inactive
	ev.placeholderActive = active
	if !c.IsShowingRealText() {
		c.showPlaceholderText()
		c.requestRelayout()
	}
}

func (c *Controller) isPlaceholderAvailable() bool {
	return c.event != nil && (c.event.placeholderActive != "" || c.event.placeholderInactive != "")
}

// showPlaceholderText loads the placeholder for the current state into the
// models.
func (c *Controller) showPlaceholderText() {
	if !c.isPlaceholderAvailable() {
		return
	}
	ev := c.event
	ev.isShowingPlaceholderText = true

	d := ev.decorator
	d.SetHandleActive(decorator.GrabHandle, false)
	d.SetHandleActive(decorator.LeftSelectionHandle, false)
	d.SetHandleActive(decorator.RightSelectionHandle, false)

	placeholder := ev.placeholderInactive
	if ev.state != Inactive && ev.placeholderActive != "" {
		placeholder = ev.placeholderActive
	}

	c.updateInfo.CharacterIndex = 0
	c.updateInfo.NumberOfCharactersToRemove = c.updateInfo.PreviousNumberOfCharacters
	c.updateInfo.ClearAll = true

	c.logical.Text = []rune(placeholder)
	c.logical.ColorRuns = nil
	c.visual.Colors[0] = c.config.PlaceholderTextColor
	c.updateInfo.NumberOfCharactersToAdd = len(c.logical.Text)

	c.resetCursorPosition(0)
	c.recalculateNaturalSize = true
	c.operationsPending = AllOperations
	c.modifyEvents = append(c.modifyEvents, textReplaced)
}

// ============================================================================
// Insertion and Removal
// ============================================================================

// InsertText inserts s at the cursor. Pre-edit text replaces the previous
// pre-edit and is underlined until committed.
func (c *Controller) InsertText(s string, insertType InsertType) {
	ev := c.event
	if ev == nil {
		return
	}
	c.visual.ClearUnderlineRuns()

	if ev.isShowingPlaceholderText && s != "" {
		c.resetText()
		c.resetCursorPosition(0)
	}

	removedPrevious := false
	if ev.preEditFlag && ev.preEditLength > 0 {
		offset := ev.primaryCursorPosition - ev.preEditStartPosition
		removedPrevious = c.removeText(-offset, ev.preEditLength, false)
		ev.primaryCursorPosition = ev.preEditStartPosition
		ev.preEditLength = 0
	} else {
		removedPrevious = c.removeSelectedText()
	}

	runes := []rune(s)
	maxLengthReached := false
	if len(runes) > 0 {
		if insertType == Commit {
			ev.preEditFlag = false
		} else {
			if !ev.preEditFlag {
				ev.preEditStartPosition = ev.primaryCursorPosition
			}
			ev.preEditLength = len(runes)
			ev.preEditFlag = true
		}

		lm := c.logical
		numberInModel := len(lm.Text)
		count := len(runes)
		if limit := c.config.MaximumNumberOfCharacters; limit > 0 {
			count = min(max(limit-numberInModel, 0), len(runes))
			maxLengthReached = len(runes) > count
		}
		if ev.preEditFlag {
			ev.preEditLength = count
		}

		cursor := min(ev.primaryCursorPosition, numberInModel)
		c.updateInfo.IsLastCharacterNewParagraph = numberInModel > 0 && text.IsNewParagraph(lm.Text[numberInModel-1])
		lm.Text = text.InsertAt(lm.Text, cursor, runes[:count]...)
		lm.UpdateTextStyleRuns(cursor, count)

		colorIndex, _ := lm.RetrieveStyle(max(cursor-1, 0))
		current := c.visual.Colors[0]
		if colorIndex < len(c.visual.Colors) {
			current = c.visual.Colors[colorIndex]
		}
		if count > 0 && current != ev.inputStyle.TextColor {
			lm.SetColorRun(cursor, count, c.visual.ColorIndex(ev.inputStyle.TextColor))
		}

		c.updateInfo.CharacterIndex = min(cursor, c.updateInfo.CharacterIndex)
		c.updateInfo.NumberOfCharactersToAdd += count
		ev.primaryCursorPosition = cursor + count
	}

	switch {
	case len(c.logical.Text) == 0 && c.isPlaceholderAvailable():
		c.showPlaceholderText()
		ev.updateCursorPosition = true
		ev.preEditFlag = false
	case removedPrevious || len(runes) > 0:
		c.modifyEvents = append(c.modifyEvents, textInserted)
		ev.updateCursorPosition = true
		if len(c.logical.Text) < c.updateInfo.PreviousNumberOfCharacters {
			ev.scrollAfterDelete = true
		} else {
			ev.scrollAfterUpdatePosition = true
		}
	}

	if maxLengthReached {
		c.log.Debug("maximum length reached", zap.Int("characters", len(c.logical.Text)))
		c.resetImfManager()
		if c.control != nil {
			c.control.MaxLengthReached()
		}
	}
}

// RemoveText removes n characters starting offset characters from the
// cursor. Returns whether anything was removed.
func (c *Controller) RemoveText(offset, n int) bool {
	return c.removeText(offset, n, true)
}

func (c *Controller) removeText(offset, n int, updateInputStyle bool) bool {
	ev := c.event
	if ev == nil || c.IsShowingPlaceholderText() {
		return false
	}
	lm := c.logical
	cursor := ev.primaryCursorPosition

	index := cursor
	if cursor+offset >= 0 {
		index = cursor + offset
	}
	if index+n > len(lm.Text) {
		n = len(lm.Text) - index
	}
	if n <= 0 || index+n > c.updateInfo.PreviousNumberOfCharacters {
		return false
	}

	c.updateInfo.CharacterIndex = min(index, c.updateInfo.CharacterIndex)
	c.updateInfo.NumberOfCharactersToRemove += n
	if updateInputStyle {
		c.retrieveInputStyle(index)
	}
	lm.UpdateTextStyleRuns(index, -n)
	lm.Text = text.EraseRange(lm.Text, index, index+n)
	ev.primaryCursorPosition = index
	ev.scrollAfterDelete = true
	return true
}

// ============================================================================
// Keyboard and Focus
// ============================================================================

// KeyEvent applies a key press. Returns whether the key was consumed.
func (c *Controller) KeyEvent(e KeyEvent) bool {
	ev := c.event
	if ev == nil || e.State != KeyDown {
		return false
	}

	textChanged := false
	switch {
	case e.Key == KeyEscape:
		c.KeyboardFocusLostEvent()
		return true

	case e.Key.IsCursorKey():
		ev.queue = append(ev.queue, Event{Type: EventCursorKey, Code: int(e.Key)})

	case e.Key == KeyBackspace:
		removed := c.removeSelectedText()
		if !removed && ev.primaryCursorPosition > 0 {
			removed = c.removeText(-1, 1, true)
		}
		if removed {
			c.queueDeleted()
			textChanged = true
		}

	case e.Key == KeyDelete:
		removed := c.removeSelectedText()
		if !removed && ev.primaryCursorPosition < len(c.logical.Text) {
			removed = c.removeText(0, 1, true)
		}
		if removed {
			c.queueDeleted()
			textChanged = true
		}

	case e.Key == KeyReturn:
		if !c.IsMultiLineEnabled() {
			return false
		}
		ev.preEditFlag = false
		c.InsertText("\n", Commit)
		textChanged = true

	case e.Key == KeyPower || e.Key == KeyMenu || e.Key == KeyHome:
		c.ChangeState(Interrupted)

	case e.Key == KeyShiftLeft:
		// Modifier only.

	default:
		if e.Text == "" {
			return false
		}
		ev.preEditFlag = false
		c.InsertText(e.Text, Commit)
		textChanged = true
	}

	if ev.state != Interrupted && ev.state != Inactive {
		c.ChangeState(Editing)
	}

	c.requestRelayout()
	if textChanged {
		c.textChanged()
	}
	return true
}

func (c *Controller) queueDeleted() {
	if len(c.logical.Text) > 0 || !c.isPlaceholderAvailable() {
		c.modifyEvents = append(c.modifyEvents, textDeleted)
	} else {
		c.showPlaceholderText()
	}
	c.event.updateCursorPosition = true
	c.event.scrollAfterDelete = true
}

// KeyboardFocusGainEvent starts editing.
func (c *Controller) KeyboardFocusGainEvent() {
	ev := c.event
	if ev == nil {
		return
	}
	if ev.state == Inactive || ev.state == Interrupted {
		c.ChangeState(Editing)
		ev.updateCursorPosition = true
		ev.updateInputStyle = true
	}
	if c.IsShowingPlaceholderText() {
		c.showPlaceholderText()
	}
	c.requestRelayout()
}

// KeyboardFocusLostEvent stops editing.
func (c *Controller) KeyboardFocusLostEvent() {
	ev := c.event
	if ev == nil {
		return
	}
	if ev.state != Interrupted {
		c.ChangeState(Inactive)
		if !c.IsShowingRealText() {
			c.showPlaceholderText()
		}
	}
	c.requestRelayout()
}

// ============================================================================
// Gestures
// ============================================================================

// TapEvent handles a tap of tapCount taps at (x, y) in control coordinates.
func (c *Controller) TapEvent(tapCount int, x, y float32) {
	ev := c.event
	if ev == nil {
		return
	}

	switch tapCount {
	case 1:
		relayout := false
		switch {
		case !c.IsShowingPlaceholderText() && ev.state == Editing:
			c.ChangeState(EditingWithGrabHandle)
			relayout = true
		case ev.state != Editing && ev.state != EditingWithGrabHandle:
			c.ChangeState(Editing)
			relayout = true
		case c.IsShowingRealText():
			relayout = true
		}
		if relayout {
			ev.queue = append(ev.queue, Event{Type: EventTap, Code: tapCount, X: x, Y: y})
			c.requestRelayout()
		}
	case 2:
		if ev.selectionEnabled && c.IsShowingRealText() {
			c.SelectEvent(x, y, false)
		}
	}
	c.resetImfManager()
}

// PanEvent scrolls the text by displacement.
func (c *Controller) PanEvent(state decorator.PanState, displacement text.Vector2) {
	if c.event == nil {
		return
	}
	c.event.queue = append(c.event.queue, Event{Type: EventPan, Code: int(state), X: displacement.X, Y: displacement.Y})
	c.requestRelayout()
}

// LongPressEvent opens the popup, or selects the word under (x, y).
func (c *Controller) LongPressEvent(state decorator.PanState, x, y float32) {
	ev := c.event
	if ev == nil || state != decorator.PanStarted {
		return
	}
	switch {
	case !c.IsShowingRealText():
		ev.queue = append(ev.queue, Event{Type: EventLongPress, Code: int(state)})
		c.requestRelayout()
	case ev.state == Inactive:
		c.ChangeState(Editing)
		ev.queue = append(ev.queue, Event{Type: EventTap, Code: 1, X: x, Y: y})
		c.requestRelayout()
	case !c.IsClipboardVisible():
		c.resetImfManager()
		c.SelectEvent(x, y, false)
	}
}

// SelectEvent selects the word at (x, y), or everything.
func (c *Controller) SelectEvent(x, y float32, selectAll bool) {
	if c.event == nil {
		return
	}
	if selectAll {
		c.event.queue = append(c.event.queue, Event{Type: EventSelectAll})
	} else {
		c.event.queue = append(c.event.queue, Event{Type: EventSelect, X: x, Y: y})
	}
	c.requestRelayout()
}

// ============================================================================
// Popup and Clipboard
// ============================================================================

// PopupButtonTouched runs the action of a popup button.
func (c *Controller) PopupButtonTouched(b decorator.Buttons) {
	ev := c.event
	if ev == nil {
		return
	}
	switch b {
	case decorator.ButtonCut:
		c.sendSelectionToClipboard(true)
		c.operationsPending = AllOperations
		if len(c.logical.Text) > 0 || !c.isPlaceholderAvailable() {
			c.modifyEvents = append(c.modifyEvents, textDeleted)
		} else {
			c.showPlaceholderText()
		}
		ev.updateCursorPosition = true
		ev.scrollAfterDelete = true
		c.requestRelayout()
		c.textChanged()

	case decorator.ButtonCopy:
		c.sendSelectionToClipboard(false)
		ev.updateCursorPosition = true
		c.requestRelayout()

	case decorator.ButtonPaste:
		if c.clipboard != nil && c.clipboard.NumberOfItems() > 0 {
			c.PasteText(c.clipboard.GetItem(0))
		}

	case decorator.ButtonSelect:
		if ev.selectionEnabled {
			p := ev.decorator.CursorPosition(decorator.PrimaryCursor)
			c.SelectEvent(p.X, p.Y, false)
		}

	case decorator.ButtonSelectAll:
		c.SelectEvent(0, 0, true)

	case decorator.ButtonClipboard:
		c.showClipboard()
	}
}

// PasteText inserts s as committed text.
func (c *Controller) PasteText(s string) {
	c.InsertText(s, Commit)
	c.ChangeState(Editing)
	c.requestRelayout()
	c.textChanged()
}

// PasteClipboardItem pastes the clipboard item chosen in the clipboard UI.
func (c *Controller) PasteClipboardItem(index int) {
	if c.clipboard == nil {
		return
	}
	c.PasteText(c.clipboard.GetItem(index))
	c.hideClipboard()
}

// ============================================================================
// Input Method
// ============================================================================

// OnImfEvent applies an input method request and returns the state the
// input method should see.
func (c *Controller) OnImfEvent(e ImfEvent) ImfCallbackData {
	ev := c.event
	if ev == nil {
		return ImfCallbackData{}
	}

	relayout, retrieveText, retrieveCursor := false, false, false
	switch e.Type {
	case ImfCommit:
		c.InsertText(e.Text, Commit)
		relayout, retrieveCursor = true, true
	case ImfPreEdit:
		c.InsertText(e.Text, PreEdit)
		relayout, retrieveCursor = true, true
	case ImfDeleteSurrounding:
		if c.removeText(e.CursorOffset, e.NumberOfChars, false) {
			if len(c.logical.Text) > 0 || !c.isPlaceholderAvailable() {
				c.modifyEvents = append(c.modifyEvents, textDeleted)
			} else {
				c.showPlaceholderText()
			}
			ev.updateCursorPosition = true
			ev.scrollAfterDelete = true
			relayout = true
		}
	case ImfGetSurrounding:
		retrieveText, retrieveCursor = true, true
	}

	if relayout {
		c.operationsPending = AllOperations
		c.requestRelayout()
	}

	var data ImfCallbackData
	whiteSpaces := 0
	if retrieveCursor {
		whiteSpaces = c.getNumberOfWhiteSpaces(0)
		data.CursorPosition = max(c.getLogicalCursorPosition()-whiteSpaces, 0)
	}
	if retrieveText && !c.IsShowingPlaceholderText() {
		data.CurrentText = string(c.logical.Text[whiteSpaces:])
	}
	data.Update = retrieveText || retrieveCursor

	if relayout {
		c.textChanged()
	}
	return data
}

// ============================================================================
// Modify Events
// ============================================================================

// processModifyEvents turns the text modifications since the last relayout
// into model operations.
func (c *Controller) processModifyEvents() {
	if len(c.modifyEvents) == 0 {
		return
	}
	for _, m := range c.modifyEvents {
		switch m {
		case textReplaced, textInserted, textDeleted:
			c.operationsPending = AllOperations
			c.recalculateNaturalSize = true
		}
	}
	if c.event != nil {
		c.event.decorator.DelayCursorBlink()
	}
	c.modifyEvents = c.modifyEvents[:0]
}
