package controller

import (
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text/decorator"
)

// State is the editing state of a text.
type State uint8

const (
	Inactive State = iota
	Interrupted
	Selecting
	Editing
	EditingWithPopup
	EditingWithGrabHandle
	EditingWithPastePopup
	GrabHandlePanning
	SelectionHandlePanning
)

var stateNames = [...]string{
	Inactive:               "inactive",
	Interrupted:            "interrupted",
	Selecting:              "selecting",
	Editing:                "editing",
	EditingWithPopup:       "editing-with-popup",
	EditingWithGrabHandle:  "editing-with-grab-handle",
	EditingWithPastePopup:  "editing-with-paste-popup",
	GrabHandlePanning:      "grab-handle-panning",
	SelectionHandlePanning: "selection-handle-panning",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func isEditingState(s State) bool {
	switch s {
	case Editing, EditingWithPopup, EditingWithGrabHandle, EditingWithPastePopup:
		return true
	}
	return false
}

// ChangeState moves to newState and sets the decorations it shows. Moving
// to the current state does nothing.
func (c *Controller) ChangeState(newState State) {
	ev := c.event
	if ev == nil || ev.state == newState {
		return
	}
	c.log.Debug("state", zap.Stringer("from", ev.state), zap.Stringer("to", newState))
	ev.state = newState
	d := ev.decorator

	startBlink := func() {
		if ev.cursorBlinkEnabled {
			d.StartCursorBlink()
		}
	}
	closePopup := func() {
		if ev.grabHandlePopupEnabled {
			d.SetPopupActive(false)
		}
	}
	openPopup := func() {
		if ev.grabHandlePopupEnabled {
			c.SetPopupButtons()
			d.SetPopupActive(true)
		}
	}
	setHandles := func(grab, selection bool) {
		d.SetHandleActive(decorator.GrabHandle, grab)
		d.SetHandleActive(decorator.LeftSelectionHandle, selection)
		d.SetHandleActive(decorator.RightSelectionHandle, selection)
	}

	switch newState {
	case Inactive:
		d.SetActiveCursor(decorator.ActiveCursorNone)
		d.StopCursorBlink()
		setHandles(false, false)
		d.SetPopupActive(false)
		c.hideClipboard()

	case Interrupted:
		setHandles(false, false)
		d.SetPopupActive(false)
		c.hideClipboard()

	case Selecting:
		d.SetActiveCursor(decorator.ActiveCursorNone)
		d.StopCursorBlink()
		setHandles(false, true)
		openPopup()

	case Editing:
		d.SetActiveCursor(decorator.ActiveCursorPrimary)
		startBlink()
		setHandles(false, false)
		closePopup()
		c.hideClipboard()

	case EditingWithPopup:
		d.SetActiveCursor(decorator.ActiveCursorPrimary)
		startBlink()
		if ev.selectionEnabled {
			setHandles(false, false)
		} else {
			d.SetHandleActive(decorator.GrabHandle, true)
		}
		openPopup()
		c.hideClipboard()

	case EditingWithGrabHandle:
		d.SetActiveCursor(decorator.ActiveCursorPrimary)
		startBlink()
		setHandles(true, false)
		closePopup()
		c.hideClipboard()

	case SelectionHandlePanning:
		d.SetActiveCursor(decorator.ActiveCursorNone)
		d.StopCursorBlink()
		setHandles(false, true)
		closePopup()

	case GrabHandlePanning:
		d.SetActiveCursor(decorator.ActiveCursorPrimary)
		startBlink()
		setHandles(true, false)
		closePopup()

	case EditingWithPastePopup:
		d.SetActiveCursor(decorator.ActiveCursorPrimary)
		startBlink()
		setHandles(true, false)
		openPopup()
		c.hideClipboard()
	}
	ev.decoratorUpdated = true
}

// SetPopupButtons enables the popup buttons that make sense in the current
// state.
func (c *Controller) SetPopupButtons() {
	ev := c.event
	buttons := decorator.ButtonsNone
	clipboardFull := c.clipboardHasItems()

	switch ev.state {
	case Selecting:
		buttons = decorator.ButtonCut | decorator.ButtonCopy
		if clipboardFull {
			buttons |= decorator.ButtonPaste | decorator.ButtonClipboard
		}
		if !ev.allTextSelected {
			buttons |= decorator.ButtonSelectAll
		}
	case EditingWithPopup:
		if c.IsShowingRealText() {
			buttons = decorator.ButtonSelect | decorator.ButtonSelectAll
		}
		if clipboardFull {
			buttons |= decorator.ButtonPaste | decorator.ButtonClipboard
		}
	case EditingWithPastePopup:
		if clipboardFull {
			buttons = decorator.ButtonPaste | decorator.ButtonClipboard
		}
	}
	ev.decorator.SetEnabledPopupButtons(buttons)
}

func (c *Controller) clipboardHasItems() bool {
	return c.clipboard != nil && c.clipboard.NumberOfItems() > 0
}

func (c *Controller) hideClipboard() {
	if c.clipboard != nil && c.config.ClipboardHideEnabled {
		c.clipboard.HideClipboard()
	}
}

func (c *Controller) showClipboard() {
	if c.clipboard != nil {
		c.clipboard.ShowClipboard()
	}
}

// IsClipboardVisible reports whether the clipboard UI is shown.
func (c *Controller) IsClipboardVisible() bool {
	return c.clipboard != nil && c.clipboard.IsVisible()
}
