package controller

import (
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// ============================================================================
// Event Processing
// ============================================================================

// processInputEvents applies the queued events to the up to date models and
// moves the decorations. Returns whether the decorator changed.
func (c *Controller) processInputEvents() bool {
	ev := c.event
	if ev == nil {
		return false
	}

	for _, e := range ev.queue {
		c.log.Debug("event", zap.Stringer("type", e.Type), zap.Int("code", e.Code),
			zap.Float32("x", e.X), zap.Float32("y", e.Y))
		switch e.Type {
		case EventCursorKey:
			c.onCursorKeyEvent(e)
		case EventTap:
			c.onTapEvent(e)
		case EventLongPress:
			c.onLongPressEvent(e)
		case EventPan:
			c.onPanEvent(e)
		case EventGrabHandle, EventLeftSelectionHandle, EventRightSelectionHandle:
			c.onHandleEvent(e)
		case EventSelect:
			c.onSelectEvent(e)
		case EventSelectAll:
			c.onSelectAllEvent()
		}
	}

	if ev.updateCursorPosition || ev.updateHighlightBox {
		c.notifyImfManager()
	}

	if ev.updateCursorPosition {
		info := c.getCursorPosition(ev.primaryCursorPosition)
		if ev.updateCursorHookPosition {
			ev.cursorHookPositionX = info.PrimaryPosition.X
			ev.updateCursorHookPosition = false
		}
		if ev.scrollAfterDelete {
			c.scrollTextToMatchCursor(info)
		}
		if ev.scrollAfterUpdatePosition {
			c.scrollToMakePositionVisible(text.Vector2{X: info.PrimaryPosition.X, Y: info.LineOffset}, info.LineHeight)
		}
		ev.scrollAfterUpdatePosition = false
		ev.scrollAfterDelete = false

		c.updateCursorPosition(info)

		ev.decoratorUpdated = true
		ev.updateCursorPosition = false
		ev.updateGrabHandlePosition = false
	} else {
		var leftInfo, rightInfo text.CursorInfo
		if ev.updateHighlightBox {
			leftInfo = c.getCursorPosition(ev.leftSelectionPosition)
			rightInfo = c.getCursorPosition(ev.rightSelectionPosition)

			if ev.scrollAfterUpdatePosition && ev.updateLeftSelectionPosition {
				c.scrollToMakePositionVisible(text.Vector2{X: leftInfo.PrimaryPosition.X, Y: leftInfo.LineOffset}, leftInfo.LineHeight)
			}
			if ev.scrollAfterUpdatePosition && ev.updateRightSelectionPosition {
				c.scrollToMakePositionVisible(text.Vector2{X: rightInfo.PrimaryPosition.X, Y: rightInfo.LineOffset}, rightInfo.LineHeight)
			}
		}

		if ev.updateLeftSelectionPosition {
			c.updateSelectionHandle(decorator.LeftSelectionHandle, leftInfo)
			c.SetPopupButtons()
			ev.decoratorUpdated = true
			ev.updateLeftSelectionPosition = false
		}
		if ev.updateRightSelectionPosition {
			c.updateSelectionHandle(decorator.RightSelectionHandle, rightInfo)
			c.SetPopupButtons()
			ev.decoratorUpdated = true
			ev.updateRightSelectionPosition = false
		}

		if ev.updateHighlightBox {
			c.repositionSelectionHandles()
			ev.updateLeftSelectionPosition = false
			ev.updateRightSelectionPosition = false
			ev.updateHighlightBox = false
		}
		ev.scrollAfterUpdatePosition = false
	}

	if ev.updateInputStyle {
		c.retrieveInputStyle(max(ev.primaryCursorPosition-1, 0))
		ev.updateInputStyle = false
	}

	ev.queue = ev.queue[:0]

	updated := ev.decoratorUpdated
	ev.decoratorUpdated = false
	return updated
}

// ============================================================================
// Handlers
// ============================================================================

func (c *Controller) onCursorKeyEvent(e Event) {
	ev := c.event
	vm := c.visual

	switch Key(e.Code) {
	case KeyCursorLeft:
		if ev.primaryCursorPosition > 0 {
			ev.primaryCursorPosition = c.calculateNewCursorIndex(ev.primaryCursorPosition - 1)
		}
	case KeyCursorRight:
		if len(c.logical.Text) > ev.primaryCursorPosition {
			ev.primaryCursorPosition = c.calculateNewCursorIndex(ev.primaryCursorPosition)
		}
	case KeyCursorUp:
		lineIndex := vm.GetLineOfCharacter(max(ev.primaryCursorPosition-1, 0))
		if lineIndex > 0 && lineIndex < len(vm.Lines) {
			info := c.getCursorPosition(ev.primaryCursorPosition)
			above := vm.Lines[lineIndex-1]
			hitY := info.LineOffset - 0.5*above.Height()
			ev.primaryCursorPosition = text.GetClosestCursorIndex(c.logical, vm, ev.cursorHookPositionX, hitY)
		}
	case KeyCursorDown:
		lineIndex := vm.GetLineOfCharacter(max(ev.primaryCursorPosition-1, 0))
		if lineIndex+1 < len(vm.Lines) {
			info := c.getCursorPosition(ev.primaryCursorPosition)
			below := vm.Lines[lineIndex+1]
			hitY := info.LineOffset + info.LineHeight + 0.5*below.Height()
			ev.primaryCursorPosition = text.GetClosestCursorIndex(c.logical, vm, ev.cursorHookPositionX, hitY)
		}
	}

	ev.updateCursorPosition = true
	ev.updateInputStyle = true
	ev.scrollAfterUpdatePosition = true
}

func (c *Controller) onTapEvent(e Event) {
	ev := c.event
	if e.Code != 1 {
		return
	}
	if c.IsShowingRealText() {
		x := e.X - c.scrollPosition.X
		y := e.Y - c.scrollPosition.Y
		ev.cursorHookPositionX = x
		ev.primaryCursorPosition = text.GetClosestCursorIndex(c.logical, c.visual, x, y)
		ev.decorator.DelayCursorBlink()
	} else {
		ev.primaryCursorPosition = 0
	}

	ev.updateCursorPosition = true
	ev.updateGrabHandlePosition = true
	ev.scrollAfterUpdatePosition = true
	ev.updateInputStyle = true

	if ev.imf != nil {
		ev.imf.SetCursorPosition(ev.primaryCursorPosition)
		ev.imf.NotifyCursorPosition()
	}
}

func (c *Controller) onPanEvent(e Event) {
	d := c.event.decorator
	horizontal := d.IsHorizontalScrollEnabled()
	vertical := d.IsVerticalScrollEnabled()
	if !horizontal && !vertical {
		return
	}

	switch decorator.PanState(e.Code) {
	case decorator.PanStarted, decorator.PanContinuing:
		layoutSize := c.visual.LayoutSize
		current := c.scrollPosition
		if horizontal {
			c.scrollPosition.X += e.X
			c.clampHorizontalScroll(layoutSize)
		}
		if vertical {
			c.scrollPosition.Y += e.Y
			c.clampVerticalScroll(layoutSize)
		}
		d.UpdatePositions(c.scrollPosition.Sub(current))
	}
}

func (c *Controller) onLongPressEvent(Event) {
	ev := c.event
	if ev.state == Editing {
		c.ChangeState(EditingWithPopup)
		ev.decoratorUpdated = true
	}
}

func (c *Controller) onHandleEvent(e Event) {
	ev := c.event
	d := ev.decorator
	state := decorator.HandleState(e.Code)
	stopScrolling := state == decorator.HandleStopScrolling
	smooth := d.IsSmoothHandlePanEnabled()

	switch state {
	case decorator.HandlePressed:
		position := text.GetClosestCursorIndex(c.logical, c.visual, e.X-c.scrollPosition.X, e.Y-c.scrollPosition.Y)

		switch e.Type {
		case EventGrabHandle:
			c.ChangeState(GrabHandlePanning)
			if position != ev.primaryCursorPosition {
				ev.updateCursorPosition = true
				ev.updateGrabHandlePosition = !smooth
				ev.primaryCursorPosition = position
			}
		case EventLeftSelectionHandle:
			c.ChangeState(SelectionHandlePanning)
			if position != ev.leftSelectionPosition && position != ev.rightSelectionPosition {
				ev.updateHighlightBox = true
				ev.updateLeftSelectionPosition = !smooth
				ev.leftSelectionPosition = position
			}
		case EventRightSelectionHandle:
			c.ChangeState(SelectionHandlePanning)
			if position != ev.rightSelectionPosition && position != ev.leftSelectionPosition {
				ev.updateHighlightBox = true
				ev.updateRightSelectionPosition = !smooth
				ev.rightSelectionPosition = position
			}
		}
		ev.decoratorUpdated = smooth

	case decorator.HandleReleased, decorator.HandleStopScrolling:
		position := 0
		if stopScrolling || smooth {
			position = text.GetClosestCursorIndex(c.logical, c.visual, e.X-c.scrollPosition.X, e.Y-c.scrollPosition.Y)
		}

		switch e.Type {
		case EventGrabHandle:
			ev.updateCursorPosition = true
			ev.updateGrabHandlePosition = true
			ev.updateInputStyle = true
			if c.clipboardHasItems() {
				c.ChangeState(EditingWithPastePopup)
			}
			if stopScrolling || smooth {
				ev.scrollAfterUpdatePosition = true
				ev.primaryCursorPosition = position
			}
		case EventLeftSelectionHandle:
			c.ChangeState(Selecting)
			ev.updateHighlightBox = true
			ev.updateLeftSelectionPosition = true
			if stopScrolling || smooth {
				ev.scrollAfterUpdatePosition = true
				if position != ev.rightSelectionPosition && position != ev.leftSelectionPosition {
					ev.leftSelectionPosition = position
				}
			}
		case EventRightSelectionHandle:
			c.ChangeState(Selecting)
			ev.updateHighlightBox = true
			ev.updateRightSelectionPosition = true
			if stopScrolling || smooth {
				ev.scrollAfterUpdatePosition = true
				if position != ev.rightSelectionPosition && position != ev.leftSelectionPosition {
					ev.rightSelectionPosition = position
				}
			}
		}
		ev.decoratorUpdated = true

	case decorator.HandleScrolling:
		c.onHandleScrolling(e, smooth)
	}
}

// onHandleScrolling scrolls the text by the speed carried in the event and
// moves the handle being dragged to the character now under the edge.
func (c *Controller) onHandleScrolling(e Event, smooth bool) {
	ev := c.event
	d := ev.decorator
	layoutSize := c.visual.LayoutSize
	current := c.scrollPosition

	c.scrollPosition.X += e.X
	c.scrollPosition.Y += e.Y
	c.clampHorizontalScroll(layoutSize)
	c.clampVerticalScroll(layoutSize)

	endOfScroll := false
	if current == c.scrollPosition {
		d.NotifyEndOfScroll()
		endOfScroll = true
	}

	handle := decorator.GrabHandle
	switch e.Type {
	case EventLeftSelectionHandle:
		handle = decorator.LeftSelectionHandle
	case EventRightSelectionHandle:
		handle = decorator.RightSelectionHandle
	}

	position := d.HandlePosition(handle)
	if d.IsHorizontalScrollEnabled() {
		position.X = c.visual.ControlSize.X
		if e.X > 0 {
			position.X = 0
		}
	}
	if d.IsVerticalScrollEnabled() {
		position.X = ev.cursorHookPositionX
		position.Y = c.visual.ControlSize.Y
		if e.Y > 0 {
			position.Y = 0
		}
	}
	index := text.GetClosestCursorIndex(c.logical, c.visual, position.X-c.scrollPosition.X, position.Y-c.scrollPosition.Y)

	if handle == decorator.GrabHandle {
		c.ChangeState(GrabHandlePanning)
		if ev.primaryCursorPosition != index {
			ev.updateCursorPosition = true
			ev.updateGrabHandlePosition = !smooth
			ev.scrollAfterUpdatePosition = true
			ev.primaryCursorPosition = index
		}
		ev.updateInputStyle = ev.updateCursorPosition
		ev.decoratorUpdated = smooth
		return
	}

	c.ChangeState(SelectionHandlePanning)
	differentHandles := ev.leftSelectionPosition != index && ev.rightSelectionPosition != index
	if differentHandles || endOfScroll {
		ev.updateHighlightBox = true
		if handle == decorator.LeftSelectionHandle {
			ev.updateLeftSelectionPosition = !smooth
			ev.updateRightSelectionPosition = smooth
			ev.leftSelectionPosition = index
		} else {
			ev.updateRightSelectionPosition = !smooth
			ev.updateLeftSelectionPosition = smooth
			ev.rightSelectionPosition = index
		}
	}
	if ev.updateLeftSelectionPosition || ev.updateRightSelectionPosition {
		c.repositionSelectionHandles()
		ev.scrollAfterUpdatePosition = !smooth
	}
	ev.decoratorUpdated = true
}

func (c *Controller) onSelectEvent(e Event) {
	if c.event.selectionEnabled {
		c.repositionSelectionHandlesAt(e.X-c.scrollPosition.X, e.Y-c.scrollPosition.Y)
	}
}

func (c *Controller) onSelectAllEvent() {
	ev := c.event
	if !ev.selectionEnabled {
		return
	}
	c.ChangeState(Selecting)
	ev.leftSelectionPosition = 0
	ev.rightSelectionPosition = len(c.logical.Text)
	ev.scrollAfterUpdatePosition = true
	ev.updateLeftSelectionPosition = true
	ev.updateRightSelectionPosition = true
	ev.updateHighlightBox = true
}
