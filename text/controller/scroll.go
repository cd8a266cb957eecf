package controller

import (
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// clampHorizontalScroll keeps the text covering the control horizontally.
func (c *Controller) clampHorizontalScroll(layoutSize text.Vector2) {
	c.scrollPosition.X = c.clampAxis(c.scrollPosition.X, layoutSize.X, c.visual.ControlSize.X)
}

// clampVerticalScroll keeps the text covering the control vertically.
func (c *Controller) clampVerticalScroll(layoutSize text.Vector2) {
	c.scrollPosition.Y = c.clampAxis(c.scrollPosition.Y, layoutSize.Y, c.visual.ControlSize.Y)
}

func (c *Controller) clampAxis(position, content, control float32) float32 {
	if content <= control {
		return 0
	}
	if position < control-content {
		position = control - content
	} else if position > 0 {
		position = 0
	}
	if c.event != nil {
		c.event.decoratorUpdated = true
	}
	return position
}

// scrollToMakePositionVisible scrolls just enough for a cursor at position
// (layout coordinates) with lineHeight to be fully inside the control.
func (c *Controller) scrollToMakePositionVisible(position text.Vector2, lineHeight float32) {
	cursorWidth := c.event.decorator.CursorWidth()
	size := c.visual.ControlSize
	endX := position.X + cursorWidth
	endY := position.Y + lineHeight

	if position.X+c.scrollPosition.X < 0 {
		c.scrollPosition.X = -position.X
	} else if endX+c.scrollPosition.X > size.X {
		c.scrollPosition.X = size.X - endX
	}

	if position.Y+c.scrollPosition.Y < 0 {
		c.scrollPosition.Y = -position.Y
	} else if endY+c.scrollPosition.Y > size.Y {
		c.scrollPosition.Y = size.Y - endY
	}
}

// scrollTextToMatchCursor scrolls so the text under the cursor stays where
// the decorator last drew the cursor, after text before it was removed.
func (c *Controller) scrollTextToMatchCursor(info text.CursorInfo) {
	current := c.event.decorator.CursorPosition(decorator.PrimaryCursor)
	c.scrollPosition.X = current.X - info.PrimaryPosition.X
	c.scrollPosition.Y = current.Y - info.LineOffset

	c.clampHorizontalScroll(c.visual.LayoutSize)
	c.clampVerticalScroll(c.visual.LayoutSize)

	c.scrollToMakePositionVisible(info.PrimaryPosition, info.LineHeight)
}
