package controller

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/agiangrant/toolkit/text"
)

const sizeEpsilon = 1e-3

// Relayout brings the models up to date, lays the text out in size and
// applies the queued input events.
func (c *Controller) Relayout(size text.Vector2) UpdateTextType {
	updated := NoneUpdated

	if size.X < sizeEpsilon || size.Y < sizeEpsilon {
		if len(c.visual.GlyphPositions) > 0 {
			c.visual.GlyphPositions = nil
			updated = ModelUpdated
		}
		c.updateInfo.Clear()
		return updated
	}

	newSize := size != c.visual.ControlSize
	if newSize {
		c.operationsPending |= Layout | Align | UpdateLayoutSize | Reorder
		c.updateInfo.FullRelayoutNeeded = true
		c.updateInfo.CharacterIndex = 0
		c.visual.ControlSize = size
		if c.event != nil {
			c.event.decorator.Relayout(size)
		}
	}

	if len(c.modifyEvents) > 0 {
		c.operationsPending |= Color
	}
	c.processModifyEvents()

	modelUpdated := c.updateModel(c.operationsPending)
	layoutSize, laidOut := c.doRelayout(size, c.operationsPending)
	if modelUpdated || laidOut {
		updated |= ModelUpdated
	}
	c.operationsPending = NoOperation

	editable := c.event != nil
	var offset text.Vector2
	if newSize && editable {
		offset = c.scrollPosition
	}
	if editable && c.IsMultiLineEnabled() {
		c.visual.VerticalOffset = 0
	}

	if editable {
		if newSize {
			c.clampHorizontalScroll(layoutSize)
			c.event.decorator.UpdatePositions(c.scrollPosition.Sub(offset))
		}
		if c.processInputEvents() {
			updated |= DecoratorUpdated
		}
	}

	c.updateInfo.Clear()
	return updated
}

// doRelayout runs the layout stage when it is pending and required.
// Returns the layout size and whether the view changed.
func (c *Controller) doRelayout(size text.Vector2, required OperationsMask) (text.Vector2, bool) {
	ops := c.operationsPending & required
	if ops&Layout == 0 {
		return c.visual.LayoutSize, ops&Align != 0
	}
	if len(c.visual.Glyphs) == 0 {
		c.visual.Lines = nil
		c.visual.GlyphPositions = nil
		if ops&UpdateLayoutSize != 0 {
			c.visual.LayoutSize = text.Vector2{}
		}
		return text.Vector2{}, true
	}

	layoutSize := c.layout.Layout(c.logical, c.visual, c.layoutParameters(size), true)
	return layoutSize, true
}

func (c *Controller) layoutParameters(size text.Vector2) text.LayoutParameters {
	return text.LayoutParameters{
		BoundingBox:         size,
		Type:                c.config.Layout,
		HorizontalAlignment: c.config.HorizontalAlignment,
		VerticalAlignment:   c.config.VerticalAlignment,
	}
}

// NaturalSize returns the size of the text laid out without width limit.
func (c *Controller) NaturalSize() text.Vector2 {
	c.processModifyEvents()
	if !c.recalculateNaturalSize {
		return c.naturalSize
	}

	c.updateInfo.ParagraphCharacterIndex = 0
	c.updateInfo.RequestedNumberOfCharacters = len(c.logical.Text)
	c.updateModel(onlyOnceOperations)

	unbounded := text.Vector2{X: math.MaxFloat32, Y: math.MaxFloat32}
	size := c.measure(unbounded)

	c.operationsPending &^= onlyOnceOperations
	c.operationsPending |= sizeOperations
	c.naturalSize = size
	c.recalculateNaturalSize = false
	c.updateInfo.Clear()
	return size
}

// HeightForWidth returns the height of the text laid out in width.
func (c *Controller) HeightForWidth(width float32) float32 {
	c.processModifyEvents()

	if math32.Abs(width-c.visual.ControlSize.X) <= sizeEpsilon &&
		!c.updateInfo.FullRelayoutNeeded && !c.updateInfo.ClearAll &&
		c.operationsPending&onlyOnceOperations == 0 {
		return c.visual.LayoutSize.Y
	}

	c.updateInfo.ParagraphCharacterIndex = 0
	c.updateInfo.RequestedNumberOfCharacters = len(c.logical.Text)
	c.updateModel(onlyOnceOperations)

	size := c.measure(text.Vector2{X: width, Y: math.MaxFloat32})

	c.operationsPending &^= onlyOnceOperations
	c.operationsPending |= sizeOperations
	c.updateInfo.Clear()
	return size.Y
}

// measure lays the text out in box without storing the result.
func (c *Controller) measure(box text.Vector2) text.Vector2 {
	if len(c.visual.Glyphs) == 0 {
		return text.Vector2{}
	}
	return c.layout.Layout(c.logical, c.visual, c.layoutParameters(box), false)
}
