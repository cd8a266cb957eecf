package decorator

import (
	"time"

	"go.uber.org/zap"
)

// HandlePan feeds a drag gesture on a handle. Dragging inside the bounding
// box reports HandlePressed with the drag point; holding the handle within
// the scroll threshold of an edge reports HandleScrolling every scroll tick
// until the handle leaves the edge or is released. Release reports
// HandleStopScrolling if scrolling was in progress, HandleReleased otherwise.
func (d *Decorator) HandlePan(h HandleType, state PanState, x, y float32) {
	if !d.handles[h].Active {
		return
	}

	switch state {
	case PanStarted:
		d.handles[h].Pressed = true
		d.changed()
		d.controller.DecorationEvent(h, HandlePressed, x, y)

	case PanContinuing:
		d.handles[h].Pressed = true
		if d.edgeScroll(h, x, y) {
			return
		}
		d.stopScrollTimer()
		d.controller.DecorationEvent(h, HandlePressed, x, y)

	case PanFinished, PanCancelled:
		d.handles[h].Pressed = false
		d.changed()
		if d.scrollTimer.IsRunning() || d.endOfScroll {
			d.endOfScroll = false
			d.stopScrollTimer()
			d.controller.DecorationEvent(h, HandleStopScrolling, x, y)
			return
		}
		d.controller.DecorationEvent(h, HandleReleased, x, y)
	}
}

// TapHandle reports a tap on a handle.
func (d *Decorator) TapHandle(h HandleType, x, y float32) {
	if d.handles[h].Active {
		d.controller.DecorationEvent(h, HandleTapped, x, y)
	}
}

// edgeScroll starts scrolling when (x, y) is near an edge of the bounding
// box in a scrollable direction. Returns false when no edge is near.
func (d *Decorator) edgeScroll(h HandleType, x, y float32) bool {
	box := d.boundingBox
	threshold := d.config.ScrollThreshold
	distance := d.config.ScrollSpeed * float32(d.config.ScrollTickInterval) / float32(time.Second)

	var sx, sy float32
	switch {
	case d.config.HorizontalScroll && x < float32(box.X)+threshold:
		sx = distance
	case d.config.HorizontalScroll && x > float32(box.X+box.Width)-threshold:
		sx = -distance
	case d.config.VerticalScroll && y < float32(box.Y)+threshold:
		sy = distance
	case d.config.VerticalScroll && y > float32(box.Y+box.Height)-threshold:
		sy = -distance
	default:
		return false
	}

	d.scrollHandle = h
	d.scrollX, d.scrollY = sx, sy
	d.startScrollTimer()
	return true
}

func (d *Decorator) startScrollTimer() {
	if d.scrollTimer.IsRunning() || d.timers == nil {
		return
	}
	d.log.Debug("handle scroll started", zap.Stringer("handle", d.scrollHandle))
	d.scrollTimer = d.timers.AddTimer(d.config.ScrollTickInterval, func() bool {
		if d.scrollHandle == handleTypeCount {
			return false
		}
		d.controller.DecorationEvent(d.scrollHandle, HandleScrolling, d.scrollX, d.scrollY)
		return true
	})
}

func (d *Decorator) stopScrollTimer() {
	d.scrollTimer.Stop()
	d.scrollTimer = nil
	d.scrollHandle = handleTypeCount
}

// NotifyEndOfScroll stops the scroll timer when the text cannot scroll
// further.
func (d *Decorator) NotifyEndOfScroll() {
	if d.scrollTimer.IsRunning() {
		d.log.Debug("end of scroll reached")
		d.endOfScroll = true
	}
	d.stopScrollTimer()
}

// IsScrolling reports whether a handle is scrolling the text.
func (d *Decorator) IsScrolling() bool {
	return d.scrollTimer.IsRunning()
}
