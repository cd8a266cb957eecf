package decorator

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
)

// ControllerInterface is implemented by the text controller to receive
// handle events and report the size of the text area.
type ControllerInterface interface {
	GetTargetSize() text.Vector2
	DecorationEvent(handle HandleType, state HandleState, x, y float32)
}

// TimerScheduler creates repeating timers on the host loop.
type TimerScheduler interface {
	AddTimer(interval time.Duration, tick func() bool) *loop.Timer
}

// Config holds the decorator settings.
type Config struct {
	CursorWidth        float32
	BlinkInterval      time.Duration
	BlinkDuration      time.Duration // zero blinks forever
	ScrollThreshold    float32
	ScrollSpeed        float32 // pixels per second
	ScrollTickInterval time.Duration
	SmoothHandlePan    bool
	HorizontalScroll   bool
	VerticalScroll     bool
	CursorColor        colorful.Color
	HighlightColor     colorful.Color
	Logger             *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CursorWidth:        1,
		BlinkInterval:      500 * time.Millisecond,
		BlinkDuration:      0,
		ScrollThreshold:    10,
		ScrollSpeed:        250,
		ScrollTickInterval: 50 * time.Millisecond,
		HorizontalScroll:   true,
		CursorColor:        colorful.Color{},
		HighlightColor:     colorful.Color{R: 0.7, G: 0.85, B: 1},
	}
}

// CursorState is the geometry and color of a cursor.
type CursorState struct {
	Position     text.Vector2
	CursorHeight float32
	LineHeight   float32
	Color        colorful.Color
}

// HandleInfo is the geometry and flags of a handle.
type HandleInfo struct {
	Position            text.Vector2
	LineHeight          float32
	Active              bool
	Pressed             bool
	HorizontallyFlipped bool
}

// Highlight is one selection rectangle.
type Highlight struct {
	X1, Y1, X2, Y2 float32
}

// Decorator holds the decorations of one editable text. It is mutated only
// from the loop goroutine.
type Decorator struct {
	controller ControllerInterface
	timers     TimerScheduler
	config     Config
	log        *zap.Logger

	boundingBox Rect
	controlSize text.Vector2

	cursors       [cursorCount]CursorState
	activeCursor  ActiveCursor
	cursorVisible bool
	blinkTimer    *loop.Timer

	handles           [handleTypeCount]HandleInfo
	selectionSwapped  bool
	startDirection    text.Direction
	endDirection      text.Direction
	swapHandlesOnFlip bool

	highlights       []Highlight
	highlightColor   colorful.Color
	highlightBoxPos  text.Vector2
	highlightBoxSize text.Vector2

	popupActive    bool
	enabledButtons Buttons

	scrollTimer    *loop.Timer
	scrollHandle   HandleType
	scrollX        float32
	scrollY        float32
	endOfScroll    bool

	revision uint64
}

// New creates a decorator reporting to controller.
func New(controller ControllerInterface, timers TimerScheduler, config Config) *Decorator {
	d := &Decorator{
		controller:     controller,
		timers:         timers,
		config:         config,
		log:            logger.Or(config.Logger),
		cursorVisible:  true,
		highlightColor: config.HighlightColor,
		scrollHandle:   handleTypeCount,
	}
	for i := range d.cursors {
		d.cursors[i].Color = config.CursorColor
	}
	return d
}

// Revision increases on every change of the decorations.
func (d *Decorator) Revision() uint64 {
	return d.revision
}

func (d *Decorator) changed() {
	d.revision++
}

// ============================================================================
// Geometry
// ============================================================================

// SetBoundingBox sets the area handles may move in.
func (d *Decorator) SetBoundingBox(box Rect) {
	d.boundingBox = box
	d.changed()
}

// BoundingBox returns the area handles may move in.
func (d *Decorator) BoundingBox() Rect {
	return d.boundingBox
}

// Relayout records the control size.
func (d *Decorator) Relayout(size text.Vector2) {
	d.controlSize = size
	if d.boundingBox.Width == 0 && d.boundingBox.Height == 0 {
		d.boundingBox = Rect{Width: int(size.X), Height: int(size.Y)}
	}
	d.changed()
}

// ControlSize returns the size given to the last Relayout.
func (d *Decorator) ControlSize() text.Vector2 {
	return d.controlSize
}

// UpdatePositions moves every decoration by the scroll delta.
func (d *Decorator) UpdatePositions(delta text.Vector2) {
	if delta == (text.Vector2{}) {
		return
	}
	for i := range d.cursors {
		d.cursors[i].Position = d.cursors[i].Position.Add(delta)
	}
	for i := range d.handles {
		d.handles[i].Position = d.handles[i].Position.Add(delta)
	}
	for i := range d.highlights {
		h := &d.highlights[i]
		h.X1 += delta.X
		h.X2 += delta.X
		h.Y1 += delta.Y
		h.Y2 += delta.Y
	}
	d.highlightBoxPos = d.highlightBoxPos.Add(delta)
	d.changed()
}

// ============================================================================
// Cursors
// ============================================================================

// SetActiveCursor selects which cursors are shown.
func (d *Decorator) SetActiveCursor(active ActiveCursor) {
	d.activeCursor = active
	d.changed()
}

// ActiveCursor returns which cursors are shown.
func (d *Decorator) ActiveCursor() ActiveCursor {
	return d.activeCursor
}

// SetCursorPosition places a cursor.
func (d *Decorator) SetCursorPosition(c Cursor, x, y, cursorHeight, lineHeight float32) {
	cs := &d.cursors[c]
	cs.Position = text.Vector2{X: x, Y: y}
	cs.CursorHeight = cursorHeight
	cs.LineHeight = lineHeight
	d.changed()
}

// Cursor returns the state of a cursor.
func (d *Decorator) Cursor(c Cursor) CursorState {
	return d.cursors[c]
}

// CursorPosition returns the position of a cursor.
func (d *Decorator) CursorPosition(c Cursor) text.Vector2 {
	return d.cursors[c].Position
}

// SetCursorColor sets the color of a cursor.
func (d *Decorator) SetCursorColor(c Cursor, color colorful.Color) {
	d.cursors[c].Color = color
	d.changed()
}

// CursorWidth returns the cursor width in pixels.
func (d *Decorator) CursorWidth() float32 {
	return d.config.CursorWidth
}

// SetCursorWidth sets the cursor width in pixels.
func (d *Decorator) SetCursorWidth(width float32) {
	d.config.CursorWidth = width
	d.changed()
}

// IsCursorVisible reports whether the cursor is in the visible blink phase
// and inside the control.
func (d *Decorator) IsCursorVisible(c Cursor) bool {
	if !d.cursorVisible {
		return false
	}
	switch d.activeCursor {
	case ActiveCursorNone:
		return false
	case ActiveCursorPrimary:
		if c != PrimaryCursor {
			return false
		}
	}
	p := d.cursors[c].Position
	return p.X >= 0 && p.X <= d.controlSize.X && p.Y >= 0 && p.Y+d.cursors[c].CursorHeight <= d.controlSize.Y
}

// StartCursorBlink starts toggling the cursor visibility.
func (d *Decorator) StartCursorBlink() {
	d.cursorVisible = true
	if d.blinkTimer.IsRunning() || d.timers == nil || d.config.BlinkInterval <= 0 {
		return
	}
	var elapsed time.Duration
	d.blinkTimer = d.timers.AddTimer(d.config.BlinkInterval, func() bool {
		elapsed += d.config.BlinkInterval
		if d.config.BlinkDuration > 0 && elapsed >= d.config.BlinkDuration {
			d.cursorVisible = true
			d.changed()
			return false
		}
		d.cursorVisible = !d.cursorVisible
		d.changed()
		return true
	})
	d.changed()
}

// StopCursorBlink stops blinking and leaves the cursor visible.
func (d *Decorator) StopCursorBlink() {
	d.blinkTimer.Stop()
	d.blinkTimer = nil
	d.cursorVisible = true
	d.changed()
}

// DelayCursorBlink shows the cursor and restarts the blink period.
func (d *Decorator) DelayCursorBlink() {
	if !d.blinkTimer.IsRunning() {
		d.cursorVisible = true
		return
	}
	d.StopCursorBlink()
	d.StartCursorBlink()
}

// IsCursorBlinking reports whether the blink timer runs.
func (d *Decorator) IsCursorBlinking() bool {
	return d.blinkTimer.IsRunning()
}

// SetCursorBlinkInterval sets the blink period.
func (d *Decorator) SetCursorBlinkInterval(interval time.Duration) {
	d.config.BlinkInterval = interval
}

// SetCursorBlinkDuration sets how long the cursor blinks before staying on.
func (d *Decorator) SetCursorBlinkDuration(duration time.Duration) {
	d.config.BlinkDuration = duration
}

// ============================================================================
// Handles
// ============================================================================

// SetHandleActive shows or hides a handle.
func (d *Decorator) SetHandleActive(h HandleType, active bool) {
	d.handles[h].Active = active
	if !active {
		d.handles[h].Pressed = false
		if d.scrollHandle == h {
			d.stopScrollTimer()
		}
	}
	d.changed()
}

// IsHandleActive reports whether a handle is shown.
func (d *Decorator) IsHandleActive(h HandleType) bool {
	return d.handles[h].Active
}

// SetHandlePosition places a handle.
func (d *Decorator) SetHandlePosition(h HandleType, x, y, lineHeight float32) {
	hs := &d.handles[h]
	hs.Position = text.Vector2{X: x, Y: y}
	hs.LineHeight = lineHeight
	d.changed()
}

// HandlePosition returns the position of a handle.
func (d *Decorator) HandlePosition(h HandleType) text.Vector2 {
	return d.handles[h].Position
}

// Handle returns the state of a handle.
func (d *Decorator) Handle(h HandleType) HandleInfo {
	return d.handles[h]
}

// SetSelectionHandleFlipState records whether the selection handles are
// crossed and the direction of the characters they point at.
func (d *Decorator) SetSelectionHandleFlipState(indicesSwapped bool, left, right text.Direction) {
	d.selectionSwapped = indicesSwapped
	d.startDirection = left
	d.endDirection = right

	leftFlip := indicesSwapped != (left == text.RightToLeft)
	rightFlip := indicesSwapped != (right == text.RightToLeft)
	if d.swapHandlesOnFlip {
		leftFlip, rightFlip = rightFlip, leftFlip
	}
	d.handles[LeftSelectionHandle].HorizontallyFlipped = leftFlip
	d.handles[RightSelectionHandle].HorizontallyFlipped = rightFlip
	d.changed()
}

// SwapSelectionHandlesEnabled swaps the flip state of the handles.
func (d *Decorator) SwapSelectionHandlesEnabled(enable bool) {
	d.swapHandlesOnFlip = enable
}

// ============================================================================
// Highlight
// ============================================================================

// AddHighlight adds a selection rectangle.
func (d *Decorator) AddHighlight(x1, y1, x2, y2 float32) {
	d.highlights = append(d.highlights, Highlight{x1, y1, x2, y2})
	d.changed()
}

// ClearHighlights removes every selection rectangle.
func (d *Decorator) ClearHighlights() {
	d.highlights = d.highlights[:0]
	d.highlightBoxPos = text.Vector2{}
	d.highlightBoxSize = text.Vector2{}
	d.changed()
}

// IsHighlightActive reports whether the selection highlight is shown: it
// has rectangles and a selection handle is active.
func (d *Decorator) IsHighlightActive() bool {
	if len(d.highlights) == 0 {
		return false
	}
	return d.handles[LeftSelectionHandle].Active || d.handles[RightSelectionHandle].Active
}

// Highlights returns the selection rectangles.
func (d *Decorator) Highlights() []Highlight {
	return d.highlights
}

// SetHighlightBox sets the rectangle enclosing every highlight.
func (d *Decorator) SetHighlightBox(position, size text.Vector2) {
	d.highlightBoxPos = position
	d.highlightBoxSize = size
	d.changed()
}

// HighlightBox returns the rectangle enclosing every highlight.
func (d *Decorator) HighlightBox() (position, size text.Vector2) {
	return d.highlightBoxPos, d.highlightBoxSize
}

// SetHighlightColor sets the selection color.
func (d *Decorator) SetHighlightColor(c colorful.Color) {
	d.highlightColor = c
	d.changed()
}

// HighlightColor returns the selection color.
func (d *Decorator) HighlightColor() colorful.Color {
	return d.highlightColor
}

// ============================================================================
// Popup
// ============================================================================

// SetPopupActive shows or hides the context popup.
func (d *Decorator) SetPopupActive(active bool) {
	d.popupActive = active
	d.changed()
}

// IsPopupActive reports whether the context popup is shown.
func (d *Decorator) IsPopupActive() bool {
	return d.popupActive
}

// SetEnabledPopupButtons sets the buttons of the context popup.
func (d *Decorator) SetEnabledPopupButtons(b Buttons) {
	d.enabledButtons = b
	d.changed()
}

// EnabledPopupButtons returns the buttons of the context popup.
func (d *Decorator) EnabledPopupButtons() Buttons {
	return d.enabledButtons
}

// ============================================================================
// Scrolling settings
// ============================================================================

func (d *Decorator) SetHorizontalScrollEnabled(enable bool) { d.config.HorizontalScroll = enable }
func (d *Decorator) IsHorizontalScrollEnabled() bool        { return d.config.HorizontalScroll }
func (d *Decorator) SetVerticalScrollEnabled(enable bool)   { d.config.VerticalScroll = enable }
func (d *Decorator) IsVerticalScrollEnabled() bool          { return d.config.VerticalScroll }
func (d *Decorator) SetSmoothHandlePanEnabled(enable bool)  { d.config.SmoothHandlePan = enable }
func (d *Decorator) IsSmoothHandlePanEnabled() bool         { return d.config.SmoothHandlePan }
func (d *Decorator) SetScrollThreshold(t float32)           { d.config.ScrollThreshold = t }
func (d *Decorator) ScrollThreshold() float32               { return d.config.ScrollThreshold }
func (d *Decorator) SetScrollSpeed(s float32)               { d.config.ScrollSpeed = s }
func (d *Decorator) ScrollSpeed() float32                   { return d.config.ScrollSpeed }

// SetScrollTickInterval sets the period of scroll events while a handle is
// held near an edge.
func (d *Decorator) SetScrollTickInterval(interval time.Duration) {
	d.config.ScrollTickInterval = interval
}
