// Package textfield is a single or multi-line editable text control. It
// composes a control for its visuals, a text controller for editing and a
// decorator for cursors, handles, highlight and popup.
//
// Every relayout request made while handling input is coalesced into one
// idle callback on the host loop.
package textfield

import (
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/control"
	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/loop"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/controller"
	"github.com/agiangrant/toolkit/text/decorator"
	"github.com/agiangrant/toolkit/visual"
)

// Scheduler is the host loop: idle callbacks for relayout and resource
// ready emission, timers for cursor blink and handle scrolling.
type Scheduler interface {
	AddIdle(fn func()) bool
	AddTimer(interval time.Duration, tick func() bool) *loop.Timer
}

// Config configures a TextField.
type Config struct {
	Name string

	Controller controller.Config
	Decorator  decorator.Config

	Scheduler Scheduler
	Factory   *visual.Factory
	Fonts     *text.FontClient

	// IMF and Clipboard may be nil.
	IMF       controller.InputMethodContext
	Clipboard controller.Clipboard

	Logger *zap.Logger
}

// TextField is an editable text control. It is used from the loop
// goroutine only.
type TextField struct {
	ctl       *control.Control
	text      *controller.Controller
	decorator *decorator.Decorator
	sched     Scheduler
	log       *zap.Logger

	size       text.Vector2
	queued     bool
	dirty      bool
	lastUpdate controller.UpdateTextType
	charFilter func(r rune) bool

	textChanged       control.Signal[*TextField]
	maxLengthReached  control.Signal[*TextField]
	inputStyleChanged control.Signal[text.InputStyle]
}

// New creates an editable text field.
func New(config Config) *TextField {
	tf := &TextField{
		sched: config.Scheduler,
		log:   logger.Or(config.Logger).Named("textfield"),
	}
	if config.Name != "" {
		tf.log = tf.log.With(zap.String("control", config.Name))
	}
	if config.Controller.Logger == nil {
		config.Controller.Logger = config.Logger
	}
	if config.Decorator.Logger == nil {
		config.Decorator.Logger = config.Logger
	}

	var idle control.IdleScheduler
	if config.Scheduler != nil {
		idle = config.Scheduler
	}
	tf.ctl = control.New(control.Config{
		Name:            config.Name,
		Factory:         config.Factory,
		Idle:            idle,
		RelayoutRequest: tf.RequestTextRelayout,
		Logger:          config.Logger,
	})

	tf.text = controller.New(tf, config.Fonts, config.Controller)
	var timers decorator.TimerScheduler
	if config.Scheduler != nil {
		timers = config.Scheduler
	}
	tf.decorator = decorator.New(tf.text, timers, config.Decorator)
	tf.text.EnableTextInput(tf.decorator, config.IMF, config.Clipboard)
	if config.IMF != nil {
		tf.ctl.SetInputMethodContext(config.IMF)
	}
	return tf
}

// Control returns the control holding the field's visuals.
func (tf *TextField) Control() *control.Control { return tf.ctl }

// Controller returns the text controller.
func (tf *TextField) Controller() *controller.Controller { return tf.text }

// Decorator returns the decorator.
func (tf *TextField) Decorator() *decorator.Decorator { return tf.decorator }

// TextChangedSignal is emitted after every edit of the text.
func (tf *TextField) TextChangedSignal() *control.Signal[*TextField] { return &tf.textChanged }

// MaxLengthReachedSignal is emitted when input is dropped because the text
// is at its maximum length.
func (tf *TextField) MaxLengthReachedSignal() *control.Signal[*TextField] {
	return &tf.maxLengthReached
}

// InputStyleChangedSignal is emitted when the style new text is inserted
// with changes.
func (tf *TextField) InputStyleChangedSignal() *control.Signal[text.InputStyle] {
	return &tf.inputStyleChanged
}

// ============================================================================
// controller.ControlInterface
// ============================================================================

// RequestTextRelayout schedules a relayout on the next idle.
func (tf *TextField) RequestTextRelayout() {
	tf.dirty = true
	if tf.queued || tf.sched == nil {
		return
	}
	tf.queued = tf.sched.AddIdle(tf.onIdle)
}

func (tf *TextField) TextChanged()      { tf.textChanged.Emit(tf) }
func (tf *TextField) MaxLengthReached() { tf.maxLengthReached.Emit(tf) }

func (tf *TextField) InputStyleChanged(style text.InputStyle) {
	tf.inputStyleChanged.Emit(style)
}

func (tf *TextField) onIdle() {
	tf.queued = false
	tf.Flush()
}

// Flush runs a pending relayout now. Hosts without an idle scheduler call
// it after delivering input.
func (tf *TextField) Flush() controller.UpdateTextType {
	if !tf.dirty {
		return controller.NoneUpdated
	}
	tf.dirty = false
	size := tf.TextSize()
	tf.lastUpdate = tf.text.Relayout(size)
	if ce := tf.log.Check(zap.DebugLevel, "relayout"); ce != nil {
		ce.Write(zap.Float32("width", size.X), zap.Float32("height", size.Y),
			zap.Bool("model", tf.lastUpdate.Has(controller.ModelUpdated)),
			zap.Bool("decorator", tf.lastUpdate.Has(controller.DecoratorUpdated)))
	}
	return tf.lastUpdate
}

// LastUpdate returns what the most recent relayout changed.
func (tf *TextField) LastUpdate() controller.UpdateTextType { return tf.lastUpdate }

// ============================================================================
// Size
// ============================================================================

// SetSize sets the size of the field, padding included.
func (tf *TextField) SetSize(size text.Vector2) {
	if size == tf.size {
		return
	}
	tf.size = size
	tf.RequestTextRelayout()
}

// Size returns the size of the field, padding included.
func (tf *TextField) Size() text.Vector2 { return tf.size }

// TextSize returns the size the text is laid out in: the field size less
// the padding.
func (tf *TextField) TextSize() text.Vector2 {
	p := tf.ctl.Padding()
	return text.Vector2{
		X: max(0, tf.size.X-float32(p.Start)-float32(p.End)),
		Y: max(0, tf.size.Y-float32(p.Top)-float32(p.Bottom)),
	}
}

// NaturalSize returns the size the field would like, padding included.
func (tf *TextField) NaturalSize() text.Vector2 {
	p := tf.ctl.Padding()
	s := tf.text.NaturalSize()
	return text.Vector2{
		X: s.X + float32(p.Start) + float32(p.End),
		Y: s.Y + float32(p.Top) + float32(p.Bottom),
	}
}

// HeightForWidth returns the height the field needs at width, padding
// included.
func (tf *TextField) HeightForWidth(width float32) float32 {
	p := tf.ctl.Padding()
	inner := max(0, width-float32(p.Start)-float32(p.End))
	return tf.text.HeightForWidth(inner) + float32(p.Top) + float32(p.Bottom)
}

// ============================================================================
// Text
// ============================================================================

// SetText replaces the text.
func (tf *TextField) SetText(s string) { tf.text.SetText(s) }

// Text returns the text, without the placeholder.
func (tf *TextField) Text() string { return tf.text.Text() }

// SetPlaceholderText sets the text shown while the field is empty, when it
// is not focused and when it is.
func (tf *TextField) SetPlaceholderText(inactive, active string) {
	tf.text.SetPlaceholderText(inactive, active)
}

// SetMaxLength limits the number of characters; zero is unlimited.
func (tf *TextField) SetMaxLength(n int) { tf.text.SetMaximumNumberOfCharacters(n) }

// SetTextColor sets the color of the text.
func (tf *TextField) SetTextColor(c colorful.Color) { tf.text.SetTextColor(c) }

// SetHorizontalAlignment aligns the text within the field.
func (tf *TextField) SetHorizontalAlignment(a text.HorizontalAlignment) {
	tf.text.SetHorizontalAlignment(a)
}

// SetMultiLine switches between single and multi-line layout.
func (tf *TextField) SetMultiLine(enable bool) { tf.text.SetMultiLineEnabled(enable) }

// SetCharFilter drops typed runes for which allow returns false. A nil
// filter accepts everything.
func (tf *TextField) SetCharFilter(allow func(r rune) bool) { tf.charFilter = allow }

// ============================================================================
// Appearance
// ============================================================================

// SetBackgroundColor sets a solid background.
func (tf *TextField) SetBackgroundColor(hex string) { tf.ctl.SetBackgroundColor(hex) }

// SetBackground creates the background from a visual property map.
func (tf *TextField) SetBackground(props visual.PropertyMap) { tf.ctl.SetBackground(props) }

// SetStyle sets the per-state visuals.
func (tf *TextField) SetStyle(style *control.Style) { tf.ctl.SetStyle(style) }

// SetPadding sets the space between the field edge and the text.
func (tf *TextField) SetPadding(p control.Extents) { tf.ctl.SetPadding(p) }

// OnSceneConnection shows the field.
func (tf *TextField) OnSceneConnection() { tf.ctl.OnSceneConnection() }

// OnSceneDisconnection hides the field.
func (tf *TextField) OnSceneDisconnection() {
	tf.decorator.StopCursorBlink()
	tf.ctl.OnSceneDisconnection()
}

// SetEnabled enables or disables editing. A disabled field loses focus.
func (tf *TextField) SetEnabled(enable bool) {
	if !enable {
		if tf.ctl.State() == control.Focused {
			tf.text.KeyboardFocusLostEvent()
		}
		tf.ctl.SetState(control.Disabled)
		return
	}
	if tf.ctl.State() == control.Disabled {
		tf.ctl.SetState(control.Normal)
	}
}

// IsEnabled reports whether the field accepts input.
func (tf *TextField) IsEnabled() bool { return tf.ctl.State() != control.Disabled }

// ============================================================================
// Input
// ============================================================================

// FocusGained starts editing.
func (tf *TextField) FocusGained() {
	if !tf.IsEnabled() {
		return
	}
	tf.ctl.SetState(control.Focused)
	tf.text.KeyboardFocusGainEvent()
}

// FocusLost stops editing.
func (tf *TextField) FocusLost() {
	if tf.ctl.State() == control.Focused {
		tf.ctl.SetState(control.Normal)
	}
	tf.text.KeyboardFocusLostEvent()
}

// HasFocus reports whether the field is being edited.
func (tf *TextField) HasFocus() bool { return tf.ctl.State() == control.Focused }

// KeyEvent delivers a key event. The input method sees it first. Returns
// true when the event was consumed.
func (tf *TextField) KeyEvent(ev controller.KeyEvent) bool {
	if !tf.IsEnabled() {
		return false
	}
	if tf.ctl.FilterKeyEvent(ev) {
		return true
	}
	if ev.Text != "" && tf.charFilter != nil {
		ev.Text = strings.Map(func(r rune) rune {
			if tf.charFilter(r) {
				return r
			}
			return -1
		}, ev.Text)
		if ev.Text == "" && ev.Key == controller.KeyUnknown {
			return true
		}
	}
	handled := tf.text.KeyEvent(ev)
	if handled && ev.Key == controller.KeyEscape && tf.HasFocus() {
		tf.ctl.SetState(control.Normal)
	}
	return handled
}

// Tap delivers tapCount taps at (x, y) in field coordinates. A tap on an
// unfocused field focuses it.
func (tf *TextField) Tap(tapCount int, x, y float32) {
	if !tf.IsEnabled() {
		return
	}
	if !tf.HasFocus() {
		tf.FocusGained()
	}
	p := tf.ctl.Padding()
	tf.text.TapEvent(tapCount, x-float32(p.Start), y-float32(p.Top))
}

// LongPress delivers a long press at (x, y).
func (tf *TextField) LongPress(state decorator.PanState, x, y float32) {
	if !tf.IsEnabled() {
		return
	}
	if !tf.HasFocus() {
		tf.FocusGained()
	}
	p := tf.ctl.Padding()
	tf.text.LongPressEvent(state, x-float32(p.Start), y-float32(p.Top))
}

// Pan scrolls the text by displacement.
func (tf *TextField) Pan(state decorator.PanState, displacement text.Vector2) {
	if tf.IsEnabled() {
		tf.text.PanEvent(state, displacement)
	}
}

// Select selects the word at (x, y).
func (tf *TextField) Select(x, y float32) {
	if tf.IsEnabled() {
		p := tf.ctl.Padding()
		tf.text.SelectEvent(x-float32(p.Start), y-float32(p.Top), false)
	}
}

// SelectAll selects the whole text.
func (tf *TextField) SelectAll() {
	if tf.IsEnabled() {
		tf.text.SelectEvent(0, 0, true)
	}
}

// PopupButtonTouched runs the action of a popup button.
func (tf *TextField) PopupButtonTouched(b decorator.Buttons) {
	if tf.IsEnabled() {
		tf.text.PopupButtonTouched(b)
	}
}

// HandlePan drags a handle to (x, y).
func (tf *TextField) HandlePan(h decorator.HandleType, state decorator.PanState, x, y float32) {
	if tf.IsEnabled() {
		tf.decorator.HandlePan(h, state, x, y)
	}
}

// ImfEvent delivers a request from the input method.
func (tf *TextField) ImfEvent(e controller.ImfEvent) controller.ImfCallbackData {
	if !tf.IsEnabled() {
		return controller.ImfCallbackData{}
	}
	return tf.text.OnImfEvent(e)
}
