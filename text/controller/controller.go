// Package controller turns input events into edits of the text models and
// keeps the decorator (cursors, handles, highlight, popup) in step with
// them. Events are queued and applied during Relayout, after the models
// have been brought up to date.
package controller

import (
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
	"github.com/agiangrant/toolkit/text"
	"github.com/agiangrant/toolkit/text/decorator"
)

// ControlInterface is implemented by the control hosting the text.
type ControlInterface interface {
	RequestTextRelayout()
	TextChanged()
	MaxLengthReached()
	InputStyleChanged(style text.InputStyle)
}

// InputMethodContext is the input method connected to an editable text.
type InputMethodContext interface {
	SetCursorPosition(index int)
	NotifyCursorPosition()
	FilterEventKey(ev KeyEvent) bool
	Reset()
}

// Clipboard is the system clipboard as seen by the controller.
type Clipboard interface {
	SetItem(text string) bool
	GetItem(index int) string
	NumberOfItems() int
	ShowClipboard()
	HideClipboard()
	IsVisible() bool
}

// Config holds the controller settings.
type Config struct {
	Layout              text.LayoutType
	HorizontalAlignment text.HorizontalAlignment
	VerticalAlignment   text.VerticalAlignment
	Ligatures           bool

	// MaximumNumberOfCharacters limits the text length; zero is unlimited.
	MaximumNumberOfCharacters int

	CursorBlink          bool
	SelectionEnabled     bool
	GrabHandleEnabled    bool
	PopupEnabled         bool
	ClipboardHideEnabled bool

	TextColor            colorful.Color
	PlaceholderTextColor colorful.Color
	FontID               text.FontID

	Logger *zap.Logger
}

// DefaultConfig returns a single line, left aligned configuration.
func DefaultConfig() Config {
	return Config{
		Layout:               text.SingleLineBox,
		CursorBlink:          true,
		SelectionEnabled:     true,
		GrabHandleEnabled:    true,
		PopupEnabled:         true,
		ClipboardHideEnabled: true,
		TextColor:            colorful.Color{},
		PlaceholderTextColor: colorful.Color{R: 0.8, G: 0.8, B: 0.8},
	}
}

// eventData is the editing state, present only on editable texts.
type eventData struct {
	decorator *decorator.Decorator
	imf       InputMethodContext

	placeholderActive   string
	placeholderInactive string

	queue      []Event
	inputStyle text.InputStyle
	state      State

	primaryCursorPosition  int
	leftSelectionPosition  int
	rightSelectionPosition int
	preEditStartPosition   int
	preEditLength          int
	cursorHookPositionX    float32

	isShowingPlaceholderText bool
	preEditFlag              bool
	decoratorUpdated         bool
	cursorBlinkEnabled       bool
	grabHandleEnabled        bool
	grabHandlePopupEnabled   bool
	selectionEnabled         bool
	allTextSelected          bool

	updateCursorPosition         bool
	updateCursorHookPosition     bool
	updateGrabHandlePosition     bool
	updateLeftSelectionPosition  bool
	updateRightSelectionPosition bool
	updateHighlightBox           bool
	updateInputStyle             bool
	scrollAfterUpdatePosition    bool
	scrollAfterDelete            bool
}

// Controller owns the models of one text and edits them in response to
// input. It is used from the loop goroutine only.
type Controller struct {
	control   ControlInterface
	fonts     *text.FontClient
	layout    *text.LayoutEngine
	logical   *text.LogicalModel
	visual    *text.VisualModel
	clipboard Clipboard
	config    Config
	log       *zap.Logger

	event *eventData

	updateInfo             TextUpdateInfo
	operationsPending      OperationsMask
	modifyEvents           []modifyEventType
	scrollPosition         text.Vector2
	naturalSize            text.Vector2
	recalculateNaturalSize bool
}

// New creates a read-only controller. Call EnableTextInput to make the text
// editable.
func New(control ControlInterface, fonts *text.FontClient, config Config) *Controller {
	if fonts == nil {
		fonts = text.NewFontClient()
	}
	c := &Controller{
		control: control,
		fonts:   fonts,
		layout:  text.NewLayoutEngine(fonts),
		logical: &text.LogicalModel{},
		visual:  text.NewVisualModel(config.TextColor),
		config:  config,
		log:     logger.Or(config.Logger).Named("text"),
	}
	c.updateInfo.Clear()
	c.recalculateNaturalSize = true
	return c
}

// EnableTextInput makes the text editable with d as its decorator.
func (c *Controller) EnableTextInput(d *decorator.Decorator, imf InputMethodContext, clipboard Clipboard) {
	if c.event != nil {
		return
	}
	c.event = &eventData{
		decorator:              d,
		imf:                    imf,
		state:                  Inactive,
		cursorBlinkEnabled:     c.config.CursorBlink,
		grabHandleEnabled:      c.config.GrabHandleEnabled,
		grabHandlePopupEnabled: c.config.PopupEnabled,
		selectionEnabled:       c.config.SelectionEnabled,
	}
	c.event.inputStyle = c.defaultInputStyle()
	c.clipboard = clipboard

	multiLine := c.config.Layout == text.MultiLineBox
	d.SetHorizontalScrollEnabled(!multiLine)
	d.SetVerticalScrollEnabled(multiLine)
}

// IsEditable reports whether EnableTextInput was called.
func (c *Controller) IsEditable() bool {
	return c.event != nil
}

// Decorator returns the decorator, nil on read-only texts.
func (c *Controller) Decorator() *decorator.Decorator {
	if c.event == nil {
		return nil
	}
	return c.event.decorator
}

// LogicalModel returns the logical model, for renderers.
func (c *Controller) LogicalModel() *text.LogicalModel { return c.logical }

// VisualModel returns the visual model, for renderers.
func (c *Controller) VisualModel() *text.VisualModel { return c.visual }

// ScrollPosition returns the scroll offset of the text inside the control.
func (c *Controller) ScrollPosition() text.Vector2 { return c.scrollPosition }

// State returns the editing state; Inactive on read-only texts.
func (c *Controller) State() State {
	if c.event == nil {
		return Inactive
	}
	return c.event.state
}

// CursorIndex returns the logical position of the primary cursor.
func (c *Controller) CursorIndex() int {
	if c.event == nil {
		return 0
	}
	return c.event.primaryCursorPosition
}

// SelectionIndices returns the logical positions of the selection handles.
func (c *Controller) SelectionIndices() (left, right int) {
	if c.event == nil {
		return 0, 0
	}
	return c.event.leftSelectionPosition, c.event.rightSelectionPosition
}

// ============================================================================
// Settings
// ============================================================================

// IsMultiLineEnabled reports whether text wraps into several lines.
func (c *Controller) IsMultiLineEnabled() bool {
	return c.config.Layout == text.MultiLineBox
}

// SetMultiLineEnabled switches between single and multi line layouts.
func (c *Controller) SetMultiLineEnabled(enable bool) {
	layout := text.SingleLineBox
	if enable {
		layout = text.MultiLineBox
	}
	if layout == c.config.Layout {
		return
	}
	c.config.Layout = layout
	c.operationsPending |= Layout | Align | UpdateLayoutSize | Reorder
	c.updateInfo.FullRelayoutNeeded = true
	c.updateInfo.CharacterIndex = 0
	if c.event != nil {
		c.event.decorator.SetHorizontalScrollEnabled(!enable)
		c.event.decorator.SetVerticalScrollEnabled(enable)
	}
	c.requestRelayout()
}

// SetHorizontalAlignment sets the alignment of lines inside the control.
func (c *Controller) SetHorizontalAlignment(a text.HorizontalAlignment) {
	if a == c.config.HorizontalAlignment {
		return
	}
	c.config.HorizontalAlignment = a
	c.operationsPending |= Layout | Align
	if c.event != nil {
		c.event.updateCursorPosition = true
	}
	c.requestRelayout()
}

// SetVerticalAlignment sets the alignment of the text block.
func (c *Controller) SetVerticalAlignment(a text.VerticalAlignment) {
	if a == c.config.VerticalAlignment {
		return
	}
	c.config.VerticalAlignment = a
	c.operationsPending |= Layout | Align
	c.requestRelayout()
}

// SetMaximumNumberOfCharacters limits the text length; zero is unlimited.
func (c *Controller) SetMaximumNumberOfCharacters(n int) {
	c.config.MaximumNumberOfCharacters = max(n, 0)
}

// SetTextColor sets the default text color.
func (c *Controller) SetTextColor(col colorful.Color) {
	c.config.TextColor = col
	if c.event == nil || !c.event.isShowingPlaceholderText {
		c.visual.Colors[0] = col
	}
	c.operationsPending |= Color
	c.requestRelayout()
}

// SetPlaceholderTextColor sets the color used for placeholder text.
func (c *Controller) SetPlaceholderTextColor(col colorful.Color) {
	c.config.PlaceholderTextColor = col
	if c.event != nil && c.event.isShowingPlaceholderText {
		c.visual.Colors[0] = col
		c.operationsPending |= Color
		c.requestRelayout()
	}
}

// SetInputColor sets the color of text typed from now on.
func (c *Controller) SetInputColor(col colorful.Color) {
	if c.event == nil {
		return
	}
	c.event.inputStyle.TextColor = col
}

// InputStyle returns the style applied to inserted text.
func (c *Controller) InputStyle() text.InputStyle {
	if c.event == nil {
		return c.defaultInputStyle()
	}
	return c.event.inputStyle
}

// SetUnderlineEnabled toggles the underline of the whole text.
func (c *Controller) SetUnderlineEnabled(enable bool) {
	c.visual.UnderlineEnabled = enable
	c.requestRelayout()
}

// SetEnableCursorBlink toggles the cursor blink.
func (c *Controller) SetEnableCursorBlink(enable bool) {
	if c.event == nil {
		return
	}
	c.event.cursorBlinkEnabled = enable
	if !enable {
		c.event.decorator.StopCursorBlink()
	} else if isEditingState(c.event.state) || c.event.state == GrabHandlePanning {
		c.event.decorator.StartCursorBlink()
	}
}

// SetSelectionEnabled toggles word and select-all selection.
func (c *Controller) SetSelectionEnabled(enable bool) {
	if c.event != nil {
		c.event.selectionEnabled = enable
	}
}

// SetGrabHandlePopupEnabled toggles the context popup.
func (c *Controller) SetGrabHandlePopupEnabled(enable bool) {
	if c.event != nil {
		c.event.grabHandlePopupEnabled = enable
	}
}

func (c *Controller) defaultInputStyle() text.InputStyle {
	return text.InputStyle{TextColor: c.config.TextColor, FontID: c.fontID()}
}

func (c *Controller) fontID() text.FontID {
	if c.config.FontID != 0 {
		return c.config.FontID
	}
	return c.fonts.DefaultFontID()
}

func (c *Controller) requestRelayout() {
	if c.control != nil {
		c.control.RequestTextRelayout()
	}
}

func (c *Controller) textChanged() {
	if c.control != nil {
		c.control.TextChanged()
	}
}

// ============================================================================
// decorator.ControllerInterface
// ============================================================================

// GetTargetSize returns the size the text is laid out in.
func (c *Controller) GetTargetSize() text.Vector2 {
	return c.visual.ControlSize
}

// DecorationEvent queues a handle event from the decorator.
func (c *Controller) DecorationEvent(h decorator.HandleType, state decorator.HandleState, x, y float32) {
	if c.event == nil {
		return
	}
	var t EventType
	switch h {
	case decorator.GrabHandle:
		t = EventGrabHandle
	case decorator.LeftSelectionHandle:
		t = EventLeftSelectionHandle
	case decorator.RightSelectionHandle:
		t = EventRightSelectionHandle
	default:
		return
	}
	c.event.queue = append(c.event.queue, Event{Type: t, Code: int(state), X: x, Y: y})
	c.requestRelayout()
}
