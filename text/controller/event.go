package controller

import "strings"

// ============================================================================
// Queued Events
// ============================================================================

// EventType identifies the kind of a queued input event.
type EventType uint8

const (
	EventCursorKey EventType = iota + 1
	EventTap
	EventLongPress
	EventPan
	EventGrabHandle
	EventLeftSelectionHandle
	EventRightSelectionHandle
	EventSelect
	EventSelectAll
)

var eventTypeNames = [...]string{
	EventCursorKey:            "cursor-key",
	EventTap:                  "tap",
	EventLongPress:            "long-press",
	EventPan:                  "pan",
	EventGrabHandle:           "grab-handle",
	EventLeftSelectionHandle:  "left-selection-handle",
	EventRightSelectionHandle: "right-selection-handle",
	EventSelect:               "select",
	EventSelectAll:            "select-all",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) && eventTypeNames[t] != "" {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Event is an input event waiting for the next relayout. Code carries the
// key, tap count, gesture state or handle state depending on Type.
type Event struct {
	Type EventType
	Code int
	X, Y float32
}

// ============================================================================
// Keys
// ============================================================================

// Key identifies a key with an editing meaning. Printable input arrives as
// KeyUnknown with Text set.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyCursorLeft
	KeyCursorRight
	KeyCursorUp
	KeyCursorDown
	KeyBackspace
	KeyDelete
	KeyReturn
	KeyEscape
	KeyPower
	KeyMenu
	KeyHome
	KeyShiftLeft
)

var keyNames = map[string]Key{
	"left":       KeyCursorLeft,
	"right":      KeyCursorRight,
	"up":         KeyCursorUp,
	"down":       KeyCursorDown,
	"backspace":  KeyBackspace,
	"delete":     KeyDelete,
	"return":     KeyReturn,
	"enter":      KeyReturn,
	"escape":     KeyEscape,
	"power":      KeyPower,
	"menu":       KeyMenu,
	"home":       KeyHome,
	"shift-left": KeyShiftLeft,
}

// ParseKey returns the key named s, case insensitive.
func ParseKey(s string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(s)]
	return k, ok
}

func (k Key) String() string {
	for name, key := range keyNames {
		if key == k && name != "enter" {
			return name
		}
	}
	return "unknown"
}

// IsCursorKey reports whether k moves the cursor.
func (k Key) IsCursorKey() bool {
	return k >= KeyCursorLeft && k <= KeyCursorDown
}

// Modifiers is the set of modifier keys held during a key event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }

// KeyState tells presses from releases.
type KeyState uint8

const (
	KeyDown KeyState = iota
	KeyUp
)

// KeyEvent is a keyboard event delivered to the controller.
type KeyEvent struct {
	Key       Key
	Text      string // the typed text for printable keys
	State     KeyState
	Modifiers Modifiers
}

// ============================================================================
// Input Method Events
// ============================================================================

// InsertType tells committed text from pre-edit (predictive) text.
type InsertType uint8

const (
	Commit InsertType = iota
	PreEdit
)

// ImfEventType identifies an input method request.
type ImfEventType uint8

const (
	ImfVoid ImfEventType = iota
	ImfPreEdit
	ImfCommit
	ImfDeleteSurrounding
	ImfGetSurrounding
)

// ImfEvent is a request from the input method.
type ImfEvent struct {
	Type          ImfEventType
	Text          string
	CursorOffset  int
	NumberOfChars int
}

// ImfCallbackData is the answer to an ImfEvent.
type ImfCallbackData struct {
	Update         bool
	CursorPosition int
	CurrentText    string
}

// ============================================================================
// Modify Events
// ============================================================================

type modifyEventType uint8

const (
	textReplaced modifyEventType = iota
	textInserted
	textDeleted
)

// UpdateTextType reports what a relayout changed.
type UpdateTextType uint8

const (
	NoneUpdated      UpdateTextType = 0
	ModelUpdated     UpdateTextType = 1 << 0
	DecoratorUpdated UpdateTextType = 1 << 1
)

func (u UpdateTextType) Has(o UpdateTextType) bool { return u&o == o }
