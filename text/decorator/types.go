// Package decorator keeps the state of the cursors, selection handles,
// highlight and popup of an editable text, and turns handle drags near the
// edges of the bounding box into periodic scroll events.
package decorator

// Cursor identifies one of the two cursors.
type Cursor uint8

const (
	PrimaryCursor   Cursor = iota // the regular cursor, or the one for the paragraph direction
	SecondaryCursor               // the other edge at a direction boundary
	cursorCount
)

// ActiveCursor tells which cursors are shown.
type ActiveCursor uint8

const (
	ActiveCursorNone ActiveCursor = iota
	ActiveCursorPrimary
	ActiveCursorBoth
)

func (a ActiveCursor) String() string {
	switch a {
	case ActiveCursorPrimary:
		return "primary"
	case ActiveCursorBoth:
		return "both"
	}
	return "none"
}

// HandleType identifies a handle.
type HandleType uint8

const (
	GrabHandle HandleType = iota
	LeftSelectionHandle
	RightSelectionHandle
	handleTypeCount
)

func (h HandleType) String() string {
	switch h {
	case GrabHandle:
		return "grab"
	case LeftSelectionHandle:
		return "left"
	case RightSelectionHandle:
		return "right"
	}
	return "none"
}

// HandleState is the state reported with a handle event.
type HandleState uint8

const (
	HandleTapped HandleState = iota
	HandlePressed
	HandleReleased
	HandleScrolling
	HandleStopScrolling
)

func (s HandleState) String() string {
	switch s {
	case HandleTapped:
		return "tapped"
	case HandlePressed:
		return "pressed"
	case HandleReleased:
		return "released"
	case HandleScrolling:
		return "scrolling"
	case HandleStopScrolling:
		return "stop-scrolling"
	}
	return "unknown"
}

// Buttons is a set of context popup buttons.
type Buttons uint16

const (
	ButtonsNone Buttons = 0
	ButtonCut   Buttons = 1 << iota
	ButtonCopy
	ButtonPaste
	ButtonSelect
	ButtonSelectAll
	ButtonClipboard
)

func (b Buttons) Has(o Buttons) bool { return b&o == o }

func (b Buttons) String() string {
	if b == ButtonsNone {
		return "none"
	}
	names := []struct {
		b    Buttons
		name string
	}{
		{ButtonCut, "cut"},
		{ButtonCopy, "copy"},
		{ButtonPaste, "paste"},
		{ButtonSelect, "select"},
		{ButtonSelectAll, "select-all"},
		{ButtonClipboard, "clipboard"},
	}
	out := ""
	for _, n := range names {
		if b&n.b != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// PanState is the phase of a drag gesture on a handle.
type PanState uint8

const (
	PanStarted PanState = iota
	PanContinuing
	PanFinished
	PanCancelled
)

// Rect is an integer rectangle in control coordinates.
type Rect struct {
	X, Y, Width, Height int
}
