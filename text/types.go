// Package text holds the logical and visual text models and the services
// that fill them: segmentation, script and bidi classification, font
// metrics, shaping, layout and cursor hit-testing.
package text

import "github.com/lucasb-eyer/go-colorful"

// Vector2 is a 2D point or size in pixels.
type Vector2 struct {
	X, Y float32
}

// Add returns v+o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }

// Size is the width and height of a rectangle.
type Size struct {
	Width, Height float32
}

// Vector returns s as a Vector2.
func (s Size) Vector() Vector2 { return Vector2{s.Width, s.Height} }

// Direction is the writing direction of a character, line or paragraph.
type Direction bool

const (
	LeftToRight Direction = false
	RightToLeft Direction = true
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// LineBreakInfo tells whether a line may break after a character.
type LineBreakInfo uint8

const (
	LineNoBreak LineBreakInfo = iota
	LineAllowBreak
	LineMustBreak
)

// WordBreakInfo tells whether a word ends after a character.
type WordBreakInfo uint8

const (
	WordNoBreak WordBreakInfo = iota
	WordBreak
)

// FontID identifies a face registered in a FontClient.
type FontID uint32

// CharacterRun is a contiguous range of characters.
type CharacterRun struct {
	Index int
	Count int
}

// End returns the index past the last character of the run.
func (r CharacterRun) End() int { return r.Index + r.Count }

// Contains reports whether index falls in the run.
func (r CharacterRun) Contains(index int) bool {
	return index >= r.Index && index < r.Index+r.Count
}

// GlyphRun is a contiguous range of glyphs.
type GlyphRun struct {
	Index int
	Count int
}

// End returns the index past the last glyph of the run.
func (r GlyphRun) End() int { return r.Index + r.Count }

// ScriptRun assigns a script to a character range.
type ScriptRun struct {
	CharacterRun
	Script Script
}

// FontRun assigns a font to a character range.
type FontRun struct {
	CharacterRun
	FontID FontID
}

// ColorRun assigns an index into VisualModel.Colors to a character range.
type ColorRun struct {
	CharacterRun
	ColorIndex int
}

// ParagraphRun is a paragraph, terminated by a new paragraph character or
// the end of the text.
type ParagraphRun struct {
	CharacterRun
}

// BidiParagraphRun marks a paragraph containing right to left characters.
type BidiParagraphRun struct {
	CharacterRun
	Direction Direction
}

// GlyphInfo holds a shaped glyph and its metrics.
type GlyphInfo struct {
	FontID   FontID
	Index    rune
	Width    float32
	Height   float32
	XBearing float32
	YBearing float32
	Advance  float32
}

// LineRun is a laid out line.
type LineRun struct {
	Glyphs          GlyphRun
	Characters      CharacterRun
	Width           float32
	Ascender        float32
	Descender       float32 // negative below the baseline
	ExtraLength     float32 // trailing white space
	AlignmentOffset float32
	Direction       Direction
}

// Height returns the line height.
func (l LineRun) Height() float32 {
	return l.Ascender - l.Descender
}

// InputStyle is the style applied to newly inserted text.
type InputStyle struct {
	TextColor colorful.Color
	FontID    FontID
}
