package text

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// boundaryFunc maps uniseg boundary flags at the end of a grapheme cluster
// to the value stored for the cluster's last character.
type boundaryFunc[T any] func(boundaries int) T

// segment walks the grapheme clusters of text[start:start+count]. Characters
// inside a cluster get inside, the last character gets at(boundaries).
func segment[T any](text []rune, start, count int, inside T, at boundaryFunc[T]) []T {
	out := make([]T, 0, count)
	if count == 0 {
		return out
	}

	str := string(text[start : start+count])
	state := -1
	for len(str) > 0 {
		var cluster string
		var boundaries int
		cluster, str, boundaries, state = uniseg.StepString(str, state)

		n := utf8.RuneCountInString(cluster)
		for i := 0; i < n-1; i++ {
			out = append(out, inside)
		}
		out = append(out, at(boundaries))
	}
	return out
}

// SetLineBreakInfo computes the line break opportunities of
// text[start:start+count]. The range is expected to be paragraph aligned so
// its last character always gets LineMustBreak.
func SetLineBreakInfo(text []rune, start, count int) []LineBreakInfo {
	info := segment(text, start, count, LineNoBreak, func(b int) LineBreakInfo {
		switch b & uniseg.MaskLine {
		case uniseg.LineMustBreak:
			return LineMustBreak
		case uniseg.LineCanBreak:
			return LineAllowBreak
		}
		return LineNoBreak
	})
	if len(info) > 0 {
		info[len(info)-1] = LineMustBreak
	}
	return info
}

// SetWordBreakInfo computes the word boundaries of text[start:start+count].
func SetWordBreakInfo(text []rune, start, count int) []WordBreakInfo {
	return segment(text, start, count, WordNoBreak, func(b int) WordBreakInfo {
		if b&uniseg.MaskWord != 0 {
			return WordBreak
		}
		return WordNoBreak
	})
}

// GraphemeClusters returns the character count of every grapheme cluster of
// text[start:start+count].
func GraphemeClusters(text []rune, start, count int) []int {
	var sizes []int
	str := string(text[start : start+count])
	state := -1
	for len(str) > 0 {
		var cluster string
		cluster, str, _, state = uniseg.StepString(str, state)
		sizes = append(sizes, utf8.RuneCountInString(cluster))
	}
	return sizes
}
