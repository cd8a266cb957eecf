package text

import "golang.org/x/text/unicode/bidi"

func isRightToLeft(r rune) bool {
	p, _ := bidi.LookupRune(r)
	switch p.Class() {
	case bidi.R, bidi.AL, bidi.RLE, bidi.RLO, bidi.RLI:
		return true
	}
	return false
}

// ParagraphDirection returns the direction of the first strong character of
// text[start:end], left to right when there is none.
func ParagraphDirection(text []rune, start, end int) Direction {
	for i := start; i < end; i++ {
		p, _ := bidi.LookupRune(text[i])
		switch p.Class() {
		case bidi.R, bidi.AL:
			return RightToLeft
		case bidi.L:
			return LeftToRight
		}
	}
	return LeftToRight
}

// SetBidirectionalInfo returns a BidiParagraphRun for every paragraph
// overlapping [start, start+count) that contains right to left characters.
func SetBidirectionalInfo(text []rune, paragraphs []ParagraphRun, start, count int) []BidiParagraphRun {
	var runs []BidiParagraphRun
	end := start + count
	for _, p := range paragraphs {
		if p.End() <= start || p.Index >= end {
			continue
		}
		for i := p.Index; i < p.End(); i++ {
			if isRightToLeft(text[i]) {
				runs = append(runs, BidiParagraphRun{
					CharacterRun: p.CharacterRun,
					Direction:    ParagraphDirection(text, p.Index, p.End()),
				})
				break
			}
		}
	}
	return runs
}

// GetCharactersDirection resolves the direction of every character of
// text[start:start+count]. Each bidi paragraph is resolved as a whole;
// characters outside them are left to right.
func GetCharactersDirection(text []rune, bidiRuns []BidiParagraphRun, start, count int) []Direction {
	dirs := make([]Direction, count)
	end := start + count
	for _, b := range bidiRuns {
		if b.End() <= start || b.Index >= end {
			continue
		}
		resolved := resolveParagraph(text[b.Index:b.End()], b.Direction)
		for i := max(b.Index, start); i < min(b.End(), end); i++ {
			dirs[i-start] = resolved[i-b.Index]
		}
	}
	return dirs
}

// resolveParagraph runs the bidi algorithm over one paragraph. The new
// paragraph character ending it takes the paragraph direction.
func resolveParagraph(paragraph []rune, dir Direction) []Direction {
	dirs := make([]Direction, len(paragraph))
	n := len(paragraph)
	if n > 0 && IsNewParagraph(paragraph[n-1]) {
		dirs[n-1] = dir
		n--
	}
	if n == 0 {
		return dirs
	}

	def := bidi.LeftToRight
	if dir == RightToLeft {
		def = bidi.RightToLeft
	}
	var p bidi.Paragraph
	if _, err := p.SetString(string(paragraph[:n]), bidi.DefaultDirection(def)); err != nil {
		fill(dirs[:n], dir)
		return dirs
	}
	order, err := p.Order()
	if err != nil {
		fill(dirs[:n], dir)
		return dirs
	}
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		from, to := run.Pos()
		rtl := Direction(run.Direction() == bidi.RightToLeft)
		for j := max(from, 0); j <= to && j < n; j++ {
			dirs[j] = rtl
		}
	}
	return dirs
}

func fill(dirs []Direction, d Direction) {
	for i := range dirs {
		dirs[i] = d
	}
}

var mirrorPairs = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

// GetMirroredText returns the text with brackets of right to left characters
// mirrored, and whether anything changed.
func GetMirroredText(text []rune, dirs []Direction, start int) ([]rune, bool) {
	mirrored := make([]rune, len(text))
	copy(mirrored, text)
	changed := false
	for i, d := range dirs {
		if d != RightToLeft {
			continue
		}
		if m, ok := mirrorPairs[text[start+i]]; ok {
			mirrored[start+i] = m
			changed = true
		}
	}
	return mirrored, changed
}
