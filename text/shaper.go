package text

// ShapeOptions selects optional shaping features.
type ShapeOptions struct {
	// Ligatures collapses Latin f-ligatures and Arabic lam-alef into one glyph.
	Ligatures bool
}

// ShapeResult is the glyph sequence of a shaped character range.
type ShapeResult struct {
	Glyphs             []GlyphInfo
	GlyphsToCharacters []int // absolute character index of each glyph
	CharactersPerGlyph []int
	NewParagraphGlyphs []int // absolute glyph indices of new paragraph glyphs
}

type ligature struct {
	seq   []rune
	glyph rune
}

// Longest sequences first.
var latinLigatures = []ligature{
	{[]rune("ffi"), 0xFB03},
	{[]rune("ffl"), 0xFB04},
	{[]rune("ff"), 0xFB00},
	{[]rune("fi"), 0xFB01},
	{[]rune("fl"), 0xFB02},
}

var arabicLigatures = []ligature{
	{[]rune{0x0644, 0x0627}, 0xFEFB},
	{[]rune{0x0644, 0x0623}, 0xFEF7},
	{[]rune{0x0644, 0x0625}, 0xFEF9},
	{[]rune{0x0644, 0x0622}, 0xFEF5},
}

// ShapeText shapes text[start:start+count] into glyphs starting at glyph
// index startGlyph.
//
// Every character of a grapheme cluster gets its own glyph; the last glyph of
// the cluster carries the cluster's character count and the others carry
// zero. A ligature is one glyph carrying the count of every character it
// replaces.
func ShapeText(text []rune, lineBreaks []LineBreakInfo, scripts []ScriptRun, fonts []FontRun, start, startGlyph, count int, opts ShapeOptions) ShapeResult {
	var res ShapeResult
	if count == 0 {
		return res
	}

	clusters := GraphemeClusters(text, start, count)
	fontAt := runLookup(fonts)
	scriptAt := runLookup(scripts)

	index := start
	for ci := 0; ci < len(clusters); ci++ {
		size := clusters[ci]
		fontID := fontAt(index).FontID

		if size == 1 && IsNewParagraph(text[index]) {
			res.NewParagraphGlyphs = append(res.NewParagraphGlyphs, startGlyph+len(res.Glyphs))
			res.add(GlyphInfo{FontID: fontID, Index: text[index]}, index, 1)
			index++
			continue
		}

		if opts.Ligatures && size == 1 {
			if n, glyph := matchLigature(text, lineBreaks, clusters[ci:], index, start+count, scriptAt(index).Script); n > 1 {
				res.add(GlyphInfo{FontID: fontID, Index: glyph}, index, n)
				index += n
				ci += n - 1
				continue
			}
		}

		for k := 0; k < size; k++ {
			n := 0
			if k == size-1 {
				n = size
			}
			res.add(GlyphInfo{FontID: fontID, Index: text[index+k]}, index, n)
		}
		index += size
	}
	return res
}

func (r *ShapeResult) add(g GlyphInfo, character, count int) {
	r.Glyphs = append(r.Glyphs, g)
	r.GlyphsToCharacters = append(r.GlyphsToCharacters, character)
	r.CharactersPerGlyph = append(r.CharactersPerGlyph, count)
}

// matchLigature returns the number of single-character clusters starting at
// index that form a ligature, and the ligature glyph.
func matchLigature(text []rune, lineBreaks []LineBreakInfo, clusters []int, index, end int, script Script) (int, rune) {
	var table []ligature
	switch script {
	case ScriptLatin:
		table = latinLigatures
	case ScriptArabic:
		table = arabicLigatures
	default:
		return 0, 0
	}

	for _, lig := range table {
		n := len(lig.seq)
		if index+n > end || len(clusters) < n {
			continue
		}
		ok := true
		for k := 0; k < n; k++ {
			if clusters[k] != 1 || text[index+k] != lig.seq[k] {
				ok = false
				break
			}
			if k < n-1 && lineBreaks[index+k] != LineNoBreak {
				ok = false
				break
			}
		}
		if ok {
			return n, lig.glyph
		}
	}
	return 0, 0
}

func runLookup[T any, P runPtr[T]](runs []T) func(int) T {
	last := 0
	return func(index int) T {
		if last < len(runs) && P(&runs[last]).characterRun().Contains(index) {
			return runs[last]
		}
		if i := RunAt[T, P](runs, index); i >= 0 {
			last = i
			return runs[i]
		}
		var zero T
		return zero
	}
}
