package text

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

// shapeAll runs every pipeline stage over s.
func shapeAll(t *testing.T, s string, params LayoutParameters, opts ShapeOptions) (*LogicalModel, *VisualModel, *FontClient) {
	t.Helper()
	fonts := NewFontClient()
	lm := &LogicalModel{Text: []rune(s)}
	vm := NewVisualModel(colorful.Color{})
	n := len(lm.Text)

	lm.LineBreakInfo = SetLineBreakInfo(lm.Text, 0, n)
	lm.WordBreakInfo = SetWordBreakInfo(lm.Text, 0, n)
	lm.CreateParagraphInfo(0, n)
	lm.ScriptRuns = SetScripts(lm.Text, nil, 0, n)
	if n > 0 {
		lm.FontRuns = []FontRun{{CharacterRun{0, n}, fonts.DefaultFontID()}}
	}
	lm.BidiParagraphs = SetBidirectionalInfo(lm.Text, lm.Paragraphs, 0, n)
	if lm.HasRightToLeft() {
		lm.CharacterDirections = GetCharactersDirection(lm.Text, lm.BidiParagraphs, 0, n)
	}

	res := ShapeText(lm.Text, lm.LineBreakInfo, lm.ScriptRuns, lm.FontRuns, 0, 0, n, opts)
	vm.Glyphs = res.Glyphs
	vm.GlyphsToCharacters = res.GlyphsToCharacters
	vm.CharactersPerGlyph = res.CharactersPerGlyph
	vm.CreateGlyphsPerCharacterTable(0, 0, n)
	vm.CreateCharacterToGlyphTable(0, 0, n)
	fonts.GetGlyphMetrics(vm.Glyphs)
	for _, g := range res.NewParagraphGlyphs {
		vm.Glyphs[g].Advance, vm.Glyphs[g].Width, vm.Glyphs[g].XBearing = 0, 0, 0
	}

	NewLayoutEngine(fonts).Layout(lm, vm, params, true)
	return lm, vm, fonts
}

func TestLineBreakInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []LineBreakInfo
	}{
		{"single word", "abc", []LineBreakInfo{LineNoBreak, LineNoBreak, LineMustBreak}},
		{"two words", "ab cd", []LineBreakInfo{LineNoBreak, LineNoBreak, LineAllowBreak, LineNoBreak, LineMustBreak}},
		{"new paragraph", "a\nb", []LineBreakInfo{LineNoBreak, LineMustBreak, LineMustBreak}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := []rune(tt.text)
			got := SetLineBreakInfo(text, 0, len(text))
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("info[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParagraphs(t *testing.T) {
	lm, _, _ := shapeAll(t, "ab\ncd\n\nef", LayoutParameters{BoundingBox: Vector2{200, 100}, Type: MultiLineBox}, ShapeOptions{})

	want := []CharacterRun{{0, 3}, {3, 3}, {6, 1}, {7, 2}}
	if len(lm.Paragraphs) != len(want) {
		t.Fatalf("paragraphs = %v, want %v", lm.Paragraphs, want)
	}
	for i, p := range lm.Paragraphs {
		if p.CharacterRun != want[i] {
			t.Errorf("paragraph %d = %v, want %v", i, p.CharacterRun, want[i])
		}
	}

	got := lm.FindParagraphs(4, 3)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("FindParagraphs(4, 3) = %v, want [1 2]", got)
	}
}

func TestConversionTablesConsistent(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts ShapeOptions
	}{
		{"ascii", "hello world", ShapeOptions{}},
		{"latin ligatures", "office fluff", ShapeOptions{Ligatures: true}},
		{"combining mark", "e\u0301te", ShapeOptions{}},
		{"devanagari cluster", "निर", ShapeOptions{}},
		{"arabic lam alef", "لام", ShapeOptions{Ligatures: true}},
		{"paragraphs", "ab\ncd", ShapeOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm, vm, _ := shapeAll(t, tt.text, LayoutParameters{BoundingBox: Vector2{500, 100}, Type: MultiLineBox}, tt.opts)
			n := len(lm.Text)

			sum := 0
			for _, c := range vm.CharactersPerGlyph {
				sum += c
			}
			if sum != n {
				t.Errorf("sum(charactersPerGlyph) = %d, want %d", sum, n)
			}
			if len(vm.CharactersToGlyph) != n || len(vm.GlyphsPerCharacter) != n {
				t.Fatalf("table lengths %d/%d, want %d", len(vm.CharactersToGlyph), len(vm.GlyphsPerCharacter), n)
			}
			for g, c := range vm.GlyphsToCharacters {
				if vm.CharactersToGlyph[c] > g {
					t.Errorf("charactersToGlyph[glyphsToCharacters[%d]] = %d > %d", g, vm.CharactersToGlyph[c], g)
				}
			}
			glyphs := 0
			for _, k := range vm.GlyphsPerCharacter {
				glyphs += k
			}
			if glyphs != len(vm.Glyphs) {
				t.Errorf("sum(glyphsPerCharacter) = %d, want %d", glyphs, len(vm.Glyphs))
			}
		})
	}
}

func TestLigatureGlyph(t *testing.T) {
	lm, vm, _ := shapeAll(t, "fit", LayoutParameters{BoundingBox: Vector2{200, 50}}, ShapeOptions{Ligatures: true})
	if len(vm.Glyphs) != 2 {
		t.Fatalf("glyphs = %d, want 2", len(vm.Glyphs))
	}
	if vm.Glyphs[0].Index != 0xFB01 || vm.CharactersPerGlyph[0] != 2 {
		t.Errorf("first glyph = %U carrying %d, want U+FB01 carrying 2", vm.Glyphs[0].Index, vm.CharactersPerGlyph[0])
	}

	// the ligature is split between its characters
	a := GetCursorPosition(lm, vm, 0).PrimaryPosition.X
	b := GetCursorPosition(lm, vm, 1).PrimaryPosition.X
	c := GetCursorPosition(lm, vm, 2).PrimaryPosition.X
	if !(a < b && b < c) {
		t.Errorf("cursor x = %v %v %v, want increasing", a, b, c)
	}
}

func TestMultiLineWrap(t *testing.T) {
	// 7px per glyph: "aaaa bbbb" needs 63px
	lm, vm, _ := shapeAll(t, "aaaa bbbb", LayoutParameters{BoundingBox: Vector2{40, 100}, Type: MultiLineBox}, ShapeOptions{})
	if len(vm.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(vm.Lines))
	}
	if got := vm.Lines[1].Characters; got != (CharacterRun{5, 4}) {
		t.Errorf("second line = %v, want {5 4}", got)
	}
	if vm.Lines[0].ExtraLength == 0 {
		t.Error("first line should carry the trailing space as extra length")
	}
	if l := vm.GetLineOfCharacter(6); l != 1 {
		t.Errorf("GetLineOfCharacter(6) = %d, want 1", l)
	}
	if idx := GetClosestCursorIndex(lm, vm, 0, vm.Lines[0].Height()+1); idx != 5 {
		t.Errorf("closest index at start of second line = %d, want 5", idx)
	}
}

func TestTrailingNewParagraphLine(t *testing.T) {
	lm, vm, _ := shapeAll(t, "ab\n", LayoutParameters{BoundingBox: Vector2{100, 100}, Type: MultiLineBox}, ShapeOptions{})
	if len(vm.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(vm.Lines))
	}
	info := GetCursorPosition(lm, vm, 3)
	if info.LineOffset != vm.Lines[0].Height() {
		t.Errorf("cursor line offset = %v, want %v", info.LineOffset, vm.Lines[0].Height())
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		name  string
		align HorizontalAlignment
		want  float32
	}{
		{"begin", AlignBegin, 0},
		{"center", AlignCenter, 36},
		{"end", AlignEnd, 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, vm, _ := shapeAll(t, "abcd", LayoutParameters{BoundingBox: Vector2{100, 20}, HorizontalAlignment: tt.align}, ShapeOptions{})
			if got := vm.Lines[0].AlignmentOffset; got != tt.want {
				t.Errorf("alignment offset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRightToLeftOrdering(t *testing.T) {
	// alef bet gimel
	lm, vm, _ := shapeAll(t, "אבג", LayoutParameters{BoundingBox: Vector2{100, 20}}, ShapeOptions{})
	if vm.Lines[0].Direction != RightToLeft {
		t.Fatal("line should be right to left")
	}
	if !(vm.GlyphPositions[0].X > vm.GlyphPositions[2].X) {
		t.Errorf("first logical glyph should be rightmost: %v", vm.GlyphPositions)
	}
	if lm.GetCharacterDirection(1) != RightToLeft {
		t.Error("character 1 should be right to left")
	}
}

func TestMixedDirectionSecondaryCursor(t *testing.T) {
	lm, vm, _ := shapeAll(t, "abאב", LayoutParameters{BoundingBox: Vector2{200, 20}}, ShapeOptions{})
	info := GetCursorPosition(lm, vm, 2)
	if !info.IsSecondaryCursor {
		t.Fatal("expected secondary cursor at direction boundary")
	}
	if info.PrimaryCursorHeight != 0.5*info.LineHeight {
		t.Errorf("primary height = %v, want half of %v", info.PrimaryCursorHeight, info.LineHeight)
	}
}

func TestFindSelectionIndices(t *testing.T) {
	lm, vm, _ := shapeAll(t, "hello world", LayoutParameters{BoundingBox: Vector2{200, 20}}, ShapeOptions{})

	tests := []struct {
		name      string
		x         float32
		wantStart int
		wantEnd   int
		wantFound bool
	}{
		{"first word", 10, 0, 5, true},
		{"second word", 50, 6, 11, true},
		{"white space", 37, 5, 5, false},
		{"past the end", 150, 11, 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, found := FindSelectionIndices(lm, vm, tt.x, 5)
			if found != tt.wantFound || end != tt.wantEnd || (found && start != tt.wantStart) {
				t.Errorf("FindSelectionIndices(%v) = %d, %d, %v; want %d, %d, %v", tt.x, start, end, found, tt.wantStart, tt.wantEnd, tt.wantFound)
			}
		})
	}
}

func TestClearRuns(t *testing.T) {
	runs := []ScriptRun{
		{CharacterRun{0, 4}, ScriptLatin},
		{CharacterRun{4, 3}, ScriptArabic},
		{CharacterRun{7, 2}, ScriptLatin},
	}
	got, first := ClearRuns(runs, 2, 5)
	want := []CharacterRun{{0, 2}, {2, 1}, {3, 2}}
	if len(got) != len(want) {
		t.Fatalf("runs = %v", got)
	}
	for i := range want {
		if got[i].CharacterRun != want[i] {
			t.Errorf("run %d = %v, want %v", i, got[i].CharacterRun, want[i])
		}
	}
	if first != 1 {
		t.Errorf("first = %d, want 1", first)
	}
}

func TestColorRuns(t *testing.T) {
	lm := &LogicalModel{Text: []rune("abcdef")}
	lm.UpdateTextStyleRuns(0, 6)
	lm.SetColorRun(2, 2, 1)

	want := []ColorRun{
		{CharacterRun{0, 2}, 0},
		{CharacterRun{2, 2}, 1},
		{CharacterRun{4, 2}, 0},
	}
	if len(lm.ColorRuns) != len(want) {
		t.Fatalf("color runs = %v", lm.ColorRuns)
	}
	for i := range want {
		if lm.ColorRuns[i] != want[i] {
			t.Errorf("run %d = %v, want %v", i, lm.ColorRuns[i], want[i])
		}
	}
	if c, _ := lm.RetrieveStyle(3); c != 1 {
		t.Errorf("style at 3 = %d, want 1", c)
	}
}

func TestInsertRunsSplitsSpanningRun(t *testing.T) {
	runs := []FontRun{{CharacterRun{0, 6}, 1}}
	created := []FontRun{{CharacterRun{2, 3}, 2}}

	got := InsertRuns(runs, created, 2, 3)
	want := []FontRun{
		{CharacterRun{0, 2}, 1},
		{CharacterRun{2, 3}, 2},
		{CharacterRun{5, 4}, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("runs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("run %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRightToLeftTrailingWhiteSpaceInsideBox(t *testing.T) {
	tests := []struct {
		name  string
		align HorizontalAlignment
	}{
		{"begin", AlignBegin},
		{"center", AlignCenter},
		{"end", AlignEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := LayoutParameters{BoundingBox: Vector2{40, 100}, Type: MultiLineBox, HorizontalAlignment: tt.align}
			_, vm, _ := shapeAll(t, "אבגד הוזח", params, ShapeOptions{})
			if len(vm.Lines) != 2 {
				t.Fatalf("lines = %d, want 2", len(vm.Lines))
			}
			if vm.Lines[0].ExtraLength == 0 {
				t.Fatal("first line should carry the trailing space")
			}
			for i, line := range vm.Lines {
				for g := line.Glyphs.Index; g < line.Glyphs.End(); g++ {
					left := line.AlignmentOffset + vm.GlyphPositions[g].X
					right := left + vm.Glyphs[g].Advance
					if left < 0 || right > params.BoundingBox.X {
						t.Errorf("line %d glyph %d spans [%v, %v], outside [0, %v]", i, g, left, right, params.BoundingBox.X)
					}
				}
			}
		})
	}
}

func TestCharactersDirectionPerParagraph(t *testing.T) {
	s := []rune("אב\nab")
	var lm LogicalModel
	lm.Text = s
	lm.LineBreakInfo = SetLineBreakInfo(s, 0, len(s))
	lm.CreateParagraphInfo(0, len(s))
	runs := SetBidirectionalInfo(s, lm.Paragraphs, 0, len(s))
	if len(runs) != 1 || runs[0].CharacterRun != (CharacterRun{0, 3}) || runs[0].Direction != RightToLeft {
		t.Fatalf("bidi runs = %v, want one right to left run over {0 3}", runs)
	}

	full := GetCharactersDirection(s, runs, 0, len(s))
	want := []Direction{RightToLeft, RightToLeft, RightToLeft, LeftToRight, LeftToRight}
	for i := range want {
		if full[i] != want[i] {
			t.Errorf("direction %d = %v, want %v", i, full[i], want[i])
		}
	}

	// resolving one paragraph gives what the full pass gives for it
	first := GetCharactersDirection(s, runs, 0, 3)
	second := GetCharactersDirection(s, runs, 3, 2)
	got := append(first, second...)
	for i := range full {
		if got[i] != full[i] {
			t.Errorf("per paragraph direction %d = %v, want %v", i, got[i], full[i])
		}
	}
}

func TestMixedParagraphDirections(t *testing.T) {
	// latin embedded in a right to left paragraph keeps its own direction
	s := []rune("אב cd")
	runs := []BidiParagraphRun{{CharacterRun{0, len(s)}, RightToLeft}}
	dirs := GetCharactersDirection(s, runs, 0, len(s))
	if dirs[0] != RightToLeft || dirs[1] != RightToLeft {
		t.Errorf("hebrew directions = %v", dirs[:2])
	}
	if dirs[3] != LeftToRight || dirs[4] != LeftToRight {
		t.Errorf("latin directions = %v", dirs[3:])
	}
}

func TestSetScriptsParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ScriptRun
	}{
		{"paragraphs of one script merge", "abc\nd", []ScriptRun{{CharacterRun{0, 5}, ScriptLatin}}},
		{"leading white space takes the paragraph script", "אב\n ab", []ScriptRun{
			{CharacterRun{0, 3}, ScriptHebrew},
			{CharacterRun{3, 3}, ScriptLatin},
		}},
		{"common follows the preceding script", "ab אב", []ScriptRun{
			{CharacterRun{0, 3}, ScriptLatin},
			{CharacterRun{3, 2}, ScriptHebrew},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := []rune(tt.text)
			full := SetScripts(s, nil, 0, len(s))
			if len(full) != len(tt.want) {
				t.Fatalf("runs = %v, want %v", full, tt.want)
			}
			for i := range tt.want {
				if full[i] != tt.want[i] {
					t.Errorf("run %d = %v, want %v", i, full[i], tt.want[i])
				}
			}

			// building paragraph by paragraph gives the same runs
			var runs []ScriptRun
			for start := 0; start < len(s); {
				end := start
				for end < len(s) && !IsNewParagraph(s[end]) {
					end++
				}
				end = min(end+1, len(s))
				runs = SetScripts(s, runs, start, end-start)
				start = end
			}
			if len(runs) != len(full) {
				t.Fatalf("incremental runs = %v, want %v", runs, full)
			}
			for i := range full {
				if runs[i] != full[i] {
					t.Errorf("incremental run %d = %v, want %v", i, runs[i], full[i])
				}
			}
		})
	}
}

func TestMergeScriptRuns(t *testing.T) {
	runs := []ScriptRun{
		{CharacterRun{0, 2}, ScriptLatin},
		{CharacterRun{2, 3}, ScriptLatin},
		{CharacterRun{5, 1}, ScriptArabic},
		{CharacterRun{6, 2}, ScriptLatin},
	}
	got := MergeScriptRuns(runs)
	want := []ScriptRun{
		{CharacterRun{0, 5}, ScriptLatin},
		{CharacterRun{5, 1}, ScriptArabic},
		{CharacterRun{6, 2}, ScriptLatin},
	}
	if len(got) != len(want) {
		t.Fatalf("runs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("run %d = %v, want %v", i, got[i], want[i])
		}
	}
}
