package text

import "unicode"

// Script classifies characters for font selection and ligature rules.
type Script uint8

const (
	ScriptUnknown Script = iota
	ScriptCommon
	ScriptASCIIDigits
	ScriptLatin
	ScriptGreek
	ScriptCyrillic
	ScriptArabic
	ScriptHebrew
	ScriptDevanagari
	ScriptThai
	ScriptHan
	ScriptHangul
	ScriptHiragana
	ScriptKatakana
	ScriptEmoji
)

var scriptNames = [...]string{
	ScriptUnknown:     "unknown",
	ScriptCommon:      "common",
	ScriptASCIIDigits: "ascii-digits",
	ScriptLatin:       "latin",
	ScriptGreek:       "greek",
	ScriptCyrillic:    "cyrillic",
	ScriptArabic:      "arabic",
	ScriptHebrew:      "hebrew",
	ScriptDevanagari:  "devanagari",
	ScriptThai:        "thai",
	ScriptHan:         "han",
	ScriptHangul:      "hangul",
	ScriptHiragana:    "hiragana",
	ScriptKatakana:    "katakana",
	ScriptEmoji:       "emoji",
}

func (s Script) String() string {
	if int(s) < len(scriptNames) {
		return scriptNames[s]
	}
	return "unknown"
}

var scriptTables = []struct {
	script Script
	table  *unicode.RangeTable
}{
	{ScriptLatin, unicode.Latin},
	{ScriptArabic, unicode.Arabic},
	{ScriptHebrew, unicode.Hebrew},
	{ScriptCyrillic, unicode.Cyrillic},
	{ScriptGreek, unicode.Greek},
	{ScriptDevanagari, unicode.Devanagari},
	{ScriptThai, unicode.Thai},
	{ScriptHan, unicode.Han},
	{ScriptHangul, unicode.Hangul},
	{ScriptHiragana, unicode.Hiragana},
	{ScriptKatakana, unicode.Katakana},
}

// GetCharacterScript returns the script of r. Combining marks and other
// inherited characters report ScriptCommon and take the script of the
// preceding character in SetScripts.
func GetCharacterScript(r rune) Script {
	switch {
	case r >= '0' && r <= '9':
		return ScriptASCIIDigits
	case IsEmoji(r):
		return ScriptEmoji
	}
	for _, st := range scriptTables {
		if unicode.Is(st.table, r) {
			return st.script
		}
	}
	return ScriptCommon
}

// IsEmoji reports whether r is in one of the pictographic blocks.
func IsEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) || r == 0x200D || (r >= 0xFE00 && r <= 0xFE0F)
}

// HasLigatureMustBreak reports whether ligatures of the script must be split
// so the cursor can move between their characters.
func HasLigatureMustBreak(s Script) bool {
	return s == ScriptLatin || s == ScriptArabic
}

// IsWhiteSpace reports whether r is white space, new paragraphs included.
func IsWhiteSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// IsNewParagraph reports whether r ends a paragraph.
func IsNewParagraph(r rune) bool {
	switch r {
	case '\n', '\r', '\f', '\v', 0x2028, 0x2029, 0x85:
		return true
	}
	return false
}

// SetScripts computes the script runs of [start, start+count) and merges
// them into runs, which must not cover that range yet. Common characters
// take the script of the preceding character of their paragraph; leading
// ones take the first script of the paragraph. The range must start at a
// paragraph boundary.
func SetScripts(text []rune, runs []ScriptRun, start, count int) []ScriptRun {
	if count == 0 {
		return runs
	}

	scripts := make([]Script, count)
	for i := range scripts {
		scripts[i] = GetCharacterScript(text[start+i])
	}
	for from := 0; from < count; {
		to := from
		for to < count && !IsNewParagraph(text[start+to]) {
			to++
		}
		resolveCommon(scripts[from:min(to+1, count)])
		from = to + 1
	}

	var created []ScriptRun
	for i, s := range scripts {
		if n := len(created); n > 0 && created[n-1].Script == s {
			created[n-1].Count++
			continue
		}
		created = append(created, ScriptRun{CharacterRun{start + i, 1}, s})
	}
	return MergeScriptRuns(InsertRuns(runs, created, start, count))
}

// resolveCommon resolves the common characters of one paragraph.
func resolveCommon(scripts []Script) {
	first := -1
	current := ScriptUnknown
	for i, s := range scripts {
		if s != ScriptCommon {
			if first < 0 {
				first = i
			}
			current = s
			continue
		}
		if current != ScriptUnknown {
			scripts[i] = current
		}
	}
	for i := 0; i < first; i++ {
		scripts[i] = scripts[first]
	}
}

// MergeScriptRuns joins adjacent runs of the same script.
func MergeScriptRuns(runs []ScriptRun) []ScriptRun {
	out := runs[:0]
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].Script == r.Script && out[n-1].End() == r.Index {
			out[n-1].Count += r.Count
			continue
		}
		out = append(out, r)
	}
	return out
}
