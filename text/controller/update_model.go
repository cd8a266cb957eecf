package controller

import (
	"math"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/text"
)

// OperationsMask is a set of model update stages.
type OperationsMask uint16

const (
	NoOperation    OperationsMask = 0
	ConvertToUTF32 OperationsMask = 1 << iota
	GetScripts
	ValidateFonts
	GetLineBreaks
	GetWordBreaks
	BidiInfo
	ShapeText
	GetGlyphMetrics
	Layout
	UpdateLayoutSize
	Reorder
	Align
	Color
	UpdateDirection

	AllOperations OperationsMask = 0xFFFF
)

// onlyOnceOperations are the stages that depend on the text only, not on
// the control size.
const onlyOnceOperations = ConvertToUTF32 | GetScripts | ValidateFonts | GetLineBreaks |
	GetWordBreaks | BidiInfo | ShapeText | GetGlyphMetrics

// sizeOperations are redone whenever the layout box changes.
const sizeOperations = Layout | Align | Reorder

// TextUpdateInfo describes the edit the next model update must absorb.
type TextUpdateInfo struct {
	CharacterIndex             int // first modified character, math.MaxInt when none
	NumberOfCharactersToRemove int
	NumberOfCharactersToAdd    int
	PreviousNumberOfCharacters int

	// Filled by calculateTextUpdateIndices.
	ParagraphCharacterIndex     int
	RequestedNumberOfCharacters int
	StartGlyphIndex             int
	StartLineIndex              int

	ClearAll                    bool
	FullRelayoutNeeded          bool
	IsLastCharacterNewParagraph bool
}

// Clear resets everything except PreviousNumberOfCharacters.
func (i *TextUpdateInfo) Clear() {
	*i = TextUpdateInfo{
		CharacterIndex:             math.MaxInt,
		PreviousNumberOfCharacters: i.PreviousNumberOfCharacters,
	}
}

// calculateTextUpdateIndices finds the paragraphs touched by the pending edit
// and returns how many characters they had before it.
func (c *Controller) calculateTextUpdateIndices() int {
	info := &c.updateInfo
	lm, vm := c.logical, c.visual
	info.ParagraphCharacterIndex = 0
	info.StartGlyphIndex = 0
	info.StartLineIndex = 0

	numberOfParagraphs := len(lm.Paragraphs)
	if numberOfParagraphs == 0 {
		info.RequestedNumberOfCharacters = info.NumberOfCharactersToAdd - info.NumberOfCharactersToRemove
		return 0
	}

	var paragraphs []int
	if info.CharacterIndex >= info.PreviousNumberOfCharacters {
		if info.IsLastCharacterNewParagraph {
			info.ParagraphCharacterIndex = info.PreviousNumberOfCharacters
			info.RequestedNumberOfCharacters = info.NumberOfCharactersToAdd - info.NumberOfCharactersToRemove
			info.StartGlyphIndex = len(vm.Glyphs)
			info.StartLineIndex = max(len(vm.Lines)-1, 0)
			return 0
		}
		paragraphs = []int{numberOfParagraphs - 1}
	} else {
		count := max(info.NumberOfCharactersToRemove, 1)
		if info.FullRelayoutNeeded {
			count = info.PreviousNumberOfCharacters
		}
		paragraphs = lm.FindParagraphs(info.CharacterIndex, count)
	}

	numberOfCharacters := 0
	if len(paragraphs) > 0 {
		first := lm.Paragraphs[paragraphs[0]]
		info.ParagraphCharacterIndex = first.Index

		lastIndex := paragraphs[len(paragraphs)-1]
		last := lm.Paragraphs[lastIndex]
		if info.NumberOfCharactersToRemove > 0 && lastIndex < numberOfParagraphs-1 &&
			last.End() == info.CharacterIndex+info.NumberOfCharactersToRemove {
			// The removed new paragraph character merges the next paragraph in.
			last = lm.Paragraphs[lastIndex+1]
		}
		numberOfCharacters = last.End() - info.ParagraphCharacterIndex
	}

	info.RequestedNumberOfCharacters = numberOfCharacters + info.NumberOfCharactersToAdd - info.NumberOfCharactersToRemove
	if info.ParagraphCharacterIndex < len(vm.CharactersToGlyph) {
		info.StartGlyphIndex = vm.CharactersToGlyph[info.ParagraphCharacterIndex]
	} else {
		info.StartGlyphIndex = len(vm.Glyphs)
	}
	return numberOfCharacters
}

func (c *Controller) clearFullModelData(ops OperationsMask) {
	lm, vm := c.logical, c.visual
	if ops&GetLineBreaks != 0 {
		lm.LineBreakInfo = nil
		lm.Paragraphs = nil
	}
	if ops&GetWordBreaks != 0 {
		lm.WordBreakInfo = nil
	}
	if ops&GetScripts != 0 {
		lm.ScriptRuns = nil
	}
	if ops&ValidateFonts != 0 {
		lm.FontRuns = nil
	}
	if len(lm.BidiParagraphs) > 0 && ops&BidiInfo != 0 {
		lm.BidiParagraphs = nil
		lm.CharacterDirections = nil
	}
	if ops&ShapeText != 0 {
		vm.Glyphs = nil
		vm.GlyphsToCharacters = nil
		vm.CharactersToGlyph = nil
		vm.CharactersPerGlyph = nil
		vm.GlyphsPerCharacter = nil
		vm.GlyphPositions = nil
	}
	if ops&Layout != 0 {
		vm.Lines = nil
	}
	if ops&Color != 0 {
		vm.ColorIndices = nil
	}
}

// clearCharacterModelData erases the per character data of [start, end].
func (c *Controller) clearCharacterModelData(start, end int, ops OperationsMask) {
	lm := c.logical
	if ops&GetLineBreaks != 0 {
		lm.LineBreakInfo = text.EraseRange(lm.LineBreakInfo, start, min(end+1, len(lm.LineBreakInfo)))
		lm.Paragraphs, _ = text.ClearRuns(lm.Paragraphs, start, end)
	}
	if ops&GetWordBreaks != 0 {
		lm.WordBreakInfo = text.EraseRange(lm.WordBreakInfo, start, min(end+1, len(lm.WordBreakInfo)))
	}
	if ops&GetScripts != 0 {
		lm.ScriptRuns, _ = text.ClearRuns(lm.ScriptRuns, start, end)
	}
	if ops&ValidateFonts != 0 {
		lm.FontRuns, _ = text.ClearRuns(lm.FontRuns, start, end)
	}
	if len(lm.BidiParagraphs) > 0 && ops&BidiInfo != 0 {
		lm.BidiParagraphs, _ = text.ClearRuns(lm.BidiParagraphs, start, end)
		lm.CharacterDirections = text.EraseRange(lm.CharacterDirections, start, min(end+1, len(lm.CharacterDirections)))
	}
}

// clearGlyphModelData erases the glyphs of the characters [start, end] and
// moves the conversion entries of the following glyphs and characters back.
func (c *Controller) clearGlyphModelData(start, end int, ops OperationsMask) {
	vm := c.visual
	if end >= len(vm.CharactersToGlyph) {
		return
	}
	startGlyph := c.updateInfo.StartGlyphIndex
	// end may share a ligature glyph with the characters before it, so walk
	// to the glyph carrying its cluster.
	endGlyph := vm.CharactersToGlyph[end]
	for endGlyph < len(vm.Glyphs)-1 && vm.CharactersPerGlyph[endGlyph] == 0 {
		endGlyph++
	}
	endGlyphPlusOne := endGlyph + 1
	glyphsRemoved := endGlyphPlusOne - startGlyph
	charactersRemoved := end + 1 - start

	if ops&ShapeText != 0 {
		for i := end + 1; i < len(vm.CharactersToGlyph); i++ {
			vm.CharactersToGlyph[i] -= glyphsRemoved
		}
		vm.CharactersToGlyph = text.EraseRange(vm.CharactersToGlyph, start, end+1)
		vm.GlyphsPerCharacter = text.EraseRange(vm.GlyphsPerCharacter, start, end+1)

		for g := endGlyphPlusOne; g < len(vm.GlyphsToCharacters); g++ {
			vm.GlyphsToCharacters[g] -= charactersRemoved
		}
		vm.Glyphs = text.EraseRange(vm.Glyphs, startGlyph, endGlyphPlusOne)
		vm.GlyphsToCharacters = text.EraseRange(vm.GlyphsToCharacters, startGlyph, endGlyphPlusOne)
		vm.CharactersPerGlyph = text.EraseRange(vm.CharactersPerGlyph, startGlyph, endGlyphPlusOne)
		if endGlyphPlusOne <= len(vm.GlyphPositions) {
			vm.GlyphPositions = text.EraseRange(vm.GlyphPositions, startGlyph, endGlyphPlusOne)
		}
	}
	if ops&Layout != 0 {
		// Lines are rebuilt from scratch by the layout stage.
		vm.Lines = nil
		c.updateInfo.StartLineIndex = 0
	}
	if ops&Color != 0 && endGlyphPlusOne <= len(vm.ColorIndices) {
		vm.ColorIndices = text.EraseRange(vm.ColorIndices, startGlyph, endGlyphPlusOne)
	}
}

func (c *Controller) clearModelData(start, end int, ops OperationsMask) {
	if c.updateInfo.ClearAll || (start == 0 && c.updateInfo.PreviousNumberOfCharacters == end+1) {
		c.clearFullModelData(ops)
		return
	}
	c.clearCharacterModelData(start, end, ops)
	c.clearGlyphModelData(start, end, ops)
}

// updateModel runs the pending stages of operationsRequired over the
// paragraphs touched since the last update. Returns whether anything ran.
func (c *Controller) updateModel(operationsRequired OperationsMask) bool {
	ops := c.operationsPending & operationsRequired
	if ops == NoOperation {
		return false
	}
	lm, vm := c.logical, c.visual
	n := len(lm.Text)

	paragraphCharacters := c.calculateTextUpdateIndices()
	start := c.updateInfo.ParagraphCharacterIndex
	if c.updateInfo.ClearAll || paragraphCharacters != 0 {
		c.clearModelData(start, start+max(paragraphCharacters-1, 0), ops)
	}
	c.updateInfo.ClearAll = false

	requested := max(c.updateInfo.RequestedNumberOfCharacters, 0)
	startGlyph := c.updateInfo.StartGlyphIndex
	updated := false

	if ops&GetLineBreaks != 0 {
		lm.LineBreakInfo = text.InsertAt(lm.LineBreakInfo, start, text.SetLineBreakInfo(lm.Text, start, requested)...)
		lm.CreateParagraphInfo(start, requested)
		updated = true
	}

	if ops&GetWordBreaks != 0 {
		lm.WordBreakInfo = text.InsertAt(lm.WordBreakInfo, start, text.SetWordBreakInfo(lm.Text, start, requested)...)
		updated = true
	}

	if ops&(GetScripts|ValidateFonts) != 0 {
		if ops&GetScripts != 0 {
			lm.ScriptRuns = text.SetScripts(lm.Text, lm.ScriptRuns, start, requested)
		}
		if ops&ValidateFonts != 0 {
			lm.FontRuns = c.fonts.ValidateFonts(lm.Text, lm.FontRuns, c.fontID(), start, requested)
		}
		updated = true
	}

	textToShape := lm.Text
	if ops&BidiInfo != 0 {
		created := text.SetBidirectionalInfo(lm.Text, lm.Paragraphs, start, requested)
		lm.BidiParagraphs = text.InsertRuns(lm.BidiParagraphs, created, start, requested)
		if len(lm.BidiParagraphs) > 0 {
			if len(lm.CharacterDirections) == n-requested {
				dirs := text.GetCharactersDirection(lm.Text, lm.BidiParagraphs, start, requested)
				lm.CharacterDirections = text.InsertAt(lm.CharacterDirections, start, dirs...)
			} else {
				lm.CharacterDirections = text.GetCharactersDirection(lm.Text, lm.BidiParagraphs, 0, n)
			}
			mirrored, ok := text.GetMirroredText(lm.Text, lm.CharacterDirections[start:start+requested], start)
			lm.MirroredText = nil
			if ok {
				lm.MirroredText = mirrored
				textToShape = mirrored
			}
		} else {
			lm.CharacterDirections = nil
			lm.MirroredText = nil
		}
		updated = true
	}

	currentNumberOfGlyphs := len(vm.Glyphs)
	var newParagraphGlyphs []int
	if ops&ShapeText != 0 {
		res := text.ShapeText(textToShape, lm.LineBreakInfo, lm.ScriptRuns, lm.FontRuns,
			start, startGlyph, requested, text.ShapeOptions{Ligatures: c.config.Ligatures})

		for g := startGlyph; g < len(vm.GlyphsToCharacters); g++ {
			vm.GlyphsToCharacters[g] += requested
		}
		vm.Glyphs = text.InsertAt(vm.Glyphs, startGlyph, res.Glyphs...)
		vm.GlyphsToCharacters = text.InsertAt(vm.GlyphsToCharacters, startGlyph, res.GlyphsToCharacters...)
		vm.CharactersPerGlyph = text.InsertAt(vm.CharactersPerGlyph, startGlyph, res.CharactersPerGlyph...)
		if len(vm.GlyphPositions) >= startGlyph {
			vm.GlyphPositions = text.InsertAt(vm.GlyphPositions, startGlyph, make([]text.Vector2, len(res.Glyphs))...)
		}
		newParagraphGlyphs = res.NewParagraphGlyphs

		vm.CreateGlyphsPerCharacterTable(start, startGlyph, requested)
		vm.CreateCharacterToGlyphTable(start, startGlyph, requested)
		updated = true
	}
	numberOfGlyphs := len(vm.Glyphs) - currentNumberOfGlyphs

	if ops&GetGlyphMetrics != 0 {
		c.fonts.GetGlyphMetrics(vm.Glyphs[startGlyph : startGlyph+numberOfGlyphs])
		for _, g := range newParagraphGlyphs {
			vm.Glyphs[g].XBearing = 0
			vm.Glyphs[g].Width = 0
			vm.Glyphs[g].Advance = 0
		}
		updated = true
	}

	if ops&Color != 0 {
		c.setColorIndices(start, startGlyph, requested, numberOfGlyphs)
		updated = true
	}

	if ev := c.event; ev != nil && ev.preEditFlag && len(vm.CharactersToGlyph) > 0 {
		glyphStart := vm.CharactersToGlyph[ev.preEditStartPosition]
		last := ev.preEditStartPosition + max(ev.preEditLength-1, 0)
		glyphEnd := vm.CharactersToGlyph[last] + max(vm.GlyphsPerCharacter[last]-1, 0)
		vm.AddUnderlineRun(text.GlyphRun{Index: glyphStart, Count: 1 + glyphEnd - glyphStart})
	}

	c.updateInfo.PreviousNumberOfCharacters = n

	if ce := c.log.Check(zap.DebugLevel, "model updated"); ce != nil {
		ce.Write(zap.Int("from", start), zap.Int("characters", requested),
			zap.Int("glyphs", numberOfGlyphs), zap.Uint16("operations", uint16(ops)))
	}
	return updated
}

// setColorIndices fills the color index of the glyphs shaped from
// [start, start+count). The whole table is rebuilt when it no longer
// matches the glyphs outside that range.
func (c *Controller) setColorIndices(start, startGlyph, count, numberOfGlyphs int) {
	lm, vm := c.logical, c.visual
	colorOf := func(ch int) int {
		if i := text.RunAt(lm.ColorRuns, ch); i >= 0 {
			return lm.ColorRuns[i].ColorIndex
		}
		return 0
	}
	fill := func(dst []int, from, to, glyphBase int) {
		for ch := from; ch < to; ch++ {
			g := vm.CharactersToGlyph[ch]
			for k := 0; k < vm.GlyphsPerCharacter[ch]; k++ {
				dst[g+k-glyphBase] = colorOf(ch)
			}
		}
	}

	if len(vm.ColorIndices) == len(vm.Glyphs)-numberOfGlyphs && numberOfGlyphs > 0 {
		created := make([]int, numberOfGlyphs)
		fill(created, start, start+count, startGlyph)
		vm.ColorIndices = text.InsertAt(vm.ColorIndices, startGlyph, created...)
		return
	}
	vm.ColorIndices = make([]int, len(vm.Glyphs))
	fill(vm.ColorIndices, 0, len(vm.CharactersToGlyph), 0)
}
