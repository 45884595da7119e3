package textstats

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/runenames"
)

// CharacterAnalysis describes one distinct character of a text.
type CharacterAnalysis struct {
	Char      string `json:"char"`
	CodePoint rune   `json:"code_point"`
	Unicode   string `json:"unicode"`
	Decimal   int    `json:"decimal"`
	Hex       string `json:"hex"`
	Octal     string `json:"octal"`
	Binary    string `json:"binary"`
	Frequency int    `json:"frequency"`
	Category  string `json:"category"`
	Name      string `json:"name"`
}

// block is an inclusive code point range with a display label.
type block struct {
	lo, hi rune
	name   string
}

var blocks = []block{
	{0x0000, 0x001F, "Control"},
	{0x0020, 0x007F, "Basic Latin"},
	{0x0080, 0x00FF, "Latin-1 Supplement"},
	{0x0100, 0x017F, "Latin Extended-A"},
	{0x0180, 0x024F, "Latin Extended-B"},
	{0x1E00, 0x1EFF, "Latin Extended Additional"},
	{0x2000, 0x206F, "General Punctuation"},
	{0x20A0, 0x20CF, "Currency Symbols"},
	{0x2100, 0x214F, "Letterlike Symbols"},
	{0x2190, 0x21FF, "Arrows"},
	{0x2200, 0x22FF, "Mathematical Operators"},
	{0x0400, 0x04FF, "Cyrillic"},
	{0x0590, 0x05FF, "Hebrew"},
	{0x0600, 0x06FF, "Arabic"},
	{0x4E00, 0x9FFF, "CJK Unified Ideographs"},
	{0x3040, 0x309F, "Hiragana"},
	{0x30A0, 0x30FF, "Katakana"},
}

// Category returns the named block containing r, or "Other".
func Category(r rune) string {
	for _, b := range blocks {
		if r >= b.lo && r <= b.hi {
			return b.name
		}
	}
	return "Other"
}

// DisplayGlyph returns a visible stand-in for whitespace and C0 control
// characters. Every other rune renders as itself.
func DisplayGlyph(r rune) string {
	switch {
	case r == ' ':
		return "␣"
	case r == '\n':
		return "↵"
	case r == '\t':
		return "→"
	case r >= 0 && r < 0x20:
		return string(0x2400 + r)
	case r == 0x7F:
		return "␡"
	}
	return string(r)
}

// Name returns the Unicode character name of r, or an empty string when
// the table has none.
func Name(r rune) string {
	return runenames.Name(r)
}

// AnalyzeCharacters describes every distinct character of text, most
// frequent first. Ties keep first-appearance order. The frequencies sum to
// the character count of text.
func AnalyzeCharacters(text string) []CharacterAnalysis {
	counts, order := frequencies(text)

	out := make([]CharacterAnalysis, 0, len(order))
	for _, r := range rankByFrequency(counts, order) {
		out = append(out, Describe(r, counts[r]))
	}
	return out
}

// Describe builds the analysis row for a single rune.
func Describe(r rune, frequency int) CharacterAnalysis {
	cp := int64(r)
	return CharacterAnalysis{
		Char:      DisplayGlyph(r),
		CodePoint: r,
		Unicode:   fmt.Sprintf("U+%04X", r),
		Decimal:   int(r),
		Hex:       "0x" + strings.ToUpper(strconv.FormatInt(cp, 16)),
		Octal:     "0" + strconv.FormatInt(cp, 8),
		Binary:    fmt.Sprintf("%08b", r),
		Frequency: frequency,
		Category:  Category(r),
		Name:      Name(r),
	}
}
