package tokenization

import (
	"math"
	"unicode"
	"unicode/utf8"
)

// run is a maximal span of whitespace or non-whitespace.
type run struct {
	text  string
	space bool
}

// splitRuns cuts text at every whitespace/non-whitespace boundary.
// Invalid UTF-8 bytes count as non-whitespace and are kept verbatim.
func splitRuns(text string) []run {
	var runs []run
	start := 0
	inSpace := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			runs = append(runs, run{text: text[start:i], space: inSpace})
			start = i
			inSpace = space
		}
	}
	if start < len(text) {
		runs = append(runs, run{text: text[start:], space: inSpace})
	}
	return runs
}

// Segment splits text into heuristic tokens.
//
// Each whitespace run is one token. A non-whitespace run of at most
// charsPerToken runes is one token; a longer run of L runes is cut into
// ceil(L/charsPerToken) chunks at rune offsets floor(k*charsPerToken).
// The concatenation of the result is always text. Ratios below 1 are
// treated as 1.
func Segment(text string, charsPerToken float64) []string {
	if text == "" {
		return nil
	}
	if charsPerToken < 1 || math.IsNaN(charsPerToken) {
		charsPerToken = 1
	}

	var tokens []string
	for _, r := range splitRuns(text) {
		if r.space {
			tokens = append(tokens, r.text)
			continue
		}
		tokens = append(tokens, chunk(r.text, charsPerToken)...)
	}
	return tokens
}

// chunk splits a non-whitespace run on a charsPerToken-wide rune grid.
func chunk(s string, charsPerToken float64) []string {
	length := utf8.RuneCountInString(s)
	if float64(length) <= charsPerToken {
		return []string{s}
	}

	// byte offset of every rune start
	offsets := make([]int, 0, length+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))

	n := int(math.Ceil(float64(length) / charsPerToken))
	pieces := make([]string, 0, n)
	prev := 0
	for k := 1; k < n; k++ {
		cut := int(math.Floor(float64(k) * charsPerToken))
		if cut <= prev || cut >= length {
			continue
		}
		pieces = append(pieces, s[offsets[prev]:offsets[cut]])
		prev = cut
	}
	return append(pieces, s[offsets[prev]:])
}

// CountWords returns the number of whitespace-delimited words in the
// trimmed text.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}
