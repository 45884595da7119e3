// Package textstats computes character-level statistics for a text: counts,
// Shannon entropy, frequency tables and per-character code point details.
//
// A character is a Unicode code point. All functions are pure.
package textstats

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultTopN is the number of characters reported by Compute when the
// caller does not ask for a specific count.
const DefaultTopN = 10

var (
	sentenceBreak  = regexp.MustCompile(`[.!?]+`)
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

// CharacterCount is one row of the top-N frequency table.
// Char is the display glyph, so CodePoint tells apart characters that
// render alike, such as U+0000 and U+2400.
type CharacterCount struct {
	Char       string  `json:"char"`
	CodePoint  rune    `json:"code_point"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TextStatistics holds aggregate counts for a text.
type TextStatistics struct {
	TotalCharacters    int              `json:"total_characters"`
	UniqueCharacters   int              `json:"unique_characters"`
	Words              int              `json:"words"`
	Lines              int              `json:"lines"`
	Sentences          int              `json:"sentences"`
	Paragraphs         int              `json:"paragraphs"`
	Bytes              int              `json:"bytes"`
	Entropy            float64          `json:"entropy"`
	CharacterFrequency map[string]int   `json:"character_frequency"`
	TopCharacters      []CharacterCount `json:"top_characters"`
}

// frequencies counts each rune and records the order of first appearance.
func frequencies(text string) (map[rune]int, []rune) {
	counts := make(map[rune]int)
	var order []rune
	for _, r := range text {
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}
	return counts, order
}

// rankByFrequency returns order sorted by descending count. The sort is
// stable, so equal counts keep first-appearance order.
func rankByFrequency(counts map[rune]int, order []rune) []rune {
	ranked := make([]rune, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}

// Compute returns the statistics of text with the topN most frequent
// characters. topN <= 0 selects DefaultTopN. Frequency ties are broken by
// first appearance in text. Empty text yields zero counts except Lines,
// which is 1.
func Compute(text string, topN int) TextStatistics {
	if topN <= 0 {
		topN = DefaultTopN
	}

	counts, order := frequencies(text)
	total := utf8.RuneCountInString(text)

	stats := TextStatistics{
		TotalCharacters:    total,
		UniqueCharacters:   len(order),
		Words:              len(strings.Fields(text)),
		Lines:              countLines(text),
		Sentences:          countNonBlank(sentenceBreak.Split(text, -1)),
		Paragraphs:         countNonBlank(paragraphBreak.Split(text, -1)),
		Bytes:              len(text),
		Entropy:            Entropy(text),
		CharacterFrequency: make(map[string]int, len(order)),
		TopCharacters:      []CharacterCount{},
	}

	for r, n := range counts {
		stats.CharacterFrequency[string(r)] = n
	}

	for _, r := range rankByFrequency(counts, order) {
		if len(stats.TopCharacters) == topN {
			break
		}
		stats.TopCharacters = append(stats.TopCharacters, CharacterCount{
			Char:       DisplayGlyph(r),
			CodePoint:  r,
			Count:      counts[r],
			Percentage: float64(counts[r]) / float64(total) * 100,
		})
	}
	return stats
}

// Entropy returns the Shannon entropy of the character distribution in
// bits. It is 0 for empty text and for a single repeated character.
func Entropy(text string) float64 {
	counts, order := frequencies(text)
	if len(order) <= 1 {
		return 0
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	h := 0.0
	for _, r := range order {
		p := float64(counts[r]) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// countLines returns the number of newline-delimited segments. A text with
// no newline, including the empty text, is one line.
func countLines(text string) int {
	return strings.Count(text, "\n") + 1
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
