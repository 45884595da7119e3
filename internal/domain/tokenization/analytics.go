package tokenization

import (
	"math"
	"unicode"
	"unicode/utf8"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// SemanticType is a coarse classification of a token's contents.
type SemanticType string

const (
	SemanticWord        SemanticType = "word"
	SemanticNumber      SemanticType = "number"
	SemanticPunctuation SemanticType = "punctuation"
	SemanticWhitespace  SemanticType = "whitespace"
	SemanticSpecial     SemanticType = "special"
)

// TokenInfo describes one token of a detailed result. Start and End are
// rune offsets into the reconstructed text.
type TokenInfo struct {
	Token        string       `json:"token"`
	ID           int          `json:"id"`
	Start        int          `json:"start"`
	End          int          `json:"end"`
	Length       int          `json:"length"`
	Frequency    int          `json:"frequency"`
	SemanticType SemanticType `json:"semantic_type"`
}

// TokenAnalytics summarizes a token sequence. Ties on length or frequency
// resolve to the token that appears first.
type TokenAnalytics struct {
	TotalTokens          int                  `json:"total_tokens"`
	UniqueTokens         int                  `json:"unique_tokens"`
	AverageTokenLength   float64              `json:"average_token_length"`
	LongestToken         string               `json:"longest_token"`
	ShortestToken        string               `json:"shortest_token"`
	MostFrequentToken    string               `json:"most_frequent_token"`
	LengthDistribution   map[int]int          `json:"length_distribution"`
	SemanticDistribution map[SemanticType]int `json:"semantic_distribution"`
}

// Classify returns the semantic type of a token.
func Classify(token string) SemanticType {
	if token == "" {
		return SemanticSpecial
	}

	allSpace, allLetters, allDigits, allPunct := true, true, true, true
	for _, r := range token {
		space := unicode.IsSpace(r)
		letter := r < utf8.RuneSelf && (('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'))
		digit := '0' <= r && r <= '9'
		wordChar := letter || digit || r == '_'

		allSpace = allSpace && space
		allLetters = allLetters && letter
		allDigits = allDigits && digit
		allPunct = allPunct && !wordChar && !space
	}

	switch {
	case allSpace:
		return SemanticWhitespace
	case allLetters:
		return SemanticWord
	case allDigits:
		return SemanticNumber
	case allPunct:
		return SemanticPunctuation
	default:
		return SemanticSpecial
	}
}

// TokenInfos expands a detailed result into per-token information.
func TokenInfos(result DetailedTokenizationResult) []TokenInfo {
	freq := make(map[string]int, len(result.TokenStrings))
	for _, tok := range result.TokenStrings {
		freq[tok]++
	}

	infos := make([]TokenInfo, 0, len(result.TokenStrings))
	offset := 0
	for i, tok := range result.TokenStrings {
		length := utf8.RuneCountInString(tok)
		id := i
		if i < len(result.Tokens) {
			id = result.Tokens[i]
		}
		infos = append(infos, TokenInfo{
			Token:        tok,
			ID:           id,
			Start:        offset,
			End:          offset + length,
			Length:       length,
			Frequency:    freq[tok],
			SemanticType: Classify(tok),
		})
		offset += length
	}
	return infos
}

// Analyze computes aggregate statistics over token infos.
func Analyze(infos []TokenInfo) TokenAnalytics {
	a := TokenAnalytics{
		TotalTokens:          len(infos),
		LengthDistribution:   make(map[int]int),
		SemanticDistribution: make(map[SemanticType]int),
	}
	if len(infos) == 0 {
		return a
	}

	counts := make(map[string]int)
	var order []string
	totalLength := 0
	longest, shortest := infos[0], infos[0]

	for _, info := range infos {
		if counts[info.Token] == 0 {
			order = append(order, info.Token)
		}
		counts[info.Token]++
		totalLength += info.Length
		a.LengthDistribution[info.Length]++
		a.SemanticDistribution[info.SemanticType]++

		if info.Length > longest.Length {
			longest = info
		}
		if info.Length < shortest.Length {
			shortest = info
		}
	}

	best := 0
	for _, tok := range order {
		if counts[tok] > best {
			best = counts[tok]
			a.MostFrequentToken = tok
		}
	}

	a.UniqueTokens = len(order)
	a.AverageTokenLength = float64(totalLength) / float64(len(infos))
	a.LongestToken = longest.Token
	a.ShortestToken = shortest.Token
	return a
}

// Comparison summarizes detailed results for the same text across models.
type Comparison struct {
	Results            []DetailedTokenizationResult `json:"results"`
	BestEfficiency     DetailedTokenizationResult   `json:"best_efficiency"`
	WorstEfficiency    DetailedTokenizationResult   `json:"worst_efficiency"`
	AverageTokenCount  float64                      `json:"average_token_count"`
	TokenCountVariance float64                      `json:"token_count_variance"`
}

// Compare ranks results by efficiency. Ties keep the earliest result.
// The variance is the population variance of the token counts.
func Compare(results []DetailedTokenizationResult) (Comparison, error) {
	if len(results) == 0 {
		return Comparison{}, domainErrors.ErrEmptyResultSet
	}

	c := Comparison{Results: results, BestEfficiency: results[0], WorstEfficiency: results[0]}
	sum := 0.0
	for _, r := range results {
		if r.Efficiency > c.BestEfficiency.Efficiency {
			c.BestEfficiency = r
		}
		if r.Efficiency < c.WorstEfficiency.Efficiency {
			c.WorstEfficiency = r
		}
		sum += float64(r.TokenCount)
	}

	n := float64(len(results))
	c.AverageTokenCount = sum / n

	squares := 0.0
	for _, r := range results {
		squares += math.Pow(float64(r.TokenCount)-c.AverageTokenCount, 2)
	}
	c.TokenCountVariance = squares / n
	return c, nil
}
