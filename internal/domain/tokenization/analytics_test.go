package tokenization

import (
	"errors"
	"maps"
	"testing"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  SemanticType
	}{
		{"hello", SemanticWord},
		{"Go", SemanticWord},
		{"2024", SemanticNumber},
		{"...", SemanticPunctuation},
		{"!?", SemanticPunctuation},
		{" ", SemanticWhitespace},
		{"\n\t", SemanticWhitespace},
		{"abc123", SemanticSpecial},
		{"héllo", SemanticSpecial},
		{"", SemanticSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.token, got, tt.want)
			}
		})
	}
}

func TestTokenInfos(t *testing.T) {
	result := DetailedTokenizationResult{
		Tokens:       []int{7, 3, 7},
		TokenStrings: []string{"ab", "é", "ab"},
	}

	infos := TokenInfos(result)

	if len(infos) != 3 {
		t.Fatalf("expected 3 infos, got %d", len(infos))
	}
	want := TokenInfo{Token: "ab", ID: 7, Start: 0, End: 2, Length: 2, Frequency: 2, SemanticType: SemanticWord}
	if infos[0] != want {
		t.Errorf("expected %+v, got %+v", want, infos[0])
	}
	// Offsets count runes, not bytes.
	if infos[1].Start != 2 || infos[1].End != 3 {
		t.Errorf("expected é at [2,3), got [%d,%d)", infos[1].Start, infos[1].End)
	}
	if infos[2].Start != 3 || infos[2].End != 5 {
		t.Errorf("expected ab at [3,5), got [%d,%d)", infos[2].Start, infos[2].End)
	}
}

func TestAnalyze(t *testing.T) {
	infos := TokenInfos(DetailedTokenizationResult{
		Tokens:       []int{0, 1, 2, 3, 4, 5},
		TokenStrings: []string{"the", " ", "cat", " ", "the", "!"},
	})

	a := Analyze(infos)

	if a.TotalTokens != 6 || a.UniqueTokens != 4 {
		t.Errorf("expected 6 tokens, 4 unique, got %d, %d", a.TotalTokens, a.UniqueTokens)
	}
	if !approxEqual(a.AverageTokenLength, 2.0, 1e-9) {
		t.Errorf("expected average length 2, got %v", a.AverageTokenLength)
	}
	// Ties resolve to the first token reaching the extreme.
	if a.LongestToken != "the" || a.ShortestToken != " " || a.MostFrequentToken != "the" {
		t.Errorf("unexpected extremes: longest=%q shortest=%q most=%q", a.LongestToken, a.ShortestToken, a.MostFrequentToken)
	}
	if want := map[int]int{3: 3, 1: 3}; !maps.Equal(a.LengthDistribution, want) {
		t.Errorf("expected length distribution %v, got %v", want, a.LengthDistribution)
	}
	want := map[SemanticType]int{SemanticWord: 3, SemanticWhitespace: 2, SemanticPunctuation: 1}
	for typ, n := range want {
		if got := a.SemanticDistribution[typ]; got != n {
			t.Errorf("semantic %s: expected %d, got %d", typ, n, got)
		}
	}
}

func TestAnalyze_Empty(t *testing.T) {
	a := Analyze(nil)

	if a.TotalTokens != 0 || a.AverageTokenLength != 0 {
		t.Errorf("expected zero analytics, got %+v", a)
	}
	if a.LongestToken != "" || len(a.LengthDistribution) != 0 {
		t.Errorf("expected empty extremes, got %+v", a)
	}
}

func TestCompare(t *testing.T) {
	mk := func(id string, tokens int, eff float64) DetailedTokenizationResult {
		return DetailedTokenizationResult{
			TokenizationResult: TokenizationResult{ModelID: id, TokenCount: tokens},
			Efficiency:         eff,
		}
	}
	results := []DetailedTokenizationResult{mk("a", 2, 4.0), mk("b", 4, 2.0), mk("c", 6, 4.0)}

	c, err := Compare(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.BestEfficiency.ModelID != "a" {
		t.Errorf("ties keep the earliest result: got %s", c.BestEfficiency.ModelID)
	}
	if c.WorstEfficiency.ModelID != "b" {
		t.Errorf("expected worst b, got %s", c.WorstEfficiency.ModelID)
	}
	if !approxEqual(c.AverageTokenCount, 4.0, 1e-9) {
		t.Errorf("expected average 4, got %v", c.AverageTokenCount)
	}
	if !approxEqual(c.TokenCountVariance, 8.0/3.0, 1e-9) {
		t.Errorf("expected population variance 8/3, got %v", c.TokenCountVariance)
	}
	if len(c.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(c.Results))
	}
}

func TestCompare_Empty(t *testing.T) {
	if _, err := Compare(nil); !errors.Is(err, domainErrors.ErrEmptyResultSet) {
		t.Errorf("expected ErrEmptyResultSet, got %v", err)
	}
}
