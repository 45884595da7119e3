package tokenization

import (
	"strings"
	"time"

	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
)

// TokenizationResult is the token footprint and cost of one text on one model.
type TokenizationResult struct {
	ModelID        string        `json:"model_id"`
	TokenCount     int           `json:"token_count"`
	CharacterCount int           `json:"character_count"`
	WordCount      int           `json:"word_count"`
	InputCost      float64       `json:"input_cost"`
	OutputCost     float64       `json:"output_cost"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// TotalCost returns InputCost + OutputCost.
func (r TokenizationResult) TotalCost() float64 {
	return r.InputCost + r.OutputCost
}

// DetailedTokenizationResult adds the token sequence to a TokenizationResult.
type DetailedTokenizationResult struct {
	TokenizationResult

	Tokens           []int             `json:"tokens"`
	TokenStrings     []string          `json:"token_strings"`
	Efficiency       float64           `json:"efficiency"`        // characters per token
	CompressionRatio float64           `json:"compression_ratio"` // tokens per character
	Strategy         provider.Strategy `json:"strategy"`

	// Exact is true when TokenStrings concatenate back to the input.
	// Heuristic results are always exact; BPE results are best-effort.
	Exact bool `json:"exact"`

	// Degraded is true when a BPE-backed model fell back to the heuristic.
	Degraded bool `json:"degraded"`

	// Fallback is why the result degraded, nil otherwise.
	Fallback error `json:"-"`
}

// Reconstruct concatenates the token strings in order.
func (r DetailedTokenizationResult) Reconstruct() string {
	return strings.Join(r.TokenStrings, "")
}

// Efficiency returns characters per token, 0 when there are no tokens.
func Efficiency(characters, tokens int) float64 {
	if tokens == 0 {
		return 0
	}
	return float64(characters) / float64(tokens)
}

// CompressionRatio returns tokens per character, 0 for empty text.
func CompressionRatio(characters, tokens int) float64 {
	if characters == 0 {
		return 0
	}
	return float64(tokens) / float64(characters)
}
