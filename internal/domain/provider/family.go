package provider

import (
	"fmt"
	"strings"
)

// Family groups models that share a tokenization strategy and calibration.
type Family string

const (
	FamilyGPT     Family = "gpt"
	FamilyClaude  Family = "claude"
	FamilyGemini  Family = "gemini"
	FamilyLlama   Family = "llama"
	FamilyMistral Family = "mistral"
	FamilyOther   Family = "other"
)

// Strategy selects how a family's text is segmented into tokens.
type Strategy string

const (
	// StrategyBPE delegates to the external byte-pair encoder.
	StrategyBPE Strategy = "bpe"
	// StrategyHeuristic uses the whitespace-run segmenter.
	StrategyHeuristic Strategy = "heuristic"
)

// FamilyProfile is the calibration data for one family. CharsPerToken is
// used directly by heuristic families and as the fallback for BPE ones.
type FamilyProfile struct {
	Family        Family   `json:"family"`
	Strategy      Strategy `json:"strategy"`
	CharsPerToken float64  `json:"chars_per_token"`
}

// familyProfiles is the calibration table, in display order.
var familyProfiles = []FamilyProfile{
	{Family: FamilyGPT, Strategy: StrategyBPE, CharsPerToken: 4.0},
	{Family: FamilyClaude, Strategy: StrategyHeuristic, CharsPerToken: 3.5},
	{Family: FamilyGemini, Strategy: StrategyHeuristic, CharsPerToken: 3.8},
	{Family: FamilyLlama, Strategy: StrategyHeuristic, CharsPerToken: 4.2},
	{Family: FamilyMistral, Strategy: StrategyHeuristic, CharsPerToken: 3.9},
	{Family: FamilyOther, Strategy: StrategyHeuristic, CharsPerToken: 4.0},
}

// String returns the string representation of the family.
func (f Family) String() string {
	return string(f)
}

// IsValid returns true if the family is a recognized value.
func (f Family) IsValid() bool {
	for _, p := range familyProfiles {
		if p.Family == f {
			return true
		}
	}
	return false
}

// ParseFamily parses a string into a Family.
// The parsing is case-insensitive.
func ParseFamily(s string) (Family, error) {
	family := Family(strings.ToLower(strings.TrimSpace(s)))
	if !family.IsValid() {
		return "", fmt.Errorf("invalid model family: %q", s)
	}
	return family, nil
}

// ProfileFor returns the profile for f. Unknown families get the "other"
// profile so callers never see a zero calibration constant.
func ProfileFor(f Family) FamilyProfile {
	for _, p := range familyProfiles {
		if p.Family == f {
			return p
		}
	}
	return familyProfiles[len(familyProfiles)-1]
}

// Families returns every family profile in display order.
func Families() []FamilyProfile {
	out := make([]FamilyProfile, len(familyProfiles))
	copy(out, familyProfiles)
	return out
}
