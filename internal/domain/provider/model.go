// Package provider contains domain types for the model catalog, pricing and
// tokenization capabilities of LLM providers.
package provider

import (
	"fmt"
	"strings"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// Provider names as displayed to users.
const (
	ProviderOpenAI    = "OpenAI"
	ProviderAnthropic = "Anthropic"
	ProviderGoogle    = "Google"
	ProviderMeta      = "Meta"
	ProviderMistral   = "Mistral"
	ProviderCohere    = "Cohere"
)

// Model describes one priced LLM. Prices are in USD per 1000 tokens.
type Model struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Provider        string  `json:"provider" yaml:"provider"`
	Family          Family  `json:"family" yaml:"family"`
	InputCostPer1K  float64 `json:"input_price" yaml:"input_price"`
	OutputCostPer1K float64 `json:"output_price" yaml:"output_price"`
	ContextWindow   int     `json:"context_window" yaml:"context_window"`
}

// NewModel creates a new Model with the required fields.
func NewModel(id, name, provider string, family Family) *Model {
	return &Model{
		ID:       id,
		Name:     name,
		Provider: provider,
		Family:   family,
	}
}

// WithContextWindow sets the context window size for the model.
// Returns the model for fluent chaining.
func (m *Model) WithContextWindow(size int) *Model {
	m.ContextWindow = size
	return m
}

// WithCosts sets the input and output token costs per 1000 tokens.
// Returns the model for fluent chaining.
func (m *Model) WithCosts(inputCost, outputCost float64) *Model {
	m.InputCostPer1K = inputCost
	m.OutputCostPer1K = outputCost
	return m
}

// Profile returns the tokenization profile of the model's family.
func (m Model) Profile() FamilyProfile {
	return ProfileFor(m.Family)
}

// FitsContext reports whether tokenCount fits in the model's context window.
func (m Model) FitsContext(tokenCount int) bool {
	return tokenCount <= m.ContextWindow
}

// Validate checks the descriptor invariants.
func (m Model) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return domainErrors.ErrModelIDRequired
	}
	if !m.Family.IsValid() {
		return fmt.Errorf("model %q: %w: %q", m.ID, domainErrors.ErrUnknownFamily, m.Family)
	}
	if m.InputCostPer1K < 0 || m.OutputCostPer1K < 0 {
		return fmt.Errorf("model %q: %w", m.ID, domainErrors.ErrNegativePrice)
	}
	if m.ContextWindow <= 0 {
		return fmt.Errorf("model %q: %w", m.ID, domainErrors.ErrInvalidContext)
	}
	return nil
}
