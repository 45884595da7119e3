package provider

import (
	"fmt"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// Catalog is an immutable, ordered registry of model descriptors.
// It is safe for concurrent use because nothing mutates it after construction.
type Catalog struct {
	models []Model
	index  map[string]int
}

// builtinModels is the default pricing table.
// Prices are per 1000 tokens in USD.
//
//	rate_per_1k = price_per_million / 1000
var builtinModels = []Model{
	// OpenAI
	{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, Family: FamilyGPT, InputCostPer1K: 0.005, OutputCostPer1K: 0.015, ContextWindow: 128000},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Provider: ProviderOpenAI, Family: FamilyGPT, InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006, ContextWindow: 128000},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Provider: ProviderOpenAI, Family: FamilyGPT, InputCostPer1K: 0.01, OutputCostPer1K: 0.03, ContextWindow: 128000},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: ProviderOpenAI, Family: FamilyGPT, InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015, ContextWindow: 16385},

	// Anthropic
	{ID: "claude-3-5-sonnet", Name: "Claude 3.5 Sonnet", Provider: ProviderAnthropic, Family: FamilyClaude, InputCostPer1K: 0.003, OutputCostPer1K: 0.015, ContextWindow: 200000},
	{ID: "claude-3-opus", Name: "Claude 3 Opus", Provider: ProviderAnthropic, Family: FamilyClaude, InputCostPer1K: 0.015, OutputCostPer1K: 0.075, ContextWindow: 200000},
	{ID: "claude-3-haiku", Name: "Claude 3 Haiku", Provider: ProviderAnthropic, Family: FamilyClaude, InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125, ContextWindow: 200000},

	// Google
	{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: ProviderGoogle, Family: FamilyGemini, InputCostPer1K: 0.0035, OutputCostPer1K: 0.0105, ContextWindow: 2000000},
	{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Provider: ProviderGoogle, Family: FamilyGemini, InputCostPer1K: 0.000075, OutputCostPer1K: 0.0003, ContextWindow: 1000000},
	{ID: "gemini-1.0-pro", Name: "Gemini 1.0 Pro", Provider: ProviderGoogle, Family: FamilyGemini, InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015, ContextWindow: 32760},

	// Meta
	{ID: "llama-3.1-405b", Name: "LLaMA 3.1 405B", Provider: ProviderMeta, Family: FamilyLlama, InputCostPer1K: 0.0016, OutputCostPer1K: 0.0016, ContextWindow: 32768},
	{ID: "llama-3.1-70b", Name: "LLaMA 3.1 70B", Provider: ProviderMeta, Family: FamilyLlama, InputCostPer1K: 0.00088, OutputCostPer1K: 0.00088, ContextWindow: 32768},

	// Mistral
	{ID: "mistral-large", Name: "Mistral Large", Provider: ProviderMistral, Family: FamilyMistral, InputCostPer1K: 0.008, OutputCostPer1K: 0.024, ContextWindow: 32768},
	{ID: "mistral-medium", Name: "Mistral Medium", Provider: ProviderMistral, Family: FamilyMistral, InputCostPer1K: 0.0027, OutputCostPer1K: 0.0081, ContextWindow: 32768},

	// Others
	{ID: "command-r-plus", Name: "Command R+", Provider: ProviderCohere, Family: FamilyOther, InputCostPer1K: 0.003, OutputCostPer1K: 0.015, ContextWindow: 128000},
}

// defaultCatalog is built once at process start.
var defaultCatalog = mustCatalog(builtinModels)

func mustCatalog(models []Model) *Catalog {
	c, err := NewCatalog(models)
	if err != nil {
		panic(fmt.Sprintf("provider: invalid builtin catalog: %v", err))
	}
	return c
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog validates models and freezes a copy of them in the given order.
func NewCatalog(models []Model) (*Catalog, error) {
	c := &Catalog{
		models: make([]Model, 0, len(models)),
		index:  make(map[string]int, len(models)),
	}
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.index[m.ID]; exists {
			return nil, fmt.Errorf("%w: %q", domainErrors.ErrDuplicateModel, m.ID)
		}
		c.index[m.ID] = len(c.models)
		c.models = append(c.models, m)
	}
	return c, nil
}

// All returns every model in catalog order.
func (c *Catalog) All() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.models)
}

// Get returns the model with the given ID. ok is false when it is absent.
func (c *Catalog) Get(id string) (Model, bool) {
	i, ok := c.index[id]
	if !ok {
		return Model{}, false
	}
	return c.models[i], true
}

// Lookup is Get with an error for callers that propagate failures.
func (c *Catalog) Lookup(id string) (Model, error) {
	m, ok := c.Get(id)
	if !ok {
		return Model{}, domainErrors.NotFound("model", id, domainErrors.ErrModelNotFound)
	}
	return m, nil
}

// ByProvider returns the models of one provider in catalog order.
func (c *Catalog) ByProvider(provider string) []Model {
	return c.filter(func(m Model) bool { return m.Provider == provider })
}

// ByFamily returns the models of one family in catalog order.
func (c *Catalog) ByFamily(family Family) []Model {
	return c.filter(func(m Model) bool { return m.Family == family })
}

// Providers returns the distinct provider names in first-appearance order.
func (c *Catalog) Providers() []string {
	seen := make(map[string]bool)
	var providers []string
	for _, m := range c.models {
		if !seen[m.Provider] {
			seen[m.Provider] = true
			providers = append(providers, m.Provider)
		}
	}
	return providers
}

func (c *Catalog) filter(keep func(Model) bool) []Model {
	var out []Model
	for _, m := range c.models {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
