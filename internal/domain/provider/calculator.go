package provider

// CostCalculator prices token counts for the models of a catalog.
// It holds no mutable state, so a single instance can be shared freely.
type CostCalculator struct {
	catalog *Catalog
}

// NewCostCalculator creates a calculator over catalog. A nil catalog means
// the built-in one.
func NewCostCalculator(catalog *Catalog) *CostCalculator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &CostCalculator{catalog: catalog}
}

// Calculate computes the cost breakdown for tokenCount tokens on modelID.
// Returns an error if the model is not in the catalog.
func (c *CostCalculator) Calculate(modelID string, tokenCount int) (CostBreakdown, error) {
	model, err := c.catalog.Lookup(modelID)
	if err != nil {
		return CostBreakdown{}, err
	}
	return CalculateCost(model, tokenCount), nil
}

// CalculateOrZero computes the cost breakdown, returning zero cost if the
// model is unknown. The token count is still recorded.
func (c *CostCalculator) CalculateOrZero(modelID string, tokenCount int) CostBreakdown {
	breakdown, err := c.Calculate(modelID, tokenCount)
	if err != nil {
		return CostBreakdown{Tokens: tokenCount, Model: modelID}
	}
	return breakdown
}

// CheapestModel returns the model ID with the lowest combined rate.
// Ties keep the earlier model in catalog order. Returns "" for an empty catalog.
func (c *CostCalculator) CheapestModel() string {
	var cheapestID string
	cheapestRate := -1.0

	for _, m := range c.catalog.All() {
		combined := m.InputCostPer1K + m.OutputCostPer1K
		if cheapestRate < 0 || combined < cheapestRate {
			cheapestRate = combined
			cheapestID = m.ID
		}
	}

	return cheapestID
}

// ModelsByProvider returns the IDs of a provider's models in catalog order.
func (c *CostCalculator) ModelsByProvider(provider string) []string {
	var ids []string
	for _, m := range c.catalog.ByProvider(provider) {
		ids = append(ids, m.ID)
	}
	return ids
}
