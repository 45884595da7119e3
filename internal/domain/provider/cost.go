package provider

// CostBreakdown represents the cost of pushing a token count through a model,
// priced once as input and once as output.
type CostBreakdown struct {
	InputCost  float64 `json:"input_cost"`  // tokens priced at the input rate
	OutputCost float64 `json:"output_cost"` // tokens priced at the output rate
	TotalCost  float64 `json:"total_cost"`  // InputCost + OutputCost
	Tokens     int     `json:"tokens"`
	Model      string  `json:"model"`
	Provider   string  `json:"provider"`
}

// CalculateCost prices tokenCount against the model's per-1000-token rates.
// No rounding is applied. Negative counts are treated as zero.
func CalculateCost(model Model, tokenCount int) CostBreakdown {
	if tokenCount < 0 {
		tokenCount = 0
	}

	inputCost := (float64(tokenCount) / 1000.0) * model.InputCostPer1K
	outputCost := (float64(tokenCount) / 1000.0) * model.OutputCostPer1K

	return CostBreakdown{
		InputCost:  inputCost,
		OutputCost: outputCost,
		TotalCost:  inputCost + outputCost,
		Tokens:     tokenCount,
		Model:      model.ID,
		Provider:   model.Provider,
	}
}
