package provider

import "testing"

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name       string
		model      Model
		tokens     int
		wantInput  float64
		wantOutput float64
	}{
		{
			name:       "claude-3-opus pricing",
			model:      *NewModel("claude-3-opus", "Claude 3 Opus", ProviderAnthropic, FamilyClaude).WithCosts(0.015, 0.075),
			tokens:     2000,
			wantInput:  0.03, // 2000/1000 * 0.015
			wantOutput: 0.15, // 2000/1000 * 0.075
		},
		{
			name:       "sub-thousand token counts are not rounded",
			model:      *NewModel("gpt-4o", "GPT-4o", ProviderOpenAI, FamilyGPT).WithCosts(0.005, 0.015),
			tokens:     3,
			wantInput:  0.000015,
			wantOutput: 0.000045,
		},
		{
			name:       "free model",
			model:      *NewModel("local", "Local", ProviderMeta, FamilyLlama).WithCosts(0, 0),
			tokens:     5000,
			wantInput:  0,
			wantOutput: 0,
		},
		{
			name:       "zero tokens",
			model:      *NewModel("gpt-4", "GPT-4", ProviderOpenAI, FamilyGPT).WithCosts(0.03, 0.06),
			tokens:     0,
			wantInput:  0,
			wantOutput: 0,
		},
		{
			name:       "negative tokens clamp to zero",
			model:      *NewModel("gpt-4", "GPT-4", ProviderOpenAI, FamilyGPT).WithCosts(0.03, 0.06),
			tokens:     -10,
			wantInput:  0,
			wantOutput: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCost(tt.model, tt.tokens)

			if !floatEquals(got.InputCost, tt.wantInput) {
				t.Errorf("InputCost = %v, want %v", got.InputCost, tt.wantInput)
			}
			if !floatEquals(got.OutputCost, tt.wantOutput) {
				t.Errorf("OutputCost = %v, want %v", got.OutputCost, tt.wantOutput)
			}
			if !floatEquals(got.TotalCost, tt.wantInput+tt.wantOutput) {
				t.Errorf("TotalCost = %v, want %v", got.TotalCost, tt.wantInput+tt.wantOutput)
			}
			if got.InputCost < 0 || got.OutputCost < 0 {
				t.Error("costs must be non-negative")
			}
			if got.Model != tt.model.ID || got.Provider != tt.model.Provider {
				t.Errorf("breakdown not attributed to model: %+v", got)
			}
		})
	}
}

func TestCalculateCost_MatchesFormulaForCatalog(t *testing.T) {
	for _, m := range DefaultCatalog().All() {
		for _, tokens := range []int{0, 1, 999, 1000, 123456} {
			got := CalculateCost(m, tokens)
			wantIn := float64(tokens) / 1000 * m.InputCostPer1K
			wantOut := float64(tokens) / 1000 * m.OutputCostPer1K
			if got.InputCost != wantIn || got.OutputCost != wantOut {
				t.Errorf("%s/%d: got %v/%v, want %v/%v", m.ID, tokens, got.InputCost, got.OutputCost, wantIn, wantOut)
			}
		}
	}
}
