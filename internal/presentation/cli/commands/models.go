package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/domain/provider"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// ModelInfo represents a catalog model for display.
type ModelInfo struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	Family          string  `json:"family"`
	Strategy        string  `json:"strategy"`
	InputCostPer1K  float64 `json:"input_price"`
	OutputCostPer1K float64 `json:"output_price"`
	ContextWindow   int     `json:"context_window"`
}

// ModelListOutput represents the output for the models command.
type ModelListOutput struct {
	Models []ModelInfo `json:"models"`
	Count  int         `json:"count"`
}

// NewModelsCmd creates the models command for listing the catalog.
func NewModelsCmd() *cobra.Command {
	var providerName, family string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog",
		Long: `Display every model tokenlens can price.

The strategy column shows whether counts for the model come from a BPE
vocabulary (exact) or from the calibrated heuristic (estimate).`,
		Example: `  # All models
  tl models

  # Only Anthropic models, as JSON
  tl models --provider Anthropic -o json

  # Only the llama family
  tl models --family llama`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(providerName, family)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "only list models of this provider")
	cmd.Flags().StringVar(&family, "family", "", "only list models of this family: gpt, claude, gemini, llama, mistral, other")

	return cmd
}

func runModels(providerName, family string) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	models, err := svc.Models(providerName, family)
	if err != nil {
		return err
	}

	infos := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		infos = append(infos, ModelInfo{
			ID:              m.ID,
			Name:            m.Name,
			Provider:        m.Provider,
			Family:          string(m.Family),
			Strategy:        string(svc.Estimator().Strategy(m)),
			InputCostPer1K:  m.InputCostPer1K,
			OutputCostPer1K: m.OutputCostPer1K,
			ContextWindow:   m.ContextWindow,
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(ModelListOutput{Models: infos, Count: len(infos)})
	}
	return renderModelsTable(formatter, infos)
}

// renderModelsTable renders models as a formatted table.
func renderModelsTable(formatter *output.Formatter, models []ModelInfo) error {
	if len(models) == 0 {
		formatter.Info("No models match the given filters")
		formatter.Println("Run 'tl models' to see the full catalog.")
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "ID", Align: output.AlignLeft},
			{Header: "PROVIDER", Align: output.AlignLeft},
			{Header: "FAMILY", Align: output.AlignLeft},
			{Header: "STRATEGY", Align: output.AlignLeft},
			{Header: "INPUT $/1K", Align: output.AlignRight},
			{Header: "OUTPUT $/1K", Align: output.AlignRight},
			{Header: "CONTEXT", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(models)),
	}

	for _, m := range models {
		tableData.Rows = append(tableData.Rows, []string{
			m.ID,
			m.Provider,
			m.Family,
			m.Strategy,
			formatRate(m.InputCostPer1K),
			formatRate(m.OutputCostPer1K),
			strconv.Itoa(m.ContextWindow),
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Model Catalog"))
	formatter.Println("")

	if err := formatter.Table(tableData); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d model(s)", len(models))))
	return nil
}

// formatRate formats a per-1K-token price.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatCost formats a dollar amount with enough precision for small texts.
func formatCost(v float64) string {
	return fmt.Sprintf("$%.6f", v)
}

// strategyLabel describes how a count was produced.
func strategyLabel(s provider.Strategy, degraded bool) string {
	if degraded {
		return string(provider.StrategyHeuristic) + " (fallback)"
	}
	return string(s)
}
