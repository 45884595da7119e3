package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/domain/analytics"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// CompareOutput represents the output for the compare command.
type CompareOutput struct {
	Report     analytics.Report          `json:"report"`
	Efficiency *tokenization.Comparison `json:"efficiency,omitempty"`
}

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	var (
		file       string
		sel        selectionFlags
		efficiency bool
	)

	cmd := &cobra.Command{
		Use:   "compare [text]",
		Short: "Compare cost and token counts across models",
		Long: `Tokenize a text on the selected models and report which model is
cheapest for input, output and overall, which produces the most and the
fewest tokens, and how each provider averages out.

With --efficiency the token sequences are also compared for characters
per token, the mean token count and its variance.`,
		Example: `  tl compare "Summarize this paragraph"
  tl compare -f prompt.txt --provider Anthropic --efficiency
  tl compare -m gpt-4o -m claude-3-5-sonnet -m gemini-1.5-pro "hello"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runCompare(text, sel, efficiency)
		},
	}

	addFileFlag(cmd, &file)
	addSelectionFlags(cmd, &sel, true)
	cmd.Flags().BoolVar(&efficiency, "efficiency", false, "also compare tokenization efficiency")

	return cmd
}

func runCompare(text string, flags selectionFlags, efficiency bool) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()
	ctx := runContext()

	sel, err := flags.selection(svc)
	if err != nil {
		return err
	}

	report, err := svc.Report(ctx, text, sel)
	if err != nil {
		return err
	}
	out := CompareOutput{Report: report}

	if efficiency {
		comparison, err := svc.Compare(ctx, text, comparedIDs(report))
		if err != nil {
			return err
		}
		out.Efficiency = &comparison
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}
	return renderCompare(formatter, out)
}

// comparedIDs lists the models of a report in report order.
func comparedIDs(report analytics.Report) []string {
	ids := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		ids = append(ids, e.Model.ID)
	}
	return ids
}

func renderCompare(formatter *output.Formatter, out CompareOutput) error {
	report := out.Report

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "MODEL", Align: output.AlignLeft},
			{Header: "PROVIDER", Align: output.AlignLeft},
			{Header: "TOKENS", Align: output.AlignRight},
			{Header: "INPUT", Align: output.AlignRight},
			{Header: "OUTPUT", Align: output.AlignRight},
			{Header: "TOTAL", Align: output.AlignRight},
			{Header: "EFFICIENCY", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(report.Entries)),
	}
	for _, e := range report.Entries {
		tableData.Rows = append(tableData.Rows, []string{
			e.Model.ID,
			e.Model.Provider,
			strconv.Itoa(e.Result.TokenCount),
			formatCost(e.Result.InputCost),
			formatCost(e.Result.OutputCost),
			formatCost(e.TotalCost),
			fmt.Sprintf("%.1f%%", e.RelativeEfficiency),
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Model Comparison"))
	formatter.Println("")
	if err := formatter.Table(tableData); err != nil {
		return err
	}

	formatter.Println("")
	formatter.SubHeader("Summary")
	formatter.Item("Cheapest input", entryLabel(report.CheapestInput, report.CheapestInput.Result.InputCost))
	formatter.Item("Cheapest output", entryLabel(report.CheapestOutput, report.CheapestOutput.Result.OutputCost))
	formatter.Item("Cheapest overall", entryLabel(report.Cheapest, report.Cheapest.TotalCost()))
	formatter.Item("Most tokens", fmt.Sprintf("%s (%d)", report.MostTokens.Model.ID, report.MostTokens.Result.TokenCount))
	formatter.Item("Fewest tokens", fmt.Sprintf("%s (%d)", report.LeastTokens.Model.ID, report.LeastTokens.Result.TokenCount))
	formatter.Item("Mean cost", formatCost(report.MeanCost))
	formatter.Item("Cost range", formatCost(report.CostRange.Min)+" - "+formatCost(report.CostRange.Max))
	formatter.Item("Mean tokens", fmt.Sprintf("%.1f", report.MeanTokens))
	formatter.Item("Token spread", fmt.Sprintf("%.1f%%", report.TokenSpread*100))
	formatter.Println("")

	if err := renderProviderStats(formatter, report.ProviderStats); err != nil {
		return err
	}

	if out.Efficiency != nil {
		formatter.Println("")
		return renderEfficiency(formatter, *out.Efficiency)
	}
	return nil
}

func entryLabel(e analytics.Entry, cost float64) string {
	return fmt.Sprintf("%s (%s)", e.Model.ID, formatCost(cost))
}

func renderProviderStats(formatter *output.Formatter, stats []analytics.ProviderStats) error {
	formatter.SubHeader("By Provider")
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "PROVIDER", Align: output.AlignLeft},
			{Header: "MODELS", Align: output.AlignRight},
			{Header: "MEAN COST", Align: output.AlignRight},
			{Header: "MEAN TOKENS", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(stats)),
	}
	for _, p := range stats {
		tableData.Rows = append(tableData.Rows, []string{
			p.Provider,
			strconv.Itoa(p.Count),
			formatCost(p.MeanCost),
			fmt.Sprintf("%.1f", p.MeanTokens),
		})
	}
	return formatter.Table(tableData)
}

func renderEfficiency(formatter *output.Formatter, c tokenization.Comparison) error {
	formatter.SubHeader("Tokenization Efficiency")
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "MODEL", Align: output.AlignLeft},
			{Header: "STRATEGY", Align: output.AlignLeft},
			{Header: "TOKENS", Align: output.AlignRight},
			{Header: "CHARS/TOKEN", Align: output.AlignRight},
			{Header: "TOKENS/CHAR", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(c.Results)),
	}
	for _, r := range c.Results {
		tableData.Rows = append(tableData.Rows, []string{
			r.ModelID,
			strategyLabel(r.Strategy, r.Degraded),
			strconv.Itoa(r.TokenCount),
			fmt.Sprintf("%.2f", r.Efficiency),
			fmt.Sprintf("%.3f", r.CompressionRatio),
		})
	}
	if err := formatter.Table(tableData); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Item("Most efficient", fmt.Sprintf("%s (%.2f chars/token)", c.BestEfficiency.ModelID, c.BestEfficiency.Efficiency))
	formatter.Item("Least efficient", fmt.Sprintf("%s (%.2f chars/token)", c.WorstEfficiency.ModelID, c.WorstEfficiency.Efficiency))
	formatter.Item("Mean tokens", fmt.Sprintf("%.1f", c.AverageTokenCount))
	formatter.Item("Token variance", fmt.Sprintf("%.2f", c.TokenCountVariance))
	return nil
}

