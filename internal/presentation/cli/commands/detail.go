package commands

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// DefaultTokenLimit is how many tokens detail lists unless told otherwise.
const DefaultTokenLimit = 50

// semanticOrder is the display order of token classes.
var semanticOrder = []tokenization.SemanticType{
	tokenization.SemanticWord,
	tokenization.SemanticNumber,
	tokenization.SemanticPunctuation,
	tokenization.SemanticWhitespace,
	tokenization.SemanticSpecial,
}

// NewDetailCmd creates the detail command.
func NewDetailCmd() *cobra.Command {
	var (
		file    string
		modelID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "detail [text]",
		Short: "Show the token sequence of one model",
		Long: `Tokenize a text on one model and list its tokens with offsets,
token classes and length distribution.

Offsets are character (rune) positions in the input.`,
		Example: `  tl detail --model gpt-4o "Hello, world!"
  tl detail -m claude-3-haiku -f prompt.txt --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelID == "" {
				return domainErrors.NewError(domainErrors.CodeValidation, "--model is required", domainErrors.ErrModelIDRequired)
			}
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runDetail(text, modelID, limit)
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "model ID (see 'tl models')")
	cmd.Flags().IntVar(&limit, "limit", DefaultTokenLimit, "tokens to list in text output, 0 for all")

	return cmd
}

func runDetail(text, modelID string, limit int) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	report, err := svc.Detail(runContext(), text, modelID)
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(report)
	}
	return renderDetail(formatter, report, limit)
}

func renderDetail(formatter *output.Formatter, report *analysis.DetailReport, limit int) error {
	r := report.Result
	m := report.Model

	formatter.Header(fmt.Sprintf("Token Detail: %s", m.ID))
	formatter.Item("Provider", m.Provider)
	formatter.Item("Strategy", strategyLabel(r.Strategy, r.Degraded))
	if report.FallbackReason != "" {
		formatter.Item("Fallback reason", report.FallbackReason)
	}
	formatter.Item("Tokens", strconv.Itoa(r.TokenCount))
	formatter.Item("Characters", strconv.Itoa(r.CharacterCount))
	formatter.Item("Words", strconv.Itoa(r.WordCount))
	formatter.Item("Chars/token", fmt.Sprintf("%.2f", r.Efficiency))
	formatter.Item("Tokens/char", fmt.Sprintf("%.3f", r.CompressionRatio))
	formatter.Item("Input cost", formatCost(report.Cost.InputCost))
	formatter.Item("Output cost", formatCost(report.Cost.OutputCost))
	formatter.Item("Total cost", formatCost(report.Cost.TotalCost))
	formatter.Item("Context", contextLabel(r.TokenCount, m.ContextWindow, report.FitsContext))
	formatter.Item("Exact", strconv.FormatBool(r.Exact))
	formatter.Println("")

	if err := renderTokenTable(formatter, report.Tokens, limit); err != nil {
		return err
	}

	a := report.Analytics
	formatter.Println("")
	formatter.SubHeader("Token Analytics")
	formatter.Item("Unique tokens", strconv.Itoa(a.UniqueTokens))
	formatter.Item("Average length", fmt.Sprintf("%.2f", a.AverageTokenLength))
	formatter.Item("Longest", strconv.Quote(visible(a.LongestToken)))
	formatter.Item("Shortest", strconv.Quote(visible(a.ShortestToken)))
	formatter.Item("Most frequent", strconv.Quote(visible(a.MostFrequentToken)))
	formatter.Println("")

	if err := renderSemanticTable(formatter, a); err != nil {
		return err
	}
	formatter.Println("")
	return renderLengthDistribution(formatter, a)
}

func renderTokenTable(formatter *output.Formatter, infos []tokenization.TokenInfo, limit int) error {
	shown := infos
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "#", Align: output.AlignRight},
			{Header: "TOKEN", Align: output.AlignLeft},
			{Header: "ID", Align: output.AlignRight},
			{Header: "START", Align: output.AlignRight},
			{Header: "END", Align: output.AlignRight},
			{Header: "TYPE", Align: output.AlignLeft},
			{Header: "FREQ", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(shown)),
	}
	for i, info := range shown {
		tableData.Rows = append(tableData.Rows, []string{
			strconv.Itoa(i + 1),
			output.Truncate(visible(info.Token), 24),
			strconv.Itoa(info.ID),
			strconv.Itoa(info.Start),
			strconv.Itoa(info.End),
			string(info.SemanticType),
			strconv.Itoa(info.Frequency),
		})
	}

	if err := formatter.Table(tableData); err != nil {
		return err
	}
	if hidden := len(infos) - len(shown); hidden > 0 {
		formatter.Println("%s", formatter.Dim(fmt.Sprintf("… %d more token(s), use --limit 0 to list all", hidden)))
	}
	return nil
}

func renderSemanticTable(formatter *output.Formatter, a tokenization.TokenAnalytics) error {
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "TYPE", Align: output.AlignLeft},
			{Header: "COUNT", Align: output.AlignRight},
			{Header: "SHARE", Align: output.AlignRight},
		},
	}
	for _, t := range semanticOrder {
		n := a.SemanticDistribution[t]
		if n == 0 {
			continue
		}
		tableData.Rows = append(tableData.Rows, []string{
			string(t),
			strconv.Itoa(n),
			fmt.Sprintf("%.1f%%", percent(n, a.TotalTokens)),
		})
	}
	return formatter.Table(tableData)
}

func renderLengthDistribution(formatter *output.Formatter, a tokenization.TokenAnalytics) error {
	lengths := make([]int, 0, len(a.LengthDistribution))
	peak := 0
	for l, n := range a.LengthDistribution {
		lengths = append(lengths, l)
		peak = max(peak, n)
	}
	slices.Sort(lengths)

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "LENGTH", Align: output.AlignRight},
			{Header: "COUNT", Align: output.AlignRight},
			{Header: "", Align: output.AlignLeft},
		},
	}
	for _, l := range lengths {
		n := a.LengthDistribution[l]
		tableData.Rows = append(tableData.Rows, []string{
			strconv.Itoa(l),
			strconv.Itoa(n),
			output.Bar(float64(n), float64(peak), 20),
		})
	}
	return formatter.Table(tableData)
}

// contextLabel describes how much of the context window a count uses.
func contextLabel(tokens, window int, fits bool) string {
	label := fmt.Sprintf("%d of %d (%.2f%%)", tokens, window, percent(tokens, window))
	if !fits {
		label += " exceeds context window"
	}
	return label
}

// percent returns n as a percentage of total, 0 when total is 0.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
