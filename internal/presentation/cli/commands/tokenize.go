package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	"github.com/jbctechsolutions/tokenlens/internal/domain/analytics"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// selectionFlags holds the model selection flags shared by multi-model commands.
type selectionFlags struct {
	Models   []string
	Provider string
	Sort     string
}

func addSelectionFlags(cmd *cobra.Command, sel *selectionFlags, withSort bool) {
	cmd.Flags().StringSliceVarP(&sel.Models, "model", "m", nil, "only these model IDs (repeatable)")
	cmd.Flags().StringVar(&sel.Provider, "provider", "", "only models of this provider")
	if withSort {
		cmd.Flags().StringVar(&sel.Sort, "sort", "", "sort results by tokens, input or output cost (default from config)")
	}
}

// selection converts the flags into an analysis.Selection.
func (f selectionFlags) selection(svc *analysis.Service) (analysis.Selection, error) {
	sel := analysis.Selection{
		ModelIDs: f.Models,
		Provider: f.Provider,
		Sort:     svc.DefaultSort(),
	}
	if f.Sort != "" {
		key, err := analytics.ParseSortKey(f.Sort)
		if err != nil {
			return sel, domainErrors.NewError(domainErrors.CodeValidation,
				fmt.Sprintf("invalid sort %q (valid options: tokens, input, output)", f.Sort), err)
		}
		sel.Sort = key
	}
	return sel, nil
}

// TokenizeRow is one model's count for display.
type TokenizeRow struct {
	ModelID      string  `json:"model_id"`
	Provider     string  `json:"provider"`
	Strategy     string  `json:"strategy"`
	Tokens       int     `json:"tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	CharsToken   float64 `json:"chars_per_token"`
	ContextUsage float64 `json:"context_usage"` // fraction of the context window
}

// TokenizeOutput represents the output for the tokenize command.
type TokenizeOutput struct {
	Characters int           `json:"characters"`
	Words      int           `json:"words"`
	Results    []TokenizeRow `json:"results"`
}

// NewTokenizeCmd creates the tokenize command.
func NewTokenizeCmd() *cobra.Command {
	var (
		file string
		sel  selectionFlags
	)

	cmd := &cobra.Command{
		Use:   "tokenize [text]",
		Short: "Count tokens and cost on every model",
		Long: `Count the tokens of a text on every catalog model and price them.

Text comes from the arguments, from --file, or from stdin.`,
		Example: `  # Count a sentence on all models
  tl tokenize "The quick brown fox"

  # Count a file on OpenAI models, cheapest input first
  tl tokenize -f prompt.txt --provider OpenAI --sort input

  # Pipe text in
  cat README.md | tl tokenize -o json`,
		Aliases: []string{"count"},
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runTokenize(text, sel)
		},
	}

	addFileFlag(cmd, &file)
	addSelectionFlags(cmd, &sel, true)

	return cmd
}

func runTokenize(text string, flags selectionFlags) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	sel, err := flags.selection(svc)
	if err != nil {
		return err
	}

	entries, err := svc.TokenizeAll(runContext(), text, sel)
	if err != nil {
		return err
	}

	out := TokenizeOutput{Results: make([]TokenizeRow, 0, len(entries))}
	for _, e := range entries {
		out.Characters = e.Result.CharacterCount
		out.Words = e.Result.WordCount
		out.Results = append(out.Results, TokenizeRow{
			ModelID:      e.Model.ID,
			Provider:     e.Model.Provider,
			Strategy:     string(svc.Estimator().Strategy(e.Model)),
			Tokens:       e.Result.TokenCount,
			InputCost:    e.Result.InputCost,
			OutputCost:   e.Result.OutputCost,
			CharsToken:   tokenization.Efficiency(e.Result.CharacterCount, e.Result.TokenCount),
			ContextUsage: float64(e.Result.TokenCount) / float64(e.Model.ContextWindow),
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}
	return renderTokenizeTable(formatter, out)
}

func renderTokenizeTable(formatter *output.Formatter, out TokenizeOutput) error {
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "MODEL", Align: output.AlignLeft},
			{Header: "PROVIDER", Align: output.AlignLeft},
			{Header: "STRATEGY", Align: output.AlignLeft},
			{Header: "TOKENS", Align: output.AlignRight},
			{Header: "INPUT", Align: output.AlignRight},
			{Header: "OUTPUT", Align: output.AlignRight},
			{Header: "CHARS/TOKEN", Align: output.AlignRight},
			{Header: "CONTEXT", Align: output.AlignRight},
		},
		Rows: make([][]string, 0, len(out.Results)),
	}

	for _, r := range out.Results {
		tableData.Rows = append(tableData.Rows, []string{
			r.ModelID,
			r.Provider,
			r.Strategy,
			strconv.Itoa(r.Tokens),
			formatCost(r.InputCost),
			formatCost(r.OutputCost),
			fmt.Sprintf("%.2f", r.CharsToken),
			fmt.Sprintf("%.2f%%", r.ContextUsage*100),
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Token Counts"))
	formatter.Item("Characters", strconv.Itoa(out.Characters))
	formatter.Item("Words", strconv.Itoa(out.Words))
	formatter.Println("")

	return formatter.Table(tableData)
}
