package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/application/analysis"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	var (
		file   string
		models []string
	)

	cmd := &cobra.Command{
		Use:   "diff [text]",
		Short: "Diff where two models split a text into tokens",
		Long: `Tokenize a text on two models and diff the token sequences.

Tokens both models produce are printed plainly, tokens only the first
model produces as [-token-] and tokens only the second produces as {+token+}.`,
		Example: `  tl diff -m gpt-4o -m claude-3-haiku "tokenization boundaries"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(models) != 2 {
				return domainErrors.NewError(domainErrors.CodeValidation,
					fmt.Sprintf("diff needs exactly two --model flags, got %d", len(models)), nil)
			}
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runDiff(text, models[0], models[1])
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().StringSliceVarP(&models, "model", "m", nil, "model ID, given twice")

	return cmd
}

func runDiff(text, modelA, modelB string) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	d, err := svc.Diff(runContext(), text, modelA, modelB)
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(d)
	}
	return renderDiff(formatter, d)
}

func renderDiff(formatter *output.Formatter, d *analysis.BoundaryDiff) error {
	formatter.Header(fmt.Sprintf("Token Boundaries: %s vs %s", d.ModelA, d.ModelB))
	formatter.Item(d.ModelA, strconv.Itoa(d.TokensA)+" tokens")
	formatter.Item(d.ModelB, strconv.Itoa(d.TokensB)+" tokens")
	formatter.Item("Shared", strconv.Itoa(d.Shared))
	formatter.Item("Similarity", fmt.Sprintf("%.1f%%", d.Similarity*100))
	formatter.Println("")

	var b strings.Builder
	for _, seg := range d.Segments {
		for _, tok := range seg.Tokens {
			t := visible(tok)
			switch seg.Op {
			case analysis.DiffOnlyA:
				b.WriteString(formatter.Colorize("[-"+t+"-]", output.ColorRed))
			case analysis.DiffOnlyB:
				b.WriteString(formatter.Colorize("{+"+t+"+}", output.ColorGreen))
			default:
				b.WriteString(t)
			}
			b.WriteString(formatter.Dim("|"))
		}
	}
	return formatter.Println("%s", b.String())
}
