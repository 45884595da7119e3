package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/domain/textstats"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	var (
		file string
		top  int
	)

	cmd := &cobra.Command{
		Use:   "stats [text]",
		Short: "Show text statistics",
		Long: `Count characters, words, lines, sentences and paragraphs, compute the
Shannon entropy of the character distribution and list the most frequent
characters.`,
		Example: `  tl stats -f essay.txt
  tl stats --top 5 "mississippi"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runStats(text, top)
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().IntVar(&top, "top", 0, "number of top characters (default from config)")

	return cmd
}

func runStats(text string, top int) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	stats := svc.Stats(runContext(), text, top)

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(stats)
	}
	return renderStats(formatter, stats)
}

func renderStats(formatter *output.Formatter, s textstats.TextStatistics) error {
	formatter.Header("Text Statistics")
	formatter.Item("Characters", strconv.Itoa(s.TotalCharacters))
	formatter.Item("Unique characters", strconv.Itoa(s.UniqueCharacters))
	formatter.Item("Bytes", strconv.Itoa(s.Bytes))
	formatter.Item("Words", strconv.Itoa(s.Words))
	formatter.Item("Lines", strconv.Itoa(s.Lines))
	formatter.Item("Sentences", strconv.Itoa(s.Sentences))
	formatter.Item("Paragraphs", strconv.Itoa(s.Paragraphs))
	formatter.Item("Entropy", fmt.Sprintf("%.3f bits", s.Entropy))
	formatter.Println("")

	if len(s.TopCharacters) == 0 {
		return nil
	}

	peak := float64(s.TopCharacters[0].Count)
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "CHAR", Align: output.AlignCenter},
			{Header: "CODE", Align: output.AlignLeft},
			{Header: "COUNT", Align: output.AlignRight},
			{Header: "SHARE", Align: output.AlignRight},
			{Header: "", Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(s.TopCharacters)),
	}
	for _, c := range s.TopCharacters {
		tableData.Rows = append(tableData.Rows, []string{
			c.Char,
			fmt.Sprintf("U+%04X", c.CodePoint),
			strconv.Itoa(c.Count),
			fmt.Sprintf("%.1f%%", c.Percentage),
			output.Bar(float64(c.Count), peak, barWidth()),
		})
	}

	formatter.SubHeader("Top Characters")
	return formatter.Table(tableData)
}

// barWidth sizes frequency bars to the terminal, within [10, 40].
func barWidth() int {
	return min(max(output.TerminalWidth(80)-40, 10), 40)
}

// NewCharsCmd creates the chars command.
func NewCharsCmd() *cobra.Command {
	var (
		file  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "chars [text]",
		Short: "Describe every distinct character",
		Long: `List each distinct character with its code point in several bases,
its frequency, its Unicode block and its Unicode name, most frequent first.`,
		Example: `  tl chars "naïve café ☕"
  tl chars -f data.csv --limit 20 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			return runChars(text, limit)
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().IntVar(&limit, "limit", 0, "only the N most frequent characters, 0 for all")

	return cmd
}

func runChars(text string, limit int) error {
	svc, err := analysisService()
	if err != nil {
		return err
	}
	formatter := GetFormatter()

	chars := svc.Characters(runContext(), text)
	if limit > 0 && len(chars) > limit {
		chars = chars[:limit]
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(chars)
	}
	return renderChars(formatter, chars)
}

func renderChars(formatter *output.Formatter, chars []textstats.CharacterAnalysis) error {
	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "CHAR", Align: output.AlignCenter},
			{Header: "CODE", Align: output.AlignLeft},
			{Header: "DEC", Align: output.AlignRight},
			{Header: "HEX", Align: output.AlignRight},
			{Header: "OCT", Align: output.AlignRight},
			{Header: "BIN", Align: output.AlignRight},
			{Header: "FREQ", Align: output.AlignRight},
			{Header: "CATEGORY", Align: output.AlignLeft},
			{Header: "NAME", Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(chars)),
	}
	for _, c := range chars {
		tableData.Rows = append(tableData.Rows, []string{
			c.Char,
			c.Unicode,
			strconv.Itoa(c.Decimal),
			c.Hex,
			c.Octal,
			c.Binary,
			strconv.Itoa(c.Frequency),
			c.Category,
			c.Name,
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Character Analysis"))
	formatter.Println("")
	if err := formatter.Table(tableData); err != nil {
		return err
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d distinct character(s)", len(chars))))
	return nil
}
