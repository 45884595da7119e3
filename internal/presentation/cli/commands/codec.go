package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/tokenlens/internal/domain/conversion"
	"github.com/jbctechsolutions/tokenlens/internal/domain/encoding"
	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/presentation/cli/output"
)

// FormatListItem is one supported format for display.
type FormatListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// codecFlags holds the flags shared by encode, decode and convert.
type codecFlags struct {
	File   string
	Format string
	List   bool
}

func addCodecFlags(cmd *cobra.Command, f *codecFlags, formatHelp string) {
	addFileFlag(cmd, &f.File)
	cmd.Flags().StringVar(&f.Format, "format", "", formatHelp)
	cmd.Flags().BoolVar(&f.List, "list", false, "list the supported formats")
}

// NewEncodeCmd creates the encode command.
func NewEncodeCmd() *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Render text as binary, hex, base64 and more",
		Long: `Render a text in one of the supported encodings.

binary, hex, ascii and octal work per UTF-16 code unit; unicode shows code
points; base64 and hexdump work on the UTF-8 bytes.`,
		Example: `  tl encode --format hex "Hi"
  tl encode --format hexdump -f image-alt.txt
  tl encode --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.List {
				return renderFormats(encodeFormats())
			}
			if err := requireFormat(flags.Format); err != nil {
				return err
			}
			text, err := readInput(cmd, args, flags.File)
			if err != nil {
				return err
			}
			svc, err := analysisService()
			if err != nil {
				return err
			}
			return renderEncoding(svc.Encode(runContext(), text, flags.Format))
		},
	}

	addCodecFlags(cmd, &flags, "binary, hex, base64, ascii, unicode, octal or hexdump")
	return cmd
}

// NewDecodeCmd creates the decode command.
func NewDecodeCmd() *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "decode [content]",
		Short: "Decode binary, hex or base64 back to text",
		Long: `Decode binary, hex or base64 content back to text.

Whitespace is ignored in binary and hex input. Decoded bytes must be
valid UTF-8.`,
		Example: `  tl decode --format hex "48 69"
  echo SGk= | tl decode --format base64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.List {
				return renderFormats(decodeFormats())
			}
			if err := requireFormat(flags.Format); err != nil {
				return err
			}
			content, err := readInput(cmd, args, flags.File)
			if err != nil {
				return err
			}
			svc, err := analysisService()
			if err != nil {
				return err
			}
			return renderEncoding(svc.Decode(runContext(), content, flags.Format))
		},
	}

	addCodecFlags(cmd, &flags, "binary, hex or base64")
	return cmd
}

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	var flags codecFlags

	cmd := &cobra.Command{
		Use:   "convert [text]",
		Short: "Convert text into a structured document",
		Long: `Convert a text into JSON, XML, CSV, Markdown, HTML or YAML.

Valid JSON input is pretty-printed by the json format; any other text
becomes a document of its lines with line, character and word counts.`,
		Example: `  tl convert --format csv -f notes.txt
  tl convert --format json '{"a":1}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.List {
				return renderFormats(conversionFormats())
			}
			if err := requireFormat(flags.Format); err != nil {
				return err
			}
			text, err := readInput(cmd, args, flags.File)
			if err != nil {
				return err
			}
			svc, err := analysisService()
			if err != nil {
				return err
			}
			r := svc.Convert(runContext(), text, flags.Format)
			return renderCodecResult(r, r.Success, r.Content, r.Error)
		},
	}

	addCodecFlags(cmd, &flags, "json, xml, csv, markdown, html or yaml")
	return cmd
}

func requireFormat(format string) error {
	if strings.TrimSpace(format) == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "--format is required (see --list)", domainErrors.ErrUnsupportedFormat)
	}
	return nil
}

func renderEncoding(r encoding.Result) error {
	return renderCodecResult(r, r.Success, r.Content, r.Error)
}

// renderCodecResult prints the content of a successful result, or the
// whole result as JSON. Failures become coded errors: an unknown format
// is a VALIDATION error, malformed content an INPUT error.
func renderCodecResult(result any, ok bool, content, message string) error {
	formatter := GetFormatter()

	if !ok {
		code := domainErrors.CodeInput
		if strings.HasPrefix(message, domainErrors.ErrUnsupportedFormat.Error()) {
			code = domainErrors.CodeValidation
		}
		if formatter.Format() == output.FormatJSON {
			if err := formatter.JSON(result); err != nil {
				return err
			}
		}
		return domainErrors.NewError(code, message, nil)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(result)
	}
	return formatter.Println("%s", content)
}

func encodeFormats() []FormatListItem {
	var items []FormatListItem
	for _, f := range encoding.Formats() {
		items = append(items, FormatListItem(f))
	}
	return items
}

func decodeFormats() []FormatListItem {
	var items []FormatListItem
	for _, f := range encoding.Formats() {
		for _, id := range encoding.DecodeFormats() {
			if f.ID == id {
				items = append(items, FormatListItem{ID: f.ID, Name: f.Name, Description: "Decode from " + f.Name})
			}
		}
	}
	return items
}

func conversionFormats() []FormatListItem {
	var items []FormatListItem
	for _, f := range conversion.Formats() {
		items = append(items, FormatListItem(f))
	}
	return items
}

func renderFormats(items []FormatListItem) error {
	formatter := GetFormatter()
	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(items)
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "FORMAT", Align: output.AlignLeft},
			{Header: "NAME", Align: output.AlignLeft},
			{Header: "DESCRIPTION", Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(items)),
	}
	for _, it := range items {
		tableData.Rows = append(tableData.Rows, []string{it.ID, it.Name, it.Description})
	}
	if err := formatter.Table(tableData); err != nil {
		return err
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim("Total: "+strconv.Itoa(len(items))+" format(s)"))
	return nil
}
