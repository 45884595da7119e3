package commands

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
	"github.com/jbctechsolutions/tokenlens/internal/domain/textstats"
)

// addFileFlag registers the --file flag shared by every text command.
func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", "read text from file instead of arguments or stdin")
}

// readInput returns the text to analyse. Arguments are joined with spaces;
// otherwise --file is read verbatim; otherwise piped stdin is read with one
// trailing newline removed. Empty text is an INPUT error.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 && file != "" {
		return "", domainErrors.NewError(domainErrors.CodeValidation, "pass text as arguments or --file, not both", nil)
	}

	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")

	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", domainErrors.WithContext(
				domainErrors.NewError(domainErrors.CodeInput, "failed to read input file", err),
				"path", file,
			)
		}
		text = string(data)

	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", domainErrors.NewError(domainErrors.CodeInput,
				"no input text: pass text as arguments, use --file or pipe stdin", domainErrors.ErrEmptyInput)
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", domainErrors.NewError(domainErrors.CodeInput, "failed to read stdin", err)
		}
		text = trimNewline(string(data))
	}

	if text == "" {
		return "", domainErrors.NewError(domainErrors.CodeInput, "no input text", domainErrors.ErrEmptyInput)
	}
	return text, nil
}

// trimNewline removes a single trailing line ending.
func trimNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}

// visible renders whitespace and control characters of s as glyphs so
// token boundaries stay readable.
func visible(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(textstats.DisplayGlyph(r))
	}
	return b.String()
}
