package conversion

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// ToXML emits one <line> element per non-blank line.
func ToXML(text string) Result {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<document>\n")
	for i, line := range nonBlankLines(text) {
		fmt.Fprintf(&sb, "  <line id=\"%d\">%s</line>\n", i+1, xmlEscaper.Replace(line))
	}
	sb.WriteString("</document>")
	return Result{Format: "XML", Content: sb.String(), Success: true}
}

// ToCSV emits a Line,Content,Characters,Words row per line. Content is
// always quoted.
func ToCSV(text string) Result {
	var sb strings.Builder
	sb.WriteString("Line,Content,Characters,Words\n")
	for i, line := range strings.Split(text, "\n") {
		quoted := `"` + strings.ReplaceAll(line, `"`, `""`) + `"`
		fmt.Fprintf(&sb, "%d,%s,%d,%d\n", i+1, quoted, utf8.RuneCountInString(line), len(strings.Fields(line)))
	}
	return Result{Format: "CSV", Content: sb.String(), Success: true}
}

// ToMarkdown emits a metadata section followed by a numbered line list.
func ToMarkdown(text string) Result {
	lines := strings.Split(text, "\n")

	var sb strings.Builder
	sb.WriteString("# Text Analysis\n\n## Metadata\n\n")
	fmt.Fprintf(&sb, "- **Lines**: %d\n", len(lines))
	fmt.Fprintf(&sb, "- **Characters**: %d\n", utf8.RuneCountInString(text))
	fmt.Fprintf(&sb, "- **Words**: %d\n\n", len(strings.Fields(text)))
	sb.WriteString("## Content\n\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			line = "*(empty line)*"
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
	}
	return Result{Format: "Markdown", Content: sb.String(), Success: true}
}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Text Analysis</title>
</head>
<body>
    <h1>Text Analysis</h1>
`

// ToHTML emits a standalone page with metadata and one div per line.
func ToHTML(text string) Result {
	lines := strings.Split(text, "\n")

	var sb strings.Builder
	sb.WriteString(htmlHead)
	sb.WriteString("    <div class=\"metadata\">\n        <h2>Metadata</h2>\n")
	fmt.Fprintf(&sb, "        <p><strong>Lines:</strong> %d</p>\n", len(lines))
	fmt.Fprintf(&sb, "        <p><strong>Characters:</strong> %d</p>\n", utf8.RuneCountInString(text))
	fmt.Fprintf(&sb, "        <p><strong>Words:</strong> %d</p>\n", len(strings.Fields(text)))
	sb.WriteString("    </div>\n    <h2>Content</h2>\n    <div class=\"content\">\n")
	for i, line := range lines {
		escaped := htmlEscaper.Replace(line)
		if escaped == "" {
			escaped = "(empty line)"
		}
		fmt.Fprintf(&sb, "        <div class=\"line\"><span class=\"line-number\">%d:</span>%s</div>\n", i+1, escaped)
	}
	sb.WriteString("    </div>\n</body>\n</html>")
	return Result{Format: "HTML", Content: sb.String(), Success: true}
}
