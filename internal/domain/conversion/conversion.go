// Package conversion re-renders plain text as structured documents.
package conversion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// Result is the outcome of one conversion.
type Result struct {
	Format  string `json:"format"`
	Content string `json:"content"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FormatInfo describes a conversion target.
type FormatInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var formats = []FormatInfo{
	{ID: "json", Name: "JSON", Description: "Convert to JSON format"},
	{ID: "xml", Name: "XML", Description: "Convert to XML format"},
	{ID: "csv", Name: "CSV", Description: "Convert to CSV format"},
	{ID: "markdown", Name: "Markdown", Description: "Convert to Markdown format"},
	{ID: "html", Name: "HTML", Description: "Convert to HTML format"},
	{ID: "yaml", Name: "YAML", Description: "Convert to YAML format"},
}

// Formats lists the conversion targets in display order.
func Formats() []FormatInfo {
	out := make([]FormatInfo, len(formats))
	copy(out, formats)
	return out
}

// Convert dispatches on a case-insensitive format id.
func Convert(text, format string) Result {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return ToJSON(text)
	case "xml":
		return ToXML(text)
	case "csv":
		return ToCSV(text)
	case "markdown", "md":
		return ToMarkdown(text)
	case "html":
		return ToHTML(text)
	case "yaml", "yml":
		return ToYAML(text)
	}
	return Result{Format: format, Error: fmt.Sprintf("%v: %s", domainErrors.ErrUnsupportedFormat, format)}
}

// Metadata is the summary attached to generated documents.
type Metadata struct {
	LineCount      int `json:"lineCount" yaml:"line_count"`
	CharacterCount int `json:"characterCount" yaml:"character_count"`
	WordCount      int `json:"wordCount" yaml:"word_count"`
}

// Document is the structure produced for text that is not already JSON.
type Document struct {
	Text     string   `json:"text" yaml:"text"`
	Lines    []string `json:"lines" yaml:"lines"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// NewDocument builds the document form of text. Blank lines are dropped.
func NewDocument(text string) Document {
	lines := nonBlankLines(text)
	return Document{
		Text:  text,
		Lines: lines,
		Metadata: Metadata{
			LineCount:      len(lines),
			CharacterCount: utf8.RuneCountInString(text),
			WordCount:      len(strings.Fields(text)),
		},
	}
}

func nonBlankLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ToJSON pretty-prints text that is already valid JSON, keeping key order.
// Any other text is wrapped in a Document.
func ToJSON(text string) Result {
	const name = "JSON"
	if json.Valid([]byte(text)) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(strings.TrimSpace(text)), "", "  "); err == nil {
			return Result{Format: name, Content: buf.String(), Success: true}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(text)); err != nil {
		return Result{Format: name, Error: err.Error()}
	}
	return Result{Format: name, Content: strings.TrimSuffix(buf.String(), "\n"), Success: true}
}

// ToYAML renders the Document form of text.
func ToYAML(text string) Result {
	const name = "YAML"
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(text)); err != nil {
		return Result{Format: name, Error: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return Result{Format: name, Error: err.Error()}
	}
	return Result{Format: name, Content: buf.String(), Success: true}
}
