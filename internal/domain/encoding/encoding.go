// Package encoding renders text in byte and code-point level notations and
// decodes the reversible ones back to text.
//
// Binary, hex, ASCII and octal work on UTF-16 code units. Unicode notation
// works on code points. Base64 and hex dump work on UTF-8 bytes. The two
// byte models are deliberately kept apart: binary and hex round-trip text
// whose code units fit in one byte, Base64 round-trips any valid UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

// Format identifiers accepted by Encode and Decode.
const (
	FormatBinary  = "binary"
	FormatHex     = "hex"
	FormatBase64  = "base64"
	FormatASCII   = "ascii"
	FormatUnicode = "unicode"
	FormatOctal   = "octal"
	FormatHexDump = "hexdump"
)

// Result is the outcome of one encode or decode call. Failures carry a
// message in Error, an empty Content and zero Bytes.
type Result struct {
	Format  string `json:"format"`
	Content string `json:"content"`
	Bytes   int    `json:"bytes"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FormatInfo describes an encode format for listings.
type FormatInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var formats = []FormatInfo{
	{ID: FormatBinary, Name: "Binary", Description: "Convert to binary representation"},
	{ID: FormatHex, Name: "Hexadecimal", Description: "Convert to hexadecimal"},
	{ID: FormatBase64, Name: "Base64", Description: "Convert to Base64 encoding"},
	{ID: FormatASCII, Name: "ASCII", Description: "Show ASCII character codes"},
	{ID: FormatUnicode, Name: "Unicode", Description: "Show Unicode code points"},
	{ID: FormatOctal, Name: "Octal", Description: "Convert to octal representation"},
	{ID: FormatHexDump, Name: "Hex Dump", Description: "Traditional hex dump format"},
}

// Formats lists the encode formats in display order.
func Formats() []FormatInfo {
	out := make([]FormatInfo, len(formats))
	copy(out, formats)
	return out
}

// DecodeFormats lists the formats Decode accepts.
func DecodeFormats() []string {
	return []string{FormatBinary, FormatHex, FormatBase64}
}

func success(format, content string, bytes int) Result {
	return Result{Format: format, Content: content, Bytes: bytes, Success: true}
}

func failure(format string, err error) Result {
	return Result{Format: format, Error: err.Error()}
}

// Encode dispatches on a case-insensitive format id. "hexadecimal" is an
// alias for "hex".
func Encode(text, format string) Result {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatBinary:
		return ToBinary(text)
	case FormatHex, "hexadecimal":
		return ToHex(text)
	case FormatBase64:
		return ToBase64(text)
	case FormatASCII:
		return ToASCII(text)
	case FormatUnicode:
		return ToUnicode(text)
	case FormatOctal:
		return ToOctal(text)
	case FormatHexDump:
		return HexDump(text)
	}
	return failure(format, fmt.Errorf("%w: %s", domainErrors.ErrUnsupportedFormat, format))
}

// Decode dispatches to one of the three decoders.
func Decode(content, format string) Result {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatBinary:
		return FromBinary(content)
	case FormatHex, "hexadecimal":
		return FromHex(content)
	case FormatBase64:
		return FromBase64(content)
	}
	return failure(format, fmt.Errorf("%w: %s", domainErrors.ErrUnsupportedFormat, format))
}

// codeUnits renders every UTF-16 code unit of text with render, joined by
// single spaces.
func codeUnits(text string, render func(uint16) string) (string, int) {
	units := utf16.Encode([]rune(text))
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = render(u)
	}
	return strings.Join(parts, " "), len(units)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// ToBinary renders each code unit as at least 8 binary digits.
func ToBinary(text string) Result {
	content, n := codeUnits(text, func(u uint16) string {
		return padLeft(strconv.FormatUint(uint64(u), 2), 8)
	})
	return success("Binary", content, n)
}

// ToHex renders each code unit as at least 2 uppercase hex digits.
func ToHex(text string) Result {
	content, n := codeUnits(text, func(u uint16) string {
		return padLeft(strings.ToUpper(strconv.FormatUint(uint64(u), 16)), 2)
	})
	return success("Hexadecimal", content, n)
}

// ToASCII renders each code unit in decimal.
func ToASCII(text string) Result {
	content, n := codeUnits(text, func(u uint16) string {
		return strconv.FormatUint(uint64(u), 10)
	})
	return success("ASCII Codes", content, n)
}

// ToOctal renders each code unit as at least 3 octal digits.
func ToOctal(text string) Result {
	content, n := codeUnits(text, func(u uint16) string {
		return padLeft(strconv.FormatUint(uint64(u), 8), 3)
	})
	return success("Octal", content, n)
}

// ToUnicode renders each code point as U+XXXX. Bytes approximates the
// UTF-16 size as two bytes per code unit.
func ToUnicode(text string) Result {
	runes := []rune(text)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = fmt.Sprintf("U+%04X", r)
	}
	return success("Unicode", strings.Join(parts, " "), 2*len(utf16.Encode(runes)))
}

// describe joins a sentinel with the offending detail.
func describe(sentinel error, detail string) error {
	if detail == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}

// IsDecodeError reports whether err came from input validation in a decoder.
func IsDecodeError(err error) bool {
	for _, target := range []error{
		domainErrors.ErrBinaryLength, domainErrors.ErrBinaryDigit,
		domainErrors.ErrHexLength, domainErrors.ErrHexDigit,
		domainErrors.ErrInvalidBase64, domainErrors.ErrInvalidUTF8,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
