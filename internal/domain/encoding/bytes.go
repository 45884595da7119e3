package encoding

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	domainErrors "github.com/jbctechsolutions/tokenlens/internal/domain/errors"
)

const (
	dumpRowWidth = 16
	dumpHexWidth = dumpRowWidth*3 - 1
)

// ToBase64 encodes the UTF-8 bytes of text with the standard alphabet.
// Bytes reports ceil(4n/3) where n is the UTF-16 length of text.
func ToBase64(text string) Result {
	n := len(utf16.Encode([]rune(text)))
	return success("Base64", base64.StdEncoding.EncodeToString([]byte(text)), (4*n+2)/3)
}

// HexDump renders the UTF-8 bytes of text in 16-byte rows:
//
//	00000000  48 65 6C 6C 6F                                   |Hello|
//
// Rows are joined by newlines without a trailing one.
func HexDump(text string) Result {
	data := []byte(text)
	rows := make([]string, 0, (len(data)+dumpRowWidth-1)/dumpRowWidth)

	for off := 0; off < len(data); off += dumpRowWidth {
		end := off + dumpRowWidth
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		hex := make([]string, len(chunk))
		var ascii strings.Builder
		for i, b := range chunk {
			hex[i] = fmt.Sprintf("%02X", b)
			if b >= 32 && b <= 126 {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}
		rows = append(rows, fmt.Sprintf("%08X  %-*s  |%s|", off, dumpHexWidth, strings.Join(hex, " "), ascii.String()))
	}
	return success("Hex Dump", strings.Join(rows, "\n"), len(data))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// fromUnits turns byte-sized code units back into text.
func fromUnits(units []uint16) Result {
	text := string(utf16.Decode(units))
	return Result{Content: text, Bytes: utf8.RuneCountInString(text), Success: true}
}

// FromBinary decodes groups of eight binary digits, one code unit per group.
// Whitespace is ignored.
func FromBinary(content string) Result {
	const format = "Text from Binary"
	clean := stripSpace(content)
	if len(clean)%8 != 0 {
		return failure(format, describe(domainErrors.ErrBinaryLength, fmt.Sprintf("got %d digits", len(clean))))
	}

	units := make([]uint16, 0, len(clean)/8)
	for i := 0; i < len(clean); i += 8 {
		v, err := strconv.ParseUint(clean[i:i+8], 2, 8)
		if err != nil {
			return failure(format, describe(domainErrors.ErrBinaryDigit, fmt.Sprintf("group %q", clean[i:i+8])))
		}
		units = append(units, uint16(v))
	}

	r := fromUnits(units)
	r.Format = format
	return r
}

// FromHex decodes pairs of hex digits, one code unit per pair. Whitespace is
// ignored and both letter cases are accepted.
func FromHex(content string) Result {
	const format = "Text from Hex"
	clean := stripSpace(content)
	if len(clean)%2 != 0 {
		return failure(format, describe(domainErrors.ErrHexLength, fmt.Sprintf("got %d digits", len(clean))))
	}

	units := make([]uint16, 0, len(clean)/2)
	for i := 0; i < len(clean); i += 2 {
		v, err := strconv.ParseUint(clean[i:i+2], 16, 8)
		if err != nil {
			return failure(format, describe(domainErrors.ErrHexDigit, fmt.Sprintf("pair %q", clean[i:i+2])))
		}
		units = append(units, uint16(v))
	}

	r := fromUnits(units)
	r.Format = format
	return r
}

// FromBase64 decodes standard padded Base64. The decoded bytes must be
// valid UTF-8. Surrounding and embedded whitespace is ignored.
func FromBase64(content string) Result {
	const format = "Text from Base64"
	data, err := base64.StdEncoding.DecodeString(stripSpace(content))
	if err != nil {
		return failure(format, describe(domainErrors.ErrInvalidBase64, err.Error()))
	}
	if !utf8.Valid(data) {
		return failure(format, domainErrors.ErrInvalidUTF8)
	}
	text := string(data)
	return success(format, text, utf8.RuneCountInString(text))
}
