package record

import (
	"strconv"
	"strings"
)

// Integer fields are stored as minimal decimal ASCII: leading '-' for
// negatives, no leading zeros, no leading '+'. Text fields pass through
// unchanged, so only the integer side needs a codec.

// EncodeInt renders a 16-bit integer for storage.
func EncodeInt(v int16) string {
	return strconv.Itoa(int(v))
}

// DecodeInt parses the stored text of an integer field: optional surrounding
// whitespace, optional sign, then digits. Anything else yields 0 — decoding
// never fails loudly, callers treat 0 as absent/invalid. Accumulation wraps
// at 16 bits, matching the original runtime's arithmetic.
func DecodeInt(text string) int16 {

	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	negative := false
	switch text[0] {
	case '-':
		negative = true
		text = text[1:]
	case '+':
		text = text[1:]
	}
	if text == "" {
		return 0
	}

	var v int16
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return 0
		}
		v = v*10 + int16(c-'0')
	}

	if negative {
		return -v
	}
	return v
}
