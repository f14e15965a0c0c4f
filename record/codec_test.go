package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeInt(t *testing.T) {
	assert.Equal(t, "0", EncodeInt(0))
	assert.Equal(t, "42", EncodeInt(42))
	assert.Equal(t, "-7", EncodeInt(-7))
	assert.Equal(t, "32767", EncodeInt(32767))
	assert.Equal(t, "-32768", EncodeInt(-32768))
}

func TestDecodeInt(t *testing.T) {
	tests := []struct {
		text     string
		expected int16
	}{
		{"42", 42},
		{"-7", -7},
		{"+15", 15},
		{"  30 ", 30},
		{"0", 0},
		{"32767", 32767},
		{"-32768", -32768},
		{"", 0},
		{"   ", 0},
		{"-", 0},
		{"+", 0},
		{"abc", 0},
		{"12x", 0},
		{"1 2", 0},
		{"1.5", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DecodeInt(tt.text), "text=%q", tt.text)
	}
}

func TestDecodeIntRoundTrip(t *testing.T) {
	for _, v := range []int16{0, 1, -1, 127, -128, 32767, -32768} {
		assert.Equal(t, v, DecodeInt(EncodeInt(v)))
	}
}
