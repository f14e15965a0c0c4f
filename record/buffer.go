package record

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/datapak/datapak/schema"
)

const (
	// MaxSize is the maximum encoded record size, separators included.
	MaxSize = 254
	// Separator joins field values on disk. Field content never contains it.
	Separator = '\t'
)

var (
	ErrIndexRange     = errors.New("field index out of range")
	ErrIndexBackwards = errors.New("field index lower than one already set")
	ErrTooLarge       = fmt.Errorf("encoded record exceeds %d bytes", MaxSize)
)

// Buffer is the staging area where a record is built before it is committed
// with append or update. Fields are implicitly indexed 1..N in the order
// they are set. It is independent of the record loaded by read.
type Buffer struct {
	fields []string
}

// Clear resets the buffer to zero staged fields.
func (b *Buffer) Clear() {
	b.fields = b.fields[:0]
}

// Set stages a value at the 1-based index. Indexes must arrive in ascending
// order; skipping ahead fills the gap with empty text and setting the
// highest index again replaces its value. An index below the current
// highest is rejected rather than silently rewriting fields already staged.
func (b *Buffer) Set(index int, value string) error {
	if index < 1 || index > schema.MaxFields {
		return ErrIndexRange
	}
	if index < len(b.fields) {
		return ErrIndexBackwards
	}
	if index == len(b.fields) {
		b.fields[index-1] = value
		return nil
	}
	for len(b.fields) < index-1 {
		b.fields = append(b.fields, "")
	}
	b.fields = append(b.fields, value)
	return nil
}

// SetInt stages an integer at the 1-based index, stored in its text form.
func (b *Buffer) SetInt(index int, value int16) error {
	return b.Set(index, EncodeInt(value))
}

func (b *Buffer) NumFields() int {
	return len(b.fields)
}

// Size is the encoded length of the staged record, separators included.
func (b *Buffer) Size() int {
	if len(b.fields) == 0 {
		return 0
	}
	size := len(b.fields) - 1
	for _, f := range b.fields {
		size += len(f)
	}
	return size
}

// Encode serializes the staged fields in index order. The caller checks the
// error before touching the file, so an oversized record never writes a
// single byte.
func (b *Buffer) Encode() ([]byte, error) {
	if b.Size() > MaxSize {
		return nil, ErrTooLarge
	}
	return []byte(strings.Join(b.fields, string(Separator))), nil
}

// Split decodes the raw bytes of a stored record into its field values.
func Split(raw []byte) []string {
	parts := bytes.Split(raw, []byte{Separator})
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = string(p)
	}
	return fields
}
