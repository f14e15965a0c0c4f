package pack

import (
	"bytes"
	"fmt"
	"os"
)

// File is the sequential byte store behind one data file: newline-delimited
// records, append-only writes, plus a whole-file rewrite used for
// compaction. There is no atomicity across calls; the engine sequences its
// own operations on top of these primitives.
type File struct {
	name string
	path string
	w    *os.File
}

const recordDelimiter = '\n'

func openFile(name, path string) (*File, error) {
	w, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for append: %w", err)
	}

	return &File{
		name: name,
		path: path,
		w:    w,
	}, nil
}

func (f *File) Name() string {
	return f.name
}

// ReadRecords loads every stored record, in stream order.
func (f *File) ReadRecords() ([][]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	records := [][]byte{}
	for len(data) > 0 {
		i := bytes.IndexByte(data, recordDelimiter)
		if i < 0 {
			records = append(records, data)
			break
		}
		records = append(records, data[:i])
		data = data[i+1:]
	}

	return records, nil
}

// Append writes one record at the end of the stream.
func (f *File) Append(record []byte) error {
	line := make([]byte, 0, len(record)+1)
	line = append(line, record...)
	line = append(line, recordDelimiter)

	_, err := f.w.Write(line)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	return nil
}

// Rewrite truncates the file and writes the given records back. The append
// handle stays valid: it writes at the new end of the file.
func (f *File) Rewrite(records [][]byte) error {
	out := &bytes.Buffer{}
	for _, record := range records {
		out.Write(record)
		out.WriteByte(recordDelimiter)
	}

	err := os.WriteFile(f.path, out.Bytes(), 0666)
	if err != nil {
		return fmt.Errorf("rewrite file: %w", err)
	}

	return nil
}

// Flush forces buffered appends to the device.
func (f *File) Flush() error {
	return f.w.Sync()
}

func (f *File) Close() error {
	err := f.w.Sync()
	if err != nil {
		f.w.Close()
		return err
	}
	return f.w.Close()
}
