package datafile

import (
	"bytes"
	"sync"

	"github.com/google/uuid"

	"github.com/datapak/datapak/pack"
	"github.com/datapak/datapak/record"
	"github.com/datapak/datapak/schema"
)

// Session is the single active binding between a data file, its schema, the
// record buffer, the navigation position and the last-error register. The
// process-wide "one open file at a time" rule is enforced by the owner
// (database.Database). Operations serialize on an internal mutex: the HTTP
// surface calls in from concurrent request goroutines.
//
// The whole record stream is mirrored in memory while the session is open;
// the file on the pack stays the source of truth and is kept in sync on
// every mutation.
type Session struct {
	id     uuid.UUID
	device *pack.Device

	mu     sync.Mutex
	schema *schema.Schema // nil in raw mode
	file   *pack.File

	records [][]byte
	pos     int // 1..len(records), 0 is the end-of-file sentinel

	buffer     record.Buffer
	loaded     []string // fields of the record loaded by Read, nil if none
	loadedSize int

	lastErr Code
}

// Create makes a new, empty data file on the device and binds the schema to
// it. An empty schema definition selects raw mode: index-only access, every
// value handled as text.
func Create(device *pack.Device, name, schemaDef string) (*Session, error) {

	sch, err := parseSchema(schemaDef)
	if err != nil {
		return nil, ErrInvalid
	}

	file, err := device.Create(name)
	if err != nil {
		return nil, deviceCode(err)
	}

	return &Session{
		id:      uuid.New(),
		device:  device,
		schema:  sch,
		file:    file,
		records: [][]byte{},
		pos:     0,
	}, nil
}

// Open binds an existing data file. The schema should match the field order
// and types used when the file was created; names are free to differ.
// Position starts at the first record, or at end-of-file when empty.
func Open(device *pack.Device, name, schemaDef string) (*Session, error) {

	sch, err := parseSchema(schemaDef)
	if err != nil {
		return nil, ErrInvalid
	}

	file, err := device.Open(name)
	if err != nil {
		return nil, deviceCode(err)
	}

	records, err := file.ReadRecords()
	if err != nil {
		file.Close()
		return nil, ErrIO
	}

	pos := 0
	if len(records) > 0 {
		pos = 1
	}

	return &Session{
		id:      uuid.New(),
		device:  device,
		schema:  sch,
		file:    file,
		records: records,
		pos:     pos,
	}, nil
}

func parseSchema(definition string) (*schema.Schema, error) {
	if definition == "" {
		return nil, nil
	}
	return schema.Parse(definition)
}

func deviceCode(err error) Code {
	switch err {
	case pack.ErrNotFound:
		return ErrNotFound
	case pack.ErrExists:
		return ErrExists
	case pack.ErrInvalidName:
		return ErrInvalid
	}
	return ErrIO
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Device() byte {
	return s.device.Letter()
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return ""
	}
	return s.file.Name()
}

// Raw reports whether the session operates without a schema.
func (s *Session) Raw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema == nil
}

func (s *Session) Schema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// LastError returns the code recorded by the most recently failed
// operation. It is not cleared by successful operations.
func (s *Session) LastError() Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) fail(c Code) error {
	s.lastErr = c
	return c
}

// Close flushes and releases the byte store and drops the schema binding.
// Closing twice reports NotOpen, it never crashes.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}

	err := s.file.Close()
	s.file = nil
	s.schema = nil
	s.records = nil
	s.loaded = nil
	s.pos = 0
	if err != nil {
		return s.fail(ErrIO)
	}

	return nil
}

// --- record building ---

// Clear resets the record buffer for building a new record.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Clear()
}

func (s *Session) resolve(name string) (schema.Field, error) {
	if s.schema == nil {
		return schema.Field{}, ErrField
	}
	field, ok := s.schema.Lookup(name)
	if !ok {
		return schema.Field{}, ErrField
	}
	return field, nil
}

// SetString stages a text value in the named field.
func (s *Session) SetString(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, err := s.resolve(name)
	if err != nil {
		return s.fail(ErrField)
	}
	return s.bufferCode(s.buffer.Set(field.Index, value))
}

// SetInt stages an integer in the named field, encoded as decimal text.
func (s *Session) SetInt(name string, value int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, err := s.resolve(name)
	if err != nil {
		return s.fail(ErrField)
	}
	return s.bufferCode(s.buffer.SetInt(field.Index, value))
}

// SetStringIndex stages a text value at the 1-based field index. The value
// is stored as-is regardless of the declared field type.
func (s *Session) SetStringIndex(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufferCode(s.buffer.Set(index, value))
}

// SetIntIndex stages an integer at the 1-based field index.
func (s *Session) SetIntIndex(index int, value int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bufferCode(s.buffer.SetInt(index, value))
}

func (s *Session) bufferCode(err error) error {
	switch err {
	case nil:
		return nil
	case record.ErrIndexRange:
		return s.fail(ErrField)
	case record.ErrIndexBackwards:
		return s.fail(ErrInvalid)
	}
	return s.fail(ErrInvalid)
}

// Append commits the record buffer as a new record at the end of the
// stream. The buffer is serialized and length-checked before any byte is
// written, so a failed append leaves the file untouched. The navigation
// position does not move.
func (s *Session) Append() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}

	line, err := s.buffer.Encode()
	if err != nil {
		return s.fail(ErrOverflow)
	}

	err = s.file.Append(line)
	if err != nil {
		return s.fail(ErrIO)
	}

	s.records = append(s.records, line)
	s.loaded = nil

	return nil
}

// --- record reading ---

// Read decodes the record at the current position so its fields can be
// extracted with the Get accessors.
func (s *Session) Read() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}
	if s.pos == 0 {
		return s.fail(ErrEOF)
	}

	raw := s.records[s.pos-1]
	s.loaded = record.Split(raw)
	s.loadedSize = len(raw)

	return nil
}

// GetString returns a field of the loaded record by name.
func (s *Session) GetString(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, err := s.resolve(name)
	if err != nil {
		return "", s.fail(ErrField)
	}
	return s.loadedField(field.Index)
}

// GetInt returns a field of the loaded record by name, decoded as an
// integer. Text that does not parse yields 0, not an error.
func (s *Session) GetInt(name string) (int16, error) {
	value, err := s.GetString(name)
	if err != nil {
		return 0, err
	}
	return record.DecodeInt(value), nil
}

// GetStringIndex returns a field of the loaded record by 1-based index.
func (s *Session) GetStringIndex(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedField(index)
}

// GetIntIndex returns a field by 1-based index, decoded as an integer.
func (s *Session) GetIntIndex(index int) (int16, error) {
	value, err := s.GetStringIndex(index)
	if err != nil {
		return 0, err
	}
	return record.DecodeInt(value), nil
}

func (s *Session) loadedField(index int) (string, error) {
	if index < 1 || index > len(s.loaded) {
		return "", s.fail(ErrField)
	}
	return s.loaded[index-1], nil
}

// FieldCount is the number of fields in the loaded record, 0 if none.
func (s *Session) FieldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loaded)
}

// RecSize is the encoded size of the loaded record, separators included,
// 0 if none.
func (s *Session) RecSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return 0
	}
	return s.loadedSize
}

// --- navigation ---

// First positions at the first record, or at end-of-file when the store is
// empty.
func (s *Session) First() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}

	s.loaded = nil
	if len(s.records) == 0 {
		s.pos = 0
		return s.fail(ErrEOF)
	}

	s.pos = 1
	return nil
}

// Next advances by one record. Moving past the last record parks the
// position at the end-of-file sentinel.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}

	s.loaded = nil
	if s.pos == 0 {
		return s.fail(ErrEOF)
	}
	if s.pos == len(s.records) {
		s.pos = 0
		return s.fail(ErrEOF)
	}

	s.pos++
	return nil
}

// Back moves to the previous record. From the end-of-file sentinel it
// re-enters the stream at the last record; at the first record it stays
// put and reports EOF.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}

	s.loaded = nil
	if s.pos == 0 {
		if len(s.records) == 0 {
			return s.fail(ErrEOF)
		}
		s.pos = len(s.records)
		return nil
	}
	if s.pos == 1 {
		return s.fail(ErrEOF)
	}

	s.pos--
	return nil
}

// Find scans forward from the current position (inclusive) for a record
// whose raw bytes contain the pattern, separators included. On a miss the
// position is left unchanged.
func (s *Session) Find(pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}
	if s.pos == 0 {
		return s.fail(ErrNotFound)
	}

	needle := []byte(pattern)
	for i := s.pos; i <= len(s.records); i++ {
		if bytes.Contains(s.records[i-1], needle) {
			s.pos = i
			s.loaded = nil
			return nil
		}
	}

	return s.fail(ErrNotFound)
}

// Peek decodes the record at the given 1-based position without moving the
// navigation position, the loaded record or the error register.
func (s *Session) Peek(pos int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil, ErrNotOpen
	}
	if pos < 1 || pos > len(s.records) {
		return nil, ErrEOF
	}
	return record.Split(s.records[pos-1]), nil
}

// EOF reports whether the position is the end-of-file sentinel.
func (s *Session) EOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos == 0
}

// Count returns the total number of stored records. It does not move the
// position.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Pos returns the 1-based index of the current record, 0 when unpositioned
// or at end-of-file.
func (s *Session) Pos() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// --- record modification ---

// Update replaces the record at the current position with the record
// buffer. Records are variable-length lines, so the replacement is an
// erase of the old record followed by an append: the record physically
// moves to the end of the stream and the position follows it there. Callers
// observe the relocation; it is part of the contract.
//
// The two storage operations are not atomic together. A device failure
// between them can lose the record; the engine surfaces that as an I/O
// error instead of masking it.
func (s *Session) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}
	if s.pos == 0 {
		return s.fail(ErrEOF)
	}

	line, err := s.buffer.Encode()
	if err != nil {
		return s.fail(ErrOverflow)
	}

	remaining := make([][]byte, 0, len(s.records))
	remaining = append(remaining, s.records[:s.pos-1]...)
	remaining = append(remaining, s.records[s.pos:]...)

	err = s.file.Rewrite(remaining)
	if err != nil {
		return s.fail(ErrIO)
	}
	s.records = remaining

	err = s.file.Append(line)
	if err != nil {
		s.pos = 0
		s.loaded = nil
		return s.fail(ErrIO)
	}

	s.records = append(s.records, line)
	s.pos = len(s.records)
	s.loaded = nil

	return nil
}

// Erase removes the record at the current position and compacts the
// stream. The position then refers to the record that moved into the
// vacated slot, or to end-of-file when the erased record was last.
func (s *Session) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return s.fail(ErrNotOpen)
	}
	if s.pos == 0 {
		return s.fail(ErrEOF)
	}

	remaining := make([][]byte, 0, len(s.records)-1)
	remaining = append(remaining, s.records[:s.pos-1]...)
	remaining = append(remaining, s.records[s.pos:]...)

	err := s.file.Rewrite(remaining)
	if err != nil {
		return s.fail(ErrIO)
	}

	s.records = remaining
	if s.pos > len(s.records) {
		s.pos = 0
	}
	s.loaded = nil

	return nil
}
