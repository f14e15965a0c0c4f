package schema

import (
	"fmt"
	"strings"
)

// Field declarations follow the OPL suffix convention: `name$` is a text
// field, `name%` is a 16-bit integer field. Names are optional, so `$,$,%`
// declares three anonymous fields reachable by index only.

const (
	MaxFields  = 16
	MaxNameLen = 8
)

type FieldType byte

const (
	Text    FieldType = '$'
	Integer FieldType = '%'
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	}
	return fmt.Sprintf("unknown(%c)", byte(t))
}

// Field is one column of a record. Index is 1-based, matching OPL.
type Field struct {
	Name  string
	Type  FieldType
	Index int
}

// Schema is the ordered field table bound to a session at create/open time.
// It is parsed once and never mutated afterwards. Field names are a local
// convenience: they are not persisted in the data file, only order and type
// travel with the bytes.
type Schema struct {
	fields []Field
	byName map[string]int // lowercased name -> 1-based index
}

// Parse turns a comma-separated declaration like "name$,phone$,age%" into a
// field table. Each token must end with a type suffix; everything before the
// suffix is the field name (possibly empty).
func Parse(definition string) (*Schema, error) {

	tokens := strings.Split(definition, ",")
	if len(tokens) > MaxFields {
		return nil, fmt.Errorf("too many fields: %d (max %d)", len(tokens), MaxFields)
	}

	s := &Schema{
		byName: map[string]int{},
	}

	for i, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("field %d: missing type suffix", i+1)
		}

		suffix := FieldType(token[len(token)-1])
		if suffix != Text && suffix != Integer {
			return nil, fmt.Errorf("field %d: '%s' has no type suffix ($ or %%)", i+1, token)
		}

		name := token[:len(token)-1]
		if len(name) > MaxNameLen {
			return nil, fmt.Errorf("field %d: name '%s' exceeds %d characters", i+1, name, MaxNameLen)
		}

		field := Field{
			Name:  name,
			Type:  suffix,
			Index: i + 1,
		}
		s.fields = append(s.fields, field)

		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := s.byName[key]; exists {
			return nil, fmt.Errorf("field %d: duplicated name '%s'", i+1, name)
		}
		s.byName[key] = field.Index
	}

	return s, nil
}

func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Field returns the descriptor at the 1-based index.
func (s *Schema) Field(index int) (Field, bool) {
	if index < 1 || index > len(s.fields) {
		return Field{}, false
	}
	return s.fields[index-1], true
}

// Lookup resolves a field by name. Names are case-insensitive, as in OPL.
func (s *Schema) Lookup(name string) (Field, bool) {
	index, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return s.fields[index-1], true
}

func (s *Schema) Fields() []Field {
	return s.fields
}

// String reassembles the declaration, normalized.
func (s *Schema) String() string {
	tokens := make([]string, len(s.fields))
	for i, f := range s.fields {
		tokens[i] = f.Name + string(f.Type)
	}
	return strings.Join(tokens, ",")
}
