package datafile

// Code is the stable result code shared with the companion OPL interpreter.
// The numeric values are part of the contract: diagnostic tooling on either
// side relies on them.
type Code int

const (
	OK              Code = 0
	ErrNotFound     Code = 1  // file or record not found
	ErrExists       Code = 2  // file already exists
	ErrFull         Code = 3  // pack full or record too large
	ErrIO           Code = 4  // device I/O failure
	ErrInvalid      Code = 5  // invalid parameter
	ErrNotOpen      Code = 6  // no file is open
	ErrAlready      Code = 7  // a file is already open
	ErrEOF          Code = 8  // end of file / no current record
	ErrOverflow     Code = 9  // record buffer overflow (>254 bytes)
	ErrTypeMismatch Code = 10 // type mismatch in schema
	ErrField        Code = 11 // invalid field index or name not found
)

var codeNames = map[Code]string{
	OK:              "ok",
	ErrNotFound:     "not found",
	ErrExists:       "already exists",
	ErrFull:         "full",
	ErrIO:           "io error",
	ErrInvalid:      "invalid",
	ErrNotOpen:      "not open",
	ErrAlready:      "already open",
	ErrEOF:          "end of file",
	ErrOverflow:     "record overflow",
	ErrTypeMismatch: "type mismatch",
	ErrField:        "field not found",
}

func (c Code) Error() string {
	name, ok := codeNames[c]
	if !ok {
		return "unknown error"
	}
	return name
}

// AsCode maps any error produced by the engine back to its stable code.
// Errors that are not Codes report as I/O failures.
func AsCode(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	return ErrIO
}
