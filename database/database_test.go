package database

import (
	"testing"

	. "github.com/fulldump/biff"
	"go.uber.org/zap"

	"github.com/datapak/datapak/datafile"
)

func newTestDatabase(t *testing.T) *Database {
	db := NewDatabase(&Config{
		Dir:     t.TempDir(),
		Devices: "AB",
	}, zap.NewNop())
	AssertNil(db.Load())
	AssertEqual(db.GetStatus(), StatusOperating)
	return db
}

func TestLoadMountsDevices(t *testing.T) {
	db := newTestDatabase(t)

	AssertEqual(db.Devices(), []byte{'A', 'B'})

	_, err := db.Device('a') // letters fold to uppercase
	AssertNil(err)

	_, err = db.Device('Z')
	AssertEqual(err, datafile.ErrInvalid)
}

func TestSingleSession(t *testing.T) {
	db := newTestDatabase(t)

	s, err := db.CreateFile('A', "CONTACTS", "name$,age%")
	AssertNil(err)
	AssertEqual(db.Session(), s)

	_, err = db.CreateFile('B', "OTHER", "x$")
	AssertEqual(err, datafile.ErrAlready)

	_, err = db.OpenFile('A', "CONTACTS", "name$,age%")
	AssertEqual(err, datafile.ErrAlready)

	AssertNil(db.CloseSession())
	AssertNil(db.Session())

	AssertEqual(db.CloseSession(), datafile.ErrNotOpen)
}

func TestReopenKeepsRecords(t *testing.T) {
	db := newTestDatabase(t)

	s, err := db.CreateFile('A', "KEEP", "name$")
	AssertNil(err)

	s.Clear()
	AssertNil(s.SetString("name", "Alice"))
	AssertNil(s.Append())
	AssertNil(db.CloseSession())

	s, err = db.OpenFile('A', "KEEP", "name$")
	AssertNil(err)
	AssertEqual(s.Count(), 1)
	AssertNil(db.CloseSession())
}

func TestStopTwice(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.CreateFile('A', "OPEN", "name$")
	AssertNil(err)

	AssertNil(db.Stop())
	AssertEqual(db.GetStatus(), StatusClosing)

	// a second signal must not panic on the closed exit channel
	AssertNil(db.Stop())
}

func TestLastError(t *testing.T) {
	db := newTestDatabase(t)

	AssertEqual(db.LastError(), datafile.OK)

	_, err := db.OpenFile('A', "NOPE", "name$")
	AssertEqual(err, datafile.ErrNotFound)
	AssertEqual(db.LastError(), datafile.ErrNotFound)

	// the session's register takes over once a session exists
	s, err := db.CreateFile('A', "ERRS", "name$")
	AssertNil(err)
	AssertEqual(s.SetString("nope", "x"), datafile.ErrField)
	AssertEqual(db.LastError(), datafile.ErrField)
}
