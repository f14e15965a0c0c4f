package datafile

import (
	"strings"
	"sync"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/datapak/datapak/pack"
)

func appendContact(s *Session, name, phone string, age int16) {
	s.Clear()
	AssertNil(s.SetString("name", name))
	AssertNil(s.SetString("phone", phone))
	AssertNil(s.SetInt("age", age))
	AssertNil(s.Append())
}

func TestAppendAndReadBack(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, err := Create(device, "CONTACTS", "name$,phone$,age%")
		AssertNil(err)
		defer s.Close()

		appendContact(s, "Alice", "555-0001", 30)

		AssertEqual(s.Count(), 1)
		AssertEqual(s.Pos(), 0) // append does not move the position

		AssertNil(s.First())
		AssertNil(s.Read())

		name, err := s.GetString("name")
		AssertNil(err)
		AssertEqual(name, "Alice")

		age, err := s.GetInt("age")
		AssertNil(err)
		AssertEqual(age, int16(30))

		phone, err := s.GetStringIndex(2)
		AssertNil(err)
		AssertEqual(phone, "555-0001")

		AssertEqual(s.FieldCount(), 3)
		AssertEqual(s.RecSize(), len("Alice\t555-0001\t30"))
	})
}

func TestGapFill(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "GAPS", "a$,b$,c$")
		defer s.Close()

		s.Clear()
		AssertNil(s.SetStringIndex(3, "x"))
		AssertNil(s.Append())

		AssertNil(s.First())
		AssertNil(s.Read())

		AssertEqual(s.FieldCount(), 3)
		a, _ := s.GetStringIndex(1)
		b, _ := s.GetStringIndex(2)
		c, _ := s.GetStringIndex(3)
		AssertEqual(a, "")
		AssertEqual(b, "")
		AssertEqual(c, "x")
	})
}

func TestLowerIndexRejected(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "ORDER", "a$,b$,c$")
		defer s.Close()

		s.Clear()
		AssertNil(s.SetStringIndex(2, "b"))
		AssertEqual(s.SetStringIndex(1, "a"), ErrInvalid)
		AssertNil(s.SetStringIndex(2, "again")) // highest index can be replaced
	})
}

func TestNavigation(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "NAV", "name$")
		defer s.Close()

		for _, name := range []string{"one", "two", "three"} {
			s.Clear()
			s.SetString("name", name)
			AssertNil(s.Append())
		}

		AssertNil(s.First())
		AssertEqual(s.Pos(), 1)
		AssertNil(s.Next())
		AssertEqual(s.Pos(), 2)
		AssertNil(s.Next())
		AssertEqual(s.Pos(), 3)

		// past the last record: park at end-of-file
		AssertEqual(s.Next(), ErrEOF)
		AssertEqual(s.Pos(), 0)
		AssertEqual(s.EOF(), true)

		// back from end-of-file re-enters at the last record
		AssertNil(s.Back())
		AssertEqual(s.Pos(), 3)

		AssertNil(s.Back())
		AssertNil(s.Back())
		AssertEqual(s.Pos(), 1)

		// back at the first record stays put
		AssertEqual(s.Back(), ErrEOF)
		AssertEqual(s.Pos(), 1)
	})
}

func TestEmptyFileNavigation(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "EMPTY", "name$")
		defer s.Close()

		AssertEqual(s.EOF(), true)
		AssertEqual(s.First(), ErrEOF)
		AssertEqual(s.Back(), ErrEOF)
		AssertEqual(s.Read(), ErrEOF)
		AssertEqual(s.Count(), 0)
	})
}

func TestFind(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "CONTACTS", "name$,phone$,age%")
		defer s.Close()

		appendContact(s, "Alice", "555-0001", 30)
		appendContact(s, "Bob", "555-0002", 25)
		appendContact(s, "Charlie", "555-0003", 35)

		AssertNil(s.First())
		AssertNil(s.Find("Bob"))
		AssertEqual(s.Pos(), 2)

		// inclusive: the current record itself matches
		AssertNil(s.Find("Bob"))
		AssertEqual(s.Pos(), 2)

		// matches anywhere in the raw bytes, phone numbers included
		AssertNil(s.First())
		AssertNil(s.Find("0003"))
		AssertEqual(s.Pos(), 3)

		// a miss leaves the position unchanged
		AssertNil(s.First())
		AssertEqual(s.Find("Zephyr"), ErrNotFound)
		AssertEqual(s.Pos(), 1)

		// no match behind the current position
		AssertNil(s.First())
		AssertNil(s.Next())
		AssertNil(s.Next())
		AssertEqual(s.Find("Alice"), ErrNotFound)
		AssertEqual(s.Pos(), 3)
	})
}

func TestOverflowLeavesFileUntouched(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "BIG", "text$")
		defer s.Close()

		s.Clear()
		AssertNil(s.SetString("text", strings.Repeat("x", 255)))
		AssertEqual(s.Append(), ErrOverflow)
		AssertEqual(s.Count(), 0)
		AssertEqual(s.LastError(), ErrOverflow)

		// a record of exactly the maximum size is fine
		s.Clear()
		AssertNil(s.SetString("text", strings.Repeat("x", 254)))
		AssertNil(s.Append())
		AssertEqual(s.Count(), 1)
	})
}

func TestUpdateRelocates(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "CONTACTS", "name$,phone$,age%")
		defer s.Close()

		appendContact(s, "Alice", "555-0001", 30)
		appendContact(s, "Bob", "555-0002", 25)
		appendContact(s, "Charlie", "555-0003", 35)

		AssertNil(s.First())
		s.Clear()
		s.SetString("name", "Alice")
		s.SetString("phone", "555-0001")
		s.SetInt("age", 31)
		AssertNil(s.Update())

		// the updated record moved to the end of the stream
		AssertEqual(s.Count(), 3)
		AssertEqual(s.Pos(), 3)

		AssertNil(s.Read())
		age, _ := s.GetInt("age")
		AssertEqual(age, int16(31))

		AssertNil(s.First())
		AssertNil(s.Read())
		name, _ := s.GetString("name")
		AssertEqual(name, "Bob")
	})
}

func TestErase(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "CONTACTS", "name$,phone$,age%")
		defer s.Close()

		appendContact(s, "Alice", "555-0001", 30)
		appendContact(s, "Bob", "555-0002", 25)
		appendContact(s, "Charlie", "555-0003", 35)

		// erase in the middle: position refers to the successor
		AssertNil(s.First())
		AssertNil(s.Next())
		AssertNil(s.Erase())
		AssertEqual(s.Count(), 2)
		AssertEqual(s.Pos(), 2)
		AssertNil(s.Read())
		name, _ := s.GetString("name")
		AssertEqual(name, "Charlie")

		// erase the last record: position parks at end-of-file
		AssertNil(s.Erase())
		AssertEqual(s.Count(), 1)
		AssertEqual(s.Pos(), 0)
		AssertEqual(s.EOF(), true)

		AssertNil(s.First())
		AssertNil(s.Erase())
		AssertEqual(s.Count(), 0)
		AssertEqual(s.EOF(), true)
	})
}

func TestSession_Append_Concurrency(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "RACE", "name$")
		defer s.Close()

		n := 100

		wg := &sync.WaitGroup{}
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Clear()
				s.SetString("name", "Alice")
				s.Append()
			}()
		}

		wg.Wait()

		AssertEqual(s.Count(), n)
	})
}

func TestSession_Navigation_Concurrency(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "RACE2", "name$")
		defer s.Close()

		for i := 0; i < 10; i++ {
			s.Clear()
			s.SetString("name", "x")
			AssertNil(s.Append())
		}

		wg := &sync.WaitGroup{}
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.First()
				for s.Next() == nil {
					s.Read()
					s.GetString("name")
				}
				s.Find("x")
				s.Count()
				s.Peek(1)
			}()
		}

		wg.Wait()

		AssertEqual(s.Count(), 10)
	})
}

func TestCountDoesNotMove(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "COUNT", "name$")
		defer s.Close()

		for i := 0; i < 3; i++ {
			s.Clear()
			s.SetStringIndex(1, "x")
			s.Append()
		}

		AssertNil(s.First())
		AssertNil(s.Next())
		AssertEqual(s.Count(), 3)
		AssertEqual(s.Count(), 3)
		AssertEqual(s.Pos(), 2)
	})
}

func TestPersistence(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "KEEP", "name$,age%")
		appendContact2 := func(name string, age int16) {
			s.Clear()
			s.SetString("name", name)
			s.SetInt("age", age)
			AssertNil(s.Append())
		}
		appendContact2("Alice", 30)
		appendContact2("Bob", 25)
		AssertNil(s.Close())

		s, err := Open(device, "KEEP", "name$,age%")
		AssertNil(err)
		defer s.Close()

		AssertEqual(s.Count(), 2)
		AssertEqual(s.Pos(), 1)
		AssertNil(s.Read())
		name, _ := s.GetString("name")
		AssertEqual(name, "Alice")
	})
}

func TestRawMode(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, err := Create(device, "RAW", "")
		AssertNil(err)
		defer s.Close()

		AssertEqual(s.Raw(), true)

		s.Clear()
		AssertNil(s.SetStringIndex(1, "free"))
		AssertNil(s.SetStringIndex(2, "form"))
		AssertNil(s.Append())

		// named access has no schema to resolve against
		AssertEqual(s.SetString("name", "x"), ErrField)
		AssertEqual(s.LastError(), ErrField)

		AssertNil(s.First())
		AssertNil(s.Read())
		_, err = s.GetString("name")
		AssertEqual(err, ErrField)

		value, err := s.GetStringIndex(2)
		AssertNil(err)
		AssertEqual(value, "form")
	})
}

func TestLastErrorRegister(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "ERRS", "name$")
		defer s.Close()

		AssertEqual(s.LastError(), OK)

		AssertEqual(s.SetString("nope", "x"), ErrField)
		AssertEqual(s.LastError(), ErrField)

		// success does not clear the register
		AssertNil(s.SetString("name", "x"))
		AssertEqual(s.LastError(), ErrField)

		AssertEqual(s.First(), ErrEOF)
		AssertEqual(s.LastError(), ErrEOF)
	})
}

func TestCloseTwice(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "TWICE", "name$")

		AssertNil(s.Close())
		AssertEqual(s.Close(), ErrNotOpen)
	})
}

func TestInvalidSchema(t *testing.T) {
	Environment(func(device *pack.Device) {

		_, err := Create(device, "BAD", "name")
		AssertEqual(err, ErrInvalid)

		// nothing was created on the device
		AssertEqual(device.Exists("BAD"), false)
	})
}

func TestTypeMismatchDecodesZero(t *testing.T) {
	Environment(func(device *pack.Device) {

		s, _ := Create(device, "TYPES", "name$,age%")
		defer s.Close()

		s.Clear()
		s.SetString("name", "Alice")
		s.SetString("age", "not a number")
		AssertNil(s.Append())

		AssertNil(s.First())
		AssertNil(s.Read())
		age, err := s.GetInt("age")
		AssertNil(err)
		AssertEqual(age, int16(0))
	})
}
