package pack

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/google/btree"
)

// A Device is one lettered storage pack ('A' is internal memory, 'B' and 'C'
// are the slots) mapped onto a directory. It owns the catalog of data files
// on the pack and hands out sequential byte stores for them.

var (
	ErrNotFound    = errors.New("file not found")
	ErrExists      = errors.New("file already exists")
	ErrInvalidName = errors.New("invalid file name")
)

const maxFileName = 8

type Device struct {
	letter byte
	dir    string

	mu      sync.Mutex
	catalog *btree.BTreeG[string]
}

func NewDevice(letter byte, dir string) (*Device, error) {
	if letter < 'A' || letter > 'Z' {
		return nil, fmt.Errorf("invalid device letter '%c'", letter)
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create device directory: %w", err)
	}

	d := &Device{
		letter:  letter,
		dir:     dir,
		catalog: btree.NewOrderedG[string](2),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read device directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		d.catalog.ReplaceOrInsert(entry.Name())
	}

	return d, nil
}

func (d *Device) Letter() byte {
	return d.letter
}

// NormalizeName validates a data file name (1 to 8 letters or digits) and
// folds it to uppercase, so C and OPL programs agree on what the file is
// called.
func NormalizeName(name string) (string, error) {
	if len(name) < 1 || len(name) > maxFileName {
		return "", ErrInvalidName
	}
	normalized := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			normalized[i] = c
		case c >= 'a' && c <= 'z':
			normalized[i] = c - 'a' + 'A'
		default:
			return "", ErrInvalidName
		}
	}
	return string(normalized), nil
}

func (d *Device) Exists(name string) bool {
	name, err := NormalizeName(name)
	if err != nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Has(name)
}

// Create makes an empty data file and returns its open byte store.
func (d *Device) Create(name string) (*File, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.catalog.Has(name) {
		return nil, ErrExists
	}

	f, err := openFile(name, path.Join(d.dir, name))
	if err != nil {
		return nil, err
	}

	d.catalog.ReplaceOrInsert(name)

	return f, nil
}

// Open returns the byte store of an existing data file.
func (d *Device) Open(name string) (*File, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.catalog.Has(name) {
		return nil, ErrNotFound
	}

	return openFile(name, path.Join(d.dir, name))
}

// Remove deletes a data file from the pack.
func (d *Device) Remove(name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.catalog.Has(name) {
		return ErrNotFound
	}

	err = os.Remove(path.Join(d.dir, name))
	if err != nil {
		return fmt.Errorf("remove '%s': %w", name, err)
	}

	d.catalog.Delete(name)

	return nil
}

// Info describes one catalog entry.
type Info struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Catalog lists the data files on the pack, ordered by name.
func (d *Device) Catalog() ([]Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := []Info{}
	var firstErr error
	d.catalog.Ascend(func(name string) bool {
		stat, err := os.Stat(path.Join(d.dir, name))
		if err != nil {
			firstErr = err
			return false
		}
		result = append(result, Info{Name: name, Size: stat.Size()})
		return true
	})
	if firstErr != nil {
		return nil, fmt.Errorf("stat catalog entry: %w", firstErr)
	}

	return result, nil
}
