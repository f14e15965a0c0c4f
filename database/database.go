package database

import (
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/pack"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

type Config struct {
	Dir     string
	Devices string // device letters to mount, e.g. "ABC"
}

// Database owns the mounted devices and the one session that may be open at
// a time. A second create/open while a session is active fails with
// Already; the constraint is an invariant of the engine, not an artifact to
// lift.
type Database struct {
	config   *Config
	logger   *zap.Logger
	status   string
	exit     chan struct{}
	exitOnce sync.Once

	mu      sync.Mutex
	devices map[byte]*pack.Device
	session *datafile.Session
	lastErr datafile.Code
}

func NewDatabase(config *Config, logger *zap.Logger) *Database {
	if config.Devices == "" {
		config.Devices = "ABC"
	}

	return &Database{
		config:  config,
		logger:  logger,
		status:  StatusOpening,
		exit:    make(chan struct{}),
		devices: map[byte]*pack.Device{},
	}
}

func (db *Database) GetStatus() string {
	return db.status
}

// Load mounts the configured devices, one directory per letter.
func (db *Database) Load() error {

	db.logger.Info("mounting devices",
		zap.String("dir", db.config.Dir),
		zap.String("devices", db.config.Devices),
	)

	for _, r := range strings.ToUpper(db.config.Devices) {
		letter := byte(r)
		device, err := pack.NewDevice(letter, path.Join(db.config.Dir, string(letter)))
		if err != nil {
			db.status = StatusClosing
			db.logger.Error("mount device failed",
				zap.String("device", string(letter)),
				zap.Error(err),
			)
			return err
		}

		catalog, err := device.Catalog()
		if err != nil {
			db.status = StatusClosing
			return err
		}
		db.logger.Info("device mounted",
			zap.String("device", string(letter)),
			zap.Int("files", len(catalog)),
		)

		db.devices[letter] = device
	}

	db.status = StatusOperating

	return nil
}

func (db *Database) Start() error {

	go db.Load()

	<-db.exit

	return nil
}

// Stop closes the session (if any) and releases Start. Stopping more than
// once is harmless: signal handlers may fire repeatedly.
func (db *Database) Stop() error {

	var err error

	db.exitOnce.Do(func() {
		defer close(db.exit)

		db.status = StatusClosing

		db.mu.Lock()
		defer db.mu.Unlock()

		if db.session == nil {
			return
		}

		db.logger.Info("closing session",
			zap.String("file", db.session.Name()),
		)
		err = db.session.Close()
		db.session = nil
		if err != nil {
			db.logger.Error("close session failed", zap.Error(err))
		}
	})

	return err
}

// Devices returns the mounted device letters, in mount order.
func (db *Database) Devices() []byte {
	letters := []byte{}
	for _, r := range strings.ToUpper(db.config.Devices) {
		if _, ok := db.devices[byte(r)]; ok {
			letters = append(letters, byte(r))
		}
	}
	return letters
}

func (db *Database) Device(letter byte) (*pack.Device, error) {
	device, ok := db.devices[normalizeLetter(letter)]
	if !ok {
		return nil, datafile.ErrInvalid
	}
	return device, nil
}

func normalizeLetter(letter byte) byte {
	if letter >= 'a' && letter <= 'z' {
		return letter - 'a' + 'A'
	}
	return letter
}

// CreateFile creates an empty data file and opens a session on it.
func (db *Database) CreateFile(letter byte, name, schema string) (*datafile.Session, error) {
	return db.openSession(letter, name, schema, datafile.Create)
}

// OpenFile opens a session on an existing data file.
func (db *Database) OpenFile(letter byte, name, schema string) (*datafile.Session, error) {
	return db.openSession(letter, name, schema, datafile.Open)
}

func (db *Database) openSession(letter byte, name, schema string, open func(*pack.Device, string, string) (*datafile.Session, error)) (*datafile.Session, error) {

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.session != nil {
		db.lastErr = datafile.ErrAlready
		return nil, datafile.ErrAlready
	}

	device, err := db.Device(letter)
	if err != nil {
		db.lastErr = datafile.AsCode(err)
		return nil, err
	}

	session, err := open(device, name, schema)
	if err != nil {
		db.lastErr = datafile.AsCode(err)
		return nil, err
	}

	db.logger.Info("session opened",
		zap.String("device", string(device.Letter())),
		zap.String("file", session.Name()),
		zap.Bool("raw", session.Raw()),
		zap.String("session", session.ID().String()),
	)

	db.session = session

	return session, nil
}

// Session returns the active session, or nil.
func (db *Database) Session() *datafile.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.session
}

// CloseSession closes the active session, releasing the single-session
// slot. Closing with no session open reports NotOpen.
func (db *Database) CloseSession() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.session == nil {
		db.lastErr = datafile.ErrNotOpen
		return datafile.ErrNotOpen
	}

	err := db.session.Close()
	db.session = nil
	if err != nil {
		db.lastErr = datafile.AsCode(err)
		return err
	}

	return nil
}

// LastError mirrors the most recent failure, for diagnostics when a
// create/open fails before any session exists.
func (db *Database) LastError() datafile.Code {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.session != nil && db.session.LastError() != datafile.OK {
		return db.session.LastError()
	}
	return db.lastErr
}
