package service

import (
	"errors"
	"fmt"

	"github.com/datapak/datapak/database"
	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/pack"
)

var (
	ErrorNoSession     = errors.New("no session is open")
	ErrorInvalidDevice = errors.New("invalid device")
	ErrorInvalidMode   = errors.New("invalid mode, must be 'create' or 'open'")
)

type OpenRequest struct {
	Device string `json:"device"`
	Name   string `json:"name"`
	Schema string `json:"schema"`
	Mode   string `json:"mode"` // "create" or "open"
}

type SessionInfo struct {
	Id      string `json:"id"`
	Device  string `json:"device"`
	Name    string `json:"name"`
	Schema  string `json:"schema,omitempty"`
	Raw     bool   `json:"raw"`
	Records int    `json:"records"`
	Pos     int    `json:"pos"`
	Eof     bool   `json:"eof"`
}

type DeviceInfo struct {
	Device string `json:"device"`
	Files  int    `json:"files"`
}

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

func deviceLetter(device string) (byte, error) {
	if len(device) != 1 {
		return 0, ErrorInvalidDevice
	}
	return device[0], nil
}

func (s *Service) OpenSession(req *OpenRequest) (*SessionInfo, error) {

	letter, err := deviceLetter(req.Device)
	if err != nil {
		return nil, err
	}

	var session *datafile.Session
	switch req.Mode {
	case "create":
		session, err = s.db.CreateFile(letter, req.Name, req.Schema)
	case "open", "":
		session, err = s.db.OpenFile(letter, req.Name, req.Schema)
	default:
		return nil, ErrorInvalidMode
	}
	if err != nil {
		return nil, err
	}

	return s.info(session), nil
}

func (s *Service) info(session *datafile.Session) *SessionInfo {
	info := &SessionInfo{
		Id:      session.ID().String(),
		Device:  string(session.Device()),
		Name:    session.Name(),
		Raw:     session.Raw(),
		Records: session.Count(),
		Pos:     session.Pos(),
		Eof:     session.EOF(),
	}
	if sch := session.Schema(); sch != nil {
		info.Schema = sch.String()
	}
	return info
}

func (s *Service) GetSession() (*datafile.Session, error) {
	session := s.db.Session()
	if session == nil {
		return nil, ErrorNoSession
	}
	return session, nil
}

func (s *Service) SessionInfo() (*SessionInfo, error) {
	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}
	return s.info(session), nil
}

func (s *Service) CloseSession() error {
	if s.db.Session() == nil {
		return ErrorNoSession
	}
	return s.db.CloseSession()
}

func (s *Service) LastError() datafile.Code {
	return s.db.LastError()
}

func (s *Service) ListDevices() []DeviceInfo {
	result := []DeviceInfo{}
	for _, letter := range s.db.Devices() {
		device, err := s.db.Device(letter)
		if err != nil {
			continue
		}
		catalog, err := device.Catalog()
		if err != nil {
			continue
		}
		result = append(result, DeviceInfo{
			Device: string(letter),
			Files:  len(catalog),
		})
	}
	return result
}

func (s *Service) Catalog(device string) ([]pack.Info, error) {
	letter, err := deviceLetter(device)
	if err != nil {
		return nil, err
	}
	d, err := s.db.Device(letter)
	if err != nil {
		return nil, ErrorInvalidDevice
	}
	return d.Catalog()
}

func (s *Service) RemoveFile(device, name string) error {
	letter, err := deviceLetter(device)
	if err != nil {
		return err
	}
	d, err := s.db.Device(letter)
	if err != nil {
		return ErrorInvalidDevice
	}

	if session := s.db.Session(); session != nil {
		normalized, err := pack.NormalizeName(name)
		if err == nil && session.Device() == d.Letter() && session.Name() == normalized {
			return fmt.Errorf("file '%s' is open", name)
		}
	}

	return d.Remove(name)
}
