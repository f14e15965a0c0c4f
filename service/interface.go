package service

import (
	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/pack"
)

// Servicer is the surface the API is built on.
type Servicer interface {
	OpenSession(req *OpenRequest) (*SessionInfo, error)
	GetSession() (*datafile.Session, error)
	SessionInfo() (*SessionInfo, error)
	CloseSession() error
	LastError() datafile.Code

	ListDevices() []DeviceInfo
	Catalog(device string) ([]pack.Info, error)
	RemoveFile(device, name string) error
}
