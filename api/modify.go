package api

import (
	"context"

	"github.com/datapak/datapak/service"
)

// update replaces the record at the current position with the record
// buffer. The record physically relocates to the end of the stream and the
// position follows it; the response reflects the new position.
func update(ctx context.Context) (*service.SessionInfo, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	err = session.Update()
	if err != nil {
		return nil, err
	}

	return s.SessionInfo()
}

// erase removes the record at the current position and compacts the
// stream.
func erase(ctx context.Context) (*service.SessionInfo, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	err = session.Erase()
	if err != nil {
		return nil, err
	}

	return s.SessionInfo()
}
