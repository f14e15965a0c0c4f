package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/service"
)

func openSession(ctx context.Context, input *service.OpenRequest) (*service.SessionInfo, error) {

	s := getServicer(ctx)

	info, err := s.OpenSession(input)
	if err != nil {
		return nil, err
	}

	box.GetResponse(ctx).WriteHeader(http.StatusCreated)
	return info, nil
}

func getSession(ctx context.Context) (*service.SessionInfo, error) {

	s := getServicer(ctx)

	return s.SessionInfo()
}

func closeSession(ctx context.Context) error {

	s := getServicer(ctx)

	return s.CloseSession()
}

type lastErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// lastError exposes the session's error register. It reports the most
// recent failure and is not cleared by successful operations.
func lastError(ctx context.Context) (*lastErrorResponse, error) {

	s := getServicer(ctx)

	code := s.LastError()
	message := ""
	if code != datafile.OK {
		message = code.Error()
	}

	return &lastErrorResponse{
		Code:    int(code),
		Message: message,
	}, nil
}
