package api

import (
	"context"

	"github.com/datapak/datapak/datafile"
)

type navigationResponse struct {
	Pos  int  `json:"pos"`
	Eof  bool `json:"eof"`
	Code int  `json:"code"`
}

// Reaching the end (or the beginning) of the stream is a normal navigation
// outcome, not an HTTP error: it is reported in the response code field.
func navigate(ctx context.Context, move func(*datafile.Session) error) (*navigationResponse, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	code := datafile.OK
	err = move(session)
	if err != nil {
		c := datafile.AsCode(err)
		if c != datafile.ErrEOF {
			return nil, err
		}
		code = c
	}

	return &navigationResponse{
		Pos:  session.Pos(),
		Eof:  session.EOF(),
		Code: int(code),
	}, nil
}

func first(ctx context.Context) (*navigationResponse, error) {
	return navigate(ctx, (*datafile.Session).First)
}

func next(ctx context.Context) (*navigationResponse, error) {
	return navigate(ctx, (*datafile.Session).Next)
}

func back(ctx context.Context) (*navigationResponse, error) {
	return navigate(ctx, (*datafile.Session).Back)
}
