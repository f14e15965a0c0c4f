package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/datapak/datapak/database"
	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/service"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Code        int    `json:"code"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
			Code        int    `json:"code"`
		}{
			p.Message,
			p.Description,
			p.Code,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening {
				box.SetError(ctx, fmt.Errorf("temporary unavailable: opening"))
				return
			}
			if status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("temporary unavailable: closing"))
				return
			}
			next(ctx)
		}
	}
}

// codeStatus maps engine result codes to HTTP statuses.
func codeStatus(c datafile.Code) int {
	switch c {
	case datafile.ErrNotFound, datafile.ErrEOF:
		return http.StatusNotFound
	case datafile.ErrExists, datafile.ErrAlready, datafile.ErrNotOpen:
		return http.StatusConflict
	case datafile.ErrInvalid, datafile.ErrField, datafile.ErrTypeMismatch:
		return http.StatusBadRequest
	case datafile.ErrOverflow, datafile.ErrFull:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		if c, ok := err.(datafile.Code); ok {
			w.WriteHeader(codeStatus(c))
			PrettyError{
				Message:     c.Error(),
				Description: "engine error, see code",
				Code:        int(c),
			}.MarshalTo(w)
			return
		}

		if err == service.ErrorNoSession {
			w.WriteHeader(http.StatusConflict)
			PrettyError{
				Message:     err.Error(),
				Description: "open a session first (POST /v1/session)",
				Code:        int(datafile.ErrNotOpen),
			}.MarshalTo(w)
			return
		}

		if err == box.ErrResourceNotFound {
			w.WriteHeader(http.StatusNotFound)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()),
			}.MarshalTo(w)
			return
		}

		if err == box.ErrMethodNotAllowed {
			w.WriteHeader(http.StatusMethodNotAllowed)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method),
			}.MarshalTo(w)
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			w.WriteHeader(http.StatusBadRequest)
			PrettyError{
				Message:     err.Error(),
				Description: "Malformed JSON",
			}.MarshalTo(w)
			return
		}

		w.WriteHeader(http.StatusBadRequest)
		PrettyError{
			Message:     err.Error(),
			Description: "Unexpected error",
		}.MarshalTo(w)
	}
}
