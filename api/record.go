package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/box"

	"github.com/datapak/datapak/schema"
	"github.com/datapak/datapak/service"
)

// clear resets the record buffer for building a new record.
func clear(ctx context.Context) error {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return err
	}

	session.Clear()
	return nil
}

type setRequest struct {
	Name  string      `json:"name,omitempty"`
	Index int         `json:"index,omitempty"`
	Value interface{} `json:"value"`
}

// set stages one field in the record buffer, by name or by 1-based index.
// A JSON number goes through the integer codec, a string is staged as-is.
func set(ctx context.Context, input *setRequest) error {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return err
	}

	byName := input.Name != ""

	switch value := input.Value.(type) {
	case string:
		if byName {
			return session.SetString(input.Name, value)
		}
		return session.SetStringIndex(input.Index, value)
	case float64:
		if byName {
			return session.SetInt(input.Name, int16(value))
		}
		return session.SetIntIndex(input.Index, int16(value))
	}

	return fmt.Errorf("value must be a string or a number")
}

// appendRecord commits the record buffer as a new record at the end of the
// stream.
func appendRecord(ctx context.Context) (*service.SessionInfo, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	err = session.Append()
	if err != nil {
		return nil, err
	}

	box.GetResponse(ctx).WriteHeader(http.StatusCreated)
	return s.SessionInfo()
}

type readResponse struct {
	Pos        int                    `json:"pos"`
	Fields     []string               `json:"fields"`
	Record     map[string]interface{} `json:"record,omitempty"`
	FieldCount int                    `json:"fieldCount"`
	RecSize    int                    `json:"recSize"`
}

// read loads the record at the current position and returns its decoded
// fields. Named schema fields are additionally returned as an object, with
// integer fields decoded.
func read(ctx context.Context) (*readResponse, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	err = session.Read()
	if err != nil {
		return nil, err
	}

	response := &readResponse{
		Pos:        session.Pos(),
		FieldCount: session.FieldCount(),
		RecSize:    session.RecSize(),
		Fields:     []string{},
	}

	for i := 1; i <= session.FieldCount(); i++ {
		value, err := session.GetStringIndex(i)
		if err != nil {
			return nil, err
		}
		response.Fields = append(response.Fields, value)
	}

	sch := session.Schema()
	if sch == nil {
		return response, nil
	}

	response.Record = map[string]interface{}{}
	for _, field := range sch.Fields() {
		if field.Name == "" || field.Index > session.FieldCount() {
			continue
		}
		if field.Type == schema.Integer {
			value, _ := session.GetIntIndex(field.Index)
			response.Record[field.Name] = value
			continue
		}
		value, _ := session.GetStringIndex(field.Index)
		response.Record[field.Name] = value
	}

	return response, nil
}

type getRequest struct {
	Name  string `json:"name,omitempty"`
	Index int    `json:"index,omitempty"`
}

type getResponse struct {
	Value interface{} `json:"value"`
}

// get extracts one field from the loaded record. Integer schema fields are
// decoded; everything else is returned as text.
func get(ctx context.Context, input *getRequest) (*getResponse, error) {

	s := getServicer(ctx)

	session, err := s.GetSession()
	if err != nil {
		return nil, err
	}

	sch := session.Schema()

	if input.Name != "" {
		if sch != nil {
			if field, ok := sch.Lookup(input.Name); ok && field.Type == schema.Integer {
				value, err := session.GetInt(input.Name)
				if err != nil {
					return nil, err
				}
				return &getResponse{Value: value}, nil
			}
		}
		value, err := session.GetString(input.Name)
		if err != nil {
			return nil, err
		}
		return &getResponse{Value: value}, nil
	}

	if sch != nil {
		if field, ok := sch.Field(input.Index); ok && field.Type == schema.Integer {
			value, err := session.GetIntIndex(input.Index)
			if err != nil {
				return nil, err
			}
			return &getResponse{Value: value}, nil
		}
	}

	value, err := session.GetStringIndex(input.Index)
	if err != nil {
		return nil, err
	}
	return &getResponse{Value: value}, nil
}
