package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SierraSoftworks/connor"
	"github.com/fulldump/box"

	"github.com/datapak/datapak/datafile"
	"github.com/datapak/datapak/record"
	"github.com/datapak/datapak/schema"
	"github.com/datapak/datapak/utils"
)

func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	input := struct {
		Mode string
	}{
		Mode: "substring",
	}
	err = json.Unmarshal(requestBody, &input)
	if err != nil {
		return err
	}

	f, exist := findModes[input.Mode]
	if !exist {
		box.GetResponse(ctx).WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("bad mode '%s', must be [%s]", input.Mode, strings.Join(utils.GetKeys(findModes), "|"))
	}

	s := getServicer(ctx)
	session, err := s.GetSession()
	if err != nil {
		return err
	}

	return f(requestBody, session, w)
}

var findModes = map[string]func(input []byte, session *datafile.Session, w http.ResponseWriter) error{
	"substring": findSubstring,
	"filter":    findFilter,
}

type findResult struct {
	Found bool `json:"found"`
	Pos   int  `json:"pos"`
	Code  int  `json:"code"`
}

// findSubstring is the engine's native search: a forward scan from the
// current position for a record whose raw bytes contain the pattern. On a
// hit the position moves to the matching record.
func findSubstring(input []byte, session *datafile.Session, w http.ResponseWriter) error {

	params := struct {
		Pattern string
	}{}
	err := json.Unmarshal(input, &params)
	if err != nil {
		return err
	}

	result := findResult{Found: true}
	err = session.Find(params.Pattern)
	if err != nil {
		c := datafile.AsCode(err)
		if c != datafile.ErrNotFound {
			return err
		}
		result.Found = false
		result.Code = int(c)
	}
	result.Pos = session.Pos()

	return json.NewEncoder(w).Encode(result)
}

// findFilter is an HTTP-surface convenience on top of the same linear scan:
// records are decoded through the schema into objects and matched against a
// connor filter. It does not move the session position.
func findFilter(input []byte, session *datafile.Session, w http.ResponseWriter) error {

	params := &struct {
		Filter map[string]interface{}
		Skip   int64
		Limit  int64
	}{
		Filter: map[string]interface{}{},
		Skip:   0,
		Limit:  1,
	}
	err := json.Unmarshal(input, params)
	if err != nil {
		return err
	}

	sch := session.Schema()
	if sch == nil {
		return fmt.Errorf("filter mode needs a schema, the session is in raw mode")
	}

	jsonWriter := json.NewEncoder(w)

	skip := params.Skip
	limit := params.Limit
	for pos := 1; pos <= session.Count(); pos++ {

		if limit == 0 {
			break
		}

		row, err := decodeRow(session, sch, pos)
		if err != nil {
			return err
		}

		match, err := connor.Match(params.Filter, row)
		if err != nil {
			return fmt.Errorf("match: %w", err)
		}
		if !match {
			continue
		}

		if skip > 0 {
			skip--
			continue
		}

		limit--
		jsonWriter.Encode(map[string]interface{}{
			"pos":    pos,
			"record": row,
		})
	}

	return nil
}

func decodeRow(session *datafile.Session, sch *schema.Schema, pos int) (map[string]interface{}, error) {

	fields, err := session.Peek(pos)
	if err != nil {
		return nil, err
	}

	row := map[string]interface{}{}
	for _, field := range sch.Fields() {
		if field.Name == "" || field.Index > len(fields) {
			continue
		}
		value := fields[field.Index-1]
		if field.Type == schema.Integer {
			// float64, so filters compare like plain JSON numbers
			row[field.Name] = float64(record.DecodeInt(value))
			continue
		}
		row[field.Name] = value
	}

	return row, nil
}
