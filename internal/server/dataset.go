package server

import (
	"fmt"
	"strconv"

	"goagree/domain/agreement"
	"goagree/domain/core"
	"goagree/internal/errors"

	"github.com/tidwall/gjson"
)

// ParseDataset reads an analysis request body. Two shapes are accepted:
//
//	{"source": "...", "column": "...", "observations": [{"participant": "A", "difference": 1.2}, ...]}
//	{"source": "...", "column": "...", "participants": ["A", ...], "variables": [1.2, ...]}
//
// The second mirrors the long-format file columns. Rows are numbered from 1
// in error messages.
func ParseDataset(body []byte) (*agreement.Dataset, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", errors.InvalidInput("request body is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	source := root.Get("source").String()
	if source == "" {
		source = "api"
	}
	column := root.Get("column").String()
	ds := agreement.NewDataset(source, nil)

	observations := root.Get("observations")
	participants, variables := root.Get("participants"), root.Get("variables")

	switch {
	case observations.IsArray():
		for i, obs := range observations.Array() {
			if err := addRow(ds, i+1, obs.Get("participant"), obs.Get("difference")); err != nil {
				return nil, "", err
			}
		}
	case participants.IsArray() && variables.IsArray():
		ps, vs := participants.Array(), variables.Array()
		if len(ps) != len(vs) {
			return nil, "", errors.InvalidInput(fmt.Sprintf("participants has %d entries but variables has %d", len(ps), len(vs)))
		}
		for i := range ps {
			if err := addRow(ds, i+1, ps[i], vs[i]); err != nil {
				return nil, "", err
			}
		}
	default:
		return nil, "", errors.InvalidInput(`request needs an "observations" array or "participants" and "variables" arrays`)
	}

	return ds, column, nil
}

// addRow accepts participant IDs as strings or numbers and differences as
// numbers or numeric strings.
func addRow(ds *agreement.Dataset, row int, participant, difference gjson.Result) error {
	var raw string
	switch participant.Type {
	case gjson.String, gjson.Number:
		raw = participant.String()
	}
	id, err := core.ParseParticipantID(raw)
	if err != nil {
		return core.NewEmptyParticipantError(row)
	}

	var value float64
	switch difference.Type {
	case gjson.Number:
		value = difference.Float()
	case gjson.String:
		value, err = strconv.ParseFloat(difference.Str, 64)
		if err != nil {
			return core.NewUnparsableValueError(row, difference.Str)
		}
	default:
		return core.NewUnparsableValueError(row, difference.Raw)
	}

	ds.Add(id, value)
	return nil
}
