package excel

import (
	"strconv"

	"goagree/domain/agreement"
	"goagree/domain/core"
)

// ToDataset builds a long-format dataset from two columns. Rows where both
// cells are blank are skipped; any other blank or unparsable cell is an error
// naming its file row (header is row 1).
func ToDataset(data *ExcelData, source, participantColumn, valueColumn string) (*agreement.Dataset, error) {
	for _, col := range []string{participantColumn, valueColumn} {
		if !hasHeader(data, col) {
			return nil, core.NewColumnNotFoundError(col, data.Headers)
		}
	}

	ds := agreement.NewDataset(source, make([]agreement.Observation, 0, len(data.Rows)))
	for i, row := range data.Rows {
		fileRow := i + 2
		rawParticipant, rawValue := row[participantColumn], row[valueColumn]
		if rawParticipant == "" && rawValue == "" {
			continue
		}

		participant, err := core.ParseParticipantID(rawParticipant)
		if err != nil {
			return nil, core.NewEmptyParticipantError(fileRow)
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, core.NewUnparsableValueError(fileRow, rawValue)
		}
		ds.Add(participant, value)
	}
	return ds, nil
}

// ValueColumns lists every column except the participant column, in file order
func ValueColumns(data *ExcelData, participantColumn string) []string {
	cols := make([]string, 0, len(data.Headers))
	for _, h := range data.Headers {
		if h != participantColumn {
			cols = append(cols, h)
		}
	}
	return cols
}

func hasHeader(data *ExcelData, name string) bool {
	for _, h := range data.Headers {
		if h == name {
			return true
		}
	}
	return false
}
