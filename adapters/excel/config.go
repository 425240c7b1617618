package excel

// ReaderConfig names the sheet and the two long-format columns
type ReaderConfig struct {
	Sheet             string `json:"sheet"`
	ParticipantColumn string `json:"participant_column"`
	ValueColumn       string `json:"value_column"`
}

// DefaultReaderConfig matches the column names of the published example data
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Sheet:             "Sheet1",
		ParticipantColumn: "participants",
		ValueColumn:       "variables",
	}
}
