package excel

// RawRowData represents a row of raw cell text keyed by column header
type RawRowData map[string]string

// ExcelData represents a complete sheet or CSV file
type ExcelData struct {
	Headers []string     // Column headers, index columns removed
	Rows    []RawRowData // Data rows
}
