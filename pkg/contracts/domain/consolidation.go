package domain

import (
	"time"
)

// UnknownDate is the source date used when a file name carries no date token
const UnknownDate = "Unknown"

// RawRecord is one non-blank line read from a source file, tagged with the
// date token of the file it came from.
type RawRecord struct {
	Line       string `json:"line"`
	SourceDate string `json:"source_date"`
	SourceFile string `json:"source_file"`
	LineNumber int    `json:"line_number"`
}

// Augmented returns the line with its source date appended as a final field
func (r RawRecord) Augmented() string {
	return r.Line + ";" + r.SourceDate
}

// PrimaryRow is a parsed source record with the fixed six-column schema
type PrimaryRow struct {
	TinType       string `json:"tin_type" csv:"tin_type"`
	Tin           string `json:"tin" csv:"tin"`
	Name          string `json:"name" csv:"name"`
	AccountNumber string `json:"account_number" csv:"account_number"`
	ErrorCodes    string `json:"error_codes" csv:"error_codes"`
	TinMatchDate  string `json:"tin_match_date" csv:"tin_match_date"`
}

// FlagRow is a record from the flag report.
// ErrorCodes is nil until a rule assigns a code.
type FlagRow struct {
	QcCheck       string            `json:"qc_check"`
	TinType       string            `json:"tin_type"`
	Tin           string            `json:"tin"`
	Name          string            `json:"name"`
	AccountNumber string            `json:"account_number"`
	ErrorCodes    *string           `json:"error_codes,omitempty"`
	TinMatchDate  string            `json:"tin_match_date"`
	Fields        map[string]string `json:"fields,omitempty"`
	LineNumber    int               `json:"line_number"`
}

// HasCode reports whether a rule assigned an error code to the row
func (r FlagRow) HasCode() bool {
	return r.ErrorCodes != nil
}

// WithCode returns a copy of the row carrying the given error code
func (r FlagRow) WithCode(code string) FlagRow {
	r.ErrorCodes = &code
	return r
}

// Project converts a coded flag row to the primary schema
func (r FlagRow) Project() PrimaryRow {
	code := ""
	if r.ErrorCodes != nil {
		code = *r.ErrorCodes
	}
	return PrimaryRow{
		TinType:       r.TinType,
		Tin:           r.Tin,
		Name:          r.Name,
		AccountNumber: r.AccountNumber,
		ErrorCodes:    code,
		TinMatchDate:  r.TinMatchDate,
	}
}

// CombinedRow is the narrowed output record shared by both inputs
type CombinedRow struct {
	AccountNumber string `json:"account_number" csv:"account_number"`
	ErrorCodes    string `json:"error_codes" csv:"error_codes"`
	TinMatchDate  string `json:"tin_match_date" csv:"tin_match_date"`
}

// Record returns the row as CSV fields in header order
func (r CombinedRow) Record() []string {
	return []string{r.AccountNumber, r.ErrorCodes, r.TinMatchDate}
}

// SummaryStats describes one consolidation run
type SummaryStats struct {
	RunID             string         `json:"run_id"`
	RunDate           string         `json:"run_date"`
	SourceFolder      string         `json:"source_folder"`
	FlagFile          string         `json:"flag_file"`
	FlagDate          string         `json:"flag_date"`
	FileCount         int            `json:"file_count"`
	RawRowCount       int            `json:"raw_row_count"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	PrimaryRowCount   int            `json:"primary_row_count"`
	FlagRowsRead      int            `json:"flag_rows_read"`
	FlagRowsKept      int            `json:"flag_rows_kept"`
	QcCheckCounts     map[string]int `json:"qc_check_counts"`
	QcCheck8Matches   int            `json:"qc_check_8_matches"`
	ErrorCodeCounts   map[string]int `json:"error_code_counts"`
	DateParseWarnings int            `json:"date_parse_warnings"`
	FinalRowCount     int            `json:"final_row_count"`
	Outputs           []string       `json:"outputs"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Duration          time.Duration  `json:"duration"`
}
