package config

import "time"

// Application constants
const (
	AppName    = "TIN Consolidator"
	AppVersion = "1.0.0"

	// Environment variable prefix for envconfig
	EnvPrefix = "TINCLI"

	// Default file locations
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "tincli.log"
	DefaultConfigFile = "config.yaml"

	// Operation timeouts
	DefaultOperationTimeout = 10 * time.Minute
)

// Input format
const (
	// SourceFilePattern selects the files ingested from the source folder
	SourceFilePattern = "*.txt"

	// SourceDatePrefix and FlagDatePrefix precede the 8-digit date token
	SourceDatePrefix = "output"
	FlagDatePrefix   = "accounts"

	// FieldDelimiter separates fields in source lines and the flag report
	FieldDelimiter = ';'

	// FileDateLayout is the layout of the date token embedded in file names
	FileDateLayout = "20060102"

	// OutputDateLayout is the layout of tin_match_date in the final output
	OutputDateLayout = "01/02/2006"

	// ReportTimestampLayout is used for the README generation timestamp
	ReportTimestampLayout = "2006-01-02 15:04:05"
)

// Supported input encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
	EncodingShiftJIS    = "shift_jis"
	EncodingUTF16LE     = "utf-16le"
)

// Output artifacts
const (
	OutputBaseName  = "Final_consolidated_output"
	ReadmeFileName  = "README.txt"
	OutputCSVExt    = ".csv"
	OutputTextExt   = ".txt"
	OutputExcelExt  = ".xlsx"
	OutputSheetName = "Consolidated"
	OutputDelimiter = ','
	OutputTextDelim = ';'
)

// Primary schema column names, in source field order
const (
	ColTinType       = "tin_type"
	ColTin           = "tin"
	ColName          = "name"
	ColAccountNumber = "account_number"
	ColErrorCodes    = "error_codes"
	ColTinMatchDate  = "tin_match_date"
	ColQcCheck       = "qc_check"
)

// PrimaryColumns is the fixed schema of a source line after the source date is appended
var PrimaryColumns = []string{
	ColTinType,
	ColTin,
	ColName,
	ColAccountNumber,
	ColErrorCodes,
	ColTinMatchDate,
}

// FlagRequiredColumns must all be present in the flag report header
var FlagRequiredColumns = []string{
	ColQcCheck,
	ColTinType,
	ColTin,
	ColName,
	ColAccountNumber,
}

// OutputColumns is the narrowed schema of the combined output
var OutputColumns = []string{
	ColAccountNumber,
	ColErrorCodes,
	ColTinMatchDate,
}

// Business rules for the flag report
const (
	// QcCheckMatchPrimary rows are coded only when they exist in the primary table
	QcCheckMatchPrimary = "qc_check_8"

	// MatchedErrorCode is assigned to QcCheckMatchPrimary rows found in the primary table
	MatchedErrorCode = "3"
)

// QcCheckErrorCodes maps a flag report qc_check value to its error code
var QcCheckErrorCodes = map[string]string{
	"qc_check_1": "1",
	"qc_check_2": "1",
	"qc_check_3": "2",
	"qc_check_4": "3",
}

// TinTypeNormalization rewrites flag report tin_type values to source codes
var TinTypeNormalization = map[string]string{
	"SSN": "2",
}
