package dataprocessing

import (
	"strings"

	"tincli/internal/config"
	"tincli/pkg/contracts/domain"
)

// MapQcCheck returns the error code for a qc_check value, if it has one
func MapQcCheck(qcCheck string) (string, bool) {
	code, ok := config.QcCheckErrorCodes[strings.TrimSpace(qcCheck)]
	return code, ok
}

// NormalizeTinType rewrites flag report tin types to source codes.
// Unknown values pass through unchanged.
func NormalizeTinType(tinType string) string {
	if code, ok := config.TinTypeNormalization[tinType]; ok {
		return code
	}
	return tinType
}

// ApplyRules returns a copy of row with tin_match_date and error_codes set.
// matched is true when a qc_check_8 row was found in the primary index.
func ApplyRules(row domain.FlagRow, flagDate string, index LookupIndex) (out domain.FlagRow, matched bool) {
	out = row
	out.TinMatchDate = flagDate
	out.ErrorCodes = nil

	if code, ok := MapQcCheck(row.QcCheck); ok {
		out = out.WithCode(code)
	}

	if strings.TrimSpace(row.QcCheck) == config.QcCheckMatchPrimary &&
		index != nil && index.Contains(row.Name, row.Tin) {
		out = out.WithCode(config.MatchedErrorCode)
		matched = true
	}

	return out, matched
}

// ProjectFlagRow converts a coded flag row to the primary schema with its
// tin type normalized.
func ProjectFlagRow(row domain.FlagRow) domain.PrimaryRow {
	projected := row.Project()
	projected.TinType = NormalizeTinType(projected.TinType)
	return projected
}
