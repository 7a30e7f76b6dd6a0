package services

import (
	"fmt"
	"path/filepath"

	"tincli/pkg/contracts/domain"
)

// SuccessMessage is the one-line summary shown to the user after a run
func SuccessMessage(stats *domain.SummaryStats) string {
	dir := ""
	if len(stats.Outputs) > 0 {
		dir = filepath.Dir(stats.Outputs[0])
	}
	return fmt.Sprintf("Consolidated %d rows from %d files. Output saved to: %s",
		stats.FinalRowCount, stats.FileCount, dir)
}

// WarningMessage describes recovered problems, or "" when there were none
func WarningMessage(stats *domain.SummaryStats) string {
	if stats.DateParseWarnings == 0 {
		return ""
	}
	return fmt.Sprintf("%d rows had an unparsable tin_match_date and were written with an empty date",
		stats.DateParseWarnings)
}
