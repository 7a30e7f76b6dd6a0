package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/pkg/contracts/domain"
)

// CombineResult holds the narrowed output rows and what was observed while
// building them.
type CombineResult struct {
	Rows              []domain.CombinedRow
	ErrorCodeCounts   map[string]int
	DateParseWarnings int
}

// Combiner unions primary and flag rows into the output schema
type Combiner struct {
	logger *slog.Logger
}

// NewCombiner creates a combiner
func NewCombiner(logger *slog.Logger) *Combiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Combiner{logger: logger}
}

// Combine appends flag rows after primary rows, keeps only account_number,
// error_codes and tin_match_date, and reformats tin_match_date as
// MM/DD/YYYY. A date that cannot be parsed becomes empty and is counted.
func (c *Combiner) Combine(ctx context.Context, primary, flags []domain.PrimaryRow) *CombineResult {
	result := &CombineResult{
		Rows:            make([]domain.CombinedRow, 0, len(primary)+len(flags)),
		ErrorCodeCounts: make(map[string]int),
	}

	badDates := make(map[string]int)
	add := func(row domain.PrimaryRow) {
		date, err := ReformatDate(row.TinMatchDate)
		if err != nil {
			badDates[row.TinMatchDate]++
			result.DateParseWarnings++
		}
		result.ErrorCodeCounts[row.ErrorCodes]++
		result.Rows = append(result.Rows, domain.CombinedRow{
			AccountNumber: row.AccountNumber,
			ErrorCodes:    row.ErrorCodes,
			TinMatchDate:  date,
		})
	}

	for _, row := range primary {
		add(row)
	}
	for _, row := range flags {
		add(row)
	}

	values := make([]string, 0, len(badDates))
	for value := range badDates {
		values = append(values, value)
	}
	sort.Strings(values)
	for _, value := range values {
		c.logger.WarnContext(ctx, "Unparsable tin_match_date left empty",
			slog.String("value", value),
			slog.Int("rows", badDates[value]))
	}

	return result
}

// ReformatDate converts a YYYYMMDD token to MM/DD/YYYY. On failure it returns
// an empty string and a DATE_PARSE warning.
func ReformatDate(value string) (string, error) {
	t, err := time.Parse(config.FileDateLayout, value)
	if err != nil {
		return "", apperrors.NewDateParseWarning(value, err)
	}
	return t.Format(config.OutputDateLayout), nil
}
