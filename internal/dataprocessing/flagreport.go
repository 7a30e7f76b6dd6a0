package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/files"
	"tincli/pkg/contracts/domain"
)

// FlagResult is the outcome of processing a flag report
type FlagResult struct {
	FlagDate        string
	Rows            []domain.PrimaryRow
	RowsRead        int
	QcCheckCounts   map[string]int
	QcCheck8Matches int
}

// RowsKept is the number of flag rows that received an error code
func (r *FlagResult) RowsKept() int {
	return len(r.Rows)
}

// FlagProcessor loads the flag report and applies the business rules
type FlagProcessor struct {
	encoding string
	logger   *slog.Logger
}

// NewFlagProcessor creates a processor reading text reports in the configured encoding
func NewFlagProcessor(cfg config.InputConfig, logger *slog.Logger) *FlagProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlagProcessor{encoding: cfg.Encoding, logger: logger}
}

// Process loads the report at path and returns the coded rows projected to
// the primary schema, in file order.
func (p *FlagProcessor) Process(ctx context.Context, path string, index LookupIndex) (*FlagResult, error) {
	flagDate := files.ExtractDate(path, config.FlagDatePrefix)
	if flagDate == domain.UnknownDate {
		p.logger.WarnContext(ctx, "Flag report path has no date token",
			slog.String("path", path))
	}

	rows, err := p.Load(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &FlagResult{
		FlagDate:      flagDate,
		RowsRead:      len(rows),
		QcCheckCounts: make(map[string]int),
	}

	for _, row := range rows {
		result.QcCheckCounts[strings.TrimSpace(row.QcCheck)]++

		coded, matched := ApplyRules(row, flagDate, index)
		if matched {
			result.QcCheck8Matches++
		}
		if !coded.HasCode() {
			continue
		}
		result.Rows = append(result.Rows, ProjectFlagRow(coded))
	}

	p.logger.InfoContext(ctx, "Flag report processed",
		slog.String("path", path),
		slog.String("flag_date", flagDate),
		slog.Int("rows_read", result.RowsRead),
		slog.Int("rows_kept", result.RowsKept()),
		slog.Int("qc_check_8_matches", result.QcCheck8Matches))

	return result, nil
}

// Load reads the flag report into rows keyed by its header. Workbooks are
// read from their first sheet; any other file is ';'-delimited text.
func (p *FlagProcessor) Load(path string) ([]domain.FlagRow, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewFlagFileNotFoundError(path, err)
		}
		return nil, apperrors.NewIOError("stat flag file", path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewFlagFileFormatError(path, "is a directory")
	}

	var records [][]string
	if strings.EqualFold(filepath.Ext(path), config.OutputExcelExt) {
		records, err = readWorkbook(path)
	} else {
		records, err = p.readDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	return parseFlagRecords(path, records)
}

func (p *FlagProcessor) readDelimited(path string) ([][]string, error) {
	rc, err := files.OpenText(path, p.encoding)
	if err != nil {
		return nil, apperrors.NewIOError("open flag file", path, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.Comma = config.FieldDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, apperrors.NewFlagFileFormatError(path, parseErr.Error())
			}
			return nil, apperrors.NewIOError("read flag file", path, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewFlagFileFormatError(path, fmt.Sprintf("cannot open workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewFlagFileFormatError(path, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewFlagFileFormatError(path, fmt.Sprintf("cannot read sheet %s: %v", sheets[0], err))
	}

	// Drop rows with no content, matching how blank text lines are skipped
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRecord(row) {
			continue
		}
		records = append(records, row)
	}
	return records, nil
}

func parseFlagRecords(path string, records [][]string) ([]domain.FlagRow, error) {
	if len(records) == 0 {
		return nil, apperrors.NewFlagFileFormatError(path, "missing header row")
	}

	header := make([]string, len(records[0]))
	colIndex := make(map[string]int, len(header))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		header[i] = name
		if _, exists := colIndex[name]; !exists {
			colIndex[name] = i
		}
	}

	var missing []string
	for _, col := range config.FlagRequiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperrors.NewFlagFileFormatError(path,
			"missing required columns: "+strings.Join(missing, ", ")).
			WithContext("missing_columns", missing)
	}

	rows := make([]domain.FlagRow, 0, len(records)-1)
	for n, record := range records[1:] {
		lineNumber := n + 2
		if len(record) > len(header) {
			return nil, apperrors.NewFlagFileFormatError(path,
				fmt.Sprintf("row %d has %d fields, header has %d", lineNumber, len(record), len(header))).
				WithContext("line", lineNumber)
		}
		if isBlankRecord(record) {
			continue
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			} else {
				fields[name] = ""
			}
		}

		get := func(col string) string {
			if i := colIndex[col]; i < len(record) {
				return record[i]
			}
			return ""
		}

		rows = append(rows, domain.FlagRow{
			QcCheck:       get(config.ColQcCheck),
			TinType:       get(config.ColTinType),
			Tin:           get(config.ColTin),
			Name:          get(config.ColName),
			AccountNumber: get(config.ColAccountNumber),
			Fields:        fields,
			LineNumber:    lineNumber,
		})
	}

	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
