package exporter

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/pkg/contracts/domain"
)

// Exporter writes the consolidated output artifacts
type Exporter struct {
	cfg    config.ExportConfig
	logger *slog.Logger
}

// NewExporter creates an exporter using the export section of the config
func NewExporter(cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{cfg: cfg, logger: logger}
}

// OutputFileName returns the dated output file name for ext
func OutputFileName(runDate time.Time, ext string) string {
	return config.OutputBaseName + "_" + runDate.Format(config.FileDateLayout) + ext
}

// Export writes the comma and semicolon delimited outputs, the optional
// workbook and README.txt to dir. Either every file is written or none is.
// stats.Outputs is set to the final paths before the README is rendered.
func (e *Exporter) Export(ctx context.Context, dir string, runDate time.Time, rows []domain.CombinedRow, stats *domain.SummaryStats) ([]string, error) {
	set, err := NewOutputSet(dir, e.logger)
	if err != nil {
		return nil, apperrors.NewIOError("create output directory", dir, err)
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}

	type artifact struct {
		name  string
		write func(io.Writer) error
	}

	artifacts := []artifact{
		{OutputFileName(runDate, config.OutputCSVExt), e.delimited(config.OutputDelimiter, records)},
		{OutputFileName(runDate, config.OutputTextExt), e.delimited(config.OutputTextDelim, records)},
	}
	if e.cfg.Excel {
		artifacts = append(artifacts, artifact{
			OutputFileName(runDate, config.OutputExcelExt),
			func(w io.Writer) error {
				return WriteWorkbook(w, config.OutputSheetName, config.OutputColumns, records)
			},
		})
	}
	artifacts = append(artifacts, artifact{
		config.ReadmeFileName,
		func(w io.Writer) error { return WriteReadme(w, stats) },
	})

	stats.Outputs = make([]string, len(artifacts))
	for i, a := range artifacts {
		stats.Outputs[i] = filepath.Join(dir, a.name)
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			set.Rollback()
			return nil, err
		}
		if err := set.Stage(a.name, a.write); err != nil {
			set.Rollback()
			return nil, apperrors.NewIOError("write output", filepath.Join(dir, a.name), err)
		}
	}

	paths, err := set.Commit()
	if err != nil {
		return nil, apperrors.NewIOError("commit outputs", dir, err)
	}

	e.logger.InfoContext(ctx, "Output files written",
		slog.String("dir", dir),
		slog.Int("files", len(paths)),
		slog.Int("rows", len(rows)))

	return paths, nil
}

func (e *Exporter) delimited(delimiter rune, records [][]string) func(io.Writer) error {
	return func(w io.Writer) error {
		sw, err := NewStreamWriter(w, delimiter, e.cfg.BOMPrefix, config.OutputColumns)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := sw.WriteRecord(record); err != nil {
				return err
			}
		}
		return sw.Flush()
	}
}
