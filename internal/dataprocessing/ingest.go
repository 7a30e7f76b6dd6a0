package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/files"
	"tincli/pkg/contracts/domain"
)

// SourceFile describes one ingested source file
type SourceFile struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Date  string `json:"date"`
	Lines int    `json:"lines"`
}

// IngestResult is the ordered output of an ingestion pass
type IngestResult struct {
	Records []domain.RawRecord
	Files   []SourceFile
}

// FileCount returns the number of source files read
func (r *IngestResult) FileCount() int {
	return len(r.Files)
}

// Ingestor reads source files into tagged raw records
type Ingestor struct {
	discovery *files.Discovery
	pattern   string
	encoding  string
	logger    *slog.Logger
}

// NewIngestor creates an ingestor using the input section of the config
func NewIngestor(cfg config.InputConfig, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	pattern := cfg.SourcePattern
	if pattern == "" {
		pattern = config.SourceFilePattern
	}
	return &Ingestor{
		discovery: files.NewDiscovery(""),
		pattern:   pattern,
		encoding:  cfg.Encoding,
		logger:    logger,
	}
}

// Ingest reads every matching file in dir in lexical name order. Blank and
// whitespace-only lines are dropped; every other line becomes a RawRecord
// tagged with the file's date token. The consolidated outputs, README.txt and
// any path in exclude are skipped, so the flag report and a previous run's
// outputs may live in the source folder.
func (i *Ingestor) Ingest(ctx context.Context, dir string, exclude ...string) (*IngestResult, error) {
	all, err := i.discovery.FindFilesByPattern(dir, i.pattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNoInputFilesError(dir, i.pattern)
		}
		return nil, apperrors.NewIOError("list source folder", dir, err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		if p != "" {
			skip[absPath(p)] = true
		}
	}

	found := make([]files.FileInfo, 0, len(all))
	for _, f := range all {
		if reason := skipReason(f.Name, absPath(f.Path), skip); reason != "" {
			i.logger.InfoContext(ctx, "Skipping file in source folder",
				slog.String("file", f.Name),
				slog.String("reason", reason))
			continue
		}
		found = append(found, f)
	}
	if len(found) == 0 {
		return nil, apperrors.NewNoInputFilesError(dir, i.pattern)
	}

	result := &IngestResult{Files: make([]SourceFile, 0, len(found))}

	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := files.ExtractDate(f.Name, config.SourceDatePrefix)
		if date == domain.UnknownDate {
			i.logger.WarnContext(ctx, "Source file name has no date token",
				slog.String("file", f.Name))
		}

		lines, err := files.ReadLines(f.Path, i.encoding)
		if err != nil {
			return nil, apperrors.NewIOError("read source file", f.Path, err)
		}

		kept := 0
		for n, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			result.Records = append(result.Records, domain.RawRecord{
				Line:       line,
				SourceDate: date,
				SourceFile: f.Name,
				LineNumber: n + 1,
			})
			kept++
		}

		result.Files = append(result.Files, SourceFile{
			Name:  f.Name,
			Path:  f.Path,
			Date:  date,
			Lines: kept,
		})

		i.logger.DebugContext(ctx, "Ingested source file",
			slog.String("file", f.Name),
			slog.String("date", date),
			slog.Int("lines", kept))
	}

	i.logger.InfoContext(ctx, "Source files ingested",
		slog.String("folder", dir),
		slog.Int("files", len(result.Files)),
		slog.Int("records", len(result.Records)))

	return result, nil
}

func skipReason(name, path string, exclude map[string]bool) string {
	switch {
	case exclude[path]:
		return "flag report"
	case strings.HasPrefix(strings.ToLower(name), strings.ToLower(config.OutputBaseName+"_")):
		return "consolidated output"
	case strings.EqualFold(name, config.ReadmeFileName):
		return "run summary"
	}
	return ""
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
