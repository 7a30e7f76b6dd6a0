package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"tincli/internal/config"
	"tincli/internal/dataprocessing"
	apperrors "tincli/internal/errors"
	"tincli/internal/exporter"
	"tincli/internal/infrastructure"
	"tincli/internal/validation"
	"tincli/pkg/contracts/domain"
)

// Run outcomes recorded in metrics and logs
const (
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Pipeline stage names
const (
	StageIngest  = "ingest"
	StagePrimary = "primary"
	StageFlags   = "flags"
	StageCombine = "combine"
	StageExport  = "export"
)

// ConsolidateRequest describes one consolidation run
type ConsolidateRequest struct {
	SourceFolder string
	FlagFile     string
	// OutputDir overrides the configured output directory and the flag
	// file's directory.
	OutputDir string
}

// ConsolidationService runs the consolidation pipeline
type ConsolidationService struct {
	cfg       *config.Config
	ingestor  *dataprocessing.Ingestor
	flags     *dataprocessing.FlagProcessor
	combiner  *dataprocessing.Combiner
	exporter  *exporter.Exporter
	validator *validation.FileValidator
	metrics   *infrastructure.ConsolidationMetrics
	logger    *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewConsolidationService wires the pipeline stages from cfg. A nil metrics
// value disables measurements.
func NewConsolidationService(cfg *config.Config, metrics *infrastructure.ConsolidationMetrics, logger *slog.Logger) *ConsolidationService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "consolidation_service")

	return &ConsolidationService{
		cfg:       cfg,
		ingestor:  dataprocessing.NewIngestor(cfg.Input, logger),
		flags:     dataprocessing.NewFlagProcessor(cfg.Input, logger),
		combiner:  dataprocessing.NewCombiner(logger),
		exporter:  exporter.NewExporter(cfg.Export, logger),
		validator: validation.NewFileValidator(logger),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// IsRunning reports whether a run is in progress
func (s *ConsolidationService) IsRunning() bool {
	if s.mu.TryLock() {
		s.mu.Unlock()
		return false
	}
	return true
}

// Wait blocks until the run in progress, if any, has returned
func (s *ConsolidationService) Wait() {
	s.mu.Lock()
	s.mu.Unlock()
}

// Consolidate runs the pipeline over sourceFolder and flagFile and writes the
// outputs beside the flag file (or to the configured output directory).
func (s *ConsolidationService) Consolidate(ctx context.Context, sourceFolder, flagFile string) (*domain.SummaryStats, error) {
	return s.Run(ctx, ConsolidateRequest{SourceFolder: sourceFolder, FlagFile: flagFile})
}

// Run executes one consolidation run. Every error except a user cancel
// leaves no output files behind.
func (s *ConsolidationService) Run(ctx context.Context, req ConsolidateRequest) (stats *domain.SummaryStats, err error) {
	if !s.mu.TryLock() {
		return nil, apperrors.ErrOperationRunning
	}
	defer s.mu.Unlock()

	start := s.now()
	runID := uuid.New().String()

	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := infrastructure.StartSpan(ctx, "consolidate",
		attribute.String("run.id", runID),
		attribute.String("source_folder", req.SourceFolder),
		attribute.String("flag_file", req.FlagFile))
	defer span.End()

	logger := s.logger.With(slog.String("run_id", runID))

	if s.metrics != nil {
		s.metrics.ActiveRuns.Add(ctx, 1)
		defer s.metrics.ActiveRuns.Add(ctx, -1)
	}

	defer func() {
		status := statusOf(err)
		s.metrics.RecordRun(ctx, status, time.Since(start))
		switch status {
		case StatusCancelled:
			logger.InfoContext(ctx, "Consolidation cancelled", slog.String("reason", err.Error()))
		case StatusFailed:
			infrastructure.RecordError(ctx, err)
			logger.ErrorContext(ctx, "Consolidation failed", slog.String("error", err.Error()))
		}
	}()

	if err := s.validator.ValidateSourceFolder(req.SourceFolder); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFlagFile(req.FlagFile); err != nil {
		return nil, err
	}

	override := req.OutputDir
	if override == "" {
		override = s.cfg.Export.OutputDir
	}
	outputDir := config.ResolveOutputDir(req.FlagFile, override)
	if err := s.validator.ValidateOutputDirectory(outputDir); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Consolidation started",
		slog.String("source_folder", req.SourceFolder),
		slog.String("flag_file", req.FlagFile),
		slog.String("output_dir", outputDir))

	var (
		ingested *dataprocessing.IngestResult
		table    *dataprocessing.PrimaryTable
		flags    *dataprocessing.FlagResult
		combined *dataprocessing.CombineResult
	)

	err = s.stage(ctx, StageIngest, func(ctx context.Context) (int, error) {
		var err error
		ingested, err = s.ingestor.Ingest(ctx, req.SourceFolder, req.FlagFile)
		if err != nil {
			return 0, err
		}
		return len(ingested.Records), nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, StagePrimary, func(context.Context) (int, error) {
		var err error
		table, err = dataprocessing.BuildPrimaryTable(ingested.Records)
		if err != nil {
			return 0, err
		}
		return table.Count(), nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, StageFlags, func(ctx context.Context) (int, error) {
		var err error
		flags, err = s.flags.Process(ctx, req.FlagFile, table)
		if err != nil {
			return 0, err
		}
		return flags.RowsKept(), nil
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, StageCombine, func(ctx context.Context) (int, error) {
		combined = s.combiner.Combine(ctx, table.Rows(), flags.Rows)
		return len(combined.Rows), nil
	})
	if err != nil {
		return nil, err
	}

	runDate := s.now()
	stats = &domain.SummaryStats{
		RunID:             runID,
		RunDate:           runDate.Format(config.FileDateLayout),
		SourceFolder:      req.SourceFolder,
		FlagFile:          req.FlagFile,
		FlagDate:          flags.FlagDate,
		FileCount:         ingested.FileCount(),
		RawRowCount:       table.RawCount(),
		DuplicatesRemoved: table.DuplicatesRemoved(),
		PrimaryRowCount:   table.Count(),
		FlagRowsRead:      flags.RowsRead,
		FlagRowsKept:      flags.RowsKept(),
		QcCheckCounts:     flags.QcCheckCounts,
		QcCheck8Matches:   flags.QcCheck8Matches,
		ErrorCodeCounts:   combined.ErrorCodeCounts,
		DateParseWarnings: combined.DateParseWarnings,
		FinalRowCount:     len(combined.Rows),
		GeneratedAt:       runDate,
	}

	err = s.stage(ctx, StageExport, func(ctx context.Context) (int, error) {
		paths, err := s.exporter.Export(ctx, outputDir, runDate, combined.Rows, stats)
		if err != nil {
			return 0, err
		}
		stats.Outputs = paths
		return len(combined.Rows), nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QcCheck8Matches.Add(ctx, int64(stats.QcCheck8Matches))
		s.metrics.DateParseWarnings.Add(ctx, int64(stats.DateParseWarnings))
	}

	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("rows.final", stats.FinalRowCount),
		attribute.Int("rows.duplicates_removed", stats.DuplicatesRemoved))

	logger.InfoContext(ctx, "Consolidation completed",
		slog.Int("files", stats.FileCount),
		slog.Int("raw_rows", stats.RawRowCount),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("flag_rows_kept", stats.FlagRowsKept),
		slog.Int("final_rows", stats.FinalRowCount),
		slog.Int("date_parse_warnings", stats.DateParseWarnings),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// stage runs fn inside a span and records its duration and row count
func (s *ConsolidationService) stage(ctx context.Context, name string, fn func(context.Context) (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := infrastructure.StartSpan(ctx, "consolidate."+name)
	defer span.End()

	start := time.Now()
	rows, err := fn(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("%s: %w", name, err)
	}

	span.SetAttributes(attribute.Int("rows", rows))
	s.metrics.RecordStage(ctx, name, time.Since(start), rows)

	s.logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func statusOf(err error) string {
	if err == nil {
		return StatusSuccess
	}
	if errType, ok := apperrors.TypeOf(err); ok && errType == apperrors.ErrTypeUserCancelled {
		return StatusCancelled
	}
	if errors.Is(err, context.Canceled) {
		return StatusCancelled
	}
	return StatusFailed
}
