package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/shared/testutil"
	"tincli/pkg/contracts/domain"
)

func newTestIngestor(t *testing.T) (*Ingestor, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewIngestor(config.InputConfig{SourcePattern: "*.txt"}, logger), handler
}

func TestIngestor_Ingest(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)
	ingestor, _ := newTestIngestor(t)

	result, err := ingestor.Ingest(context.Background(), fx.SourceDir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FileCount())
	assert.Len(t, result.Records, len(testutil.SourceFileA)+len(testutil.SourceFileB))

	first := result.Records[0]
	assert.Equal(t, testutil.SourceFileA[0], first.Line)
	assert.Equal(t, "20250814", first.SourceDate)
	assert.Equal(t, testutil.SourceNameA, first.SourceFile)
	assert.Equal(t, 1, first.LineNumber)

	last := result.Records[len(result.Records)-1]
	assert.Equal(t, testutil.SourceNameB, last.SourceFile)
	assert.Equal(t, testutil.SourceFileB[2], last.Line)

	assert.Equal(t, []SourceFile{
		{Name: testutil.SourceNameA, Path: filepath.Join(fx.SourceDir, testutil.SourceNameA), Date: "20250814", Lines: 5},
		{Name: testutil.SourceNameB, Path: filepath.Join(fx.SourceDir, testutil.SourceNameB), Date: "20250814", Lines: 3},
	}, result.Files)
}

func TestIngestor_DropsBlankLinesAndKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLines(t, dir, "output_20250102.txt", "b1", "", "   ", "\t", "b2")
	testutil.WriteLines(t, dir, "output_20250101.txt", "a1")
	testutil.WriteLines(t, dir, "notes.csv", "ignored")

	ingestor, _ := newTestIngestor(t)
	result, err := ingestor.Ingest(context.Background(), dir)
	require.NoError(t, err)

	var lines []string
	for _, r := range result.Records {
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []string{"a1", "b1", "b2"}, lines)
	assert.Equal(t, 5, result.Records[2].LineNumber)
}

func TestIngestor_UnknownDate(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLines(t, dir, "export.txt", "1;1;A;B;C")

	ingestor, handler := newTestIngestor(t)
	result, err := ingestor.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, domain.UnknownDate, result.Records[0].SourceDate)
	assert.Equal(t, "1;1;A;B;C;Unknown", result.Records[0].Augmented())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "no date token")
}

func TestIngestor_SkipsFlagReportAndOutputs(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)
	flag := testutil.WriteLines(t, fx.SourceDir, testutil.FlagFileName, testutil.FlagReport...)
	testutil.WriteLines(t, fx.SourceDir, "Final_consolidated_output_20250820.txt", "account_number;error_codes;tin_match_date")
	testutil.WriteLines(t, fx.SourceDir, "readme.TXT", "TIN consolidation summary")

	ingestor, handler := newTestIngestor(t)
	result, err := ingestor.Ingest(context.Background(), fx.SourceDir, flag)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FileCount())
	assert.Equal(t, testutil.SourceNameA, result.Files[0].Name)
	assert.Equal(t, testutil.SourceNameB, result.Files[1].Name)
	assert.True(t, handler.ContainsAttr("reason", "flag report"))
	assert.True(t, handler.ContainsAttr("reason", "consolidated output"))
	assert.True(t, handler.ContainsAttr("reason", "run summary"))
}

func TestIngestor_OnlySkippedFiles(t *testing.T) {
	dir := t.TempDir()
	flag := testutil.WriteLines(t, dir, testutil.FlagFileName, testutil.FlagReport...)
	testutil.WriteLines(t, dir, "README.txt", "summary")

	ingestor, _ := newTestIngestor(t)
	_, err := ingestor.Ingest(context.Background(), dir, flag)
	assert.ErrorIs(t, err, apperrors.ErrNoInputFiles)
}

func TestIngestor_NoInputFiles(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{"empty folder", func(t *testing.T) string { return t.TempDir() }},
		{"only other extensions", func(t *testing.T) string {
			dir := t.TempDir()
			testutil.WriteLines(t, dir, "a.csv", "x")
			return dir
		}},
		{"missing folder", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor, _ := newTestIngestor(t)
			_, err := ingestor.Ingest(context.Background(), tt.setup(t))
			assert.ErrorIs(t, err, apperrors.ErrNoInputFiles)
		})
	}
}

func TestIngestor_CancelledContext(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)
	ingestor, _ := newTestIngestor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ingestor.Ingest(ctx, fx.SourceDir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestor_DefaultPattern(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLines(t, dir, "output_20250101.TXT", "1;1;A;B;C")

	result, err := NewIngestor(config.InputConfig{}, nil).Ingest(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FileCount())
}
