package exporter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/shared/testutil"
	"tincli/pkg/contracts/domain"
)

var runDate = time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)

func sampleRows() []domain.CombinedRow {
	return []domain.CombinedRow{
		{AccountNumber: "00123", ErrorCodes: "E1", TinMatchDate: "08/14/2025"},
		{AccountNumber: "A,2", ErrorCodes: "3", TinMatchDate: ""},
	}
}

func sampleStats() *domain.SummaryStats {
	return &domain.SummaryStats{
		RunID:             "run-1",
		RunDate:           "20250820",
		SourceFolder:      "/in",
		FlagFile:          "/flags/accounts_20250814.txt",
		FlagDate:          "20250814",
		FileCount:         2,
		RawRowCount:       8,
		DuplicatesRemoved: 1,
		PrimaryRowCount:   7,
		FlagRowsRead:      4,
		FlagRowsKept:      4,
		QcCheckCounts:     map[string]int{"qc_check_2": 1, "qc_check_1": 3, "": 1},
		ErrorCodeCounts:   map[string]int{"1": 2, "E1": 9},
		FinalRowCount:     11,
		GeneratedAt:       runDate,
	}
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "Final_consolidated_output_20250820.csv", OutputFileName(runDate, config.OutputCSVExt))
	assert.Equal(t, "Final_consolidated_output_20250820.txt", OutputFileName(runDate, config.OutputTextExt))
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	logger, _ := testutil.NewTestLogger(t)
	stats := sampleStats()

	paths, err := NewExporter(config.ExportConfig{}, logger).Export(context.Background(), dir, runDate, sampleRows(), stats)
	require.NoError(t, err)

	expected := []string{
		filepath.Join(dir, "Final_consolidated_output_20250820.csv"),
		filepath.Join(dir, "Final_consolidated_output_20250820.txt"),
		filepath.Join(dir, "README.txt"),
	}
	assert.Equal(t, expected, paths)
	assert.Equal(t, expected, stats.Outputs)
	assert.ElementsMatch(t, []string{
		"Final_consolidated_output_20250820.csv",
		"Final_consolidated_output_20250820.txt",
		"README.txt",
	}, testutil.ListDir(t, dir), "no temp files left behind")

	csvData, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "account_number,error_codes,tin_match_date\n00123,E1,08/14/2025\n\"A,2\",3,\n", string(csvData))

	txtData, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "account_number;error_codes;tin_match_date\n00123;E1;08/14/2025\nA,2;3;\n", string(txtData))

	readme, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Contains(t, string(readme), "No. of duplicates removed: 1")
	assert.Contains(t, string(readme), "Final_consolidated_output_20250820.csv")
}

func TestExporter_BOMPrefix(t *testing.T) {
	dir := t.TempDir()

	paths, err := NewExporter(config.ExportConfig{BOMPrefix: true}, nil).Export(context.Background(), dir, runDate, sampleRows(), sampleStats())
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
}

func TestExporter_Workbook(t *testing.T) {
	dir := t.TempDir()

	paths, err := NewExporter(config.ExportConfig{Excel: true}, nil).Export(context.Background(), dir, runDate, sampleRows(), sampleStats())
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "Final_consolidated_output_20250820.xlsx"), paths[2])

	f, err := excelize.OpenFile(paths[2])
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(config.OutputSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, config.OutputColumns, rows[0])
	assert.Equal(t, []string{"00123", "E1", "08/14/2025"}, rows[1])
}

func TestExporter_CancelledLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(config.ExportConfig{}, nil).Export(ctx, dir, runDate, sampleRows(), sampleStats())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, testutil.ListDir(t, dir))
}

func TestExporter_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewExporter(config.ExportConfig{}, nil).Export(context.Background(), filepath.Join(blocker, "out"), runDate, sampleRows(), sampleStats())
	assert.ErrorIs(t, err, apperrors.ErrIO)
}

func TestOutputSet_FailedStageRollsBack(t *testing.T) {
	dir := t.TempDir()
	set, err := NewOutputSet(dir, nil)
	require.NoError(t, err)

	require.NoError(t, set.Stage("a.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "a")
		return err
	}))
	err = set.Stage("b.txt", func(io.Writer) error { return errors.New("disk full") })
	require.Error(t, err)

	set.Rollback()
	assert.Empty(t, testutil.ListDir(t, dir))
}

func TestOutputSet_CommitReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0644))

	set, err := NewOutputSet(dir, nil)
	require.NoError(t, err)
	require.NoError(t, set.Stage("a.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	}))

	paths, err := set.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	set.Rollback()
	assert.Equal(t, []string{"a.txt"}, testutil.ListDir(t, dir))
}

func TestOutputSet_CommitFailureRemovesPublished(t *testing.T) {
	dir := t.TempDir()
	set, err := NewOutputSet(dir, nil)
	require.NoError(t, err)

	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "x")
		return err
	}
	require.NoError(t, set.Stage("a.txt", write))
	require.NoError(t, set.Stage("b.txt", write))

	// A directory at the final name makes the second publish fail
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b.txt", "child"), 0755))

	_, err = set.Commit()
	require.Error(t, err)
	assert.Equal(t, []string{"b.txt"}, testutil.ListDir(t, dir))
}

func TestOutputSet_CommitFailureRestoresReplaced(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("previous run"), 0644))

	set, err := NewOutputSet(dir, nil)
	require.NoError(t, err)

	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "this run")
		return err
	}
	require.NoError(t, set.Stage("a.txt", write))
	require.NoError(t, set.Stage("b.txt", write))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b.txt", "child"), 0755))

	_, err = set.Commit()
	require.Error(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, testutil.ListDir(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(data))
}

func TestOutputSet_CreatedDirectories(t *testing.T) {
	write := func(w io.Writer) error {
		_, err := io.WriteString(w, "x")
		return err
	}

	t.Run("rollback removes them", func(t *testing.T) {
		root := t.TempDir()
		set, err := NewOutputSet(filepath.Join(root, "nested", "out"), nil)
		require.NoError(t, err)
		require.NoError(t, set.Stage("a.txt", write))

		set.Rollback()
		assert.Empty(t, testutil.ListDir(t, root))
	})

	t.Run("failed commit removes them", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "out")
		set, err := NewOutputSet(dir, nil)
		require.NoError(t, err)
		require.NoError(t, set.Stage("a.txt", write))
		require.NoError(t, set.Stage("b.txt", write))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "b.txt", "child"), 0755))

		_, err = set.Commit()
		require.Error(t, err)
		assert.Equal(t, []string{"b.txt"}, testutil.ListDir(t, dir), "directory with foreign content is kept")
	})

	t.Run("commit keeps them", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "out")
		set, err := NewOutputSet(dir, nil)
		require.NoError(t, err)
		require.NoError(t, set.Stage("a.txt", write))

		_, err = set.Commit()
		require.NoError(t, err)
		set.Rollback()
		assert.Equal(t, []string{"a.txt"}, testutil.ListDir(t, dir))
	})
}

func TestExporter_CancelledRunLeavesNoDirectory(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter(config.ExportConfig{}, nil).Export(ctx, filepath.Join(root, "out"), runDate, sampleRows(), sampleStats())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, testutil.ListDir(t, root))
}

func TestWriteReadme(t *testing.T) {
	stats := sampleStats()
	stats.Outputs = []string{"/out/Final_consolidated_output_20250820.csv", "/out/README.txt"}

	var buf bytes.Buffer
	require.NoError(t, WriteReadme(&buf, stats))
	report := buf.String()

	for _, want := range []string{
		"Generated: 2025-08-20 09:30:00",
		"Run date: 20250820",
		"No. of source files: 2",
		"No. of raw rows: 8",
		"No. of duplicates removed: 1",
		"No. of primary rows after deduplication: 7",
		"  (blank): 1",
		"No. of qc_check_8 matches: 0",
		"No. of flag rows kept: 4",
		"No. of rows in final output: 11",
		"  E1: 9",
		"  README.txt",
	} {
		assert.Contains(t, report, want)
	}

	assert.Less(t, strings.Index(report, "qc_check_1: 3"), strings.Index(report, "qc_check_2: 1"), "counts are sorted")
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "Data", []string{"a", "b"}, [][]string{{"1", "2"}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, ';', false, []string{"x", "y"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1", "a;b"}))
	require.NoError(t, sw.Flush())

	assert.Equal(t, "x;y\n1;\"a;b\"\n", buf.String())
}
