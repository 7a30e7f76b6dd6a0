package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Equal(t, 4, handler.Count())
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "ingest")).Info("reading")
		logger.WithGroup("run").Info("done", slog.Int("rows", 11))

		AssertLogAttr(t, handler, "component", "ingest")
		AssertLogAttr(t, handler, "run.rows", int64(11))
		assert.Equal(t, 2, handler.Count())
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		handler.Clear()

		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogContains(t, handler, slog.LevelWarn, "warning")
		AssertNoErrors(t, handler)
	})
}

func TestNewConsolidationFixture(t *testing.T) {
	fx := NewConsolidationFixture(t)

	assert.ElementsMatch(t, []string{SourceNameA, SourceNameB}, ListDir(t, fx.SourceDir))
	assert.Equal(t, filepath.Join(fx.FlagDir, FlagFileName), fx.FlagFile)

	data, err := os.ReadFile(fx.FlagFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "qc_check;tin_type;tin;name;account_number")
}
