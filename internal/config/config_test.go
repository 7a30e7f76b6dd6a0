package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10*time.Minute, cfg.Server.OperationTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, "logs/tincli.log", cfg.Logging.FilePath)
				assert.Equal(t, "*.txt", cfg.Input.SourcePattern)
				assert.Equal(t, "utf-8", cfg.Input.Encoding)
				assert.Empty(t, cfg.Export.OutputDir)
				assert.False(t, cfg.Export.Excel)
				assert.False(t, cfg.Telemetry.EnableTracing)
				assert.True(t, cfg.Telemetry.EnableMetrics)
			},
		},
		{
			name: "env vars override defaults",
			env: map[string]string{
				"TINCLI_SERVER_PORT":       "9191",
				"TINCLI_LOGGING_LEVEL":     "debug",
				"TINCLI_INPUT_ENCODING":    "windows-1252",
				"TINCLI_EXPORT_EXCEL":      "true",
				"TINCLI_EXPORT_OUTPUT_DIR": "/tmp/out",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "windows-1252", cfg.Input.Encoding)
				assert.True(t, cfg.Export.Excel)
				assert.Equal(t, "/tmp/out", cfg.Export.OutputDir)
			},
		},
		{
			name: "yaml file overlays defaults",
			fileContent: `
logging:
  level: warn
  format: text
input:
  encoding: shift_jis
export:
  excel: true
  bom_prefix: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "shift_jis", cfg.Input.Encoding)
				assert.True(t, cfg.Export.Excel)
				assert.True(t, cfg.Export.BOMPrefix)
			},
		},
		{
			name: "env var wins over yaml file",
			env: map[string]string{
				"TINCLI_LOGGING_LEVEL": "error",
			},
			fileContent: "logging:\n  level: warn\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "error", cfg.Logging.Level)
			},
		},
		{
			name:    "unsupported encoding is rejected",
			env:     map[string]string{"TINCLI_INPUT_ENCODING": "ebcdic"},
			wantErr: true,
		},
		{
			name:    "invalid port is rejected",
			env:     map[string]string{"TINCLI_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:        "malformed yaml file",
			fileContent: "logging: [unterminated",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.fileContent != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_UnknownLogFormatFallsBackToJSON(t *testing.T) {
	t.Setenv("TINCLI_LOGGING_FORMAT", "xml")

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestIsSupportedEncoding(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "windows-1252", "cp1252", "latin1", "shift_jis", "sjis", "utf-16le", ""} {
		assert.True(t, IsSupportedEncoding(name), name)
	}
	assert.False(t, IsSupportedEncoding("koi8-r"))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.validate())
	assert.Equal(t, SourceFilePattern, cfg.Input.SourcePattern)
	assert.Equal(t, DefaultOperationTimeout, cfg.Server.OperationTimeout)
}

func TestBusinessRuleTables(t *testing.T) {
	assert.Equal(t, "1", QcCheckErrorCodes["qc_check_1"])
	assert.Equal(t, "1", QcCheckErrorCodes["qc_check_2"])
	assert.Equal(t, "2", QcCheckErrorCodes["qc_check_3"])
	assert.Equal(t, "3", QcCheckErrorCodes["qc_check_4"])
	assert.NotContains(t, QcCheckErrorCodes, QcCheckMatchPrimary)
	assert.Equal(t, "2", TinTypeNormalization["SSN"])
	assert.Len(t, PrimaryColumns, 6)
}
