package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the application paths that do not come from user input
type Paths struct {
	ExecutableDir string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	return &Paths{
		ExecutableDir: exeDir,
		LogsDir:       filepath.Join(exeDir, DefaultLogsDir),
	}, nil
}

// ResolveLogPath makes a relative log file path absolute against the
// executable directory, so logs land in the same place regardless of the
// working directory.
func (p *Paths) ResolveLogPath(path string) string {
	if path == "" {
		return filepath.Join(p.LogsDir, DefaultLogFile)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExecutableDir, path)
}

// ResolveOutputDir returns the directory the output artifacts are written to:
// the configured override when set, otherwise the flag report's directory.
func ResolveOutputDir(flagFilePath, override string) string {
	if override != "" {
		return override
	}
	return filepath.Dir(flagFilePath)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger, logFile string) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved application paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("log_file", logFile))
}
