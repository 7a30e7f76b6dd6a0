package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "tincli/internal/errors"
)

// FileValidator checks the paths handed to a consolidation run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSourceFolder checks that dir was chosen and is an existing directory.
// A blank dir means the user did not pick one.
func (v *FileValidator) ValidateSourceFolder(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return apperrors.NewUserCancelledError("source folder")
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Warn("Source folder does not exist",
			slog.String("directory", dir))
		return apperrors.NewAppValidationError("source folder " + dir + " does not exist").
			WithContext("path", dir)
	}
	if err != nil {
		return apperrors.NewIOError("stat source folder", dir, err)
	}
	if !info.IsDir() {
		v.logger.Warn("Source path is not a directory",
			slog.String("path", dir))
		return apperrors.NewAppValidationError(dir + " is not a directory").
			WithContext("path", dir)
	}

	return nil
}

// ValidateFlagFile checks that path was chosen and is a readable regular file
func (v *FileValidator) ValidateFlagFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewUserCancelledError("flag file")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Warn("Flag file does not exist",
			slog.String("file", path))
		return apperrors.NewFlagFileNotFoundError(path, err)
	}
	if err != nil {
		return apperrors.NewIOError("stat flag file", path, err)
	}
	if info.IsDir() {
		return apperrors.NewFlagFileFormatError(path, "is a directory, not a file")
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Warn("Flag file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewIOError("open flag file", path, err)
	}
	file.Close()

	v.logger.Debug("Flag file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory checks that dir is writable, or that its nearest
// existing ancestor is when dir does not exist yet. Nothing is created.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	probeDir := dir
	for {
		info, err := os.Stat(probeDir)
		if err == nil {
			if !info.IsDir() {
				v.logger.Error("Output path is not a directory",
					slog.String("directory", dir),
					slog.String("blocked_by", probeDir))
				return apperrors.NewIOError("create output directory", dir, fmt.Errorf("%s is not a directory", probeDir))
			}
			break
		}
		if !os.IsNotExist(err) {
			return apperrors.NewIOError("stat output directory", probeDir, err)
		}
		parent := filepath.Dir(probeDir)
		if parent == probeDir {
			return apperrors.NewIOError("create output directory", dir, err)
		}
		probeDir = parent
	}

	file, err := os.CreateTemp(probeDir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", probeDir),
			slog.String("error", err.Error()))
		return apperrors.NewIOError("write to output directory", probeDir, err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir),
		slog.Bool("exists", probeDir == dir))
	return nil
}
