package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type stagedFile struct {
	temp   string
	final  string
	backup string
}

// OutputSet stages files in a directory and publishes them together.
// Nothing is visible under its final name until Commit succeeds. Files
// already present under a final name are replaced, but only once every
// staged file has been published; a failed Commit puts them back.
type OutputSet struct {
	dir     string
	created []string
	staged  []stagedFile
	logger  *slog.Logger
}

// NewOutputSet prepares dir, creating it if needed. Directories created here
// are removed again by Rollback unless Commit succeeded.
func NewOutputSet(dir string, logger *slog.Logger) (*OutputSet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	created, err := mkdirTracked(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &OutputSet{dir: dir, created: created, logger: logger}, nil
}

// mkdirTracked creates dir and its missing parents and returns the created
// directories deepest first.
func mkdirTracked(dir string) ([]string, error) {
	var missing []string
	for p := filepath.Clean(dir); ; {
		if _, err := os.Stat(p); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return nil, err
		}
		missing = append(missing, p)
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		for _, p := range missing {
			os.Remove(p)
		}
		return nil, err
	}
	return missing, nil
}

// Stage writes a file that will be published as name on Commit
func (s *OutputSet) Stage(name string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	s.staged = append(s.staged, stagedFile{temp: tmp.Name(), final: filepath.Join(s.dir, name)})

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}

// Commit renames every staged file to its final name and returns the final
// paths in staging order. If any rename fails, files published by this call
// are removed, the files they replaced are restored and the remaining temps
// are deleted.
func (s *OutputSet) Commit() ([]string, error) {
	published := make([]stagedFile, 0, len(s.staged))
	for i, f := range s.staged {
		err := s.publish(&f)
		if err != nil {
			for j := len(published) - 1; j >= 0; j-- {
				s.unpublish(published[j])
			}
			s.staged = s.staged[i:]
			s.Rollback()
			return nil, fmt.Errorf("failed to publish %s: %w", f.final, err)
		}
		published = append(published, f)
	}

	paths := make([]string, len(published))
	for i, f := range published {
		if f.backup != "" {
			if err := os.Remove(f.backup); err != nil {
				s.logger.Warn("Failed to remove replaced output",
					slog.String("path", f.backup),
					slog.String("error", err.Error()))
			}
		}
		paths[i] = f.final
	}
	s.staged = nil
	s.created = nil

	s.logger.Debug("Output files committed", slog.Int("files", len(paths)))
	return paths, nil
}

// publish moves an existing file at f.final aside, then renames the temp
// into place. On failure the previous file is back under its name.
func (s *OutputSet) publish(f *stagedFile) error {
	info, err := os.Lstat(f.final)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return err
	case info.IsDir():
		return fmt.Errorf("%s is a directory", f.final)
	default:
		backup, err := os.CreateTemp(s.dir, "."+filepath.Base(f.final)+".*.bak")
		if err != nil {
			return err
		}
		backup.Close()
		if err := os.Rename(f.final, backup.Name()); err != nil {
			os.Remove(backup.Name())
			return err
		}
		f.backup = backup.Name()
	}

	if err := os.Rename(f.temp, f.final); err != nil {
		s.restore(*f)
		f.backup = ""
		return err
	}
	return nil
}

// unpublish removes a file published by Commit and restores what it replaced
func (s *OutputSet) unpublish(f stagedFile) {
	if f.backup != "" {
		s.restore(f)
		return
	}
	if err := os.Remove(f.final); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove published output",
			slog.String("path", f.final),
			slog.String("error", err.Error()))
	}
}

func (s *OutputSet) restore(f stagedFile) {
	if f.backup == "" {
		return
	}
	if err := os.Rename(f.backup, f.final); err != nil {
		s.logger.Error("Failed to restore replaced output",
			slog.String("path", f.final),
			slog.String("backup", f.backup),
			slog.String("error", err.Error()))
	}
}

// Rollback removes every staged temp file and any directory NewOutputSet
// created. It is safe to call after Commit.
func (s *OutputSet) Rollback() {
	for _, f := range s.staged {
		if err := os.Remove(f.temp); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove temp file",
				slog.String("path", f.temp),
				slog.String("error", err.Error()))
		}
	}
	s.staged = nil

	// os.Remove leaves non-empty directories in place
	for _, dir := range s.created {
		os.Remove(dir)
	}
	s.created = nil
}
