// Package tempstore manages the shared temporary-file directory used by
// download jobs. Each job gets a collision-free file name and only ever
// removes its own file; a periodic sweep clears anything left behind by a
// crashed process.
package tempstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Store hands out unique paths inside a single temp directory.
type Store struct {
	dir    string
	sweep  *cron.Cron
	logger *slog.Logger
}

// New creates the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With("component", "tempstore"),
	}, nil
}

// Dir returns the managed directory.
func (s *Store) Dir() string {
	return s.dir
}

// NewPath returns a unique file path with the given extension. The UUID token
// makes concurrent jobs collision-free; a coarse timestamp would not.
func (s *Store) NewPath(ext string) string {
	return filepath.Join(s.dir, uuid.NewString()+ext)
}

// Remove deletes a job's file. Cleanup failure is logged, never fatal, and
// never surfaced to chat. A missing file counts as already cleaned.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("temp file cleanup failed", "path", path, "error", err)
	}
}

// Sweep deletes every file in the directory and returns how many went.
// Used at startup (best-effort crash recovery) and by !cleartemp.
func (s *Store) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading temp dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("sweep could not remove file", "name", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// SweepOlderThan deletes files whose modification time is older than the
// given age. Leaves in-flight job files alone.
func (s *Store) SweepOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading temp dir: %w", err)
	}
	cutoff := time.Now().Add(-age)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("sweep could not remove file", "name", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// StartSweeper clears stale files hourly until StopSweeper is called. Only
// files older than an hour are touched, so active jobs keep exclusive
// ownership of their own file.
func (s *Store) StartSweeper() {
	if s.sweep != nil {
		return
	}
	s.sweep = cron.New()
	_, err := s.sweep.AddFunc("@hourly", func() {
		n, err := s.SweepOlderThan(time.Hour)
		if err != nil {
			s.logger.Warn("periodic temp sweep failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Info("periodic temp sweep", "removed", n)
		}
	})
	if err != nil {
		s.logger.Error("failed to schedule temp sweep", "error", err)
		return
	}
	s.sweep.Start()
}

// StopSweeper stops the periodic sweep.
func (s *Store) StopSweeper() {
	if s.sweep != nil {
		s.sweep.Stop()
		s.sweep = nil
	}
}
