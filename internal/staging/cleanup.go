package staging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/logging"
	"mediasort/internal/services"
)

// CleanupResult contains the outcome of a cleanup operation.
type CleanupResult struct {
	Removed []string       `json:"removed"`
	Errors  []CleanupError `json:"errors,omitempty"`
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string `json:"path"`
	Error error  `json:"-"`
}

// Err joins every recorded failure under services.ErrCleanup, or returns nil.
func (r CleanupResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, services.Wrap(services.ErrCleanup, "cleaning_up", "remove", e.Path, e.Error))
	}
	return errors.Join(errs...)
}

// Cleanup removes the extracted staging directory recursively and then the
// source archive. Callers must only invoke it once every file was placed.
// Empty paths are skipped.
func Cleanup(fsys afero.Fs, stagingDir, archivePath string, logger *slog.Logger) CleanupResult {
	logger = logging.NewComponentLogger(logger, "staging")
	var result CleanupResult

	for _, target := range []string{strings.TrimSpace(stagingDir), strings.TrimSpace(archivePath)} {
		if target == "" {
			continue
		}
		if err := fsys.RemoveAll(target); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: target, Error: err})
			logging.WarnWithContext(logger, "cleanup failed", "cleanup_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the path manually once the run is verified"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, target)
		logger.Info("removed", logging.String("path", target), logging.String(logging.FieldEventType, "cleanup"))
	}
	return result
}

// CleanStale removes staging directories older than maxAge. Preserved runs
// leave their staging tree behind for manual handling; this is how those
// are reclaimed later.
func CleanStale(ctx context.Context, fsys afero.Fs, stagingRoot string, maxAge time.Duration, logger *slog.Logger) CleanupResult {
	var result CleanupResult

	stagingRoot = strings.TrimSpace(stagingRoot)
	if stagingRoot == "" {
		return result
	}

	entries, err := afero.ReadDir(fsys, stagingRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingRoot, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !entry.ModTime().Before(cutoff) {
			continue
		}

		dirPath := filepath.Join(stagingRoot, entry.Name())
		if err := fsys.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staging directory",
					logging.String("path", dirPath),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale staging directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(entry.ModTime())),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}

	return result
}

// DirInfo contains metadata about a staging directory.
type DirInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
	Files   int       `json:"files"`
}

// ListDirectories returns all directories in the staging root with their metadata.
func ListDirectories(fsys afero.Fs, stagingRoot string) ([]DirInfo, error) {
	stagingRoot = strings.TrimSpace(stagingRoot)
	if stagingRoot == "" {
		return nil, nil
	}

	entries, err := afero.ReadDir(fsys, stagingRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(stagingRoot, entry.Name())
		size, files := dirSize(fsys, dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: entry.ModTime(),
			Size:    size,
			Files:   files,
		})
	}
	return dirs, nil
}

// dirSize totals regular file sizes below path, best effort.
func dirSize(fsys afero.Fs, path string) (int64, int) {
	var size int64
	var files int
	_ = afero.Walk(fsys, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files
}
