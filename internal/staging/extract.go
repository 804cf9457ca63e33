package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"mediasort/internal/logging"
	"mediasort/internal/services"
)

const stageName = "extracting"

// ErrUnsafePath is returned for archive entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes extraction directory")

// Extraction summarizes an expanded archive.
type Extraction struct {
	Dir     string         `json:"dir"`
	Files   int            `json:"files"`
	Bytes   int64          `json:"bytes"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// SkippedEntry is an archive entry that was not written to the staging
// directory (symlinks, devices and other non-regular entries). It only
// exists inside the archive.
type SkippedEntry struct {
	Name  string      `json:"name"`
	Mode  os.FileMode `json:"mode"`
	Bytes int64       `json:"bytes"`
}

// Extract expands the zip archive at archivePath into dir, which is created
// if needed. Entry paths are kept relative to dir and entry modification
// times are restored on the extracted files; entries that only carry an
// MS-DOS timestamp are read as wall-clock time in loc (nil means
// time.Local). Non-regular entries are not extracted and are listed in
// Skipped. Any entry escaping dir fails the whole extraction. Errors wrap
// services.ErrExtraction.
func Extract(ctx context.Context, fsys afero.Fs, archivePath, dir string, loc *time.Location, logger *slog.Logger) (Extraction, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "staging"))
	result := Extraction{Dir: dir}

	info, err := fsys.Stat(archivePath)
	if err != nil {
		return result, services.Wrap(services.ErrExtraction, stageName, "stat archive", archivePath, err)
	}
	f, err := fsys.Open(archivePath)
	if err != nil {
		return result, services.Wrap(services.ErrExtraction, stageName, "open archive", archivePath, err)
	}
	defer f.Close()

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return result, services.Wrap(services.ErrExtraction, stageName, "read archive", archivePath, err)
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return result, services.Wrap(services.ErrExtraction, stageName, "create staging directory", dir, err)
	}

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("extraction interrupted: %w", err)
		}
		target, err := entryPath(dir, entry.Name)
		if err != nil {
			return result, services.Wrap(services.ErrExtraction, stageName, "entry path", entry.Name, err)
		}

		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return result, services.Wrap(services.ErrExtraction, stageName, "create directory", entry.Name, err)
			}
			continue
		case mode&os.ModeSymlink != 0, !mode.IsRegular():
			result.Skipped = append(result.Skipped, SkippedEntry{
				Name:  entry.Name,
				Mode:  mode,
				Bytes: int64(entry.UncompressedSize64),
			})
			logger.Info("skipping non-regular archive entry",
				logging.String("entry", entry.Name),
				logging.String("mode", mode.String()),
			)
			continue
		}

		n, err := extractFile(fsys, entry, target, loc)
		if err != nil {
			return result, services.Wrap(services.ErrExtraction, stageName, "extract entry", entry.Name, err)
		}
		result.Files++
		result.Bytes += n
	}

	logger.Info("archive extracted",
		logging.String("archive", archivePath),
		logging.String("staging_dir", dir),
		logging.Int("files", result.Files),
		logging.Int("skipped", len(result.Skipped)),
		logging.String("size", logging.FormatBytes(result.Bytes)),
	)
	return result, nil
}

func extractFile(fsys afero.Fs, entry *zip.File, target string, loc *time.Location) (int64, error) {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	rc, err := entry.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := fsys.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, rc)
	if err != nil {
		_ = out.Close()
		return n, err
	}
	if err := out.Close(); err != nil {
		return n, err
	}

	if modified := entryModTime(&entry.FileHeader, loc); !modified.IsZero() {
		if err := fsys.Chtimes(target, modified, modified); err != nil {
			return n, err
		}
	}
	return n, nil
}

// entryModTime returns the modification time recorded for an entry. Without
// an extended timestamp the reader fills Modified from the MS-DOS fields,
// which hold local wall-clock time, and labels it UTC; those fields are
// rebuilt in loc instead.
func entryModTime(hdr *zip.FileHeader, loc *time.Location) time.Time {
	m := hdr.Modified
	if m.IsZero() || m.Location() != time.UTC {
		return m
	}
	if hdr.ModifiedDate == 0 && hdr.ModifiedTime == 0 {
		// Extended timestamp only, or no timestamp at all (which decodes
		// to a date before the MS-DOS epoch).
		if m.Year() < 1980 {
			return time.Time{}
		}
		return m
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(m.Year(), m.Month(), m.Day(), m.Hour(), m.Minute(), m.Second(), 0, loc)
}

// entryPath joins an archive entry name onto dir, rejecting absolute names
// and any ".." traversal out of dir.
func entryPath(dir, name string) (string, error) {
	clean := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if clean == "" || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", ErrUnsafePath
	}
	target := filepath.Join(dir, clean)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return target, nil
}
