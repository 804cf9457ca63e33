package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// WriteFile creates path on fs (including parents) with data and sets its
// modification time. A zero modTime leaves the filesystem default.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte, modTime time.Time) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if modTime.IsZero() {
		return
	}
	if err := fs.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// WriteOSFile is WriteFile against the real filesystem.
func WriteOSFile(t testing.TB, path string, data []byte, modTime time.Time) {
	t.Helper()
	WriteFile(t, afero.NewOsFs(), path, data, modTime)
}

// ReadFile returns the contents of path or fails the test.
func ReadFile(t testing.TB, fs afero.Fs, path string) []byte {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

// AssertExists fails the test unless path exists on fs.
func AssertExists(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	if _, err := fs.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// AssertMissing fails the test if path exists on fs.
func AssertMissing(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	if _, err := fs.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err=%v", path, err)
	}
}
