package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasort/internal/config"
	"mediasort/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_Missing(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", path).Passed {
		t.Fatal("expected failure for a regular file")
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "backup.zip")
	if err := os.WriteFile(archive, []byte("PK"), 0o644); err != nil {
		t.Fatal(err)
	}

	if r := CheckSource("src", dir, false); !r.Passed {
		t.Fatalf("directory source should pass: %s", r.Detail)
	}
	if r := CheckSource("src", archive, true); !r.Passed {
		t.Fatalf("archive source should pass: %s", r.Detail)
	}
	if r := CheckSource("src", archive, false); r.Passed {
		t.Fatal("file passed as directory source should fail")
	}
	if r := CheckSource("src", dir, true); r.Passed {
		t.Fatal("directory passed as archive should fail")
	}
}

func TestCheckCreatable(t *testing.T) {
	dir := t.TempDir()
	if r := CheckCreatable("dest", filepath.Join(dir, "a", "b")); !r.Passed {
		t.Fatalf("nested missing dir under writable temp should pass: %s", r.Detail)
	}
	if r := CheckCreatable("dest", dir); !r.Passed {
		t.Fatalf("existing dir should pass: %s", r.Detail)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if r := CheckFreeSpace("space", dir, 0); !r.Passed {
		t.Fatalf("zero need should pass: %s", r.Detail)
	}
	if r := CheckFreeSpace("space", dir, ^uint64(0)); r.Passed {
		t.Fatal("impossible need should fail")
	}
}

func TestRunAllArchiveAddsStagingChecks(t *testing.T) {
	base := t.TempDir()
	archive := filepath.Join(base, "backup.zip")
	if err := os.WriteFile(archive, []byte("PK"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Paths.Source = archive
	cfg.Paths.Destination = filepath.Join(base, "library")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")

	results := RunAll(context.Background(), &cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Detail)
		}
	}
	if strings.Join(names, ",") != "Source,Destination,Destination space,Staging directory,Staging space" {
		t.Fatalf("unexpected checks %v", names)
	}
	if err := Failed(results); err != nil {
		t.Fatalf("Failed: %v", err)
	}
}

func TestFailedWrapsValidation(t *testing.T) {
	err := Failed([]Result{
		{Name: "Source", Passed: true},
		{Name: "Destination", Detail: "/x (error: no existing parent)"},
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "Destination") {
		t.Fatalf("error should name the failed check: %v", err)
	}
}
