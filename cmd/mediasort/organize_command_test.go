package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediasort/internal/runner"
	"mediasort/internal/testsupport"
)

type organizeJSON struct {
	RunID  string   `json:"run_id"`
	State  string   `json:"state"`
	Path   []string `json:"path"`
	Result struct {
		Placed []struct {
			Destination string `json:"destination"`
			Category    string `json:"category"`
			DateSource  string `json:"date_source"`
		} `json:"placed"`
		Unplaced []struct {
			Relative string `json:"relative"`
			Reason   string `json:"reason"`
		} `json:"unplaced"`
	} `json:"result"`
	Error     string `json:"error"`
	Preserved bool   `json:"preserved"`
	ExitCode  int    `json:"exit_code"`
}

var fileTime = time.Date(2022, time.January, 2, 12, 0, 0, 0, time.UTC)

func writeSourceTree(t *testing.T, root string, withNotes bool) {
	t.Helper()
	testsupport.WriteOSFile(t, filepath.Join(root, "DCIM", "IMG_0001.JPG"), testsupport.JPEGWithCaptureTime("2021:06:15 10:30:00"), fileTime)
	testsupport.WriteOSFile(t, filepath.Join(root, "DCIM", "clip.MOV"), []byte("no movie header"), fileTime)
	if withNotes {
		testsupport.WriteOSFile(t, filepath.Join(root, "notes.txt"), []byte("hello"), fileTime)
	}
}

func TestOrganizeJSONReportsPlacementsAndUnplaced(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceTree(t, env.cfg.Paths.Source, true)

	out, _, err := runCLI(t, []string{"--json", "organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}

	var payload organizeJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.State != string(runner.StateDone) || payload.ExitCode != 0 || payload.Error != "" {
		t.Fatalf("unexpected run status: %+v", payload)
	}
	if !payload.Preserved {
		t.Fatal("expected preserved flag for a run with unplaced files")
	}
	if len(payload.Result.Placed) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(payload.Result.Placed))
	}
	if len(payload.Result.Unplaced) != 1 || payload.Result.Unplaced[0].Relative != "notes.txt" {
		t.Fatalf("unexpected unplaced list: %+v", payload.Result.Unplaced)
	}

	want := filepath.Join(env.cfg.Paths.Destination, "family", "2021", "June", "Pictures", "IMG_0001.JPG")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.Source, "notes.txt")); err != nil {
		t.Fatalf("unplaced source must stay: %v", err)
	}
}

func TestOrganizeStrictFailsOnUnplaced(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceTree(t, env.cfg.Paths.Source, true)

	out, _, err := runCLI(t, []string{"organize", "--strict"}, env.configPath)
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("expected errIncomplete, got %v", err)
	}
	if code := exitCode(err); code != 4 {
		t.Fatalf("exit code = %d, want 4", code)
	}
	if !strings.Contains(out, "notes.txt") {
		t.Fatalf("report should list the unplaced file:\n%s", out)
	}
}

func TestOrganizeStrictPassesWhenComplete(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceTree(t, env.cfg.Paths.Source, false)

	out, _, err := runCLI(t, []string{"organize", "--strict"}, env.configPath)
	if err != nil {
		t.Fatalf("organize --strict: %v", err)
	}
	if !strings.Contains(out, "Placed 2 files") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestOrganizeFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLabel(""))
	other := filepath.Join(env.baseDir, "other")
	writeSourceTree(t, other, false)

	_, _, err := runCLI(t, []string{"organize", "--source", other, "--label", "kids"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	want := filepath.Join(env.cfg.Paths.Destination, "kids", "2022", "January", "Videos", "clip.MOV")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}
}

func TestOrganizeWithoutLabelIsConfigError(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLabel(""))
	writeSourceTree(t, env.cfg.Paths.Source, false)

	_, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing label to fail")
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestOrganizeArchiveRemovesStagingAndArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := filepath.Join(env.baseDir, "export.zip")
	testsupport.WriteOSFile(t, archive, testsupport.ZipArchive(t,
		testsupport.ZipEntry{Name: "DCIM/IMG_0001.JPG", Data: testsupport.JPEGWithCaptureTime("2021:06:15 10:30:00"), Modified: fileTime},
	), time.Time{})

	out, _, err := runCLI(t, []string{"organize", "--source", archive}, env.configPath)
	if err != nil {
		t.Fatalf("organize archive: %v", err)
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("expected archive removed, stat err=%v", err)
	}
	if !strings.Contains(out, "Staging directory and archive removed") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestOrganizeReportListsEveryPath(t *testing.T) {
	env := setupCLITestEnv(t)
	writeSourceTree(t, env.cfg.Paths.Source, true)

	out, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	for _, want := range []string{
		filepath.Join(env.cfg.Paths.Destination, "family", "2021", "June", "Pictures", "IMG_0001.JPG"),
		filepath.Join(env.cfg.Paths.Destination, "family", "2022", "January", "Videos", "clip.MOV"),
		filepath.Join(env.cfg.Paths.Source, "notes.txt"),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %s:\n%s", want, out)
		}
	}
}
