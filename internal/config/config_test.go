package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediasort/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MEDIASORT_SOURCE", "")
	t.Setenv("MEDIASORT_LABEL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "mediasort", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.Destination != filepath.Join(tempHome, "Pictures", "PhoneBackup") {
		t.Fatalf("unexpected destination: %q", cfg.Paths.Destination)
	}
	if cfg.Paths.Source != "" {
		t.Fatalf("expected empty source, got %q", cfg.Paths.Source)
	}
	if !cfg.Run.Lock {
		t.Fatal("expected destination lock enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if err := cfg.ValidateRun(); err == nil {
		t.Fatal("expected ValidateRun to require a source")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mediasort.toml")

	type payload struct {
		Paths struct {
			Source      string `toml:"source"`
			Destination string `toml:"destination"`
		} `toml:"paths"`
		Library struct {
			CollectionLabel      string   `toml:"collection_label"`
			ExtraVideoExtensions []string `toml:"extra_video_extensions"`
		} `toml:"library"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.Source = filepath.Join(tempDir, "export.zip")
	custom.Paths.Destination = filepath.Join(tempDir, "library")
	custom.Library.CollectionLabel = " family "
	custom.Library.ExtraVideoExtensions = []string{"M4V", ".3gp", ".m4v", ""}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Library.CollectionLabel != "family" {
		t.Fatalf("expected trimmed label, got %q", cfg.Library.CollectionLabel)
	}
	if got := strings.Join(cfg.Library.ExtraVideoExtensions, ","); got != ".m4v,.3gp" {
		t.Fatalf("unexpected extra extensions: %q", got)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lower-cased log format, got %q", cfg.Logging.Format)
	}
	if !cfg.IsArchiveSource() {
		t.Fatal("expected .zip source to enable archive handling")
	}
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("ValidateRun returned error: %v", err)
	}
	if got := cfg.LockPath(); got != filepath.Join(tempDir, "library", ".mediasort.lock") {
		t.Fatalf("unexpected lock path %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mediasort.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nsorce = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	src := t.TempDir()
	dest := t.TempDir()
	t.Setenv("MEDIASORT_SOURCE", src)
	t.Setenv("MEDIASORT_DESTINATION", dest)
	t.Setenv("MEDIASORT_LABEL", "kids")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Source != src || cfg.Paths.Destination != dest {
		t.Fatalf("unexpected paths: %+v", cfg.Paths)
	}
	if cfg.Library.CollectionLabel != "kids" {
		t.Fatalf("expected label from env, got %q", cfg.Library.CollectionLabel)
	}
	if cfg.IsArchiveSource() {
		t.Fatal("directory source should not be treated as archive")
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"label with separator", func(c *config.Config) { c.Library.CollectionLabel = "a/b" }},
		{"dot label", func(c *config.Config) { c.Library.CollectionLabel = ".." }},
		{"shadowed extension", func(c *config.Config) { c.Library.ExtraVideoExtensions = []string{".jpg"} }},
		{"compound extension", func(c *config.Config) { c.Library.ExtraVideoExtensions = []string{".tar.gz"} }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }},
		{"metrics suffix", func(c *config.Config) { c.Metrics.Textfile = "/tmp/metrics.txt" }},
		{"unknown timezone", func(c *config.Config) { c.Library.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateRunRejectsDestinationInsideSource(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Source = base
	cfg.Paths.Destination = filepath.Join(base, "sorted")
	cfg.Library.CollectionLabel = "family"
	if err := cfg.ValidateRun(); err == nil {
		t.Fatal("expected error for destination nested in source")
	}

	cfg.Paths.Destination = filepath.Join(filepath.Dir(base), "elsewhere")
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocation(t *testing.T) {
	cfg := config.Default()
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("expected local zone, got %v %v", loc, err)
	}
	cfg.Library.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v %v", loc, err)
	}
}

func TestLockPathDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.Destination = "/data/library"
	cfg.Run.Lock = false
	if got := cfg.LockPath(); got != "" {
		t.Fatalf("expected no lock path, got %q", got)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load: exists=%v err=%v", exists, err)
	}
}
