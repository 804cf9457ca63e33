package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mediasort/internal/config"
	"mediasort/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("MEDIASORT_SOURCE", "")
	t.Setenv("MEDIASORT_DESTINATION", "")
	t.Setenv("MEDIASORT_LABEL", "")

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Library.Timezone = "UTC"
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	if err := os.MkdirAll(cfg.Paths.Source, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.Destination, 0o755); err != nil {
		t.Fatalf("mkdir destination: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
source = %q
destination = %q
staging_dir = %q
log_dir = %q

[library]
collection_label = %q
timezone = %q

[run]
archive_mode = %t
strict = %t
lock = %t

[logging]
level = %q
`,
		cfg.Paths.Source,
		cfg.Paths.Destination,
		cfg.Paths.StagingDir,
		cfg.Paths.LogDir,
		cfg.Library.CollectionLabel,
		cfg.Library.Timezone,
		cfg.Run.ArchiveMode,
		cfg.Run.Strict,
		cfg.Run.Lock,
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
