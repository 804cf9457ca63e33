package testsupport

import (
	"path/filepath"
	"testing"

	"mediasort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Source defaults to <base>/source and the collection label to "family".
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Source = filepath.Join(base, "source")
	cfgVal.Paths.Destination = filepath.Join(base, "library")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Library.CollectionLabel = "family"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithArchiveSource points the source at <base>/<name> and enables archive mode.
func WithArchiveSource(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.Source = filepath.Join(b.baseDir, name)
		b.cfg.Run.ArchiveMode = true
	}
}

// WithLabel overrides the collection label.
func WithLabel(label string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.CollectionLabel = label
	}
}

// WithoutLock disables the destination lock.
func WithoutLock() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Lock = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
