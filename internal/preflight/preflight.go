package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"mediasort/internal/config"
	"mediasort/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks an organize run depends on.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	archive := cfg.IsArchiveSource()

	if strings.TrimSpace(cfg.Paths.Source) != "" {
		results = append(results, CheckSource("Source", cfg.Paths.Source, archive))
	}
	results = append(results, CheckCreatable("Destination", cfg.Paths.Destination))

	need := sourceSize(ctx, cfg.Paths.Source)
	results = append(results, CheckFreeSpace("Destination space", cfg.Paths.Destination, need))

	if archive {
		results = append(results, CheckCreatable("Staging directory", cfg.Paths.StagingDir))
		// The archive is expanded before anything is copied, so staging
		// needs roughly the same again.
		results = append(results, CheckFreeSpace("Staging space", cfg.Paths.StagingDir, need))
	}

	return results
}

// Failed wraps every failed check into a single services.ErrValidation error.
func Failed(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "", strings.Join(failed, "; "), nil)
}

// sourceSize totals regular file sizes below path (or the size of path when
// it is a file). Errors count as zero.
func sourceSize(ctx context.Context, path string) uint64 {
	if strings.TrimSpace(path) == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return uint64(info.Size())
	}
	var total uint64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if d.Type().IsRegular() {
			if fi, err := d.Info(); err == nil {
				total += uint64(fi.Size())
			}
		}
		return nil
	})
	return total
}
