package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// reservedExtensions lists the built-in classifier extensions. Extra video
// extensions may not shadow them.
var reservedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".heif": {},
	".mp4": {}, ".mov": {},
	".wav": {},
}

// Validate ensures the configuration is well formed. It does not require the
// per-run inputs; use ValidateRun before organizing.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

// ValidateRun checks the values an organize run cannot proceed without:
// a source, a destination, and a collection label.
func (c *Config) ValidateRun() error {
	if strings.TrimSpace(c.Paths.Source) == "" {
		return errors.New("paths.source must be set (config file, --source, or MEDIASORT_SOURCE)")
	}
	if strings.TrimSpace(c.Paths.Destination) == "" {
		return errors.New("paths.destination must be set")
	}
	if c.Library.CollectionLabel == "" {
		return errors.New("library.collection_label must be set (config file, --label, or MEDIASORT_LABEL)")
	}
	if err := validateLabel(c.Library.CollectionLabel); err != nil {
		return err
	}
	if c.IsArchiveSource() && strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set when the source is an archive")
	}
	if within(c.Paths.Destination, c.Paths.Source) {
		return fmt.Errorf("paths.destination %q must not be inside paths.source %q", c.Paths.Destination, c.Paths.Source)
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.CollectionLabel != "" {
		if err := validateLabel(c.Library.CollectionLabel); err != nil {
			return err
		}
	}
	for _, ext := range c.Library.ExtraVideoExtensions {
		if _, ok := reservedExtensions[ext]; ok {
			return fmt.Errorf("library.extra_video_extensions: %q is already classified", ext)
		}
		if strings.ContainsAny(strings.TrimPrefix(ext, "."), `./\`) {
			return fmt.Errorf("library.extra_video_extensions: %q is not a single extension", ext)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Textfile == "" {
		return nil
	}
	if !strings.HasSuffix(c.Metrics.Textfile, ".prom") {
		return fmt.Errorf("metrics.textfile must end in .prom, got %q", c.Metrics.Textfile)
	}
	return nil
}

func validateLabel(label string) error {
	if label == "." || label == ".." {
		return fmt.Errorf("library.collection_label %q is not a valid directory name", label)
	}
	if strings.ContainsAny(label, `/\`) || strings.ContainsRune(label, 0) {
		return fmt.Errorf("library.collection_label %q must be a single path segment", label)
	}
	return nil
}

// within reports whether child is parent or lies beneath it.
func within(child, parent string) bool {
	if child == "" || parent == "" {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
