package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeLogging()
	c.normalizeMetrics()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.Source) == "" {
		if value, ok := os.LookupEnv("MEDIASORT_SOURCE"); ok {
			c.Paths.Source = strings.TrimSpace(value)
		}
	}
	if value, ok := os.LookupEnv("MEDIASORT_DESTINATION"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Destination = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.Source, err = expandPath(strings.TrimSpace(c.Paths.Source)); err != nil {
		return fmt.Errorf("paths.source: %w", err)
	}
	if c.Paths.Destination, err = expandPath(strings.TrimSpace(c.Paths.Destination)); err != nil {
		return fmt.Errorf("paths.destination: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	if strings.TrimSpace(c.Library.CollectionLabel) == "" {
		if value, ok := os.LookupEnv("MEDIASORT_LABEL"); ok {
			c.Library.CollectionLabel = value
		}
	}
	c.Library.CollectionLabel = strings.TrimSpace(c.Library.CollectionLabel)

	exts := make([]string, 0, len(c.Library.ExtraVideoExtensions))
	seen := make(map[string]struct{}, len(c.Library.ExtraVideoExtensions))
	for _, ext := range c.Library.ExtraVideoExtensions {
		ext = NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Library.ExtraVideoExtensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return
	}
	if expanded, err := expandPath(c.Metrics.Textfile); err == nil {
		c.Metrics.Textfile = expanded
	}
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
