package media

import (
	"path/filepath"
	"sort"
	"strings"
)

var (
	pictureExtensions = []string{".jpeg", ".jpg", ".png", ".heif"}
	videoExtensions   = []string{".mp4", ".mov"}
	audioExtensions   = []string{".wav"}
)

// Classifier maps filenames to categories by case-insensitive extension.
// The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	byExt map[string]Category
}

var defaultClassifier = NewClassifier(nil)

// NewClassifier returns a classifier for the built-in extension sets, with
// extraVideo appended to the Videos set. Extra entries that already belong to
// a set are ignored so the sets stay disjoint.
func NewClassifier(extraVideo []string) *Classifier {
	c := &Classifier{byExt: make(map[string]Category, 8+len(extraVideo))}
	for _, ext := range pictureExtensions {
		c.byExt[ext] = Pictures
	}
	for _, ext := range videoExtensions {
		c.byExt[ext] = Videos
	}
	for _, ext := range audioExtensions {
		c.byExt[ext] = Audio
	}
	for _, ext := range extraVideo {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, taken := c.byExt[ext]; taken {
			continue
		}
		c.byExt[ext] = Videos
	}
	return c
}

// Classify returns the category for filename, or Unclassified.
func (c *Classifier) Classify(filename string) Category {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return Unclassified
	}
	return c.byExt[ext]
}

// Extensions returns the sorted extensions mapped to category.
func (c *Classifier) Extensions(category Category) []string {
	var out []string
	for ext, cat := range c.byExt {
		if cat == category {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// Classify maps filename to a category using the built-in extension sets.
func Classify(filename string) Category {
	return defaultClassifier.Classify(filename)
}
