package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// maxSuffix bounds the collision search so a pathological directory cannot
// spin forever.
const maxSuffix = 100000

// NormalizeName returns the NFC form of a base filename.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// SplitName splits a filename into stem and extension. Only the last dot
// counts, and a leading dot (".hidden") is part of the stem.
func SplitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// UniqueName returns a filename in dir that does not exist yet. It tries
// name itself first, then stem_1.ext, stem_2.ext and so on. name is
// NFC-normalized before the check.
func UniqueName(fsys afero.Fs, dir, name string) (string, error) {
	name = NormalizeName(name)
	stem, ext := SplitName(name)
	candidate := name
	for i := 1; ; i++ {
		_, err := fsys.Stat(filepath.Join(dir, candidate))
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if i > maxSuffix {
			return "", fmt.Errorf("no free name for %s in %s", name, dir)
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}
