package metadata

import (
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"

	"mediasort/internal/media"
)

// ExifLayout is the fixed EXIF datetime format ("YYYY:MM:DD HH:MM:SS").
const ExifLayout = "2006:01:02 15:04:05"

// ExifStrategy reads the EXIF DateTimeOriginal tag from pictures.
type ExifStrategy struct{}

func (ExifStrategy) Source() Source { return SourceExif }

func (ExifStrategy) Supports(category media.Category) bool { return category == media.Pictures }

func (ExifStrategy) Lookup(fsys afero.Fs, path string, loc *time.Location) (time.Time, bool) {
	f, err := fsys.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil || x == nil {
		return time.Time{}, false
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false
	}
	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}
	return ParseExifTime(raw, loc)
}

// ParseExifTime parses an EXIF datetime string in loc. Blank or zeroed values
// ("0000:00:00 00:00:00") written by some cameras are rejected.
func ParseExifTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "\x00")
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(ExifLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
