package metadata

import (
	"time"

	"github.com/abema/go-mp4"
	"github.com/spf13/afero"

	"mediasort/internal/media"
)

const (
	// Seconds between the ISO-BMFF epoch (1904-01-01) and the Unix epoch.
	mp4EpochOffset = 2082844800
	// Unix seconds of 9999-12-31T23:59:59Z; later values are corrupt headers.
	maxUnixSeconds = 253402300799
)

// MP4Strategy reads the movie header (moov/mvhd) creation time from
// ISO-BMFF containers, which covers both .mp4 and QuickTime .mov files.
type MP4Strategy struct{}

func (MP4Strategy) Source() Source { return SourceMP4 }

func (MP4Strategy) Supports(category media.Category) bool { return category == media.Videos }

func (MP4Strategy) Lookup(fsys afero.Fs, path string, _ *time.Location) (time.Time, bool) {
	f, err := fsys.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxWithPayload(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil || len(boxes) == 0 {
		return time.Time{}, false
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return time.Time{}, false
	}

	var created uint64
	switch mvhd.GetVersion() {
	case 0:
		created = uint64(mvhd.CreationTimeV0)
	case 1:
		created = mvhd.CreationTimeV1
	default:
		return time.Time{}, false
	}
	return mp4Time(created)
}

// mp4Time converts a 1904-epoch second count. Zero and pre-1970 values are
// what encoders write when the clock was unknown, so they count as absent,
// as do values past year 9999.
func mp4Time(secs uint64) (time.Time, bool) {
	if secs <= mp4EpochOffset || secs-mp4EpochOffset > maxUnixSeconds {
		return time.Time{}, false
	}
	return time.Unix(int64(secs-mp4EpochOffset), 0).UTC(), true
}
