package metadata

import (
	"math"
	"testing"
	"time"
)

func TestMP4Time(t *testing.T) {
	tests := []struct {
		name string
		secs uint64
		want time.Time
		ok   bool
	}{
		{"zero", 0, time.Time{}, false},
		{"epoch offset", mp4EpochOffset, time.Time{}, false},
		{"valid", mp4EpochOffset + 1640995200, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{"last second of 9999", mp4EpochOffset + maxUnixSeconds, time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC), true},
		{"past 9999", mp4EpochOffset + maxUnixSeconds + 1, time.Time{}, false},
		{"max uint64", math.MaxUint64, time.Time{}, false},
		{"wraps int64", uint64(math.MaxInt64) + mp4EpochOffset + 1, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mp4Time(tt.secs)
			if ok != tt.ok {
				t.Fatalf("mp4Time(%d) ok = %v, want %v", tt.secs, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("mp4Time(%d) = %v, want %v", tt.secs, got, tt.want)
			}
		})
	}
}
