package organizer

import (
	"time"

	"mediasort/internal/media"
	"mediasort/internal/metadata"
)

const (
	// ReasonUnclassified marks a file whose extension matched no category.
	ReasonUnclassified = "unclassified"
	// ReasonUnsupportedEntry marks an archive entry that is not a regular
	// file (a symlink or device) and so was never extracted.
	ReasonUnsupportedEntry = "unsupported_entry"
)

// MediaFile is a classified source file with its resolved creation time.
type MediaFile struct {
	Path     string
	Ext      string
	Category media.Category
	Created  metadata.Timestamp
}

// Placement records one copy into the library.
type Placement struct {
	Source      string          `json:"source"`
	Relative    string          `json:"relative"`
	Destination string          `json:"destination"`
	Category    media.Category  `json:"category"`
	Created     time.Time       `json:"created"`
	DateSource  metadata.Source `json:"date_source"`
	Bytes       int64           `json:"bytes"`
	Renamed     bool            `json:"renamed,omitempty"`
}

// Unplaced is a source file that was left where it was.
type Unplaced struct {
	Path     string `json:"path"`
	Relative string `json:"relative"`
	Reason   string `json:"reason"`
	Bytes    int64  `json:"bytes"`
}

// Result partitions every regular file under the source tree. Both slices
// are in processing order.
type Result struct {
	Placed   []Placement `json:"placed"`
	Unplaced []Unplaced  `json:"unplaced"`
}

// Complete reports whether every file was placed.
func (r Result) Complete() bool { return len(r.Unplaced) == 0 }

// Total is the number of files seen.
func (r Result) Total() int { return len(r.Placed) + len(r.Unplaced) }

// PlacedBytes sums the bytes copied.
func (r Result) PlacedBytes() int64 {
	var total int64
	for _, p := range r.Placed {
		total += p.Bytes
	}
	return total
}

// CountByCategory returns placed counts keyed by category.
func (r Result) CountByCategory() map[media.Category]int {
	counts := make(map[media.Category]int, 3)
	for _, p := range r.Placed {
		counts[p.Category]++
	}
	return counts
}
