package metadata

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/logging"
	"mediasort/internal/media"
)

// Source names where a timestamp came from.
type Source string

const (
	SourceExif    Source = "exif"
	SourceMP4     Source = "mp4"
	SourceModTime Source = "modtime"
)

// ErrUnresolved is returned when no strategy produced a timestamp and the file
// itself could be stat'ed. With the default chain this cannot happen because
// the modification time always exists.
var ErrUnresolved = errors.New("no creation time available")

// Timestamp is a resolved creation time plus the strategy that produced it.
type Timestamp struct {
	Time   time.Time
	Source Source
}

// Year returns the four-digit calendar year.
func (t Timestamp) Year() int { return t.Time.Year() }

// MonthName returns the full English month name, e.g. "June".
func (t Timestamp) MonthName() string { return t.Time.Month().String() }

// Strategy is one step in the fallback chain. Lookup reports ok=false for any
// missing, malformed, or unreadable metadata; it never returns an error.
type Strategy interface {
	Source() Source
	Supports(category media.Category) bool
	Lookup(fsys afero.Fs, path string, loc *time.Location) (time.Time, bool)
}

// Resolver walks an ordered list of strategies until one yields a value.
type Resolver struct {
	fs         afero.Fs
	loc        *time.Location
	strategies []Strategy
	logger     *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLocation sets the zone used to interpret embedded times that carry no
// offset, and to bucket all timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithStrategies replaces the default chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// WithLogger attaches a logger for debug output about fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "metadata")
	}
}

// DefaultStrategies returns the standard chain: EXIF capture time for
// pictures, movie-header creation time for videos, then file modification
// time for everything.
func DefaultStrategies() []Strategy {
	return []Strategy{ExifStrategy{}, MP4Strategy{}, ModTimeStrategy{}}
}

// NewResolver constructs a Resolver over fsys.
func NewResolver(fsys afero.Fs, opts ...Option) *Resolver {
	r := &Resolver{
		fs:         fsys,
		loc:        time.Local,
		strategies: DefaultStrategies(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best available creation time for path.
func (r *Resolver) Resolve(path string, category media.Category) (Timestamp, error) {
	for _, s := range r.strategies {
		if !s.Supports(category) {
			continue
		}
		if ts, ok := s.Lookup(r.fs, path, r.loc); ok {
			return Timestamp{Time: ts.In(r.loc), Source: s.Source()}, nil
		}
		r.logger.Debug("metadata unavailable, trying next source",
			logging.String("path", path),
			logging.String("source", string(s.Source())),
		)
	}
	if _, err := r.fs.Stat(path); err != nil {
		return Timestamp{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Timestamp{}, fmt.Errorf("%s: %w", path, ErrUnresolved)
}

// ModTimeStrategy uses the filesystem modification time. It supports every
// category and only fails when the file cannot be stat'ed.
type ModTimeStrategy struct{}

func (ModTimeStrategy) Source() Source { return SourceModTime }

func (ModTimeStrategy) Supports(media.Category) bool { return true }

func (ModTimeStrategy) Lookup(fsys afero.Fs, path string, _ *time.Location) (time.Time, bool) {
	info, err := fsys.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
