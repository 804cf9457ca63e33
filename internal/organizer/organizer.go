package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediasort/internal/fileutil"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/services"
)

const stageName = "organizing"

// Organizer copies classified files from a source tree into the dated
// library layout.
type Organizer struct {
	fs         afero.Fs
	label      string
	classifier *media.Classifier
	resolver   *metadata.Resolver
	observer   Observer
	logger     *slog.Logger
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithClassifier replaces the built-in classifier.
func WithClassifier(c *media.Classifier) Option {
	return func(o *Organizer) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithResolver replaces the default metadata resolver.
func WithResolver(r *metadata.Resolver) Option {
	return func(o *Organizer) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithObserver registers a progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Organizer) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organizer) {
		o.logger = logging.NewComponentLogger(logger, "organizer")
	}
}

// New constructs an Organizer placing files under the collection label.
func New(fsys afero.Fs, label string, opts ...Option) *Organizer {
	o := &Organizer{
		fs:         fsys,
		label:      label,
		classifier: media.NewClassifier(nil),
		observer:   nopObserver{},
		logger:     logging.NewComponentLogger(nil, "organizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolver == nil {
		o.resolver = metadata.NewResolver(fsys, metadata.WithLogger(o.logger))
	}
	return o
}

// Organize walks sourceDir and copies every classified file under destRoot.
// Unclassified files are recorded and left alone. The first copy, directory
// creation or stat failure stops the run; the partial Result is returned
// together with an error wrapping services.ErrCopy. Cancellation is checked
// between files.
func (o *Organizer) Organize(ctx context.Context, sourceDir, destRoot string) (Result, error) {
	ctx = services.WithStage(ctx, stageName)
	logger := logging.WithContext(ctx, o.logger)

	var result Result
	files, err := o.collect(sourceDir)
	if err != nil {
		return result, services.Wrap(services.ErrCopy, stageName, "walk source", sourceDir, err)
	}
	o.observer.OnStart(len(files))
	logger.Info("organizing files",
		logging.String("source", sourceDir),
		logging.String("destination", destRoot),
		logging.Int("files", len(files)),
	)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("organize interrupted: %w", err)
		}

		rel := relativePath(sourceDir, path)
		info, err := o.fs.Stat(path)
		if err != nil {
			return result, services.Wrap(services.ErrCopy, stageName, "stat", rel, err)
		}

		category := o.classifier.Classify(path)
		if !category.Placeable() {
			u := Unplaced{Path: path, Relative: rel, Reason: ReasonUnclassified, Bytes: info.Size()}
			result.Unplaced = append(result.Unplaced, u)
			o.observer.OnUnplaced(u)
			logger.Debug("file left unplaced",
				logging.String("file", rel),
				logging.String("reason", u.Reason),
				logging.String(logging.FieldEventType, "file_unplaced"),
			)
			continue
		}

		placement, err := o.place(path, rel, category, info.Size(), destRoot)
		if err != nil {
			return result, err
		}
		result.Placed = append(result.Placed, placement)
		o.observer.OnPlaced(placement)
		logger.Debug("file placed",
			logging.String("file", rel),
			logging.String("destination", placement.Destination),
			logging.String("date_source", string(placement.DateSource)),
			logging.String(logging.FieldEventType, "file_placed"),
		)
	}

	logger.Info("organizing complete",
		logging.Int("placed", len(result.Placed)),
		logging.Int("unplaced", len(result.Unplaced)),
		logging.String("bytes", logging.FormatBytes(result.PlacedBytes())),
	)
	return result, nil
}

// Classify builds the MediaFile view of path without copying anything.
// Unclassified files come back with a zero timestamp.
func (o *Organizer) Classify(path string) (MediaFile, error) {
	file := MediaFile{
		Path:     path,
		Ext:      strings.ToLower(filepath.Ext(path)),
		Category: o.classifier.Classify(path),
	}
	if !file.Category.Placeable() {
		return file, nil
	}
	ts, err := o.resolver.Resolve(path, file.Category)
	if err != nil {
		return file, err
	}
	file.Created = ts
	return file, nil
}

// DestinationFor returns the directory a classified file would be placed in.
func (o *Organizer) DestinationFor(destRoot string, file MediaFile) string {
	return DestinationDir(destRoot, o.label, file.Created, file.Category)
}

func (o *Organizer) place(path, rel string, category media.Category, size int64, destRoot string) (Placement, error) {
	ts, err := o.resolver.Resolve(path, category)
	if err != nil {
		return Placement{}, services.Wrap(services.ErrCopy, stageName, "resolve date", rel, err)
	}

	dir := DestinationDir(destRoot, o.label, ts, category)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return Placement{}, services.Wrap(services.ErrCopy, stageName, "create directory", dir, err)
	}

	base := fileutil.NormalizeName(filepath.Base(path))
	name, err := fileutil.UniqueName(o.fs, dir, base)
	if err != nil {
		return Placement{}, services.Wrap(services.ErrCopy, stageName, "choose name", rel, err)
	}
	target := filepath.Join(dir, name)
	if err := fileutil.PreserveCopy(o.fs, path, target); err != nil {
		return Placement{}, services.Wrap(services.ErrCopy, stageName, "copy", rel, err)
	}

	return Placement{
		Source:      path,
		Relative:    rel,
		Destination: target,
		Category:    category,
		Created:     ts.Time,
		DateSource:  ts.Source,
		Bytes:       size,
		Renamed:     name != base,
	}, nil
}

// collect returns every regular file under root in lexical walk order.
// Symlinks are skipped.
func (o *Organizer) collect(root string) ([]string, error) {
	info, err := o.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, errNotDirectory)
	}

	var files []string
	err = afero.Walk(o.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

var errNotDirectory = errors.New("not a directory")

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
