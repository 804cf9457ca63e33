package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"mediasort/internal/config"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/metadata"
	"mediasort/internal/metrics"
	"mediasort/internal/organizer"
	"mediasort/internal/preflight"
	"mediasort/internal/services"
	"mediasort/internal/staging"
)

// Controller drives one organize run from input to cleanup.
type Controller struct {
	cfg       *config.Config
	fs        afero.Fs
	base      *slog.Logger
	logger    *slog.Logger
	observer  organizer.Observer
	recorder  *metrics.Recorder
	preflight bool
	now       func() time.Time
	newID     func() string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithFs replaces the OS filesystem. Preflight checks and the destination
// lock still use the real filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(c *Controller) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.base = logger
		c.logger = logging.NewComponentLogger(logger, "runner")
	}
}

// WithObserver forwards organizer events, typically to a progress bar.
func WithObserver(obs organizer.Observer) Option {
	return func(c *Controller) {
		c.observer = obs
	}
}

// WithMetrics uses recorder instead of creating one from config.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

// WithoutPreflight skips the filesystem readiness checks.
func WithoutPreflight() Option {
	return func(c *Controller) {
		c.preflight = false
	}
}

// New constructs a Controller for cfg.
func New(cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		fs:        afero.NewOsFs(),
		base:      logging.NewNop(),
		logger:    logging.NewComponentLogger(nil, "runner"),
		preflight: true,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder == nil && cfg != nil && cfg.Metrics.Textfile != "" {
		c.recorder = metrics.NewRecorder()
	}
	return c
}

// Run executes Idle → [Extracting] → Organizing → Reporting →
// [CleaningUp | Preserving] → Done. Any failure ends in Failed with the
// staging tree and archive untouched. Cleanup only happens for archive runs
// that placed every file.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	out := Outcome{
		RunID:   c.newID(),
		State:   StateIdle,
		Path:    []State{StateIdle},
		Started: c.now(),
	}
	ctx = services.WithRunID(ctx, out.RunID)
	logger := logging.WithContext(ctx, c.logger)

	err := c.run(ctx, &out)
	if err != nil {
		c.transition(ctx, &out, StateFailed)
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
	} else {
		c.transition(ctx, &out, StateDone)
	}
	out.Finished = c.now()
	c.finishMetrics(logger, out)
	return out, err
}

func (c *Controller) run(ctx context.Context, out *Outcome) error {
	if c.cfg == nil {
		return services.Wrap(services.ErrConfiguration, "", "run", "configuration unavailable", nil)
	}
	cfg := c.cfg
	out.Source = cfg.Paths.Source
	out.Archive = cfg.IsArchiveSource()

	if err := cfg.ValidateRun(); err != nil {
		return services.Wrap(services.ErrConfiguration, "", "validate", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "", "validate", "", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "", "timezone", "", err)
	}
	if c.preflight {
		if err := preflight.Failed(preflight.RunAll(ctx, cfg)); err != nil {
			return err
		}
	}

	unlock, err := c.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	sourceDir := cfg.Paths.Source
	if out.Archive {
		c.transition(ctx, out, StateExtracting)
		out.StagingDir = filepath.Join(cfg.Paths.StagingDir, out.RunID)
		extraction, err := staging.Extract(services.WithStage(ctx, string(StateExtracting)), c.fs, cfg.Paths.Source, out.StagingDir, loc, c.base)
		out.Extraction = &extraction
		if err != nil {
			return err
		}
		if c.recorder != nil {
			c.recorder.Extracted(extraction.Files)
		}
		sourceDir = out.StagingDir
	}

	c.transition(ctx, out, StateOrganizing)
	events := c.events()
	org := c.newOrganizer(loc, events)
	result, err := org.Organize(ctx, sourceDir, cfg.Paths.Destination)
	if out.Extraction != nil {
		for _, u := range skippedEntries(cfg.Paths.Source, out.Extraction.Skipped) {
			result.Unplaced = append(result.Unplaced, u)
			events.OnUnplaced(u)
		}
	}
	out.Result = result
	if err != nil {
		return err
	}

	c.transition(ctx, out, StateReporting)
	c.report(ctx, *out)

	switch {
	case !result.Complete():
		c.transition(ctx, out, StatePreserving)
		logger := logging.WithContext(services.WithStage(ctx, string(StatePreserving)), c.logger)
		if out.Archive {
			logging.WarnWithContext(logger, "keeping staging directory and archive", "files_unplaced",
				logging.Int("unplaced", len(result.Unplaced)),
				logging.String("staging_dir", out.StagingDir),
				logging.String("archive", cfg.Paths.Source),
				logging.String(logging.FieldErrorHint, "place the listed files manually, then rerun or remove the archive"),
				logging.String(logging.FieldImpact, "archive not deleted"),
			)
		}
	case out.Archive:
		c.transition(ctx, out, StateCleaningUp)
		cleanup := staging.Cleanup(c.fs, out.StagingDir, cfg.Paths.Source, c.base)
		out.Cleanup = &cleanup
		if c.recorder != nil && len(cleanup.Errors) > 0 {
			c.recorder.CleanupErrors(len(cleanup.Errors))
		}
		if err := cleanup.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) newOrganizer(loc *time.Location, events organizer.Observer) *organizer.Organizer {
	resolver := metadata.NewResolver(c.fs, metadata.WithLocation(loc), metadata.WithLogger(c.base))
	return organizer.New(c.fs, c.cfg.Library.CollectionLabel,
		organizer.WithClassifier(media.NewClassifier(c.cfg.Library.ExtraVideoExtensions)),
		organizer.WithResolver(resolver),
		organizer.WithObserver(events),
		organizer.WithLogger(c.base),
	)
}

// events fans organizer events out to the caller's observer and the metrics
// recorder.
func (c *Controller) events() organizer.Observer {
	var observers []organizer.Observer
	if c.observer != nil {
		observers = append(observers, c.observer)
	}
	if c.recorder != nil {
		observers = append(observers, c.recorder)
	}
	return organizer.MultiObserver(observers...)
}

// skippedEntries reports archive entries that were never extracted as
// unplaced, so they block cleanup of the archive that still holds them.
func skippedEntries(archive string, skipped []staging.SkippedEntry) []organizer.Unplaced {
	unplaced := make([]organizer.Unplaced, 0, len(skipped))
	for _, entry := range skipped {
		unplaced = append(unplaced, organizer.Unplaced{
			Path:     archive + ":" + entry.Name,
			Relative: entry.Name,
			Reason:   organizer.ReasonUnsupportedEntry,
			Bytes:    entry.Bytes,
		})
	}
	return unplaced
}

// acquireLock takes the exclusive destination lock when enabled. The
// returned func releases it.
func (c *Controller) acquireLock() (func(), error) {
	path := c.cfg.LockPath()
	if path == "" {
		return func() {}, nil
	}
	if err := c.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrValidation, "", "lock", "create destination", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrLocked, "", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "", "lock", fmt.Sprintf("another run holds %s", path), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release destination lock", logging.String("path", path), logging.Error(err))
		}
	}, nil
}

func (c *Controller) transition(ctx context.Context, out *Outcome, to State) {
	from := out.State
	if !CanTransition(from, to) {
		c.logger.Debug("unexpected state transition",
			logging.String("from", string(from)),
			logging.String("to", string(to)),
		)
	}
	out.State = to
	out.Path = append(out.Path, to)
	logging.WithContext(services.WithStage(ctx, string(to)), c.logger).Debug("state changed",
		logging.String("from", string(from)),
		logging.String(logging.FieldEventType, "state_changed"),
	)
}

func (c *Controller) report(ctx context.Context, out Outcome) {
	logger := logging.WithContext(services.WithStage(ctx, string(StateReporting)), c.logger)
	logger.Info("run summary",
		logging.Int("placed", len(out.Result.Placed)),
		logging.Int("unplaced", len(out.Result.Unplaced)),
		logging.String("copied", logging.FormatBytes(out.Result.PlacedBytes())),
		logging.String(logging.FieldEventType, "run_summary"),
	)
	for _, u := range out.Result.Unplaced {
		logger.Info("unplaced file",
			logging.String("file", u.Relative),
			logging.String("reason", u.Reason),
			logging.String(logging.FieldEventType, "file_unplaced"),
		)
	}
}

func (c *Controller) finishMetrics(logger *slog.Logger, out Outcome) {
	if c.recorder == nil {
		return
	}
	c.recorder.Finish(string(out.State), out.Started, out.Finished)
	if c.cfg == nil || c.cfg.Metrics.Textfile == "" {
		return
	}
	if err := c.recorder.WriteTextfile(c.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile directory"),
			logging.String(logging.FieldImpact, "run statistics not exported"),
		)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrValidation):
		return "fix the configuration or paths reported above"
	case errors.Is(err, services.ErrLocked):
		return "wait for the other run to finish"
	case errors.Is(err, services.ErrCleanup):
		return "all files were placed; remove the leftover paths manually"
	default:
		return "staging directory and archive were kept; rerun after fixing the cause"
	}
}
