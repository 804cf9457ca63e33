package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mediasort/internal/organizer"
)

const namespace = "mediasort"

// Recorder collects per-run counters on a private registry. It implements
// organizer.Observer so it can be attached straight to an Organizer.
type Recorder struct {
	registry *prometheus.Registry

	filesSeen     prometheus.Gauge
	placed        *prometheus.CounterVec
	unplaced      *prometheus.CounterVec
	bytesCopied   prometheus.Counter
	extracted     prometheus.Gauge
	duration      prometheus.Gauge
	lastRun       prometheus.Gauge
	runState      *prometheus.GaugeVec
	cleanupErrors prometheus.Counter
}

// NewRecorder registers the run collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		filesSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_seen",
			Help:      "Regular files found in the source tree",
		}),
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_placed_total",
			Help:      "Files copied into the library",
		}, []string{"category", "date_source"}),
		unplaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_unplaced_total",
			Help:      "Files left in place",
		}, []string{"reason"}),
		bytesCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_copied_total",
			Help:      "Bytes copied into the library",
		}),
		extracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_files_extracted",
			Help:      "Files expanded from the source archive",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_finished_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		runState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_state",
			Help:      "Final state of the last run (1 for the state reached)",
		}, []string{"state"}),
		cleanupErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_errors_total",
			Help:      "Paths that could not be removed during cleanup",
		}),
	}
	r.registry.MustRegister(
		r.filesSeen, r.placed, r.unplaced, r.bytesCopied, r.extracted,
		r.duration, r.lastRun, r.runState, r.cleanupErrors,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) OnStart(total int) { r.filesSeen.Set(float64(total)) }

func (r *Recorder) OnPlaced(p organizer.Placement) {
	r.placed.WithLabelValues(string(p.Category), string(p.DateSource)).Inc()
	r.bytesCopied.Add(float64(p.Bytes))
}

func (r *Recorder) OnUnplaced(u organizer.Unplaced) {
	r.unplaced.WithLabelValues(u.Reason).Inc()
}

// Extracted records the number of files expanded from an archive.
func (r *Recorder) Extracted(files int) { r.extracted.Set(float64(files)) }

// CleanupErrors adds failed cleanup paths.
func (r *Recorder) CleanupErrors(n int) { r.cleanupErrors.Add(float64(n)) }

// Finish records the final state and timing of the run.
func (r *Recorder) Finish(state string, started, finished time.Time) {
	r.runState.Reset()
	r.runState.WithLabelValues(state).Set(1)
	r.duration.Set(finished.Sub(started).Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
