package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "egym_strava_sync"
	jobName   = "egym_strava_sync"
)

// Recorder collects the counters of a single run. The job exits after one
// run, so values are pushed to a Pushgateway instead of being scraped.
type Recorder struct {
	registry *prometheus.Registry

	workoutsFetched  prometheus.Counter
	activitiesUpdate prometheus.Counter
	updateFailures   prometheus.Counter
	workoutsSkipped  *prometheus.CounterVec
	tokenRotations   *prometheus.CounterVec
	lastRun          prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		workoutsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_fetched_total",
			Help:      "Number of EGYM workouts returned by the workouts query.",
		}),
		activitiesUpdate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_updated_total",
			Help:      "Number of Strava activities whose title and description were rewritten.",
		}),
		updateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_failures_total",
			Help:      "Number of Strava activity updates that failed.",
		}),
		workoutsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workouts_skipped_total",
			Help:      "Number of workouts that produced no update, grouped by reason.",
		}, []string{"reason"}),
		tokenRotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_rotations_total",
			Help:      "Number of rotated refresh tokens, grouped by persistence result.",
		}, []string{"result"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the most recent run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the most recent run that ended without error.",
		}),
	}
	r.registry.MustRegister(r.workoutsFetched, r.activitiesUpdate, r.updateFailures,
		r.workoutsSkipped, r.tokenRotations, r.lastRun, r.lastSuccess)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) WorkoutsFetched(n int) { r.workoutsFetched.Add(float64(n)) }

func (r *Recorder) ActivityUpdated() { r.activitiesUpdate.Inc() }

func (r *Recorder) UpdateFailed() { r.updateFailures.Inc() }

func (r *Recorder) WorkoutSkipped(reason string) { r.workoutsSkipped.WithLabelValues(reason).Inc() }

// Results of a refresh token rotation.
const (
	RotationPersisted = "persisted"
	RotationFailed    = "failed"
	RotationDropped   = "dropped"
)

// TokenRotated records a rotation under one of the Rotation* results.
func (r *Recorder) TokenRotated(result string) {
	r.tokenRotations.WithLabelValues(result).Inc()
}

// RunFinished stamps the run gauges. ok reports whether the run ended
// without error.
func (r *Recorder) RunFinished(ts time.Time, ok bool) {
	r.lastRun.Set(float64(ts.Unix()))
	if ok {
		r.lastSuccess.Set(float64(ts.Unix()))
	}
}

// Push sends the registry to the Pushgateway at url. An empty url is a no-op.
func (r *Recorder) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return push.New(url, jobName).Gatherer(r.registry).PushContext(ctx)
}
