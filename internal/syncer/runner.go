package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"egym-strava-sync/internal/egym"
	"egym-strava-sync/internal/metrics"
	"egym-strava-sync/internal/strava"
	"egym-strava-sync/internal/strava/persistence"
	"egym-strava-sync/internal/tracing"
)

// ActivityPlatform is the Strava side of a run.
type ActivityPlatform interface {
	RefreshToken(ctx context.Context) (strava.Token, error)
	ListActivities(ctx context.Context, accessToken string, perPage int) ([]strava.Activity, error)
	UpdateActivity(ctx context.Context, accessToken string, id int64, activity strava.UpdatableActivity) error
}

// WorkoutSource is the EGYM side of a run.
type WorkoutSource interface {
	FetchWorkouts(ctx context.Context, now time.Time) ([]egym.Workout, error)
}

type Options struct {
	// RefreshToken is the stored token the exchange was made with. A
	// different token in the response is written back to the store.
	RefreshToken     string
	ActivityPageSize int
	CircuitThreshold int
	SkipSynced       bool
	DryRun           bool
	ExcludedSource   string
}

type Runner struct {
	activities ActivityPlatform
	workouts   WorkoutSource
	store      persistence.RefreshTokenStore
	metrics    *metrics.Recorder
	log        *zap.SugaredLogger
	opts       Options
	now        func() time.Time
}

func NewRunner(activities ActivityPlatform, workouts WorkoutSource, store persistence.RefreshTokenStore,
	recorder *metrics.Recorder, log *zap.SugaredLogger, opts Options) *Runner {
	return &Runner{
		activities: activities,
		workouts:   workouts,
		store:      store,
		metrics:    recorder,
		log:        log,
		opts:       opts,
		now:        time.Now,
	}
}

// Run executes one sync: refresh the Strava token, persist a rotated refresh
// token, fetch workouts and rewrite matching activities. The returned error
// wraps one of ErrActivityAuth, ErrSourceAuth, ErrFetch or ErrUpdate.
func (r *Runner) Run(ctx context.Context) (err error) {
	ctx, span := tracing.Tracer().Start(ctx, "sync.run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.metrics.RunFinished(r.now(), err == nil)
	}()

	token, err := r.activities.RefreshToken(ctx)
	if err != nil {
		r.log.Errorw("strava token refresh failed, aborting run", "err", err)
		return fmt.Errorf("%w: %w", ErrActivityAuth, err)
	}

	if token.Rotated(r.opts.RefreshToken) {
		r.persistRefreshToken(ctx, token.RefreshToken)
	}

	workouts, err := r.workouts.FetchWorkouts(ctx, r.now())
	if err != nil {
		if errors.Is(err, egym.ErrLogin) {
			r.log.Errorw("egym login failed, aborting run", "err", err)
			return fmt.Errorf("%w: %w", ErrSourceAuth, err)
		}
		r.log.Warnw("egym workouts unavailable, nothing to sync", "err", err)
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	r.metrics.WorkoutsFetched(len(workouts))
	span.SetAttributes(attribute.Int("sync.workouts", len(workouts)))

	summaries := r.summarize(workouts)
	if len(summaries) == 0 {
		r.log.Infow("no workouts with machine detail, nothing to sync", "workouts", len(workouts))
		return nil
	}

	activities, err := r.activities.ListActivities(ctx, token.AccessToken, r.opts.ActivityPageSize)
	if err != nil {
		r.log.Warnw("strava activities unavailable, nothing to sync", "err", err)
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}

	plan := Plan(summaries, activities, PlanOptions{
		CircuitThreshold: r.opts.CircuitThreshold,
		SkipSynced:       r.opts.SkipSynced,
	})
	for _, id := range plan.AlreadySynced {
		r.log.Infow("activity already synced", "activity_id", id)
	}
	for _, s := range plan.Unmatched {
		r.log.Infow("no matching strava activity", "date", s.Date)
		r.metrics.WorkoutSkipped("unmatched")
	}

	return r.apply(ctx, token.AccessToken, plan.Updates)
}

func (r *Runner) persistRefreshToken(ctx context.Context, value string) {
	if _, ok := r.store.(persistence.NoopStore); ok {
		r.log.Warnw("refresh token rotated but no store is configured, update STRAVA_REFRESH_TOKEN by hand")
		r.metrics.TokenRotated(metrics.RotationDropped)
		return
	}
	if err := r.store.WriteRefreshToken(ctx, value); err != nil {
		// The access token of this run is still valid; only the next run
		// is at risk.
		r.log.Errorw("persist refresh token failed", "store", r.store.Name(), "err", err)
		r.metrics.TokenRotated(metrics.RotationFailed)
		return
	}
	r.log.Infow("rotated refresh token persisted", "store", r.store.Name())
	r.metrics.TokenRotated(metrics.RotationPersisted)
}

func (r *Runner) summarize(workouts []egym.Workout) []egym.Summary {
	var summaries []egym.Summary
	for _, w := range workouts {
		summary, reason := egym.BuildSummary(w, r.opts.ExcludedSource)
		if reason != egym.SkipNone {
			r.log.Debugw("workout skipped", "completed_at", w.CompletedAt, "source", w.Source, "reason", reason)
			r.metrics.WorkoutSkipped(string(reason))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (r *Runner) apply(ctx context.Context, accessToken string, updates []Update) error {
	failed := 0
	for _, u := range updates {
		if r.opts.DryRun {
			r.log.Infow("dry run, activity not updated",
				"activity_id", u.ActivityID, "date", u.Date, "from", u.PreviousName, "to", u.Activity.Name)
			continue
		}
		if err := r.activities.UpdateActivity(ctx, accessToken, u.ActivityID, u.Activity); err != nil {
			r.log.Errorw("strava activity update failed", "activity_id", u.ActivityID, "date", u.Date, "err", err)
			r.metrics.UpdateFailed()
			failed++
			continue
		}
		r.log.Infow("strava activity updated", "activity_id", u.ActivityID, "date", u.Date, "name", u.Activity.Name)
		r.metrics.ActivityUpdated()
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUpdate, failed, len(updates))
	}
	return nil
}
