package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := New()
	r.WorkoutsFetched(3)
	r.ActivityUpdated()
	r.UpdateFailed()
	r.WorkoutSkipped("excluded_source")
	r.WorkoutSkipped("excluded_source")
	r.TokenRotated(RotationPersisted)
	r.TokenRotated(RotationFailed)
	r.TokenRotated(RotationDropped)

	require.InDelta(t, 3, testutil.ToFloat64(r.workoutsFetched), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.activitiesUpdate), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.updateFailures), 0)
	require.InDelta(t, 2, testutil.ToFloat64(r.workoutsSkipped.WithLabelValues("excluded_source")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.tokenRotations.WithLabelValues("failed")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(r.tokenRotations.WithLabelValues("dropped")), 0)
}

func TestRunFinishedOnlyStampsSuccessWhenOK(t *testing.T) {
	r := New()
	ts := time.Unix(1765000000, 0)

	r.RunFinished(ts, false)
	require.InDelta(t, 1765000000, testutil.ToFloat64(r.lastRun), 0)
	require.InDelta(t, 0, testutil.ToFloat64(r.lastSuccess), 0)

	r.RunFinished(ts, true)
	require.InDelta(t, 1765000000, testutil.ToFloat64(r.lastSuccess), 0)
}

func TestPushWithoutURLIsNoop(t *testing.T) {
	require.NoError(t, New().Push(context.Background(), ""))
}

func TestPushSendsRegistry(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.ActivityUpdated()
	require.NoError(t, r.Push(context.Background(), srv.URL))

	require.Equal(t, "/metrics/job/egym_strava_sync", path)
	require.Contains(t, body, "egym_strava_sync_activities_updated_total")
}
