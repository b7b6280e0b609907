package syncer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"egym-strava-sync/internal/egym"
	"egym-strava-sync/internal/strava"
)

func weightTraining(id int64, start, name string) strava.Activity {
	return strava.Activity{ID: id, Name: name, Type: strava.ActivityTypeWeightTraining, StartDateLocal: start}
}

func TestPlanFirstMatchWins(t *testing.T) {
	summaries := []egym.Summary{{Date: "2025-12-05", Lines: []string{"🔹 Leg Press: 40kg x 10 | 40kg x 10"}}}
	activities := []strava.Activity{
		{ID: 1, Name: "Morning Run", Type: "Run", StartDateLocal: "2025-12-05T07:00:00Z"},
		weightTraining(2, "2025-12-04T18:00:00Z", "Lift"),
		weightTraining(3, "2025-12-05T18:30:00Z", "Evening Lift"),
		weightTraining(4, "2025-12-05T20:00:00Z", "Late Lift"),
	}

	result := Plan(summaries, activities, PlanOptions{CircuitThreshold: 12, SkipSynced: true})

	require.Len(t, result.Updates, 1)
	require.Empty(t, result.Unmatched)
	u := result.Updates[0]
	require.EqualValues(t, 3, u.ActivityID)
	require.Equal(t, "Evening Lift", u.PreviousName)
	require.Equal(t, "💪 EGYM Krafttraining (1 Übungen)", u.Activity.Name)
	require.Equal(t, "🔹 Leg Press: 40kg x 10 | 40kg x 10", u.Activity.Description)
}

func TestPlanUnmatched(t *testing.T) {
	summaries := []egym.Summary{{Date: "2025-12-05", Lines: []string{"line"}}}
	activities := []strava.Activity{weightTraining(1, "2025-12-06T18:00:00Z", "Lift")}

	result := Plan(summaries, activities, PlanOptions{CircuitThreshold: 12})

	require.Empty(t, result.Updates)
	require.Equal(t, summaries, result.Unmatched)
}

func TestPlanSkipsAlreadySynced(t *testing.T) {
	summaries := []egym.Summary{{Date: "2025-12-05", Lines: []string{"line"}}}
	activities := []strava.Activity{weightTraining(1, "2025-12-05T18:00:00Z", "💪 EGYM Krafttraining (1 Übungen)")}

	result := Plan(summaries, activities, PlanOptions{CircuitThreshold: 12, SkipSynced: true})
	require.Empty(t, result.Updates)
	require.Equal(t, []int64{1}, result.AlreadySynced)

	result = Plan(summaries, activities, PlanOptions{CircuitThreshold: 12, SkipSynced: false})
	require.Len(t, result.Updates, 1)
	require.Empty(t, result.AlreadySynced)
}

func TestPlanClaimsEachActivityOnce(t *testing.T) {
	summaries := []egym.Summary{
		{Date: "2025-12-05", Lines: []string{"a"}},
		{Date: "2025-12-05", Lines: []string{"b", "c"}},
		{Date: "2025-12-05", Lines: []string{"d"}},
	}
	activities := []strava.Activity{
		weightTraining(10, "2025-12-05T18:00:00Z", "Lift"),
		weightTraining(11, "2025-12-05T08:00:00Z", "Morning Lift"),
	}

	result := Plan(summaries, activities, PlanOptions{CircuitThreshold: 12})

	require.Len(t, result.Updates, 2)
	require.EqualValues(t, 10, result.Updates[0].ActivityID)
	require.Equal(t, "a", result.Updates[0].Activity.Description)
	require.EqualValues(t, 11, result.Updates[1].ActivityID)
	require.Equal(t, "b\nc", result.Updates[1].Activity.Description)
	require.Len(t, result.Unmatched, 1)
}

func TestPlanCircuitTitle(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "line"
	}
	summaries := []egym.Summary{{Date: "2025-12-05", Lines: lines}}
	activities := []strava.Activity{weightTraining(1, "2025-12-05T18:00:00Z", "Lift")}

	result := Plan(summaries, activities, PlanOptions{CircuitThreshold: 12})

	require.Len(t, result.Updates, 1)
	require.Equal(t, "🏋️ EGYM Zirkel (12 Übungen)", result.Updates[0].Activity.Name)
}
