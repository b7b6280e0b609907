package syncer

import (
	"egym-strava-sync/internal/egym"
	"egym-strava-sync/internal/strava"
)

type Update struct {
	ActivityID   int64
	Date         string
	PreviousName string
	Activity     strava.UpdatableActivity
}

type PlanOptions struct {
	CircuitThreshold int
	// SkipSynced leaves activities alone whose title already carries
	// egym.Marker. Without it a later run rewrites them again.
	SkipSynced bool
}

type PlanResult struct {
	Updates []Update
	// Unmatched holds summaries no activity was found for.
	Unmatched []egym.Summary
	// AlreadySynced holds IDs of candidate activities passed over because an
	// earlier run already wrote them.
	AlreadySynced []int64
}

// Plan pairs every summary with the first weight training activity of the
// same day. Activities are scanned in the order given and each one is
// claimed by at most one summary.
func Plan(summaries []egym.Summary, activities []strava.Activity, opts PlanOptions) PlanResult {
	var result PlanResult
	claimed := make(map[int64]bool)
	seenSynced := make(map[int64]bool)

	for _, summary := range summaries {
		matched := false
		for _, activity := range activities {
			if claimed[activity.ID] ||
				activity.LocalDate() != summary.Date ||
				activity.Type != strava.ActivityTypeWeightTraining {
				continue
			}
			if opts.SkipSynced && activity.AlreadySynced(egym.Marker) {
				if !seenSynced[activity.ID] {
					seenSynced[activity.ID] = true
					result.AlreadySynced = append(result.AlreadySynced, activity.ID)
				}
				continue
			}

			claimed[activity.ID] = true
			result.Updates = append(result.Updates, Update{
				ActivityID:   activity.ID,
				Date:         summary.Date,
				PreviousName: activity.Name,
				Activity: strava.UpdatableActivity{
					Name:        summary.Title(opts.CircuitThreshold),
					Description: summary.Description(),
				},
			})
			matched = true
			break
		}
		if !matched {
			result.Unmatched = append(result.Unmatched, summary)
		}
	}

	return result
}
