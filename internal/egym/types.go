package egym

import "strings"

const (
	// CategoryMachine marks exercises done on EGYM strength machines. Only
	// those carry weight and rep detail worth surfacing.
	CategoryMachine = "EGYM_MACHINE"
	// SourceGarmin marks workouts fed in from a Garmin device. Strava already
	// receives those natively.
	SourceGarmin = "GARMIN"
)

type loginResponse struct {
	UUID         string `json:"uuid"`
	HomeClubUUID string `json:"homeClubUuid"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Workout is a completed session. Exactly one of Exercises and
// ExerciseGroups is populated.
type Workout struct {
	CompletedAt    string          `json:"completedAt"`
	Source         string          `json:"source"`
	Exercises      []Exercise      `json:"exercises"`
	ExerciseGroups []ExerciseGroup `json:"exerciseGroups"`
}

type ExerciseGroup struct {
	Exercises []Exercise `json:"exercises"`
}

type Exercise struct {
	Activity ExerciseActivity `json:"activity"`
	Label    string           `json:"label"`
	Sets     []Set            `json:"sets"`
}

type ExerciseActivity struct {
	Category string `json:"category"`
}

// Set is a single performed set. Weight is nil for bodyweight and cardio
// entries.
type Set struct {
	Weight       *float64 `json:"weight"`
	NumberOfReps int      `json:"numberOfReps"`
}

// Date returns the calendar day of CompletedAt, e.g. "2025-12-05".
func (w Workout) Date() string {
	date, _, _ := strings.Cut(w.CompletedAt, "T")
	return date
}

// AllExercises returns the flat exercise list, or the exercises of every
// group when the flat list is empty.
func (w Workout) AllExercises() []Exercise {
	if len(w.Exercises) > 0 {
		return w.Exercises
	}
	var out []Exercise
	for _, g := range w.ExerciseGroups {
		out = append(out, g.Exercises...)
	}
	return out
}
