package egym

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Marker is carried by every generated title. An activity whose title
	// contains it was written by an earlier run.
	Marker = "EGYM"

	labelPrefix   = "EGYM "
	linePrefix    = "🔹 "
	setSeparator  = " | "
	circuitTitle  = "🏋️ EGYM Zirkel (%d Übungen)"
	strengthTitle = "💪 EGYM Krafttraining (%d Übungen)"
)

// Summary is the Strava-facing text derived from one workout.
type Summary struct {
	Date  string
	Lines []string
}

// Title picks the circuit variant once the exercise count reaches
// circuitThreshold, the strength training variant otherwise.
func (s Summary) Title(circuitThreshold int) string {
	count := len(s.Lines)
	if count >= circuitThreshold {
		return fmt.Sprintf(circuitTitle, count)
	}
	return fmt.Sprintf(strengthTitle, count)
}

func (s Summary) Description() string {
	return strings.Join(s.Lines, "\n")
}

// SkipReason explains why a workout produced no summary.
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipExcludedSource SkipReason = "excluded_source"
	SkipNoDetail       SkipReason = "no_detail"
)

// BuildSummary generates one line per machine exercise that has at least one
// weighted set. Workouts from excludedSource, and workouts without any such
// exercise, yield no summary.
func BuildSummary(w Workout, excludedSource string) (Summary, SkipReason) {
	if excludedSource != "" && w.Source == excludedSource {
		return Summary{}, SkipExcludedSource
	}

	var lines []string
	for _, ex := range w.AllExercises() {
		if ex.Activity.Category != CategoryMachine {
			continue
		}
		if line, ok := ex.generateDetailLine(); ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Summary{}, SkipNoDetail
	}
	return Summary{Date: w.Date(), Lines: lines}, SkipNone
}

// generateDetailLine renders e.g. "🔹 Leg Press: 40kg x 10 | 42.5kg x 8".
// Sets without a weight are left out, and so is an exercise with none left.
func (e Exercise) generateDetailLine() (string, bool) {
	var sets []string
	for _, s := range e.Sets {
		if s.Weight == nil || *s.Weight == 0 {
			continue
		}
		sets = append(sets, fmt.Sprintf("%skg x %d", formatWeight(*s.Weight), s.NumberOfReps))
	}
	if len(sets) == 0 {
		return "", false
	}
	label := strings.ReplaceAll(e.Label, labelPrefix, "")
	return linePrefix + label + ": " + strings.Join(sets, setSeparator), true
}

// formatWeight drops a trailing ".0" so 40 renders as "40" and 42.5 as "42.5".
func formatWeight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}
