package strava

import "strings"

const (
	ActivityTypeWeightTraining = "WeightTraining"
)

type Activity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	SportType   string `json:"sport_type"`
	// StartDateLocal is kept as sent ("2025-12-05T18:30:00Z"); the date part
	// is the athlete's local calendar day.
	StartDateLocal string `json:"start_date_local"`
}

// LocalDate returns the calendar day of StartDateLocal, e.g. "2025-12-05".
func (a Activity) LocalDate() string {
	date, _, _ := strings.Cut(a.StartDateLocal, "T")
	return date
}

// AlreadySynced reports whether a previous run already wrote this activity's
// title. marker is the token every generated title carries.
func (a Activity) AlreadySynced(marker string) bool {
	return marker != "" && strings.Contains(a.Name, marker)
}

type UpdatableActivity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Token is the result of a refresh-token exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Rotated reports whether the provider issued a refresh token different from
// previous. The new value has to be persisted or the next run cannot
// authenticate.
func (t Token) Rotated(previous string) bool {
	return t.RefreshToken != "" && t.RefreshToken != previous
}

type tokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int    `json:"expires_in"`
}
