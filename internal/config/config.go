// Package config builds the run configuration from .env, an optional YAML
// settings file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTenant           = "benefit"
	DefaultActivityPageSize = 10
	DefaultCircuitThreshold = 12
	DefaultWorkoutsSince    = "2025-12-01T00:00:00Z"
	DefaultHTTPTimeout      = 30 * time.Second

	DefaultStravaOAuthURL = "https://www.strava.com/oauth/token"
	DefaultStravaAPIURL   = "https://www.strava.com/api/v3"
	DefaultEgymAPIURL     = "https://mwa-api.int.api.egym.com"
)

// Credentials are the secrets of a run. They never come from the YAML file.
type Credentials struct {
	Tenant       string
	Email        string
	Password     string
	ClientID     string
	ClientSecret string
	RefreshToken string

	// SecretStoreToken and Repository are optional, without them a rotated
	// refresh token is not written back.
	SecretStoreToken string
	Repository       string
	TokenStorageDir  string
}

// Settings are the non-secret knobs. They can be set in the YAML file and
// overridden from the environment.
type Settings struct {
	Env              string        `yaml:"env"`
	DryRun           bool          `yaml:"dry_run"`
	SkipSynced       bool          `yaml:"skip_synced"`
	ActivityPageSize int           `yaml:"activity_page_size"`
	CircuitThreshold int           `yaml:"circuit_threshold"`
	WorkoutsSince    time.Time     `yaml:"workouts_since"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`

	StravaOAuthURL string `yaml:"strava_oauth_url"`
	StravaAPIURL   string `yaml:"strava_api_url"`
	EgymBaseURL    string `yaml:"egym_base_url"`
	EgymAPIURL     string `yaml:"egym_api_url"`

	PushgatewayURL string `yaml:"pushgateway_url"`
}

type Config struct {
	Credentials
	Settings
}

// Load reads .env (if present), then the YAML settings file at path (or
// SYNC_CONFIG_FILE when path is empty), then the environment.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{Settings: defaultSettings()}

	if path == "" {
		path = os.Getenv("SYNC_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read settings file: %w", err)
		}
		if err = yaml.Unmarshal(data, &cfg.Settings); err != nil {
			return Config{}, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	}

	cfg.Credentials = Credentials{
		Tenant:           getEnv("EGYM_TENANT", DefaultTenant),
		Email:            os.Getenv("EGYM_EMAIL"),
		Password:         os.Getenv("EGYM_PASSWORD"),
		ClientID:         os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret:     os.Getenv("STRAVA_CLIENT_SECRET"),
		RefreshToken:     os.Getenv("STRAVA_REFRESH_TOKEN"),
		SecretStoreToken: os.Getenv("GH_PAT"),
		Repository:       os.Getenv("GITHUB_REPOSITORY"),
		TokenStorageDir:  os.Getenv("TOKEN_STORAGE_DIR"),
	}

	s := &cfg.Settings
	s.Env = getEnv("SYNC_ENV", s.Env)
	s.DryRun = getBoolEnv("SYNC_DRY_RUN", s.DryRun)
	s.SkipSynced = getBoolEnv("SYNC_SKIP_SYNCED", s.SkipSynced)
	s.ActivityPageSize = getIntEnv("SYNC_ACTIVITY_PAGE_SIZE", s.ActivityPageSize)
	s.CircuitThreshold = getIntEnv("SYNC_CIRCUIT_THRESHOLD", s.CircuitThreshold)
	s.HTTPTimeout = getDurationEnv("SYNC_HTTP_TIMEOUT", s.HTTPTimeout)
	s.StravaOAuthURL = getEnv("STRAVA_OAUTH_URL", s.StravaOAuthURL)
	s.StravaAPIURL = getEnv("STRAVA_API_URL", s.StravaAPIURL)
	s.EgymBaseURL = getEnv("EGYM_BASE_URL", s.EgymBaseURL)
	s.EgymAPIURL = getEnv("EGYM_API_URL", s.EgymAPIURL)
	s.PushgatewayURL = getEnv("PUSHGATEWAY_URL", s.PushgatewayURL)

	if v := os.Getenv("SYNC_WORKOUTS_SINCE"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SYNC_WORKOUTS_SINCE: %w", err)
		}
		s.WorkoutsSince = since
	}

	if s.EgymBaseURL == "" {
		s.EgymBaseURL = fmt.Sprintf("https://%s.netpulse.com", cfg.Tenant)
	}

	return cfg, nil
}

// Validate reports every missing required credential at once.
func (c Config) Validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"EGYM_EMAIL", c.Email},
		{"EGYM_PASSWORD", c.Password},
		{"STRAVA_CLIENT_ID", c.ClientID},
		{"STRAVA_CLIENT_SECRET", c.ClientSecret},
		{"STRAVA_REFRESH_TOKEN", c.RefreshToken},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is not set", r.name))
		}
	}
	if c.ActivityPageSize <= 0 {
		errs = append(errs, fmt.Errorf("activity page size must be positive, got %d", c.ActivityPageSize))
	}
	if c.CircuitThreshold <= 0 {
		errs = append(errs, fmt.Errorf("circuit threshold must be positive, got %d", c.CircuitThreshold))
	}
	return errors.Join(errs...)
}

// SecretStoreConfigured reports whether a rotated token can be written back
// to the repository secret store.
func (c Credentials) SecretStoreConfigured() bool {
	return c.SecretStoreToken != "" && c.Repository != ""
}

func defaultSettings() Settings {
	since, _ := time.Parse(time.RFC3339, DefaultWorkoutsSince)
	return Settings{
		Env:              "prod",
		SkipSynced:       true,
		ActivityPageSize: DefaultActivityPageSize,
		CircuitThreshold: DefaultCircuitThreshold,
		WorkoutsSince:    since,
		HTTPTimeout:      DefaultHTTPTimeout,
		StravaOAuthURL:   DefaultStravaOAuthURL,
		StravaAPIURL:     DefaultStravaAPIURL,
		EgymAPIURL:       DefaultEgymAPIURL,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
