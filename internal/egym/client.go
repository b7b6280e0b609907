package egym

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"egym-strava-sync/internal/util"
)

const (
	appVersion      = "3.71"
	apiVersion      = "1.5"
	netpulseAgent   = "NetpulseFitness/3.71"
	workoutsAgent   = "egym/10.36.0"
	timestampLayout = "2006-01-02T15:04:05Z"

	measurementSystem = "METRIC"
	locale            = "de-DE"
)

var (
	ErrLogin         = errors.New("egym login failed")
	ErrFetchWorkouts = errors.New("egym fetch workouts failed")
)

type ClientConfig struct {
	// BaseURL is the tenant's Netpulse host, e.g. https://benefit.netpulse.com.
	BaseURL string
	// APIURL is the host serving the workouts API.
	APIURL   string
	Email    string
	Password string
	// Since is the fixed lower bound of the completion window.
	Since time.Time
}

type Client struct {
	httpClient *http.Client
	log        *zap.SugaredLogger
	cfg        ClientConfig
}

func NewClient(cfg ClientConfig, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Client{httpClient: httpClient, log: log, cfg: cfg}
}

type session struct {
	exerciserID string
	locationID  string
	accessToken string
}

// FetchWorkouts logs in, exchanges the session for a workouts token and
// returns every workout completed between the configured lower bound and now.
// Login failures wrap ErrLogin, a failed query wraps ErrFetchWorkouts.
func (c *Client) FetchWorkouts(ctx context.Context, now time.Time) ([]Workout, error) {
	s, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("completedAfter", c.cfg.Since.UTC().Format(timestampLayout))
	query.Set("completedBefore", now.UTC().Format(timestampLayout))
	query.Set("gymLocationId", s.locationID)
	query.Set("measurementSystem", measurementSystem)
	query.Set("locale", locale)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.APIURL+"/mwa/api/workouts/v1.0/workouts?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchWorkouts, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("X-Exerciser-Id", s.exerciserID)
	req.Header.Set("User-Agent", workoutsAgent)

	var workouts []Workout
	if err = util.DoJSON(c.httpClient, req, &workouts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchWorkouts, err)
	}

	c.log.Infow("fetched egym workouts", "count", len(workouts))
	return workouts, nil
}

func (c *Client) login(ctx context.Context) (session, error) {
	form := url.Values{}
	form.Set("username", c.cfg.Email)
	form.Set("password", c.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/np/exerciser/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return session{}, fmt.Errorf("%w: %v", ErrLogin, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setNetpulseHeaders(req)

	var login loginResponse
	if err = util.DoJSON(c.httpClient, req, &login); err != nil {
		return session{}, fmt.Errorf("%w: %w", ErrLogin, err)
	}
	if login.UUID == "" {
		return session{}, fmt.Errorf("%w: response carried no exerciser id", ErrLogin)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/np/micro-web-app/v1.0/exercisers/%s/tokens/FLS", c.cfg.BaseURL, url.PathEscape(login.UUID)), nil)
	if err != nil {
		return session{}, fmt.Errorf("%w: %v", ErrLogin, err)
	}
	setNetpulseHeaders(req)

	var token tokenResponse
	if err = util.DoJSON(c.httpClient, req, &token); err != nil {
		return session{}, fmt.Errorf("%w: token exchange: %w", ErrLogin, err)
	}
	if token.AccessToken == "" {
		return session{}, fmt.Errorf("%w: token exchange carried no access token", ErrLogin)
	}

	return session{
		exerciserID: login.UUID,
		locationID:  login.HomeClubUUID,
		accessToken: token.AccessToken,
	}, nil
}

func setNetpulseHeaders(req *http.Request) {
	req.Header.Set("X-NP-APP-Version", appVersion)
	req.Header.Set("X-NP-API-Version", apiVersion)
	req.Header.Set("User-Agent", netpulseAgent)
}
