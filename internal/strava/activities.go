package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"egym-strava-sync/internal/util"
)

var (
	ErrListActivities = errors.New("strava list activities failed")
	ErrUpdateActivity = errors.New("strava update activity failed")
)

type ClientConfig struct {
	OAuthURL     string
	APIURL       string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type Client struct {
	httpClient   *http.Client
	log          *zap.SugaredLogger
	oauthURL     string
	apiURL       string
	clientID     string
	clientSecret string
	refreshToken string
}

func NewClient(cfg ClientConfig, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	return &Client{
		httpClient:   httpClient,
		log:          log,
		oauthURL:     cfg.OAuthURL,
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
	}
}

// ListActivities returns the athlete's most recent activities, newest first.
// Only a single page is requested.
func (c *Client) ListActivities(ctx context.Context, accessToken string, perPage int) ([]Activity, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/athlete/activities?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListActivities, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var activities []Activity
	if err = util.DoJSON(c.httpClient, req, &activities); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListActivities, err)
	}
	return activities, nil
}

// UpdateActivity replaces the title and description of activity id.
func (c *Client) UpdateActivity(ctx context.Context, accessToken string, id int64, activity UpdatableActivity) error {
	jsonBody, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateActivity, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/activities/%d", c.apiURL, id), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpdateActivity, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	if err = util.DoJSON(c.httpClient, req, nil); err != nil {
		return fmt.Errorf("%w: activity %d: %w", ErrUpdateActivity, id, err)
	}
	return nil
}
