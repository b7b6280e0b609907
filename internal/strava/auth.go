package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"egym-strava-sync/internal/util"
)

var ErrTokenExchange = errors.New("strava token exchange failed")

// RefreshToken exchanges the configured refresh token for an access token.
// There is no retry: a failed exchange ends the run.
func (c *Client) RefreshToken(ctx context.Context) (Token, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("refresh_token", c.refreshToken)
	data.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(data.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body tokenResponse
	if err = util.DoJSON(c.httpClient, req, &body); err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if body.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: response carried no access token", ErrTokenExchange)
	}

	c.log.Debugw("strava token refreshed", "expires_at", body.ExpiresAt)

	return Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    body.ExpiresAt,
	}, nil
}
