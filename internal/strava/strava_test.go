package strava

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"egym-strava-sync/internal/util"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		OAuthURL:     srv.URL + "/oauth/token",
		APIURL:       srv.URL + "/api/v3/",
		ClientID:     "1234",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-1",
	}, util.NewHttpClient(time.Second), zaptest.NewLogger(t).Sugar())
}

func TestRefreshTokenSendsRefreshGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1234", r.PostForm.Get("client_id"))
		require.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		require.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"access-1","refresh_token":"refresh-2","expires_at":1765000000}`))
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv).RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-1", token.AccessToken)
	require.Equal(t, "refresh-2", token.RefreshToken)
	require.EqualValues(t, 1765000000, token.ExpiresAt)
	require.True(t, token.Rotated("refresh-1"))
}

func TestRefreshTokenUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv).RefreshToken(context.Background())
	require.ErrorIs(t, err, ErrTokenExchange)
	require.Empty(t, token.AccessToken)

	var statusErr *util.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestRefreshTokenWithoutAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refresh_token":"refresh-1"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).RefreshToken(context.Background())
	require.ErrorIs(t, err, ErrTokenExchange)
}

func TestTokenRotated(t *testing.T) {
	require.False(t, Token{RefreshToken: "same"}.Rotated("same"))
	require.False(t, Token{RefreshToken: ""}.Rotated("old"))
	require.True(t, Token{RefreshToken: "new"}.Rotated("old"))
}

func TestListActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/athlete/activities", r.URL.Path)
		require.Equal(t, "10", r.URL.Query().Get("per_page"))
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":42,"name":"Evening Lift","type":"WeightTraining","sport_type":"WeightTraining","start_date_local":"2025-12-05T18:30:00Z"}]`))
	}))
	defer srv.Close()

	activities, err := newTestClient(t, srv).ListActivities(context.Background(), "access-1", 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.EqualValues(t, 42, activities[0].ID)
	require.Equal(t, "2025-12-05", activities[0].LocalDate())
	require.Equal(t, ActivityTypeWeightTraining, activities[0].Type)
}

func TestListActivitiesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ListActivities(context.Background(), "access-1", 10)
	require.ErrorIs(t, err, ErrListActivities)
}

func TestUpdateActivity(t *testing.T) {
	var got UpdatableActivity
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v3/activities/42", r.URL.Path)
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv).UpdateActivity(context.Background(), "access-1", 42, UpdatableActivity{
		Name:        "💪 EGYM Krafttraining (1 Übungen)",
		Description: "🔹 Leg Press: 40kg x 10",
	})
	require.NoError(t, err)
	require.Equal(t, "💪 EGYM Krafttraining (1 Übungen)", got.Name)
	require.Equal(t, "🔹 Leg Press: 40kg x 10", got.Description)
}

func TestUpdateActivityFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).UpdateActivity(context.Background(), "access-1", 42, UpdatableActivity{Name: "x"})
	require.ErrorIs(t, err, ErrUpdateActivity)
	require.ErrorContains(t, err, "activity 42")
}

func TestActivityAlreadySynced(t *testing.T) {
	require.True(t, Activity{Name: "💪 EGYM Krafttraining (3 Übungen)"}.AlreadySynced("EGYM"))
	require.False(t, Activity{Name: "Evening Lift"}.AlreadySynced("EGYM"))
	require.False(t, Activity{Name: "EGYM"}.AlreadySynced(""))
}
