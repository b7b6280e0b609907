package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"egym-strava-sync/internal/config"
)

// SecretName is the repository secret the scheduled workflow reads the
// refresh token from.
const SecretName = "STRAVA_REFRESH_TOKEN"

var ErrPersist = errors.New("persist refresh token failed")

// RefreshTokenStore keeps a rotated refresh token for the next run.
type RefreshTokenStore interface {
	WriteRefreshToken(ctx context.Context, value string) error
	Name() string
}

const refreshTokenFile = "refresh_token"

// NewStore picks the repository secret store when both the token and the
// repository are configured, a token file when a storage dir is configured,
// and a no-op store otherwise.
// The returned store is never nil. When the secret store cannot be built the
// error is returned together with the next store in line.
func NewStore(creds config.Credentials, httpClient *http.Client) (RefreshTokenStore, error) {
	if creds.SecretStoreConfigured() {
		store, err := NewGitHubSecretStore(creds.SecretStoreToken, creds.Repository, httpClient)
		if err != nil {
			return localStore(creds), fmt.Errorf("%w: %w", ErrPersist, err)
		}
		return store, nil
	}
	return localStore(creds), nil
}

func localStore(creds config.Credentials) RefreshTokenStore {
	if creds.TokenStorageDir != "" {
		return FileStore{Dir: creds.TokenStorageDir}
	}
	return NoopStore{}
}

// ApplyStoredRefreshToken replaces creds.RefreshToken with the token a
// previous run wrote to TokenStorageDir. It reports whether a stored token
// was used. Runs backed by the repository secret get the rotated token
// through the environment and are left alone.
func ApplyStoredRefreshToken(creds *config.Credentials) (bool, error) {
	if creds.TokenStorageDir == "" || creds.SecretStoreConfigured() {
		return false, nil
	}

	stored, err := FileStore{Dir: creds.TokenStorageDir}.ReadRefreshToken()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read stored refresh token: %w", err)
	}

	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false, nil
	}
	creds.RefreshToken = stored
	return true, nil
}

// NoopStore is used for local runs without a secret store. A rotated token
// is lost and has to be updated by hand.
type NoopStore struct{}

func (NoopStore) WriteRefreshToken(context.Context, string) error { return nil }

func (NoopStore) Name() string { return "noop" }

// FileStore writes the token to file `refresh_token` inside Dir. The next
// run picks it up through ApplyStoredRefreshToken.
// Storing the token in plain text is only meant for a personal machine.
type FileStore struct {
	Dir string
}

func (s FileStore) WriteRefreshToken(_ context.Context, value string) error {
	if err := writeFile(s.Dir, refreshTokenFile, value); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s FileStore) Name() string { return "file" }

// ReadRefreshToken returns the token a previous run stored in Dir.
func (s FileStore) ReadRefreshToken() (string, error) {
	return readFile(s.Dir, refreshTokenFile)
}

func writeFile(dir, fileName, value string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token storage directory: %w", err)
	}

	f, err := os.OpenFile(path.Join(dir, fileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err = f.WriteString(value); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readFile(dir, fileName string) (string, error) {
	data, err := os.ReadFile(path.Join(dir, fileName))
	if err != nil {
		return "", err
	}

	return string(data), nil
}
