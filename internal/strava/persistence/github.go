package persistence

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/crypto/nacl/box"
)

// GitHubSecretStore writes the token as an Actions secret of a repository.
// Secret values are sealed with the repository's public key before upload.
type GitHubSecretStore struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubSecretStore expects repository in "owner/name" form, as found in
// GITHUB_REPOSITORY.
func NewGitHubSecretStore(token, repository string, httpClient *http.Client) (*GitHubSecretStore, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q, want owner/name", repository)
	}
	return &GitHubSecretStore{
		client: github.NewClient(httpClient).WithAuthToken(token),
		owner:  owner,
		repo:   repo,
	}, nil
}

func (s *GitHubSecretStore) Name() string { return "github" }

func (s *GitHubSecretStore) WriteRefreshToken(ctx context.Context, value string) error {
	key, _, err := s.client.Actions.GetRepoPublicKey(ctx, s.owner, s.repo)
	if err != nil {
		return fmt.Errorf("%w: fetch public key: %w", ErrPersist, err)
	}

	sealed, err := seal(key.GetKey(), value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	_, err = s.client.Actions.CreateOrUpdateRepoSecret(ctx, s.owner, s.repo, &github.EncryptedSecret{
		Name:           SecretName,
		KeyID:          key.GetKeyID(),
		EncryptedValue: sealed,
	})
	if err != nil {
		return fmt.Errorf("%w: write secret: %w", ErrPersist, err)
	}
	return nil
}

// seal encrypts value for the base64 encoded curve25519 public key using an
// anonymous NaCl box, the format the Actions secrets API expects.
func seal(publicKey, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("public key has %d bytes, want 32", len(raw))
	}

	var recipient [32]byte
	copy(recipient[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &recipient, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
