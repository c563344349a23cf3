package credential

import (
	"context"
	"errors"
	"fmt"
)

const tokenKey = "auth-token"

// ProfileCache holds the locally cached user profile that must be dropped
// together with the token.
type ProfileCache interface {
	ClearUser(ctx context.Context) error
}

// Session is the signed-in state: the API token in the keyring and the
// cached user profile.
type Session struct {
	keys    *Keyring
	profile ProfileCache
}

// NewSession creates a session over keys. profile may be nil.
func NewSession(keys *Keyring, profile ProfileCache) *Session {
	return &Session{keys: keys, profile: profile}
}

// Token returns the stored API token.
func (s *Session) Token() (string, error) {
	return s.keys.Get(tokenKey)
}

// SetToken stores a freshly issued API token.
func (s *Session) SetToken(token string) error {
	return s.keys.Set(tokenKey, token)
}

// SignedIn reports whether a token is stored.
func (s *Session) SignedIn() bool {
	token, err := s.Token()
	return err == nil && token != ""
}

// Clear removes the token and the cached profile.
func (s *Session) Clear() error {
	var errs []error
	if err := s.keys.Delete(tokenKey); err != nil {
		errs = append(errs, err)
	}
	if s.profile != nil {
		if err := s.profile.ClearUser(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("clearing cached profile: %w", err))
		}
	}
	return errors.Join(errs...)
}
