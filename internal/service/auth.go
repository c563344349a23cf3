package service

import (
	"context"
	"fmt"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const authPath = apiPrefix + "/auth/"

// Auth wraps sign-in and profile endpoints. Token storage is the caller's
// concern.
type Auth struct {
	c *api.Client
}

// Login exchanges credentials for a token.
func (s *Auth) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := s.c.Post(ctx, authPath+"login/", creds, &out); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (s *Auth) Register(ctx context.Context, in model.Registration) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := s.c.Post(ctx, authPath+"register/", in, &out); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &out, nil
}

// Logout invalidates the token server-side.
func (s *Auth) Logout(ctx context.Context) error {
	if err := s.c.Post(ctx, authPath+"logout/", nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// Profile returns the signed-in user.
func (s *Auth) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := s.c.Get(ctx, authPath+"profile/", nil, &out); err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &out, nil
}

// UpdateProfile edits the signed-in user.
func (s *Auth) UpdateProfile(ctx context.Context, u model.User) (*model.User, error) {
	var out model.User
	if err := s.c.Put(ctx, authPath+"profile/", u, &out); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &out, nil
}

// ChangePassword changes the password and returns the reissued token.
func (s *Auth) ChangePassword(ctx context.Context, in model.PasswordChange) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := s.c.Post(ctx, authPath+"change-password/", in, &out); err != nil {
		return "", fmt.Errorf("changing password: %w", err)
	}
	return out.Token, nil
}

// SMTPSettings returns the outgoing mail settings.
func (s *Auth) SMTPSettings(ctx context.Context) (*model.SMTPSettings, error) {
	var out model.SMTPSettings
	if err := s.c.Get(ctx, authPath+"profile/email-settings/", nil, &out); err != nil {
		return nil, fmt.Errorf("loading email settings: %w", err)
	}
	return &out, nil
}

// UpdateSMTPSettings stores the outgoing mail settings.
func (s *Auth) UpdateSMTPSettings(ctx context.Context, in model.SMTPSettings) error {
	if err := s.c.Put(ctx, authPath+"profile/email-settings/", in, nil); err != nil {
		return fmt.Errorf("updating email settings: %w", err)
	}
	return nil
}

// IMAPSettings returns the incoming mail settings.
func (s *Auth) IMAPSettings(ctx context.Context) (*model.IMAPSettings, error) {
	var out model.IMAPSettings
	if err := s.c.Get(ctx, authPath+"profile/imap-settings/", nil, &out); err != nil {
		return nil, fmt.Errorf("loading imap settings: %w", err)
	}
	return &out, nil
}

// UpdateIMAPSettings stores the incoming mail settings.
func (s *Auth) UpdateIMAPSettings(ctx context.Context, in model.IMAPSettings) error {
	if err := s.c.Put(ctx, authPath+"profile/imap-settings/", in, nil); err != nil {
		return fmt.Errorf("updating imap settings: %w", err)
	}
	return nil
}
