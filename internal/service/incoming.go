package service

import (
	"context"
	"fmt"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const incomingPath = apiPrefix + "/communications/incoming-emails/"

// IncomingEmails wraps the mail the backend pulls over IMAP.
type IncomingEmails struct {
	c *api.Client
}

// List returns the full incoming mail list, newest first as the backend
// orders it.
func (s *IncomingEmails) List(ctx context.Context) ([]model.IncomingEmail, error) {
	items, err := api.GetList[model.IncomingEmail](ctx, s.c, incomingPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing incoming emails: %w", err)
	}
	return items, nil
}

// Get returns one incoming email.
func (s *IncomingEmails) Get(ctx context.Context, id int64) (*model.IncomingEmail, error) {
	var out model.IncomingEmail
	if err := s.c.Get(ctx, itemPath(incomingPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting incoming email %d: %w", id, err)
	}
	return &out, nil
}

// Status reports whether the profile's IMAP settings allow fetching.
func (s *IncomingEmails) Status(ctx context.Context) (*model.IMAPStatus, error) {
	var out model.IMAPStatus
	if err := s.c.Get(ctx, incomingPath+"imap-status/", nil, &out); err != nil {
		return nil, fmt.Errorf("checking imap status: %w", err)
	}
	return &out, nil
}

// Fetch asks the backend to pull new mail from the IMAP server now.
func (s *IncomingEmails) Fetch(ctx context.Context) (*model.FetchResult, error) {
	var out model.FetchResult
	if err := s.c.Post(ctx, incomingPath+"fetch/", struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("fetching from imap: %w", err)
	}
	return &out, nil
}

// MarkRead flags an email as read.
func (s *IncomingEmails) MarkRead(ctx context.Context, id int64) error {
	if err := s.c.Patch(ctx, itemPath(incomingPath, id)+"mark-read/", struct{}{}, nil); err != nil {
		return fmt.Errorf("marking incoming email %d read: %w", id, err)
	}
	return nil
}

// MarkUnread flags an email as unread again.
func (s *IncomingEmails) MarkUnread(ctx context.Context, id int64) error {
	if err := s.c.Patch(ctx, itemPath(incomingPath, id)+"mark-unread/", struct{}{}, nil); err != nil {
		return fmt.Errorf("marking incoming email %d unread: %w", id, err)
	}
	return nil
}
