package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const messagesPath = apiPrefix + "/communications/messages/"

// Messages wraps outgoing mail: sending, drafts and history.
type Messages struct {
	c *api.Client
}

// List returns outgoing messages, optionally filtered by status.
func (s *Messages) List(ctx context.Context, status model.EmailStatus) ([]model.EmailMessage, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	items, err := api.GetList[model.EmailMessage](ctx, s.c, messagesPath, q)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return items, nil
}

// Get returns one message.
func (s *Messages) Get(ctx context.Context, id int64) (*model.EmailMessage, error) {
	var out model.EmailMessage
	if err := s.c.Get(ctx, itemPath(messagesPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting message %d: %w", id, err)
	}
	return &out, nil
}

// ForCompany lists messages exchanged with a company.
func (s *Messages) ForCompany(ctx context.Context, companyID int64) ([]model.EmailMessage, error) {
	items, err := api.GetList[model.EmailMessage](ctx, s.c, messagesPath+"company_emails/", idQuery("company_id", companyID))
	if err != nil {
		return nil, fmt.Errorf("listing messages of company %d: %w", companyID, err)
	}
	return items, nil
}

// ForContact lists messages exchanged with a contact.
func (s *Messages) ForContact(ctx context.Context, contactID int64) ([]model.EmailMessage, error) {
	items, err := api.GetList[model.EmailMessage](ctx, s.c, messagesPath+"contact_emails/", idQuery("contact_id", contactID))
	if err != nil {
		return nil, fmt.Errorf("listing messages of contact %d: %w", contactID, err)
	}
	return items, nil
}

// Send delivers a message immediately.
func (s *Messages) Send(ctx context.Context, req model.SendEmailRequest) (*model.EmailMessage, error) {
	var out model.EmailMessage
	if err := s.c.Post(ctx, messagesPath+"send/", req, &out); err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	return &out, nil
}

// SaveDraft stores a message as a draft.
func (s *Messages) SaveDraft(ctx context.Context, req model.SendEmailRequest) (*model.EmailMessage, error) {
	var out model.EmailMessage
	if err := s.c.Post(ctx, messagesPath+"drafts/", req, &out); err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	return &out, nil
}

// UpdateDraft edits an existing draft.
func (s *Messages) UpdateDraft(ctx context.Context, id int64, req model.SendEmailRequest) (*model.EmailMessage, error) {
	var out model.EmailMessage
	if err := s.c.Patch(ctx, itemPath(messagesPath+"drafts/", id), req, &out); err != nil {
		return nil, fmt.Errorf("updating draft %d: %w", id, err)
	}
	return &out, nil
}

// SendDraft delivers a previously saved draft.
func (s *Messages) SendDraft(ctx context.Context, id int64) (*model.EmailMessage, error) {
	var out model.EmailMessage
	if err := s.c.Post(ctx, itemPath(messagesPath+"drafts/", id)+"send/", struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("sending draft %d: %w", id, err)
	}
	return &out, nil
}

// SendStatus reports whether the profile's SMTP settings allow sending.
func (s *Messages) SendStatus(ctx context.Context) (*model.EmailSendStatus, error) {
	var out model.EmailSendStatus
	if err := s.c.Get(ctx, messagesPath+"email-status/", nil, &out); err != nil {
		return nil, fmt.Errorf("checking email status: %w", err)
	}
	return &out, nil
}

// UploadAttachment uploads the file at path so it can be referenced from
// a send request.
func (s *Messages) UploadAttachment(ctx context.Context, path string) (*model.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	var out model.Attachment
	if err := s.c.Upload(ctx, messagesPath+"upload-attachment/", "file", filepath.Base(path), f, &out); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	return &out, nil
}
