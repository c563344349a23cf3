package service

import (
	"context"
	"fmt"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const notesPath = apiPrefix + "/customers/notes/"

// Notes wraps /customers/notes/.
type Notes struct {
	c *api.Client
}

// ForCompany lists notes attached to a company.
func (s *Notes) ForCompany(ctx context.Context, companyID int64) ([]model.Note, error) {
	items, err := api.GetList[model.Note](ctx, s.c, notesPath, idQuery("company", companyID))
	if err != nil {
		return nil, fmt.Errorf("listing notes of company %d: %w", companyID, err)
	}
	return items, nil
}

// ForContact lists notes attached to a contact.
func (s *Notes) ForContact(ctx context.Context, contactID int64) ([]model.Note, error) {
	items, err := api.GetList[model.Note](ctx, s.c, notesPath, idQuery("contact", contactID))
	if err != nil {
		return nil, fmt.Errorf("listing notes of contact %d: %w", contactID, err)
	}
	return items, nil
}

// Create adds a note.
func (s *Notes) Create(ctx context.Context, in model.NoteInput) (*model.Note, error) {
	var out model.Note
	if err := s.c.Post(ctx, notesPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return &out, nil
}

// Update updates a note.
func (s *Notes) Update(ctx context.Context, id int64, in model.NoteInput) (*model.Note, error) {
	var out model.Note
	if err := s.c.Patch(ctx, itemPath(notesPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating note %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes a note.
func (s *Notes) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(notesPath, id)); err != nil {
		return fmt.Errorf("deleting note %d: %w", id, err)
	}
	return nil
}
