package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const contactsPath = apiPrefix + "/customers/contacts/"

// Contacts wraps /customers/contacts/.
type Contacts struct {
	c *api.Client
}

// List returns all contacts.
func (s *Contacts) List(ctx context.Context) ([]model.Contact, error) {
	items, err := api.GetList[model.Contact](ctx, s.c, contactsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return items, nil
}

// Get returns one contact.
func (s *Contacts) Get(ctx context.Context, id int64) (*model.Contact, error) {
	var out model.Contact
	if err := s.c.Get(ctx, itemPath(contactsPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting contact %d: %w", id, err)
	}
	return &out, nil
}

// Create adds a contact.
func (s *Contacts) Create(ctx context.Context, in model.ContactInput) (*model.Contact, error) {
	var out model.Contact
	if err := s.c.Post(ctx, contactsPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating contact: %w", err)
	}
	return &out, nil
}

// Update updates a contact's editable fields.
func (s *Contacts) Update(ctx context.Context, id int64, in model.ContactInput) (*model.Contact, error) {
	var out model.Contact
	if err := s.c.Patch(ctx, itemPath(contactsPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating contact %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes a contact.
func (s *Contacts) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(contactsPath, id)); err != nil {
		return fmt.Errorf("deleting contact %d: %w", id, err)
	}
	return nil
}

// Search finds contacts by name or email.
func (s *Contacts) Search(ctx context.Context, q string) ([]model.Contact, error) {
	var out struct {
		Contacts []model.Contact `json:"contacts"`
	}
	if err := s.c.Get(ctx, contactsPath+"search/", url.Values{"q": {q}}, &out); err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	return out.Contacts, nil
}
