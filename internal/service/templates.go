package service

import (
	"context"
	"fmt"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const templatesPath = apiPrefix + "/communications/email-templates/"

// Templates wraps /communications/email-templates/.
type Templates struct {
	c *api.Client
}

// List returns all templates.
func (s *Templates) List(ctx context.Context) ([]model.EmailTemplate, error) {
	items, err := api.GetList[model.EmailTemplate](ctx, s.c, templatesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return items, nil
}

// Get returns one template.
func (s *Templates) Get(ctx context.Context, id int64) (*model.EmailTemplate, error) {
	var out model.EmailTemplate
	if err := s.c.Get(ctx, itemPath(templatesPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting template %d: %w", id, err)
	}
	return &out, nil
}

// Create adds a template.
func (s *Templates) Create(ctx context.Context, in model.EmailTemplateInput) (*model.EmailTemplate, error) {
	var out model.EmailTemplate
	if err := s.c.Post(ctx, templatesPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	return &out, nil
}

// Update edits a template.
func (s *Templates) Update(ctx context.Context, id int64, in model.EmailTemplateInput) (*model.EmailTemplate, error) {
	var out model.EmailTemplate
	if err := s.c.Patch(ctx, itemPath(templatesPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating template %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes a template.
func (s *Templates) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(templatesPath, id)); err != nil {
		return fmt.Errorf("deleting template %d: %w", id, err)
	}
	return nil
}
