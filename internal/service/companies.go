package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const companiesPath = apiPrefix + "/customers/companies/"

// Companies wraps /customers/companies/.
type Companies struct {
	c *api.Client
}

// List returns all companies.
func (s *Companies) List(ctx context.Context) ([]model.Company, error) {
	items, err := api.GetList[model.Company](ctx, s.c, companiesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return items, nil
}

// Get returns one company.
func (s *Companies) Get(ctx context.Context, id int64) (*model.Company, error) {
	var out model.Company
	if err := s.c.Get(ctx, itemPath(companiesPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting company %d: %w", id, err)
	}
	return &out, nil
}

// Create adds a company.
func (s *Companies) Create(ctx context.Context, in model.CompanyInput) (*model.Company, error) {
	var out model.Company
	if err := s.c.Post(ctx, companiesPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}
	return &out, nil
}

// Update updates a company's editable fields.
func (s *Companies) Update(ctx context.Context, id int64, in model.CompanyInput) (*model.Company, error) {
	var out model.Company
	if err := s.c.Patch(ctx, itemPath(companiesPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating company %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes a company.
func (s *Companies) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(companiesPath, id)); err != nil {
		return fmt.Errorf("deleting company %d: %w", id, err)
	}
	return nil
}

// Search finds companies whose name matches q.
func (s *Companies) Search(ctx context.Context, q string) ([]model.Company, error) {
	var out struct {
		Companies []model.Company `json:"companies"`
	}
	if err := s.c.Get(ctx, companiesPath+"search/", url.Values{"q": {q}}, &out); err != nil {
		return nil, fmt.Errorf("searching companies: %w", err)
	}
	return out.Companies, nil
}

// Contacts returns the people working at company id.
func (s *Companies) Contacts(ctx context.Context, id int64) ([]model.Contact, error) {
	items, err := api.GetList[model.Contact](ctx, s.c, itemPath(companiesPath, id)+"contacts/", nil)
	if err != nil {
		return nil, fmt.Errorf("listing contacts of company %d: %w", id, err)
	}
	return items, nil
}
