package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const (
	opportunitiesPath = apiPrefix + "/opportunities/opportunities/"
	statusesPath      = apiPrefix + "/opportunities/statuses/"
	activitiesPath    = apiPrefix + "/opportunities/activities/"
)

// Opportunities wraps the sales pipeline endpoints.
type Opportunities struct {
	c *api.Client
}

// List returns all opportunities.
func (s *Opportunities) List(ctx context.Context) ([]model.Opportunity, error) {
	items, err := api.GetList[model.Opportunity](ctx, s.c, opportunitiesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	return items, nil
}

// ForCompany lists the opportunities of one company.
func (s *Opportunities) ForCompany(ctx context.Context, companyID int64) ([]model.Opportunity, error) {
	items, err := api.GetList[model.Opportunity](ctx, s.c, opportunitiesPath, idQuery("company", companyID))
	if err != nil {
		return nil, fmt.Errorf("listing opportunities of company %d: %w", companyID, err)
	}
	return items, nil
}

// ForContact lists the opportunities a contact takes part in.
func (s *Opportunities) ForContact(ctx context.Context, contactID int64) ([]model.Opportunity, error) {
	items, err := api.GetList[model.Opportunity](ctx, s.c, opportunitiesPath, idQuery("contact", contactID))
	if err != nil {
		return nil, fmt.Errorf("listing opportunities of contact %d: %w", contactID, err)
	}
	return items, nil
}

// Get returns one opportunity with its activity log.
func (s *Opportunities) Get(ctx context.Context, id int64) (*model.Opportunity, error) {
	var out model.Opportunity
	if err := s.c.Get(ctx, itemPath(opportunitiesPath, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting opportunity %d: %w", id, err)
	}
	return &out, nil
}

// Create adds an opportunity.
func (s *Opportunities) Create(ctx context.Context, in model.OpportunityInput) (*model.Opportunity, error) {
	var out model.Opportunity
	if err := s.c.Post(ctx, opportunitiesPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating opportunity: %w", err)
	}
	return &out, nil
}

// Update updates an opportunity's editable fields.
func (s *Opportunities) Update(ctx context.Context, id int64, in model.OpportunityInput) (*model.Opportunity, error) {
	var out model.Opportunity
	if err := s.c.Patch(ctx, itemPath(opportunitiesPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating opportunity %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes an opportunity.
func (s *Opportunities) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(opportunitiesPath, id)); err != nil {
		return fmt.Errorf("deleting opportunity %d: %w", id, err)
	}
	return nil
}

// Kanban returns the pipeline grouped by status.
func (s *Opportunities) Kanban(ctx context.Context) ([]model.KanbanColumn, error) {
	var out []model.KanbanColumn
	if err := s.c.Get(ctx, opportunitiesPath+"kanban/", nil, &out); err != nil {
		return nil, fmt.Errorf("loading kanban: %w", err)
	}
	return out, nil
}

// Search finds opportunities by title.
func (s *Opportunities) Search(ctx context.Context, q string) ([]model.Opportunity, error) {
	items, err := api.GetList[model.Opportunity](ctx, s.c, opportunitiesPath+"search/", url.Values{"q": {q}})
	if err != nil {
		return nil, fmt.Errorf("searching opportunities: %w", err)
	}
	return items, nil
}

// ChangeStatus moves an opportunity to another pipeline column.
func (s *Opportunities) ChangeStatus(ctx context.Context, id, statusID int64) (*model.Opportunity, error) {
	body := map[string]int64{"status_id": statusID}
	var out model.Opportunity
	if err := s.c.Post(ctx, itemPath(opportunitiesPath, id)+"change_status/", body, &out); err != nil {
		return nil, fmt.Errorf("changing status of opportunity %d: %w", id, err)
	}
	return &out, nil
}

// Statuses lists the pipeline columns in display order.
func (s *Opportunities) Statuses(ctx context.Context) ([]model.OpportunityStatus, error) {
	items, err := api.GetList[model.OpportunityStatus](ctx, s.c, statusesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing opportunity statuses: %w", err)
	}
	return items, nil
}

// AddActivity appends an entry to an opportunity's activity log.
func (s *Opportunities) AddActivity(ctx context.Context, in model.ActivityInput) (*model.Activity, error) {
	var out model.Activity
	if err := s.c.Post(ctx, activitiesPath, in, &out); err != nil {
		return nil, fmt.Errorf("adding activity: %w", err)
	}
	return &out, nil
}
