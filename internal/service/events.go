package service

import (
	"context"
	"fmt"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const eventsPath = apiPrefix + "/events/events/"

// Events wraps /events/events/.
type Events struct {
	c *api.Client
}

// List returns all events.
func (s *Events) List(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, "", "listing events")
}

// Upcoming returns events that have not started yet.
func (s *Events) Upcoming(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, "upcoming/", "listing upcoming events")
}

// Today returns events scheduled for today.
func (s *Events) Today(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, "today/", "listing today's events")
}

// ThisWeek returns events scheduled this week.
func (s *Events) ThisWeek(ctx context.Context) ([]model.Event, error) {
	return s.list(ctx, "this_week/", "listing this week's events")
}

func (s *Events) list(ctx context.Context, suffix, what string) ([]model.Event, error) {
	items, err := api.GetList[model.Event](ctx, s.c, eventsPath+suffix, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return items, nil
}

// ForCompany lists events linked to a company.
func (s *Events) ForCompany(ctx context.Context, companyID int64) ([]model.Event, error) {
	items, err := api.GetList[model.Event](ctx, s.c, eventsPath+"company_events/", idQuery("company_id", companyID))
	if err != nil {
		return nil, fmt.Errorf("listing events of company %d: %w", companyID, err)
	}
	return items, nil
}

// ForContact lists events a contact takes part in.
func (s *Events) ForContact(ctx context.Context, contactID int64) ([]model.Event, error) {
	items, err := api.GetList[model.Event](ctx, s.c, eventsPath+"contact_events/", idQuery("contact_id", contactID))
	if err != nil {
		return nil, fmt.Errorf("listing events of contact %d: %w", contactID, err)
	}
	return items, nil
}

// Create schedules an event.
func (s *Events) Create(ctx context.Context, in model.EventInput) (*model.Event, error) {
	var out model.Event
	if err := s.c.Post(ctx, eventsPath, in, &out); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return &out, nil
}

// Update replaces an event's editable fields.
func (s *Events) Update(ctx context.Context, id int64, in model.EventInput) (*model.Event, error) {
	var out model.Event
	if err := s.c.Patch(ctx, itemPath(eventsPath, id), in, &out); err != nil {
		return nil, fmt.Errorf("updating event %d: %w", id, err)
	}
	return &out, nil
}

// Delete removes an event.
func (s *Events) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, itemPath(eventsPath, id)); err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	return nil
}

// Complete marks an event completed and records its outcome.
func (s *Events) Complete(ctx context.Context, id int64, outcome string) (*model.Event, error) {
	var out model.Event
	body := map[string]string{"outcome": outcome}
	if err := s.c.Post(ctx, itemPath(eventsPath, id)+"complete/", body, &out); err != nil {
		return nil, fmt.Errorf("completing event %d: %w", id, err)
	}
	return &out, nil
}

// Cancel cancels an event with a reason.
func (s *Events) Cancel(ctx context.Context, id int64, reason string) (*model.Event, error) {
	var out model.Event
	body := map[string]string{"reason": reason}
	if err := s.c.Post(ctx, itemPath(eventsPath, id)+"cancel/", body, &out); err != nil {
		return nil, fmt.Errorf("cancelling event %d: %w", id, err)
	}
	return &out, nil
}
