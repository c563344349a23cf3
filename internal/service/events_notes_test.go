package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
)

const eventJSON = `{"id": 4, "title": "Kick-off", "event_type": "meeting", "status": "scheduled", "priority": "high", "start_datetime": "2024-03-01T09:00:00Z"}`

func TestEventListings(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"GET /api/v1/events/events/":                `{"count": 1, "results": [` + eventJSON + `]}`,
		"GET /api/v1/events/events/upcoming/":       `[` + eventJSON + `]`,
		"GET /api/v1/events/events/today/":          `[]`,
		"GET /api/v1/events/events/this_week/":      `[` + eventJSON + `]`,
		"GET /api/v1/events/events/company_events/": `[` + eventJSON + `]`,
		"GET /api/v1/events/events/contact_events/": `[]`,
	})
	ctx := context.Background()

	all, err := svc.Events.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.EventScheduled, all[0].Status)
	assert.Equal(t, model.PriorityHigh, all[0].Priority)

	upcoming, err := svc.Events.Upcoming(ctx)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	today, err := svc.Events.Today(ctx)
	require.NoError(t, err)
	assert.Empty(t, today)

	week, err := svc.Events.ThisWeek(ctx)
	require.NoError(t, err)
	assert.Len(t, week, 1)

	_, err = svc.Events.ForCompany(ctx, 7)
	require.NoError(t, err)
	_, err = svc.Events.ForContact(ctx, 11)
	require.NoError(t, err)

	require.Equal(t, 6, calls.len())
	assert.Equal(t, "company_id=7", calls.get(4).query)
	assert.Equal(t, "contact_id=11", calls.get(5).query)
}

func TestEventWrites(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"POST /api/v1/events/events/":            eventJSON,
		"PATCH /api/v1/events/events/4/":         eventJSON,
		"DELETE /api/v1/events/events/4/":        ``,
		"POST /api/v1/events/events/4/complete/": `{"id": 4, "status": "completed", "outcome": "Signed", "start_datetime": "2024-03-01T09:00:00Z"}`,
		"POST /api/v1/events/events/4/cancel/":   `{"id": 4, "status": "cancelled", "start_datetime": "2024-03-01T09:00:00Z"}`,
	})
	ctx := context.Background()
	company := int64(7)
	in := model.EventInput{
		Title:         "Kick-off",
		EventType:     model.EventMeeting,
		Company:       &company,
		StartDatetime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	created, err := svc.Events.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls.get(0).body), &payload))
	assert.Equal(t, "Kick-off", payload["title"])
	assert.Equal(t, "meeting", payload["event_type"])
	assert.Equal(t, "2024-03-01T09:00:00Z", payload["start_datetime"])
	assert.EqualValues(t, 7, payload["company"])

	_, err = svc.Events.Update(ctx, 4, in)
	require.NoError(t, err)
	assert.Equal(t, "PATCH", calls.get(1).method)

	require.NoError(t, svc.Events.Delete(ctx, 4))
	assert.Equal(t, "DELETE", calls.get(2).method)

	done, err := svc.Events.Complete(ctx, 4, "Signed")
	require.NoError(t, err)
	assert.Equal(t, model.EventCompleted, done.Status)
	assert.Equal(t, "Signed", done.Outcome)
	assert.JSONEq(t, `{"outcome": "Signed"}`, calls.get(3).body)

	cancelled, err := svc.Events.Cancel(ctx, 4, "Client rescheduled")
	require.NoError(t, err)
	assert.Equal(t, model.EventCancelled, cancelled.Status)
	assert.JSONEq(t, `{"reason": "Client rescheduled"}`, calls.get(4).body)
}

func TestEventErrorsNameTheCall(t *testing.T) {
	svc, _ := newBackend(t, map[string]string{})

	_, err := svc.Events.Complete(context.Background(), 99, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completing event 99")

	_, err = svc.Events.Upcoming(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing upcoming events")
}

func TestNotesEndpoints(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"GET /api/v1/customers/notes/":      `[{"id": 2, "title": "Call", "content": "Wants a demo", "company": 7, "contact": null}]`,
		"POST /api/v1/customers/notes/":     `{"id": 3, "title": "Follow-up", "content": "Send pricing", "company": 7, "contact": null}`,
		"PATCH /api/v1/customers/notes/3/":  `{"id": 3, "title": "Follow-up", "content": "Pricing sent", "company": 7, "contact": null}`,
		"DELETE /api/v1/customers/notes/3/": ``,
	})
	ctx := context.Background()
	company := int64(7)

	notes, err := svc.Notes.ForCompany(ctx, 7)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Wants a demo", notes[0].Content)
	assert.Nil(t, notes[0].Contact)
	assert.Equal(t, "company=7", calls.get(0).query)

	_, err = svc.Notes.ForContact(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "contact=11", calls.get(1).query)

	created, err := svc.Notes.Create(ctx, model.NoteInput{Title: "Follow-up", Content: "Send pricing", Company: &company})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.JSONEq(t, `{"title": "Follow-up", "content": "Send pricing", "company": 7}`, calls.get(2).body)

	updated, err := svc.Notes.Update(ctx, 3, model.NoteInput{Title: "Follow-up", Content: "Pricing sent", Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "Pricing sent", updated.Content)
	assert.Equal(t, "PATCH", calls.get(3).method)

	require.NoError(t, svc.Notes.Delete(ctx, 3))
	assert.Equal(t, "DELETE", calls.get(4).method)
	assert.Equal(t, "/api/v1/customers/notes/3/", calls.get(4).path)
}
