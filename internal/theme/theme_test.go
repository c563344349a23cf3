package theme

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
)

func TestEveryKnownStatusHasAStyle(t *testing.T) {
	for _, s := range []model.IncomingStatus{model.IncomingUnread, model.IncomingRead, model.IncomingArchived, model.IncomingDeleted} {
		assert.NotPanics(t, func() { IncomingStatusStyle(s) }, s)
	}
	for _, s := range []model.EmailStatus{model.EmailDraft, model.EmailSending, model.EmailSent, model.EmailFailed} {
		assert.NotPanics(t, func() { EmailStatusStyle(s) }, s)
	}
	for _, p := range []model.DealPriority{model.DealLow, model.DealMedium, model.DealHigh, model.DealCritical} {
		assert.NotPanics(t, func() { DealPriorityStyle(p) }, p)
	}
	for _, p := range []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent} {
		assert.NotPanics(t, func() { PriorityStyle(p) }, p)
	}
	for _, s := range []model.EventStatus{model.EventScheduled, model.EventInProgress, model.EventCompleted, model.EventCancelled, model.EventPostponed} {
		assert.NotPanics(t, func() { EventStatusStyle(s) }, s)
	}
	for _, n := range []model.NotificationType{
		model.NotifyReminder, model.NotifyEvent, model.NotifyEventUpdated, model.NotifyEmail,
		model.NotifyTask, model.NotifySystem, model.NotifyInfo, model.NotifyWarning, model.NotifyError,
	} {
		assert.NotPanics(t, func() { NotificationTypeStyle(n) }, n)
	}
}

func TestUnknownStatusIsNeutral(t *testing.T) {
	assert.Equal(t, ColorGray, EmailStatusStyle(model.EmailStatus("queued")).GetForeground())
	assert.Equal(t, ColorGray, IncomingStatusStyle("").GetForeground())
	assert.Equal(t, ColorGray, DealPriorityStyle("urgent").GetForeground())
	assert.Equal(t, ColorGray, PriorityStyle("").GetForeground())
	assert.Equal(t, ColorGray, EventStatusStyle("").GetForeground())
	assert.Equal(t, ColorGray, NotificationTypeStyle("").GetForeground())
}

func TestNullStatusFromBackendRenders(t *testing.T) {
	var in model.IncomingEmail
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "subject": "Hi", "status": null}`), &in))
	require.Equal(t, model.IncomingStatus(""), in.Status)

	var out model.EmailMessage
	require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "subject": "Re", "status": null}`), &out))

	var ev model.Event
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "status": null, "priority": null}`), &ev))

	assert.NotPanics(t, func() {
		IncomingStatusStyle(in.Status).Render(string(in.Status))
		EmailStatusStyle(out.Status).Render(string(out.Status))
		EventStatusStyle(ev.Status).Render(string(ev.Status))
		PriorityStyle(ev.Priority).Render(string(ev.Priority))
	})
	assert.Equal(t, ColorGray, IncomingStatusStyle(in.Status).GetForeground())
}
