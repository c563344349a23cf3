package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

type call struct {
	method string
	path   string
	query  string
	body   string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) get(i int) call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// newBackend serves canned JSON per "METHOD /path" and records calls.
func newBackend(t *testing.T, routes map[string]string) (*Services, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.add(call{r.Method, r.URL.Path, r.URL.RawQuery, string(data)})
		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail": "Not found."}`)
			return
		}
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return New(api.NewClient(model.APIConfig{BaseURL: srv.URL}, nil)), rec
}

func TestIncomingEmailsEndpoints(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"GET /api/v1/communications/incoming-emails/":                 `{"count": 1, "results": [{"id": 5, "subject": "Hi", "sender_email": "a@x.com", "status": "unread", "received_at": "2024-01-02T03:04:05Z"}]}`,
		"GET /api/v1/communications/incoming-emails/imap-status/":     `{"has_imap_config": false, "missing_fields": ["imap_password"], "ready_to_fetch": false, "message": "IMAP ayarları eksik"}`,
		"POST /api/v1/communications/incoming-emails/fetch/":          `{"success": true, "message": "ok", "fetched_count": 3, "saved_count": 2}`,
		"PATCH /api/v1/communications/incoming-emails/5/mark-read/":   `{}`,
		"PATCH /api/v1/communications/incoming-emails/5/mark-unread/": `{}`,
	})
	ctx := context.Background()

	list, err := svc.IncomingEmails.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.IncomingUnread, list[0].Status)

	st, err := svc.IncomingEmails.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.ReadyToFetch)
	assert.Equal(t, []string{"imap_password"}, st.MissingFields)

	res, err := svc.IncomingEmails.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SavedCount)

	require.NoError(t, svc.IncomingEmails.MarkRead(ctx, 5))
	require.NoError(t, svc.IncomingEmails.MarkUnread(ctx, 5))
	assert.Equal(t, 5, calls.len())
}

func TestCompanyContactsAndSearch(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"GET /api/v1/customers/companies/9/contacts/": `[{"id": 1, "company": 9, "first_name": "Ada", "last_name": "Lovelace", "email": "a@x.com"}]`,
		"GET /api/v1/customers/companies/search/":     `{"companies": [{"id": 9, "name": "Acme"}]}`,
	})
	ctx := context.Background()

	contacts, err := svc.Companies.Contacts(ctx, 9)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Ada Lovelace", contacts[0].FullName())

	found, err := svc.Companies.Search(ctx, "ac me")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "q=ac+me", calls.get(1).query)
}

func TestMessagesSendAndDraftPayload(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"POST /api/v1/communications/messages/send/":   `{"id": 1, "status": "sent", "created_at": "2024-01-01T00:00:00Z"}`,
		"POST /api/v1/communications/messages/drafts/": `{"id": 2, "status": "draft", "created_at": "2024-01-01T00:00:00Z"}`,
		"GET /api/v1/communications/messages/":         `[]`,
	})
	ctx := context.Background()
	req := model.SendEmailRequest{
		Subject:    "Offer",
		Content:    "Body",
		Recipients: []model.EmailRecipient{{Email: "a@x.com"}},
	}

	sent, err := svc.Messages.Send(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.EmailSent, sent.Status)

	draft, err := svc.Messages.SaveDraft(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.EmailDraft, draft.Status)

	_, err = svc.Messages.List(ctx, model.EmailDraft)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls.get(0).body), &payload))
	assert.Equal(t, "Offer", payload["subject"])
	assert.Equal(t, "status=draft", calls.get(2).query)
}

func TestOpportunityChangeStatusAndNotFound(t *testing.T) {
	svc, calls := newBackend(t, map[string]string{
		"POST /api/v1/opportunities/opportunities/3/change_status/": `{"id": 3, "status": 7, "value": "100.00", "priority": "high"}`,
	})
	ctx := context.Background()

	opp, err := svc.Opportunities.ChangeStatus(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), opp.Status)
	assert.JSONEq(t, `{"status_id": 7}`, calls.get(0).body)

	_, err = svc.Opportunities.Get(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, "Not found.", api.Message(err, ""))
}

func TestNotificationsUnreadCount(t *testing.T) {
	svc, _ := newBackend(t, map[string]string{
		"GET /api/v1/notifications/notifications/unread_count/": `{"unread_count": 12}`,
	})

	n, err := svc.Notifications.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
