package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	aiservice "github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/mailcheck"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/service"
	"github.com/nhle/crmterm/tests/testutil"
)

func newTestEnv(t *testing.T, handler http.HandlerFunc) *env {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	session := testutil.NewTestSession(s)
	cfg := model.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	client := api.NewClient(cfg.API, session)
	return &env{
		cfg:        cfg,
		store:      s,
		session:    session,
		client:     client,
		services:   service.New(client),
		assistant:  aiservice.New(client, s),
		translator: i18n.Must("en"),
	}
}

func TestStatusSignedOut(t *testing.T) {
	e := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected while signed out")
	})

	var out bytes.Buffer
	require.NoError(t, runStatus(context.Background(), e, &out))

	var got statusReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.False(t, got.SignedIn)
	assert.Equal(t, e.cfg.API.BaseURL, got.Backend)
	assert.Nil(t, got.Inbox)
}

func TestStatusKeepsPartialResults(t *testing.T) {
	e := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/profile/":
			_, _ = io.WriteString(w, `{"id":1,"username":"ada","first_name":"Ada","last_name":"Lovelace"}`)
		case "/api/v1/communications/incoming-emails/imap-status/":
			_, _ = io.WriteString(w, `{"has_imap_config":true,"ready_to_fetch":true,"missing_fields":[]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"boom"}`)
		}
	})
	require.NoError(t, e.session.SetToken("tok"))

	var out bytes.Buffer
	require.NoError(t, runStatus(context.Background(), e, &out))

	var got statusReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.SignedIn)
	assert.Equal(t, "Ada Lovelace", got.User)
	require.NotNil(t, got.Inbox)
	assert.True(t, got.Inbox.ReadyToFetch)
	require.NotNil(t, got.AI)
	assert.Equal(t, "error", got.AI.Status)
	assert.Nil(t, got.Unread)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "notifications")
}

func TestMailcheckNeedsAServer(t *testing.T) {
	err := runMailcheck(context.Background(), nil, io.Discard)
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	r := &mailcheck.Report{
		Protocol: "smtp",
		Address:  "mail.example.com:587",
		Elapsed:  1500 * time.Millisecond,
		Steps: []mailcheck.Step{
			{Name: "connect", Detail: "connected"},
			{Name: "auth", Err: errors.New("535 bad credentials")},
		},
	}

	var out bytes.Buffer
	printReport(&out, r)

	assert.Contains(t, out.String(), "SMTP mail.example.com:587 (1.5s)")
	assert.Contains(t, out.String(), "ok    connect")
	assert.Contains(t, out.String(), "FAIL  auth       535 bad credentials")
}

func TestImapPort(t *testing.T) {
	assert.Equal(t, 993, imapPort(true))
	assert.Equal(t, 143, imapPort(false))
}
