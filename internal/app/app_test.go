package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aiservice "github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/compose"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/service"
	appsync "github.com/nhle/crmterm/internal/sync"
	"github.com/nhle/crmterm/internal/ui/command"
	"github.com/nhle/crmterm/internal/ui/gate"
	"github.com/nhle/crmterm/tests/testutil"
)

// emptyBackend answers every request with an empty list.
func emptyBackend(w http.ResponseWriter, _ *http.Request) {
	_, _ = io.WriteString(w, "[]")
}

func newTestApp(t *testing.T) Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(emptyBackend))
	t.Cleanup(srv.Close)

	s := testutil.NewTestStore(t)
	session := testutil.NewTestSession(s)
	client := api.NewClient(model.APIConfig{BaseURL: srv.URL}, session)

	m := New(Deps{
		Config:     model.DefaultConfig(),
		Client:     client,
		Services:   service.New(client),
		Assistant:  aiservice.New(client, s),
		Store:      s,
		Session:    session,
		Translator: i18n.Must("en"),
	})
	t.Cleanup(func() {
		m.inbox.Deactivate()
		m.notifier.Stop()
	})
	return m
}

func TestStartsAtLoginWithoutToken(t *testing.T) {
	m := newTestApp(t)
	assert.Equal(t, ViewLogin, m.currentView)
}

func TestApprovedReplyOpensPrefilledCompose(t *testing.T) {
	m := newTestApp(t)
	company := int64(7)
	email := model.IncomingEmail{ID: 3, Subject: "Pricing", SenderEmail: "ada@example.com", SenderName: "Ada", Company: &company}
	m.detail.SetEmail(email)
	m.currentView = ViewDetail

	next, _ := m.handleReplyGenerated(replyGeneratedMsg{email: email, content: "Thanks Ada"})
	m = next.(Model)
	require.True(t, m.review.IsOpen())
	assert.Equal(t, "Thanks Ada", m.review.Content())

	next, _ = m.Update(gate.ApprovedMsg{Content: "Thanks Ada, edited"})
	m = next.(Model)

	assert.False(t, m.review.IsOpen())
	assert.Equal(t, ViewCompose, m.currentView)
	assert.False(t, m.handoff.Compose.Pending(), "prefill is consumed once")

	d := m.compose.Draft()
	assert.Equal(t, "Re: Pricing", d.Subject)
	assert.Equal(t, "Thanks Ada, edited", d.Content)
	assert.Equal(t, []model.EmailRecipient{{Email: "ada@example.com", Name: "Ada"}}, d.Rows(compose.FieldTo))
	require.NotNil(t, d.CompanyID)
	assert.Equal(t, company, *d.CompanyID)
}

func TestRejectedReplyLeavesNoTrace(t *testing.T) {
	m := newTestApp(t)
	email := model.IncomingEmail{ID: 3, Subject: "Pricing"}
	m.detail.SetEmail(email)
	m.currentView = ViewDetail

	next, _ := m.handleReplyGenerated(replyGeneratedMsg{email: email, content: "Draft"})
	m = next.(Model)
	next, _ = m.Update(gate.RejectedMsg{})
	m = next.(Model)

	assert.False(t, m.review.IsOpen())
	assert.Nil(t, m.target)
	assert.False(t, m.handoff.Compose.Pending())
	assert.Equal(t, ViewDetail, m.currentView)
}

func TestFailedReplyNeverOpensGate(t *testing.T) {
	m := newTestApp(t)
	email := model.IncomingEmail{ID: 3, Subject: "Pricing"}
	m.detail.SetEmail(email)
	m.currentView = ViewDetail

	next, _ := m.handleReplyGenerated(replyGeneratedMsg{
		email: email,
		err:   &aiservice.GenerationError{Kind: model.AIKindReply, Message: "AI provider unavailable"},
	})
	m = next.(Model)

	assert.False(t, m.review.IsOpen())
	assert.False(t, m.detail.Replying())
	assert.Contains(t, m.detail.View(), "AI provider unavailable")
}

func TestLateComposeResultIsDropped(t *testing.T) {
	m := newTestApp(t)
	m.currentView = ViewCompose
	m.composeSeq = 2

	next, _ := m.handleComposeGenerated(composeGeneratedMsg{seq: 1, content: "old"})
	m = next.(Model)
	assert.False(t, m.review.IsOpen())

	next, _ = m.handleComposeGenerated(composeGeneratedMsg{seq: 2, content: "fresh"})
	m = next.(Model)
	assert.True(t, m.review.IsOpen())
}

func TestApprovedComposeContentFillsCurrentDraft(t *testing.T) {
	m := newTestApp(t)
	_ = m.openCompose()
	m.compose.Draft().Subject = "Kick-off"

	next, _ := m.handleComposeGenerated(composeGeneratedMsg{seq: m.composeSeq, content: "Hello team"})
	m = next.(Model)
	next, _ = m.Update(gate.ApprovedMsg{Content: "Hello team"})
	m = next.(Model)

	assert.Equal(t, ViewCompose, m.currentView)
	assert.Equal(t, "Kick-off", m.compose.Draft().Subject)
	assert.Equal(t, "Hello team", m.compose.Draft().Content)
}

func TestSelectedProposalsReachOpportunityForm(t *testing.T) {
	m := newTestApp(t)
	m.currentView = ViewPipeline
	company := int64(7)
	m.proposalsFor = nav.ProposalHandoff{CompanyID: &company}

	next, _ := m.Update(gate.CreateSelectedMsg{Proposals: []model.OpportunityProposal{
		{Title: "Support plan"},
		{Title: "Training"},
	}})
	m = next.(Model)

	assert.Equal(t, ViewOppForm, m.currentView)
	assert.False(t, m.handoff.Proposals.Pending())
	require.Len(t, m.oppForm.Pending(), 2)
	assert.Equal(t, "Support plan", m.oppForm.Pending()[0].Title)
}

func TestSessionExpiryReturnsToLogin(t *testing.T) {
	m := newTestApp(t)
	m.signedIn = true
	m.currentView = ViewComms
	m.unreadCount = 4
	m.handoff.Compose.Stage(nav.ComposePrefill{Subject: "x"})

	next, cmd := m.Update(sessionExpiredMsg{})
	m = next.(Model)

	assert.NotNil(t, cmd)
	assert.Equal(t, ViewLogin, m.currentView)
	assert.False(t, m.signedIn)
	assert.Zero(t, m.unreadCount)
	assert.False(t, m.handoff.Compose.Pending())
	assert.False(t, m.inbox.Active())
}

func TestInboxPollsOnlyWhileInboxTabIsShown(t *testing.T) {
	m := newTestApp(t)
	m.signedIn = true

	_ = m.navigate(ViewComms)
	assert.True(t, m.inbox.Active())

	_ = m.navigate(ViewPipeline)
	assert.False(t, m.inbox.Active())

	m.handoff.Tab.Stage(nav.TabDrafts)
	_ = m.navigate(ViewComms)
	assert.Equal(t, nav.TabDrafts, m.comms.Tab())
	assert.False(t, m.inbox.Active())
}

func TestOverlaysPauseInboxPolling(t *testing.T) {
	m := newTestApp(t)
	m.signedIn = true
	_ = m.navigate(ViewComms)
	require.True(t, m.inbox.Active())

	help := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}
	handled, _ := m.handleGlobalKey(help)
	require.True(t, handled)
	assert.Equal(t, ViewHelp, m.currentView)
	assert.False(t, m.inbox.Active())

	_, _ = m.handleGlobalKey(help)
	assert.Equal(t, ViewComms, m.currentView)
	assert.True(t, m.inbox.Active())

	palette := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")}
	_, _ = m.handleGlobalKey(palette)
	assert.Equal(t, ViewCommand, m.currentView)
	assert.False(t, m.inbox.Active())

	_, _ = m.handleGlobalKey(palette)
	assert.Equal(t, ViewComms, m.currentView)
	assert.True(t, m.inbox.Active())

	_, _ = m.handleGlobalKey(palette)
	require.False(t, m.inbox.Active())
	next, _ := m.Update(command.CommandMsg("refresh"))
	m = next.(Model)
	assert.Equal(t, ViewComms, m.currentView)
	assert.True(t, m.inbox.Active())
}

func TestPollResultFromEndedSessionIsDropped(t *testing.T) {
	m := newTestApp(t)
	m.signedIn = true
	_ = m.navigate(ViewComms)
	require.True(t, m.inbox.Active())

	// The first activation of a fresh poller is run 1.
	old := []model.IncomingEmail{{ID: 9, Subject: "Previous user"}}
	staleLoad := appsync.InboxLoadedMsg{Emails: old, Run: 1}
	staleRefresh := appsync.InboxRefreshedMsg{Emails: old, Run: 1}

	_ = m.endSession("signed out")
	next, cmd := m.Update(staleLoad)
	m = next.(Model)
	assert.NotNil(t, cmd, "the listener is re-armed")
	assert.Empty(t, m.comms.Inbox())
	assert.False(t, m.inboxLoaded)

	m.signedIn = true
	_ = m.navigate(ViewComms)
	require.True(t, m.inbox.Active())

	next, _ = m.Update(staleLoad)
	m = next.(Model)
	next, _ = m.Update(staleRefresh)
	m = next.(Model)
	assert.Empty(t, m.comms.Inbox())

	next, _ = m.Update(appsync.InboxLoadedMsg{Emails: []model.IncomingEmail{{ID: 10, Subject: "Current user"}}, Run: 2})
	m = next.(Model)
	require.Len(t, m.comms.Inbox(), 1)
	assert.Equal(t, "Current user", m.comms.Inbox()[0].Subject)
}

func TestCachedLoadsFromEndedSessionAreDropped(t *testing.T) {
	m := newTestApp(t)
	m.signedIn = true
	stale := m.session

	_ = m.endSession("signed out")
	next, _ := m.Update(profileLoadedMsg{session: stale, user: &model.User{ID: 1, Username: "previous"}})
	m = next.(Model)
	next, _ = m.Update(cachedInboxMsg{session: stale, emails: []model.IncomingEmail{{ID: 9}}})
	m = next.(Model)

	assert.Nil(t, m.user)
	assert.Empty(t, m.comms.Inbox())
}

func TestCommandPaletteSelectsTab(t *testing.T) {
	m := newTestApp(t)
	_ = m.executeCommand("sent")
	assert.Equal(t, ViewComms, m.currentView)
	assert.Equal(t, nav.TabSent, m.comms.Tab())
	assert.False(t, m.handoff.Tab.Pending())
}

func TestDraftPrefillKeepsAllRecipients(t *testing.T) {
	company := int64(4)
	p := draftPrefill(model.EmailMessage{
		Subject:    "Quote",
		Content:    "Body",
		Recipients: []model.EmailRecipient{{Email: "a@x.com"}},
		CC:         []model.EmailRecipient{{Email: "b@x.com"}},
		BCC:        []model.EmailRecipient{{Email: "c@x.com"}},
		Company:    &company,
	})
	assert.Equal(t, "Quote", p.Subject)
	assert.Len(t, p.To, 1)
	assert.Equal(t, "b@x.com", p.Cc[0].Email)
	assert.Equal(t, "c@x.com", p.Bcc[0].Email)
	assert.Equal(t, &company, p.CompanyID)
}

func TestOpportunityPrefillCopiesIDs(t *testing.T) {
	o := model.Opportunity{ID: 10, Title: "Support plan", Company: 7}
	p := opportunityPrefill(o)
	o.Company = 99

	require.NotNil(t, p.CompanyID)
	assert.Equal(t, int64(7), *p.CompanyID)
	assert.Equal(t, int64(10), *p.OpportunityID)
	assert.Equal(t, "Support plan", p.Subject)
}
