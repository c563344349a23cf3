package app

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/ui/picker"
)

const pickCompanyPurpose = "propose-company"

// sessionExpiredMsg is sent when the API client saw a 401.
type sessionExpiredMsg struct{}

// loggedOutMsg is sent after an explicit logout.
type loggedOutMsg struct{}

// cachedInboxMsg carries the incoming list saved by the last session.
type cachedInboxMsg struct {
	session int
	emails  []model.IncomingEmail
}

// profileLoadedMsg carries the cached user profile.
type profileLoadedMsg struct {
	session int
	user    *model.User
}

// incomingStatusMsg reports a read/unread flag change.
type incomingStatusMsg struct {
	id     int64
	status model.IncomingStatus
	err    error
}

// replyGeneratedMsg carries a generated reply to email.
type replyGeneratedMsg struct {
	email   model.IncomingEmail
	content string
	err     error
}

// composeGeneratedMsg carries a generated body for the compose view that
// was open as seq.
type composeGeneratedMsg struct {
	seq     int
	content string
	err     error
}

// proposalsGeneratedMsg carries generated opportunity proposals.
type proposalsGeneratedMsg struct {
	result *model.OpportunityResult
	err    error
}

// companyChoicesMsg carries the companies offered when generating
// proposals with nothing selected.
type companyChoicesMsg struct {
	options []picker.Option
	err     error
}

// waitForExpiry blocks until the client reports a 401.
func (m Model) waitForExpiry() tea.Cmd {
	ch := m.expired
	return func() tea.Msg {
		<-ch
		return sessionExpiredMsg{}
	}
}

// startSession shows the communications view and starts the background
// tasks of a signed-in user.
func (m *Model) startSession() tea.Cmd {
	m.signedIn = true
	m.session++
	cmds := []tea.Cmd{m.comms.Init(), m.loadCachedInbox(), m.loadProfile()}
	if cmd := m.notifier.Start(m.ctx); cmd != nil && !m.notifierListening {
		m.notifierListening = true
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.navigate(ViewComms))
	return tea.Batch(cmds...)
}

// endSession stops the background tasks, forgets everything shown for the
// previous user and returns to the login view with reason.
func (m *Model) endSession(reason string) tea.Cmd {
	m.signedIn = false
	m.session++
	m.inbox.Deactivate()
	m.notifier.Stop()

	w, h := m.contentSize()
	m.comms = m.freshComms(w, h)
	m.notifications = m.freshNotifications(w, h)
	m.compose = m.newCompose()
	m.review.Close()
	m.proposals.Close()
	m.picker = nil
	m.target = nil
	m.handoff.Compose.Clear()
	m.handoff.Proposals.Clear()
	m.handoff.Tab.Clear()
	m.user = nil
	m.unreadCount = 0
	m.inboxLoaded = false
	m.banner = ""

	m.previousView = ViewLogin
	m.currentView = ViewLogin
	return m.login.Reset(reason)
}

// quit stops the background tasks and exits.
func (m Model) quit() tea.Cmd {
	m.inbox.Deactivate()
	m.notifier.Stop()
	return tea.Quit
}

func (m Model) saveUser(u model.User) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.SaveUser(context.Background(), u); err != nil {
			log.Printf("caching profile: %v", err)
		}
		return nil
	}
}

func (m Model) loadProfile() tea.Cmd {
	if m.user != nil {
		return nil
	}
	s, session := m.store, m.session
	return func() tea.Msg {
		u, err := s.GetUser(context.Background())
		if err != nil {
			log.Printf("loading cached profile: %v", err)
			return profileLoadedMsg{session: session}
		}
		return profileLoadedMsg{session: session, user: u}
	}
}

func (m Model) loadCachedInbox() tea.Cmd {
	s, session := m.store, m.session
	return func() tea.Msg {
		emails, err := s.GetIncomingEmails(context.Background())
		if err != nil {
			log.Printf("loading cached inbox: %v", err)
			return nil
		}
		return cachedInboxMsg{session: session, emails: emails}
	}
}

func (m Model) logout() tea.Cmd {
	auth := m.svc.Auth
	session := m.deps.Session
	return func() tea.Msg {
		if err := auth.Logout(context.Background()); err != nil {
			log.Printf("logout: %v", err)
		}
		if err := session.Clear(); err != nil {
			log.Printf("clearing session: %v", err)
		}
		return loggedOutMsg{}
	}
}

// setIncomingStatus flags an incoming email on the backend and in the
// local cache.
func (m Model) setIncomingStatus(id int64, status model.IncomingStatus) tea.Cmd {
	incoming := m.svc.IncomingEmails
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if status == model.IncomingRead {
			err = incoming.MarkRead(ctx, id)
		} else {
			err = incoming.MarkUnread(ctx, id)
		}
		if err != nil {
			return incomingStatusMsg{id: id, status: status, err: err}
		}
		if err := s.SetIncomingStatus(ctx, id, status); err != nil {
			log.Printf("caching status of incoming email %d: %v", id, err)
		}
		return incomingStatusMsg{id: id, status: status}
	}
}

// === Generation ===

func (m Model) generateReply(e model.IncomingEmail) tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		content, err := a.GenerateEmailReply(context.Background(), aiservice.ReplyRequest{IncomingEmailID: e.ID})
		return replyGeneratedMsg{email: e, content: content, err: err}
	}
}

func (m Model) handleReplyGenerated(msg replyGeneratedMsg) (tea.Model, tea.Cmd) {
	cur, ok := m.detail.Email()
	if !ok || cur.ID != msg.email.ID {
		return m, nil
	}
	if msg.err != nil {
		m.detail.ReplyFinished(generationMessage(msg.err, m.tr.T("error_generate")))
		return m, nil
	}
	m.detail.ReplyFinished("")
	if m.currentView != ViewDetail {
		return m, nil
	}
	if err := m.review.Open(m.tr.T("review_reply_title"), msg.content); err != nil {
		m.detail.ReplyFinished(m.tr.T("error_generate_empty"))
		return m, nil
	}
	m.target = &reviewTarget{prefill: replyPrefill(msg.email), fresh: true}
	return m, nil
}

func (m Model) generateCompose(req aiservice.ComposeRequest) tea.Cmd {
	a := m.assistant
	seq := m.composeSeq
	return func() tea.Msg {
		content, err := a.GenerateEmailContent(context.Background(), req)
		return composeGeneratedMsg{seq: seq, content: content, err: err}
	}
}

func (m Model) handleComposeGenerated(msg composeGeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.composeSeq || m.currentView != ViewCompose {
		return m, nil
	}
	if msg.err != nil {
		m.compose.GenerationFinished(generationMessage(msg.err, m.tr.T("error_generate")))
		return m, nil
	}
	m.compose.GenerationFinished("")
	if err := m.review.Open(m.tr.T("review_compose_title"), msg.content); err != nil {
		m.compose.GenerationFinished(m.tr.T("error_generate_empty"))
		return m, nil
	}
	m.target = &reviewTarget{}
	return m, nil
}

// approve hands content accepted in the review gate to compose, through
// the compose slot.
func (m *Model) approve(content string) tea.Cmd {
	t := m.target
	m.review.Close()
	m.target = nil
	if t == nil {
		return nil
	}

	p := t.prefill
	p.Content = content
	m.handoff.Compose.Stage(p)
	if t.fresh {
		return m.openCompose()
	}
	if staged, ok := m.handoff.Compose.Take(); ok {
		return m.compose.ApplyPrefill(staged)
	}
	return nil
}

func (m Model) loadCompanyChoices() tea.Cmd {
	companies := m.svc.Companies
	return func() tea.Msg {
		list, err := companies.List(context.Background())
		if err != nil {
			return companyChoicesMsg{err: err}
		}
		opts := make([]picker.Option, 0, len(list))
		for _, c := range list {
			opts = append(opts, picker.Option{ID: c.ID, Label: c.Name})
		}
		return companyChoicesMsg{options: opts}
	}
}

// generateProposals asks for opportunity proposals. The trigger stays
// disabled until the result arrives.
func (m *Model) generateProposals(companyID, contactID *int64) tea.Cmd {
	if m.pipeline.Generating() {
		return nil
	}
	m.proposalsFor = nav.ProposalHandoff{CompanyID: companyID, ContactID: contactID}
	spin := m.pipeline.SetGenerating(true, "")

	a := m.assistant
	req := aiservice.OpportunityRequest{CompanyID: companyID, ContactID: contactID}
	return tea.Batch(spin, func() tea.Msg {
		res, err := a.GenerateOpportunityProposal(context.Background(), req)
		return proposalsGeneratedMsg{result: res, err: err}
	})
}

func (m Model) handleProposalsGenerated(msg proposalsGeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.pipeline.SetGenerating(false, generationMessage(msg.err, m.tr.T("error_generate")))
		return m, nil
	}
	m.pipeline.SetGenerating(false, "")
	if m.currentView != ViewPipeline {
		return m, nil
	}
	if err := m.proposals.Open(msg.result); err != nil {
		m.pipeline.SetGenerating(false, m.tr.T("proposals_none"))
	}
	return m, nil
}

// generationMessage is the text shown next to a failed generation trigger.
func generationMessage(err error, fallback string) string {
	var genErr *aiservice.GenerationError
	if errors.As(err, &genErr) && genErr.Message != "" {
		return genErr.Message
	}
	return api.Message(err, fallback)
}

// === Prefills ===

func replyPrefill(e model.IncomingEmail) nav.ComposePrefill {
	return nav.ComposePrefill{
		Subject:   render.ReplySubject(e.Subject),
		To:        []model.EmailRecipient{{Email: e.SenderEmail, Name: e.SenderName}},
		CompanyID: e.Company,
		ContactID: e.Contact,
	}
}

func draftPrefill(d model.EmailMessage) nav.ComposePrefill {
	return nav.ComposePrefill{
		Subject:   d.Subject,
		Content:   d.Content,
		To:        d.Recipients,
		Cc:        d.CC,
		Bcc:       d.BCC,
		CompanyID: d.Company,
		ContactID: d.Contact,
	}
}

func opportunityPrefill(o model.Opportunity) nav.ComposePrefill {
	company, id := o.Company, o.ID
	return nav.ComposePrefill{
		Subject:       o.Title,
		CompanyID:     &company,
		OpportunityID: &id,
	}
}
