package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	aiservice "github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/credential"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/service"
	"github.com/nhle/crmterm/internal/store"
	appsync "github.com/nhle/crmterm/internal/sync"
	"github.com/nhle/crmterm/internal/ui"
	aiview "github.com/nhle/crmterm/internal/ui/ai"
	"github.com/nhle/crmterm/internal/ui/command"
	"github.com/nhle/crmterm/internal/ui/comms"
	"github.com/nhle/crmterm/internal/ui/composeform"
	configview "github.com/nhle/crmterm/internal/ui/config"
	"github.com/nhle/crmterm/internal/ui/detail"
	"github.com/nhle/crmterm/internal/ui/gate"
	helpview "github.com/nhle/crmterm/internal/ui/help"
	"github.com/nhle/crmterm/internal/ui/login"
	"github.com/nhle/crmterm/internal/ui/notifications"
	"github.com/nhle/crmterm/internal/ui/oppform"
	"github.com/nhle/crmterm/internal/ui/picker"
	"github.com/nhle/crmterm/internal/ui/pipeline"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewComms
	ViewDetail
	ViewCompose
	ViewNotifications
	ViewPipeline
	ViewOppForm
	ViewSettings
	ViewAI
	ViewHelp
	ViewCommand
)

// Deps are the long-lived collaborators built by main.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Client     *api.Client
	Services   *service.Services
	Assistant  *aiservice.Assistant
	Store      store.Store
	Session    *credential.Session
	Translator *i18n.Translator
}

// reviewTarget says where content approved in the review gate goes.
type reviewTarget struct {
	prefill nav.ComposePrefill

	// fresh opens a new compose view instead of filling the current one.
	fresh bool
}

// Model is the root Bubble Tea model. It owns view routing, the review and
// proposal modals, the hand-off slots and the background pollers.
type Model struct {
	deps      Deps
	svc       *service.Services
	assistant *aiservice.Assistant
	store     store.Store
	tr        *i18n.Translator
	keys      *keys.KeyMap
	ctx       context.Context

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	login         login.Model
	comms         comms.Model
	detail        detail.Model
	compose       composeform.Model
	notifications notifications.Model
	pipeline      pipeline.Model
	oppForm       oppform.Model
	settings      configview.Model
	aiView        aiview.Model
	helpView      helpview.Model
	commandView   command.Model

	review       gate.Model
	proposals    gate.ProposalsModel
	picker       *picker.Model
	target       *reviewTarget
	proposalsFor nav.ProposalHandoff
	handoff      *nav.Handoff

	inbox             *appsync.InboxPoller
	notifier          *appsync.NotificationPoller
	inboxListening    bool
	notifierListening bool
	expired           chan struct{}

	user        *model.User
	unreadCount int
	inboxLoaded bool
	signedIn    bool
	session     int
	composeSeq  int
	banner      string
	bannerErr   bool
}

// New creates the root model. The unauthorized hook of the client is
// installed here.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	tr := d.Translator
	svc := d.Services

	inboxEvery := time.Duration(d.Config.Inbox.PollIntervalSec) * time.Second
	notifyEvery := time.Duration(d.Config.Notifications.PollIntervalSec) * time.Second

	expired := make(chan struct{}, 1)
	d.Client.OnUnauthorized(func() {
		select {
		case expired <- struct{}{}:
		default:
		}
	})

	m := Model{
		deps:          d,
		svc:           svc,
		assistant:     d.Assistant,
		store:         d.Store,
		tr:            tr,
		keys:          k,
		ctx:           context.Background(),
		currentView:   ViewLogin,
		login:         login.New(svc.Auth, tr, d.Client.BaseURL(), 80, 24),
		comms:         comms.New(svc.Messages, svc.Templates, k, tr, 80, 24),
		detail:        detail.New(k, tr, 80, 24),
		notifications: notifications.New(svc.Notifications, k, tr, 80, 24),
		pipeline:      pipeline.New(svc.Opportunities, k, tr, 80, 24),
		oppForm:       oppform.New(opportunityBackend{companies: svc.Companies, opportunities: svc.Opportunities}, tr, 80, 24),
		settings:      configview.New(svc.Auth, k, tr, 80, 24),
		aiView:        aiview.New(d.Assistant, d.Store, k, tr, 80, 24),
		helpView:      helpview.New(k, tr, 80, 24),
		commandView:   command.New(commandNames, tr, 80, 24),
		review:        gate.New(k, tr, 80, 24),
		proposals:     gate.NewProposals(k, tr, 80, 24),
		handoff:       &nav.Handoff{},
		inbox:         appsync.NewInboxPoller(svc.IncomingEmails, d.Store, inboxEvery),
		notifier:      appsync.NewNotificationPoller(svc.Notifications, notifyEvery),
		expired:       expired,
	}
	m.compose = m.newCompose()
	if d.Session.SignedIn() {
		m.currentView = ViewComms
	}
	return m
}

// startedMsg runs the signed-in startup inside Update, where pollers can be
// started and their listeners recorded.
type startedMsg struct{}

// Init loads the first view and starts listening for session expiry.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForExpiry()}
	if m.currentView == ViewLogin {
		cmds = append(cmds, m.login.Init())
	} else {
		cmds = append(cmds, func() tea.Msg { return startedMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case startedMsg:
		cmd := m.startSession()
		return m, cmd

	case sessionExpiredMsg:
		cmd := m.endSession(m.tr.T("session_expired"))
		return m, tea.Batch(cmd, m.waitForExpiry())

	case cachedInboxMsg:
		if msg.session != m.session || m.inboxLoaded || len(msg.emails) == 0 {
			return m, nil
		}
		cmd := m.comms.SetInbox(msg.emails, nil, nil)
		return m, cmd

	case profileLoadedMsg:
		if msg.session == m.session && msg.user != nil {
			m.user = msg.user
		}
		return m, nil

	// === Login ===

	case login.LoggedInMsg:
		if err := m.deps.Session.SetToken(msg.Auth.Token); err != nil {
			log.Printf("storing token: %v", err)
			cmd := m.login.Reset(m.tr.T("error_store_token"))
			return m, cmd
		}
		m.user = &msg.Auth.User
		m.setBanner("", false)
		start := m.startSession()
		return m, tea.Batch(m.saveUser(msg.Auth.User), start)

	case login.QuitMsg:
		return m, m.quit()

	case loggedOutMsg:
		cmd := m.endSession(m.tr.T("logged_out"))
		return m, cmd

	// === Pollers ===

	case appsync.InboxLoadedMsg:
		if !m.inbox.Current(msg.Run) {
			return m, m.inbox.WaitForNextResult()
		}
		m.inboxLoaded = true
		setCmd := m.comms.SetInbox(msg.Emails, msg.Status, msg.Err)
		return m, tea.Batch(setCmd, m.inbox.WaitForNextResult())

	case appsync.InboxRefreshedMsg:
		if !m.inbox.Current(msg.Run) {
			return m, m.inbox.WaitForNextResult()
		}
		m.inboxLoaded = true
		setCmd := m.comms.SetInbox(msg.Emails, nil, nil)
		return m, tea.Batch(setCmd, m.inbox.WaitForNextResult())

	case appsync.UnreadCountMsg:
		if !m.notifier.Current(msg.Run) {
			return m, m.notifier.WaitForNextResult()
		}
		m.unreadCount = msg.Count
		return m, m.notifier.WaitForNextResult()

	// === Communications ===

	case comms.TabChangedMsg:
		cmd := m.syncInboxPoller()
		return m, cmd

	case comms.OpenEmailMsg:
		m.detail.SetEmail(msg.Email)
		cmd := m.navigate(ViewDetail)
		if msg.Email.Status == model.IncomingUnread {
			cmd = tea.Batch(cmd, m.setIncomingStatus(msg.Email.ID, model.IncomingRead))
		}
		return m, cmd

	case comms.OpenDraftMsg:
		m.handoff.Compose.Stage(draftPrefill(msg.Draft))
		cmd := m.openCompose()
		return m, cmd

	case comms.UseTemplateMsg:
		cmd := m.openCompose()
		m.compose.ApplyTemplate(msg.Template)
		return m, cmd

	case incomingStatusMsg:
		if msg.err != nil {
			m.setBanner(api.Message(msg.err, m.tr.T("error_mark_read")), true)
			return m, nil
		}
		m.comms.MarkRead(msg.id, msg.status)
		return m, nil

	// === Detail and replies ===

	case detail.BackMsg:
		cmd := m.navigate(ViewComms)
		return m, cmd

	case detail.MarkUnreadMsg:
		return m, m.setIncomingStatus(msg.ID, model.IncomingUnread)

	case detail.ReplyMsg:
		return m, m.generateReply(msg.Email)

	case replyGeneratedMsg:
		return m.handleReplyGenerated(msg)

	// === Compose ===

	case composeform.GenerateMsg:
		return m, m.generateCompose(msg.Request)

	case composeGeneratedMsg:
		return m.handleComposeGenerated(msg)

	case composeform.SubmittedMsg:
		m.handoff.Tab.Stage(msg.Outcome.Tab)
		if msg.Outcome.Tab == nav.TabDrafts {
			m.setBanner(m.tr.T("banner_draft_saved"), false)
		} else {
			m.setBanner(m.tr.T("banner_sent"), false)
		}
		cmd := m.navigate(ViewComms)
		return m, cmd

	case composeform.CancelMsg:
		cmd := m.navigate(ViewComms)
		return m, cmd

	// === Review gate ===

	case gate.ApprovedMsg:
		cmd := m.approve(msg.Content)
		return m, cmd

	case gate.RejectedMsg:
		m.review.Close()
		m.target = nil
		return m, nil

	// === Pipeline and proposals ===

	case pipeline.GenerateMsg:
		if msg.Opportunity != nil {
			id := msg.Opportunity.Company
			cmd := m.generateProposals(&id, nil)
			return m, cmd
		}
		return m, m.loadCompanyChoices()

	case companyChoicesMsg:
		if msg.err != nil {
			cmd := m.pipeline.SetGenerating(false, api.Message(msg.err, m.tr.T("error_load_companies")))
			return m, cmd
		}
		if m.currentView != ViewPipeline {
			return m, nil
		}
		p := picker.New(pickCompanyPurpose, m.tr.T("pick_company"), msg.options, m.keys,
			m.layout.ContentWidth(), m.layout.ContentHeight())
		m.picker = &p
		return m, p.Init()

	case picker.PickedMsg:
		m.picker = nil
		if msg.Purpose == pickCompanyPurpose {
			id := msg.Option.ID
			cmd := m.generateProposals(&id, nil)
			return m, cmd
		}
		return m, nil

	case picker.CancelledMsg:
		m.picker = nil
		return m, nil

	case proposalsGeneratedMsg:
		return m.handleProposalsGenerated(msg)

	case gate.CreateSelectedMsg:
		h := m.proposalsFor
		h.Proposals = msg.Proposals
		m.handoff.Proposals.Stage(h)
		m.proposals.Close()
		cmd := m.openOpportunityForm()
		return m, cmd

	case gate.DismissedMsg:
		m.proposals.Close()
		return m, nil

	case pipeline.NewOpportunityMsg:
		m.handoff.Proposals.Clear()
		cmd := m.openOpportunityForm()
		return m, cmd

	case pipeline.ComposeAboutMsg:
		m.handoff.Compose.Stage(opportunityPrefill(msg.Opportunity))
		cmd := m.openCompose()
		return m, cmd

	case oppform.CreatedMsg:
		m.setBanner(m.tr.TPlural("banner_opportunities_created", len(msg.Opportunities)), false)
		cmd := m.navigate(ViewPipeline)
		return m, cmd

	case oppform.CancelMsg:
		cmd := m.navigate(ViewPipeline)
		return m, cmd

	// === Notifications ===

	case notifications.ChangedMsg:
		m.unreadCount = msg.Unread
		return m, nil

	// === Settings, AI, command ===

	case configview.SettingsSavedMsg:
		m.setBanner(m.tr.T("banner_settings_saved"), false)
		if msg.Protocol == "imap" && m.inbox.Active() {
			// Readiness is only checked on activation.
			m.inbox.Deactivate()
			cmd := m.syncInboxPoller()
			return m, cmd
		}
		return m, nil

	case configview.ConfigDoneMsg:
		cmd := m.back()
		return m, cmd

	case aiview.AIPanelCloseMsg:
		cmd := m.back()
		return m, cmd

	case themeSavedMsg:
		if msg.err != nil {
			m.setBanner(m.tr.T("error_save_theme"), true)
		}
		return m, nil

	case command.CommandMsg:
		pollCmd := m.closeOverlay()
		cmd := m.executeCommand(string(msg))
		return m, tea.Batch(pollCmd, cmd)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.picker != nil {
			p, cmd := m.picker.Update(msg)
			m.picker = &p
			return m, cmd
		}
		if m.review.IsOpen() {
			var cmd tea.Cmd
			m.review, cmd = m.review.Update(msg)
			return m, cmd
		}
		if m.proposals.IsOpen() {
			var cmd tea.Cmd
			m.proposals, cmd = m.proposals.Update(msg)
			return m, cmd
		}
		if handled, cmd := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
		m.banner = ""
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
// The review modal also sees non-key messages while it is open.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd, modalCmd tea.Cmd

	if _, isKey := msg.(tea.KeyMsg); !isKey && m.review.IsOpen() {
		m.review, modalCmd = m.review.Update(msg)
	}

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewComms:
		m.comms, cmd = m.comms.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCompose:
		m.compose, cmd = m.compose.Update(msg)
	case ViewNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case ViewPipeline:
		m.pipeline, cmd = m.pipeline.Update(msg)
	case ViewOppForm:
		m.oppForm, cmd = m.oppForm.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewAI:
		m.aiView, cmd = m.aiView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, tea.Batch(cmd, modalCmd)
}

// resize propagates the content area size to every view and modal.
func (m *Model) resize() {
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()
	m.login.SetSize(w, h)
	m.comms.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.compose.SetSize(w, h)
	m.notifications.SetSize(w, h)
	m.pipeline.SetSize(w, h)
	m.oppForm.SetSize(w, h)
	m.settings.SetSize(w, h)
	m.aiView.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
	mw, mh := m.layout.ModalSize()
	m.review.SetSize(mw, mh)
	m.proposals.SetSize(mw, mh)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return m.tr.T("loading")
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	content := m.renderContent()
	switch {
	case m.picker != nil:
		content = m.layout.RenderOverlay(m.picker.View())
	case m.review.IsOpen():
		content = m.layout.RenderOverlay(m.review.View())
	case m.proposals.IsOpen():
		content = m.layout.RenderOverlay(m.proposals.View())
	}

	var statusBar string
	if m.banner != "" {
		statusBar = m.layout.RenderBanner(m.banner, m.bannerErr)
	} else {
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.login.View()
	case ViewComms:
		return m.comms.View()
	case ViewDetail:
		return m.detail.View()
	case ViewCompose:
		return m.compose.View()
	case ViewNotifications:
		return m.notifications.View()
	case ViewPipeline:
		return m.pipeline.View()
	case ViewOppForm:
		return m.oppForm.View()
	case ViewSettings:
		return m.settings.View()
	case ViewAI:
		return m.aiView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	title := m.tr.T("app_title")
	if m.user != nil {
		title = fmt.Sprintf("%s · %s", title, m.user.DisplayName())
	}
	if m.unreadCount > 0 {
		title = fmt.Sprintf("%s [%s]", title, m.tr.TPlural("unread_count", m.unreadCount))
	}
	return title
}

// headerStatus describes the inbox poll task.
func (m Model) headerStatus() string {
	if m.currentView == ViewLogin {
		return ""
	}
	return m.tr.TWithData("status_inbox", map[string]any{
		"State": m.inbox.State().String(),
	})
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch {
	case m.picker != nil:
		return m.tr.T("hints_picker")
	case m.review.IsOpen():
		return m.tr.T("hints_review")
	case m.proposals.IsOpen():
		return m.tr.T("hints_proposals")
	}

	switch m.currentView {
	case ViewLogin:
		return m.tr.T("hints_login")
	case ViewDetail:
		return m.tr.T("hints_detail")
	case ViewCompose:
		return m.tr.T("hints_compose")
	case ViewNotifications:
		return m.tr.T("hints_notifications")
	case ViewPipeline:
		return m.tr.T("hints_pipeline")
	case ViewOppForm:
		return m.tr.T("hints_oppform")
	case ViewSettings:
		return m.tr.T("hints_settings")
	case ViewAI:
		return m.tr.T("hints_ai")
	case ViewHelp:
		return m.tr.T("hints_help")
	case ViewCommand:
		return m.tr.T("hints_command")
	default:
		return m.tr.T("hints_comms")
	}
}

func (m *Model) setBanner(text string, isErr bool) {
	m.banner = text
	m.bannerErr = isErr
}
