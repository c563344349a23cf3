package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/ui/comms"
	"github.com/nhle/crmterm/internal/ui/composeform"
	"github.com/nhle/crmterm/internal/ui/notifications"
)

// navigate switches to v and runs what entering v needs: consuming the
// staged tab for the communications view and (re)loading data views.
func (m *Model) navigate(v ViewState) tea.Cmd {
	if v != m.currentView {
		m.previousView = m.currentView
	}
	m.currentView = v

	var cmds []tea.Cmd
	switch v {
	case ViewComms:
		if t, ok := m.handoff.Tab.Take(); ok {
			cmds = append(cmds, m.comms.SetTab(t))
		}
	case ViewNotifications:
		cmds = append(cmds, m.notifications.Init())
	case ViewPipeline:
		cmds = append(cmds, m.pipeline.Init())
	case ViewSettings:
		cmds = append(cmds, m.settings.Init())
	case ViewAI:
		cmds = append(cmds, m.aiView.Init())
	}
	cmds = append(cmds, m.syncInboxPoller())
	return tea.Batch(cmds...)
}

// openOverlay shows the help or command view over the current one. The
// inbox poll stops while an overlay hides the inbox.
func (m *Model) openOverlay(v ViewState) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = v
	return m.syncInboxPoller()
}

// closeOverlay returns from the help or command view to the view under it.
func (m *Model) closeOverlay() tea.Cmd {
	m.currentView = m.previousView
	return m.syncInboxPoller()
}

// back returns to the previous browsing view.
func (m *Model) back() tea.Cmd {
	switch prev := m.previousView; prev {
	case ViewLogin, ViewHelp, ViewCommand, m.currentView:
		return m.navigate(ViewComms)
	default:
		return m.navigate(prev)
	}
}

// openCompose replaces the compose view with an empty one, applies any
// staged prefill and shows it.
func (m *Model) openCompose() tea.Cmd {
	m.composeSeq++
	m.compose = m.newCompose()
	cmds := []tea.Cmd{m.compose.Init()}
	if p, ok := m.handoff.Compose.Take(); ok {
		cmds = append(cmds, m.compose.ApplyPrefill(p))
	}
	cmds = append(cmds, m.navigate(ViewCompose))
	return tea.Batch(cmds...)
}

// openOpportunityForm shows the opportunity form, seeded from staged
// proposals when there are any.
func (m *Model) openOpportunityForm() tea.Cmd {
	var h *nav.ProposalHandoff
	if staged, ok := m.handoff.Proposals.Take(); ok {
		h = &staged
	}
	start := m.oppForm.Start(h)
	return tea.Batch(start, m.navigate(ViewOppForm))
}

// syncInboxPoller runs the inbox poll task exactly while the inbox tab is
// on screen for a signed-in user.
func (m *Model) syncInboxPoller() tea.Cmd {
	want := m.signedIn && m.currentView == ViewComms && m.comms.Tab() == nav.TabInbox
	switch {
	case want && !m.inbox.Active():
		cmd := m.inbox.Activate(m.ctx)
		if cmd == nil || m.inboxListening {
			return nil
		}
		m.inboxListening = true
		return cmd
	case !want && m.inbox.Active():
		m.inbox.Deactivate()
	}
	return nil
}

func (m Model) newCompose() composeform.Model {
	w, h := m.contentSize()
	return composeform.New(composeform.Deps{
		Companies: m.svc.Companies,
		Templates: m.svc.Templates,
		Mailer:    m.svc.Messages,
	}, m.keys, m.tr, w, h)
}

func (m Model) freshComms(w, h int) comms.Model {
	return comms.New(m.svc.Messages, m.svc.Templates, m.keys, m.tr, w, h)
}

func (m Model) freshNotifications(w, h int) notifications.Model {
	return notifications.New(m.svc.Notifications, m.keys, m.tr, w, h)
}

// contentSize is the content area, or a default before the first
// WindowSizeMsg.
func (m Model) contentSize() (int, int) {
	if !m.ready {
		return 80, 24
	}
	return m.layout.ContentWidth(), m.layout.ContentHeight()
}
