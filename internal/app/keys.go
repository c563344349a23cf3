package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/crmterm/internal/nav"
	helpview "github.com/nhle/crmterm/internal/ui/help"
)

// commandNames are offered by the command palette.
var commandNames = []string{
	"inbox",
	"sent",
	"drafts",
	"templates",
	"compose",
	"notifications",
	"pipeline",
	"settings",
	"ai",
	"refresh",
	"theme dark",
	"theme light",
	"logout",
	"quit",
}

// browsing reports whether the active view leaves single letter keys to
// the app. Forms and text inputs keep them.
func (m Model) browsing() bool {
	switch m.currentView {
	case ViewComms, ViewDetail, ViewNotifications, ViewPipeline, ViewAI, ViewHelp:
		return true
	}
	return false
}

// handleGlobalKey handles keys that work across views.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.currentView == ViewCommand && msg.String() == ":" {
		return true, m.closeOverlay()
	}
	if !m.browsing() {
		return false, nil
	}

	switch {
	case msg.String() == "q":
		if m.currentView == ViewComms {
			return true, m.quit()
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			return true, m.closeOverlay()
		}
		m.helpView.Focus(helpTopic(m.currentView))
		return true, m.openOverlay(ViewHelp)

	case key.Matches(msg, m.keys.Command):
		pollCmd := m.openOverlay(ViewCommand)
		return true, tea.Batch(m.commandView.Focus(), pollCmd)

	case key.Matches(msg, m.keys.Inbox):
		if m.currentView != ViewComms {
			m.handoff.Tab.Stage(nav.TabInbox)
			return true, m.navigate(ViewComms)
		}

	case key.Matches(msg, m.keys.Compose):
		if m.currentView != ViewDetail || !m.detail.Replying() {
			return true, m.openCompose()
		}

	case key.Matches(msg, m.keys.Notifications):
		if m.currentView != ViewNotifications {
			return true, m.navigate(ViewNotifications)
		}

	case key.Matches(msg, m.keys.Opportunities):
		if m.currentView != ViewPipeline {
			return true, m.navigate(ViewPipeline)
		}
	}
	return false, nil
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	cmd = strings.TrimSpace(cmd)
	switch cmd {
	case "inbox":
		return m.showTab(nav.TabInbox)
	case "sent":
		return m.showTab(nav.TabSent)
	case "drafts":
		return m.showTab(nav.TabDrafts)
	case "templates":
		return m.showTab(nav.TabTemplates)
	case "compose", "new":
		return m.openCompose()
	case "notifications":
		return m.navigate(ViewNotifications)
	case "pipeline", "opportunities":
		return m.navigate(ViewPipeline)
	case "settings", "config":
		return m.navigate(ViewSettings)
	case "ai":
		return m.navigate(ViewAI)
	case "refresh", "sync":
		return m.refresh()
	case "logout":
		return m.logout()
	case "quit", "q":
		return m.quit()
	}
	if name, ok := strings.CutPrefix(cmd, "theme "); ok {
		return m.switchTheme(name)
	}
	return nil
}

func (m *Model) showTab(t nav.CommTab) tea.Cmd {
	m.handoff.Tab.Stage(t)
	return m.navigate(ViewComms)
}

// refresh reloads the data of the active view. The inbox is refreshed by
// restarting its poll task, which re-checks readiness and fetches.
func (m *Model) refresh() tea.Cmd {
	switch m.currentView {
	case ViewComms:
		if m.comms.Tab() == nav.TabInbox {
			m.inbox.Deactivate()
			return m.syncInboxPoller()
		}
		return m.comms.SetTab(m.comms.Tab())
	case ViewNotifications:
		return m.notifications.Init()
	case ViewPipeline:
		return m.pipeline.Reload()
	case ViewAI:
		return m.aiView.Init()
	}
	return nil
}

// helpTopic picks the help section that matches view.
func helpTopic(v ViewState) helpview.Topic {
	switch v {
	case ViewComms, ViewDetail, ViewNotifications:
		return helpview.TopicMail
	case ViewCompose:
		return helpview.TopicCompose
	case ViewPipeline, ViewAI:
		return helpview.TopicReview
	default:
		return helpview.TopicGeneral
	}
}
