// Package comms is the communications view: inbox, sent, drafts and
// templates tabs over one list each.
package comms

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/theme"
)

// MessageLister lists outgoing messages by status.
type MessageLister interface {
	List(ctx context.Context, status model.EmailStatus) ([]model.EmailMessage, error)
}

// TemplateLister lists email templates.
type TemplateLister interface {
	List(ctx context.Context) ([]model.EmailTemplate, error)
}

// TabChangedMsg is emitted when the visible tab changes. The parent uses
// it to start and stop inbox polling.
type TabChangedMsg struct {
	Tab nav.CommTab
}

// OpenEmailMsg asks the parent to show an incoming email.
type OpenEmailMsg struct {
	Email model.IncomingEmail
}

// OpenDraftMsg asks the parent to continue a draft in compose.
type OpenDraftMsg struct {
	Draft model.EmailMessage
}

// UseTemplateMsg asks the parent to start a compose from a template.
type UseTemplateMsg struct {
	Template model.EmailTemplate
}

// messagesLoadedMsg carries one tab's outgoing messages.
type messagesLoadedMsg struct {
	status   model.EmailStatus
	messages []model.EmailMessage
	err      error
}

// templatesLoadedMsg carries the template list.
type templatesLoadedMsg struct {
	templates []model.EmailTemplate
	err       error
}

var tabOrder = []nav.CommTab{nav.TabInbox, nav.TabSent, nav.TabDrafts, nav.TabTemplates}

// Model is the communications view.
type Model struct {
	tab       nav.CommTab
	lists     map[nav.CommTab]*list.Model
	messages  MessageLister
	templates TemplateLister
	keys      *keys.KeyMap
	tr        *i18n.Translator

	imap       *model.IMAPStatus
	imapFailed bool
	inboxErr   string
	errs     map[nav.CommTab]string
	loaded   map[nav.CommTab]bool

	width  int
	height int
}

// New creates the communications view on the inbox tab.
func New(messages MessageLister, templates TemplateLister, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	m := Model{
		tab:       nav.TabInbox,
		lists:     make(map[nav.CommTab]*list.Model, len(tabOrder)),
		messages:  messages,
		templates: templates,
		keys:      k,
		tr:        tr,
		errs:      make(map[nav.CommTab]string),
		loaded:    make(map[nav.CommTab]bool),
		width:     width,
		height:    height,
	}
	for _, t := range tabOrder {
		l := list.New([]list.Item{}, ItemDelegate{}, width, m.listHeight())
		l.SetShowTitle(false)
		l.SetShowStatusBar(true)
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		m.lists[t] = &l
	}
	return m
}

// Init loads the outgoing tabs. The inbox is fed by the poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMessages(model.EmailSent), m.loadMessages(model.EmailDraft), m.loadTemplates())
}

// Tab returns the visible tab.
func (m Model) Tab() nav.CommTab {
	return m.tab
}

// SetTab switches tabs and emits TabChangedMsg when the tab changed. A
// tab shown for the first time, or again after a submit, reloads.
func (m *Model) SetTab(t nav.CommTab) tea.Cmd {
	if t == m.tab {
		return m.reload(t)
	}
	m.tab = t
	return tea.Batch(
		m.reload(t),
		func() tea.Msg { return TabChangedMsg{Tab: t} },
	)
}

// Update handles messages for the communications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messagesLoadedMsg:
		tab := nav.TabSent
		if msg.status == model.EmailDraft {
			tab = nav.TabDrafts
		}
		m.loaded[tab] = true
		if msg.err != nil {
			m.errs[tab] = api.Message(msg.err, m.tr.T("error_load_messages"))
			return m, nil
		}
		delete(m.errs, tab)
		items := make([]list.Item, len(msg.messages))
		for i, em := range msg.messages {
			items[i] = MessageItem{Message: em}
		}
		return m, m.lists[tab].SetItems(items)

	case templatesLoadedMsg:
		m.loaded[nav.TabTemplates] = true
		if msg.err != nil {
			m.errs[nav.TabTemplates] = api.Message(msg.err, m.tr.T("error_load_templates"))
			return m, nil
		}
		delete(m.errs, nav.TabTemplates)
		items := make([]list.Item, len(msg.templates))
		for i, t := range msg.templates {
			items[i] = TemplateItem{Template: t}
		}
		return m, m.lists[nav.TabTemplates].SetItems(items)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	*m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.SetTab(tabOrder[(int(m.tab)+1)%len(tabOrder)])
		return m, cmd

	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.SetTab(tabOrder[(int(m.tab)+len(tabOrder)-1)%len(tabOrder)])
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload(m.tab)

	case key.Matches(msg, m.keys.Select):
		switch it := m.lists[m.tab].SelectedItem().(type) {
		case IncomingItem:
			return m, func() tea.Msg { return OpenEmailMsg{Email: it.Email} }
		case MessageItem:
			if it.Message.Status == model.EmailDraft {
				return m, func() tea.Msg { return OpenDraftMsg{Draft: it.Message} }
			}
		case TemplateItem:
			return m, func() tea.Msg { return UseTemplateMsg{Template: it.Template} }
		}
		return m, nil
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	*m.lists[m.tab], cmd = m.lists[m.tab].Update(msg)
	return m, cmd
}

// SetInbox replaces the incoming list. A nil status with a nil err keeps
// the last known readiness; a nil status with an err means the readiness
// check failed, which is shown as not configured.
func (m *Model) SetInbox(emails []model.IncomingEmail, status *model.IMAPStatus, err error) tea.Cmd {
	switch {
	case status != nil:
		m.imap = status
		m.imapFailed = false
	case err != nil:
		m.imap = nil
		m.imapFailed = true
	}
	m.inboxErr = ""
	if err != nil {
		m.inboxErr = api.Message(err, m.tr.T("error_load_inbox"))
	}
	m.loaded[nav.TabInbox] = true
	if emails == nil && err != nil {
		return nil
	}
	items := make([]list.Item, len(emails))
	for i, e := range emails {
		items[i] = IncomingItem{Email: e}
	}
	return m.lists[nav.TabInbox].SetItems(items)
}

// MarkRead flips one inbox row to read without a reload.
func (m *Model) MarkRead(id int64, status model.IncomingStatus) {
	l := m.lists[nav.TabInbox]
	for i, it := range l.Items() {
		if in, ok := it.(IncomingItem); ok && in.Email.ID == id {
			in.Email.Status = status
			l.SetItem(i, in)
			return
		}
	}
}

// Inbox returns the incoming emails currently listed.
func (m Model) Inbox() []model.IncomingEmail {
	items := m.lists[nav.TabInbox].Items()
	out := make([]model.IncomingEmail, 0, len(items))
	for _, it := range items {
		if in, ok := it.(IncomingItem); ok {
			out = append(out, in.Email)
		}
	}
	return out
}

// Templates returns the loaded templates.
func (m Model) Templates() []model.EmailTemplate {
	items := m.lists[nav.TabTemplates].Items()
	out := make([]model.EmailTemplate, 0, len(items))
	for _, it := range items {
		if t, ok := it.(TemplateItem); ok {
			out = append(out, t.Template)
		}
	}
	return out
}

// NotConfigured reports whether the last readiness check said the IMAP
// settings are incomplete, or could not be made at all.
func (m Model) NotConfigured() bool {
	if m.imapFailed {
		return true
	}
	return m.imap != nil && !m.imap.ReadyToFetch
}

func (m Model) reload(t nav.CommTab) tea.Cmd {
	switch t {
	case nav.TabSent:
		return m.loadMessages(model.EmailSent)
	case nav.TabDrafts:
		return m.loadMessages(model.EmailDraft)
	case nav.TabTemplates:
		return m.loadTemplates()
	case nav.TabInbox:
		// Fed by the inbox poller.
		return nil
	}
	return nil
}

func (m Model) loadMessages(status model.EmailStatus) tea.Cmd {
	lister := m.messages
	return func() tea.Msg {
		msgs, err := lister.List(context.Background(), status)
		return messagesLoadedMsg{status: status, messages: msgs, err: err}
	}
}

func (m Model) loadTemplates() tea.Cmd {
	lister := m.templates
	return func() tea.Msg {
		ts, err := lister.List(context.Background())
		return templatesLoadedMsg{templates: ts, err: err}
	}
}

// View renders the tab bar and the active tab.
func (m Model) View() string {
	sections := []string{m.renderTabs()}

	if m.tab == nav.TabInbox && m.NotConfigured() && len(m.lists[nav.TabInbox].Items()) > 0 {
		sections = append(sections, m.renderNotice())
	}
	if e := m.tabError(); e != "" {
		sections = append(sections, theme.ErrorStyle.Render(e))
	}

	l := m.lists[m.tab]
	if len(l.Items()) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, l.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) tabError() string {
	if m.tab == nav.TabInbox {
		return m.inboxErr
	}
	return m.errs[m.tab]
}

func (m Model) renderTabs() string {
	labels := map[nav.CommTab]string{
		nav.TabInbox:     m.tr.T("tab_inbox"),
		nav.TabSent:      m.tr.T("tab_sent"),
		nav.TabDrafts:    m.tr.T("tab_drafts"),
		nav.TabTemplates: m.tr.T("tab_templates"),
	}
	tabs := make([]string, 0, len(tabOrder))
	for _, t := range tabOrder {
		label := labels[t]
		if t == nav.TabInbox {
			if n := m.unread(); n > 0 {
				label += " (" + m.tr.TPlural("unread_count", n) + ")"
			}
		}
		if t == m.tab {
			tabs = append(tabs, theme.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, theme.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) unread() int {
	n := 0
	for _, e := range m.Inbox() {
		if e.Status == model.IncomingUnread {
			n++
		}
	}
	return n
}

func (m Model) renderNotice() string {
	text := m.tr.T("imap_not_configured")
	if m.imap != nil && len(m.imap.MissingFields) > 0 {
		text += "\n" + m.tr.TWithData("imap_missing_fields", map[string]any{
			"Fields": strings.Join(m.imap.MissingFields, ", "),
		})
	}
	return theme.NoticeStyle.Width(max(m.width-4, 20)).Render(text)
}

// renderEmptyState shows guidance text when a tab has nothing to list.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.listHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if !m.loaded[m.tab] {
		return style.Render(m.tr.T("loading"))
	}

	switch m.tab {
	case nav.TabInbox:
		if m.NotConfigured() {
			return lipgloss.Place(m.width, m.listHeight(), lipgloss.Center, lipgloss.Center, m.renderNotice())
		}
		return style.Render(m.tr.T("empty_inbox"))
	case nav.TabSent:
		return style.Render(m.tr.T("empty_sent"))
	case nav.TabDrafts:
		return style.Render(m.tr.T("empty_drafts"))
	case nav.TabTemplates:
		return style.Render(m.tr.T("empty_templates"))
	}
	return ""
}

func (m Model) listHeight() int {
	return max(m.height-3, 3)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	for _, l := range m.lists {
		l.SetSize(width, m.listHeight())
	}
}
