// Package help renders the keyboard reference. Bindings are grouped into
// titled sections and the section that matches the screen the user came
// from is listed first.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/theme"
)

// Topic picks the section shown first.
type Topic int

const (
	TopicGeneral Topic = iota
	TopicMail
	TopicCompose
	TopicReview
)

type section struct {
	topic    Topic
	titleID  string
	bindings []key.Binding
}

// Model is the help view.
type Model struct {
	keys     *keys.KeyMap
	tr       *i18n.Translator
	help     help.Model
	viewport viewport.Model
	topic    Topic
	width    int
	height   int
}

// New creates a help view of the given size.
func New(k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	m := Model{
		keys:     k,
		tr:       tr,
		help:     help.New(),
		viewport: viewport.New(width, height),
	}
	m.help.ShowAll = true
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Focus lists topic first and scrolls back to the top.
func (m *Model) Focus(topic Topic) {
	m.topic = topic
	m.refresh()
	m.viewport.GotoTop()
}

// Topic returns the section currently listed first.
func (m Model) Topic() Topic {
	return m.topic
}

// Update scrolls the reference.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the reference in a framed panel.
func (m Model) View() string {
	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(m.viewport.View())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-4, 1)
	m.help.Width = m.viewport.Width
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.tr.T("help_title")))
	b.WriteString("\n")
	for _, s := range m.ordered() {
		b.WriteString(headingStyle.Render(m.tr.T(s.titleID)))
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView([][]key.Binding{s.bindings}))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ordered returns the sections with the focused topic first and the rest
// in their usual order.
func (m Model) ordered() []section {
	all := m.sections()
	out := make([]section, 0, len(all))
	for _, s := range all {
		if s.topic == m.topic {
			out = append(out, s)
		}
	}
	for _, s := range all {
		if s.topic != m.topic {
			out = append(out, s)
		}
	}
	return out
}

func (m Model) sections() []section {
	k := m.keys
	return []section{
		{TopicGeneral, "help_section_general", []key.Binding{
			k.Up, k.Down, k.NextTab, k.PrevTab, k.Select, k.Back,
			k.Command, k.Help, k.Refresh, k.Quit,
			k.Inbox, k.Compose, k.Notifications, k.Opportunities,
		}},
		{TopicMail, "help_section_mail", []key.Binding{
			k.Reply, k.MarkRead, k.MarkAllRead,
		}},
		{TopicCompose, "help_section_compose", []key.Binding{
			k.Send, k.SaveDraft, k.AddRow, k.RemoveRow, k.Generate,
		}},
		{TopicReview, "help_section_review", []key.Binding{
			k.Approve, k.Reject, k.Edit, k.Copy, k.Toggle,
		}},
	}
}
