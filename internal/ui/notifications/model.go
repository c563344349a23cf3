// Package notifications lists the signed-in user's notifications and
// marks them read.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/theme"
)

// Source is the part of the notifications service the view needs.
type Source interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

// ChangedMsg is dispatched after a mark-read so the header count can be
// refreshed.
type ChangedMsg struct {
	Unread int
}

type loadedMsg struct {
	items []model.Notification
	err   error
}

type markedMsg struct {
	id  int64 // zero for mark-all
	err error
}

// Model is the notifications view.
type Model struct {
	src    Source
	keys   *keys.KeyMap
	tr     *i18n.Translator
	items  []model.Notification
	cursor int
	loaded bool
	errMsg string
	now    func() time.Time
	width  int
	height int
}

// New creates the notifications view.
func New(src Source, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	return Model{src: src, keys: k, tr: tr, now: time.Now, width: width, height: height}
}

// Init loads the notifications.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Items returns the listed notifications.
func (m Model) Items() []model.Notification {
	return m.items
}

// Unread counts the unread notifications listed.
func (m Model) Unread() int {
	n := 0
	for _, it := range m.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_notifications"))
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.items
		m.cursor = min(m.cursor, max(len(m.items)-1, 0))
		return m, nil

	case markedMsg:
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_mark_read"))
			return m, nil
		}
		now := m.now()
		for i := range m.items {
			if msg.id == 0 || m.items[i].ID == msg.id {
				m.items[i].IsRead = true
				m.items[i].ReadAt = &now
			}
		}
		unread := m.Unread()
		return m, func() tea.Msg { return ChangedMsg{Unread: unread} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.MarkRead), key.Matches(msg, m.keys.Select):
			if len(m.items) == 0 || m.items[m.cursor].IsRead {
				return m, nil
			}
			return m, m.mark(m.items[m.cursor].ID)
		case key.Matches(msg, m.keys.MarkAllRead):
			if m.Unread() == 0 {
				return m, nil
			}
			return m, m.mark(0)
		}
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		items, err := src.List(context.Background())
		return loadedMsg{items: items, err: err}
	}
}

func (m Model) mark(id int64) tea.Cmd {
	src := m.src
	return func() tea.Msg {
		var err error
		if id == 0 {
			err = src.MarkAllRead(context.Background())
		} else {
			err = src.MarkRead(context.Background(), id)
		}
		return markedMsg{id: id, err: err}
	}
}

// View renders the notifications list.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%s  %s", m.tr.T("notifications_title"), theme.HelpStyle.Render(m.tr.TPlural("unread_count", m.Unread()))),
	)
	lines := []string{title, ""}
	if m.errMsg != "" {
		lines = append(lines, theme.ErrorStyle.Render(m.errMsg))
	}

	if len(m.items) == 0 {
		text := m.tr.T("notifications_empty")
		if !m.loaded {
			text = m.tr.T("loading")
		}
		lines = append(lines, lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-4, 1)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, n := range m.items {
		dot := " "
		if !n.IsRead {
			dot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
		}
		line := fmt.Sprintf("%s %s %s %s  %s",
			dot,
			theme.NotificationTypeStyle(n.Type).Render(string(n.Type)),
			theme.PriorityStyle(n.Priority).Render(string(n.Priority)),
			n.Title,
			theme.HelpStyle.Render(render.RelativeTime(n.CreatedAt, m.now())),
		)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
			if n.Message != "" {
				lines = append(lines, lipgloss.NewStyle().PaddingLeft(4).Width(max(m.width-4, 20)).Foreground(theme.ColorGray).Render(n.Message))
			}
			continue
		}
		lines = append(lines, theme.ListItemStyle.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
