// Package picker is a small fuzzy chooser drawn over a view: a filter
// input above a list of labels.
package picker

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/theme"
)

// Option is one choice. ID is echoed back in PickedMsg.
type Option struct {
	ID    int64
	Label string
}

// PickedMsg is emitted when an option is chosen.
type PickedMsg struct {
	Purpose string
	Option  Option
}

// CancelledMsg is emitted when the picker is dismissed.
type CancelledMsg struct {
	Purpose string
}

type labels []Option

func (l labels) Len() int            { return len(l) }
func (l labels) String(i int) string { return l[i].Label }

// Model is the picker. Purpose tags the emitted messages so one parent
// can run several pickers.
type Model struct {
	purpose string
	title   string
	options labels
	visible []Option
	cursor  int
	filter  textinput.Model
	keys    *keys.KeyMap
	width   int
	height  int
}

// New creates a focused picker over options.
func New(purpose, title string, options []Option, k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.Width = width - 8

	m := Model{
		purpose: purpose,
		title:   title,
		options: options,
		filter:  ti,
		keys:    k,
		width:   width,
		height:  height,
	}
	m.refilter()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the picker.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			purpose := m.purpose
			return m, func() tea.Msg { return CancelledMsg{Purpose: purpose} }
		case key.Matches(msg, m.keys.Select):
			if len(m.visible) == 0 {
				return m, nil
			}
			picked := PickedMsg{Purpose: m.purpose, Option: m.visible[m.cursor]}
			return m, func() tea.Msg { return picked }
		case msg.String() == "down" || msg.String() == "ctrl+j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case msg.String() == "up" || msg.String() == "ctrl+k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// Visible returns the options matching the current filter.
func (m Model) Visible() []Option {
	return m.visible
}

func (m *Model) refilter() {
	m.cursor = 0
	q := strings.TrimSpace(m.filter.Value())
	if q == "" {
		m.visible = append([]Option(nil), m.options...)
		return
	}
	matches := fuzzy.FindFrom(q, m.options)
	m.visible = make([]Option, len(matches))
	for i, match := range matches {
		m.visible[i] = m.options[match.Index]
	}
}

// View renders the picker.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1).Render(m.title)
	lines := []string{title, m.filter.View(), ""}

	limit := m.height - 8
	if limit < 3 {
		limit = 3
	}
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	for i := start; i < len(m.visible) && i < start+limit; i++ {
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(m.visible[i].Label))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(m.visible[i].Label))
		}
	}
	if len(m.visible) == 0 {
		lines = append(lines, theme.HelpStyle.Render("-"))
	}

	return theme.ModalStyle.
		Width(m.width - 8).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
