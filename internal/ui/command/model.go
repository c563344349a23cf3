package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// maxSuggestions caps the suggestion list under the input.
const maxSuggestions = 6

// Model is the command palette view. Typing narrows the known commands
// by fuzzy match; enter runs the best match, or the raw input when
// nothing matches.
type Model struct {
	input    textinput.Model
	commands []string
	tr       *i18n.Translator
	width    int
	height   int
}

// New creates a new command palette model offering commands.
func New(commands []string, tr *i18n.Translator, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = tr.T("command_placeholder")
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:    ti,
		commands: commands,
		tr:       tr,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			if s := m.Suggestions(); len(s) > 0 {
				cmd = s[0]
			}
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Suggestions returns the commands matching the current input, best match
// first. An empty input suggests nothing.
func (m Model) Suggestions() []string {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return nil
	}
	matches := fuzzy.Find(q, m.commands)
	out := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, match.Str)
	}
	return out
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(m.tr.T("command_title"))
	lines := []string{title, m.input.View()}
	for i, s := range m.Suggestions() {
		if i == 0 {
			lines = append(lines, theme.SelectedItemStyle.Render(s))
			continue
		}
		lines = append(lines, theme.ListItemStyle.Render(s))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
