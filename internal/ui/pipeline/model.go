// Package pipeline shows opportunities as kanban columns by status and is
// the entry point for generating opportunity proposals.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/theme"
)

// Board loads the pipeline.
type Board interface {
	Kanban(ctx context.Context) ([]model.KanbanColumn, error)
}

// GenerateMsg asks the app to generate proposals. Opportunity is nil when
// nothing was selected; the app then asks for a company.
type GenerateMsg struct {
	Opportunity *model.Opportunity
}

// NewOpportunityMsg asks the app to open an empty opportunity form.
type NewOpportunityMsg struct{}

// ComposeAboutMsg asks the app to compose an email about an opportunity.
type ComposeAboutMsg struct {
	Opportunity model.Opportunity
}

type loadedMsg struct {
	columns []model.KanbanColumn
	err     error
}

// Model is the pipeline board.
type Model struct {
	board      Board
	keys       *keys.KeyMap
	tr         *i18n.Translator
	columns    []model.KanbanColumn
	col        int
	rows       []int // cursor per column
	loaded     bool
	generating bool
	spinner    spinner.Model
	errMsg     string
	width      int
	height     int
}

// New creates the pipeline board.
func New(b Board, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{board: b, keys: k, tr: tr, spinner: sp, width: width, height: height}
}

// Init loads the board.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Reload refreshes the board, keeping the cursor where possible.
func (m Model) Reload() tea.Cmd {
	return m.load()
}

// SetGenerating marks a proposal generation as running or finished. A
// non-empty errMsg is shown next to the trigger.
func (m *Model) SetGenerating(on bool, errMsg string) tea.Cmd {
	m.generating = on
	m.errMsg = errMsg
	if on {
		return m.spinner.Tick
	}
	return nil
}

// Generating reports whether a generation is in flight.
func (m Model) Generating() bool {
	return m.generating
}

// Selected returns the opportunity under the cursor.
func (m Model) Selected() (model.Opportunity, bool) {
	if m.col >= len(m.columns) {
		return model.Opportunity{}, false
	}
	opps := m.columns[m.col].Opportunities
	row := m.rows[m.col]
	if row >= len(opps) {
		return model.Opportunity{}, false
	}
	return opps[row], true
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_pipeline"))
			return m, nil
		}
		m.errMsg = ""
		m.columns = msg.columns
		rows := make([]int, len(m.columns))
		for i := range rows {
			if i < len(m.rows) {
				rows[i] = min(m.rows[i], max(len(m.columns[i].Opportunities)-1, 0))
			}
		}
		m.rows = rows
		m.col = min(m.col, max(len(m.columns)-1, 0))
		return m, nil

	case spinner.TickMsg:
		if m.generating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab), msg.String() == "l", msg.String() == "right":
		if len(m.columns) > 0 {
			m.col = (m.col + 1) % len(m.columns)
		}
	case key.Matches(msg, m.keys.PrevTab), msg.String() == "h", msg.String() == "left":
		if len(m.columns) > 0 {
			m.col = (m.col - 1 + len(m.columns)) % len(m.columns)
		}
	case key.Matches(msg, m.keys.Down):
		if m.col < len(m.columns) && m.rows[m.col] < len(m.columns[m.col].Opportunities)-1 {
			m.rows[m.col]++
		}
	case key.Matches(msg, m.keys.Up):
		if m.col < len(m.columns) && m.rows[m.col] > 0 {
			m.rows[m.col]--
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Generate):
		if m.generating {
			return m, nil
		}
		var sel *model.Opportunity
		if o, ok := m.Selected(); ok {
			sel = &o
		}
		return m, func() tea.Msg { return GenerateMsg{Opportunity: sel} }
	case msg.String() == "a":
		return m, func() tea.Msg { return NewOpportunityMsg{} }
	case key.Matches(msg, m.keys.Select):
		if o, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ComposeAboutMsg{Opportunity: o} }
		}
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		cols, err := b.Kanban(context.Background())
		return loadedMsg{columns: cols, err: err}
	}
}

// View renders the columns side by side.
func (m Model) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.tr.T("pipeline_title"))
	if m.generating {
		header += "  " + m.spinner.View() + " " + theme.HelpStyle.Render(m.tr.T("pipeline_generating"))
	}
	lines := []string{header}
	if m.errMsg != "" {
		lines = append(lines, theme.ErrorStyle.Render(m.errMsg))
	}
	lines = append(lines, "")

	if len(m.columns) == 0 {
		text := m.tr.T("pipeline_empty")
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

	colWidth := max(m.width/max(len(m.columns), 1)-2, 18)
	rendered := make([]string, len(m.columns))
	for i, c := range m.columns {
		rendered[i] = m.renderColumn(i, c, colWidth)
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	lines = append(lines, "", theme.HelpStyle.Render(m.tr.T("pipeline_hints")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderColumn(idx int, c model.KanbanColumn, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	if c.StatusColor != "" {
		titleStyle = titleStyle.Foreground(lipgloss.Color(c.StatusColor))
	}
	if idx == m.col {
		titleStyle = titleStyle.Underline(true)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", c.StatusName, c.Count)))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(render.Money(c.TotalValue)))
	b.WriteString("\n\n")

	for j, o := range c.Opportunities {
		card := fmt.Sprintf("%s\n%s %s",
			lipgloss.NewStyle().MaxWidth(width-2).Render(o.Title),
			theme.DealPriorityStyle(o.Priority).Render(string(o.Priority)),
			render.Money(o.Value),
		)
		if o.CompanyName != "" {
			card += "\n" + theme.HelpStyle.Render(lipgloss.NewStyle().MaxWidth(width-2).Render(o.CompanyName))
		}
		if idx == m.col && j == m.rows[idx] {
			b.WriteString(theme.SelectedItemStyle.Render(card))
		} else {
			b.WriteString(theme.ListItemStyle.Render(card))
		}
		b.WriteString("\n")
	}

	border := theme.BorderStyle
	if idx == m.col {
		border = border.BorderForeground(theme.ColorBlue)
	}
	return border.Width(width).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
