package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/store"
	"github.com/nhle/crmterm/internal/theme"
)

// historyLimit caps the local generation log shown.
const historyLimit = 50

// Assistant is the part of the AI service the panel reports on.
type Assistant interface {
	CheckStatus(ctx context.Context) model.AIStatus
	ListRequests(ctx context.Context) ([]model.AIRequestRecord, error)
}

// GenerationLog is the local record of generations made on this machine.
type GenerationLog interface {
	GetGenerations(ctx context.Context, filter store.GenerationFilter) ([]model.AIGeneration, error)
}

// AIPanelCloseMsg signals the parent to close the AI panel.
type AIPanelCloseMsg struct{}

type statusMsg struct {
	status model.AIStatus
}

type requestsMsg struct {
	requests []model.AIRequestRecord
	err      error
}

type localMsg struct {
	generations []model.AIGeneration
	err         error
}

// Model shows the generation provider's status together with the
// backend's request history and the local generation log.
type Model struct {
	assistant Assistant
	log       GenerationLog
	viewport  viewport.Model
	keys      *keys.KeyMap
	tr        *i18n.Translator

	status      *model.AIStatus
	requests    []model.AIRequestRecord
	generations []model.AIGeneration
	showLocal   bool
	errMsg      string
	now         func() time.Time

	width  int
	height int
}

// New creates a new AI panel model. log may be nil.
func New(assistant Assistant, log GenerationLog, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	vpHeight := height - 6
	if vpHeight < 4 {
		vpHeight = 4
	}

	vp := viewport.New(width-4, vpHeight)
	vp.Style = lipgloss.NewStyle()

	return Model{
		assistant: assistant,
		log:       log,
		viewport:  vp,
		keys:      k,
		tr:        tr,
		now:       time.Now,
		width:     width,
		height:    height,
	}
}

// Init checks the provider status and loads both histories.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkStatus(), m.loadRequests(), m.loadLocal())
}

// Update handles messages for the AI panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = &msg.status
		return m, nil

	case requestsMsg:
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_ai_requests"))
		} else {
			m.requests = msg.requests
		}
		m.refreshViewport()
		return m, nil

	case localMsg:
		if msg.err != nil {
			m.errMsg = m.tr.T("error_load_ai_log")
		} else {
			m.generations = msg.generations
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return AIPanelCloseMsg{} }
		case key.Matches(msg, m.keys.Refresh):
			m.errMsg = ""
			return m, m.Init()
		case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
			m.showLocal = !m.showLocal
			m.refreshViewport()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) checkStatus() tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		return statusMsg{status: a.CheckStatus(context.Background())}
	}
}

func (m Model) loadRequests() tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		reqs, err := a.ListRequests(context.Background())
		return requestsMsg{requests: reqs, err: err}
	}
}

func (m Model) loadLocal() tea.Cmd {
	if m.log == nil {
		return nil
	}
	l := m.log
	return func() tea.Msg {
		gens, err := l.GetGenerations(context.Background(), store.GenerationFilter{Limit: historyLimit})
		return localMsg{generations: gens, err: err}
	}
}

// refreshViewport re-renders the active history.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoTop()
}

func (m Model) renderHistory() string {
	okStyle := lipgloss.NewStyle().Foreground(theme.ColorGreen)
	failStyle := lipgloss.NewStyle().Foreground(theme.ColorRed)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	width := max(m.width-8, 20)

	var sections []string
	if m.showLocal {
		for _, g := range m.generations {
			mark := okStyle.Render("✓")
			text := render.Preview(g.Content, width)
			if !g.Success {
				mark = failStyle.Render("✗")
				text = failStyle.Render(g.Error)
			}
			sections = append(sections,
				fmt.Sprintf("%s %s  %s", mark, lipgloss.NewStyle().Bold(true).Render(string(g.Kind)),
					theme.HelpStyle.Render(render.RelativeTime(g.CreatedAt, m.now()))),
				contentStyle.Render(text),
				"",
			)
		}
	} else {
		for _, r := range m.requests {
			mark := okStyle.Render(r.Status)
			text := render.Preview(r.Prompt, width)
			if r.Error != "" {
				mark = failStyle.Render(r.Status)
				text = failStyle.Render(r.Error)
			}
			sections = append(sections,
				fmt.Sprintf("#%d %s  %s  %s", r.ID, lipgloss.NewStyle().Bold(true).Render(r.RequestType), mark,
					theme.HelpStyle.Render(render.RelativeTime(r.CreatedAt, m.now()))),
				contentStyle.Render(text),
				"",
			)
		}
	}

	if len(sections) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render(m.tr.T("ai_history_empty"))
	}
	return strings.Join(sections, "\n")
}

// View renders the AI panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	status := theme.HelpStyle.Render(m.tr.T("ai_status_checking"))
	if s := m.status; s != nil {
		switch {
		case s.Success:
			label := s.Status
			if s.Provider != "" || s.Model != "" {
				label = strings.TrimSpace(fmt.Sprintf("%s  %s %s", s.Status, s.Provider, s.Model))
			}
			status = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(label)
		default:
			status = theme.ErrorStyle.Render(fmt.Sprintf("%s: %s", s.Status, s.Error))
		}
	}

	tab := m.tr.T("ai_tab_backend")
	if m.showLocal {
		tab = m.tr.T("ai_tab_local")
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(
		strings.Repeat("─", min(m.width-6, 80)),
	)

	rows := []string{
		titleStyle.Render(m.tr.T("ai_title")) + "  " + status,
		theme.ActiveTabStyle.Render(tab),
		separator,
		m.viewport.View(),
	}
	if m.errMsg != "" {
		rows = append(rows, theme.ErrorStyle.Render(m.errMsg))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the AI panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - 8
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = width - 4
	m.viewport.Height = vpHeight
	m.refreshViewport()
}
