package gate

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/review"
	"github.com/nhle/crmterm/internal/theme"
)

// CreateSelectedMsg carries the proposals chosen for the opportunity form.
type CreateSelectedMsg struct {
	Proposals []model.OpportunityProposal
}

// DismissedMsg is emitted when the proposal gate is closed without a
// selection being used.
type DismissedMsg struct{}

// ProposalsModel is the proposal selection modal.
type ProposalsModel struct {
	sel    *review.ProposalSelection
	cursor int
	keys   *keys.KeyMap
	tr     *i18n.Translator
	width  int
	height int
}

// NewProposals creates a closed proposal modal.
func NewProposals(k *keys.KeyMap, tr *i18n.Translator, width, height int) ProposalsModel {
	return ProposalsModel{keys: k, tr: tr, width: width, height: height}
}

// Open shows the proposals of res, none selected.
func (m *ProposalsModel) Open(res *model.OpportunityResult) error {
	sel, err := review.NewProposalSelection(res)
	if err != nil {
		return err
	}
	m.sel = sel
	m.cursor = 0
	return nil
}

// IsOpen reports whether the modal is showing.
func (m ProposalsModel) IsOpen() bool {
	return m.sel != nil
}

// Close hides the modal and forgets the selection.
func (m *ProposalsModel) Close() {
	m.sel = nil
	m.cursor = 0
}

// Selection exposes the underlying selection state.
func (m ProposalsModel) Selection() *review.ProposalSelection {
	return m.sel
}

// Update handles messages while the modal is open.
func (m ProposalsModel) Update(msg tea.Msg) (ProposalsModel, tea.Cmd) {
	if m.sel == nil {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Reject):
		return m, func() tea.Msg { return DismissedMsg{} }

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.sel.Len()-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Toggle):
		m.sel.Toggle(m.cursor)

	case key.Matches(keyMsg, m.keys.Select), key.Matches(keyMsg, m.keys.Approve):
		if !m.sel.CanCreate() {
			return m, nil
		}
		selected := m.sel.Selected()
		return m, func() tea.Msg { return CreateSelectedMsg{Proposals: selected} }
	}
	return m, nil
}

// View renders the modal.
func (m ProposalsModel) View() string {
	if m.sel == nil {
		return ""
	}
	width := max(m.width-10, 20)

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta).Render(m.tr.T("proposals_title"))
	lines := []string{title, ""}

	if a := m.sel.Analysis(); a != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Foreground(theme.ColorGray).Render(a), "")
	}

	for i := 0; i < m.sel.Len(); i++ {
		p := m.sel.Proposal(i)
		box := "[ ]"
		if m.sel.IsSelected(i) {
			box = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("[x]")
		}
		line := fmt.Sprintf("%s %s  %s  %s",
			box,
			p.Title,
			theme.DealPriorityStyle(p.Priority).Render(string(p.Priority)),
			render.Money(p.EstimatedValue),
		)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}

	cur := m.sel.Proposal(m.cursor)
	lines = append(lines, "",
		lipgloss.NewStyle().Width(width).Render(cur.Description),
	)
	if cur.Reasoning != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Italic(true).Foreground(theme.ColorGray).Render(cur.Reasoning))
	}

	create := m.tr.TWithData("proposals_create", map[string]any{"Count": m.sel.Count()})
	if m.sel.CanCreate() {
		create = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render(create)
	} else {
		create = lipgloss.NewStyle().Foreground(theme.ColorSubtle).Strikethrough(true).Render(create)
	}
	lines = append(lines, "", create, theme.HelpStyle.Render(m.tr.T("proposals_hints")))

	return theme.ModalStyle.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the modal dimensions.
func (m *ProposalsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}
