// Package gate draws the review modals for generated content: the
// edit/preview gate for email text and the proposal selection gate.
package gate

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/review"
	"github.com/nhle/crmterm/internal/theme"
)

// ApprovedMsg carries the approved, possibly edited, content. The gate is
// still open; the receiver closes it.
type ApprovedMsg struct {
	Content string
}

// RejectedMsg is emitted after the gate discarded its content.
type RejectedMsg struct{}

// Model is the content review modal.
type Model struct {
	gate     review.Gate
	editor   textarea.Model
	preview  viewport.Model
	keys     *keys.KeyMap
	tr       *i18n.Translator
	copyText func(string) error
	flash    string
	width    int
	height   int
}

// New creates a closed review modal.
func New(k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = 0

	m := Model{
		editor:   ed,
		preview:  viewport.New(width, height),
		keys:     k,
		tr:       tr,
		copyText: clipboard.WriteAll,
	}
	m.SetSize(width, height)
	return m
}

// Open stages content for review in preview mode.
func (m *Model) Open(title, content string) error {
	if err := m.gate.Open(title, content); err != nil {
		return err
	}
	m.flash = ""
	m.editor.Blur()
	m.refreshPreview()
	return nil
}

// IsOpen reports whether the modal is showing.
func (m Model) IsOpen() bool {
	return m.gate.IsOpen()
}

// Content returns the content as currently edited.
func (m Model) Content() string {
	return m.gate.Content()
}

// Close discards the content and hides the modal.
func (m *Model) Close() {
	m.gate.Close()
	m.editor.Blur()
	m.flash = ""
}

// Update handles messages while the modal is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.gate.IsOpen() {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Reject):
			m.gate.Reject()
			m.editor.Blur()
			return m, func() tea.Msg { return RejectedMsg{} }

		case key.Matches(msg, m.keys.Edit):
			m.syncEditor()
			m.gate.ToggleEdit()
			if m.gate.Editing() {
				m.editor.SetValue(m.gate.Content())
				cmd := m.editor.Focus()
				return m, cmd
			}
			m.editor.Blur()
			m.refreshPreview()
			return m, nil

		case key.Matches(msg, m.keys.Approve):
			m.syncEditor()
			content, ok := m.gate.Approve()
			if !ok {
				m.flash = m.tr.T("review_empty")
				return m, nil
			}
			return m, func() tea.Msg { return ApprovedMsg{Content: content} }

		case key.Matches(msg, m.keys.Copy):
			m.syncEditor()
			if err := m.copyText(m.gate.Content()); err != nil {
				m.flash = m.tr.TWithData("review_copy_failed", map[string]any{"Error": err.Error()})
			} else {
				m.flash = m.tr.T("review_copied")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.gate.Editing() {
		m.editor, cmd = m.editor.Update(msg)
		m.gate.SetContent(m.editor.Value())
		return m, cmd
	}
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// syncEditor copies pending editor text into the gate.
func (m *Model) syncEditor() {
	if m.gate.Editing() {
		m.gate.SetContent(m.editor.Value())
	}
}

func (m *Model) refreshPreview() {
	content := m.gate.Content()
	if render.LooksLikeHTML(content) {
		content = render.HTMLToText(content)
	}
	m.preview.SetContent(lipgloss.NewStyle().Width(m.innerWidth()).Render(content))
	m.preview.GotoTop()
}

// View renders the modal.
func (m Model) View() string {
	if !m.gate.IsOpen() {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta).Render(m.gate.Title())
	mode := m.tr.T("review_mode_preview")
	if m.gate.Editing() {
		mode = m.tr.T("review_mode_edit")
	}
	if m.gate.Edited() {
		mode += " · " + m.tr.T("review_edited")
	}

	body := m.preview.View()
	if m.gate.Editing() {
		body = m.editor.View()
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", theme.HelpStyle.Render(mode)),
		"",
		body,
		"",
		theme.HelpStyle.Render(m.tr.T("review_hints")),
	}
	if m.flash != "" {
		lines = append(lines, theme.SuccessStyle.Render(m.flash))
	}
	return theme.ModalStyle.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) innerWidth() int {
	return max(m.width-10, 20)
}

// SetSize updates the modal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.SetWidth(m.innerWidth())
	m.editor.SetHeight(max(height-12, 5))
	m.preview.Width = m.innerWidth()
	m.preview.Height = max(height-12, 5)
	if m.gate.IsOpen() {
		m.refreshPreview()
	}
}
