package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ReplyMsg asks the parent to generate an AI reply to the shown email.
type ReplyMsg struct {
	Email model.IncomingEmail
}

// MarkUnreadMsg asks the parent to flag the shown email unread again.
type MarkUnreadMsg struct {
	ID int64
}

// Model shows one incoming email in a scrollable viewport.
type Model struct {
	email    *model.IncomingEmail
	viewport viewport.Model
	keys     *keys.KeyMap
	tr       *i18n.Translator
	width    int
	height   int

	// replying is set while a reply is being generated; the reply key is
	// ignored until it clears.
	replying bool
	errMsg   string
}

// New creates a new detail view model.
func New(k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		tr:       tr,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Reply):
			if m.email == nil || m.replying {
				return m, nil
			}
			email := *m.email
			m.replying = true
			m.errMsg = ""
			return m, func() tea.Msg { return ReplyMsg{Email: email} }

		case key.Matches(msg, m.keys.MarkRead):
			if m.email == nil {
				return m, nil
			}
			id := m.email.ID
			return m, func() tea.Msg { return MarkUnreadMsg{ID: id} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.email == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render(m.tr.T("detail_none"))
	}

	var status string
	switch {
	case m.replying:
		status = theme.HelpStyle.Render(m.tr.T("detail_replying"))
	case m.errMsg != "":
		status = theme.ErrorStyle.Render(m.errMsg)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), status)
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	e := m.email
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	subject := e.Subject
	if strings.TrimSpace(subject) == "" {
		subject = m.tr.T("no_subject")
	}
	sections = append(sections, titleStyle.Render(subject))

	badges := []string{theme.IncomingStatusStyle(e.Status).Render(string(e.Status))}
	if e.HasAttachments {
		badges = append(badges, "  ", theme.HelpStyle.Render(m.tr.T("detail_attachments")))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	field := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render(fmt.Sprintf("%-9s", label+":")),
			valStyle.Render(value),
		))
	}

	field(m.tr.T("field_from"), e.From())
	field(m.tr.T("field_to"), joinRecipients(e.Recipients))
	field(m.tr.T("field_cc"), joinRecipients(e.CC))
	if !e.ReceivedAt.IsZero() {
		field(m.tr.T("field_received"), fmt.Sprintf("%s (%s)",
			e.ReceivedAt.Format("2006-01-02 15:04"),
			render.RelativeTime(e.ReceivedAt, time.Now())))
	}
	field(m.tr.T("field_company"), e.CompanyName)
	field(m.tr.T("field_contact"), e.ContactName)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	body := render.EmailBody(*e)
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render(m.tr.T("detail_empty_body"))
	} else {
		body = lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(body)
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func joinRecipients(rs []model.EmailRecipient) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.Name != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", r.Name, r.Email))
			continue
		}
		parts = append(parts, r.Email)
	}
	return strings.Join(parts, ", ")
}

// SetEmail updates the email being displayed and re-renders the content.
func (m *Model) SetEmail(e model.IncomingEmail) {
	m.email = &e
	m.replying = false
	m.errMsg = ""
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Email returns the email being displayed, if any.
func (m Model) Email() (model.IncomingEmail, bool) {
	if m.email == nil {
		return model.IncomingEmail{}, false
	}
	return *m.email, true
}

// ReplyFinished clears the in-flight flag; a non-empty errMsg is shown
// under the body.
func (m *Model) ReplyFinished(errMsg string) {
	m.replying = false
	m.errMsg = errMsg
}

// Replying reports whether a reply generation is in flight.
func (m Model) Replying() bool {
	return m.replying
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.email != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
