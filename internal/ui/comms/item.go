package comms

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/render"
	"github.com/nhle/crmterm/internal/theme"
)

// IncomingItem wraps a model.IncomingEmail so it can be used in a bubbles/list.
type IncomingItem struct {
	Email model.IncomingEmail
}

// FilterValue returns the string used for filtering.
func (i IncomingItem) FilterValue() string { return i.Email.Subject + " " + i.Email.From() }

// MessageItem wraps an outgoing model.EmailMessage (sent or draft).
type MessageItem struct {
	Message model.EmailMessage
}

// FilterValue returns the string used for filtering.
func (i MessageItem) FilterValue() string { return i.Message.Subject }

// TemplateItem wraps a model.EmailTemplate.
type TemplateItem struct {
	Template model.EmailTemplate
}

// FilterValue returns the string used for filtering.
func (i TemplateItem) FilterValue() string { return i.Template.Name }

// ItemDelegate implements list.ItemDelegate for every communications tab.
type ItemDelegate struct {
	// now is overridable so rendering is stable in tests.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width() - 4
	var line string
	switch it := item.(type) {
	case IncomingItem:
		line = d.renderIncoming(it.Email, width)
	case MessageItem:
		line = d.renderMessage(it.Message, width)
	case TemplateItem:
		line = renderTemplate(it.Template, width)
	default:
		return
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

func (d ItemDelegate) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d ItemDelegate) renderIncoming(e model.IncomingEmail, width int) string {
	prefix := " "
	if e.Status == model.IncomingUnread {
		prefix = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
	}
	attach := ""
	if e.HasAttachments {
		attach = " +"
	}
	from := render.Truncate(e.From(), 24)
	when := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(render.RelativeTime(e.ReceivedAt, d.clock()))

	subject := e.Subject
	if e.Status == model.IncomingUnread {
		subject = lipgloss.NewStyle().Bold(true).Render(subject)
	}
	line := fmt.Sprintf("%s %-24s %s%s  %s", prefix, from, subject, attach, when)
	return clip(line, width)
}

func (d ItemDelegate) renderMessage(msg model.EmailMessage, width int) string {
	badge := theme.EmailStatusStyle(msg.Status).Render(string(msg.Status))
	to := make([]string, 0, len(msg.Recipients))
	for _, r := range msg.Recipients {
		to = append(to, r.Email)
	}
	when := msg.CreatedAt
	if msg.SentAt != nil {
		when = *msg.SentAt
	}
	line := fmt.Sprintf("%s %-28s %s  %s",
		badge,
		render.Truncate(strings.Join(to, ", "), 28),
		msg.Subject,
		lipgloss.NewStyle().Foreground(theme.ColorGray).Render(render.RelativeTime(when, d.clock())),
	)
	if msg.Status == model.EmailFailed && msg.ErrorMessage != "" {
		line += " " + theme.ErrorStyle.Render(msg.ErrorMessage)
	}
	return clip(line, width)
}

func renderTemplate(t model.EmailTemplate, width int) string {
	name := lipgloss.NewStyle().Bold(true).Render(t.Name)
	line := fmt.Sprintf("%s  %s", name, theme.HelpStyle.Render(t.Subject))
	return clip(line, width)
}

// clip cuts a styled line to width cells without breaking escape codes.
func clip(line string, width int) string {
	return lipgloss.NewStyle().MaxWidth(max(width, 20)).Render(line)
}
