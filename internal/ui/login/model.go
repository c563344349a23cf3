package login

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/theme"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
}

// LoggedInMsg is dispatched after a successful login. The receiver
// stores the token and profile.
type LoggedInMsg struct {
	Auth *model.AuthResponse
}

// QuitMsg is dispatched when the form is aborted.
type QuitMsg struct{}

type loginDoneMsg struct {
	auth *model.AuthResponse
	err  error
}

type formBindings struct {
	username string
	password string
}

// Model is the sign-in view.
type Model struct {
	auth    Authenticator
	tr      *i18n.Translator
	form    *huh.Form
	fb      *formBindings
	baseURL string
	reason  string
	busy    bool
	errMsg  string
	width   int
	height  int
}

// New creates a sign-in view for the backend at baseURL.
func New(auth Authenticator, tr *i18n.Translator, baseURL string, width, height int) Model {
	m := Model{
		auth:    auth,
		tr:      tr,
		fb:      &formBindings{},
		baseURL: baseURL,
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Reset clears the password and shows reason above the form, such as a
// session that expired.
func (m *Model) Reset(reason string) tea.Cmd {
	m.fb.password = ""
	m.reason = reason
	m.errMsg = ""
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the sign-in view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(loginDoneMsg); ok {
		m.busy = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("login_failed"))
			m.fb.password = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		auth := msg.auth
		return m, func() tea.Msg { return LoggedInMsg{Auth: auth} }
	}

	if m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.busy = true
		m.errMsg = ""
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return QuitMsg{} }
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	creds := model.Credentials{Username: strings.TrimSpace(m.fb.username), Password: m.fb.password}
	auth := m.auth
	return func() tea.Msg {
		res, err := auth.Login(context.Background(), creds)
		if err == nil && (res == nil || res.Token == "") {
			err = fmt.Errorf("login response carried no token")
		}
		return loginDoneMsg{auth: res, err: err}
	}
}

// View renders the sign-in view centered on screen.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(m.tr.T("login_title"))
	lines := []string{title, theme.HelpStyle.Render(m.baseURL), ""}
	if m.reason != "" {
		lines = append(lines, theme.NoticeStyle.Render(m.reason), "")
	}
	if m.busy {
		lines = append(lines, theme.HelpStyle.Render(m.tr.T("login_signing_in")))
	} else {
		lines = append(lines, m.form.View())
	}
	if m.errMsg != "" {
		lines = append(lines, theme.ErrorStyle.Render(m.errMsg))
	}

	box := theme.DetailPanelStyle.Width(min(m.width-4, 60)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(m.tr.T("field_username")).
				Value(&m.fb.username).
				Validate(validateRequired(m.tr.T("field_username"))),
			huh.NewInput().
				Title(m.tr.T("field_password")).
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired(m.tr.T("field_password"))),
		),
	).WithWidth(min(max(m.width-12, 30), 52)).WithShowHelp(false)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
