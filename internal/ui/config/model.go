package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/loader"
	"github.com/nhle/crmterm/internal/mailcheck"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/theme"
)

// ConfigMode represents the current state of the mail settings view.
type ConfigMode int

const (
	ModeSummary     ConfigMode = iota // Show stored IMAP and SMTP settings
	ModeFormIMAP                      // Edit incoming mail settings
	ModeFormSMTP                      // Edit outgoing mail settings
	ModeProbing                       // Testing connection
	ModeProbeResult                   // Show probe steps
)

// Backend is the part of the auth service holding the mail settings.
type Backend interface {
	IMAPSettings(ctx context.Context) (*model.IMAPSettings, error)
	SMTPSettings(ctx context.Context) (*model.SMTPSettings, error)
	UpdateIMAPSettings(ctx context.Context, in model.IMAPSettings) error
	UpdateSMTPSettings(ctx context.Context, in model.SMTPSettings) error
}

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// SettingsSavedMsg signals new settings were stored on the profile.
// Protocol is "imap" or "smtp".
type SettingsSavedMsg struct {
	Protocol string
}

type settingsLoadedMsg struct {
	imap *model.IMAPSettings
	smtp *model.SMTPSettings
	err  error
}

// probeDoneMsg carries the probe report and, when the probe passed and
// saving was requested, the save outcome.
type probeDoneMsg struct {
	report  *mailcheck.Report
	saved   bool
	saveErr error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	host     string
	port     string
	username string
	password string
	secure   bool
}

// Model is the Bubble Tea model for the mail settings UI.
type Model struct {
	mode    ConfigMode
	backend Backend
	tr      *i18n.Translator

	imap *model.IMAPSettings
	smtp *model.SMTPSettings

	form *huh.Form
	fb   *formBindings

	probeIMAP func(context.Context, model.IMAPSettings) *mailcheck.Report
	probeSMTP func(context.Context, model.SMTPSettings) *mailcheck.Report

	spinner spinner.Model
	report  *mailcheck.Report
	saved   bool
	saveErr error
	pending func() tea.Cmd // reruns the last probe
	loaded  bool
	errMsg  string
	keys    *keys.KeyMap
	width   int
	height  int
}

// New creates a new mail settings view model.
func New(b Backend, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:      ModeSummary,
		backend:   b,
		tr:        tr,
		fb:        &formBindings{},
		probeIMAP: mailcheck.ProbeIMAP,
		probeSMTP: mailcheck.ProbeSMTP,
		spinner:   sp,
		keys:      k,
		width:     width,
		height:    height,
	}
}

// Init loads both settings blocks from the profile.
func (m Model) Init() tea.Cmd {
	return m.loadSettings()
}

// Mode returns the current mode.
func (m Model) Mode() ConfigMode {
	return m.mode
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		m.loaded = true
		m.imap = msg.imap
		m.smtp = msg.smtp
		m.errMsg = ""
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_settings"))
		}
		return m, nil

	case probeDoneMsg:
		m.report = msg.report
		m.saved = msg.saved
		m.saveErr = msg.saveErr
		m.mode = ModeProbeResult
		if msg.saved {
			protocol := msg.report.Protocol
			return m, tea.Batch(
				m.loadSettings(),
				func() tea.Msg { return SettingsSavedMsg{Protocol: protocol} },
			)
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeProbing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateForm(msg)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeSummary:
		return m.handleSummaryKeys(msg)
	case ModeFormIMAP, ModeFormSMTP:
		return m.updateForm(msg)
	case ModeProbeResult:
		return m.handleResultKeys(msg)
	case ModeProbing:
		// The probe cannot be cancelled; esc only leaves the screen.
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSummary
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSummaryKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ConfigDoneMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadSettings()

	case msg.String() == "i":
		m.startIMAPForm()
		return m, m.form.Init()

	case msg.String() == "s":
		m.startSMTPForm()
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select):
		m.mode = ModeSummary
		m.report = nil
		m.saveErr = nil
		return m, nil
	case msg.String() == "r":
		if m.report != nil && !m.report.OK() && m.pending != nil {
			m.mode = ModeProbing
			return m, tea.Batch(m.spinner.Tick, m.pending())
		}
	case msg.String() == "e":
		if m.report == nil {
			return m, nil
		}
		// Re-open the form with the values just tried.
		if m.report.Protocol == "imap" {
			m.mode = ModeFormIMAP
		} else {
			m.mode = ModeFormSMTP
		}
		m.form = m.buildForm(m.report.Protocol)
		return m, m.form.Init()
	}
	return m, nil
}

// --- Forms ---

func (m *Model) startIMAPForm() {
	*m.fb = formBindings{port: "993", secure: true}
	if s := m.imap; s != nil {
		m.fb.host = s.IMAPServer
		if s.IMAPPort > 0 {
			m.fb.port = strconv.Itoa(s.IMAPPort)
		}
		m.fb.username = s.IMAPUsername
		m.fb.secure = s.UseIMAPSSL
	}
	m.mode = ModeFormIMAP
	m.form = m.buildForm("imap")
}

func (m *Model) startSMTPForm() {
	*m.fb = formBindings{port: "587", secure: true}
	if s := m.smtp; s != nil {
		m.fb.host = s.SMTPServer
		if s.SMTPPort > 0 {
			m.fb.port = strconv.Itoa(s.SMTPPort)
		}
		m.fb.username = s.SMTPUsername
		m.fb.secure = s.UseTLS
	}
	m.mode = ModeFormSMTP
	m.form = m.buildForm("smtp")
}

func (m *Model) buildForm(protocol string) *huh.Form {
	title := m.tr.T("settings_imap")
	secure := m.tr.T("field_use_ssl")
	if protocol == "smtp" {
		title = m.tr.T("settings_smtp")
		secure = m.tr.T("field_use_tls")
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(m.tr.T("field_host")).
				Placeholder(protocol+".example.com").
				Value(&m.fb.host).
				Validate(validateRequired(m.tr.T("field_host"))),
			huh.NewInput().
				Title(m.tr.T("field_port")).
				Value(&m.fb.port).
				Validate(validatePort),
			huh.NewInput().
				Title(m.tr.T("field_username")).
				Placeholder("user@example.com").
				Value(&m.fb.username).
				Validate(validateRequired(m.tr.T("field_username"))),
			huh.NewInput().
				Title(m.tr.T("field_password")).
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired(m.tr.T("field_password"))),
			huh.NewConfirm().
				Title(secure).
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.secure),
		).Title(title),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || (m.mode != ModeFormIMAP && m.mode != ModeFormSMTP) {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.mode == ModeFormIMAP {
			s := m.imapFromForm()
			m.pending = func() tea.Cmd { return m.probeAndSaveIMAP(s) }
		} else {
			s := m.smtpFromForm()
			m.pending = func() tea.Cmd { return m.probeAndSaveSMTP(s) }
		}
		m.mode = ModeProbing
		return m, tea.Batch(m.spinner.Tick, m.pending())
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeSummary
		return m, nil
	}

	return m, cmd
}

// hostPort accepts "host" or "host:port" in the host field; an explicit
// port there wins over the port field.
func (m Model) hostPort() (string, int) {
	port, _ := strconv.Atoi(strings.TrimSpace(m.fb.port))
	host, p, err := mailcheck.SplitHostPort(strings.TrimSpace(m.fb.host), port)
	if err != nil {
		return strings.TrimSpace(m.fb.host), port
	}
	return host, p
}

func (m Model) imapFromForm() model.IMAPSettings {
	host, port := m.hostPort()
	return model.IMAPSettings{
		IMAPServer:   host,
		IMAPPort:     port,
		IMAPUsername: strings.TrimSpace(m.fb.username),
		IMAPPassword: m.fb.password,
		UseIMAPSSL:   m.fb.secure,
	}
}

func (m Model) smtpFromForm() model.SMTPSettings {
	host, port := m.hostPort()
	return model.SMTPSettings{
		SMTPServer:   host,
		SMTPPort:     port,
		SMTPUsername: strings.TrimSpace(m.fb.username),
		SMTPPassword: m.fb.password,
		UseTLS:       m.fb.secure,
	}
}

// --- Commands ---

func (m Model) loadSettings() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		var msg settingsLoadedMsg
		report := loader.Load(context.Background(),
			loader.Call{Name: "imap settings", Run: func(ctx context.Context) error {
				var err error
				msg.imap, err = b.IMAPSettings(ctx)
				return err
			}},
			loader.Call{Name: "smtp settings", Run: func(ctx context.Context) error {
				var err error
				msg.smtp, err = b.SMTPSettings(ctx)
				return err
			}},
		)
		msg.err = report.Err()
		return msg
	}
}

// probeAndSaveIMAP stores the settings only when the probe passed.
func (m Model) probeAndSaveIMAP(s model.IMAPSettings) tea.Cmd {
	b, probe := m.backend, m.probeIMAP
	return func() tea.Msg {
		ctx := context.Background()
		report := probe(ctx, s)
		if !report.OK() {
			return probeDoneMsg{report: report}
		}
		if err := b.UpdateIMAPSettings(ctx, s); err != nil {
			return probeDoneMsg{report: report, saveErr: err}
		}
		return probeDoneMsg{report: report, saved: true}
	}
}

func (m Model) probeAndSaveSMTP(s model.SMTPSettings) tea.Cmd {
	b, probe := m.backend, m.probeSMTP
	return func() tea.Msg {
		ctx := context.Background()
		report := probe(ctx, s)
		if !report.OK() {
			return probeDoneMsg{report: report}
		}
		if err := b.UpdateSMTPSettings(ctx, s); err != nil {
			return probeDoneMsg{report: report, saveErr: err}
		}
		return probeDoneMsg{report: report, saved: true}
	}
}

// --- View ---

// View renders the mail settings UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeSummary:
		return m.viewSummary()
	case ModeFormIMAP, ModeFormSMTP:
		return m.frame(m.form.View())
	case ModeProbing:
		return m.frame(fmt.Sprintf("%s %s", m.spinner.View(), m.tr.T("settings_probing")))
	case ModeProbeResult:
		return m.viewResult()
	default:
		return ""
	}
}

func (m Model) viewSummary() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(m.tr.T("settings_title")))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(theme.HelpStyle.Render(m.tr.T("loading")))
		return m.frame(b.String())
	}

	b.WriteString(m.renderBlock(m.tr.T("settings_imap"), "i", imapSummary(m.imap)))
	b.WriteString("\n\n")
	b.WriteString(m.renderBlock(m.tr.T("settings_smtp"), "s", smtpSummary(m.smtp)))

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(m.tr.T("settings_hints")))
	return m.frame(b.String())
}

func (m Model) renderBlock(title, hotkey, summary string) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta).Render(title) +
		"  " + theme.HelpStyle.Render("["+hotkey+"]")
	if summary == "" {
		summary = lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render(m.tr.T("settings_not_set"))
	}
	return heading + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(summary)
}

func imapSummary(s *model.IMAPSettings) string {
	if s == nil || s.IMAPServer == "" {
		return ""
	}
	mode := "plain"
	if s.UseIMAPSSL {
		mode = "ssl"
	}
	return fmt.Sprintf("%s:%d  %s  (%s)", s.IMAPServer, s.IMAPPort, s.IMAPUsername, mode)
}

func smtpSummary(s *model.SMTPSettings) string {
	if s == nil || s.SMTPServer == "" {
		return ""
	}
	mode := "plain"
	if s.UseTLS {
		mode = "tls"
	}
	return fmt.Sprintf("%s:%d  %s  (%s)", s.SMTPServer, s.SMTPPort, s.SMTPUsername, mode)
}

func (m Model) viewResult() string {
	if m.report == nil {
		return m.frame("")
	}

	var b strings.Builder
	okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
	failStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)

	if m.report.OK() {
		b.WriteString(okStyle.Render(m.tr.T("settings_probe_ok")))
	} else {
		b.WriteString(failStyle.Render(m.tr.T("settings_probe_failed")))
	}
	b.WriteString("  " + theme.HelpStyle.Render(fmt.Sprintf("%s %s (%s)",
		m.report.Protocol, m.report.Address, m.report.Elapsed.Round(time.Millisecond))))
	b.WriteString("\n\n")

	for _, s := range m.report.Steps {
		if s.OK() {
			line := okStyle.Render("✓") + " " + s.Name
			if s.Detail != "" {
				line += "  " + theme.HelpStyle.Render(s.Detail)
			}
			b.WriteString(line + "\n")
			continue
		}
		b.WriteString(failStyle.Render("✗") + " " + s.Name + "  " + theme.ErrorStyle.Render(s.Err.Error()) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.saved:
		b.WriteString(theme.SuccessStyle.Render(m.tr.T("settings_saved")))
	case m.saveErr != nil:
		b.WriteString(theme.ErrorStyle.Render(m.tr.TWithData("settings_save_failed",
			map[string]any{"Error": api.Message(m.saveErr, m.saveErr.Error())})))
	}

	b.WriteString("\n\n")
	if m.report.OK() {
		b.WriteString(theme.HelpStyle.Render(m.tr.T("settings_result_hints")))
	} else {
		b.WriteString(theme.HelpStyle.Render(m.tr.T("settings_retry_hints")))
	}
	return m.frame(b.String())
}

func (m Model) frame(content string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("port is required")
	}
	p, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if p < 1 || p > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
