// Package composeform is the compose view: recipient rows, subject, body
// and attachments over a compose.Draft, with quick-select addressing from
// the chosen company's contacts.
package composeform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/ai"
	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/compose"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/theme"
	"github.com/nhle/crmterm/internal/ui/picker"
)

// Companies is the part of the companies service the view needs.
type Companies interface {
	List(ctx context.Context) ([]model.Company, error)
	Contacts(ctx context.Context, id int64) ([]model.Contact, error)
}

// Templates lists email templates.
type Templates interface {
	List(ctx context.Context) ([]model.EmailTemplate, error)
}

// Deps are the backend calls the compose view makes itself.
type Deps struct {
	Companies Companies
	Templates Templates
	Mailer    compose.Mailer
}

// SubmittedMsg is emitted after a successful send or save. The parent
// navigates to Outcome.Tab.
type SubmittedMsg struct {
	Outcome *compose.Outcome
}

// GenerateMsg asks the parent to generate a body and open the review gate.
type GenerateMsg struct {
	Request ai.ComposeRequest
}

// CancelMsg signals the parent to leave the compose view.
type CancelMsg struct{}

type companiesLoadedMsg struct {
	companies []model.Company
	err       error
}

type contactsLoadedMsg struct {
	companyID int64
	contacts  []model.Contact
	err       error
}

type templatesLoadedMsg struct {
	templates []model.EmailTemplate
	err       error
}

type submitDoneMsg struct {
	outcome *compose.Outcome
	err     error
}

const (
	pickCompany  = "company"
	pickTemplate = "template"
)

// slotKind is the kind of a focusable field.
type slotKind int

const (
	slotCompany slotKind = iota
	slotRecipient
	slotSubject
	slotBody
	slotAttachments
)

type slot struct {
	kind  slotKind
	field compose.Field
	row   int
}

// Model is the compose view.
type Model struct {
	deps  Deps
	draft *compose.Draft
	keys  *keys.KeyMap
	tr    *i18n.Translator

	rows        map[compose.Field][]textinput.Model
	subject     textinput.Model
	body        textarea.Model
	attachments textinput.Model
	focus       int

	companies   []model.Company
	companyName string
	quick       *compose.QuickSelect
	templates   []model.EmailTemplate
	picker      *picker.Model

	generating bool
	submitting bool
	errMsg     string

	width  int
	height int
}

// New creates a compose view over an empty draft.
func New(deps Deps, k *keys.KeyMap, tr *i18n.Translator, width, height int) Model {
	subject := textinput.New()
	subject.Placeholder = tr.T("compose_subject_placeholder")
	subject.Prompt = ""

	body := textarea.New()
	body.Placeholder = tr.T("compose_body_placeholder")
	body.ShowLineNumbers = false

	att := textinput.New()
	att.Placeholder = tr.T("compose_attachments_placeholder")
	att.Prompt = ""

	m := Model{
		deps:        deps,
		draft:       compose.NewDraft(),
		keys:        k,
		tr:          tr,
		subject:     subject,
		body:        body,
		attachments: att,
		quick:       compose.NewQuickSelect(nil),
		width:       width,
		height:      height,
	}
	m.syncRows()
	m.SetSize(width, height)
	m.focus = m.indexOf(slot{kind: slotRecipient, field: compose.FieldTo})
	m.applyFocus()
	return m
}

// Init loads the companies and templates offered by the pickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCompanies(), m.loadTemplates(), textinput.Blink)
}

// Draft returns the draft being edited.
func (m Model) Draft() *compose.Draft {
	return m.draft
}

// ApplyPrefill merges a hand-off into the draft. A company in the prefill
// loads its contacts for quick-select.
func (m *Model) ApplyPrefill(p nav.ComposePrefill) tea.Cmd {
	m.draft.ApplyPrefill(p)
	m.subject.SetValue(m.draft.Subject)
	m.body.SetValue(m.draft.Content)
	m.syncRows()
	m.applyFocus()
	if p.CompanyID != nil {
		m.companyName = m.lookupCompany(*p.CompanyID)
		return m.loadContacts(*p.CompanyID)
	}
	return nil
}

// ApplyTemplate copies a template's subject and body into the draft.
func (m *Model) ApplyTemplate(t model.EmailTemplate) {
	m.draft.ApplyTemplate(t)
	m.subject.SetValue(m.draft.Subject)
	m.body.SetValue(m.draft.Content)
}

// GenerationFinished re-enables the generate action. A non-empty errMsg
// is shown in the banner.
func (m *Model) GenerationFinished(errMsg string) {
	m.generating = false
	m.errMsg = errMsg
}

// Generating reports whether a generation is in flight.
func (m Model) Generating() bool {
	return m.generating
}

// QuickOptions returns the current quick-select list.
func (m Model) QuickOptions() []compose.QuickOption {
	return m.quick.Options()
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case companiesLoadedMsg:
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_companies"))
			return m, nil
		}
		m.companies = msg.companies
		if m.draft.CompanyID != nil && m.companyName == "" {
			m.companyName = m.lookupCompany(*m.draft.CompanyID)
		}
		return m, nil

	case contactsLoadedMsg:
		if m.draft.CompanyID == nil || *m.draft.CompanyID != msg.companyID {
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_contacts"))
			return m, nil
		}
		m.quick = compose.NewQuickSelect(msg.contacts)
		m.SetSize(m.width, m.height)
		return m, nil

	case templatesLoadedMsg:
		if msg.err == nil {
			m.templates = msg.templates
		}
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_submit"))
			return m, nil
		}
		m.errMsg = ""
		outcome := msg.outcome
		return m, func() tea.Msg { return SubmittedMsg{Outcome: outcome} }

	case picker.PickedMsg:
		m.picker = nil
		return m.handlePicked(msg)

	case picker.CancelledMsg:
		m.picker = nil
		return m, nil
	}

	if _, ok := msg.(tea.KeyMsg); ok && m.submitting {
		// The draft is read-only until the submit settles.
		return m, nil
	}

	if m.picker != nil {
		var cmd tea.Cmd
		*m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if handled, next, cmd := m.handleKeys(msg); handled {
			return next, cmd
		}
	}

	return m.updateFocused(msg)
}

func (m Model) handleKeys(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return true, m, func() tea.Msg { return CancelMsg{} }

	case key.Matches(msg, m.keys.NextTab):
		m.moveFocus(1)
		return true, m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.moveFocus(-1)
		return true, m, nil

	case key.Matches(msg, m.keys.Send):
		cmd := m.submit(compose.ActionSend)
		return true, m, cmd

	case key.Matches(msg, m.keys.SaveDraft):
		cmd := m.submit(compose.ActionSaveDraft)
		return true, m, cmd

	case key.Matches(msg, m.keys.Generate):
		if m.generating {
			return true, m, nil
		}
		m.generating = true
		m.errMsg = ""
		req := ai.ComposeRequest{
			Subject:           strings.TrimSpace(m.draft.Subject),
			CompanyID:         m.draft.CompanyID,
			ContactID:         m.draft.ContactID,
			OpportunityID:     m.draft.OpportunityID,
			AdditionalContext: strings.TrimSpace(m.draft.Content),
		}
		return true, m, func() tea.Msg { return GenerateMsg{Request: req} }

	case key.Matches(msg, m.keys.AddRow):
		f := compose.FieldTo
		if s := m.current(); s.kind == slotRecipient {
			f = s.field
		}
		m.draft.AddRow(f)
		m.syncRows()
		m.focus = m.indexOf(slot{kind: slotRecipient, field: f, row: len(m.draft.Rows(f)) - 1})
		m.applyFocus()
		return true, m, nil

	case key.Matches(msg, m.keys.RemoveRow):
		s := m.current()
		if s.kind != slotRecipient {
			return true, m, nil
		}
		if m.draft.RemoveRow(s.field, s.row) {
			m.syncRows()
			m.focus = min(m.focus, len(m.slots())-1)
			m.applyFocus()
		}
		return true, m, nil

	case msg.String() == "alt+c":
		return true, m.addRow(compose.FieldCC), nil

	case msg.String() == "alt+b":
		return true, m.addRow(compose.FieldBCC), nil

	case msg.String() == "ctrl+t":
		if len(m.templates) == 0 {
			return true, m, nil
		}
		opts := make([]picker.Option, len(m.templates))
		for i, t := range m.templates {
			opts[i] = picker.Option{ID: t.ID, Label: t.Name}
		}
		p := picker.New(pickTemplate, m.tr.T("compose_pick_template"), opts, m.keys, m.width, m.height)
		m.picker = &p
		return true, m, p.Init()

	case strings.HasPrefix(msg.String(), "alt+"):
		n, err := strconv.Atoi(strings.TrimPrefix(msg.String(), "alt+"))
		opts := m.quick.Options()
		if err != nil || n < 1 || n > len(opts) {
			return false, m, nil
		}
		cur := m.current()
		m.quick.Pick(m.draft, opts[n-1])
		m.syncRows()
		m.focus = m.indexOf(cur)
		m.applyFocus()
		return true, m, nil

	case key.Matches(msg, m.keys.Select):
		switch m.current().kind {
		case slotCompany:
			opts := make([]picker.Option, len(m.companies))
			for i, c := range m.companies {
				opts[i] = picker.Option{ID: c.ID, Label: c.Name}
			}
			p := picker.New(pickCompany, m.tr.T("compose_pick_company"), opts, m.keys, m.width, m.height)
			m.picker = &p
			return true, m, p.Init()
		case slotRecipient, slotSubject, slotAttachments:
			m.moveFocus(1)
			return true, m, nil
		case slotBody:
			return false, m, nil
		}
	}
	return false, m, nil
}

func (m Model) addRow(f compose.Field) Model {
	m.draft.AddRow(f)
	m.syncRows()
	m.focus = m.indexOf(slot{kind: slotRecipient, field: f, row: len(m.draft.Rows(f)) - 1})
	m.applyFocus()
	return m
}

func (m Model) handlePicked(msg picker.PickedMsg) (Model, tea.Cmd) {
	switch msg.Purpose {
	case pickCompany:
		id := msg.Option.ID
		m.draft.CompanyID = &id
		m.draft.ContactID = nil
		m.companyName = msg.Option.Label
		m.quick = compose.NewQuickSelect(nil)
		return m, m.loadContacts(id)
	case pickTemplate:
		for _, t := range m.templates {
			if t.ID == msg.Option.ID {
				m.ApplyTemplate(t)
				break
			}
		}
	}
	return m, nil
}

// updateFocused forwards msg to the focused input and copies its value
// back into the draft.
func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	s := m.current()
	switch s.kind {
	case slotRecipient:
		inputs := m.rows[s.field]
		inputs[s.row], cmd = inputs[s.row].Update(msg)
		m.draft.SetEmail(s.field, s.row, strings.TrimSpace(inputs[s.row].Value()))
	case slotSubject:
		m.subject, cmd = m.subject.Update(msg)
		m.draft.Subject = m.subject.Value()
	case slotBody:
		m.body, cmd = m.body.Update(msg)
		m.draft.Content = m.body.Value()
	case slotAttachments:
		m.attachments, cmd = m.attachments.Update(msg)
		m.draft.Attachments = splitPaths(m.attachments.Value())
	case slotCompany:
	}
	return m, cmd
}

func (m *Model) submit(action compose.Action) tea.Cmd {
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.errMsg = ""
	mailer, d := m.deps.Mailer, m.draft.Clone()
	return func() tea.Msg {
		out, err := compose.Submit(context.Background(), mailer, d, action)
		return submitDoneMsg{outcome: out, err: err}
	}
}

// slots lists the focusable fields top to bottom.
func (m Model) slots() []slot {
	out := []slot{{kind: slotCompany}}
	for _, f := range []compose.Field{compose.FieldTo, compose.FieldCC, compose.FieldBCC} {
		for i := range m.rows[f] {
			out = append(out, slot{kind: slotRecipient, field: f, row: i})
		}
	}
	return append(out, slot{kind: slotSubject}, slot{kind: slotBody}, slot{kind: slotAttachments})
}

func (m Model) current() slot {
	slots := m.slots()
	if m.focus < 0 || m.focus >= len(slots) {
		return slots[0]
	}
	return slots[m.focus]
}

func (m Model) indexOf(s slot) int {
	for i, candidate := range m.slots() {
		if candidate == s {
			return i
		}
	}
	return 0
}

func (m *Model) moveFocus(delta int) {
	n := len(m.slots())
	m.focus = (m.focus + delta + n) % n
	m.applyFocus()
}

// applyFocus focuses the current field and blurs the rest.
func (m *Model) applyFocus() {
	cur := m.current()
	for f, inputs := range m.rows {
		for i := range inputs {
			if cur.kind == slotRecipient && cur.field == f && cur.row == i {
				inputs[i].Focus()
			} else {
				inputs[i].Blur()
			}
		}
	}
	focusIf(&m.subject, cur.kind == slotSubject)
	focusIf(&m.attachments, cur.kind == slotAttachments)
	if cur.kind == slotBody {
		m.body.Focus()
	} else {
		m.body.Blur()
	}
}

func focusIf(in *textinput.Model, on bool) {
	if on {
		in.Focus()
		return
	}
	in.Blur()
}

// syncRows rebuilds the recipient inputs from the draft.
func (m *Model) syncRows() {
	m.rows = make(map[compose.Field][]textinput.Model, 3)
	for _, f := range []compose.Field{compose.FieldTo, compose.FieldCC, compose.FieldBCC} {
		rows := m.draft.Rows(f)
		inputs := make([]textinput.Model, len(rows))
		for i, r := range rows {
			in := textinput.New()
			in.Prompt = ""
			in.Placeholder = "name@example.com"
			in.Width = m.inputWidth()
			in.SetValue(r.Email)
			inputs[i] = in
		}
		m.rows[f] = inputs
	}
}

func (m Model) lookupCompany(id int64) string {
	for _, c := range m.companies {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (m Model) loadCompanies() tea.Cmd {
	src := m.deps.Companies
	return func() tea.Msg {
		cs, err := src.List(context.Background())
		return companiesLoadedMsg{companies: cs, err: err}
	}
}

func (m Model) loadContacts(companyID int64) tea.Cmd {
	src := m.deps.Companies
	return func() tea.Msg {
		cs, err := src.Contacts(context.Background(), companyID)
		return contactsLoadedMsg{companyID: companyID, contacts: cs, err: err}
	}
}

func (m Model) loadTemplates() tea.Cmd {
	src := m.deps.Templates
	return func() tea.Msg {
		ts, err := src.List(context.Background())
		return templatesLoadedMsg{templates: ts, err: err}
	}
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// View renders the compose view.
func (m Model) View() string {
	if m.picker != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	form := m.renderForm()
	if len(m.quick.Options()) > 0 {
		form = lipgloss.JoinHorizontal(lipgloss.Top, form, "  ", m.renderQuickSelect())
	}

	var status string
	switch {
	case m.submitting:
		status = theme.HelpStyle.Render(m.tr.T("compose_submitting"))
	case m.generating:
		status = theme.HelpStyle.Render(m.tr.T("compose_generating"))
	case m.errMsg != "":
		status = theme.ErrorStyle.Render(m.errMsg)
	}
	return lipgloss.JoinVertical(lipgloss.Left, form, "", status)
}

func (m Model) renderForm() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	focusLabel := labelStyle.Foreground(theme.ColorBlue).Bold(true)
	cur := m.current()

	label := func(text string, focused bool) string {
		if focused {
			return focusLabel.Render(text)
		}
		return labelStyle.Render(text)
	}

	var lines []string

	company := m.companyName
	if company == "" {
		company = theme.HelpStyle.Render(m.tr.T("compose_no_company"))
	}
	lines = append(lines, label(m.tr.T("field_company"), cur.kind == slotCompany)+company)

	for _, f := range []compose.Field{compose.FieldTo, compose.FieldCC, compose.FieldBCC} {
		for i, in := range m.rows[f] {
			text := ""
			if i == 0 {
				text = f.String()
			}
			focused := cur.kind == slotRecipient && cur.field == f && cur.row == i
			lines = append(lines, label(text, focused)+in.View())
		}
	}

	lines = append(lines,
		label(m.tr.T("field_subject"), cur.kind == slotSubject)+m.subject.View(),
		"",
		m.body.View(),
		"",
		label(m.tr.T("field_attachments"), cur.kind == slotAttachments)+m.attachments.View(),
	)

	if !m.generating {
		lines = append(lines, theme.HelpStyle.Render(m.tr.T("compose_hints")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderQuickSelect() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.tr.T("compose_quick_select"))
	lines := []string{title}
	for i, opt := range m.quick.Options() {
		if i == 9 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s", theme.HelpStyle.Render(fmt.Sprintf("alt+%d", i+1)), opt.Label))
		lines = append(lines, theme.HelpStyle.Render("      "+opt.Email))
	}
	return theme.BorderStyle.Padding(0, 1).Width(quickWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

const quickWidth = 34

func (m Model) inputWidth() int {
	w := m.width - 14
	if len(m.quick.Options()) > 0 {
		w -= quickWidth + 4
	}
	return max(w, 20)
}

// SetSize updates the compose view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := m.inputWidth()
	for _, inputs := range m.rows {
		for i := range inputs {
			inputs[i].Width = w
		}
	}
	m.subject.Width = w
	m.attachments.Width = w
	m.body.SetWidth(w + 10)
	m.body.SetHeight(max(height-len(m.slots())-8, 4))
}
