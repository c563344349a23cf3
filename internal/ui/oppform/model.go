package oppform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/loader"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/theme"
)

// Backend is the part of the services the form needs.
type Backend interface {
	Companies(ctx context.Context) ([]model.Company, error)
	Statuses(ctx context.Context) ([]model.OpportunityStatus, error)
	Create(ctx context.Context, in model.OpportunityInput) (*model.Opportunity, error)
}

// CreatedMsg is dispatched when every staged proposal has been handled.
type CreatedMsg struct {
	Opportunities []model.Opportunity
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type optionsLoadedMsg struct {
	companies []model.Company
	statuses  []model.OpportunityStatus
	err       error
}

type createdInternalMsg struct {
	opportunity *model.Opportunity
	err         error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	company     int64
	status      int64
	value       string
	priority    model.DealPriority
	probability string
	closeDate   string
}

// Model is the opportunity create form. Staged proposals prefill it one
// at a time: after the first is created the next one is loaded.
type Model struct {
	backend   Backend
	tr        *i18n.Translator
	form      *huh.Form
	fb        *formBindings
	companies []model.Company
	statuses  []model.OpportunityStatus
	pending   []model.OpportunityProposal
	contactID *int64
	created   []model.Opportunity
	saving    bool
	errMsg    string
	width     int
	height    int
}

// New creates a new opportunity form model.
func New(backend Backend, tr *i18n.Translator, width, height int) Model {
	return Model{
		backend: backend,
		tr:      tr,
		fb:      &formBindings{priority: model.DealMedium},
		width:   width,
		height:  height,
	}
}

// Start loads the select options and then shows the form prefilled from
// the first staged proposal, if any.
func (m *Model) Start(h *nav.ProposalHandoff) tea.Cmd {
	*m.fb = formBindings{priority: model.DealMedium, probability: "50"}
	m.pending = nil
	m.contactID = nil
	m.created = nil
	m.form = nil
	m.errMsg = ""
	if h != nil {
		m.pending = h.Proposals
		m.contactID = h.ContactID
		if h.CompanyID != nil {
			m.fb.company = *h.CompanyID
		}
	}
	m.prefill()
	return m.loadOptions()
}

// Pending returns the proposals not yet turned into opportunities,
// including the one in the form.
func (m Model) Pending() []model.OpportunityProposal {
	return m.pending
}

// prefill copies the first pending proposal into the bindings.
func (m *Model) prefill() {
	if len(m.pending) == 0 {
		return
	}
	p := m.pending[0]
	m.fb.title = p.Title
	m.fb.description = p.Description
	if p.Reasoning != "" {
		m.fb.description = strings.TrimSpace(p.Description + "\n\n" + p.Reasoning)
	}
	m.fb.value = strconv.FormatFloat(float64(p.EstimatedValue), 'f', 2, 64)
	if p.Priority.Valid() {
		m.fb.priority = p.Priority
	}
}

func (m Model) loadOptions() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		var msg optionsLoadedMsg
		report := loader.Load(context.Background(),
			loader.Call{Name: "companies", Run: func(ctx context.Context) error {
				var err error
				msg.companies, err = b.Companies(ctx)
				return err
			}},
			loader.Call{Name: "statuses", Run: func(ctx context.Context) error {
				var err error
				msg.statuses, err = b.Statuses(ctx)
				return err
			}},
		)
		msg.err = report.Err()
		return msg
	}
}

// Update handles messages for the opportunity form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsLoadedMsg:
		m.companies = msg.companies
		m.statuses = msg.statuses
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_load_options"))
		}
		if m.fb.status == 0 {
			m.fb.status = defaultStatus(m.statuses)
		}
		m.form = m.buildForm()
		return m, m.form.Init()

	case createdInternalMsg:
		m.saving = false
		if msg.err != nil {
			m.errMsg = api.Message(msg.err, m.tr.T("error_create_opportunity"))
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.errMsg = ""
		m.created = append(m.created, *msg.opportunity)
		if len(m.pending) > 0 {
			m.pending = m.pending[1:]
		}
		if len(m.pending) == 0 {
			created := m.created
			return m, func() tea.Msg { return CreatedMsg{Opportunities: created} }
		}
		company := m.fb.company
		*m.fb = formBindings{company: company, status: defaultStatus(m.statuses), priority: model.DealMedium, probability: "50"}
		m.prefill()
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if m.form == nil || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saving = true
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the opportunity form.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	titleText := m.tr.T("oppform_title")
	if n := len(m.pending); n > 1 {
		titleText += "  " + theme.HelpStyle.Render(m.tr.TPlural("oppform_more_pending", n-1))
	}

	var body string
	switch {
	case m.form == nil:
		body = theme.HelpStyle.Render(m.tr.T("loading"))
	case m.saving:
		body = theme.HelpStyle.Render(m.tr.T("saving"))
	default:
		body = m.form.View()
	}

	content := titleStyle.Render(titleText) + "\n" + body
	if m.errMsg != "" {
		content += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(m.tr.T("field_title")).
				Value(&m.fb.title).
				Validate(validateRequired(m.tr.T("field_title"))),
			huh.NewText().
				Title(m.tr.T("field_description")).
				Value(&m.fb.description),
			m.companyField(),
			m.statusField(),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(m.tr.T("field_value")).
				Placeholder("0.00").
				Value(&m.fb.value).
				Validate(validateAmount),
			huh.NewSelect[model.DealPriority]().
				Title(m.tr.T("field_priority")).
				Options(
					huh.NewOption(m.tr.T("priority_low"), model.DealLow),
					huh.NewOption(m.tr.T("priority_medium"), model.DealMedium),
					huh.NewOption(m.tr.T("priority_high"), model.DealHigh),
					huh.NewOption(m.tr.T("priority_critical"), model.DealCritical),
				).
				Value(&m.fb.priority),
			huh.NewInput().
				Title(m.tr.T("field_probability")).
				Placeholder("0-100").
				Value(&m.fb.probability).
				Validate(validateProbability),
			huh.NewInput().
				Title(m.tr.T("field_close_date")).
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.closeDate).
				Validate(validateDate),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) companyField() huh.Field {
	opts := make([]huh.Option[int64], len(m.companies))
	for i, c := range m.companies {
		opts[i] = huh.NewOption(c.Name, c.ID)
	}
	return huh.NewSelect[int64]().
		Title(m.tr.T("field_company")).
		Options(opts...).
		Value(&m.fb.company).
		Validate(func(id int64) error {
			if id == 0 {
				return fmt.Errorf("%s", m.tr.T("validate_company"))
			}
			return nil
		})
}

func (m *Model) statusField() huh.Field {
	opts := make([]huh.Option[int64], len(m.statuses))
	for i, s := range m.statuses {
		opts[i] = huh.NewOption(s.Name, s.ID)
	}
	return huh.NewSelect[int64]().
		Title(m.tr.T("field_status")).
		Options(opts...).
		Value(&m.fb.status)
}

// Input converts the bound values into a create payload. The values have
// passed validation.
func (m Model) Input() model.OpportunityInput {
	value, _ := strconv.ParseFloat(strings.TrimSpace(m.fb.value), 64)
	prob, _ := strconv.Atoi(strings.TrimSpace(m.fb.probability))
	in := model.OpportunityInput{
		Title:             strings.TrimSpace(m.fb.title),
		Description:       m.fb.description,
		Company:           m.fb.company,
		Status:            m.fb.status,
		Value:             model.Money(value),
		Priority:          m.fb.priority,
		Probability:       prob,
		ExpectedCloseDate: strings.TrimSpace(m.fb.closeDate),
	}
	if m.contactID != nil {
		in.Contacts = []int64{*m.contactID}
	}
	return in
}

func (m Model) handleSubmit() tea.Cmd {
	in := m.Input()
	b := m.backend
	return func() tea.Msg {
		opp, err := b.Create(context.Background(), in)
		return createdInternalMsg{opportunity: opp, err: err}
	}
}

func defaultStatus(statuses []model.OpportunityStatus) int64 {
	for _, s := range statuses {
		if s.IsDefault {
			return s.ID
		}
	}
	if len(statuses) > 0 {
		return statuses[0].ID
	}
	return 0
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

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("value must be a non-negative number")
	}
	return nil
}

func validateProbability(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 0 || p > 100 {
		return fmt.Errorf("probability must be between 0 and 100")
	}
	return nil
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("expected close date is required")
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
