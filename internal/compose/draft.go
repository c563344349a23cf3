// Package compose holds the state of an outgoing email while it is being
// written, and submits it as a send or as a saved draft.
package compose

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
	"github.com/nhle/crmterm/internal/render"
)

// Field selects one of the three recipient lists.
type Field int

const (
	FieldTo Field = iota
	FieldCC
	FieldBCC
)

func (f Field) String() string {
	switch f {
	case FieldTo:
		return "To"
	case FieldCC:
		return "Cc"
	case FieldBCC:
		return "Bcc"
	}
	return "?"
}

// Validation errors returned by Draft.Validate.
var (
	ErrNoRecipients = errors.New("at least one recipient is required")
	ErrNoSubject    = errors.New("subject is required")
	ErrNoContent    = errors.New("content is required")
)

// Draft is an email being composed. The To list always has at least one
// row, possibly empty; Cc and Bcc may have none.
type Draft struct {
	Subject string
	Content string

	CompanyID     *int64
	ContactID     *int64
	OpportunityID *int64
	TemplateID    *int64

	// Attachments are local file paths, uploaded on submit.
	Attachments []string

	to  []model.EmailRecipient
	cc  []model.EmailRecipient
	bcc []model.EmailRecipient
}

// NewDraft returns an empty draft with one blank To row.
func NewDraft() *Draft {
	return &Draft{to: []model.EmailRecipient{{}}}
}

func (d *Draft) list(f Field) *[]model.EmailRecipient {
	switch f {
	case FieldTo:
		return &d.to
	case FieldCC:
		return &d.cc
	case FieldBCC:
		return &d.bcc
	}
	panic(fmt.Sprintf("compose: unknown field %d", int(f)))
}

// Rows returns a copy of the rows of f, blank rows included.
func (d *Draft) Rows(f Field) []model.EmailRecipient {
	rows := *d.list(f)
	out := make([]model.EmailRecipient, len(rows))
	copy(out, rows)
	return out
}

// AddRow appends a blank row to f.
func (d *Draft) AddRow(f Field) {
	l := d.list(f)
	*l = append(*l, model.EmailRecipient{})
}

// Append adds r as a new row of f. Existing rows, blank or not, are kept.
func (d *Draft) Append(f Field, r model.EmailRecipient) {
	l := d.list(f)
	*l = append(*l, r)
}

// SetRow replaces row i of f. Out-of-range indices are ignored.
func (d *Draft) SetRow(f Field, i int, r model.EmailRecipient) {
	l := d.list(f)
	if i >= 0 && i < len(*l) {
		(*l)[i] = r
	}
}

// SetEmail replaces the address of row i of f and keeps its name.
func (d *Draft) SetEmail(f Field, i int, email string) {
	l := d.list(f)
	if i >= 0 && i < len(*l) {
		(*l)[i].Email = email
	}
}

// Clone returns a deep copy that shares nothing with d.
func (d *Draft) Clone() *Draft {
	c := *d
	c.CompanyID = cloneID(d.CompanyID)
	c.ContactID = cloneID(d.ContactID)
	c.OpportunityID = cloneID(d.OpportunityID)
	c.TemplateID = cloneID(d.TemplateID)
	c.Attachments = slices.Clone(d.Attachments)
	c.to = slices.Clone(d.to)
	c.cc = slices.Clone(d.cc)
	c.bcc = slices.Clone(d.bcc)
	return &c
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// RemoveRow deletes row i of f. The last To row cannot be removed; it
// reports whether a row was removed.
func (d *Draft) RemoveRow(f Field, i int) bool {
	l := d.list(f)
	if i < 0 || i >= len(*l) {
		return false
	}
	if f == FieldTo && len(*l) <= 1 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// ApplyTemplate copies the template's subject and content into the draft.
func (d *Draft) ApplyTemplate(t model.EmailTemplate) {
	id := t.ID
	d.TemplateID = &id
	d.Subject = t.Subject
	d.Content = t.Content
}

// ApplyPrefill seeds the draft from a hand-off. Given recipients replace
// the To list; empty fields leave the draft untouched.
func (d *Draft) ApplyPrefill(p nav.ComposePrefill) {
	if p.Subject != "" {
		d.Subject = p.Subject
	}
	if p.Content != "" {
		d.Content = p.Content
	}
	if len(p.To) > 0 {
		d.to = append([]model.EmailRecipient(nil), p.To...)
	}
	if len(p.Cc) > 0 {
		d.cc = append([]model.EmailRecipient(nil), p.Cc...)
	}
	if len(p.Bcc) > 0 {
		d.bcc = append([]model.EmailRecipient(nil), p.Bcc...)
	}
	if p.CompanyID != nil {
		d.CompanyID = p.CompanyID
	}
	if p.ContactID != nil {
		d.ContactID = p.ContactID
	}
	if p.OpportunityID != nil {
		d.OpportunityID = p.OpportunityID
	}
}

// Validate checks what the backend would reject before any request.
func (d *Draft) Validate() error {
	var errs []error
	if len(filled(d.to)) == 0 {
		errs = append(errs, ErrNoRecipients)
	}
	for _, f := range []Field{FieldTo, FieldCC, FieldBCC} {
		for _, r := range filled(*d.list(f)) {
			if _, err := mail.ParseAddress(r.Email); err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid address %q", f, r.Email))
			}
		}
	}
	if strings.TrimSpace(d.Subject) == "" {
		errs = append(errs, ErrNoSubject)
	}
	if strings.TrimSpace(d.Content) == "" {
		errs = append(errs, ErrNoContent)
	}
	return errors.Join(errs...)
}

// Request builds the send payload. Rows with an empty address are left out.
func (d *Draft) Request() model.SendEmailRequest {
	return model.SendEmailRequest{
		Subject:       strings.TrimSpace(d.Subject),
		Content:       render.OutgoingContent(d.Content),
		Recipients:    filled(d.to),
		CC:            filled(d.cc),
		BCC:           filled(d.bcc),
		TemplateID:    d.TemplateID,
		CompanyID:     d.CompanyID,
		ContactID:     d.ContactID,
		OpportunityID: d.OpportunityID,
	}
}

func filled(rows []model.EmailRecipient) []model.EmailRecipient {
	out := make([]model.EmailRecipient, 0, len(rows))
	for _, r := range rows {
		email := strings.TrimSpace(r.Email)
		if email == "" {
			continue
		}
		out = append(out, model.EmailRecipient{Email: email, Name: strings.TrimSpace(r.Name)})
	}
	return out
}
