package compose

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nhle/crmterm/internal/model"
)

// QuickOption is one contact offered for one-key addressing.
type QuickOption struct {
	Label string
	Email string
}

// QuickSelect lists the contacts of the selected company that have an
// email address, labelled by full name.
type QuickSelect struct {
	options []QuickOption
}

// NewQuickSelect builds the option list from a company's contacts.
func NewQuickSelect(contacts []model.Contact) *QuickSelect {
	qs := &QuickSelect{}
	for _, c := range contacts {
		email := strings.TrimSpace(c.Email)
		if email == "" {
			continue
		}
		label := c.FullName()
		if label == "" {
			label = email
		}
		qs.options = append(qs.options, QuickOption{Label: label, Email: email})
	}
	return qs
}

// Options returns every option in contact order.
func (qs *QuickSelect) Options() []QuickOption {
	return qs.options
}

// Len implements fuzzy.Source.
func (qs *QuickSelect) Len() int { return len(qs.options) }

// String implements fuzzy.Source; both name and address are searchable.
func (qs *QuickSelect) String(i int) string {
	return qs.options[i].Label + " " + qs.options[i].Email
}

// Filter returns the options matching query, best match first. An empty
// query returns all options.
func (qs *QuickSelect) Filter(query string) []QuickOption {
	query = strings.TrimSpace(query)
	if query == "" {
		return qs.options
	}
	matches := fuzzy.FindFrom(query, qs)
	out := make([]QuickOption, len(matches))
	for i, m := range matches {
		out[i] = qs.options[m.Index]
	}
	return out
}

// Pick appends the option to the draft's To list as a new row.
func (qs *QuickSelect) Pick(d *Draft, opt QuickOption) {
	d.Append(FieldTo, model.EmailRecipient{Email: opt.Email, Name: opt.Label})
}
