package nav

import "github.com/nhle/crmterm/internal/model"

// ComposePrefill seeds the compose view, typically with approved generated
// content or a reply to an incoming email.
type ComposePrefill struct {
	Subject       string
	Content       string
	To            []model.EmailRecipient
	Cc            []model.EmailRecipient
	Bcc           []model.EmailRecipient
	CompanyID     *int64
	ContactID     *int64
	OpportunityID *int64
}

// ProposalHandoff carries the proposals selected in the proposal gate to
// the opportunity form.
type ProposalHandoff struct {
	Proposals []model.OpportunityProposal
	CompanyID *int64
	ContactID *int64
}

// Handoff is the set of slots shared by all views.
type Handoff struct {
	Compose   Slot[ComposePrefill]
	Proposals Slot[ProposalHandoff]

	// Tab selects the communications tab to show on the next visit.
	Tab Slot[CommTab]
}

// CommTab is a tab of the communications view.
type CommTab int

const (
	TabInbox CommTab = iota
	TabSent
	TabDrafts
	TabTemplates
)
