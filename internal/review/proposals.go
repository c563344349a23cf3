package review

import (
	"errors"

	"github.com/nhle/crmterm/internal/model"
)

// ErrNoProposals is returned when a generation produced no proposals.
var ErrNoProposals = errors.New("nothing to review: no proposals")

// ProposalSelection is the review state for generated opportunity
// proposals. Each proposal is selected independently; none is selected
// initially.
type ProposalSelection struct {
	proposals []model.OpportunityProposal
	analysis  string
	selected  []bool
}

// NewProposalSelection opens a selection over res.
func NewProposalSelection(res *model.OpportunityResult) (*ProposalSelection, error) {
	if res == nil || len(res.Opportunities) == 0 {
		return nil, ErrNoProposals
	}
	return &ProposalSelection{
		proposals: res.Opportunities,
		analysis:  res.Analysis,
		selected:  make([]bool, len(res.Opportunities)),
	}, nil
}

// Len returns the number of proposals.
func (s *ProposalSelection) Len() int { return len(s.proposals) }

// Proposal returns the i-th proposal.
func (s *ProposalSelection) Proposal(i int) model.OpportunityProposal { return s.proposals[i] }

// Analysis returns the generator's account-level summary.
func (s *ProposalSelection) Analysis() string { return s.analysis }

// Toggle flips the selection of proposal i. Out-of-range indices are
// ignored.
func (s *ProposalSelection) Toggle(i int) {
	if i >= 0 && i < len(s.selected) {
		s.selected[i] = !s.selected[i]
	}
}

// IsSelected reports whether proposal i is selected.
func (s *ProposalSelection) IsSelected(i int) bool {
	return i >= 0 && i < len(s.selected) && s.selected[i]
}

// Count returns how many proposals are selected.
func (s *ProposalSelection) Count() int {
	n := 0
	for _, sel := range s.selected {
		if sel {
			n++
		}
	}
	return n
}

// CanCreate reports whether "create selected" is enabled.
func (s *ProposalSelection) CanCreate() bool {
	return s.Count() > 0
}

// Selected returns the selected proposals in their original order.
func (s *ProposalSelection) Selected() []model.OpportunityProposal {
	out := make([]model.OpportunityProposal, 0, s.Count())
	for i, sel := range s.selected {
		if sel {
			out = append(out, s.proposals[i])
		}
	}
	return out
}
