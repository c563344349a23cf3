package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
)

func TestSlotTakeConsumesOnce(t *testing.T) {
	var h Handoff
	h.Compose.Stage(ComposePrefill{Subject: "Re: Hi", Content: "Thanks"})
	assert.True(t, h.Compose.Pending())

	got, ok := h.Compose.Take()
	require.True(t, ok)
	assert.Equal(t, "Thanks", got.Content)

	_, ok = h.Compose.Take()
	assert.False(t, ok)
	assert.False(t, h.Compose.Pending())
}

func TestSlotStageReplaces(t *testing.T) {
	var s Slot[ProposalHandoff]
	s.Stage(ProposalHandoff{Proposals: []model.OpportunityProposal{{Title: "A"}}})
	s.Stage(ProposalHandoff{Proposals: []model.OpportunityProposal{{Title: "B"}}})

	got, ok := s.Take()
	require.True(t, ok)
	require.Len(t, got.Proposals, 1)
	assert.Equal(t, "B", got.Proposals[0].Title)
}

func TestSlotClear(t *testing.T) {
	var s Slot[string]
	s.Stage("draft")
	s.Clear()

	v, ok := s.Take()
	assert.False(t, ok)
	assert.Empty(t, v)
}
