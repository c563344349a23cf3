package gate

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/i18n"
	"github.com/nhle/crmterm/internal/keys"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/review"
)

func newModal(t *testing.T) Model {
	t.Helper()
	return New(keys.DefaultKeyMap(), i18n.Must("en"), 100, 40)
}

func press(m Model, k tea.KeyMsg) (Model, tea.Msg) {
	m, cmd := m.Update(k)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestApproveUntouchedReturnsContent(t *testing.T) {
	m := newModal(t)
	require.NoError(t, m.Open("Reply", "Dear Ada,\nThanks."))

	m, msg := press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	require.IsType(t, ApprovedMsg{}, msg)
	assert.Equal(t, "Dear Ada,\nThanks.", msg.(ApprovedMsg).Content)
	assert.True(t, m.IsOpen(), "approve leaves closing to the caller")
}

func TestEditThenApprove(t *testing.T) {
	m := newModal(t)
	require.NoError(t, m.Open("Reply", "Hello"))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	m, msg := press(m, tea.KeyMsg{Type: tea.KeyCtrlA})

	require.IsType(t, ApprovedMsg{}, msg)
	assert.Equal(t, "Hello!", msg.(ApprovedMsg).Content)
}

func TestRejectDiscardsEdits(t *testing.T) {
	m := newModal(t)
	require.NoError(t, m.Open("Reply", "Hello"))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	m, msg := press(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.IsType(t, RejectedMsg{}, msg)
	assert.False(t, m.IsOpen())

	require.NoError(t, m.Open("Reply", "Hello"))
	assert.Equal(t, "Hello", m.Content())
}

func TestOpenRefusesEmptyContent(t *testing.T) {
	m := newModal(t)
	assert.ErrorIs(t, m.Open("Reply", "  \n"), review.ErrEmptyContent)
	assert.False(t, m.IsOpen())
}

func TestCopyUsesClipboard(t *testing.T) {
	m := newModal(t)
	var copied string
	m.copyText = func(s string) error { copied = s; return nil }
	require.NoError(t, m.Open("Compose", "Body"))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Body", copied)
	assert.Contains(t, m.View(), "Copied")

	m.copyText = func(string) error { return errors.New("no clipboard") }
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Contains(t, m.View(), "no clipboard")
}

func TestProposalGate(t *testing.T) {
	m := NewProposals(keys.DefaultKeyMap(), i18n.Must("en"), 100, 40)
	require.Error(t, m.Open(&model.OpportunityResult{}))

	require.NoError(t, m.Open(&model.OpportunityResult{
		Analysis: "Two openings.",
		Opportunities: []model.OpportunityProposal{
			{Title: "Support plan", Priority: model.DealHigh, EstimatedValue: 1200},
			{Title: "Training", Priority: model.DealLow, EstimatedValue: 300},
		},
	}))

	// Nothing selected: create is disabled.
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.Selection().IsSelected(1))

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd().(CreateSelectedMsg)
	require.Len(t, msg.Proposals, 1)
	assert.Equal(t, "Training", msg.Proposals[0].Title)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.IsType(t, DismissedMsg{}, cmd())
}
