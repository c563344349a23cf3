package credential

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfile struct{ cleared int }

func (p *fakeProfile) ClearUser(context.Context) error {
	p.cleared++
	return nil
}

func TestSessionTokenLifecycle(t *testing.T) {
	profile := &fakeProfile{}
	s := NewSession(New(keyring.NewArrayKeyring(nil)), profile)

	assert.False(t, s.SignedIn())

	require.NoError(t, s.SetToken("tok-1"))
	assert.True(t, s.SignedIn())

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	require.NoError(t, s.Clear())
	assert.False(t, s.SignedIn())
	assert.Equal(t, 1, profile.cleared)

	// Clearing twice is harmless.
	require.NoError(t, s.Clear())
}
