package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/crmterm/internal/credential"
	"github.com/nhle/crmterm/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestSession returns a signed-out session over an in-memory keyring.
// Clearing it also drops the profile cached in profile, which may be nil.
func NewTestSession(profile credential.ProfileCache) *credential.Session {
	return credential.NewSession(credential.New(keyring.NewArrayKeyring(nil)), profile)
}
