package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIsolatesFailures(t *testing.T) {
	var companies, contacts []string

	report := Load(context.Background(),
		Call{Name: "companies", Run: func(context.Context) error {
			companies = []string{"Acme", "Globex"}
			return nil
		}},
		Call{Name: "opportunities", Run: func(context.Context) error {
			return errors.New("boom")
		}},
		Call{Name: "contacts", Run: func(context.Context) error {
			contacts = []string{"Ada"}
			return nil
		}},
	)

	assert.Equal(t, []string{"Acme", "Globex"}, companies)
	assert.Equal(t, []string{"Ada"}, contacts)
	assert.True(t, report.OK("companies"))
	assert.False(t, report.OK("opportunities"))
	assert.Equal(t, []string{"opportunities"}, report.Failed())
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "opportunities: boom")
}

func TestLoadRecoversPanics(t *testing.T) {
	var loaded bool

	report := Load(context.Background(),
		Call{Name: "bad", Run: func(context.Context) error { panic("nil map") }},
		Call{Name: "good", Run: func(context.Context) error {
			loaded = true
			return nil
		}},
	)

	assert.True(t, loaded)
	assert.Equal(t, []string{"bad"}, report.Failed())
	assert.Contains(t, report.Errors()["bad"].Error(), "panicked")
}

func TestLoadAllSucceed(t *testing.T) {
	report := Load(context.Background(),
		Call{Name: "a", Run: func(context.Context) error { return nil }},
	)
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Failed())
}
