package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/store"
	"github.com/nhle/crmterm/tests/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestUserProfileLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveUser(ctx, model.User{ID: 1, Username: "ada", FirstName: "Ada"}))
	require.NoError(t, s.SaveUser(ctx, model.User{ID: 2, Username: "bob"}))

	u, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)

	require.NoError(t, s.ClearUser(ctx))
	_, err = s.GetUser(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIncomingEmailCache(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveIncomingEmails(ctx, []model.IncomingEmail{
		{ID: 1, Subject: "old", Status: model.IncomingRead, ReceivedAt: now.Add(-time.Hour)},
		{ID: 2, Subject: "new", Status: model.IncomingUnread, ReceivedAt: now,
			Recipients: []model.EmailRecipient{{Email: "me@x.com"}}},
	}))

	got, err := s.GetIncomingEmails(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Subject)
	assert.Equal(t, "me@x.com", got[0].Recipients[0].Email)

	require.NoError(t, s.SetIncomingStatus(ctx, 2, model.IncomingRead))
	assert.Error(t, s.SetIncomingStatus(ctx, 2, model.IncomingStatus("bogus")))

	got, err = s.GetIncomingEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.IncomingRead, got[0].Status)

	// A refresh replaces the whole cache.
	require.NoError(t, s.SaveIncomingEmails(ctx, []model.IncomingEmail{{ID: 3, Status: model.IncomingUnread, ReceivedAt: now}}))
	got, err = s.GetIncomingEmails(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestGenerationLog(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reqID := int64(42)

	require.NoError(t, s.RecordGeneration(ctx, &model.AIGeneration{
		Kind: model.AIKindCompose, Success: true, Content: "Dear Ada", RequestID: &reqID, CreatedAt: base,
	}))
	require.NoError(t, s.RecordGeneration(ctx, &model.AIGeneration{
		Kind: model.AIKindReply, Error: "quota", CreatedAt: base.Add(time.Minute),
	}))

	all, err := s.GetGenerations(ctx, store.GenerationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.AIKindReply, all[0].Kind)
	assert.False(t, all[0].Success)
	assert.Nil(t, all[0].RequestID)
	assert.NotEmpty(t, all[0].ID)

	kind := model.AIKindCompose
	compose, err := s.GetGenerations(ctx, store.GenerationFilter{Kind: &kind, SuccessOnly: true, Limit: 5})
	require.NoError(t, err)
	require.Len(t, compose, 1)
	require.NotNil(t, compose[0].RequestID)
	assert.Equal(t, int64(42), *compose[0].RequestID)
	assert.Equal(t, "Dear Ada", compose[0].Content)
}
