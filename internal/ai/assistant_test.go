package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

type memRecorder struct {
	mu  sync.Mutex
	log []model.AIGeneration
}

func (r *memRecorder) RecordGeneration(_ context.Context, g *model.AIGeneration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, *g)
	return nil
}

func newTestAssistant(t *testing.T, h http.HandlerFunc) (*Assistant, *memRecorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &memRecorder{}
	return New(api.NewClient(model.APIConfig{BaseURL: srv.URL}, nil), rec), rec
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestGenerateEmailContentSuccess(t *testing.T) {
	var path string
	a, rec := newTestAssistant(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = io.WriteString(w, `{"success": true, "content": "Dear Ada,", "request_id": 4}`)
	})

	content, err := a.GenerateEmailContent(context.Background(), ComposeRequest{Subject: "Offer"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Ada,", content)
	assert.Equal(t, "/api/v1/ai/email/compose/", path)

	require.Len(t, rec.log, 1)
	assert.True(t, rec.log[0].Success)
	assert.Equal(t, model.AIKindCompose, rec.log[0].Kind)
	require.NotNil(t, rec.log[0].RequestID)
	assert.Equal(t, int64(4), *rec.log[0].RequestID)
}

func TestGenerationFailureCarriesBackendError(t *testing.T) {
	a, rec := newTestAssistant(t, reply(http.StatusOK, `{"success": false, "error": "X"}`))

	_, err := a.GenerateEmailReply(context.Background(), ReplyRequest{IncomingEmailID: 3})
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
	assert.Equal(t, "X", err.Error())

	require.Len(t, rec.log, 1)
	assert.False(t, rec.log[0].Success)
	assert.Equal(t, "X", rec.log[0].Error)
}

func TestGenerationErrorFromHTTPFailureBody(t *testing.T) {
	a, _ := newTestAssistant(t, reply(http.StatusServiceUnavailable, `{"error": "provider down"}`))

	_, err := a.GenerateEmailContent(context.Background(), ComposeRequest{})
	require.Error(t, err)
	assert.Equal(t, "provider down", err.Error())
}

func TestGenerationErrorFallbackWithoutBody(t *testing.T) {
	srv := httptest.NewServer(reply(http.StatusOK, `{}`))
	srv.Close()
	a := New(api.NewClient(model.APIConfig{BaseURL: srv.URL}, nil), nil)

	_, err := a.GenerateEmailReply(context.Background(), ReplyRequest{IncomingEmailID: 1})
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.NotEmpty(t, genErr.Message)
	assert.Equal(t, fallbackReply, genErr.Message)
	assert.NotNil(t, genErr.Unwrap())
}

func TestEmptyContentIsFailure(t *testing.T) {
	a, _ := newTestAssistant(t, reply(http.StatusOK, `{"success": true, "content": ""}`))

	_, err := a.GenerateEmailContent(context.Background(), ComposeRequest{})
	require.Error(t, err)
	assert.Equal(t, fallbackCompose, err.Error())
}

func TestGenerateOpportunityProposal(t *testing.T) {
	a, rec := newTestAssistant(t, reply(http.StatusOK, `{
		"success": true,
		"data": {
			"opportunities": [
				{"title": "Renewal", "description": "Annual", "estimated_value": 12000, "priority": "high", "reasoning": "Due soon"},
				{"title": "Upsell", "description": "Seats", "estimated_value": "500.50", "priority": "low", "reasoning": "Growth"}
			],
			"analysis": "Healthy account"
		}
	}`))

	res, err := a.GenerateOpportunityProposal(context.Background(), OpportunityRequest{})
	require.NoError(t, err)
	require.Len(t, res.Opportunities, 2)
	assert.Equal(t, model.DealHigh, res.Opportunities[0].Priority)
	assert.Equal(t, model.Money(500.50), res.Opportunities[1].EstimatedValue)
	assert.Equal(t, "Healthy account", res.Analysis)

	require.Len(t, rec.log, 1)
	assert.Equal(t, model.AIKindPropose, rec.log[0].Kind)
	assert.True(t, rec.log[0].Success)
}

func TestOpportunityProposalKeepsMixedPriorities(t *testing.T) {
	a, rec := newTestAssistant(t, reply(http.StatusOK, `{
		"success": true,
		"data": {
			"opportunities": [
				{"title": "Renewal", "estimated_value": 12000, "priority": "high"},
				{"title": "Rescue", "estimated_value": 3000, "priority": "urgent"},
				{"title": "Pilot", "estimated_value": 800}
			],
			"analysis": "Mixed"
		}
	}`))

	res, err := a.GenerateOpportunityProposal(context.Background(), OpportunityRequest{})
	require.NoError(t, err)
	require.Len(t, res.Opportunities, 3)
	assert.Equal(t, model.DealHigh, res.Opportunities[0].Priority)
	assert.Equal(t, "Rescue", res.Opportunities[1].Title)
	assert.Equal(t, model.DealMedium, res.Opportunities[1].Priority)
	assert.Equal(t, model.DealMedium, res.Opportunities[2].Priority)

	require.Len(t, rec.log, 1)
	assert.True(t, rec.log[0].Success)
}

func TestOpportunityProposalMissingData(t *testing.T) {
	a, _ := newTestAssistant(t, reply(http.StatusOK, `{"success": true, "data": null}`))

	_, err := a.GenerateOpportunityProposal(context.Background(), OpportunityRequest{})
	require.Error(t, err)
	assert.Equal(t, fallbackPropose, err.Error())
}

func TestCheckStatusNeverFails(t *testing.T) {
	a, _ := newTestAssistant(t, reply(http.StatusInternalServerError, `{"error": "no key"}`))

	st := a.CheckStatus(context.Background())
	assert.False(t, st.Success)
	assert.Equal(t, "error", st.Status)
	assert.Equal(t, "no key", st.Error)
}

func TestListRequests(t *testing.T) {
	a, _ := newTestAssistant(t, reply(http.StatusOK, `{"requests": [{"id": 1, "request_type": "email_compose", "status": "completed"}]}`))

	reqs, err := a.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "email_compose", reqs[0].RequestType)
}
