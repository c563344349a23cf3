// Package ai wraps the backend's generation endpoints: email compose, email
// reply and opportunity proposals. Every outcome is either usable content or
// a *GenerationError; callers never have to inspect a success flag.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
)

const aiPath = "/api/v1/ai/"

// Fallback messages used when the backend gave no reason of its own.
const (
	fallbackCompose  = "could not generate email content"
	fallbackReply    = "could not generate email reply"
	fallbackPropose  = "could not generate opportunity proposals"
	fallbackStatus   = "could not check AI service status"
	fallbackRequests = "could not list AI requests"
)

// ComposeRequest asks for a fresh outbound email body.
type ComposeRequest struct {
	Subject           string `json:"subject,omitempty"`
	CompanyID         *int64 `json:"company_id,omitempty"`
	ContactID         *int64 `json:"contact_id,omitempty"`
	OpportunityID     *int64 `json:"opportunity_id,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// ReplyRequest asks for a reply to an incoming email.
type ReplyRequest struct {
	IncomingEmailID   int64  `json:"incoming_email_id"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// OpportunityRequest asks for opportunity proposals for a company or contact.
type OpportunityRequest struct {
	CompanyID         *int64 `json:"company_id,omitempty"`
	ContactID         *int64 `json:"contact_id,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// response is the envelope every generation endpoint returns.
type response struct {
	Success   bool            `json:"success"`
	Content   string          `json:"content"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID *int64          `json:"request_id"`
}

// GenerationError is a failed generation. Message is always non-empty: it
// is the backend's reason when one was given, otherwise a fixed text for
// the operation.
type GenerationError struct {
	Kind    model.AIKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// Recorder keeps a local log of generation attempts.
type Recorder interface {
	RecordGeneration(ctx context.Context, g *model.AIGeneration) error
}

// Assistant calls the backend generation endpoints.
type Assistant struct {
	client   *api.Client
	recorder Recorder
	now      func() time.Time
}

// New creates an assistant over c. recorder may be nil.
func New(c *api.Client, recorder Recorder) *Assistant {
	return &Assistant{
		client:   c,
		recorder: recorder,
		now:      time.Now,
	}
}

// GenerateEmailContent returns a generated email body for req.
func (a *Assistant) GenerateEmailContent(ctx context.Context, req ComposeRequest) (string, error) {
	resp, err := a.generate(ctx, model.AIKindCompose, "email/compose/", req, fallbackCompose)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateEmailReply returns a generated reply to the incoming email named
// by req.
func (a *Assistant) GenerateEmailReply(ctx context.Context, req ReplyRequest) (string, error) {
	resp, err := a.generate(ctx, model.AIKindReply, "email/reply/", req, fallbackReply)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateOpportunityProposal returns proposals plus the backend's analysis.
func (a *Assistant) GenerateOpportunityProposal(
	ctx context.Context,
	req OpportunityRequest,
) (*model.OpportunityResult, error) {
	resp, err := a.generate(ctx, model.AIKindPropose, "opportunity/generate/", req, fallbackPropose)
	if err != nil {
		return nil, err
	}

	var result model.OpportunityResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		genErr := &GenerationError{
			Kind:    model.AIKindPropose,
			Message: fallbackPropose,
			Err:     fmt.Errorf("decoding proposals: %w", err),
		}
		a.record(ctx, model.AIKindPropose, resp.RequestID, "", genErr)
		return nil, genErr
	}

	a.record(ctx, model.AIKindPropose, resp.RequestID, result.Analysis, nil)
	return &result, nil
}

// CheckStatus reports the generation provider's state. It never fails: a
// failed call is reported as an "error" status carrying the reason.
func (a *Assistant) CheckStatus(ctx context.Context) model.AIStatus {
	var status model.AIStatus
	if err := a.client.Get(ctx, aiPath+"status/", nil, &status); err != nil {
		log.Printf("ai: status check failed: %v", err)
		return model.AIStatus{
			Success: false,
			Status:  "error",
			Error:   api.Message(err, fallbackStatus),
		}
	}
	return status
}

// ListRequests returns the backend's history of generation requests.
func (a *Assistant) ListRequests(ctx context.Context) ([]model.AIRequestRecord, error) {
	var out struct {
		Requests []model.AIRequestRecord `json:"requests"`
	}
	if err := a.client.Get(ctx, aiPath+"requests/", nil, &out); err != nil {
		return nil, &GenerationError{
			Message: api.Message(err, fallbackRequests),
			Err:     err,
		}
	}
	return out.Requests, nil
}

// generate posts body to endpoint and normalizes every failure shape into a
// GenerationError. Successful compose and reply results are logged here;
// proposal results are logged by the caller once decoded.
func (a *Assistant) generate(
	ctx context.Context,
	kind model.AIKind,
	endpoint string,
	body any,
	fallback string,
) (*response, error) {
	var resp response
	if err := a.client.Post(ctx, aiPath+endpoint, body, &resp); err != nil {
		genErr := &GenerationError{
			Kind:    kind,
			Message: api.Message(err, fallback),
			Err:     err,
		}
		a.record(ctx, kind, nil, "", genErr)
		return nil, genErr
	}

	if !resp.Success || !resp.hasPayload(kind) {
		msg := resp.Error
		if msg == "" {
			msg = fallback
		}
		genErr := &GenerationError{Kind: kind, Message: msg}
		a.record(ctx, kind, resp.RequestID, "", genErr)
		return nil, genErr
	}

	if kind != model.AIKindPropose {
		a.record(ctx, kind, resp.RequestID, resp.Content, nil)
	}
	return &resp, nil
}

func (r *response) hasPayload(kind model.AIKind) bool {
	if kind == model.AIKindPropose {
		return len(r.Data) > 0 && string(r.Data) != "null"
	}
	return r.Content != ""
}

func (a *Assistant) record(
	ctx context.Context,
	kind model.AIKind,
	requestID *int64,
	content string,
	genErr *GenerationError,
) {
	if a.recorder == nil {
		return
	}

	g := &model.AIGeneration{
		Kind:      kind,
		RequestID: requestID,
		Success:   genErr == nil,
		Content:   content,
		CreatedAt: a.now(),
	}
	if genErr != nil {
		g.Error = genErr.Message
	}

	if err := a.recorder.RecordGeneration(ctx, g); err != nil {
		log.Printf("ai: recording %s generation: %v", kind, err)
	}
}
