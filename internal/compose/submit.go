package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
)

// Action is how a draft leaves the compose view.
type Action int

const (
	ActionSend Action = iota
	ActionSaveDraft
)

// RedirectTab is the communications tab shown after a successful action.
func (a Action) RedirectTab() nav.CommTab {
	switch a {
	case ActionSend:
		return nav.TabSent
	case ActionSaveDraft:
		return nav.TabDrafts
	}
	return nav.TabInbox
}

// Mailer is the part of the messages service a submit needs.
type Mailer interface {
	Send(ctx context.Context, req model.SendEmailRequest) (*model.EmailMessage, error)
	SaveDraft(ctx context.Context, req model.SendEmailRequest) (*model.EmailMessage, error)
	UploadAttachment(ctx context.Context, path string) (*model.Attachment, error)
}

// Outcome is the result of a successful submit.
type Outcome struct {
	Message *model.EmailMessage
	Tab     nav.CommTab
}

// SubmitError is a failed submit. Message is the one-line text for the
// compose view's error banner.
type SubmitError struct {
	Action  Action
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

// Submit validates the draft, uploads its attachments and then sends it or
// saves it as a draft. The draft is not modified.
func Submit(ctx context.Context, m Mailer, d *Draft, action Action) (*Outcome, error) {
	fallback := "could not send the email"
	if action == ActionSaveDraft {
		fallback = "could not save the draft"
	}

	if err := d.Validate(); err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", "; ")
		return nil, &SubmitError{Action: action, Message: msg, Err: err}
	}

	req := d.Request()
	for _, path := range d.Attachments {
		att, err := m.UploadAttachment(ctx, path)
		if err != nil {
			return nil, &SubmitError{
				Action:  action,
				Message: api.Message(err, fmt.Sprintf("could not upload %s", path)),
				Err:     err,
			}
		}
		req.Attachments = append(req.Attachments, *att)
	}

	var (
		msg *model.EmailMessage
		err error
	)
	switch action {
	case ActionSend:
		msg, err = m.Send(ctx, req)
	case ActionSaveDraft:
		msg, err = m.SaveDraft(ctx, req)
	default:
		return nil, fmt.Errorf("unknown compose action %d", int(action))
	}
	if err != nil {
		return nil, &SubmitError{Action: action, Message: api.Message(err, fallback), Err: err}
	}

	return &Outcome{Message: msg, Tab: action.RedirectTab()}, nil
}
