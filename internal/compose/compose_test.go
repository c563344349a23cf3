package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
	"github.com/nhle/crmterm/internal/nav"
)

func TestRecipientFloor(t *testing.T) {
	d := NewDraft()
	require.Len(t, d.Rows(FieldTo), 1)

	assert.False(t, d.RemoveRow(FieldTo, 0), "the last To row stays")
	assert.Len(t, d.Rows(FieldTo), 1)

	d.AddRow(FieldTo)
	assert.True(t, d.RemoveRow(FieldTo, 1))
	assert.Len(t, d.Rows(FieldTo), 1)

	d.AddRow(FieldCC)
	d.AddRow(FieldBCC)
	assert.True(t, d.RemoveRow(FieldCC, 0))
	assert.True(t, d.RemoveRow(FieldBCC, 0))
	assert.Empty(t, d.Rows(FieldCC))
	assert.Empty(t, d.Rows(FieldBCC))
	assert.False(t, d.RemoveRow(FieldCC, 0))
}

func TestRequestFiltersEmptyRows(t *testing.T) {
	d := NewDraft()
	d.Subject = " Offer "
	d.Content = "Body"
	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: " a@x.com "})
	d.AddRow(FieldTo)
	d.AddRow(FieldCC)

	req := d.Request()
	assert.Equal(t, "Offer", req.Subject)
	assert.Equal(t, []model.EmailRecipient{{Email: "a@x.com"}}, req.Recipients)
	assert.Empty(t, req.CC)
	assert.NotNil(t, req.BCC)
}

func TestSetEmailKeepsName(t *testing.T) {
	d := NewDraft()
	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "ada@x.com", Name: "Ada Lovelace"})

	d.SetEmail(FieldTo, 0, "ada@lovelace.org")
	assert.Equal(t, []model.EmailRecipient{{Email: "ada@lovelace.org", Name: "Ada Lovelace"}}, d.Rows(FieldTo))

	d.SetEmail(FieldTo, 3, "ignored@x.com")
	assert.Len(t, d.Rows(FieldTo), 1)
}

func TestCloneSharesNothing(t *testing.T) {
	company := int64(7)
	d := NewDraft()
	d.Subject = "Offer"
	d.CompanyID = &company
	d.Attachments = []string{"a.pdf"}
	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "a@x.com"})
	d.Append(FieldCC, model.EmailRecipient{Email: "c@x.com"})

	c := d.Clone()
	d.Subject = "Changed"
	*d.CompanyID = 9
	d.Attachments[0] = "b.pdf"
	d.SetEmail(FieldTo, 0, "z@x.com")
	d.SetEmail(FieldCC, 0, "y@x.com")

	assert.Equal(t, "Offer", c.Subject)
	assert.Equal(t, int64(7), *c.CompanyID)
	assert.Equal(t, []string{"a.pdf"}, c.Attachments)
	assert.Equal(t, "a@x.com", c.Rows(FieldTo)[0].Email)
	assert.Equal(t, "c@x.com", c.Rows(FieldCC)[0].Email)
}

func TestQuickSelectAppendsRow(t *testing.T) {
	contacts := []model.Contact{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com"},
		{ID: 2, FirstName: "Bob", LastName: "Byte", Email: "b@x.com"},
		{ID: 3, FirstName: "No", LastName: "Mail"},
	}
	qs := NewQuickSelect(contacts)

	opts := qs.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, QuickOption{Label: "Ada Lovelace", Email: "a@x.com"}, opts[0])
	assert.Equal(t, QuickOption{Label: "Bob Byte", Email: "b@x.com"}, opts[1])

	d := NewDraft()
	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "c@x.com"})
	qs.Pick(d, opts[1])
	rows := d.Rows(FieldTo)
	require.Len(t, rows, 2)
	assert.Equal(t, "c@x.com", rows[0].Email)
	assert.Equal(t, "b@x.com", rows[1].Email)

	// A blank row does not absorb the pick.
	d = NewDraft()
	qs.Pick(d, opts[0])
	rows = d.Rows(FieldTo)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Email)
	assert.Equal(t, "a@x.com", rows[1].Email)
}

func TestQuickSelectFilter(t *testing.T) {
	qs := NewQuickSelect([]model.Contact{
		{FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com"},
		{FirstName: "Bob", LastName: "Byte", Email: "b@x.com"},
	})

	got := qs.Filter("lovl")
	require.Len(t, got, 1)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Len(t, qs.Filter(""), 2)
}

func TestValidate(t *testing.T) {
	d := NewDraft()
	err := d.Validate()
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.ErrorIs(t, err, ErrNoSubject)
	assert.ErrorIs(t, err, ErrNoContent)

	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "not-an-address"})
	d.Subject, d.Content = "s", "c"
	require.Error(t, d.Validate())

	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "a@x.com"})
	assert.NoError(t, d.Validate())
}

func TestApplyTemplateAndPrefill(t *testing.T) {
	d := NewDraft()
	d.ApplyTemplate(model.EmailTemplate{ID: 4, Subject: "Welcome", Content: "Hello"})
	assert.Equal(t, "Welcome", d.Subject)
	require.NotNil(t, d.TemplateID)
	assert.Equal(t, int64(4), *d.TemplateID)

	company := int64(9)
	d.ApplyPrefill(nav.ComposePrefill{
		Subject:   "Re: Hi",
		Content:   "Thanks",
		To:        []model.EmailRecipient{{Email: "s@x.com", Name: "Sender"}},
		CompanyID: &company,
	})
	assert.Equal(t, "Re: Hi", d.Subject)
	assert.Equal(t, "Thanks", d.Content)
	assert.Equal(t, []model.EmailRecipient{{Email: "s@x.com", Name: "Sender"}}, d.Rows(FieldTo))
	assert.Equal(t, &company, d.CompanyID)
}

type fakeMailer struct {
	sendErr  error
	sent     []model.SendEmailRequest
	drafts   []model.SendEmailRequest
	uploaded []string
}

func (m *fakeMailer) Send(_ context.Context, req model.SendEmailRequest) (*model.EmailMessage, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, req)
	return &model.EmailMessage{ID: 1, Status: model.EmailSent}, nil
}

func (m *fakeMailer) SaveDraft(_ context.Context, req model.SendEmailRequest) (*model.EmailMessage, error) {
	m.drafts = append(m.drafts, req)
	return &model.EmailMessage{ID: 2, Status: model.EmailDraft}, nil
}

func (m *fakeMailer) UploadAttachment(_ context.Context, path string) (*model.Attachment, error) {
	m.uploaded = append(m.uploaded, path)
	return &model.Attachment{FileName: path, FileSize: 3}, nil
}

func readyDraft() *Draft {
	d := NewDraft()
	d.Subject, d.Content = "Offer", "Body"
	d.SetRow(FieldTo, 0, model.EmailRecipient{Email: "a@x.com"})
	return d
}

func TestSubmitRedirects(t *testing.T) {
	m := &fakeMailer{}
	d := readyDraft()
	d.Attachments = []string{"quote.pdf"}

	out, err := Submit(context.Background(), m, d, ActionSend)
	require.NoError(t, err)
	assert.Equal(t, nav.TabSent, out.Tab)
	require.Len(t, m.sent, 1)
	require.Len(t, m.sent[0].Attachments, 1)
	assert.Equal(t, "quote.pdf", m.sent[0].Attachments[0].FileName)

	out, err = Submit(context.Background(), m, readyDraft(), ActionSaveDraft)
	require.NoError(t, err)
	assert.Equal(t, nav.TabDrafts, out.Tab)
	assert.Len(t, m.drafts, 1)
}

func TestSubmitFailureStaysLocal(t *testing.T) {
	m := &fakeMailer{sendErr: errors.New("dial tcp: refused")}

	out, err := Submit(context.Background(), m, readyDraft(), ActionSend)
	assert.Nil(t, out)

	var subErr *SubmitError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "could not send the email", subErr.Message)

	_, err = Submit(context.Background(), m, NewDraft(), ActionSaveDraft)
	require.ErrorAs(t, err, &subErr)
	assert.NotContains(t, subErr.Message, "\n")
	assert.Empty(t, m.drafts)
}
