package model

import "time"

// EmailRecipient is one address on an outgoing message.
type EmailRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// EmailMessage is an outgoing message, either a draft or already sent.
type EmailMessage struct {
	ID           int64            `json:"id"`
	Subject      string           `json:"subject"`
	Content      string           `json:"content"`
	Sender       string           `json:"sender"`
	Recipients   []EmailRecipient `json:"recipients"`
	CC           []EmailRecipient `json:"cc,omitempty"`
	BCC          []EmailRecipient `json:"bcc,omitempty"`
	Status       EmailStatus      `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Company      *int64           `json:"company,omitempty"`
	CompanyName  string           `json:"company_name,omitempty"`
	Contact      *int64           `json:"contact,omitempty"`
	ContactName  string           `json:"contact_name,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	SentAt       *time.Time       `json:"sent_at,omitempty"`
}

// Attachment is a file already uploaded to the backend and ready to be
// referenced from a send request.
type Attachment struct {
	FileName    string `json:"file_name"`
	FileContent string `json:"file_content"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

// SendEmailRequest is the payload shared by send and save-draft.
type SendEmailRequest struct {
	Subject       string           `json:"subject"`
	Content       string           `json:"content"`
	Recipients    []EmailRecipient `json:"recipients"`
	CC            []EmailRecipient `json:"cc"`
	BCC           []EmailRecipient `json:"bcc"`
	Attachments   []Attachment     `json:"attachments,omitempty"`
	TemplateID    *int64           `json:"template_id,omitempty"`
	CompanyID     *int64           `json:"company_id,omitempty"`
	ContactID     *int64           `json:"contact_id,omitempty"`
	OpportunityID *int64           `json:"opportunity_id,omitempty"`
}

// EmailTemplate is a reusable subject/body pair.
type EmailTemplate struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	Variables map[string]any `json:"variables,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EmailTemplateInput is the create/update payload for a template.
type EmailTemplateInput struct {
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	Variables map[string]any `json:"variables,omitempty"`
}

// IncomingEmail is a message the backend pulled from the user's IMAP
// mailbox. It is never created client-side.
type IncomingEmail struct {
	ID             int64            `json:"id"`
	MessageID      string           `json:"message_id"`
	Subject        string           `json:"subject"`
	Content        string           `json:"content"`
	ContentHTML    string           `json:"content_html,omitempty"`
	SenderEmail    string           `json:"sender_email"`
	SenderName     string           `json:"sender_name,omitempty"`
	SenderDisplay  string           `json:"sender_display,omitempty"`
	Recipients     []EmailRecipient `json:"recipients,omitempty"`
	CC             []EmailRecipient `json:"cc,omitempty"`
	Company        *int64           `json:"company,omitempty"`
	CompanyName    string           `json:"company_name,omitempty"`
	Contact        *int64           `json:"contact,omitempty"`
	ContactName    string           `json:"contact_name,omitempty"`
	Status         IncomingStatus   `json:"status"`
	ReceivedAt     time.Time        `json:"received_at"`
	HasAttachments bool             `json:"has_attachments"`
}

// From returns the best available sender label.
func (e IncomingEmail) From() string {
	switch {
	case e.SenderDisplay != "":
		return e.SenderDisplay
	case e.SenderName != "":
		return e.SenderName
	default:
		return e.SenderEmail
	}
}

// IMAPStatus reports whether the user's mailbox settings are complete
// enough for the backend to fetch mail.
type IMAPStatus struct {
	HasIMAPConfig bool     `json:"has_imap_config"`
	MissingFields []string `json:"missing_fields"`
	ReadyToFetch  bool     `json:"ready_to_fetch"`
	Message       string   `json:"message"`
}

// FetchResult is the outcome of one backend IMAP fetch.
type FetchResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FetchedCount int    `json:"fetched_count"`
	SavedCount   int    `json:"saved_count"`
}

// EmailSendStatus reports whether SMTP settings allow sending.
type EmailSendStatus struct {
	HasSMTPConfig bool     `json:"has_smtp_config"`
	ReadyToSend   bool     `json:"ready_to_send"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Message       string   `json:"message,omitempty"`
}
