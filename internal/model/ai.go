package model

import "time"

// AIKind identifies which generation endpoint produced a result.
type AIKind string

const (
	AIKindCompose AIKind = "compose"
	AIKindReply   AIKind = "reply"
	AIKindPropose AIKind = "opportunity"
)

// Valid reports whether k is a known generation kind.
func (k AIKind) Valid() bool {
	switch k {
	case AIKindCompose, AIKindReply, AIKindPropose:
		return true
	}
	return false
}

// AIStatus is the backend's report on the generation provider.
type AIStatus struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AIRequestRecord is one entry of the backend's generation history.
type AIRequestRecord struct {
	ID          int64     `json:"id"`
	RequestType string    `json:"request_type"`
	Status      string    `json:"status"`
	Prompt      string    `json:"prompt"`
	Response    string    `json:"response"`
	Error       string    `json:"error_message"`
	CreatedAt   time.Time `json:"created_at"`
}

// AIGeneration is a locally logged generation attempt.
type AIGeneration struct {
	ID        string    `db:"id"`
	Kind      AIKind    `db:"kind"`
	RequestID *int64    `db:"request_id"`
	Success   bool      `db:"success"`
	Content   string    `db:"content"`
	Error     string    `db:"error"`
	CreatedAt time.Time `db:"created_at"`
}
