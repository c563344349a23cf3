package model

import (
	"encoding/json"
	"time"
)

// OpportunityStatus is a column of the sales pipeline.
type OpportunityStatus struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Order       int    `json:"order"`
	IsDefault   bool   `json:"is_default"`
	IsWon       bool   `json:"is_won"`
	IsLost      bool   `json:"is_lost"`
}

// Opportunity is a sales deal tracked through the pipeline.
type Opportunity struct {
	ID                int64        `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Company           int64        `json:"company"`
	CompanyName       string       `json:"company_name,omitempty"`
	Status            int64        `json:"status"`
	StatusName        string       `json:"status_name,omitempty"`
	StatusColor       string       `json:"status_color,omitempty"`
	Value             Money        `json:"value"`
	Priority          DealPriority `json:"priority"`
	Probability       int          `json:"probability"`
	ExpectedCloseDate string       `json:"expected_close_date,omitempty"`
	AssignedTo        *int64       `json:"assigned_to,omitempty"`
	AssignedToName    string       `json:"assigned_to_name,omitempty"`
	IsClosed          bool         `json:"is_closed"`
	ContactCount      int          `json:"contact_count,omitempty"`
	Activities        []Activity   `json:"activities,omitempty"`
	CreatedAt         time.Time    `json:"created_at,omitempty"`
	UpdatedAt         time.Time    `json:"updated_at,omitempty"`
}

// OpportunityInput is the create/update payload for an opportunity.
// ExpectedCloseDate uses the YYYY-MM-DD form.
type OpportunityInput struct {
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Company           int64        `json:"company"`
	Contacts          []int64      `json:"contacts,omitempty"`
	Status            int64        `json:"status"`
	Value             Money        `json:"value"`
	Priority          DealPriority `json:"priority"`
	Probability       int          `json:"probability"`
	ExpectedCloseDate string       `json:"expected_close_date"`
	AssignedTo        *int64       `json:"assigned_to,omitempty"`
}

// Activity is an entry in an opportunity's activity log.
type Activity struct {
	ID          int64        `json:"id"`
	Opportunity int64        `json:"opportunity"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PerformedAt time.Time    `json:"performed_at"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
}

// ActivityInput is the create payload for an activity.
type ActivityInput struct {
	Opportunity int64        `json:"opportunity"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PerformedAt time.Time    `json:"performed_at"`
}

// KanbanColumn groups opportunities sharing a pipeline status.
type KanbanColumn struct {
	StatusID      int64         `json:"status_id"`
	StatusName    string        `json:"status_name"`
	StatusColor   string        `json:"status_color"`
	Count         int           `json:"count"`
	TotalValue    Money         `json:"total_value"`
	Opportunities []Opportunity `json:"opportunities"`
}

// OpportunityProposal is one AI-suggested sales opportunity. It is never
// persisted directly; the user picks proposals and fills the regular
// opportunity form from them.
type OpportunityProposal struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	EstimatedValue Money        `json:"estimated_value"`
	Priority       DealPriority `json:"priority"`
	Reasoning      string       `json:"reasoning"`
}

// UnmarshalJSON reads the priority leniently since it comes from model
// output. A missing or unknown priority becomes DealMedium so one odd
// proposal does not discard the whole set.
func (p *OpportunityProposal) UnmarshalJSON(data []byte) error {
	type plain OpportunityProposal
	var raw struct {
		plain
		Priority *string `json:"priority"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = OpportunityProposal(raw.plain)
	p.Priority = DealMedium
	if raw.Priority != nil {
		p.Priority = ParseDealPriority(*raw.Priority)
	}
	return nil
}

// OpportunityResult is the payload of an opportunity-proposal generation.
type OpportunityResult struct {
	Opportunities []OpportunityProposal `json:"opportunities"`
	Analysis      string                `json:"analysis"`
}
