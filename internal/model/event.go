package model

import "time"

// Event is a scheduled customer interaction such as a meeting or call.
type Event struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	EventType        EventType   `json:"event_type"`
	Status           EventStatus `json:"status"`
	Priority         Priority    `json:"priority"`
	Company          *int64      `json:"company,omitempty"`
	CompanyName      string      `json:"company_name,omitempty"`
	Contacts         []int64     `json:"contacts,omitempty"`
	AssignedTo       *int64      `json:"assigned_to,omitempty"`
	StartDatetime    time.Time   `json:"start_datetime"`
	EndDatetime      *time.Time  `json:"end_datetime,omitempty"`
	ReminderDatetime *time.Time  `json:"reminder_datetime,omitempty"`
	Location         string      `json:"location,omitempty"`
	MeetingURL       string      `json:"meeting_url,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Outcome          string      `json:"outcome,omitempty"`
	CreatedAt        time.Time   `json:"created_at,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
}

// EventInput is the create/update payload for an event.
type EventInput struct {
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	EventType        EventType   `json:"event_type"`
	Status           EventStatus `json:"status,omitempty"`
	Priority         Priority    `json:"priority,omitempty"`
	Company          *int64      `json:"company,omitempty"`
	Contacts         []int64     `json:"contacts,omitempty"`
	StartDatetime    time.Time   `json:"start_datetime"`
	EndDatetime      *time.Time  `json:"end_datetime,omitempty"`
	ReminderDatetime *time.Time  `json:"reminder_datetime,omitempty"`
	Location         string      `json:"location,omitempty"`
	MeetingURL       string      `json:"meeting_url,omitempty"`
	Notes            string      `json:"notes,omitempty"`
}
