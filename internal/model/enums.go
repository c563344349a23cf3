package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unmarshalEnum decodes a JSON string into dst and rejects values that
// valid does not accept. A JSON null leaves dst untouched.
func unmarshalEnum[T ~string](
	data []byte,
	dst *T,
	valid func(T) bool,
	kind string,
) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding %s: %w", kind, err)
	}
	v := T(raw)
	if !valid(v) {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dst = v
	return nil
}

// EmailStatus is the lifecycle state of an outgoing email message.
type EmailStatus string

const (
	EmailDraft   EmailStatus = "draft"
	EmailSending EmailStatus = "sending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// Valid reports whether s is a known email status.
func (s EmailStatus) Valid() bool {
	switch s {
	case EmailDraft, EmailSending, EmailSent, EmailFailed:
		return true
	}
	return false
}

func (s *EmailStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, EmailStatus.Valid, "email status")
}

// IncomingStatus is the read state of an email fetched over IMAP.
type IncomingStatus string

const (
	IncomingUnread   IncomingStatus = "unread"
	IncomingRead     IncomingStatus = "read"
	IncomingArchived IncomingStatus = "archived"
	IncomingDeleted  IncomingStatus = "deleted"
)

// Valid reports whether s is a known incoming email status.
func (s IncomingStatus) Valid() bool {
	switch s {
	case IncomingUnread, IncomingRead, IncomingArchived, IncomingDeleted:
		return true
	}
	return false
}

func (s *IncomingStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, IncomingStatus.Valid, "incoming email status")
}

// DealPriority ranks opportunities and AI opportunity proposals.
type DealPriority string

const (
	DealLow      DealPriority = "low"
	DealMedium   DealPriority = "medium"
	DealHigh     DealPriority = "high"
	DealCritical DealPriority = "critical"
)

// Valid reports whether p is a known deal priority.
func (p DealPriority) Valid() bool {
	switch p {
	case DealLow, DealMedium, DealHigh, DealCritical:
		return true
	}
	return false
}

func (p *DealPriority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, p, DealPriority.Valid, "deal priority")
}

// ParseDealPriority maps free text onto the deal scale. Anything that is
// not a known deal priority, including the event scale's "urgent", becomes
// DealMedium.
func ParseDealPriority(s string) DealPriority {
	p := DealPriority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return DealMedium
}

// Priority ranks events and notifications.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, p, Priority.Valid, "priority")
}

// EventType classifies a calendar event.
type EventType string

const (
	EventMeeting      EventType = "meeting"
	EventCall         EventType = "call"
	EventEmail        EventType = "email"
	EventVisit        EventType = "visit"
	EventPresentation EventType = "presentation"
	EventDemo         EventType = "demo"
	EventFollowUp     EventType = "follow_up"
	EventOther        EventType = "other"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventMeeting, EventCall, EventEmail, EventVisit,
		EventPresentation, EventDemo, EventFollowUp, EventOther:
		return true
	}
	return false
}

func (t *EventType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, EventType.Valid, "event type")
}

// EventStatus is the lifecycle state of a calendar event.
type EventStatus string

const (
	EventScheduled  EventStatus = "scheduled"
	EventInProgress EventStatus = "in_progress"
	EventCompleted  EventStatus = "completed"
	EventCancelled  EventStatus = "cancelled"
	EventPostponed  EventStatus = "postponed"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventScheduled, EventInProgress, EventCompleted,
		EventCancelled, EventPostponed:
		return true
	}
	return false
}

func (s *EventStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, EventStatus.Valid, "event status")
}

// NotificationType classifies a server-side notification.
type NotificationType string

const (
	NotifyReminder     NotificationType = "reminder"
	NotifyEvent        NotificationType = "event"
	NotifyEventUpdated NotificationType = "event_updated"
	NotifyEmail        NotificationType = "email"
	NotifyTask         NotificationType = "task"
	NotifySystem       NotificationType = "system"
	NotifyInfo         NotificationType = "info"
	NotifyWarning      NotificationType = "warning"
	NotifyError        NotificationType = "error"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifyReminder, NotifyEvent, NotifyEventUpdated, NotifyEmail,
		NotifyTask, NotifySystem, NotifyInfo, NotifyWarning, NotifyError:
		return true
	}
	return false
}

func (t *NotificationType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, NotificationType.Valid, "notification type")
}

// ActivityType classifies an entry in an opportunity's activity log.
type ActivityType string

const (
	ActivityNote    ActivityType = "note"
	ActivityCall    ActivityType = "call"
	ActivityMeeting ActivityType = "meeting"
	ActivityEmail   ActivityType = "email"
	ActivityTask    ActivityType = "task"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityMeeting, ActivityEmail, ActivityTask:
		return true
	}
	return false
}

func (t *ActivityType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, ActivityType.Valid, "activity type")
}
