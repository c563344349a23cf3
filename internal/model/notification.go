package model

import "time"

// Notification is an alert surfaced to the signed-in user by the backend
// (reminders, event changes, new mail).
type Notification struct {
	// ID is the backend identifier.
	ID int64 `json:"id"`

	// Title is the one-line headline.
	Title string `json:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Type classifies the notification.
	Type NotificationType `json:"notification_type"`

	// Priority drives the badge color.
	Priority Priority `json:"priority"`

	// IsRead indicates whether the user has seen this notification.
	IsRead bool `json:"is_read"`

	// ReadAt is when the notification was marked read, if ever.
	ReadAt *time.Time `json:"read_at,omitempty"`

	// ActionURL is the front-end route the notification points at.
	ActionURL string `json:"action_url,omitempty"`

	// CreatedAt is when the backend generated this notification.
	CreatedAt time.Time `json:"created_at"`
}

// NotificationInput is the payload for creating one notification.
type NotificationInput struct {
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"notification_type"`
	Priority  Priority         `json:"priority,omitempty"`
	ActionURL string           `json:"action_url,omitempty"`
}

// BulkNotificationInput fans one notification out to several users.
type BulkNotificationInput struct {
	RecipientIDs []int64          `json:"recipient_ids"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"notification_type"`
	Priority     Priority         `json:"priority,omitempty"`
	ActionURL    string           `json:"action_url,omitempty"`
}
