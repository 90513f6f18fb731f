package model

import "time"

// NotificationKind classifies a notification.
type NotificationKind string

const (
	// NotificationNewTicket is raised when a refresh finds a ticket that was
	// not in the previous snapshot.
	NotificationNewTicket NotificationKind = "new_ticket"

	// NotificationCriticalStore is raised when a store crosses the critical
	// threshold.
	NotificationCriticalStore NotificationKind = "critical_store"
)

// Notification represents an alert surfaced to the operator about activity
// on a monitored ticket or store.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// IssueKey links this notification to the originating ticket, when any.
	IssueKey string `json:"issue_key" db:"issue_key"`

	// Store is the store id the notification is about.
	Store string `json:"store" db:"store"`

	Kind NotificationKind `json:"kind" db:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the operator has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
