// Package store keeps the local cache of monitored tickets, the audit log of
// applied transitions and the operator's notifications in SQLite.
package store

import (
	"context"
	"time"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
)

// SnapshotFilter narrows snapshot queries. Zero values match everything.
type SnapshotFilter struct {
	Status string
	Store  string

	// IncludeInactive also returns tickets that left the monitored set.
	IncludeInactive bool
}

// SyncResult describes how a refresh changed the snapshot.
type SyncResult struct {
	// Added holds tickets that were not active before this refresh.
	Added []ticket.Ticket

	// Removed holds keys that were active and are now gone.
	Removed []string

	// Initial is set when the snapshot was empty before the refresh.
	Initial bool
}

// TransitionRecord is one row of the transition audit log.
type TransitionRecord struct {
	ID           string    `db:"id"`
	Action       string    `db:"action"`
	IssueKey     string    `db:"issue_key"`
	TransitionID string    `db:"transition_id"`
	Success      bool      `db:"success"`
	StatusCode   int       `db:"status_code"`
	Error        string    `db:"error"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store defines the persistence interface for ticket snapshots, the
// transition audit log and notifications.
type Store interface {
	// === Snapshots ===

	SyncSnapshots(ctx context.Context, tickets []ticket.Ticket, seenAt time.Time) (SyncResult, error)
	GetSnapshots(ctx context.Context, opts SnapshotFilter) ([]ticket.Ticket, error)

	// === Transition log ===

	LogOutcome(ctx context.Context, action string, o jira.Outcome) error
	GetTransitionLog(ctx context.Context, issueKey string, limit int) ([]TransitionRecord, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error

	Close() error
}
