// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/store"
	"github.com/nhle/field-service/internal/ticket"
)

// NewTestStore opens a migrated in-memory store that is closed when the
// test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err, "opening test store")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// Ticket returns a minimal open ticket with placeholder identifiers.
func Ticket(key, storeID, status string) ticket.Ticket {
	return ticket.Ticket{
		Key:     key,
		Store:   storeID,
		Status:  status,
		POS:     ticket.Placeholder,
		Summary: "PDV sem rede",
		Created: time.Date(2026, 10, 1, 11, 0, 0, 0, time.UTC),
	}
}

// Seed writes tickets as the active snapshot seen at.
func Seed(t *testing.T, s *store.SQLiteStore, at time.Time, tickets ...ticket.Ticket) store.SyncResult {
	t.Helper()

	res, err := s.SyncSnapshots(context.Background(), tickets, at)
	require.NoError(t, err, "seeding snapshots")
	return res
}
