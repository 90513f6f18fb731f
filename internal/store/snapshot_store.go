package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/field-service/internal/ticket"
)

// SyncSnapshots replaces the active snapshot with tickets. Keys missing from
// tickets are marked inactive and reported in Removed; keys that were not
// active before are reported in Added.
func (s *SQLiteStore) SyncSnapshots(
	ctx context.Context,
	tickets []ticket.Ticket,
	seenAt time.Time,
) (SyncResult, error) {
	var res SyncResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, "SELECT COUNT(*) FROM ticket_snapshots"); err != nil {
		return res, fmt.Errorf("counting snapshots: %w", err)
	}
	res.Initial = total == 0

	var activeKeys []string
	if err := tx.SelectContext(ctx, &activeKeys,
		"SELECT key FROM ticket_snapshots WHERE active = 1"); err != nil {
		return res, fmt.Errorf("listing active snapshots: %w", err)
	}
	active := make(map[string]bool, len(activeKeys))
	for _, k := range activeKeys {
		active[k] = true
	}

	const query = `
		INSERT INTO ticket_snapshots (
			key, store, status, summary, payload, active, first_seen, last_seen
		) VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			store = excluded.store,
			status = excluded.status,
			summary = excluded.summary,
			payload = excluded.payload,
			active = 1,
			last_seen = excluded.last_seen`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return res, fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		payload, err := json.Marshal(t)
		if err != nil {
			return res, fmt.Errorf("marshaling ticket %s: %w", t.Key, err)
		}
		_, err = stmt.ExecContext(ctx,
			t.Key, t.Store, t.Status, t.Summary, string(payload),
			seenAt.UTC(), seenAt.UTC(),
		)
		if err != nil {
			return res, fmt.Errorf("upserting ticket %s: %w", t.Key, err)
		}
		if !active[t.Key] && !seen[t.Key] {
			res.Added = append(res.Added, t)
		}
		seen[t.Key] = true
	}

	for _, k := range activeKeys {
		if seen[k] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE ticket_snapshots SET active = 0 WHERE key = ?", k); err != nil {
			return res, fmt.Errorf("deactivating ticket %s: %w", k, err)
		}
		res.Removed = append(res.Removed, k)
	}

	if err := tx.Commit(); err != nil {
		return SyncResult{}, fmt.Errorf("committing snapshot: %w", err)
	}
	return res, nil
}

// GetSnapshots returns the cached tickets matching opts, ordered by key.
func (s *SQLiteStore) GetSnapshots(
	ctx context.Context,
	opts SnapshotFilter,
) ([]ticket.Ticket, error) {
	var conditions []string
	var args []interface{}

	if !opts.IncludeInactive {
		conditions = append(conditions, "active = 1")
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Store != "" {
		conditions = append(conditions, "store = ?")
		args = append(args, opts.Store)
	}

	query := "SELECT payload FROM ticket_snapshots"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY key"

	var payloads []string
	if err := s.db.SelectContext(ctx, &payloads, query, args...); err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}

	tickets := make([]ticket.Ticket, 0, len(payloads))
	for _, p := range payloads {
		var t ticket.Ticket
		if err := json.Unmarshal([]byte(p), &t); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
