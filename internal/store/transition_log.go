package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/field-service/internal/jira"
)

// LogOutcome appends one applied transition to the audit log.
func (s *SQLiteStore) LogOutcome(ctx context.Context, action string, o jira.Outcome) error {
	var errText string
	if o.Err != nil {
		errText = o.Err.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transition_log (
			id, action, issue_key, transition_id, success, status_code, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), action, o.Key, o.TransitionID,
		boolToInt(o.Success), o.StatusCode, errText, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("logging transition of %s: %w", o.Key, err)
	}
	return nil
}

// GetTransitionLog returns the newest log rows first. An empty issueKey
// returns every key; limit <= 0 means no limit.
func (s *SQLiteStore) GetTransitionLog(
	ctx context.Context,
	issueKey string,
	limit int,
) ([]TransitionRecord, error) {
	query := `SELECT id, action, issue_key, transition_id, success, status_code, error, created_at
		FROM transition_log`
	var args []interface{}
	if issueKey != "" {
		query += " WHERE issue_key = ?"
		args = append(args, issueKey)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var records []TransitionRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("querying transition log: %w", err)
	}
	return records, nil
}
