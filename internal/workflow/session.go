// Package workflow moves tickets through their workflow in batches and keeps
// the per-session undo history.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

// Transitioner is the part of the Jira client the workflow needs.
// *jira.Client satisfies it.
type Transitioner interface {
	AvailableTransitions(ctx context.Context, key string) []jira.Transition
	ApplyTransition(ctx context.Context, key, transitionID string, fields map[string]any) jira.Outcome
	InverseTransition(ctx context.Context, key, fromStatus string) (string, bool)
	GetIssue(ctx context.Context, key string, fields ...string) (*jira.Issue, error)
}

// Auditor receives every applied transition. The local store implements it.
type Auditor interface {
	LogOutcome(ctx context.Context, action string, o jira.Outcome) error
}

// Audit actions.
const (
	ActionMove     = "move"
	ActionUndo     = "undo"
	ActionSchedule = "schedule"
	ActionDispatch = "dispatch"
)

// Session owns one client, its undo history and the schedule settings of a
// single operator. Sessions are never shared.
type Session struct {
	client   Transitioner
	history  *History
	fields   model.FieldSet
	location *time.Location
	auditor  Auditor
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Session.
type Option func(*Session)

// WithFieldSet sets the custom field ids used for schedule fields.
func WithFieldSet(fs model.FieldSet) Option {
	return func(s *Session) { s.fields = fs }
}

// WithLocation sets the zone scheduled dates are written in.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithAuditor records every applied transition through a.
func WithAuditor(a Auditor) Option {
	return func(s *Session) { s.auditor = a }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session with an empty history.
func NewSession(client Transitioner, opts ...Option) *Session {
	s := &Session{
		client:   client,
		history:  &History{},
		fields:   model.DefaultFieldSet(),
		location: model.ScheduleConfig{UTCOffsetHours: -3}.Location(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the session's undo stack.
func (s *Session) History() *History { return s.history }

// BatchRequest moves Keys through the transition chosen by Select.
type BatchRequest struct {
	Keys   []string
	Select jira.Selector

	// Fields are sent with every transition; nil for none.
	Fields map[string]any

	// Schedule, when set, is rendered with the session's field set and
	// zone and sent along with Fields.
	Schedule *Schedule

	// From is the status every key currently has. When empty it is read
	// from the first key. Batches must be uniform: undo moves every key
	// back to this one status.
	From string

	// To labels the target for history and logs.
	To string
}

// BatchResult holds one Outcome per key, in request order.
type BatchResult struct {
	Outcomes []jira.Outcome

	// Recorded reports whether the batch was pushed to the history.
	Recorded bool
}

// Succeeded counts the successful outcomes.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failures returns the failed outcomes.
func (r BatchResult) Failures() []jira.Outcome {
	var out []jira.Outcome
	for _, o := range r.Outcomes {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether every key moved.
func (r BatchResult) OK() bool {
	return len(r.Outcomes) > 0 && r.Succeeded() == len(r.Outcomes)
}

// MoveBatch applies the selected transition to every key, one at a time.
// Each key's transitions are fetched fresh. A failing key never stops the
// rest. The batch is pushed to the history only when every key succeeded.
func (s *Session) MoveBatch(ctx context.Context, req BatchRequest) BatchResult {
	var res BatchResult
	if len(req.Keys) == 0 {
		return res
	}

	from := req.From
	if from == "" {
		from = s.priorStatusOrDefault(ctx, req.Keys[0])
	}

	action, fields := ActionMove, req.Fields
	if req.Schedule != nil {
		action = ActionSchedule
		fields = mergeFields(fields, req.Schedule.Fields(s.fields, s.location))
	}

	for _, key := range req.Keys {
		res.Outcomes = append(res.Outcomes, s.moveOne(ctx, action, key, req.Select, fields))
	}

	if res.OK() {
		s.history.Push(Entry{
			Keys: append([]string(nil), req.Keys...),
			From: from,
			To:   req.To,
			At:   s.now(),
		})
		res.Recorded = true
	}

	s.logger.Info("batch transition",
		"keys", len(req.Keys), "moved", res.Succeeded(), "from", from, "to", req.To)

	return res
}

func mergeFields(base, extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// moveOne discovers key's transitions, picks one with sel and applies it.
func (s *Session) moveOne(
	ctx context.Context,
	action string,
	key string,
	sel jira.Selector,
	fields map[string]any,
) jira.Outcome {
	t, ok := jira.FindTransition(s.client.AvailableTransitions(ctx, key), sel)
	if !ok {
		return jira.Outcome{Key: key, Err: fmt.Errorf("%s: %w", key, ErrNoTransition)}
	}
	return s.apply(ctx, action, key, t.ID, fields)
}

func (s *Session) apply(
	ctx context.Context,
	action string,
	key string,
	transitionID string,
	fields map[string]any,
) jira.Outcome {
	out := s.client.ApplyTransition(ctx, key, transitionID, fields)
	if !out.Success {
		s.logger.Warn("transition failed",
			"action", action, "key", key, "transition", transitionID,
			"status", out.StatusCode, "error", out.Err)
	}
	if s.auditor != nil {
		if err := s.auditor.LogOutcome(ctx, action, out); err != nil {
			s.logger.Warn("recording transition", "key", key, "error", err)
		}
	}
	return out
}

// UndoResult reports an undo.
type UndoResult struct {
	Entry    Entry
	Outcomes []jira.Outcome
}

// Reverted counts the keys moved back.
func (r UndoResult) Reverted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Undo pops the most recent batch and moves each of its keys back to the
// status the batch left. The entry is consumed even if some keys cannot be
// reverted.
func (s *Session) Undo(ctx context.Context) (UndoResult, error) {
	entry, ok := s.history.Pop()
	if !ok {
		return UndoResult{}, ErrNothingToUndo
	}

	res := UndoResult{Entry: entry}
	for _, key := range entry.Keys {
		id, ok := s.client.InverseTransition(ctx, key, entry.From)
		if !ok {
			res.Outcomes = append(res.Outcomes, jira.Outcome{
				Key: key,
				Err: fmt.Errorf("%s to %q: %w", key, entry.From, ErrNoInverse),
			})
			continue
		}
		res.Outcomes = append(res.Outcomes, s.apply(ctx, ActionUndo, key, id, nil))
	}

	s.logger.Info("undo", "keys", len(entry.Keys), "reverted", res.Reverted(), "to", entry.From)
	return res, nil
}

// PriorStatus returns the current status name of key.
func (s *Session) PriorStatus(ctx context.Context, key string) (string, error) {
	issue, err := s.client.GetIssue(ctx, key, "status")
	if err != nil {
		return "", err
	}
	return issue.Fields.Status().Name, nil
}

func (s *Session) priorStatusOrDefault(ctx context.Context, key string) string {
	name, err := s.PriorStatus(ctx, key)
	if err != nil || name == "" {
		s.logger.Warn("reading prior status, assuming scheduled", "key", key, "error", err)
		return model.StatusScheduled
	}
	return name
}

// Dispatch selectors.
var (
	scheduleSelector = jira.NameContaining("agend")
	fieldSelector    = jira.ToStatusContaining("tec-campo")
)

// Schedules reports whether t books a visit and so needs a Schedule.
func Schedules(t jira.Transition) bool {
	return scheduleSelector(t)
}

// DispatchResult reports a dispatch to the field.
type DispatchResult struct {
	// Scheduled holds the outcomes of scheduling the pending keys.
	Scheduled []jira.Outcome

	// Moved holds the outcomes of moving every key to the field.
	Moved []jira.Outcome

	Recorded bool
}

// OK reports whether every step succeeded.
func (r DispatchResult) OK() bool {
	for _, o := range r.Scheduled {
		if !o.Success {
			return false
		}
	}
	for _, o := range r.Moved {
		if !o.Success {
			return false
		}
	}
	return len(r.Moved) > 0
}

// Failures returns every failed outcome of both steps.
func (r DispatchResult) Failures() []jira.Outcome {
	var out []jira.Outcome
	for _, o := range append(append([]jira.Outcome(nil), r.Scheduled...), r.Moved...) {
		if !o.Success {
			out = append(out, o)
		}
	}
	return out
}

// DispatchToField schedules the pending keys with sched, then moves the
// pending and already scheduled keys to the field. When nothing failed the
// whole set is recorded as leaving the scheduled status.
func (s *Session) DispatchToField(
	ctx context.Context,
	pending []string,
	scheduled []string,
	sched Schedule,
) DispatchResult {
	var res DispatchResult
	fields := sched.Fields(s.fields, s.location)

	for _, key := range pending {
		res.Scheduled = append(res.Scheduled, s.moveOne(ctx, ActionSchedule, key, scheduleSelector, fields))
	}

	all := append(append([]string(nil), pending...), scheduled...)
	for _, key := range all {
		res.Moved = append(res.Moved, s.moveOne(ctx, ActionDispatch, key, fieldSelector, nil))
	}

	if res.OK() {
		s.history.Push(Entry{
			Keys: all,
			From: model.StatusScheduled,
			To:   model.StatusInField,
			At:   s.now(),
		})
		res.Recorded = true
	}

	s.logger.Info("dispatch to field",
		"pending", len(pending), "scheduled", len(scheduled),
		"failures", len(res.Failures()), "recorded", res.Recorded)

	return res
}
