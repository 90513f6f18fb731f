package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Transitions returns the transitions currently available on key for the
// authenticated user. The set depends on the issue's status and on the
// user's permissions, so it must be fetched per issue and never reused for
// another issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]Transition, error) {
	var resp TransitionsResponse
	if err := c.get(ctx, transitionsPath(key), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching transitions for %s: %w", key, err)
	}
	return resp.Transitions, nil
}

// AvailableTransitions is Transitions with failures folded into an empty
// result. Callers treat empty as "nothing to offer"; use Transitions when
// the difference matters.
func (c *Client) AvailableTransitions(ctx context.Context, key string) []Transition {
	ts, err := c.Transitions(ctx, key)
	if err != nil {
		c.logger.Warn("transition discovery failed", "key", key, "error", err)
		return nil
	}
	return ts
}

// Outcome is the result of applying one transition.
type Outcome struct {
	Key          string
	TransitionID string
	Success      bool
	// StatusCode is the HTTP status, or StatusTransportFailure.
	StatusCode int
	Err        error
}

// ApplyTransition moves key through transitionID, optionally setting fields
// on the way. Success means exactly HTTP 204; anything else is a failure
// carrying the status code. Nothing is retried.
func (c *Client) ApplyTransition(
	ctx context.Context,
	key string,
	transitionID string,
	fields map[string]any,
) Outcome {
	out := Outcome{Key: key, TransitionID: transitionID}

	body := transitionRequest{
		Transition: transitionRef{ID: transitionID},
		Fields:     fields,
	}

	resp, err := c.Do(ctx, http.MethodPost, transitionsPath(key), body, nil)
	if err != nil {
		out.StatusCode = StatusTransportFailure
		out.Err = err
		return out
	}

	out.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusNoContent {
		out.Success = true
		return out
	}

	out.Err = resp.protocolError()
	return out
}

// InverseTransition looks for a transition on key leading back to
// fromStatus. Transitions are fetched fresh for key.
func (c *Client) InverseTransition(ctx context.Context, key, fromStatus string) (string, bool) {
	t, ok := FindTransition(c.AvailableTransitions(ctx, key), ToStatus(fromStatus))
	if !ok {
		return "", false
	}
	return t.ID, true
}

// Selector picks a transition out of an issue's available set.
type Selector func(Transition) bool

// ToStatus matches transitions whose target status is exactly name.
func ToStatus(name string) Selector {
	return func(t Transition) bool { return t.To.Name == name }
}

// ToStatusContaining matches target status names containing sub,
// case-insensitively.
func ToStatusContaining(sub string) Selector {
	sub = strings.ToLower(sub)
	return func(t Transition) bool {
		return strings.Contains(strings.ToLower(t.To.Name), sub)
	}
}

// NameContaining matches transition names containing sub, case-insensitively.
func NameContaining(sub string) Selector {
	sub = strings.ToLower(sub)
	return func(t Transition) bool {
		return strings.Contains(strings.ToLower(t.Name), sub)
	}
}

// Named matches a transition by its exact name.
func Named(name string) Selector {
	return func(t Transition) bool { return t.Name == name }
}

// FindTransition returns the first transition accepted by sel.
func FindTransition(ts []Transition, sel Selector) (Transition, bool) {
	for _, t := range ts {
		if sel(t) {
			return t, true
		}
	}
	return Transition{}, false
}

func transitionsPath(key string) string {
	return "/issue/" + url.PathEscape(key) + "/transitions"
}
