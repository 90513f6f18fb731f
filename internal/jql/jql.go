// Package jql builds the queries the dashboard runs against the project.
package jql

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the minute-precision layout JQL accepts in date clauses.
const DateLayout = "2006-01-02 15:04"

// Escape quotes s for use inside a double-quoted JQL string.
func Escape(s string) string {
	// Escape backslashes first, then double-quotes.
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// Quote returns s as a double-quoted JQL string.
func Quote(s string) string {
	return `"` + Escape(s) + `"`
}

// value renders a status or id: bare when numeric, quoted otherwise.
func value(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		return s
	}
	return Quote(s)
}

func list(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, value(v))
	}
	return "(" + strings.Join(out, ", ") + ")"
}

// statusIn renders a status membership clause. Every issue has a status,
// so an empty set renders a clause that matches nothing.
func statusIn(statuses []string) string {
	if len(statuses) == 0 {
		return "status is EMPTY"
	}
	return "status in " + list(statuses)
}

// Builder renders the queries of one project.
type Builder struct {
	Project string
}

// New returns a Builder for project.
func New(project string) Builder {
	return Builder{Project: project}
}

func (b Builder) project() string {
	p := strings.TrimSpace(b.Project)
	if p != "" && strings.IndexFunc(p, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_')
	}) < 0 {
		return "project = " + p
	}
	return "project = " + Quote(p)
}

// InStatuses matches tickets in any of statuses (names or ids). With no
// statuses it matches nothing.
func (b Builder) InStatuses(statuses ...string) string {
	return fmt.Sprintf("%s AND %s", b.project(), statusIn(statuses))
}

// InStatus matches tickets in a single status, most recently updated first.
func (b Builder) InStatus(status string) string {
	return fmt.Sprintf("%s AND status = %s ORDER BY updated DESC", b.project(), value(status))
}

// ResolvedBetween matches tickets resolved into one of statuses within
// [from, to]. Bounds are rendered at minute precision in their own
// location.
func (b Builder) ResolvedBetween(statuses []string, from, to time.Time) string {
	return fmt.Sprintf(
		`%s AND %s AND resolutiondate >= "%s" AND resolutiondate <= "%s"`,
		b.project(), statusIn(statuses), from.Format(DateLayout), to.Format(DateLayout),
	)
}

// ResolvedWindow is ResolvedBetween over the days ending at now, with now
// truncated to five minutes so repeated refreshes produce the same query.
func (b Builder) ResolvedWindow(statuses []string, now time.Time, days int) string {
	to := Truncate5Min(now)
	from := to.AddDate(0, 0, -days)
	return b.ResolvedBetween(statuses, from, to)
}

// AwaitingSpare matches the store's tickets waiting for a replacement part.
// storeField is the JQL clause name of the store dropdown.
func (b Builder) AwaitingSpare(status, storeField, store string) string {
	return fmt.Sprintf("%s AND status = %s AND %s = %s",
		b.project(), Quote(status), Quote(storeField), Quote(store))
}

// Keys matches the given issue keys.
func Keys(keys ...string) string {
	quoted := make([]string, 0, len(keys))
	for _, k := range keys {
		quoted = append(quoted, Quote(k))
	}
	return "key in (" + strings.Join(quoted, ", ") + ")"
}

// Truncate5Min drops seconds and rounds minutes down to a multiple of five.
func Truncate5Min(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5, 0, 0, t.Location())
}
