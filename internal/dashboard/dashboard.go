// Package dashboard aggregates open and resolved tickets into the figures
// shown on the board: per-status counts, per-store statistics, critical
// stores, highlights and the daily trend.
package dashboard

import (
	"strings"
	"time"

	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
)

// Thresholds decide when a store is critical.
type Thresholds struct {
	// CriticalCount is the open-ticket count at which a store is critical.
	CriticalCount int

	// Stale is how long a store may go without updates before it is
	// critical.
	Stale time.Duration
}

// ThresholdsFrom reads the thresholds from the dashboard config.
func ThresholdsFrom(cfg model.DashboardConfig) Thresholds {
	return Thresholds{
		CriticalCount: cfg.CriticalCount,
		Stale:         time.Duration(cfg.StaleDays) * 24 * time.Hour,
	}
}

// StoreStats summarizes the open tickets of one store. Descriptive fields
// keep the first non-empty value seen.
type StoreStats struct {
	Store       string
	City        string
	State       string
	Address     string
	PostalCode  string
	Count       int
	LastUpdated time.Time
	Critical    bool
}

// Critical reports whether a store with count open tickets, last updated
// at lastUpdated, needs attention at now.
func (t Thresholds) Critical(count int, lastUpdated, now time.Time) bool {
	if t.CriticalCount > 0 && count >= t.CriticalCount {
		return true
	}
	return !lastUpdated.IsZero() && t.Stale > 0 && now.Sub(lastUpdated) > t.Stale
}

// Summary is the aggregated board.
type Summary struct {
	// Statuses are the monitored status names in display order.
	Statuses []string

	// Buckets holds the tickets of each monitored status, in input order.
	Buckets map[string][]ticket.Ticket

	// Stores holds the statistics of every store with an open ticket.
	Stores map[string]StoreStats
}

// Count returns the number of tickets in status.
func (s Summary) Count(status string) int { return len(s.Buckets[status]) }

// Total returns the number of tickets across the monitored statuses.
func (s Summary) Total() int {
	n := 0
	for _, st := range s.Statuses {
		n += len(s.Buckets[st])
	}
	return n
}

// StoresWithAtLeast counts stores with min or more open tickets.
func (s Summary) StoresWithAtLeast(min int) int {
	n := 0
	for _, st := range s.Stores {
		if st.Count >= min {
			n++
		}
	}
	return n
}

// Grouped returns the tickets of status grouped by store.
func (s Summary) Grouped(status string) ticket.Grouped {
	return ticket.Group(s.Buckets[status])
}

// Summarize splits open tickets by monitored status and aggregates them per
// store. Tickets in other statuses are ignored.
func Summarize(open []ticket.Ticket, statuses []string, th Thresholds, now time.Time) Summary {
	sum := Summary{
		Statuses: append([]string(nil), statuses...),
		Buckets:  make(map[string][]ticket.Ticket, len(statuses)),
	}

	monitored := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		monitored[st] = true
		sum.Buckets[st] = nil
	}

	var counted []ticket.Ticket
	for _, t := range open {
		if !monitored[t.Status] {
			continue
		}
		sum.Buckets[t.Status] = append(sum.Buckets[t.Status], t)
		counted = append(counted, t)
	}

	sum.Stores = StoreStatistics(counted, th, now)
	return sum
}

// StoreStatistics aggregates tickets per store.
func StoreStatistics(tickets []ticket.Ticket, th Thresholds, now time.Time) map[string]StoreStats {
	stats := make(map[string]StoreStats)
	for _, t := range tickets {
		st, ok := stats[t.Store]
		if !ok {
			st = StoreStats{Store: t.Store}
		}
		st.Count++
		st.City = firstNonEmpty(st.City, t.City)
		st.State = firstNonEmpty(st.State, t.State)
		st.Address = firstNonEmpty(st.Address, t.Address)
		st.PostalCode = firstNonEmpty(st.PostalCode, t.PostalCode)
		if t.Updated.After(st.LastUpdated) {
			st.LastUpdated = t.Updated
		}
		stats[t.Store] = st
	}

	for k, st := range stats {
		st.Critical = th.Critical(st.Count, st.LastUpdated, now)
		stats[k] = st
	}
	return stats
}

func firstNonEmpty(current, candidate string) string {
	if current != "" || candidate == ticket.Placeholder {
		return current
	}
	return candidate
}

// MatchStore reports whether query (case-insensitive) occurs in the store
// id or in the city of any of its tickets. An empty query matches.
func MatchStore(store string, tickets []ticket.Ticket, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || strings.Contains(strings.ToLower(store), q) {
		return true
	}
	for _, t := range tickets {
		if t.City != ticket.Placeholder && strings.Contains(strings.ToLower(t.City), q) {
			return true
		}
	}
	return false
}
