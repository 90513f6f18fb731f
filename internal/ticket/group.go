package ticket

import (
	"sort"
	"time"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

// Grouped maps a store id to its tickets in input order. A ticket belongs to
// exactly one store.
type Grouped map[string][]Ticket

// GroupByStore projects issues and groups them by store. Issues without a
// store id land under UnknownStore; none are dropped.
func GroupByStore(issues []jira.Issue, fs model.FieldSet) Grouped {
	return Group(ProjectAll(issues, fs))
}

// Group groups already projected tickets by store.
func Group(tickets []Ticket) Grouped {
	g := make(Grouped)
	for _, t := range tickets {
		store := t.Store
		if store == "" {
			store = UnknownStore
		}
		g[store] = append(g[store], t)
	}
	return g
}

// Stores returns the store ids sorted alphabetically.
func (g Grouped) Stores() []string {
	stores := make([]string, 0, len(g))
	for s := range g {
		stores = append(stores, s)
	}
	sort.Strings(stores)
	return stores
}

// Len returns the number of tickets across all stores.
func (g Grouped) Len() int {
	n := 0
	for _, ts := range g {
		n += len(ts)
	}
	return n
}

// Keys returns the issue keys of store, in order.
func (g Grouped) Keys(store string) []string {
	keys := make([]string, 0, len(g[store]))
	for _, t := range g[store] {
		keys = append(keys, t.Key)
	}
	return keys
}

// Unscheduled is the day label of tickets without a scheduled date.
const Unscheduled = "Não definida"

// DayLayout renders a scheduled day.
const DayLayout = "02/01/2006"

// scheduleLayout is the timestamp layout of the scheduled-date field.
const scheduleLayout = "2006-01-02T15:04:05.000-0700"

// ScheduleDay returns the day label of a raw scheduled timestamp, read in
// the timestamp's own offset. Unparseable values are returned verbatim.
func ScheduleDay(raw string) string {
	if raw == "" {
		return Unscheduled
	}
	t, err := time.Parse(scheduleLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(DayLayout)
}

// GroupBySchedule groups tickets by scheduled day, then by store.
func GroupBySchedule(tickets []Ticket) map[string]Grouped {
	byDay := make(map[string][]Ticket)
	for _, t := range tickets {
		day := ScheduleDay(t.ScheduledAt)
		byDay[day] = append(byDay[day], t)
	}

	out := make(map[string]Grouped, len(byDay))
	for day, ts := range byDay {
		out[day] = Group(ts)
	}
	return out
}

// ScheduleDays returns the day labels of a schedule grouping in
// chronological order. Unscheduled and unparseable labels sort last.
func ScheduleDays(days map[string]Grouped) []string {
	labels := make([]string, 0, len(days))
	for d := range days {
		labels = append(labels, d)
	}

	sort.Slice(labels, func(i, j int) bool {
		ti, erri := time.Parse(DayLayout, labels[i])
		tj, errj := time.Parse(DayLayout, labels[j])
		switch {
		case erri == nil && errj == nil:
			return ti.Before(tj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return labels[i] < labels[j]
		}
	})
	return labels
}
