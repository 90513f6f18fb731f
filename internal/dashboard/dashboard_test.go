package dashboard

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
)

var (
	now      = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	defaults = ThresholdsFrom(model.DefaultConfig().Dashboard)
	statuses = []string{model.StatusScheduling, model.StatusScheduled, model.StatusInField}
)

func tk(key, store, status string, updated time.Time) ticket.Ticket {
	return ticket.Ticket{
		Key: key, Store: store, Status: status, Updated: updated,
		City: ticket.Placeholder, State: ticket.Placeholder,
		Address: ticket.Placeholder, PostalCode: ticket.Placeholder,
	}
}

func TestThresholds_Critical(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		updated time.Time
		want    bool
	}{
		{"few and fresh", 2, now.Add(-time.Hour), false},
		{"count threshold", 5, now.Add(-time.Hour), true},
		{"stale", 1, now.Add(-8 * 24 * time.Hour), true},
		{"exactly seven days is not stale", 1, now.Add(-7 * 24 * time.Hour), false},
		{"never updated", 1, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaults.Critical(tt.count, tt.updated, now))
		})
	}
}

func TestSummarize(t *testing.T) {
	open := []ticket.Ticket{
		tk("FSA-1", "L1", model.StatusScheduling, now.Add(-time.Hour)),
		tk("FSA-2", "L1", model.StatusScheduled, now.Add(-2*time.Hour)),
		tk("FSA-3", "L2", model.StatusInField, now.Add(-9*24*time.Hour)),
		tk("FSA-4", "L3", "Resolvido", now),
	}

	sum := Summarize(open, statuses, defaults, now)

	assert.Equal(t, 1, sum.Count(model.StatusScheduling))
	assert.Equal(t, 1, sum.Count(model.StatusScheduled))
	assert.Equal(t, 1, sum.Count(model.StatusInField))
	assert.Equal(t, 3, sum.Total())
	assert.Equal(t, 1, sum.StoresWithAtLeast(2))
	assert.NotContains(t, sum.Stores, "L3")

	l1 := sum.Stores["L1"]
	assert.Equal(t, 2, l1.Count)
	assert.Equal(t, now.Add(-time.Hour), l1.LastUpdated)
	assert.False(t, l1.Critical)
	assert.True(t, sum.Stores["L2"].Critical)

	assert.Equal(t, []string{"FSA-1"}, sum.Grouped(model.StatusScheduling).Keys("L1"))
}

func TestStoreStatistics_FirstNonEmptyWins(t *testing.T) {
	a := tk("FSA-1", "L1", "", now)
	b := tk("FSA-2", "L1", "", now)
	b.City, b.State, b.Address, b.PostalCode = "Campinas", "SP", "Av. B", "13000-000"
	c := tk("FSA-3", "L1", "", now)
	c.City = "Outra"

	stats := StoreStatistics([]ticket.Ticket{a, b, c}, defaults, now)

	want := StoreStats{
		Store: "L1", City: "Campinas", State: "SP", Address: "Av. B",
		PostalCode: "13000-000", Count: 3, LastUpdated: now,
	}
	if diff := cmp.Diff(want, stats["L1"]); diff != "" {
		t.Errorf("StoreStatistics() mismatch (-want +got):\n%s", diff)
	}
}

func TestTopStores(t *testing.T) {
	stats := map[string]StoreStats{
		"B": {Store: "B", Count: 3},
		"A": {Store: "A", Count: 3},
		"C": {Store: "C", Count: 7},
		"D": {Store: "D", Count: 1},
	}

	top := TopStores(stats, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{top[0].Store, top[1].Store, top[2].Store})
	assert.Len(t, TopStores(stats, 10), 4)
}

func TestHighlights(t *testing.T) {
	stats := map[string]StoreStats{
		"L1": {Store: "L1", City: "Santos", State: "SP", Count: 2},
		"L2": {Store: "L2", City: "Campinas", State: "sp", Count: 4},
		"L3": {Store: "L3", City: "Niterói", State: "RJ", Count: 6},
		"L4": {Store: "L4", City: "Santos", State: "SP", Count: 1},
	}

	stores := func(ss []StoreStats) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Store)
		}
		return out
	}

	assert.Equal(t, []string{"L3", "L2", "L1"}, stores(Highlights(stats, Highlight{Min: 2})))
	assert.Equal(t, []string{"L1", "L2"}, stores(Highlights(stats, Highlight{Min: 2, State: "sp", Order: ByStore})))
	assert.Equal(t, []string{"L2", "L3", "L1"}, stores(Highlights(stats, Highlight{Min: 2, Order: ByCity})))
	assert.Equal(t, []string{"L1", "L4"}, stores(Highlights(stats, Highlight{Query: "santos", Order: ByStore})))
	assert.Empty(t, Highlights(stats, Highlight{Min: 10}))
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, ByCity, ParseOrder("City"))
	assert.Equal(t, ByStore, ParseOrder("store"))
	assert.Equal(t, ByCount, ParseOrder(""))
	assert.Equal(t, "city", ByCity.String())
}

func TestMatchStore(t *testing.T) {
	tickets := []ticket.Ticket{{City: "Ribeirão Preto"}, {City: ticket.Placeholder}}
	assert.True(t, MatchStore("L042", tickets, ""))
	assert.True(t, MatchStore("L042", tickets, "l04"))
	assert.True(t, MatchStore("L042", tickets, "preto"))
	assert.False(t, MatchStore("L042", tickets, "--"))
	assert.False(t, MatchStore("L042", tickets, "santos"))
}

func TestTrend(t *testing.T) {
	open := []ticket.Ticket{
		{Key: "FSA-1", Created: now.Add(-1 * time.Hour)},
		{Key: "FSA-2", Created: now.Add(-25 * time.Hour)},
		{Key: "FSA-3", Created: now.Add(-30 * 24 * time.Hour)},
		{Key: "FSA-4"},
	}
	resolved := []ticket.Ticket{
		{Key: "FSA-5", Resolved: now.Add(-2 * time.Hour)},
		{Key: "FSA-6", Resolved: now.Add(-3 * time.Hour)},
	}

	points := Trend(open, resolved, now, 3, time.UTC)

	require.Len(t, points, 4)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), points[0].Day)
	assert.Equal(t, TrendPoint{Day: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), New: 1}, points[2])
	assert.Equal(t, TrendPoint{Day: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), New: 1, Resolved: 2}, points[3])
}
