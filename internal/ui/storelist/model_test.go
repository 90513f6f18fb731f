package storelist

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/ticket"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func tk(key, store, city, pos, asset string) ticket.Ticket {
	return ticket.Ticket{
		Key: key, Store: store, City: city, State: "SP",
		POS: pos, Asset: asset, Status: "Agendado", Updated: now,
	}
}

func sample() []ticket.Ticket {
	return []ticket.Ticket{
		tk("FSA-1", "L001", "Campinas", "1", "A"),
		tk("FSA-2", "L002", "Santos", "2", "B"),
		tk("FSA-3", "L001", "Campinas", "1", "A"),
		tk("FSA-4", "L001", "Campinas", "3", "C"),
	}
}

func TestBuildItems(t *testing.T) {
	th := dashboard.Thresholds{CriticalCount: 3, Stale: 7 * 24 * time.Hour}

	items := BuildItems(sample(), th, dashboard.Highlight{}, now)
	require.Len(t, items, 2)

	assert.Equal(t, "L001", items[0].Stats.Store)
	assert.Equal(t, 3, items[0].Stats.Count)
	assert.True(t, items[0].Stats.Critical)
	assert.Equal(t, []string{"FSA-1", "FSA-3", "FSA-4"}, items[0].Keys())
	assert.True(t, items[0].Duplicates.Has(ticket.Pair{POS: "1", Asset: "A"}))

	assert.Equal(t, "L002", items[1].Stats.Store)
	assert.False(t, items[1].Stats.Critical)
	assert.Empty(t, items[1].Duplicates)
}

func TestBuildItems_Highlight(t *testing.T) {
	th := dashboard.Thresholds{CriticalCount: 5}

	items := BuildItems(sample(), th, dashboard.Highlight{Min: 2}, now)
	require.Len(t, items, 1)
	assert.Equal(t, "L001", items[0].Stats.Store)

	items = BuildItems(sample(), th, dashboard.Highlight{Query: "sant"}, now)
	require.Len(t, items, 1)
	assert.Equal(t, "L002", items[0].Stats.Store)

	items = BuildItems(sample(), th, dashboard.Highlight{State: "rj"}, now)
	assert.Empty(t, items)

	items = BuildItems(sample(), th, dashboard.Highlight{Order: dashboard.ByCity}, now)
	require.Len(t, items, 2)
	assert.Equal(t, "Campinas", items[0].Stats.City)
}

func TestModel_SelectStore(t *testing.T) {
	m := New(keys.DefaultKeyMap(), dashboard.Thresholds{CriticalCount: 5}, 100, 30)
	m.now = func() time.Time { return now }
	m.SetTickets("Agendado", sample())

	require.Len(t, m.Items(), 2)
	assert.Equal(t, "Agendado", m.Status())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(SelectedStoreMsg)
	require.True(t, ok)
	assert.Equal(t, "L001", msg.Item.Stats.Store)
}

func TestModel_CycleOrderAndFilter(t *testing.T) {
	m := New(keys.DefaultKeyMap(), dashboard.Thresholds{}, 100, 30)
	m.SetTickets("Agendado", sample())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	assert.Equal(t, dashboard.ByStore, m.Highlight().Order)

	assert.Empty(t, m.FilterSummary())
	m.SetHighlight(dashboard.Highlight{Min: 2, State: "SP"})
	assert.Equal(t, "filter min:2 state:SP", m.FilterSummary())
	assert.Len(t, m.Items(), 1)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Campinas/SP", location(dashboard.StoreStats{City: "Campinas", State: "SP"}))
	assert.Equal(t, "SP", location(dashboard.StoreStats{City: ticket.Placeholder, State: "SP"}))
	assert.Equal(t, ticket.Placeholder, location(dashboard.StoreStats{}))
}
