package ticket

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
)

var fs = model.DefaultFieldSet()

func issue(key string, fields map[string]any) jira.Issue {
	return jira.Issue{Key: key, Fields: jira.NewFields(fields)}
}

func storeIssue(key, store string) jira.Issue {
	fields := map[string]any{}
	if store != "" {
		fields[fs.Store] = map[string]any{"value": store}
	}
	return issue(key, fields)
}

func TestProject_AllFields(t *testing.T) {
	is := issue("FSA-10", map[string]any{
		"summary":      "Impressora fiscal",
		"status":       map[string]any{"name": "AGENDAMENTO", "id": "11499"},
		"updated":      "2026-10-10T10:00:00.000-0300",
		fs.Store:       map[string]any{"value": "L042"},
		fs.POS:         "307",
		fs.Asset:       map[string]any{"value": "IMPRESSORA"},
		fs.Problem:     "Não imprime cupom",
		fs.Address:     "Rua A, 100",
		fs.State:       map[string]any{"value": "SP"},
		fs.PostalCode:  "01000-000",
		fs.City:        "São Paulo",
		fs.ScheduledAt: "2026-10-21T09:00:00.000-0300",
		fs.Technicians: jira.PlainTextToADF("Ana"),
	})

	want := Ticket{
		Key:         "FSA-10",
		Store:       "L042",
		POS:         "307",
		Asset:       "IMPRESSORA",
		Problem:     "Não imprime cupom",
		Address:     "Rua A, 100",
		State:       "SP",
		PostalCode:  "01000-000",
		City:        "São Paulo",
		ScheduledAt: "2026-10-21T09:00:00.000-0300",
		Summary:     "Impressora fiscal",
		Status:      "AGENDAMENTO",
		Updated:     time.Date(2026, 10, 10, 13, 0, 0, 0, time.UTC),
	}

	if diff := cmp.Diff(want, Project(is, fs)); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_MissingFieldsUsePlaceholder(t *testing.T) {
	got := Project(issue("FSA-11", map[string]any{fs.POS: nil}), fs)

	assert.Equal(t, UnknownStore, got.Store)
	assert.False(t, got.HasStore())
	for _, v := range []string{got.POS, got.Asset, got.Problem, got.Address, got.State, got.PostalCode, got.City} {
		assert.Equal(t, Placeholder, v)
	}
	assert.Empty(t, got.ScheduledAt)
}

func TestProject_NumericPOSAndADFProblem(t *testing.T) {
	got := Project(issue("FSA-12", map[string]any{
		fs.POS:     12,
		fs.Problem: jira.PlainTextToADF("Gaveta\ntravada"),
	}), fs)

	assert.Equal(t, "12", got.POS)
	assert.Equal(t, "Gaveta\ntravada", got.Problem)
}

func TestGroupByStore_NeverDrops(t *testing.T) {
	issues := []jira.Issue{
		storeIssue("FSA-1", "L1"),
		storeIssue("FSA-2", ""),
		storeIssue("FSA-3", "L2"),
		storeIssue("FSA-4", "L1"),
		issue("FSA-5", map[string]any{fs.Store: "not an option"}),
		issue("FSA-6", map[string]any{fs.Store: map[string]any{"id": "9"}}),
	}

	g := GroupByStore(issues, fs)

	assert.Equal(t, len(issues), g.Len())
	assert.Equal(t, []string{"FSA-1", "FSA-4"}, g.Keys("L1"))
	assert.Equal(t, []string{"FSA-3"}, g.Keys("L2"))
	assert.Equal(t, []string{"FSA-2", "FSA-6"}, g.Keys(UnknownStore))
	assert.Equal(t, []string{"FSA-5"}, g.Keys("not an option"))
	assert.Equal(t, []string{"L1", "L2", UnknownStore, "not an option"}, g.Stores())

	seen := map[string]int{}
	for _, ts := range g {
		for _, tk := range ts {
			seen[tk.Key]++
		}
	}
	for _, is := range issues {
		assert.Equal(t, 1, seen[is.Key], "issue %s must appear exactly once", is.Key)
	}
}

func TestGroupByStore_Empty(t *testing.T) {
	g := GroupByStore(nil, fs)
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Stores())
}

func TestScheduleDay(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", Unscheduled},
		{"2026-10-21T23:30:00.000-0300", "21/10/2026"},
		{"2026-10-21T01:30:00.000+0900", "21/10/2026"},
		{"amanhã", "amanhã"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScheduleDay(tt.raw), tt.raw)
	}
}

func TestGroupBySchedule(t *testing.T) {
	tickets := []Ticket{
		{Key: "FSA-1", Store: "L1", ScheduledAt: "2026-10-22T09:00:00.000-0300"},
		{Key: "FSA-2", Store: "L2", ScheduledAt: "2026-10-21T09:00:00.000-0300"},
		{Key: "FSA-3", Store: "L1", ScheduledAt: "2026-10-22T14:00:00.000-0300"},
		{Key: "FSA-4", Store: "L3"},
	}

	days := GroupBySchedule(tickets)

	assert.Equal(t, []string{"21/10/2026", "22/10/2026", Unscheduled}, ScheduleDays(days))
	assert.Equal(t, []string{"FSA-1", "FSA-3"}, days["22/10/2026"].Keys("L1"))
	assert.Equal(t, []string{"FSA-4"}, days[Unscheduled].Keys("L3"))
}
