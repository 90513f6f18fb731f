package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cmd, ok := Parse("  Order city ")
	require.True(t, ok)
	assert.Equal(t, "order", cmd.Name)
	assert.Equal(t, []string{"city"}, cmd.Args)

	cmd, ok = Parse("state SP")
	require.True(t, ok)
	assert.Equal(t, []string{"SP"}, cmd.Args)

	_, ok = Parse("   ")
	assert.False(t, ok)
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "min 3" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: "min", Args: []string{"3"}}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty input emits nothing")
}

func TestComplete(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{"de", "debug", true},
		{"NO", "notifications", true},
		{"d", "", false},
		{"stat", "", false},
		{"statu", "status", true},
		{"x", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Complete(tt.prefix)
		assert.Equal(t, tt.ok, ok, tt.prefix)
		assert.Equal(t, tt.want, got, tt.prefix)
	}
}

func TestModel_TabAndHistory(t *testing.T) {
	m := New(80, 24)
	typeLine := func(s string) {
		for _, r := range s {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}

	typeLine("ref")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "refresh ", m.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	typeLine("min 2")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "min 2", m.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "refresh", m.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "refresh", m.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.Value())
}
