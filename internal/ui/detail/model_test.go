package detail

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
	"github.com/nhle/field-service/internal/ui/storelist"
)

func sampleItem() storelist.StoreItem {
	tickets := []ticket.Ticket{
		{Key: "FSA-1", Store: "L001", POS: "1", Asset: "A", Problem: "Gaveta", ScheduledAt: "2026-10-21T09:00:00.000-0300"},
		{Key: "FSA-2", Store: "L001", POS: "1", Asset: "A", Problem: "Rede"},
	}
	return storelist.StoreItem{
		Stats:      dashboard.StoreStats{Store: "L001", Count: 2},
		Tickets:    tickets,
		Duplicates: ticket.FindDuplicates(tickets),
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDetail_Actions(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)

	_, cmd := m.Update(runes("t"))
	assert.Nil(t, cmd, "no store, no action")

	m.SetStore(sampleItem(), model.StatusScheduled)

	tests := []struct {
		key    string
		action string
	}{
		{"t", ActionTransition},
		{"f", ActionDispatch},
		{"m", ActionDraft},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			_, cmd := m.Update(runes(tt.key))
			require.NotNil(t, cmd)
			msg, ok := cmd().(ActionMsg)
			require.True(t, ok)
			assert.Equal(t, tt.action, msg.Action)
			assert.Equal(t, "L001", msg.Store)
			assert.Equal(t, model.StatusScheduled, msg.Status)
			assert.Equal(t, []string{"FSA-1", "FSA-2"}, msg.Keys())
		})
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestDetail_Content(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 60)
	m.SetStore(sampleItem(), model.StatusScheduled)

	content := m.renderContent()
	assert.Contains(t, content, "Loja L001")
	assert.Contains(t, content, "21/10/2026")
	assert.Contains(t, content, "dup")
	assert.Contains(t, content, ticket.ArrivalNotice)
	assert.Equal(t, ticket.DispatchMessage("L001", sampleItem().Tickets), m.Message())
}

func TestDetail_Copy(t *testing.T) {
	var copied string
	copyToClipboard = func(s string) error {
		copied = s
		return errors.New("no clipboard")
	}
	t.Cleanup(func() { copyToClipboard = defaultCopy })

	m := New(keys.DefaultKeyMap(), 100, 40)
	m.SetStore(sampleItem(), model.StatusScheduling)

	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(CopiedMsg)
	require.True(t, ok)
	assert.Error(t, msg.Err)
	assert.Equal(t, m.Message(), copied)
}
