package help

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/field-service/internal/dashboard"
	"github.com/nhle/field-service/internal/keys"
)

func TestView_Legend(t *testing.T) {
	th := dashboard.Thresholds{CriticalCount: 5, Stale: 7 * 24 * time.Hour}
	m := New(keys.DefaultKeyMap(), th, []string{"AGENDAMENTO", "Agendado"}, 120, 40)

	out := m.View()
	assert.Contains(t, out, "Atalhos")
	assert.Contains(t, out, "Abas")
	assert.Contains(t, out, "AGENDAMENTO")
	assert.Contains(t, out, "5 ou mais chamados")
	assert.Contains(t, out, "há 7 dias")
}

func TestView_NoTabs(t *testing.T) {
	m := New(keys.DefaultKeyMap(), dashboard.Thresholds{}, nil, 120, 40)
	assert.NotContains(t, m.View(), "Abas")
}
