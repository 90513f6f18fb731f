package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchMessage(t *testing.T) {
	tickets := []Ticket{
		{Key: "FSA-1", POS: "301", Asset: "PINPAD", Problem: "Não liga",
			Address: "Rua A, 1", State: "SP", PostalCode: "01000-000", City: "São Paulo"},
		{Key: "FSA-2", POS: "302", Asset: "IMPRESSORA", Problem: "Papel enroscando",
			Address: "Rua B, 2", State: "RJ", PostalCode: "20000-000", City: "Rio de Janeiro"},
	}

	want := strings.Join([]string{
		"*FSA-1*\nLoja: L042\nPDV: 301\n*ATIVO: PINPAD*\nProblema: Não liga\n***",
		"*FSA-2*\nLoja: L042\nPDV: 302\n*ATIVO: IMPRESSORA*\nProblema: Papel enroscando\n***",
		"Endereço: Rua B, 2\nEstado: RJ\nCEP: 20000-000\nCidade: Rio de Janeiro",
		ArrivalNotice,
	}, "\n\n")

	assert.Equal(t, want, DispatchMessage("L042", tickets))
}

func TestDispatchMessage_Placeholders(t *testing.T) {
	msg := DispatchMessage("L1", []Ticket{{Key: "FSA-9"}})

	assert.Contains(t, msg, "PDV: --")
	assert.Contains(t, msg, "*ATIVO: --*")
	assert.Contains(t, msg, "Cidade: --")
	assert.True(t, strings.HasSuffix(msg, ArrivalNotice))
}

func TestDispatchMessage_NoTickets(t *testing.T) {
	assert.Equal(t, ArrivalNotice, DispatchMessage("L1", nil))
}
