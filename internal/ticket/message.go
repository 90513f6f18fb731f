package ticket

import (
	"fmt"
	"strings"
)

// ArrivalNotice closes every dispatch message.
const ArrivalNotice = "*SEMPRE AO CHEGAR NO LOCAL É NECESSÁRIO ACIONAR O SUPORTE E ENVIAR AS FOTOS NECESSÁRIAS*"

// DispatchMessage renders the text sent to the field technician for a
// store: one block per ticket, a single address block taken from the last
// ticket, and the arrival notice.
func DispatchMessage(store string, tickets []Ticket) string {
	blocks := make([]string, 0, len(tickets)+2)

	for _, t := range tickets {
		blocks = append(blocks, strings.Join([]string{
			"*" + t.Key + "*",
			"Loja: " + store,
			"PDV: " + or(t.POS, Placeholder),
			fmt.Sprintf("*ATIVO: %s*", or(t.Asset, Placeholder)),
			"Problema: " + or(t.Problem, Placeholder),
			"***",
		}, "\n"))
	}

	if n := len(tickets); n > 0 {
		last := tickets[n-1]
		blocks = append(blocks, strings.Join([]string{
			"Endereço: " + or(last.Address, Placeholder),
			"Estado: " + or(last.State, Placeholder),
			"CEP: " + or(last.PostalCode, Placeholder),
			"Cidade: " + or(last.City, Placeholder),
		}, "\n"))
	}

	blocks = append(blocks, ArrivalNotice)
	return strings.Join(blocks, "\n\n")
}
