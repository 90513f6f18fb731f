// Package notify stages the per-store dispatch message as an e-mail draft
// so the operator can review and send it from their mail client.
package notify

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/field-service/internal/ticket"
)

// Draft is one composed dispatch e-mail.
type Draft struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// DispatchDraft builds the draft announcing the technician visit to store.
func DispatchDraft(from string, to []string, store string, tickets []ticket.Ticket, now time.Time) Draft {
	noun := "chamado"
	if len(tickets) != 1 {
		noun = "chamados"
	}
	return Draft{
		From:    from,
		To:      append([]string(nil), to...),
		Subject: fmt.Sprintf("Visita técnica loja %s - %d %s", store, len(tickets), noun),
		Body:    ticket.DispatchMessage(store, tickets),
		Date:    now,
	}
}

// Compose renders d as an RFC 5322 message with a single text/plain part.
func Compose(d Draft) ([]byte, error) {
	if d.From == "" {
		return nil, fmt.Errorf("draft has no sender")
	}

	var h mail.Header
	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(d.Subject)

	from, err := mail.ParseAddress(d.From)
	if err != nil {
		return nil, fmt.Errorf("parsing sender %q: %w", d.From, err)
	}
	h.SetAddressList("From", []*mail.Address{from})

	if len(d.To) > 0 {
		to := make([]*mail.Address, 0, len(d.To))
		for _, addr := range d.To {
			a, err := mail.ParseAddress(addr)
			if err != nil {
				return nil, fmt.Errorf("parsing recipient %q: %w", addr, err)
			}
			to = append(to, a)
		}
		h.SetAddressList("To", to)
	}

	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, d.Body); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}
