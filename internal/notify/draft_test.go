package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/ticket"
)

func sampleTickets() []ticket.Ticket {
	return []ticket.Ticket{
		{Key: "FSA-1", Store: "L042", POS: "307", Asset: "A1", Problem: "Gaveta travada",
			Address: "Rua A, 10", State: "SP", PostalCode: "01000-000", City: "São Paulo"},
		{Key: "FSA-2", Store: "L042", POS: "308", Asset: "A2", Problem: "Sem rede",
			Address: "Rua A, 10", State: "SP", PostalCode: "01000-000", City: "São Paulo"},
	}
}

func readMessage(t *testing.T, raw []byte) (*mail.Reader, string) {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	return mr, strings.ReplaceAll(string(body), "\r\n", "\n")
}

func TestDispatchDraft(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	d := DispatchDraft("ops@example.com", []string{"tec@example.com"}, "L042", sampleTickets(), now)

	assert.Equal(t, "Visita técnica loja L042 - 2 chamados", d.Subject)
	assert.Equal(t, ticket.DispatchMessage("L042", sampleTickets()), d.Body)
	assert.Equal(t, now, d.Date)

	single := DispatchDraft("ops@example.com", nil, "L042", sampleTickets()[:1], now)
	assert.Equal(t, "Visita técnica loja L042 - 1 chamado", single.Subject)
}

func TestCompose(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	d := DispatchDraft("Operações <ops@example.com>", []string{"tec@example.com", "sup@example.com"},
		"L042", sampleTickets(), now)

	raw, err := Compose(d)
	require.NoError(t, err)

	mr, body := readMessage(t, raw)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, d.Subject, subject)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "ops@example.com", from[0].Address)
	assert.Equal(t, "Operações", from[0].Name)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	assert.Len(t, to, 2)

	date, err := mr.Header.Date()
	require.NoError(t, err)
	assert.True(t, now.Equal(date))

	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Equal(t, d.Body, body)
	assert.Contains(t, body, ticket.ArrivalNotice)
}

func TestCompose_Errors(t *testing.T) {
	_, err := Compose(Draft{Subject: "x"})
	assert.Error(t, err)

	_, err = Compose(Draft{From: "not an address"})
	assert.Error(t, err)

	_, err = Compose(Draft{From: "ops@example.com", To: []string{"@@"}})
	assert.Error(t, err)
}

type fakeDrafter struct {
	mailbox string
	raw     []byte
	err     error
}

func (f *fakeDrafter) SaveDraft(_ context.Context, mailbox string, raw []byte) error {
	f.mailbox = mailbox
	f.raw = raw
	return f.err
}

func TestStager(t *testing.T) {
	cfg := model.MailConfig{
		Enabled: true,
		From:    "ops@example.com",
		To:      []string{"tec@example.com"},
	}
	fd := &fakeDrafter{}
	s := NewStager(cfg, fd)

	d, err := s.Stage(context.Background(), Draft{Subject: "Visita", Body: "corpo"})
	require.NoError(t, err)
	assert.Equal(t, "Drafts", fd.mailbox)
	assert.Equal(t, "ops@example.com", d.From)
	assert.Equal(t, []string{"tec@example.com"}, d.To)
	assert.False(t, d.Date.IsZero())

	_, body := readMessage(t, fd.raw)
	assert.Equal(t, "corpo", body)
}

func TestStager_Failures(t *testing.T) {
	_, err := NewStager(model.MailConfig{}, &fakeDrafter{}).Stage(context.Background(), Draft{})
	assert.Error(t, err, "disabled")

	fd := &fakeDrafter{err: ErrAuth}
	_, err = NewStager(model.MailConfig{Enabled: true, From: "ops@example.com", Mailbox: "Rascunhos"}, fd).
		Stage(context.Background(), Draft{Body: "x"})
	assert.True(t, errors.Is(err, ErrAuth))
	assert.Equal(t, "Rascunhos", fd.mailbox)
}
