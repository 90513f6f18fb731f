package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/field-service/internal/model"
)

// ErrAuth is returned when the IMAP server rejects the login.
var ErrAuth = errors.New("imap authentication failed")

// Drafter stores a raw message in a mailbox.
type Drafter interface {
	SaveDraft(ctx context.Context, mailbox string, raw []byte) error
}

// IMAPDrafter appends drafts over go-imap v2.
type IMAPDrafter struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPDrafter creates a drafter for the configured account. Port 993
// uses implicit TLS; any other port upgrades with STARTTLS.
func NewIMAPDrafter(cfg model.MailConfig, password string) *IMAPDrafter {
	port := cfg.Port
	if port == 0 {
		port = 993
	}
	return &IMAPDrafter{
		host:     cfg.Host,
		port:     strconv.Itoa(port),
		username: cfg.Username,
		password: password,
		tls:      port == 993,
	}
}

// connect establishes a connection to the IMAP server and authenticates.
// The caller must log out of the returned client.
func (c *IMAPDrafter) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("%w for %s: %v", ErrAuth, c.username, err)
	}

	return client, nil
}

// SaveDraft appends raw to mailbox with the \Draft flag.
func (c *IMAPDrafter) SaveDraft(ctx context.Context, mailbox string, raw []byte) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	cmd := client.Append(mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft},
		Time:  time.Now(),
	})
	if _, err := cmd.Write(raw); err != nil {
		_ = cmd.Close()
		return fmt.Errorf("writing draft: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("closing append: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("appending draft to %s: %w", mailbox, err)
	}
	return nil
}

// Stager composes dispatch drafts and hands them to a Drafter.
type Stager struct {
	cfg     model.MailConfig
	drafter Drafter
	now     func() time.Time
}

// NewStager returns a Stager writing to cfg.Mailbox through d.
func NewStager(cfg model.MailConfig, d Drafter) *Stager {
	return &Stager{cfg: cfg, drafter: d, now: time.Now}
}

// Stage composes the draft and saves it. It returns the draft written.
func (s *Stager) Stage(ctx context.Context, d Draft) (Draft, error) {
	if !s.cfg.Enabled {
		return d, fmt.Errorf("mail drafts are disabled in the config")
	}
	if d.From == "" {
		d.From = s.cfg.From
	}
	if len(d.To) == 0 {
		d.To = s.cfg.To
	}
	if d.Date.IsZero() {
		d.Date = s.now()
	}

	raw, err := Compose(d)
	if err != nil {
		return d, err
	}

	mailbox := s.cfg.Mailbox
	if mailbox == "" {
		mailbox = "Drafts"
	}
	if err := s.drafter.SaveDraft(ctx, mailbox, raw); err != nil {
		return d, err
	}
	return d, nil
}
