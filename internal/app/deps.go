package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nhle/field-service/internal/credential"
	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/notify"
	"github.com/nhle/field-service/internal/store"
	appsync "github.com/nhle/field-service/internal/sync"
	"github.com/nhle/field-service/internal/workflow"
)

// Deps are the services one operator session runs on. Each TUI or CLI
// invocation builds its own.
type Deps struct {
	Config  *model.AppConfig
	Client  *jira.Client
	Session *workflow.Session
	Poller  *appsync.Poller
	Store   store.Store

	// Stager is nil when mail drafts are disabled.
	Stager *notify.Stager

	Logger *slog.Logger
}

// SecretsPath returns the secrets file next to the config file.
func SecretsPath() string {
	return filepath.Join(model.ConfigDir(), credential.SecretsFileName)
}

// Connect resolves the credentials for cfg and builds the Jira client.
// An incomplete configuration fails here, before any request.
func Connect(cfg *model.AppConfig, logger *slog.Logger) (*jira.Client, error) {
	secrets, err := credential.LoadSecrets(SecretsPath())
	if err != nil {
		return nil, err
	}

	mode, creds, err := credential.Resolve(cfg.Jira, credential.Sources{Secrets: secrets})
	if err != nil {
		return nil, err
	}

	opts := []jira.Option{jira.WithLogger(logger)}
	if cfg.Jira.TimeoutSec > 0 {
		opts = append(opts, jira.WithTimeout(time.Duration(cfg.Jira.TimeoutSec)*time.Second))
	}
	return jira.NewClient(mode, creds, opts...)
}

// Open builds every dependency of the dashboard. The store is optional:
// when it cannot be opened the dashboard runs without cache, audit log or
// notifications.
func Open(cfg *model.AppConfig, logger *slog.Logger) (*Deps, error) {
	client, err := Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	d := &Deps{
		Config: cfg,
		Client: client,
		Logger: logger,
	}

	var st store.Store
	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			logger.Warn("creating store directory", "path", cfg.Store.Path, "error", err)
		} else if s, err := store.NewSQLiteStore(cfg.Store.Path); err != nil {
			logger.Warn("opening local store, continuing without it", "path", cfg.Store.Path, "error", err)
		} else {
			st = s
			d.Store = s
		}
	}

	sessionOpts := []workflow.Option{
		workflow.WithFieldSet(cfg.Fields),
		workflow.WithLocation(cfg.Schedule.Location()),
		workflow.WithLogger(logger),
	}
	if st != nil {
		sessionOpts = append(sessionOpts, workflow.WithAuditor(st))
	}
	d.Session = workflow.NewSession(client, sessionOpts...)
	d.Poller = appsync.New(client, st, appsync.ConfigFrom(*cfg), appsync.WithLogger(logger))

	if cfg.Mail.Enabled {
		stager, err := OpenStager(cfg.Mail)
		if err != nil {
			logger.Warn("mail drafts unavailable", "error", err)
		} else {
			d.Stager = stager
		}
	}

	return d, nil
}

// OpenStager builds the IMAP draft stager, reading the mailbox password
// from the keyring.
func OpenStager(cfg model.MailConfig) (*notify.Stager, error) {
	password, err := credential.Get(credential.KeyIMAPPassword)
	if err != nil {
		return nil, fmt.Errorf("reading mail password: %w", err)
	}
	return notify.NewStager(cfg, notify.NewIMAPDrafter(cfg, password)), nil
}

// Close stops the poller and closes the store.
func (d *Deps) Close() error {
	if d.Poller != nil {
		d.Poller.Stop()
	}
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
