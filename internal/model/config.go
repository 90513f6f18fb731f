package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (FSDASH_JIRA_MODE, ...).
const EnvPrefix = "FSDASH"

// JiraConfig holds how the dashboard reaches the ticketing service.
type JiraConfig struct {
	// Mode is "routed" (API gateway addressed by cloud id) or "direct"
	// (the tenant's own site URL). Empty means routed unless the secrets
	// file turns the gateway off.
	Mode string `mapstructure:"mode" yaml:"mode"`

	SiteURL string `mapstructure:"site_url" yaml:"site_url"`
	CloudID string `mapstructure:"cloud_id" yaml:"cloud_id"`
	Email   string `mapstructure:"email" yaml:"email"`

	// Project is the project key monitored by the dashboard.
	Project string `mapstructure:"project" yaml:"project"`

	PageSize   int `mapstructure:"page_size" yaml:"page_size"`
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// FieldSet maps the logical ticket attributes to the tenant's custom field
// ids.
type FieldSet struct {
	Store       string `mapstructure:"store" yaml:"store"`
	POS         string `mapstructure:"pos" yaml:"pos"`
	Asset       string `mapstructure:"asset" yaml:"asset"`
	Problem     string `mapstructure:"problem" yaml:"problem"`
	Address     string `mapstructure:"address" yaml:"address"`
	PostalCode  string `mapstructure:"postal_code" yaml:"postal_code"`
	City        string `mapstructure:"city" yaml:"city"`
	State       string `mapstructure:"state" yaml:"state"`
	ScheduledAt string `mapstructure:"scheduled_at" yaml:"scheduled_at"`
	Technicians string `mapstructure:"technicians" yaml:"technicians"`
}

// SearchFields returns the field projection requested on every search.
func (f FieldSet) SearchFields() []string {
	fields := []string{"summary"}
	for _, id := range []string{
		f.Store, f.POS, f.Asset, f.Problem, f.Address,
		f.PostalCode, f.City, f.State, f.ScheduledAt, f.Technicians,
	} {
		if id != "" {
			fields = append(fields, id)
		}
	}
	return append(fields, "status", "created", "resolutiondate", "updated")
}

// StatusRef names a workflow status by display name and id.
type StatusRef struct {
	Name string `mapstructure:"name" yaml:"name"`
	ID   string `mapstructure:"id" yaml:"id"`
}

// StatusConfig lists the statuses the dashboard watches.
type StatusConfig struct {
	// Monitored are the open statuses shown as tabs, in display order.
	Monitored []StatusRef `mapstructure:"monitored" yaml:"monitored"`

	// Resolved are the statuses (ids or names) counted as closed.
	Resolved []string `mapstructure:"resolved" yaml:"resolved"`

	// AwaitingSpare is the status of tickets waiting for a replacement part.
	AwaitingSpare string `mapstructure:"awaiting_spare" yaml:"awaiting_spare"`

	// StoreSearchField is the JQL clause name of the store dropdown.
	StoreSearchField string `mapstructure:"store_search_field" yaml:"store_search_field"`
}

// DashboardConfig holds aggregation thresholds.
type DashboardConfig struct {
	CriticalCount      int `mapstructure:"critical_count" yaml:"critical_count"`
	StaleDays          int `mapstructure:"stale_days" yaml:"stale_days"`
	HighlightMin       int `mapstructure:"highlight_min" yaml:"highlight_min"`
	ResolvedWindowDays int `mapstructure:"resolved_window_days" yaml:"resolved_window_days"`
	RefreshSec         int `mapstructure:"refresh_sec" yaml:"refresh_sec"`
}

// ScheduleConfig holds the fixed offset used when writing scheduled dates.
type ScheduleConfig struct {
	UTCOffsetHours int `mapstructure:"utc_offset_hours" yaml:"utc_offset_hours"`
}

// Location returns the fixed zone scheduled dates are written in.
func (s ScheduleConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", s.UTCOffsetHours), s.UTCOffsetHours*60*60)
}

// MailConfig holds the IMAP account used to stage dispatch e-mails as
// drafts.
type MailConfig struct {
	Enabled  bool     `mapstructure:"enabled" yaml:"enabled"`
	Host     string   `mapstructure:"host" yaml:"host"`
	Port     int      `mapstructure:"port" yaml:"port"`
	Username string   `mapstructure:"username" yaml:"username"`
	From     string   `mapstructure:"from" yaml:"from"`
	To       []string `mapstructure:"to" yaml:"to"`
	Mailbox  string   `mapstructure:"mailbox" yaml:"mailbox"`
}

// StoreConfig locates the local SQLite cache.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Jira      JiraConfig      `mapstructure:"jira" yaml:"jira"`
	Fields    FieldSet        `mapstructure:"fields" yaml:"fields"`
	Statuses  StatusConfig    `mapstructure:"statuses" yaml:"statuses"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Schedule  ScheduleConfig  `mapstructure:"schedule" yaml:"schedule"`
	Mail      MailConfig      `mapstructure:"mail" yaml:"mail"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
}

// ConfigDir returns ~/.config/fieldservice.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "fieldservice")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/fieldservice/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultFieldSet returns the custom field ids of the FSA project.
func DefaultFieldSet() FieldSet {
	return FieldSet{
		Store:       "customfield_14954",
		POS:         "customfield_14829",
		Asset:       "customfield_14825",
		Problem:     "customfield_12374",
		Address:     "customfield_12271",
		PostalCode:  "customfield_11993",
		City:        "customfield_11994",
		State:       "customfield_11948",
		ScheduledAt: "customfield_12036",
		Technicians: "customfield_12279",
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Jira: JiraConfig{
			Project:    "FSA",
			PageSize:   600,
			TimeoutSec: 30,
		},
		Fields: DefaultFieldSet(),
		Statuses: StatusConfig{
			Monitored: []StatusRef{
				{Name: StatusScheduling, ID: "11499"},
				{Name: StatusScheduled, ID: "11481"},
				{Name: StatusInField, ID: "11500"},
			},
			Resolved:         []string{"11498", "10702", "Encerrado", "Resolvido"},
			AwaitingSpare:    StatusAwaitingSpare,
			StoreSearchField: "Codigo da Loja[Dropdown]",
		},
		Dashboard: DashboardConfig{
			CriticalCount:      5,
			StaleDays:          7,
			HighlightMin:       2,
			ResolvedWindowDays: 14,
			RefreshSec:         90,
		},
		Schedule: ScheduleConfig{UTCOffsetHours: -3},
		Mail: MailConfig{
			Port:    993,
			Mailbox: "Drafts",
		},
		Store: StoreConfig{
			Path: filepath.Join(ConfigDir(), "fsdash.db"),
		},
	}
}

// setDefaults registers every scalar default so env overrides resolve even
// when the key is absent from the file.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("jira.mode", cfg.Jira.Mode)
	v.SetDefault("jira.site_url", cfg.Jira.SiteURL)
	v.SetDefault("jira.cloud_id", cfg.Jira.CloudID)
	v.SetDefault("jira.email", cfg.Jira.Email)
	v.SetDefault("jira.project", cfg.Jira.Project)
	v.SetDefault("jira.page_size", cfg.Jira.PageSize)
	v.SetDefault("jira.timeout_sec", cfg.Jira.TimeoutSec)

	v.SetDefault("fields.store", cfg.Fields.Store)
	v.SetDefault("fields.pos", cfg.Fields.POS)
	v.SetDefault("fields.asset", cfg.Fields.Asset)
	v.SetDefault("fields.problem", cfg.Fields.Problem)
	v.SetDefault("fields.address", cfg.Fields.Address)
	v.SetDefault("fields.postal_code", cfg.Fields.PostalCode)
	v.SetDefault("fields.city", cfg.Fields.City)
	v.SetDefault("fields.state", cfg.Fields.State)
	v.SetDefault("fields.scheduled_at", cfg.Fields.ScheduledAt)
	v.SetDefault("fields.technicians", cfg.Fields.Technicians)

	v.SetDefault("statuses.awaiting_spare", cfg.Statuses.AwaitingSpare)
	v.SetDefault("statuses.store_search_field", cfg.Statuses.StoreSearchField)

	v.SetDefault("dashboard.critical_count", cfg.Dashboard.CriticalCount)
	v.SetDefault("dashboard.stale_days", cfg.Dashboard.StaleDays)
	v.SetDefault("dashboard.highlight_min", cfg.Dashboard.HighlightMin)
	v.SetDefault("dashboard.resolved_window_days", cfg.Dashboard.ResolvedWindowDays)
	v.SetDefault("dashboard.refresh_sec", cfg.Dashboard.RefreshSec)

	v.SetDefault("schedule.utc_offset_hours", cfg.Schedule.UTCOffsetHours)

	v.SetDefault("mail.enabled", cfg.Mail.Enabled)
	v.SetDefault("mail.host", cfg.Mail.Host)
	v.SetDefault("mail.port", cfg.Mail.Port)
	v.SetDefault("mail.username", cfg.Mail.Username)
	v.SetDefault("mail.from", cfg.Mail.From)
	v.SetDefault("mail.mailbox", cfg.Mail.Mailbox)

	v.SetDefault("store.path", cfg.Store.Path)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, the defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings no component can work with. Missing
// connection details are left to the Jira client, which reports them as
// configuration errors of its own.
func (c *AppConfig) Validate() error {
	if c.Jira.PageSize <= 0 {
		return fmt.Errorf("jira.page_size must be positive, got %d", c.Jira.PageSize)
	}
	if c.Jira.TimeoutSec <= 0 {
		return fmt.Errorf("jira.timeout_sec must be positive, got %d", c.Jira.TimeoutSec)
	}
	if len(c.Statuses.Monitored) == 0 {
		return errors.New("statuses.monitored must list at least one status")
	}
	if c.Schedule.UTCOffsetHours < -12 || c.Schedule.UTCOffsetHours > 14 {
		return fmt.Errorf("schedule.utc_offset_hours out of range: %d", c.Schedule.UTCOffsetHours)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("jira", cfg.Jira)
	v.Set("fields", cfg.Fields)
	v.Set("statuses", cfg.Statuses)
	v.Set("dashboard", cfg.Dashboard)
	v.Set("schedule", cfg.Schedule)
	v.Set("mail", cfg.Mail)
	v.Set("store", cfg.Store)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
