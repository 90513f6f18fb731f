package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Jira.Mode)
	assert.Equal(t, "FSA", cfg.Jira.Project)
	assert.Equal(t, 600, cfg.Jira.PageSize)
	assert.Equal(t, 30, cfg.Jira.TimeoutSec)
	assert.Equal(t, DefaultFieldSet(), cfg.Fields)
	assert.Equal(t, []string{StatusScheduling, StatusScheduled, StatusInField}, cfg.Statuses.StatusNames())
	assert.Equal(t, []string{"11499", "11481", "11500"}, cfg.Statuses.StatusIDs())
	assert.Equal(t, 5, cfg.Dashboard.CriticalCount)
	assert.Equal(t, 7, cfg.Dashboard.StaleDays)
	assert.Equal(t, -3, cfg.Schedule.UTCOffsetHours)
	assert.Equal(t, "Drafts", cfg.Mail.Mailbox)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jira:
  mode: direct
  site_url: https://acme.atlassian.net
  page_size: 100
fields:
  store: customfield_1
dashboard:
  critical_count: 3
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "direct", cfg.Jira.Mode)
	assert.Equal(t, "https://acme.atlassian.net", cfg.Jira.SiteURL)
	assert.Equal(t, 100, cfg.Jira.PageSize)
	assert.Equal(t, 30, cfg.Jira.TimeoutSec)
	assert.Equal(t, "customfield_1", cfg.Fields.Store)
	assert.Equal(t, "customfield_14829", cfg.Fields.POS)
	assert.Equal(t, 3, cfg.Dashboard.CriticalCount)
	assert.Equal(t, 7, cfg.Dashboard.StaleDays)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FSDASH_JIRA_CLOUD_ID", "cloud-from-env")
	t.Setenv("FSDASH_DASHBOARD_STALE_DAYS", "10")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "cloud-from-env", cfg.Jira.CloudID)
	assert.Equal(t, 10, cfg.Dashboard.StaleDays)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jira:\n  page_size: 0\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Jira.Mode = "direct"
	cfg.Jira.SiteURL = "https://acme.atlassian.net"
	cfg.Jira.Email = "ops@example.com"
	cfg.Mail.To = []string{"field@example.com"}

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Jira, loaded.Jira)
	assert.Equal(t, cfg.Fields, loaded.Fields)
	assert.Equal(t, cfg.Statuses.Monitored, loaded.Statuses.Monitored)
	assert.Equal(t, cfg.Mail.To, loaded.Mail.To)
}

func TestFieldSet_SearchFields(t *testing.T) {
	fields := DefaultFieldSet().SearchFields()
	assert.Equal(t, "summary", fields[0])
	assert.Contains(t, fields, "customfield_14954")
	assert.Contains(t, fields, "resolutiondate")
	assert.Len(t, fields, 15)

	assert.Equal(t,
		[]string{"summary", "customfield_9", "status", "created", "resolutiondate", "updated"},
		FieldSet{Store: "customfield_9"}.SearchFields(),
	)
}

func TestScheduleConfig_Location(t *testing.T) {
	loc := ScheduleConfig{UTCOffsetHours: -3}.Location()
	_, offset := time.Date(2026, 10, 21, 9, 0, 0, 0, loc).Zone()
	assert.Equal(t, -3*60*60, offset)
}
