package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS ticket_snapshots (
	key         TEXT PRIMARY KEY,
	store       TEXT NOT NULL,
	status      TEXT NOT NULL,
	summary     TEXT NOT NULL DEFAULT '',
	payload     TEXT NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1,
	first_seen  DATETIME NOT NULL,
	last_seen   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_status ON ticket_snapshots(status);
CREATE INDEX IF NOT EXISTS idx_snapshots_store ON ticket_snapshots(store);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	issue_key   TEXT NOT NULL DEFAULT '',
	store       TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL,
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS transition_log (
	id             TEXT PRIMARY KEY,
	action         TEXT NOT NULL,
	issue_key      TEXT NOT NULL,
	transition_id  TEXT NOT NULL DEFAULT '',
	success        INTEGER NOT NULL,
	status_code    INTEGER NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transition_log_key ON transition_log(issue_key);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
