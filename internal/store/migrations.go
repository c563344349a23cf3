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

CREATE TABLE IF NOT EXISTS users (
	id          INTEGER PRIMARY KEY,
	username    TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	first_name  TEXT NOT NULL DEFAULT '',
	last_name   TEXT NOT NULL DEFAULT '',
	saved_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS incoming_emails (
	id           INTEGER PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'unread',
	received_at  DATETIME NOT NULL,
	payload      TEXT NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_incoming_received ON incoming_emails(received_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS ai_generations (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	request_id  INTEGER,
	success     INTEGER NOT NULL DEFAULT 0,
	content     TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ai_generations_kind ON ai_generations(kind);
CREATE INDEX IF NOT EXISTS idx_ai_generations_created ON ai_generations(created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
