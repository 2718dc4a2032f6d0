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
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        TEXT NOT NULL REFERENCES users(id),
	call_type      TEXT NOT NULL,
	checklist_type TEXT NOT NULL,
	text           TEXT NOT NULL,
	done           INTEGER NOT NULL DEFAULT 0 CHECK(done IN (0, 1)),
	parent_task_id INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_checklist
	ON tasks(user_id, call_type, checklist_type, parent_task_id);

CREATE INDEX IF NOT EXISTS idx_tasks_parent_task_id
	ON tasks(parent_task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
