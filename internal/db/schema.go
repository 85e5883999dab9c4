package db

// schemaSQL is the authoritative schema. Tests load it through
// GetSchemaSQL so test databases never drift from production.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    plan_id TEXT NOT NULL REFERENCES plans(id),
    ordinal INTEGER NOT NULL,
    ref TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    parallel_group TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    attempts INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    claimed_at TIMESTAMP,
    completed_at TIMESTAMP,
    PRIMARY KEY (plan_id, ordinal)
);

CREATE TABLE IF NOT EXISTS criteria (
    plan_id TEXT NOT NULL,
    task_ordinal INTEGER NOT NULL,
    position INTEGER NOT NULL,
    description TEXT NOT NULL,
    check_cmd TEXT,
    evidence TEXT,
    PRIMARY KEY (plan_id, task_ordinal, position),
    FOREIGN KEY (plan_id, task_ordinal) REFERENCES tasks(plan_id, ordinal)
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(plan_id, status);
`

// GetSchemaSQL returns the authoritative schema SQL.
func GetSchemaSQL() string {
	return schemaSQL
}

// InitSchema applies the schema to the shared connection.
func InitSchema() error {
	database, err := GetDB()
	if err != nil {
		return err
	}
	_, err = database.Exec(schemaSQL)
	return err
}
