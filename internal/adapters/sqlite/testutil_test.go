// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/foreman/internal/db"
	"github.com/example/foreman/internal/models"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTask builds a task value for CreatePlan fixtures.
func seedTask(ordinal int, title, group string, criteria ...string) *models.Task {
	t := &models.Task{
		Ordinal:       ordinal,
		Title:         title,
		Description:   "description of " + title,
		ParallelGroup: group,
	}
	if len(criteria) == 0 {
		criteria = []string{"default criterion"}
	}
	for i, desc := range criteria {
		t.Criteria = append(t.Criteria, models.Criterion{
			Position:    i + 1,
			Description: desc,
			Check:       "true",
			Evidence:    "exit status",
		})
	}
	return t
}
