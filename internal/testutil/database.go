package testutil

import (
	"context"
	"testing"

	"videoflow/internal/database"
)

// NewTestDB creates a new in-memory SQLite database with the schema applied.
// The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:", 0)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}
