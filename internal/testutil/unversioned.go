package testutil

import (
	"context"
	_ "embed"
	"testing"

	"videoflow/internal/database"
)

// UnversionedSchema is the DDL of databases created before schema
// versioning. Its projects table has no timestamp columns.
//
//go:embed testdata/unversioned_schema.sql
var UnversionedSchema string

// NewUnversionedTestDB creates an in-memory database holding
// UnversionedSchema with no migration applied.
func NewUnversionedTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:", 0)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if _, err := db.ExecContext(context.Background(), UnversionedSchema); err != nil {
		t.Fatalf("failed to create unversioned schema: %v", err)
	}
	return db
}
