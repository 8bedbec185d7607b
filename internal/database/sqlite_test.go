package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:", 0)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

func countProjects(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		t.Fatalf("counting projects: %v", err)
	}
	return n
}

func TestOpenConnection(t *testing.T) {
	t.Run("enables foreign keys", func(t *testing.T) {
		db, err := OpenConnection(":memory:", 0)
		if err != nil {
			t.Fatalf("OpenConnection() error = %v", err)
		}
		defer db.Close()

		var fk int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("reading pragma: %v", err)
		}
		if fk != 1 {
			t.Errorf("foreign_keys = %d, want 1", fk)
		}
	})

	t.Run("applies busy timeout", func(t *testing.T) {
		db, err := OpenConnection(":memory:", 1234)
		if err != nil {
			t.Fatalf("OpenConnection() error = %v", err)
		}
		defer db.Close()

		var timeout int
		if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("reading pragma: %v", err)
		}
		if timeout != 1234 {
			t.Errorf("busy_timeout = %d, want 1234", timeout)
		}
	})

	t.Run("unreachable path is storage unavailable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "video_flow.db")
		db, err := OpenConnection(path, 0)
		if err == nil {
			db.Close()
			t.Fatal("OpenConnection() expected error, got nil")
		}
		if !errors.Is(err, ErrStorageUnavailable) {
			t.Errorf("error = %v, want ErrStorageUnavailable", err)
		}
	})
}

func TestDB_EnsureSchema(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		if _, err := db.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('kept')"); err != nil {
			t.Fatalf("insert: %v", err)
		}
		for i := 0; i < 3; i++ {
			if err := db.EnsureSchema(ctx); err != nil {
				t.Fatalf("EnsureSchema() call %d error = %v", i+2, err)
			}
		}
		if got := countProjects(t, db); got != 1 {
			t.Errorf("projects = %d, want 1", got)
		}
		if err := db.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
	})

	t.Run("rejected inside transaction", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		err := db.WithTx(ctx, func(tx *DB) error {
			return tx.EnsureSchema(ctx)
		})
		if err == nil {
			t.Fatal("EnsureSchema() inside WithTx expected error, got nil")
		}
	})
}

func TestDB_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on nil", func(t *testing.T) {
		db := newTestDB(t)

		err := db.WithTx(ctx, func(tx *DB) error {
			if !tx.InTx() {
				t.Error("InTx() = false inside WithTx")
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('a')")
			return err
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
		if got := countProjects(t, db); got != 1 {
			t.Errorf("projects = %d, want 1", got)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		boom := errors.New("boom")

		err := db.WithTx(ctx, func(tx *DB) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('a')"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithTx() error = %v, want boom", err)
		}
		if got := countProjects(t, db); got != 0 {
			t.Errorf("projects = %d, want 0 after rollback", got)
		}
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		db := newTestDB(t)

		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic to propagate")
				}
			}()
			_ = db.WithTx(ctx, func(tx *DB) error {
				if _, err := tx.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('a')"); err != nil {
					return err
				}
				panic("boom")
			})
		}()

		if got := countProjects(t, db); got != 0 {
			t.Errorf("projects = %d, want 0 after panic", got)
		}
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		db := newTestDB(t)
		boom := errors.New("boom")

		err := db.WithTx(ctx, func(tx *DB) error {
			inner := tx.WithTx(ctx, func(inner *DB) error {
				if inner != tx {
					t.Error("nested WithTx did not reuse the outer transaction")
				}
				_, err := inner.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('a')")
				return err
			})
			if inner != nil {
				return inner
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithTx() error = %v, want boom", err)
		}
		if got := countProjects(t, db); got != 0 {
			t.Errorf("projects = %d, want 0: inner work must roll back with the outer transaction", got)
		}
	})

	t.Run("closing transaction-bound handle is a no-op", func(t *testing.T) {
		db := newTestDB(t)

		err := db.WithTx(ctx, func(tx *DB) error {
			return tx.Close()
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
		if got := countProjects(t, db); got != 0 {
			t.Errorf("projects = %d, want 0", got)
		}
	})
}

func TestDB_ForeignKeyCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res, err := db.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('p')")
	if err != nil {
		t.Fatalf("insert project: %v", err)
	}
	pid, _ := res.LastInsertId()
	if _, err := db.ExecContext(ctx, "INSERT INTO storyboards (projectId, sequenceNumber) VALUES (?, 1)", pid); err != nil {
		t.Fatalf("insert storyboard: %v", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM projects WHERE projectId = ?", pid); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM storyboards").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("storyboards = %d, want 0 after cascade", n)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO storyboards (projectId, sequenceNumber) VALUES (999, 1)")
	if !IsConstraint(err) || !IsForeignKeyViolation(err) {
		t.Errorf("orphan insert error = %v, want foreign key violation", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO tags (name) VALUES ('x')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.ExecContext(ctx, "INSERT INTO tags (name) VALUES ('x')")
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsForeignKeyViolation(err) {
		t.Error("IsForeignKeyViolation() = true for unique conflict")
	}
	if IsConstraint(errors.New("other")) {
		t.Error("IsConstraint() = true for a plain error")
	}
}

func TestDB_Schema(t *testing.T) {
	db := newTestDB(t)

	schema, err := db.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE projects",
		"CREATE TABLE storyboards",
		"CREATE TABLE lip_sync_models",
		"CREATE INDEX idx_dialogues_storyboard",
		"CREATE TRIGGER projects_default_timestamps",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("Schema() missing %q", want)
		}
	}
	if strings.Contains(schema, "schema_migrations") {
		t.Error("Schema() should not include the migration bookkeeping table")
	}
}

func TestDB_Tables(t *testing.T) {
	db := newTestDB(t)

	tables, err := db.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	want := map[string]bool{"projects": true, "dialogues": true, "video_tags": true}
	for _, name := range tables {
		delete(want, name)
	}
	if len(want) != 0 {
		t.Errorf("Tables() = %v, missing %v", tables, want)
	}
}

func TestDB_BackupTo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := New(filepath.Join(dir, "video_flow.db"), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO projects (projectName) VALUES ('backed up')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dest := filepath.Join(dir, "backup.db")
	if err := db.BackupTo(ctx, dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	restored, err := New(dest, 0)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer restored.Close()

	var name string
	if err := restored.QueryRowContext(ctx, "SELECT projectName FROM projects").Scan(&name); err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if name != "backed up" {
		t.Errorf("projectName = %q, want %q", name, "backed up")
	}
}

func TestDB_Path(t *testing.T) {
	db := newTestDB(t)
	if db.Path() != ":memory:" {
		t.Errorf("Path() = %q, want :memory:", db.Path())
	}
}

func TestDB_MigrationStatus(t *testing.T) {
	db := newTestDB(t)

	st, err := db.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if st.Dirty || st.Version == 0 || st.Version != st.Latest {
		t.Errorf("MigrationStatus() = %+v, want clean and current", st)
	}
}
