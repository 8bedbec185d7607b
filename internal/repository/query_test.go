package repository

import (
	"context"
	"testing"
)

func TestQueryFacade(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	res, err := repos.Query.ExecuteCommand(ctx, "INSERT INTO projects (projectName) VALUES (?)", "raw")
	if err != nil {
		t.Fatalf("ExecuteCommand() error = %v", err)
	}
	if res.LastInsertID <= 0 || res.RowsAffected != 1 {
		t.Errorf("ExecuteCommand() = %+v, want a new id and one row", res)
	}

	rows, err := repos.Query.ExecuteSQL(ctx, "SELECT projectId, projectName FROM projects WHERE projectId = $1", res.LastInsertID)
	if err != nil {
		t.Fatalf("ExecuteSQL() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ExecuteSQL() returned %d rows, want 1", len(rows))
	}
	if rows[0]["projectName"] != "raw" {
		t.Errorf("projectName = %#v, want \"raw\"", rows[0]["projectName"])
	}
	if rows[0]["projectId"] != res.LastInsertID {
		t.Errorf("projectId = %#v, want %d", rows[0]["projectId"], res.LastInsertID)
	}

	empty, err := repos.Query.ExecuteSQL(ctx, "SELECT * FROM projects WHERE projectId = -1")
	if err != nil {
		t.Fatalf("ExecuteSQL() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ExecuteSQL() = %v, want empty non-nil slice", empty)
	}

	if _, err := repos.Query.ExecuteSQL(ctx, "SELECT * FROM nope"); err == nil {
		t.Error("ExecuteSQL() on a missing table expected error")
	}
	_, err = repos.Query.ExecuteCommand(ctx, "INSERT INTO storyboards (projectId, sequenceNumber) VALUES (999, 1)")
	requireErrorIs(t, err, ErrConstraint)
}
