package repository

import (
	"context"
	"errors"
	"testing"

	"videoflow/internal/model"
	"videoflow/internal/testutil"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	return New(testutil.NewTestDB(t), NewNopLogger())
}

func mustProject(t *testing.T, repos *Repositories, name string) int64 {
	t.Helper()
	id, err := repos.Projects.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("Projects.Create(%q) error = %v", name, err)
	}
	return id
}

func mustStoryboard(t *testing.T, repos *Repositories, in model.NewStoryboard) int64 {
	t.Helper()
	id, err := repos.Storyboards.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Storyboards.Create() error = %v", err)
	}
	return id
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want errors.Is(%v)", err, target)
	}
}
