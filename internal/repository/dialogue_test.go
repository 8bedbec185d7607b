package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"videoflow/internal/model"
	"videoflow/internal/ordering"
)

func TestDialogueRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Repositories, int64) {
		t.Helper()
		repos := newTestRepos(t)
		pid := mustProject(t, repos, "p")
		return repos, mustStoryboard(t, repos, model.NewStoryboard{ProjectID: pid})
	}

	t.Run("auto-assigns within storyboard", func(t *testing.T) {
		repos, sid := setup(t)

		for i, content := range []string{"one", "two", "three"} {
			id, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: content})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			d, _ := repos.Dialogues.GetByID(ctx, id)
			if d.SequenceNumber != int64(i+1) {
				t.Errorf("%s sequence = %d, want %d", content, d.SequenceNumber, i+1)
			}
		}

		lines, err := repos.Dialogues.GetByStoryboardID(ctx, sid)
		if err != nil {
			t.Fatalf("GetByStoryboardID() error = %v", err)
		}
		if len(lines) != 3 || lines[0].Content != "one" || lines[2].Content != "three" {
			t.Errorf("GetByStoryboardID() order wrong: %+v", lines)
		}
	})

	t.Run("optional fields", func(t *testing.T) {
		repos, sid := setup(t)

		id, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "hi", Character: "Ann"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		d, _ := repos.Dialogues.GetByID(ctx, id)
		if d.Character == nil || *d.Character != "Ann" {
			t.Errorf("Character = %v, want Ann", d.Character)
		}
		if d.Tone != nil {
			t.Errorf("Tone = %q, want nil", *d.Tone)
		}
	})

	t.Run("content required", func(t *testing.T) {
		repos, sid := setup(t)

		_, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "  "})
		requireErrorIs(t, err, ErrValidation)

		id, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "ok"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		requireErrorIs(t, repos.Dialogues.Update(ctx, id, model.DialoguePatch{Content: model.Set("")}), ErrValidation)
	})

	t.Run("unknown storyboard", func(t *testing.T) {
		repos, _ := setup(t)
		_, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: 999, Content: "x"})
		requireErrorIs(t, err, ErrConstraint)
	})

	t.Run("partial update", func(t *testing.T) {
		repos, sid := setup(t)
		id, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "hi", Character: "Ann", Tone: "calm"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		err = repos.Dialogues.Update(ctx, id, model.DialoguePatch{Tone: model.Text("angry"), Character: model.Null[string]()})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		d, _ := repos.Dialogues.GetByID(ctx, id)
		if d.Content != "hi" {
			t.Errorf("Content = %q, want hi", d.Content)
		}
		if d.Character != nil {
			t.Errorf("Character = %q, want nil", *d.Character)
		}
		if d.Tone == nil || *d.Tone != "angry" {
			t.Errorf("Tone = %v, want angry", d.Tone)
		}
	})

	t.Run("reorder", func(t *testing.T) {
		repos, sid := setup(t)
		a, _ := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "a"})
		b, _ := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "b"})

		batch := []ordering.Assignment{{ID: a, SequenceNumber: 2}, {ID: b, SequenceNumber: 1}}
		if err := repos.Dialogues.UpdateSequences(ctx, batch); err != nil {
			t.Fatalf("UpdateSequences() error = %v", err)
		}
		lines, _ := repos.Dialogues.GetByStoryboardID(ctx, sid)
		if lines[0].ID != b || lines[1].ID != a {
			t.Errorf("order = [%d %d], want [%d %d]", lines[0].ID, lines[1].ID, b, a)
		}

		if _, err := repos.Dialogues.Move(ctx, b, 2); err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		lines, _ = repos.Dialogues.GetByStoryboardID(ctx, sid)
		if lines[0].ID != a || lines[1].ID != b {
			t.Errorf("order after move = [%d %d], want [%d %d]", lines[0].ID, lines[1].ID, a, b)
		}

		if err := repos.Dialogues.UpdateSequence(ctx, a, 10); err != nil {
			t.Fatalf("UpdateSequence() error = %v", err)
		}
		if _, err := repos.Dialogues.Compact(ctx, sid); err != nil {
			t.Fatalf("Compact() error = %v", err)
		}
		lines, _ = repos.Dialogues.GetByStoryboardID(ctx, sid)
		if lines[0].ID != b || lines[0].SequenceNumber != 1 || lines[1].SequenceNumber != 2 {
			t.Errorf("after compact = %+v", lines)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repos, sid := setup(t)
		id, _ := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: "x"})

		if err := repos.Dialogues.Delete(ctx, id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		d, err := repos.Dialogues.GetByID(ctx, id)
		if err != nil || d != nil {
			t.Errorf("GetByID() after delete = %v, %v, want nil, nil", d, err)
		}
		requireErrorIs(t, repos.Dialogues.Delete(ctx, id), ErrNotFound)
	})
}

func TestDialogueRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	pid := mustProject(t, repos, "p")
	sid := mustStoryboard(t, repos, model.NewStoryboard{ProjectID: pid})

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repos.Dialogues.Create(ctx, model.NewDialogue{StoryboardID: sid, Content: fmt.Sprintf("line %d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	lines, err := repos.Dialogues.GetByStoryboardID(ctx, sid)
	if err != nil {
		t.Fatalf("GetByStoryboardID() error = %v", err)
	}
	if len(lines) != n {
		t.Fatalf("got %d lines, want %d", len(lines), n)
	}
	seen := make(map[int64]bool, n)
	for _, d := range lines {
		if d.SequenceNumber < 1 || d.SequenceNumber > n || seen[d.SequenceNumber] {
			t.Errorf("sequence %d is out of range or repeated", d.SequenceNumber)
		}
		seen[d.SequenceNumber] = true
	}
}
