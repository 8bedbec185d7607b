package ordering

import (
	"reflect"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		max  int64
		want int64
	}{
		{0, 1},
		{-3, 1},
		{1, 2},
		{41, 42},
	}
	for _, tt := range tests {
		if got := Next(tt.max); got != tt.want {
			t.Errorf("Next(%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts duplicates and gaps", func(t *testing.T) {
		batch := []Assignment{{ID: 1, SequenceNumber: 5}, {ID: 2, SequenceNumber: 5}, {ID: 3, SequenceNumber: 9}}
		if err := Validate(batch); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("accepts empty batch", func(t *testing.T) {
		if err := Validate(nil); err != nil {
			t.Errorf("Validate(nil) error = %v", err)
		}
	})

	t.Run("rejects zero sequence number", func(t *testing.T) {
		if err := Validate([]Assignment{{ID: 1, SequenceNumber: 0}}); err == nil {
			t.Error("Validate() expected error for sequence number 0")
		}
	})

	t.Run("rejects invalid id", func(t *testing.T) {
		if err := Validate([]Assignment{{ID: 0, SequenceNumber: 1}}); err == nil {
			t.Error("Validate() expected error for id 0")
		}
	})
}

func TestSort(t *testing.T) {
	items := []Item{{ID: 3, SequenceNumber: 2}, {ID: 1, SequenceNumber: 2}, {ID: 2, SequenceNumber: 1}}
	Sort(items)
	want := []Item{{ID: 2, SequenceNumber: 1}, {ID: 1, SequenceNumber: 2}, {ID: 3, SequenceNumber: 2}}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("Sort() = %v, want %v", items, want)
	}
}

func TestCompact(t *testing.T) {
	t.Run("closes gaps and splits duplicates", func(t *testing.T) {
		items := []Item{
			{ID: 10, SequenceNumber: 1},
			{ID: 11, SequenceNumber: 4},
			{ID: 12, SequenceNumber: 4},
			{ID: 13, SequenceNumber: 9},
		}
		got := Compact(items)
		want := []Assignment{
			{ID: 11, SequenceNumber: 2},
			{ID: 12, SequenceNumber: 3},
			{ID: 13, SequenceNumber: 4},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Compact() = %v, want %v", got, want)
		}
	})

	t.Run("already contiguous is a no-op", func(t *testing.T) {
		items := []Item{{ID: 1, SequenceNumber: 1}, {ID: 2, SequenceNumber: 2}}
		if got := Compact(items); len(got) != 0 {
			t.Errorf("Compact() = %v, want no assignments", got)
		}
	})

	t.Run("does not reorder the input slice", func(t *testing.T) {
		items := []Item{{ID: 2, SequenceNumber: 3}, {ID: 1, SequenceNumber: 1}}
		Compact(items)
		if items[0].ID != 2 {
			t.Errorf("input was reordered: %v", items)
		}
	})
}

func TestMove(t *testing.T) {
	items := []Item{
		{ID: 1, SequenceNumber: 1},
		{ID: 2, SequenceNumber: 2},
		{ID: 3, SequenceNumber: 3},
		{ID: 4, SequenceNumber: 4},
	}

	tests := []struct {
		name     string
		id       int64
		position int
		want     []Assignment
	}{
		{
			name:     "last to first",
			id:       4,
			position: 1,
			want: []Assignment{
				{ID: 4, SequenceNumber: 1},
				{ID: 1, SequenceNumber: 2},
				{ID: 2, SequenceNumber: 3},
				{ID: 3, SequenceNumber: 4},
			},
		},
		{
			name:     "first to third",
			id:       1,
			position: 3,
			want: []Assignment{
				{ID: 2, SequenceNumber: 1},
				{ID: 3, SequenceNumber: 2},
				{ID: 1, SequenceNumber: 3},
			},
		},
		{
			name:     "same position",
			id:       2,
			position: 2,
			want:     nil,
		},
		{
			name:     "clamps past the end",
			id:       2,
			position: 99,
			want: []Assignment{
				{ID: 3, SequenceNumber: 2},
				{ID: 4, SequenceNumber: 3},
				{ID: 2, SequenceNumber: 4},
			},
		},
		{
			name:     "clamps before the start",
			id:       3,
			position: -5,
			want: []Assignment{
				{ID: 3, SequenceNumber: 1},
				{ID: 1, SequenceNumber: 2},
				{ID: 2, SequenceNumber: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Move(items, tt.id, tt.position)
			if err != nil {
				t.Fatalf("Move() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Move() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		if _, err := Move(items, 99, 1); err == nil {
			t.Error("Move() expected error for unknown id")
		}
	})

	t.Run("leaves input untouched", func(t *testing.T) {
		before := append([]Item(nil), items...)
		if _, err := Move(items, 4, 1); err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if !reflect.DeepEqual(items, before) {
			t.Errorf("input modified: %v", items)
		}
	})
}
