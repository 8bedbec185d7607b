// Package ordering assigns and renumbers sequence numbers for ordered
// children (storyboards within a project, dialogues within a storyboard).
//
// Everything here is pure: callers read the current rows, ask this package
// what to write, and apply the result themselves. Duplicate and
// non-contiguous sequence numbers are accepted wherever callers supply them;
// only Compact and Move produce contiguous numbering.
package ordering

import (
	"fmt"
	"sort"
)

// Item is a row as seen by the ordering engine.
type Item struct {
	ID             int64
	SequenceNumber int64
}

// Assignment sets the sequence number of a single row.
type Assignment struct {
	ID             int64
	SequenceNumber int64
}

// Next returns the sequence number for a row appended after currentMax.
// An empty parent (currentMax <= 0) starts at 1.
func Next(currentMax int64) int64 {
	if currentMax <= 0 {
		return 1
	}
	return currentMax + 1
}

// Validate checks that every assignment names a real row id and a sequence
// number of at least 1. It does not check for duplicates or gaps.
func Validate(batch []Assignment) error {
	for i, a := range batch {
		if a.ID <= 0 {
			return fmt.Errorf("assignment %d: invalid id %d", i, a.ID)
		}
		if a.SequenceNumber < 1 {
			return fmt.Errorf("assignment %d: sequence number %d must be at least 1", i, a.SequenceNumber)
		}
	}
	return nil
}

// Sort orders items by sequence number, breaking ties by id so rows that
// share a number keep their creation order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SequenceNumber != items[j].SequenceNumber {
			return items[i].SequenceNumber < items[j].SequenceNumber
		}
		return items[i].ID < items[j].ID
	})
}

// Compact renumbers items to 1..n in their current order and returns only
// the assignments that change a stored value.
func Compact(items []Item) []Assignment {
	sorted := append([]Item(nil), items...)
	Sort(sorted)
	return renumber(sorted, items)
}

// Move places the item with the given id at 1-based position, shifting the
// others, and returns the assignments that produce contiguous numbering.
// Positions outside 1..n are clamped.
func Move(items []Item, id int64, position int) ([]Assignment, error) {
	sorted := append([]Item(nil), items...)
	Sort(sorted)

	from := -1
	for i, it := range sorted {
		if it.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("item %d is not in the sequence", id)
	}

	to := position - 1
	if to < 0 {
		to = 0
	}
	if to > len(sorted)-1 {
		to = len(sorted) - 1
	}

	moved := sorted[from]
	rest := append(sorted[:from:from], sorted[from+1:]...)
	reordered := make([]Item, 0, len(sorted))
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)

	return renumber(reordered, items), nil
}

// renumber assigns 1..n to ordered and keeps the entries whose number
// differs from the one recorded in original.
func renumber(ordered []Item, original []Item) []Assignment {
	current := make(map[int64]int64, len(original))
	for _, it := range original {
		current[it.ID] = it.SequenceNumber
	}

	var out []Assignment
	for i, it := range ordered {
		seq := int64(i + 1)
		if current[it.ID] != seq {
			out = append(out, Assignment{ID: it.ID, SequenceNumber: seq})
		}
	}
	return out
}
