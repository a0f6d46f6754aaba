package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Note is an ordered free-text entry with no associated time. Position
// drives manual ordering; values are not required to be contiguous.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewNote(text string, position int) (Note, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Note{}, err
	}
	return Note{
		ID:        id,
		Text:      text,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}

// SortNotes orders notes ascending by position, insertion order on ties.
func SortNotes(items []Note) []Note {
	out := make([]Note, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// NextPosition returns the position a freshly appended note should take:
// ten past the current maximum, so later drag-insertions stay cheap.
func NextPosition(items []Note) int {
	max := 0
	for _, it := range items {
		if it.Position > max {
			max = it.Position
		}
	}
	return max + 10
}

// MoveNotes moves the items at the given indices in front of the item at
// the target index, matching the usual list-reorder gesture: the target
// is interpreted against the slice before removal. Every position is then
// reassigned to (index+1)*10 in the new order, normalizing any gaps left
// by earlier reorders. Out-of-range indices are ignored.
func MoveNotes(items []Note, from []int, to int) []Note {
	picked := make(map[int]bool, len(from))
	for _, i := range from {
		if i >= 0 && i < len(items) {
			picked[i] = true
		}
	}
	if to < 0 {
		to = 0
	}
	if to > len(items) {
		to = len(items)
	}

	moved := make([]Note, 0, len(picked))
	rest := make([]Note, 0, len(items)-len(picked))
	insertAt := to
	for i, it := range items {
		if picked[i] {
			moved = append(moved, it)
			if i < to {
				insertAt--
			}
			continue
		}
		rest = append(rest, it)
	}

	out := make([]Note, 0, len(items))
	out = append(out, rest[:insertAt]...)
	out = append(out, moved...)
	out = append(out, rest[insertAt:]...)
	for i := range out {
		out[i].Position = (i + 1) * 10
	}
	return out
}
