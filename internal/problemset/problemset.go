// Package problemset holds the editable, ordered problem set of one session.
package problemset

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned by Update for an ID not in the set.
	ErrItemNotFound = errors.New("problem item not found")

	// ErrUnknownField is returned by Update for a field other than
	// FieldProblem or FieldSolution.
	ErrUnknownField = errors.New("unknown problem item field")
)

// Status records how an item's text came to be.
type Status string

const (
	StatusOK        Status = "ok"
	StatusMalformed Status = "malformed" // separator missing in the completion
	StatusFailed    Status = "failed"    // completion call failed
)

// Field names an editable part of an Item.
type Field string

const (
	FieldProblem  Field = "problem"
	FieldSolution Field = "solution"
)

// ParseField maps a user-facing field name to a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldProblem, FieldSolution:
		return Field(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Item is one generated problem with its worked solution. IDs are 1-based
// and follow generation order.
type Item struct {
	ID       int    `json:"id"`
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Status   Status `json:"status"`
}

// Set is the ordered problem set. It is owned by exactly one session and
// does no locking of its own.
type Set struct {
	items []Item
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// ReplaceAll discards the current items and installs items in their place.
// A nil slice empties the set.
func (s *Set) ReplaceAll(items []Item) {
	s.items = append([]Item(nil), items...)
}

// Append adds one item at the end. Batches call it after every completion
// so partial results are visible while the batch runs.
func (s *Set) Append(item Item) {
	s.items = append(s.items, item)
}

// Update replaces one field of one item. Text is stored as given.
func (s *Set) Update(id int, field Field, text string) error {
	if field != FieldProblem && field != FieldSolution {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	switch field {
	case FieldProblem:
		s.items[i].Problem = text
	case FieldSolution:
		s.items[i].Solution = text
	}
	return nil
}

// Items returns a copy of the items in order.
func (s *Set) Items() []Item {
	return append([]Item{}, s.items...)
}

// Get returns the item with the given ID.
func (s *Set) Get(id int) (Item, bool) {
	i := s.index(id)
	if i < 0 {
		return Item{}, false
	}
	return s.items[i], true
}

// Len returns the number of items.
func (s *Set) Len() int {
	return len(s.items)
}

// Counts tallies items by status.
func (s *Set) Counts() map[Status]int {
	out := make(map[Status]int, 3)
	for _, it := range s.items {
		out[it.Status]++
	}
	return out
}

func (s *Set) index(id int) int {
	// IDs are 1..n in order after a completed batch; fall back to a scan
	// for sets installed through ReplaceAll with other numbering.
	if id >= 1 && id <= len(s.items) && s.items[id-1].ID == id {
		return id - 1
	}
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
