package problemset

import (
	"errors"
	"fmt"
	"testing"
)

func threeItems() []Item {
	items := make([]Item, 3)
	for i := range items {
		items[i] = Item{
			ID:       i + 1,
			Problem:  fmt.Sprintf("problem %d", i+1),
			Solution: fmt.Sprintf("solution %d", i+1),
			Status:   StatusOK,
		}
	}
	return items
}

func TestUpdate_ChangesOnlyTargetField(t *testing.T) {
	s := New()
	s.ReplaceAll(threeItems())
	before := s.Items()

	if err := s.Update(2, FieldProblem, "X"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := s.Items()
	for i := range before {
		want := before[i]
		if want.ID == 2 {
			want.Problem = "X"
		}
		if after[i] != want {
			t.Errorf("item %d = %+v, want %+v", i+1, after[i], want)
		}
	}
}

func TestUpdate_Solution(t *testing.T) {
	s := New()
	s.ReplaceAll(threeItems())

	if err := s.Update(3, FieldSolution, "x = 2\n(検算: 2×2+3=7)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.Get(3)
	if got.Solution != "x = 2\n(検算: 2×2+3=7)" || got.Problem != "problem 3" {
		t.Errorf("unexpected item: %+v", got)
	}
}

func TestUpdate_Errors(t *testing.T) {
	s := New()
	s.ReplaceAll(threeItems())

	if err := s.Update(9, FieldProblem, "X"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := s.Update(1, Field("title"), "X"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if got, _ := s.Get(1); got.Problem != "problem 1" {
		t.Errorf("failed update must not modify the item: %+v", got)
	}
}

func TestReplaceAll_DiscardsPrevious(t *testing.T) {
	s := New()
	s.ReplaceAll(threeItems())
	s.ReplaceAll([]Item{{ID: 1, Problem: "new", Solution: "sol"}})

	if s.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", s.Len())
	}
	s.ReplaceAll(nil)
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
}

func TestReplaceAll_CopiesInput(t *testing.T) {
	items := threeItems()
	s := New()
	s.ReplaceAll(items)
	items[0].Problem = "mutated"

	if got, _ := s.Get(1); got.Problem != "problem 1" {
		t.Errorf("set shares storage with caller: %+v", got)
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := New()
	s.ReplaceAll(threeItems())
	items := s.Items()
	items[1].Problem = "mutated"

	if got, _ := s.Get(2); got.Problem != "problem 2" {
		t.Errorf("Items leaked internal storage: %+v", got)
	}
}

func TestAppend_KeepsOrder(t *testing.T) {
	s := New()
	for _, it := range threeItems() {
		s.Append(it)
		if s.Len() != it.ID {
			t.Fatalf("len = %d after appending item %d", s.Len(), it.ID)
		}
	}
	for i, it := range s.Items() {
		if it.ID != i+1 {
			t.Errorf("item[%d].ID = %d", i, it.ID)
		}
	}
}

func TestGet_NonSequentialIDs(t *testing.T) {
	s := New()
	s.ReplaceAll([]Item{{ID: 5, Problem: "five"}, {ID: 7, Problem: "seven"}})

	if got, ok := s.Get(7); !ok || got.Problem != "seven" {
		t.Errorf("Get(7) = %+v, %v", got, ok)
	}
	if _, ok := s.Get(1); ok {
		t.Error("expected Get(1) to miss")
	}
}

func TestCounts(t *testing.T) {
	s := New()
	s.ReplaceAll([]Item{
		{ID: 1, Status: StatusOK},
		{ID: 2, Status: StatusMalformed},
		{ID: 3, Status: StatusOK},
		{ID: 4, Status: StatusFailed},
	})
	c := s.Counts()
	if c[StatusOK] != 2 || c[StatusMalformed] != 1 || c[StatusFailed] != 1 {
		t.Errorf("unexpected counts: %v", c)
	}
}

func TestParseField(t *testing.T) {
	if f, err := ParseField("problem"); err != nil || f != FieldProblem {
		t.Errorf("ParseField(problem) = %q, %v", f, err)
	}
	if f, err := ParseField("solution"); err != nil || f != FieldSolution {
		t.Errorf("ParseField(solution) = %q, %v", f, err)
	}
	if _, err := ParseField("answer"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}
