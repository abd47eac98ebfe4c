package history

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mathmaster/mathmaster/internal/screen/screentest"
	"github.com/mathmaster/mathmaster/internal/store"
)

func loaded(t *testing.T, s *HistoryScreen) *HistoryScreen {
	t.Helper()
	s.Update(s.Init()())
	return s
}

func TestHistoryListsBatches(t *testing.T) {
	deps, _ := screentest.NewDeps(t, screentest.Completion)
	screentest.WithStore(t, deps)
	ctx := context.Background()

	for _, data := range []store.BatchEventData{
		{BatchID: "b1", Source: "cli", Grade: "grade7", Topic: "linear-equations", Difficulty: "standard",
			Strategy: "direct", Requested: 3, OKCount: 3},
		{BatchID: "b2", Source: "tui", Grade: "grade7", Topic: "linear-equations", Subtopic: "basic-solving",
			Difficulty: "standard", Strategy: "planned", Requested: 2, OKCount: 1, FailedCount: 1, DurationMs: 1500},
	} {
		if err := deps.Events.AppendBatchEvent(ctx, data); err != nil {
			t.Fatal(err)
		}
	}

	s := loaded(t, New(deps.Events))
	view := s.View(100, 30)
	if !strings.Contains(view, "中学1年生 一次方程式 / 基本の解き方 (標準)") {
		t.Errorf("view missing resolved title:\n%s", view)
	}
	if !strings.Contains(view, "1/2問") || !strings.Contains(view, "3/3問") {
		t.Errorf("view missing counts:\n%s", view)
	}
	if strings.Contains(view, "作成元") {
		t.Error("details should be collapsed")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view = s.View(100, 30)
	if !strings.Contains(view, "作成元: tui") || !strings.Contains(view, "失敗 1") {
		t.Errorf("newest batch should expand first:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
}

func TestHistoryEmpty(t *testing.T) {
	deps, _ := screentest.NewDeps(t, screentest.Completion)
	screentest.WithStore(t, deps)

	s := loaded(t, New(deps.Events))
	if !strings.Contains(s.View(80, 24), "まだ問題を作成していません") {
		t.Error("expected the empty message")
	}
}

func TestHistoryLoading(t *testing.T) {
	s := New(nil)
	if !strings.Contains(s.View(80, 24), "読み込み中") {
		t.Error("expected the loading message")
	}
}
