package problemgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/problemset"
)

const goodCompletion = "[問題]\nSolve 2x+3=7\n|||SPLIT|||\n[解答・解説]\nx=2"

func newTestGenerator(p llm.Provider, strategy Strategy) *Generator {
	cfg := DefaultConfig()
	cfg.Strategy = strategy
	return New(p, cfg, nil)
}

func userPrompt(req llm.Request) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}

func TestRun_LinearEquationsEndToEnd(t *testing.T) {
	mock := llm.NewMockProviderFunc(func(llm.Request) llm.MockResponse {
		return llm.MockResponse{Text: goodCompletion}
	})
	gen := newTestGenerator(mock, StrategyDirect)
	set := problemset.New()

	req := Request{
		Grade:      curriculum.Grade7,
		Topic:      "linear equations",
		Difficulty: DifficultyStandard,
		Count:      2,
	}
	var progress []Progress
	sum, err := gen.Run(context.Background(), req, set, func(p Progress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	items := set.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	for i, it := range items {
		if it.ID != i+1 {
			t.Errorf("items[%d].ID = %d", i, it.ID)
		}
		if it.Problem != "Solve 2x+3=7" || it.Solution != "x=2" {
			t.Errorf("items[%d] = %+v", i, it)
		}
		if it.Status != problemset.StatusOK {
			t.Errorf("items[%d].Status = %q", i, it.Status)
		}
	}

	if len(progress) != 2 || progress[0].Done != 1 || progress[1].Done != 2 || progress[1].Total != 2 {
		t.Errorf("progress = %+v", progress)
	}
	if sum.OK != 2 || sum.Malformed != 0 || sum.Failed != 0 || sum.Requested != 2 {
		t.Errorf("summary = %+v", sum)
	}

	if len(mock.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(mock.Calls))
	}
	first := mock.Calls[0]
	if first.System != SystemPrompt {
		t.Error("problem calls must carry the system prompt")
	}
	msg := userPrompt(first)
	for _, want := range []string{"中学1年生", "一次方程式", "標準", "三平方の定理"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(userPrompt(mock.Calls[1]), "Solve 2x+3=7") {
		t.Error("second prompt should list the first problem")
	}
}

func TestRun_MixedOutcomesKeepCount(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "A|||SPLIT|||B"},
		llm.MockResponse{Text: "no separator"},
		llm.MockResponse{Err: errors.New("boom")},
		llm.MockResponse{Text: "C|||SPLIT|||D"},
	)
	gen := newTestGenerator(mock, StrategyDirect)
	set := problemset.New()
	set.Append(problemset.Item{ID: 99, Problem: "stale"})

	req := grade7Request()
	req.Count = 4
	sum, err := gen.Run(context.Background(), req, set, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	items := set.Items()
	if len(items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(items))
	}
	wantStatus := []problemset.Status{
		problemset.StatusOK, problemset.StatusMalformed, problemset.StatusFailed, problemset.StatusOK,
	}
	for i, it := range items {
		if it.ID != i+1 {
			t.Errorf("items[%d].ID = %d", i, it.ID)
		}
		if it.Status != wantStatus[i] {
			t.Errorf("items[%d].Status = %q, want %q", i, it.Status, wantStatus[i])
		}
	}
	if items[1].Problem != "no separator" || items[1].Solution != FailureSentinel {
		t.Errorf("malformed item = %+v", items[1])
	}
	if !strings.HasPrefix(items[2].Problem, GenerationFailedPrefix) || !strings.Contains(items[2].Problem, "boom") {
		t.Errorf("failed item = %+v", items[2])
	}
	if sum.OK != 2 || sum.Malformed != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRun_InvalidRequestLeavesSetAlone(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := newTestGenerator(mock, StrategyDirect)
	set := problemset.New()
	set.Append(problemset.Item{ID: 1, Problem: "keep"})

	req := grade7Request()
	req.Count = 0
	if _, err := gen.Run(context.Background(), req, set, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if set.Len() != 1 {
		t.Error("set must not be touched by an invalid request")
	}
	if len(mock.Calls) != 0 {
		t.Error("no completion call expected")
	}
}

func TestRun_CancelledContextFailsEveryItem(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := newTestGenerator(llm.NewMockProvider(), StrategyDirect)
	set := problemset.New()
	req := grade7Request()
	req.Count = 3

	sum, err := gen.Run(ctx, req, set, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if set.Len() != 3 || sum.Failed != 3 {
		t.Errorf("len = %d, summary = %+v", set.Len(), sum)
	}
}

func TestRun_Planned(t *testing.T) {
	mock := llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		if strings.Contains(userPrompt(req), "出題テーマ") {
			return llm.MockResponse{Text: "```json\n[\"移項\", \"文章題\"]\n```"}
		}
		return llm.MockResponse{Text: goodCompletion}
	})
	gen := newTestGenerator(mock, StrategyPlanned)
	set := problemset.New()

	sum, err := gen.Run(context.Background(), grade7Request(), set, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Strategy != StrategyPlanned || sum.PlanFallback {
		t.Errorf("summary = %+v", sum)
	}
	if len(mock.Calls) != 3 {
		t.Fatalf("calls = %d, want plan + 2", len(mock.Calls))
	}
	if !strings.Contains(userPrompt(mock.Calls[1]), "テーマ: 移項") {
		t.Error("first problem prompt should carry the first theme")
	}
	if !strings.Contains(userPrompt(mock.Calls[2]), "テーマ: 文章題") {
		t.Error("second problem prompt should carry the second theme")
	}
	if set.Len() != 2 {
		t.Errorf("len = %d", set.Len())
	}
}

func TestPlan_FallbackOnUnreadablePlan(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "I cannot do that."})
	gen := newTestGenerator(mock, StrategyPlanned)

	b := gen.Plan(context.Background(), grade7Request())
	if b.PlanErr == nil {
		t.Fatal("expected PlanErr")
	}
	want := []string{"一次方程式 (pattern 1)", "一次方程式 (pattern 2)"}
	if len(b.Themes) != 2 || b.Themes[0] != want[0] || b.Themes[1] != want[1] {
		t.Errorf("themes = %q", b.Themes)
	}
}

func TestPlan_FallbackOnPlanError(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: errors.New("unavailable")},
		llm.MockResponse{Text: goodCompletion},
		llm.MockResponse{Text: goodCompletion},
	)
	gen := newTestGenerator(mock, StrategyPlanned)
	set := problemset.New()

	sum, err := gen.Run(context.Background(), grade7Request(), set, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sum.PlanFallback || sum.OK != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if !strings.Contains(userPrompt(mock.Calls[1]), "テーマ: 一次方程式 (pattern 1)") {
		t.Error("fallback theme should reach the problem prompt")
	}
}

func TestPlan_PlannedSteeredByRequestTheme(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: `["スーパーでの値引き", "お小遣いの貯金"]`})
	gen := newTestGenerator(mock, StrategyPlanned)
	req := grade7Request()
	req.Theme = "買い物"

	b := gen.Plan(context.Background(), req)
	if b.PlanErr != nil {
		t.Fatalf("PlanErr: %v", b.PlanErr)
	}
	if !strings.Contains(userPrompt(mock.Calls[0]), "全体のテーマ: 買い物") {
		t.Errorf("plan prompt should carry the requested theme:\n%s", userPrompt(mock.Calls[0]))
	}
	if len(b.Themes) != 2 || b.Themes[0] != "スーパーでの値引き" {
		t.Errorf("themes = %q", b.Themes)
	}
}

func TestPlan_FallbackIgnoresRequestTheme(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("unavailable")})
	gen := newTestGenerator(mock, StrategyPlanned)
	req := grade7Request()
	req.Theme = "買い物"

	b := gen.Plan(context.Background(), req)
	want := []string{"一次方程式 (pattern 1)", "一次方程式 (pattern 2)"}
	if len(b.Themes) != 2 || b.Themes[0] != want[0] || b.Themes[1] != want[1] {
		t.Errorf("themes = %q", b.Themes)
	}
}

func TestPlan_DirectUsesRequestTheme(t *testing.T) {
	gen := newTestGenerator(llm.NewMockProvider(), "")
	req := grade7Request()
	req.Theme = "買い物"

	b := gen.Plan(context.Background(), req)
	if b.Strategy != StrategyDirect {
		t.Errorf("strategy = %q", b.Strategy)
	}
	if b.Total() != 2 || b.Themes[0] != "買い物" || b.Themes[1] != "買い物" {
		t.Errorf("themes = %q", b.Themes)
	}
}

func TestNext_StopsWhenDone(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: goodCompletion})
	gen := newTestGenerator(mock, StrategyDirect)
	req := grade7Request()
	req.Count = 1

	b := gen.Plan(context.Background(), req)
	if res := gen.Next(context.Background(), b); res.Err != nil || res.Item.ID != 1 {
		t.Fatalf("Next = %+v", res)
	}
	if !b.Finished() {
		t.Fatal("batch should be finished")
	}
	if res := gen.Next(context.Background(), b); !errors.Is(res.Err, ErrBatchDone) {
		t.Errorf("err = %v, want ErrBatchDone", res.Err)
	}
}

func TestSummaryEvent(t *testing.T) {
	sum := &Summary{BatchID: "b1", Strategy: StrategyPlanned, Requested: 3, OK: 1, Malformed: 1, Failed: 1}
	req := grade7Request()
	req.Subtopic = "basic-solving"

	ev := sum.Event("cli", req)
	if ev.BatchID != "b1" || ev.Source != "cli" || ev.Grade != "grade7" || ev.Topic != "linear-equations" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Subtopic != "basic-solving" || ev.Difficulty != "standard" || ev.Strategy != "planned" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Requested != 3 || ev.OKCount != 1 || ev.MalformedCount != 1 || ev.FailedCount != 1 {
		t.Errorf("event = %+v", ev)
	}
}

func TestAsk(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "  両辺から3を引きます。\n"})
	gen := newTestGenerator(mock, StrategyDirect)
	items := []problemset.Item{{ID: 1, Problem: "2x+3=7", Solution: "x=2"}}

	got, err := gen.Ask(context.Background(), items, "最初の一歩は？")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "両辺から3を引きます。" {
		t.Errorf("answer = %q", got)
	}
	if mock.Calls[0].System != FollowUpSystemPrompt {
		t.Error("follow-up must use its own system prompt")
	}
	if !strings.Contains(userPrompt(mock.Calls[0]), "最初の一歩は？") {
		t.Error("question missing from prompt")
	}
}

func TestAsk_NothingToAsk(t *testing.T) {
	gen := newTestGenerator(llm.NewMockProvider(), StrategyDirect)
	items := []problemset.Item{{ID: 1}}

	if _, err := gen.Ask(context.Background(), items, "   "); !errors.Is(err, ErrNothingToAsk) {
		t.Errorf("blank question: err = %v", err)
	}
	if _, err := gen.Ask(context.Background(), nil, "why?"); !errors.Is(err, ErrNothingToAsk) {
		t.Errorf("no items: err = %v", err)
	}
}

func TestAsk_WrapsProviderError(t *testing.T) {
	upstream := errors.New("rate limited")
	gen := newTestGenerator(llm.NewMockProvider(llm.MockResponse{Err: upstream}), StrategyDirect)

	_, err := gen.Ask(context.Background(), []problemset.Item{{ID: 1}}, "why?")
	if !errors.Is(err, upstream) {
		t.Errorf("err = %v, want wrapped upstream error", err)
	}
}

func TestWithStrategy(t *testing.T) {
	gen := newTestGenerator(llm.NewMockProvider(), StrategyDirect)
	planned := gen.WithStrategy(StrategyPlanned)

	if planned.Config().Strategy != StrategyPlanned {
		t.Errorf("strategy = %q", planned.Config().Strategy)
	}
	if gen.Config().Strategy != StrategyDirect {
		t.Error("original generator must keep its strategy")
	}
}
