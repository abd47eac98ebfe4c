package problemgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/store"
)

// ErrBatchDone is returned by Next once every item of a batch was produced.
var ErrBatchDone = errors.New("batch already complete")

// Generator produces problem sets from a completion provider. Calls are
// issued strictly one after another.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// New creates a Generator. log may be nil.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.config
}

// WithStrategy returns a copy of g that uses s for new batches.
func (g *Generator) WithStrategy(s Strategy) *Generator {
	c := *g
	c.config.Strategy = s
	return &c
}

// Batch is an in-progress generation run. It carries one theme per item;
// themes are empty for a direct batch without a request theme.
type Batch struct {
	ID       string
	Request  Request
	Strategy Strategy
	Themes   []string

	// PlanErr is set when a planned batch fell back to synthesized themes.
	PlanErr error

	started time.Time
	next    int
	prior   []string
}

// Total is the number of items the batch produces.
func (b *Batch) Total() int { return len(b.Themes) }

// Done reports how many items were produced so far.
func (b *Batch) Done() int { return b.next }

// Finished reports whether every item was produced.
func (b *Batch) Finished() bool { return b.next >= len(b.Themes) }

// ItemResult is the outcome of one item: the item to store, and the
// upstream error when the completion call failed.
type ItemResult struct {
	Item problemset.Item
	Err  error
}

// Progress is reported after every item of a Run.
type Progress struct {
	Done  int
	Total int
	Item  problemset.Item
}

// Summary describes a finished Run.
type Summary struct {
	BatchID      string
	Strategy     Strategy
	PlanFallback bool
	Requested    int
	OK           int
	Malformed    int
	Failed       int
	Duration     time.Duration
}

// Event converts the summary into an audit log record.
func (s *Summary) Event(source string, req Request) store.BatchEventData {
	return store.BatchEventData{
		BatchID:        s.BatchID,
		Source:         source,
		Grade:          string(req.Grade),
		Topic:          req.Topic,
		Subtopic:       req.Subtopic,
		Difficulty:     string(req.Difficulty),
		Strategy:       string(s.Strategy),
		Requested:      s.Requested,
		OKCount:        s.OK,
		MalformedCount: s.Malformed,
		FailedCount:    s.Failed,
		DurationMs:     s.Duration.Milliseconds(),
	}
}

// Plan prepares a batch for req. For the planned strategy it makes the
// theme-plan call; any failure there falls back to synthesized themes
// and is recorded in Batch.PlanErr. req is assumed valid.
func (g *Generator) Plan(ctx context.Context, req Request) *Batch {
	b := &Batch{
		ID:       uuid.NewString(),
		Request:  req,
		Strategy: g.config.Strategy,
		started:  time.Now(),
	}
	log := g.log.With("batch", b.ID)

	if b.Strategy != StrategyPlanned {
		b.Strategy = StrategyDirect
		b.Themes = make([]string, req.Count)
		for i := range b.Themes {
			b.Themes[i] = req.Theme
		}
		return b
	}

	topic := req.resolve().topic
	ctx = llm.WithBatch(llm.WithPurpose(ctx, llm.PurposePlan), b.ID)
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(SystemPrompt, BuildPlanPrompt(req), g.config.PlanMaxTokens, g.config.PlanTemperature))
	if err != nil {
		b.PlanErr = fmt.Errorf("theme plan: %w", err)
		b.Themes = FallbackThemes(topic, req.Count)
		log.Warn("theme plan failed, using fallback themes", "error", err)
		return b
	}

	b.Themes, err = ParseThemes(resp.Text, topic, req.Count)
	if err != nil {
		b.PlanErr = err
		log.Warn("theme plan unreadable, using fallback themes", "error", err)
	}
	return b
}

// Next produces the next item of b. An upstream failure yields a failed
// item together with the error; malformed output yields a malformed item
// and no error.
func (g *Generator) Next(ctx context.Context, b *Batch) ItemResult {
	if b.Finished() {
		return ItemResult{Err: ErrBatchDone}
	}
	id := b.next + 1
	theme := b.Themes[b.next]
	b.next++

	ctx = llm.WithBatch(llm.WithPurpose(ctx, llm.PurposeProblem), b.ID)
	prompt := buildProblemPrompt(b.Request, theme, b.prior, g.config.MaxPriorProblems)
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(SystemPrompt, prompt, g.config.MaxTokens, g.config.Temperature))
	if err != nil {
		g.log.Warn("problem generation failed", "batch", b.ID, "item", id, "error", err)
		return ItemResult{Item: FailedItem(id, err), Err: err}
	}

	item := ItemFrom(id, ParseCompletion(resp.Text))
	if item.Status == problemset.StatusOK {
		b.prior = append(b.prior, item.Problem)
	} else {
		g.log.Warn("completion without separator", "batch", b.ID, "item", id)
	}
	return ItemResult{Item: item}
}

// Run validates req, empties set, then generates every item in order,
// appending each to set and reporting progress after each one. Per-item
// failures never stop the batch; only an invalid request returns an error.
func (g *Generator) Run(ctx context.Context, req Request, set *problemset.Set, progress func(Progress)) (*Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	set.ReplaceAll(nil)
	b := g.Plan(ctx, req)
	sum := &Summary{
		BatchID:      b.ID,
		Strategy:     b.Strategy,
		PlanFallback: b.PlanErr != nil,
		Requested:    b.Total(),
	}

	for !b.Finished() {
		res := g.Next(ctx, b)
		set.Append(res.Item)
		switch res.Item.Status {
		case problemset.StatusOK:
			sum.OK++
		case problemset.StatusMalformed:
			sum.Malformed++
		case problemset.StatusFailed:
			sum.Failed++
		}
		if progress != nil {
			progress(Progress{Done: b.Done(), Total: b.Total(), Item: res.Item})
		}
	}

	sum.Duration = time.Since(b.started)
	g.log.Info("batch finished",
		"batch", b.ID, "strategy", sum.Strategy, "ok", sum.OK,
		"malformed", sum.Malformed, "failed", sum.Failed, "duration", sum.Duration)
	return sum, nil
}
