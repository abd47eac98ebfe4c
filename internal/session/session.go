// Package session holds the per-user working state: the problem set of
// the latest batch, the request that produced it and the last follow-up
// exchange.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/render"
)

// DefaultTitle heads exported documents before any batch was generated.
const DefaultTitle = "数学演習プリント"

// ErrBusy is returned by Generate while another batch of the same session
// is still running.
var ErrBusy = errors.New("a batch is already being generated")

// Session owns one problem set. mu guards the state but is never held
// across a completion call, so readers see a batch grow item by item.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	set        *problemset.Set
	request    *problemgen.Request
	summary    *problemgen.Summary
	question   string
	answer     string
	notice     string
	generating bool
	done       int
	total      int
	lastSeen   atomic.Int64 // unix nanos, read without mu
}

// New creates an empty session.
func New(id string) *Session {
	s := &Session{ID: id, CreatedAt: time.Now(), set: problemset.New()}
	s.touch(s.CreatedAt)
	return s
}

// View is a copy of the session state for display.
type View struct {
	ID       string
	Items    []problemset.Item
	Request  *problemgen.Request
	Summary  *problemgen.Summary
	Question string
	Answer   string
	Notice   string

	// Generating is set while a batch runs; Done of Total items are in Items.
	Generating bool
	Done       int
	Total      int
}

// Snapshot copies the current state and consumes the pending notice.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:       s.ID,
		Items:    s.set.Items(),
		Question: s.question,
		Answer:   s.answer,
		Notice:   s.notice,

		Generating: s.generating,
		Done:       s.done,
		Total:      s.total,
	}
	if s.request != nil {
		req := *s.request
		v.Request = &req
	}
	if s.summary != nil {
		sum := *s.summary
		v.Summary = &sum
	}
	s.notice = ""
	return v
}

// Items returns a copy of the problem set.
func (s *Session) Items() []problemset.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Items()
}

// Status is the problem set together with the progress of a running batch.
type Status struct {
	Items      []problemset.Item `json:"items"`
	Generating bool              `json:"generating"`
	Done       int               `json:"done"`
	Total      int               `json:"total"`
}

// Status copies the items and batch progress in one step.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Items: s.set.Items(), Generating: s.generating, Done: s.done, Total: s.total}
}

// Notify stores a one-shot message for the next Snapshot.
func (s *Session) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// Generate replaces the problem set with a new batch for req. progress
// may be nil. Each item is visible to readers as soon as it is produced.
// An invalid request leaves the session unchanged.
func (s *Session) Generate(ctx context.Context, gen *problemgen.Generator, req problemgen.Request, progress func(problemgen.Progress)) (*problemgen.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.generating = true
	s.done, s.total = 0, req.Count
	s.set.ReplaceAll(nil)
	s.request = &req
	s.summary = nil
	s.question, s.answer = "", ""
	s.mu.Unlock()

	sum, err := gen.Run(ctx, req, problemset.New(), func(p problemgen.Progress) {
		s.mu.Lock()
		s.set.Append(p.Item)
		s.done, s.total = p.Done, p.Total
		s.mu.Unlock()
		if progress != nil {
			progress(p)
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		return nil, err
	}
	s.summary = sum
	return sum, nil
}

// Edit replaces one field of one item.
func (s *Session) Edit(id int, field problemset.Field, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Update(id, field, text)
}

// Ask answers a follow-up question about the current problem set and
// keeps the exchange for display.
func (s *Session) Ask(ctx context.Context, gen *problemgen.Generator, question string) (string, error) {
	items := s.Items()
	answer, err := gen.Ask(ctx, items, question)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.question, s.answer = question, answer
	return answer, nil
}

// Export renders the current problem set. A failure leaves the session
// untouched.
func (s *Session) Export(r *render.Renderer, mode render.Mode) (*render.Artifact, error) {
	s.mu.Lock()
	items := s.set.Items()
	title := DefaultTitle
	if s.request != nil {
		title = s.request.Title()
	}
	s.mu.Unlock()

	return r.Render(items, title, mode)
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}
