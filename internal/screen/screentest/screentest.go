// Package screentest builds screen dependencies backed by a mock provider.
package screentest

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/llm"
	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/session"
	"github.com/mathmaster/mathmaster/internal/store"
)

// Completion is a well-formed item completion.
const Completion = "[問題]\n2x+3=7 を解きなさい。\n|||SPLIT|||\n[解答・解説]\nx=2"

// Request is a valid two-item request.
func Request() problemgen.Request {
	return problemgen.Request{
		Grade:      curriculum.Grade7,
		Topic:      "linear-equations",
		Difficulty: problemgen.DifficultyStandard,
		Count:      2,
	}
}

// Stub is a screen that renders its name.
type Stub struct{ Name string }

func (s *Stub) Init() tea.Cmd                           { return nil }
func (s *Stub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *Stub) View(int, int) string                    { return s.Name }
func (s *Stub) Title() string                           { return s.Name }

// NewDeps returns dependencies whose generator answers every call with
// text. OutDir is a temporary directory and NewForm yields a Stub.
func NewDeps(t *testing.T, text string) (*screen.Deps, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProviderFunc(func(llm.Request) llm.MockResponse {
		return llm.MockResponse{Text: text}
	})
	return &screen.Deps{
		Generator: problemgen.New(mock, problemgen.DefaultConfig(), nil),
		Renderer:  render.New(render.DefaultConfig()),
		Session:   session.New("test"),
		Log:       logger.Nop(),
		OutDir:    t.TempDir(),
		Model:     "mock",
		NewForm:   func() screen.Screen { return &Stub{Name: "form"} },
	}, mock
}

// WithStore attaches a temporary event store to deps.
func WithStore(t *testing.T, deps *screen.Deps) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "screens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	deps.Events = s.EventRepo()
	return s
}

// Generate fills the session with a finished batch.
func Generate(t *testing.T, deps *screen.Deps) {
	t.Helper()
	if _, err := deps.Session.Generate(context.Background(), deps.Generator, Request(), nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
}
