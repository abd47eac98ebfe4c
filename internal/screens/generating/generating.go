// Package generating shows a batch while its items are produced.
package generating

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/screens/review"
	"github.com/mathmaster/mathmaster/internal/ui/components"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressMsg reports one finished item.
type progressMsg problemgen.Progress

// doneMsg is sent when the batch returned.
type doneMsg struct {
	Summary *problemgen.Summary
	Err     error
}

// spinnerTickMsg animates the spinner while waiting.
type spinnerTickMsg time.Time

// GeneratingScreen runs one batch and lists items as they arrive.
type GeneratingScreen struct {
	deps *screen.Deps
	gen  *problemgen.Generator
	req  problemgen.Request

	progress chan problemgen.Progress
	done     chan doneMsg

	items   []problemset.Item
	frame   int
	summary *problemgen.Summary
	errMsg  string
}

var _ screen.Screen = (*GeneratingScreen)(nil)
var _ screen.KeyHintProvider = (*GeneratingScreen)(nil)
var _ screen.BackHandler = (*GeneratingScreen)(nil)

// New creates a screen that generates req with gen into the session.
func New(deps *screen.Deps, gen *problemgen.Generator, req problemgen.Request) *GeneratingScreen {
	return &GeneratingScreen{
		deps:     deps,
		gen:      gen,
		req:      req,
		progress: make(chan problemgen.Progress, req.Count),
		done:     make(chan doneMsg, 1),
	}
}

func (s *GeneratingScreen) Init() tea.Cmd {
	go func() {
		sum, err := s.deps.Session.Generate(context.Background(), s.gen, s.req, func(p problemgen.Progress) {
			s.progress <- p
		})
		s.done <- doneMsg{Summary: sum, Err: err}
	}()
	return tea.Batch(s.wait(), s.tick())
}

// wait delivers the next progress report, or the final result once every
// report was consumed.
func (s *GeneratingScreen) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-s.progress:
			return progressMsg(p)
		case d := <-s.done:
			return d
		}
	}
}

func (s *GeneratingScreen) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (s *GeneratingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		s.items = append(s.items, msg.Item)
		return s, s.wait()

	case doneMsg:
		return s.handleDone(msg)

	case spinnerTickMsg:
		if s.finished() {
			return s, nil
		}
		s.frame++
		return s, s.tick()

	case tea.KeyMsg:
		if msg.String() == "esc" && s.errMsg != "" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *GeneratingScreen) handleDone(msg doneMsg) (screen.Screen, tea.Cmd) {
	// Drain reports that raced with the final result.
drain:
	for {
		select {
		case p := <-s.progress:
			s.items = append(s.items, p.Item)
		default:
			break drain
		}
	}

	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.summary = msg.Summary
	s.recordBatch()

	next := review.New(s.deps)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *GeneratingScreen) recordBatch() {
	if s.deps.Events == nil || s.summary == nil {
		return
	}
	if err := s.deps.Events.AppendBatchEvent(context.Background(), s.summary.Event("tui", s.req)); err != nil {
		s.deps.Logger().Warn("record batch", "batch", s.summary.BatchID, "error", err)
	}
}

func (s *GeneratingScreen) finished() bool {
	return s.summary != nil || s.errMsg != ""
}

// HandlesBack keeps Esc from leaving while the batch is running.
func (s *GeneratingScreen) HandlesBack() bool {
	return true
}

func (s *GeneratingScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Center(theme.ErrorText.Render("作成できませんでした: "+s.errMsg), width, height)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.req.Title()))
	b.WriteString("\n\n")

	label := spinnerFrames[s.frame%len(spinnerFrames)] + " 作成中"
	if s.finished() {
		label = "完了"
	}
	b.WriteString(components.NewProgressBar(label, len(s.items), s.req.Count, min(width-8, 60)).View())
	b.WriteString("\n\n")

	for _, it := range s.items {
		b.WriteString(statusMark(it.Status))
		b.WriteString(fmt.Sprintf(" 問題 %d  ", it.ID))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(layout.Truncate(firstLine(it.Problem), max(width-20, 10))))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *GeneratingScreen) Title() string {
	return "作成中"
}

func (s *GeneratingScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "戻る"}}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "終了"}}
}

func statusMark(st problemset.Status) string {
	switch st {
	case problemset.StatusMalformed:
		return theme.Warning.Render("△")
	case problemset.StatusFailed:
		return theme.Failed.Render("✗")
	}
	return theme.Done.Render("✓")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
