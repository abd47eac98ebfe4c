package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/store"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Batches []store.BatchEvent
	Err     error
}

// HistoryScreen lists recorded generation batches.
type HistoryScreen struct {
	eventRepo store.EventRepo
	batches   []store.BatchEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		batches, err := s.eventRepo.QueryBatchEvents(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Batches: batches, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "作成履歴"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "詳細"},
		{Key: "↑↓", Description: "移動"},
		{Key: "Esc", Description: "戻る"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.batches = msg.Batches
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.batches)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nエラー: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  読み込み中...")
	}
	if len(s.batches) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  まだ問題を作成していません")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.batches {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := prefix + summaryLine(ev)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(layout.Truncate(line, max(width-2, 10)))))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, d := range detailLines(ev) {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func summaryLine(ev store.BatchEvent) string {
	req := problemgen.Request{
		Grade:      curriculum.Grade(ev.Grade),
		Topic:      ev.Topic,
		Subtopic:   ev.Subtopic,
		Difficulty: problemgen.Difficulty(ev.Difficulty),
	}
	return fmt.Sprintf("%s  %s  %d/%d問",
		ev.Timestamp.Local().Format("2006-01-02 15:04"), req.Title(), ev.OKCount, ev.Requested)
}

func detailLines(ev store.BatchEvent) []string {
	lines := []string{
		fmt.Sprintf("方式: %s  作成元: %s", ev.Strategy, ev.Source),
		fmt.Sprintf("成功 %d  形式不正 %d  失敗 %d  所要 %s",
			ev.OKCount, ev.MalformedCount, ev.FailedCount,
			(time.Duration(ev.DurationMs) * time.Millisecond).Round(100*time.Millisecond)),
	}
	if ev.BatchID != "" {
		lines = append(lines, "ID: "+ev.BatchID)
	}
	return lines
}
