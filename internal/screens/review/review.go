// Package review lists the current problem set and exports it.
package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/screens/ask"
	"github.com/mathmaster/mathmaster/internal/screens/editor"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

// exportedMsg reports the outcome of writing both PDFs.
type exportedMsg struct {
	Paths []string
	Err   error
}

// ReviewScreen shows one item at a time with its problem or solution.
type ReviewScreen struct {
	deps      *screen.Deps
	items     []problemset.Item
	selected  int
	solution  bool
	exporting bool
	status    string
	errMsg    string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a review screen over the session's problem set.
func New(deps *screen.Deps) *ReviewScreen {
	s := &ReviewScreen{deps: deps}
	s.reload()
	return s
}

// reload picks up edits made on other screens.
func (s *ReviewScreen) reload() {
	s.items = s.deps.Session.Items()
	if s.selected >= len(s.items) {
		s.selected = max(len(s.items)-1, 0)
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return nil
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.reload()

	switch msg := msg.(type) {
	case exportedMsg:
		s.exporting = false
		if msg.Err != nil {
			s.errMsg = "PDFを書き出せませんでした: " + msg.Err.Error()
			s.status = ""
		} else {
			s.errMsg = ""
			s.status = "書き出しました: " + strings.Join(msg.Paths, ", ")
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k", "left", "h":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j", "right", "l":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "tab", "s":
			s.solution = !s.solution
		case "e":
			if it, ok := s.current(); ok {
				field := problemset.FieldProblem
				if s.solution {
					field = problemset.FieldSolution
				}
				next := editor.New(s.deps, it, field)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		case "a":
			if len(s.items) > 0 {
				next := ask.New(s.deps)
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		case "p":
			if len(s.items) > 0 && !s.exporting {
				s.exporting = true
				s.status = "書き出し中..."
				s.errMsg = ""
				return s, s.export()
			}
		case "n":
			next := s.deps.NewForm()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *ReviewScreen) current() (problemset.Item, bool) {
	if s.selected < 0 || s.selected >= len(s.items) {
		return problemset.Item{}, false
	}
	return s.items[s.selected], true
}

// export writes the problem sheet and the answer key to OutDir.
func (s *ReviewScreen) export() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		dir := deps.OutDir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportedMsg{Err: err}
		}
		var paths []string
		for _, mode := range []render.Mode{render.ModeProblems, render.ModeSolutions} {
			art, err := deps.Session.Export(deps.Renderer, mode)
			if err != nil {
				return exportedMsg{Err: err}
			}
			path := filepath.Join(dir, art.Filename)
			if err := os.WriteFile(path, art.Data, 0o644); err != nil {
				return exportedMsg{Err: err}
			}
			paths = append(paths, path)
		}
		return exportedMsg{Paths: paths}
	}
}

func (s *ReviewScreen) View(width, height int) string {
	s.reload()
	if len(s.items) == 0 {
		return layout.Center(theme.Hint.Render("まだ問題がありません。n で新しく作成できます"), width, height)
	}

	it := s.items[s.selected]
	var b strings.Builder

	b.WriteString(s.tabs())
	b.WriteString("\n\n")

	kind := "問題"
	text := it.Problem
	if s.solution {
		kind = "解答"
		text = it.Solution
	}
	heading := fmt.Sprintf("%s %d / %d", kind, it.ID, len(s.items))
	switch it.Status {
	case problemset.StatusMalformed:
		heading += "  " + theme.Warning.Render("(解答の区切りが見つかりませんでした)")
	case problemset.StatusFailed:
		heading += "  " + theme.Failed.Render("(作成に失敗しました)")
	}
	b.WriteString(theme.Title.Render(heading))
	b.WriteString("\n\n")

	cardWidth := min(max(width-8, 20), 100)
	b.WriteString(theme.Card.Width(cardWidth).Render(theme.Body.Render(text)))
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.errMsg))
	} else if s.status != "" {
		b.WriteString("\n" + theme.Hint.Render(s.status))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// tabs renders the item strip with a status mark per item.
func (s *ReviewScreen) tabs() string {
	parts := make([]string, len(s.items))
	for i, it := range s.items {
		label := fmt.Sprintf(" %d ", it.ID)
		switch it.Status {
		case problemset.StatusMalformed:
			label = fmt.Sprintf(" %d△ ", it.ID)
		case problemset.StatusFailed:
			label = fmt.Sprintf(" %d✗ ", it.ID)
		}
		if i == s.selected {
			parts[i] = theme.ButtonActive.Render(label)
		} else {
			parts[i] = theme.ButtonInactive.Render(label)
		}
	}
	return strings.Join(parts, " ")
}

func (s *ReviewScreen) Title() string {
	return "作成した問題"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "移動"},
		{Key: "Tab", Description: "問題/解答"},
		{Key: "e", Description: "編集"},
		{Key: "a", Description: "質問"},
		{Key: "p", Description: "PDF"},
		{Key: "n", Description: "新しく作成"},
		{Key: "Esc", Description: "戻る"},
	}
}
