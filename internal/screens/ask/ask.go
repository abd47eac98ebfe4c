// Package ask sends a follow-up question about the current problem set.
package ask

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/ui/components"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

type answerMsg struct {
	Question string
	Answer   string
	Err      error
}

// AskScreen takes a question and shows the answer.
type AskScreen struct {
	deps     *screen.Deps
	input    components.TextInput
	waiting  bool
	question string
	answer   string
	errMsg   string
}

var _ screen.Screen = (*AskScreen)(nil)
var _ screen.KeyHintProvider = (*AskScreen)(nil)

// New creates an ask screen showing the session's last exchange.
func New(deps *screen.Deps) *AskScreen {
	view := deps.Session.Snapshot()
	return &AskScreen{
		deps:     deps,
		input:    components.NewTextInput("質問 ", "例: 問題2の解き方をもう少し詳しく", 500),
		question: view.Question,
		answer:   view.Answer,
	}
}

func (s *AskScreen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *AskScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		s.waiting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.question, s.answer = msg.Question, msg.Answer
		s.input.SetValue("")
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, s.submit()
		}
	}

	if s.waiting {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AskScreen) submit() tea.Cmd {
	q := strings.TrimSpace(s.input.Value())
	if q == "" || s.waiting {
		return nil
	}
	s.waiting = true
	s.errMsg = ""
	deps := s.deps
	return func() tea.Msg {
		answer, err := deps.Session.Ask(context.Background(), deps.Generator, q)
		return answerMsg{Question: q, Answer: answer, Err: err}
	}
}

func (s *AskScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(s.input.View(6))
	b.WriteString("\n\n")

	switch {
	case s.waiting:
		b.WriteString(theme.Hint.Render("回答を待っています..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("質問に答えられませんでした: " + s.errMsg))
	case s.answer != "":
		cardWidth := min(max(width-8, 20), 100)
		b.WriteString(theme.Subtitle.Render("Q. " + s.question))
		b.WriteString("\n")
		b.WriteString(theme.Card.Width(cardWidth).Render(theme.Body.Render(s.answer)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *AskScreen) Title() string {
	return "問題について質問する"
}

func (s *AskScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "送信"},
		{Key: "Esc", Description: "戻る"},
	}
}
