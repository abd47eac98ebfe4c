// Package editor edits the problem or solution text of one item.
package editor

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/problemset"
	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

// EditorScreen holds a textarea prefilled with the current text.
type EditorScreen struct {
	deps   *screen.Deps
	id     int
	field  problemset.Field
	area   textarea.Model
	errMsg string
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)

// New creates an editor for one field of item.
func New(deps *screen.Deps, item problemset.Item, field problemset.Field) *EditorScreen {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(12)

	text := item.Problem
	if field == problemset.FieldSolution {
		text = item.Solution
	}
	ta.SetValue(text)

	return &EditorScreen{deps: deps, id: item.ID, field: field, area: ta}
}

func (s *EditorScreen) Init() tea.Cmd {
	return s.area.Focus()
}

func (s *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+s" {
		return s.save()
	}
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	return s, cmd
}

func (s *EditorScreen) save() (screen.Screen, tea.Cmd) {
	if err := s.deps.Session.Edit(s.id, s.field, s.area.Value()); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, func() tea.Msg { return router.PopScreenMsg{} }
}

// Value returns the text being edited.
func (s *EditorScreen) Value() string {
	return s.area.Value()
}

func (s *EditorScreen) View(width, height int) string {
	s.area.SetWidth(min(max(width-8, 20), 100))
	s.area.SetHeight(max(height-8, 4))

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("\n\n")
	b.WriteString(s.area.View())
	if s.errMsg != "" {
		b.WriteString("\n\n" + theme.ErrorText.Render(s.errMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *EditorScreen) Title() string {
	kind := "問題"
	if s.field == problemset.FieldSolution {
		kind = "解答"
	}
	return fmt.Sprintf("%s %d を編集", kind, s.id)
}

func (s *EditorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "保存"},
		{Key: "Esc", Description: "取り消し"},
	}
}
