// Package form is the screen where a generation request is put together.
package form

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/screens/generating"
	"github.com/mathmaster/mathmaster/internal/ui/components"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

// Focus order of the form fields.
const (
	fieldGrade = iota
	fieldTopic
	fieldSubtopic
	fieldDifficulty
	fieldCount
	fieldStrategy
	fieldTheme
	fieldSubmit
	numFields
)

const labelWidth = 12

// FormScreen collects a problemgen.Request.
type FormScreen struct {
	deps *screen.Deps

	grade      components.Choice
	topic      components.Choice
	subtopic   components.Choice
	difficulty components.Choice
	count      components.Choice
	strategy   components.Choice
	theme      components.TextInput
	submit     components.Button

	focus  int
	errMsg string
}

var _ screen.Screen = (*FormScreen)(nil)
var _ screen.KeyHintProvider = (*FormScreen)(nil)

// New creates a form prefilled with the session's last request.
func New(deps *screen.Deps) *FormScreen {
	req := problemgen.Request{
		Grade:      curriculum.Grade7,
		Difficulty: problemgen.DifficultyStandard,
		Count:      3,
	}
	if v := deps.Session.Snapshot(); v.Request != nil {
		req = *v.Request
	}

	var grades []components.Option
	for _, g := range curriculum.Grades() {
		grades = append(grades, components.Option{Value: string(g.ID), Label: g.Name})
	}
	var difficulties []components.Option
	for _, d := range problemgen.Difficulties() {
		difficulties = append(difficulties, components.Option{Value: string(d), Label: d.Label()})
	}
	var counts []components.Option
	for n := 1; n <= problemgen.MaxCount; n++ {
		counts = append(counts, components.Option{Value: strconv.Itoa(n), Label: strconv.Itoa(n) + "問"})
	}
	strategies := []components.Option{
		{Value: string(problemgen.StrategyDirect), Label: "そのまま作成"},
		{Value: string(problemgen.StrategyPlanned), Label: "テーマを考えてから作成"},
	}

	f := &FormScreen{
		deps:       deps,
		grade:      components.NewChoice("学年", grades, string(req.Grade)),
		difficulty: components.NewChoice("難易度", difficulties, string(req.Difficulty)),
		count:      components.NewChoice("問題数", counts, strconv.Itoa(req.Count)),
		strategy:   components.NewChoice("作り方", strategies, string(deps.Generator.Config().Strategy)),
		theme:      components.NewTextInput("テーマ", "任意 (例: 買い物の代金)", 60),
		submit:     components.NewButton("問題を作成する"),
	}
	f.theme.SetValue(req.Theme)
	f.resetTopics(req.Topic)
	f.resetSubtopics(req.Subtopic)
	f.applyFocus()
	return f
}

func (f *FormScreen) resetTopics(selected string) {
	var opts []components.Option
	for _, t := range curriculum.Topics(curriculum.Grade(f.grade.Value())) {
		opts = append(opts, components.Option{Value: t.ID, Label: t.Name})
	}
	if t, ok := curriculum.LookupTopic(curriculum.Grade(f.grade.Value()), selected); ok {
		selected = t.ID
	}
	f.topic = components.NewChoice("単元", opts, selected)
}

func (f *FormScreen) resetSubtopics(selected string) {
	opts := []components.Option{{Value: "", Label: "指定なし"}}
	for _, st := range curriculum.Subtopics(curriculum.Grade(f.grade.Value()), f.topic.Value()) {
		opts = append(opts, components.Option{Value: st.ID, Label: st.Name})
	}
	f.subtopic = components.NewChoice("小単元", opts, selected)
}

func (f *FormScreen) choices() []*components.Choice {
	return []*components.Choice{
		fieldGrade:      &f.grade,
		fieldTopic:      &f.topic,
		fieldSubtopic:   &f.subtopic,
		fieldDifficulty: &f.difficulty,
		fieldCount:      &f.count,
		fieldStrategy:   &f.strategy,
	}
}

func (f *FormScreen) applyFocus() tea.Cmd {
	for i, c := range f.choices() {
		c.Focused = i == f.focus
	}
	f.submit.Focused = f.focus == fieldSubmit
	if f.focus == fieldTheme {
		return f.theme.Focus()
	}
	f.theme.Blur()
	return nil
}

// Request builds the request from the current field values.
func (f *FormScreen) Request() problemgen.Request {
	count, _ := strconv.Atoi(f.count.Value())
	return problemgen.Request{
		Grade:      curriculum.Grade(f.grade.Value()),
		Topic:      f.topic.Value(),
		Subtopic:   f.subtopic.Value(),
		Difficulty: problemgen.Difficulty(f.difficulty.Value()),
		Count:      count,
		Theme:      strings.TrimSpace(f.theme.Value()),
	}
}

func (f *FormScreen) Init() tea.Cmd {
	return nil
}

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if f.focus == fieldTheme {
			var cmd tea.Cmd
			f.theme, cmd = f.theme.Update(msg)
			return f, cmd
		}
		return f, nil
	}

	switch kmsg.String() {
	case "tab", "down":
		f.focus = (f.focus + 1) % numFields
		return f, f.applyFocus()
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + numFields) % numFields
		return f, f.applyFocus()
	case "enter":
		return f, f.start()
	}

	if f.focus == fieldTheme {
		var cmd tea.Cmd
		f.theme, cmd = f.theme.Update(msg)
		return f, cmd
	}
	if f.focus < len(f.choices()) {
		c := f.choices()[f.focus]
		var changed bool
		*c, changed = c.Update(msg)
		if changed {
			switch f.focus {
			case fieldGrade:
				f.resetTopics("")
				f.resetSubtopics("")
			case fieldTopic:
				f.resetSubtopics("")
			}
			f.applyFocus()
		}
	}
	return f, nil
}

func (f *FormScreen) start() tea.Cmd {
	req := f.Request()
	if err := req.Validate(); err != nil {
		f.errMsg = err.Error()
		return nil
	}
	f.errMsg = ""

	gen := f.deps.Generator.WithStrategy(problemgen.Strategy(f.strategy.Value()))
	next := generating.New(f.deps, gen, req)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (f *FormScreen) View(width, height int) string {
	var rows []string
	for _, c := range f.choices() {
		rows = append(rows, c.View(labelWidth))
	}
	rows = append(rows, f.theme.View(labelWidth), "", f.submit.View())
	if f.errMsg != "" {
		rows = append(rows, "", theme.ErrorText.Render(f.errMsg))
	}

	box := theme.Card.Width(min(width-4, 72)).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (f *FormScreen) Title() string {
	return "問題の条件"
}

func (f *FormScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "項目"},
		{Key: "←→", Description: "選択"},
		{Key: "Enter", Description: "作成"},
		{Key: "Esc", Description: "戻る"},
	}
}
