package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/screens/history"
	"github.com/mathmaster/mathmaster/internal/screens/review"
	"github.com/mathmaster/mathmaster/internal/ui/components"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

const (
	itemCreate = iota
	itemReview
	itemHistory
	itemQuit
)

// HomeScreen is the root menu.
type HomeScreen struct {
	deps *screen.Deps
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps *screen.Deps) *HomeScreen {
	items := []components.MenuItem{
		itemCreate: {Label: "問題を作成する", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: deps.NewForm()} }
		}},
		itemReview: {Label: "作成した問題を見る", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: review.New(deps)} }
		}},
		itemHistory: {Label: "作成履歴", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(deps.Events)} }
		}},
		itemQuit: {Label: "終了", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h := &HomeScreen{deps: deps, menu: components.NewMenu(items)}
	h.refresh()
	return h
}

// refresh enables entries that depend on session or store state.
func (h *HomeScreen) refresh() {
	h.menu.SetDisabled(itemReview, len(h.deps.Session.Items()) == 0)
	h.menu.SetDisabled(itemHistory, h.deps.Events == nil)
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	h.refresh()
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	h.refresh()

	var sections []string
	sections = append(sections, theme.Title.Render("数学の演習プリントをつくる"))
	if h.deps.Model != "" {
		sections = append(sections, theme.Subtitle.Render("モデル: "+h.deps.Model))
	}
	sections = append(sections, "", h.menu.View())

	box := theme.Card.Width(min(width-4, 48)).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (h *HomeScreen) Title() string {
	return "ホーム"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "移動"},
		{Key: "Enter", Description: "決定"},
		{Key: "Ctrl+C", Description: "終了"},
	}
}
