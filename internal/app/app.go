package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/screens/form"
	"github.com/mathmaster/mathmaster/internal/screens/home"
	"github.com/mathmaster/mathmaster/internal/screens/welcome"
	"github.com/mathmaster/mathmaster/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   *screen.Deps
	router *router.Router
	width  int
	height int
}

// newAppModel creates an AppModel that opens on the welcome screen.
func newAppModel(deps *screen.Deps) AppModel {
	if deps.NewForm == nil {
		deps.NewForm = func() screen.Screen { return form.New(deps) }
	}
	welcomeScreen := welcome.New(func() screen.Screen { return home.New(deps) })
	return AppModel{
		deps:   deps,
		router: router.New(welcomeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status is the right-hand side of the header.
func (m AppModel) status() string {
	s := m.deps.Model
	if n := len(m.deps.Session.Items()); n > 0 {
		if s != "" {
			s += "  "
		}
		s += fmt.Sprintf("%d問", n)
	}
	return s
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "戻る"},
			{Key: "Ctrl+C", Description: "終了"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "移動"},
			{Key: "Enter", Description: "決定"},
			{Key: "Ctrl+C", Description: "終了"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(deps *screen.Deps) error {
	p := tea.NewProgram(newAppModel(deps))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
