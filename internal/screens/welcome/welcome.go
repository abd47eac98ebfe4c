package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/router"
	"github.com/mathmaster/mathmaster/internal/screen"
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

const sheetArt = `  ┌─────────────┐
  │ 問1 2x+3=7  │
  │ ───────────  │
  │ 問2 x²=9    │
  │ ───────────  │
  │ 問3 √2×√8   │
  │             │
  └─────────────┘`

// pencil frames blink beside the worksheet
var pencilFrames = []string{"✎", "✐"}

type tickMsg time.Time

// WelcomeScreen shows a short splash before handing over to the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with homeFactory's screen
// on the first key press.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyPressMsg:
		// Any key skips the rest of the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// phase is 0 while only the sheet shows, 1 once the pencil starts
// moving and 2 when the banner and hint are up.
func (w *WelcomeScreen) phase() int {
	switch {
	case w.elapsed >= phase2End:
		return 2
	case w.elapsed >= phase1End:
		return 1
	}
	return 0
}

func (w *WelcomeScreen) View(width, height int) string {
	lines := strings.Split(lipgloss.NewStyle().Foreground(theme.Text).Render(sheetArt), "\n")

	if w.phase() >= 1 {
		// The pencil walks down the three problem rows.
		row := 1 + 2*((w.tickCount/10)%3)
		pencil := lipgloss.NewStyle().Foreground(theme.Accent).Render(pencilFrames[w.tickCount%len(pencilFrames)])
		lines[row] += " " + pencil
	}

	if w.phase() == 2 {
		lines = append(lines,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("AIで数学の演習プリントをつくろう"),
			"",
			theme.Hint.Render("何かキーを押してください"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
