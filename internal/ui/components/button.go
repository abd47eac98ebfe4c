package components

import (
	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

// Button is a styled button. Key handling is left to the owning screen.
type Button struct {
	Label   string
	Focused bool
}

// NewButton creates a new button.
func NewButton(label string) Button {
	return Button{Label: label}
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
