package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mathmaster/mathmaster/internal/ui/theme"
)

// Option is one value of a Choice.
type Option struct {
	Value string
	Label string
}

// Choice is a single-line selector cycled with left and right.
type Choice struct {
	Label    string
	Options  []Option
	Selected int
	Focused  bool
}

// NewChoice creates a Choice with the option whose Value equals value
// selected, or the first option.
func NewChoice(label string, options []Option, value string) Choice {
	c := Choice{Label: label, Options: options}
	c.Select(value)
	return c
}

// Select moves the cursor to the option with the given value. Unknown
// values select the first option.
func (c *Choice) Select(value string) {
	c.Selected = 0
	for i, o := range c.Options {
		if o.Value == value {
			c.Selected = i
			return
		}
	}
}

// Value returns the selected option's value, or "" when there are none.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected].Value
}

// Update handles left/right cycling. changed reports a new selection.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused || len(c.Options) == 0 {
		return c, false
	}

	prev := c.Selected
	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, c.Selected != prev
}

// View renders the label and the current option.
func (c Choice) View(labelWidth int) string {
	label := lipgloss.NewStyle().Width(labelWidth).Foreground(theme.TextDim).Render(c.Label)

	current := "-"
	if v := c.Selected; v >= 0 && v < len(c.Options) {
		current = c.Options[v].Label
	}

	if c.Focused {
		return label + theme.Selected.Render("◀ "+current+" ▶")
	}
	return label + theme.Unselected.Render("  "+current)
}
