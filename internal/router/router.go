// Package router keeps the TUI's stack of screens. Screens navigate by
// returning Push, Pop or Replace messages from their commands.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mathmaster/mathmaster/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg returns to the previous screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen without changing the depth.
// Used for one-way flows such as form → generating → review.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router is a screen stack that never becomes empty.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Push opens s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the active screen. The root screen is never popped.
func (r *Router) Pop() tea.Cmd {
	if r.top() > 0 {
		r.stack[r.top()] = nil
		r.stack = r.stack[:r.top()]
	}
	return nil
}

// Replace swaps the active screen for s and runs its Init.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[r.top()] = s
	return s.Init()
}

func (r *Router) Active() screen.Screen {
	return r.stack[r.top()]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	next, cmd := r.Active().Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
