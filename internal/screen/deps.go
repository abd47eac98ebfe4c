package screen

import (
	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/session"
	"github.com/mathmaster/mathmaster/internal/store"
)

// Deps are the collaborators shared by the screens.
type Deps struct {
	Generator *problemgen.Generator
	Renderer  *render.Renderer
	Session   *session.Session

	// Events records batches and backs the history screen. May be nil.
	Events store.EventRepo

	// Log receives warnings the screens cannot show. May be nil.
	Log *logger.Logger

	// OutDir receives exported PDFs.
	OutDir string

	// Model names the completion model for the header.
	Model string

	// NewForm builds the generation form. Screens that start a new batch
	// use it instead of importing the form screen.
	NewForm func() Screen
}

// Logger returns Log, or a logger that discards everything when Log is nil.
func (d *Deps) Logger() *logger.Logger {
	if d.Log == nil {
		return logger.Nop()
	}
	return d.Log
}
