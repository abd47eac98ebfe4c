// Package web serves the browser front end: a single form page that
// generates, edits, exports and discusses a problem set.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mathmaster/mathmaster/internal/logger"
	"github.com/mathmaster/mathmaster/internal/problemgen"
	"github.com/mathmaster/mathmaster/internal/render"
	"github.com/mathmaster/mathmaster/internal/session"
	"github.com/mathmaster/mathmaster/internal/store"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Deps are the collaborators of the web front end. Events and Log may be nil.
type Deps struct {
	Generator *problemgen.Generator
	Renderer  *render.Renderer
	Sessions  *session.Manager
	Events    store.EventRepo
	Log       *logger.Logger
}

// Server wraps the gin engine and its HTTP server.
type Server struct {
	deps   Deps
	engine *gin.Engine
	http   *http.Server
}

// NewServer wires routes and templates.
func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewManager(0)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(deps.Log))
	engine.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"),
	))

	s := &Server{deps: deps, engine: engine}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.engine.GET("/api/catalog", s.apiCatalog)

	r := s.engine.Group("/", s.withSession())
	{
		r.GET("/", s.index)
		r.GET("/api/items", s.apiItems)
		r.POST("/generate", s.generate)
		r.POST("/items/:id", s.updateItem)
		r.GET("/export/:kind", s.export)
		r.POST("/ask", s.ask)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept while the server runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.deps.Log.Info("web UI listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	sweep := time.NewTicker(10 * time.Minute)
	defer sweep.Stop()
	for {
		select {
		case err := <-errc:
			return err
		case <-sweep.C:
			if n := s.deps.Sessions.Sweep(); n > 0 {
				s.deps.Log.Debug("swept idle sessions", "count", n)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.http.Shutdown(shutdownCtx)
		}
	}
}
