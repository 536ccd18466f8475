// Package server exposes the scan history, results pages, chart images
// and exports over HTTP, and pushes status changes over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jamesruggles/secuscan/internal/capture"
	"github.com/jamesruggles/secuscan/internal/config"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/scanner"
	"github.com/jamesruggles/secuscan/web"
)

type Server struct {
	cfg    *config.Config
	orch   Orchestrator
	hub    *Hub
	source capture.Source
	router chi.Router
	pages  map[string]*template.Template
	now    func() time.Time
}

// Orchestrator is the part of scanner.Orchestrator the server drives.
type Orchestrator interface {
	Submit(ctx context.Context, req model.ScanRequest) (string, error)
	Refresh(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	List() []model.ScanResult
	Get(id string) (model.ScanResult, bool)
}

// New wires the HTTP surface around orch and, when orch accepts one,
// installs the websocket hub as its event sink. Chart images for PDF
// export come from source; a nil source renders them in-process.
func New(cfg *config.Config, orch Orchestrator, source capture.Source) (*Server, error) {
	if source == nil {
		source = capture.Static{}
	}
	s := &Server{
		cfg:    cfg,
		orch:   orch,
		hub:    NewHub(),
		source: source,
		router: chi.NewRouter(),
		pages:  make(map[string]*template.Template),
		now:    time.Now,
	}

	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if b, ok := orch.(interface{ SetBroadcaster(scanner.Broadcaster) }); ok {
		b.SetBroadcaster(s.hub)
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// chartNode is one chart slot of the report page. Browser capture finds
// it by ID.
type chartNode struct {
	ID   string
	URL  string
	Show bool
}

var templateFuncs = template.FuncMap{
	"band":     report.BandFor,
	"top":      report.TopVulnerabilities,
	"datetime": func(t time.Time) string { return t.Format("02/01/2006 15:04:05") },
	"chartNode": func(available map[string]bool, scanID, chartID string) chartNode {
		return chartNode{
			ID:   chartID,
			URL:  "/charts/" + scanID + "/" + chartID + ".png",
			Show: available[chartID],
		}
	},
}

func (s *Server) loadTemplates() error {
	pageFiles := []string{
		"dashboard.html",
		"history.html",
		"report.html",
	}

	for _, page := range pageFiles {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", page, err)
		}
		s.pages[page] = tmpl
	}
	return nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "base_url", s.cfg.BaseURL())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// originPatterns turns CORS origins into the host patterns the websocket
// origin check expects.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(strings.TrimPrefix(o, "https://"), "http://")
		if o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	return out
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(recoveryMiddleware)
	r.Use(requestID)
	r.Use(loggingMiddleware)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:         300,
	}))

	staticFS, _ := fs.Sub(web.Static, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages
	r.Get("/", s.handleDashboard)
	r.Get("/history", s.handleHistory)
	r.Get("/report/{id}", s.handleReport)
	r.Get("/charts/{id}/{chart}.png", s.handleChart)

	// API
	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", s.handleAPITools)
		r.Route("/scans", func(r chi.Router) {
			r.Get("/", s.handleAPIListScans)
			r.Post("/", s.handleAPICreateScan)
			r.Post("/refresh", s.handleAPIRefresh)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleAPIGetScan)
				r.Delete("/", s.handleAPIDeleteScan)
				r.Get("/views", s.handleAPIViews)
				r.Get("/share", s.handleAPIShare)
				r.Get("/export/{format}", s.handleAPIExport)
			})
		})
	})

	// WebSocket
	r.Get("/ws", s.handleWebSocket)
}
