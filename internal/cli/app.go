package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesruggles/secuscan/internal/acquisition"
	"github.com/jamesruggles/secuscan/internal/capture"
	"github.com/jamesruggles/secuscan/internal/config"
	"github.com/jamesruggles/secuscan/internal/database"
	"github.com/jamesruggles/secuscan/internal/enrich"
	"github.com/jamesruggles/secuscan/internal/history"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/scanner"
)

// app is the wiring shared by every command.
type app struct {
	orch *scanner.Orchestrator
	// db is set when history lives in SQLite.
	db      *database.DB
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("closing resource", "error", err)
		}
	}
}

// offline stands in for the generator in commands that never submit.
type offline struct{}

func (offline) GenerateReport(context.Context, model.ScanRequest) (*model.PartialResult, error) {
	return nil, errors.New("report generation is not available in this command")
}

// openApp connects the configured history backend and loads the history.
// withGenerator also builds the Gemini client, which needs an API key.
func openApp(ctx context.Context, cfg *config.Config, withGenerator bool) (*app, error) {
	a := &app{}
	kv, err := openKV(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	var gen acquisition.Generator = offline{}
	if withGenerator {
		enricher := enrich.NewClient(cfg.Enrichment.DNSURL, cfg.Enrichment.GeoURL, cfg.Enrichment.Timeout)
		g, err := acquisition.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature, enricher)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating generator: %w", err)
		}
		gen = g
	}

	a.orch = scanner.New(history.NewStore(kv, cfg.Storage.Key), gen, nil)
	if err := a.orch.Refresh(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return a, nil
}

func openKV(ctx context.Context, cfg *config.Config, a *app) (history.KV, error) {
	switch cfg.Storage.Backend {
	case "redis":
		kv, err := history.DialRedis(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		slog.Debug("history backend", "backend", "redis", "addr", cfg.Storage.Redis.Addr)
		return kv, nil
	case "memory":
		return history.NewMemoryKV(), nil
	default:
		db, err := database.New(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		slog.Debug("history backend", "backend", "sqlite", "path", cfg.Storage.Database)
		return db, nil
	}
}

// chartSource picks how charts are captured for PDF export.
func chartSource(cfg *config.Config, a *app) capture.Source {
	if cfg.Export.Capture != "browser" {
		return capture.Static{}
	}
	b := capture.NewBrowser(cfg.BaseURL(), cfg.Export.ChromePath, cfg.Export.CaptureTimeout)
	a.closers = append(a.closers, func() error {
		b.Close()
		return nil
	})
	return b
}

// exportSource is chartSource for commands that run without a server of
// their own. Browser capture screenshots the report page, so when nothing
// answers at the base URL the charts are rendered in-process instead.
func exportSource(ctx context.Context, cfg *config.Config, a *app) capture.Source {
	if cfg.Export.Capture == "browser" && !serving(ctx, cfg.BaseURL()) {
		slog.Warn("no server at base url, rendering charts in-process", "base_url", cfg.BaseURL())
		return capture.Static{}
	}
	return chartSource(cfg, a)
}

func serving(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
