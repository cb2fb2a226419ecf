package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.LoadOutline(); err != nil {
		log.Error("invalid tuning file", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional collaborators. Interfaces stay nil when a backend is not
	// configured.
	var (
		collab  outline.Collaborators
		claude  *extract.ClaudeClient
		ps      *pathstore.Client
		store   pipeline.OutlineStore
		catalog api.OutlineCatalog
	)
	if cfg.AnthropicAPIKey != "" {
		claude = extract.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		collab.TitleRewriter = claude
		collab.Enricher = claude
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, title rewrite and enrichment disabled")
	}
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		store, catalog = ps, ps
	} else {
		log.Warn("PATHSTORE_URL not set, outlines will not be persisted")
	}

	engine := outline.New(cfg.Outline, collab, log.With("component", "outline"))

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, engine, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, engine, catalog, claude, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if claude != nil {
			claude.Close()
		}
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting docoutline",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"lesson_mode", cfg.Outline.LessonMode,
		"min_quality", cfg.Outline.MinQuality,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
