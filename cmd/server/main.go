package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmertens/pmcminer/internal/api"
	"github.com/jmertens/pmcminer/internal/config"
	"github.com/jmertens/pmcminer/internal/fetch"
	"github.com/jmertens/pmcminer/internal/nlp"
	"github.com/jmertens/pmcminer/internal/pipeline"
	"github.com/jmertens/pmcminer/internal/score"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tables := score.DefaultTables()
	if cfg.ScoreTablePath != "" {
		loaded, err := score.LoadTables(cfg.ScoreTablePath)
		if err != nil {
			log.Error("invalid score tables", "path", cfg.ScoreTablePath, "error", err)
			os.Exit(1)
		}
		tables = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	analyzer := nlp.NewClient(cfg.NLPServerURL, cfg.NLPAPIKey)
	fetcher := fetch.NewClient(cfg.FetchBaseURL, cfg.FetchDelay)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, analyzer, fetcher, tables, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, analyzer, log, cfg)

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

		analyzer.Close()
		fetcher.Close()
	}()

	log.Info("starting pmcminer", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
