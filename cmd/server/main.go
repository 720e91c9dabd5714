package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnkm/mdstruct/internal/api"
	"github.com/gnkm/mdstruct/internal/config"
	"github.com/gnkm/mdstruct/internal/llm"
	"github.com/gnkm/mdstruct/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize every provider with a configured key.
	backends := make(map[string]llm.Backend)
	for _, name := range llm.Providers() {
		key := cfg.BackendKey(name)
		if key == "" {
			continue
		}
		backend, err := llm.For(name, key, cfg.DefaultModel)
		if err != nil {
			log.Error("backend init failed", "backend", name, "error", err)
			os.Exit(1)
		}
		backends[name] = backend
	}
	if len(backends) == 0 {
		log.Error("no llm backend configured")
		os.Exit(1)
	}

	orch := pipeline.New(&cfg, backends)
	orch.Start(cfg.WorkerCount)

	srv := api.NewServer(orch, log, cfg)

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
	}()

	log.Info("starting mdstruct", "port", cfg.Port, "backends", len(backends))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
