package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Fail fast on a bad backend selection or missing credentials.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "code", common.CodeOf(err), "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := pipeline.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "code", common.CodeOf(err), "error", err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		MaxUploadMB:      cfg.Server.MaxUploadMB,
		DefaultLanguages: cfg.OCR.Languages,
	}, proc, logger).HTTPServer(cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http serving", "addr", cfg.Server.Addr, "ocr_backend", cfg.OCR.Backend, "llm_provider", cfg.LLM.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
