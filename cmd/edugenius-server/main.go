package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/config"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/logging"
	"github.com/csheth/edugenius/internal/markdown"
	"github.com/csheth/edugenius/internal/material"
	"github.com/csheth/edugenius/internal/settings"
	"github.com/csheth/edugenius/internal/web"
)

const shutdownGrace = 10 * time.Second

func main() {
	logger := logging.Logger()
	if err := config.LoadDotenv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", "err", err)
	}
	cfg, err := config.Load(config.SurfaceServer, flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.HashPassword != "" {
		if err := printPasswordHash(os.Stdout, cfg.HashPassword); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// printPasswordHash writes the value to put in EDUGENIUS_ADMIN_PASSWORD_HASH.
func printPasswordHash(w io.Writer, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.Logger()

	var llmClient llm.Client
	llmClient, err := llm.NewFromEnv(cfg.LLM())
	if err != nil {
		logger.Warn("LLM disabled", "err", err)
		llmClient = nil
	}
	store, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	authn, err := auth.New(auth.Config{
		Emails:       cfg.AdminEmails,
		PasswordHash: cfg.AdminPasswordHash,
		TTL:          cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("configure admin sign-in: %w", err)
	}
	if !authn.Enabled() {
		logger.Warn("admin routes disabled: set EDUGENIUS_ADMIN_EMAILS and EDUGENIUS_ADMIN_PASSWORD_HASH")
	}

	var pkg *material.Package
	if cfg.Material != "" {
		doc, err := material.Loader{}.Load(ctx, cfg.Material)
		if err != nil {
			return fmt.Errorf("load material: %w", err)
		}
		pkg = material.NewBuilder(nil).Build(doc)
		logger.Info("reference material attached", "source", pkg.Source, "chunks", len(pkg.Chunks))
	}

	handler, err := web.New(web.Config{
		LLM:           llmClient,
		Settings:      store,
		History:       history.Open(cfg.HistoryPath),
		Auth:          authn,
		Material:      pkg,
		RenderOptions: markdown.Options{StrictOrdered: cfg.StrictOrdered},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
