package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/config"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/logging"
	"github.com/csheth/edugenius/internal/markdown"
	"github.com/csheth/edugenius/internal/settings"
	"github.com/csheth/edugenius/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotenv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Println("warning: failed to load .env:", err)
	}
	cfg, err := config.Load(config.SurfaceTUI, flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		closer, err := logging.ToFile(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer closer.Close()
	} else {
		logging.SetOutput(io.Discard)
	}

	var llmClient llm.Client
	llmClient, err = llm.NewFromEnv(cfg.LLM())
	if err != nil {
		fmt.Println("LLM disabled:", err)
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

	opts := []tea.ProgramOption{}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			LLM:           llmClient,
			Settings:      store,
			History:       history.Open(cfg.HistoryPath),
			Auth:          authn,
			MaterialPath:  cfg.Material,
			Interstitial:  cfg.Interstitial,
			RenderOptions: markdown.Options{StrictOrdered: cfg.StrictOrdered},
		}),
		opts...,
	)

	_, err = program.Run()
	return err
}
