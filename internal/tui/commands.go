package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/edugenius/internal/assistant"
	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/material"
	"github.com/csheth/edugenius/internal/settings"
)

func interstitialTickCmd(seq int, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return interstitialTickMsg{seq: seq}
	})
}

func askJob(orch *assistant.Orchestrator, req llm.Request, seq int) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		resp, err := orch.Ask(ctx, req)
		return askResultMsg{seq: seq, resp: resp, err: err}, err
	}
}

func loadMaterialJob(loader material.Loader, builder *material.Builder, location string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		doc, err := loader.Load(ctx, location)
		if err != nil {
			return materialResultMsg{err: err}, err
		}
		return materialResultMsg{pkg: builder.Build(doc)}, nil
	}
}

func loadHistoryJob(log *history.Log) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		entries, err := log.Load()
		if err != nil {
			return historyResultMsg{err: err}, err
		}
		recent := make([]history.Entry, 0, historyPreviewLimit)
		for i := len(entries) - 1; i >= 0 && len(recent) < historyPreviewLimit; i-- {
			recent = append(recent, entries[i])
		}
		return historyResultMsg{recent: recent, total: len(entries)}, nil
	}
}

// settingsEdit is one admin change applied to the current settings.
type settingsEdit func(settings.Settings) (settings.Settings, error)

// saveSettingsJob re-checks the admin session before touching the store so an
// expired token never persists a change.
func saveSettingsJob(store *settings.Store, authn *auth.Authenticator, token string, current settings.Settings, edit settingsEdit, notice string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		if authn != nil {
			if _, err := authn.Authorize(token); err != nil {
				return settingsResultMsg{err: err, expired: errors.Is(err, auth.ErrUnauthorized)}, err
			}
		}
		var (
			next settings.Settings
			err  error
		)
		if store != nil {
			next, err = store.Update(edit)
		} else {
			next, err = edit(current)
		}
		if err != nil {
			return settingsResultMsg{value: current, err: err}, err
		}
		return settingsResultMsg{value: next, notice: notice}, nil
	}
}
