package cmd

import (
	"context"
	"fmt"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/events"
	"github.com/killallgit/ada/pkg/history"
	"github.com/killallgit/ada/pkg/provider"
	"github.com/killallgit/ada/pkg/transport"
	"github.com/spf13/viper"
)

const selectionFile = "selection.json"

// wiring is everything a surface needs to run turns.
type wiring struct {
	ctrl       *controllers.TurnController
	bus        *events.Bus
	closeStore func() error
}

func (w *wiring) Close() {
	w.ctrl.Close()
	w.bus.Close()
	if err := w.closeStore(); err != nil {
		log.Warn("failed to close history store", "error", err)
	}
}

func openStore(cfg *config.Config) (history.Store, func() error, error) {
	return history.Open(history.Options{
		Backend:  cfg.History.Backend,
		File:     config.ResolvePath(cfg.History.File),
		Database: config.ResolvePath(cfg.History.Database),
	})
}

// selectionFor returns the persisted selection, or a throwaway one when
// --model was given.
func selectionFor(cfg *config.Config) (controllers.Selection, error) {
	if override := viper.GetString("model"); override != "" {
		if _, err := provider.ParseSelector(override); err != nil {
			return nil, err
		}
		return &controllers.StaticSelection{Selector: override}, nil
	}
	return config.NewSelection(config.BuildSettingsPath(selectionFile), cfg.SelectedModel)
}

// wire builds the controller writing to sink from cfg.
func wire(ctx context.Context, cfg *config.Config, sink display.Sink) (*wiring, error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	messages, err := store.Load()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	prompt, err := config.LoadSystemPrompt(cfg.SystemPromptFile)
	if err != nil {
		closeStore()
		return nil, err
	}

	selection, err := selectionFor(cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	table, err := transport.NewTable(cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	bus := events.NewBus()
	ctrl := controllers.NewTurnController(ctx, controllers.Options{
		Sink:         sink,
		Store:        store,
		Session:      chat.NewSession(messages, prompt, cfg.ContextWindowSize),
		Table:        table,
		Bus:          bus,
		Selection:    selection,
		SuppressEcho: cfg.Stream.SuppressEcho,
	})

	log.Info("wired", "selector", selection.Selected(), "history", len(messages), "backend", cfg.History.Backend)
	return &wiring{ctrl: ctrl, bus: bus, closeStore: closeStore}, nil
}
