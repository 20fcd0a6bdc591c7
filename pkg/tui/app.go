// Package tui runs the full-screen chat interface.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/render"
	"github.com/killallgit/ada/pkg/tui/chat"
)

var log = logger.WithComponent("tui")

// Options wires the chat view to an already built controller.
type Options struct {
	Controller *controllers.TurnController
	// Sink must be the sink Controller was built with.
	Sink     *chat.Sink
	Models   []string
	Renderer render.Renderer
	// WatchConfig reloads the model list when the settings file changes.
	WatchConfig bool
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil || opts.Sink == nil {
		return fmt.Errorf("tui: controller and sink are required")
	}

	// The program owns the terminal while it runs
	logger.SetStderr(false)
	defer logger.SetStderr(true)

	model := chat.NewChatModel(opts.Controller, opts.Sink, opts.Models, opts.Renderer)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if opts.WatchConfig {
		config.Watch(func(c *config.Config) {
			log.Info("settings changed, reloading models")
			p.Send(chat.ModelsChangedMsg{Models: c.Models()})
		})
	}

	opts.Controller.Replay()
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
