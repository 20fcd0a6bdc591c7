package cmd

import (
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/headless"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/render"
	"github.com/spf13/cobra"
)

var log = logger.WithComponent("cmd")

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat line by line without the full-screen interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		console := display.NewConsole(cmd.OutOrStdout(), display.WithRenderer(render.NewPlain()))

		w, err := wire(cmd.Context(), cfg, console)
		if err != nil {
			return err
		}
		defer w.Close()

		repl := headless.NewREPL(w.ctrl, console, cmd.OutOrStdout(),
			headless.WithModels(cfg.Models()),
			headless.WithHistoryFile(config.BuildSettingsPath("repl_history")),
		)
		return repl.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
