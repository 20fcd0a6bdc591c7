package cmd

import (
	"fmt"

	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/controllers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models",
	Long:  `List every provider:model selector from the settings file. The selected one is marked with *.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		selection, err := selectionFor(cfg)
		if err != nil {
			return err
		}

		controller := controllers.NewModelsController(cfg.Models(), selection)
		return controller.ListModels(cmd.OutOrStdout())
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <provider:model>",
	Short: "Select the model used by later runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selection, err := config.NewSelection(config.BuildSettingsPath(selectionFile), config.Get().SelectedModel)
		if err != nil {
			return err
		}
		if err := selection.Select(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", args[0])
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(modelsCmd)
}
