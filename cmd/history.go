package cmd

import (
	"fmt"
	"io"

	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the stored conversation",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store history.Store) error {
			messages, err := store.Load()
			if err != nil {
				return err
			}
			showHistory(cmd.OutOrStdout(), messages)
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store history.Store) error {
			if err := store.Save(nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored conversation as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withStore(func(store history.Store) error {
			messages, err := store.Load()
			if err != nil {
				return err
			}
			return history.Export(cmd.OutOrStdout(), messages, format)
		})
	},
}

func withStore(fn func(history.Store) error) error {
	store, closeStore, err := openStore(config.Get())
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(store)
}

func showHistory(w io.Writer, messages []chat.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}
	for _, msg := range messages {
		fmt.Fprintf(w, "%s: %s\n", msg.Label(), msg.Content)
	}
}

func init() {
	historyExportCmd.Flags().StringP("format", "f", history.FormatJSON, "output format (json or yaml)")

	historyCmd.AddCommand(historyShowCmd, historyClearCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
