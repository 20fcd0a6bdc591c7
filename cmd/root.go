package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/killallgit/ada/pkg/config"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/headless"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/render"
	"github.com/killallgit/ada/pkg/tui"
	"github.com/killallgit/ada/pkg/tui/chat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ada",
	Short: "Chat with hosted and local language models",
	Long: `Ada streams replies from OpenAI, Anthropic, Groq, Google or a local
Ollama-style server and keeps the conversation on disk.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		prompt := viper.GetString("prompt")

		if viper.GetBool("headless") || prompt != "" {
			return runHeadless(cmd, cfg, prompt)
		}
		return runTUI(cmd.Context(), cfg)
	},
}

func runHeadless(cmd *cobra.Command, cfg *config.Config, prompt string) error {
	console := display.NewConsole(cmd.OutOrStdout(), display.WithRenderer(render.NewPlain()))
	w, err := wire(cmd.Context(), cfg, console)
	if err != nil {
		return err
	}
	defer w.Close()

	return headless.RunOnce(cmd.Context(), w.ctrl, console, prompt)
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	renderer, err := render.New(cfg.Render.Style, 80)
	if err != nil {
		return err
	}

	sink := chat.NewSink()
	w, err := wire(ctx, cfg, sink)
	if err != nil {
		return err
	}
	defer w.Close()

	return tui.Run(ctx, tui.Options{
		Controller:  w.ctrl,
		Sink:        sink,
		Models:      cfg.Models(),
		Renderer:    renderer,
		WatchConfig: true,
	})
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Warn("command failed: %v", err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultSettingsFile, "config file")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().StringP("model", "m", "", "provider:model to use for this run only")
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))

	rootCmd.Flags().StringP("prompt", "p", "", "send one prompt and print the reply")
	viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))

	rootCmd.Flags().BoolP("headless", "H", false, "run without the TUI (requires --prompt)")
	viper.BindPFlag("headless", rootCmd.Flags().Lookup("headless"))
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.InitializeDefaults(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write default configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Info("using config %s", viper.ConfigFileUsed())
}
