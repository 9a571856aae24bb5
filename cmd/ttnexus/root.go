package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/daxaroodles/ttnexus"
	"github.com/daxaroodles/ttnexus/internal/platform"
	"github.com/daxaroodles/ttnexus/pkg/core"
)

var (
	verbose bool
	noColor bool
	cfgFile string

	// app is built in PersistentPreRunE from the resolved configuration.
	app *platform.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ttnexus",
	Short: "Bridge between Celeste/Everest mods and the Tea Tree editor",
	Long: `TTNexus lets the Tea Tree editor (GameMaker) work with Everest mod files.
It translates a mod's everest.yaml into a JSON intermediate file the editor can
read and write, and merges the edited file back into YAML.

Failures are printed to the console and appended to ~/ttnexuslogs/error_log.txt.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		v, err := platform.NewViper(cfgFile)
		if err != nil {
			return err
		}
		cfg, err := platform.LoadConfig(v)
		if err != nil {
			return err
		}
		if noColor {
			cfg.Color = false
		}
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}

		app = platform.New(cfg, platform.WithLogger(logger), platform.WithOutput(cmd.OutOrStdout()))
		_ = app.PublishMetadata(platform.Metadata{Version: ttnexus.Version, Branch: ttnexus.Branch})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored console tags")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ttnexus.yaml or ~/.config/ttnexus/ttnexus.yaml)")
}

func modRef(args []string) core.ModRef {
	return core.ModRef{BaseDir: args[0], Name: args[1]}
}
