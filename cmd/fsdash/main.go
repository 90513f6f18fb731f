// Command fsdash is the field-service dashboard: a terminal board of the
// open service tickets grouped by store, plus scriptable commands for the
// same operations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/model"
)

var (
	configPath  string
	verboseFlag bool
	jsonOutput  bool

	cfg    *model.AppConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fsdash",
	Short: "Field-service ticket dashboard",
	Long: `fsdash monitors the open field-service tickets of a Jira project,
groups them by store and moves them through the visit workflow.

Configuration lives in ~/.config/fieldservice/config.yaml; every key can be
overridden with FSDASH_<SECTION>_<KEY> environment variables. Credentials
come from FSDASH_API_TOKEN, secrets.toml or the OS keyring (see "fsdash login").

Without a subcommand the interactive dashboard starts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger = newLogger(os.Stderr, verboseFlag)
		slog.SetDefault(logger)

		loaded, err := model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log every request")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
