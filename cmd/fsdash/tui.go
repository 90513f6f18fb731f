package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/app"
	"github.com/nhle/field-service/internal/model"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive dashboard",
	Long: `Start the interactive dashboard. Logs go to
~/.config/fieldservice/fsdash.log while the dashboard owns the terminal.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	logPath := filepath.Join(model.ConfigDir(), "fsdash.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	// The alt-screen owns stderr from here on.
	logger = newLogger(f, verboseFlag)
	slog.SetDefault(logger)

	deps, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
