package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratalab/gensync/cmd/gensync/commands"
	"github.com/stratalab/gensync/config"
	"github.com/stratalab/gensync/internal/telemetry"
	"github.com/stratalab/gensync/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gensync",
	Short: "gensync - client for the AI website generation service",
	Long: `gensync - submit AI website generation jobs and follow their progress.

Progress arrives over three independent channels (the submit call itself, its
event stream, and a shared push channel); gensync reconciles them into one
consistent view per job.

Available commands:
  generate   - Submit a new generation job and follow it to completion
  regenerate - Re-run generation for an existing project
  watch      - Follow an already-running job by id
  projects   - List your projects
  project    - Show one project
  files      - Show a project's generated files
  models     - List available generation engines
  delete     - Delete a project

Examples:
  gensync generate --company Acme --industry technology
  gensync watch 7f3b2c
  gensync projects`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Initialize(cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if addr := cfg.Metrics.Addr; addr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", telemetry.Handler())
				if err := http.ListenAndServe(addr, mux); err != nil {
					logger.Warnw("Metrics endpoint stopped", "addr", addr, "error", err.Error())
				}
			}()
		}
		return nil
	},
}

func main() {
	defer logger.Cleanup()

	rootCmd.AddCommand(
		commands.NewGenerateCommand(),
		commands.NewRegenerateCommand(),
		commands.NewWatchCommand(),
		commands.NewProjectsCommand(),
		commands.NewProjectCommand(),
		commands.NewFilesCommand(),
		commands.NewModelsCommand(),
		commands.NewDeleteCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
