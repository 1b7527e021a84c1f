package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storyhub-api/internal/config"
	"github.com/storyhub-api/pkg/logger"
)

var (
	// Global flags
	migrationsDir string
	logLevel      string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storyhub",
	Short: "StoryHub API - story publishing, moderation and search",
	Long: `StoryHub serves the story publishing API: authoring, engagement,
the moderation workflow and the search engine.

Configuration is read from the environment (and a .env file when present).
Run "storyhub serve" to start the HTTP server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "", "Directory for migration files (overrides MIGRATIONS_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// bootstrap loads configuration and builds the logger shared by every command
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	if migrationsDir != "" {
		cfg.Database.MigrationsPath = migrationsDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}
