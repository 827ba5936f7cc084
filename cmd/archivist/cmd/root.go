package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/archivist/internal/config"
	"github.com/MrSnakeDoc/archivist/internal/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "archivist",
	Short: "Import chat exports into notes and titled links",
	Long: `archivist stores chat exports (ChatGPT JSON, WhatsApp-style text or
plain text), turns every message into a note and every URL into a link
with its page title.

Configuration is read from ARCHIVIST_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override ARCHIVIST_LOG_LEVEL (debug, info, warn, error)")
}

// loadConfig reads the environment and builds the logger.
func loadConfig() (*config.Config, logger.Logger) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}
