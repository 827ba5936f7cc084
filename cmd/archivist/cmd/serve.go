package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/archivist/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		defer func() { _ = log.Sync() }()

		a, err := app.New(context.Background(), cfg, log)
		if err != nil {
			return err
		}
		return a.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
