package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/archivist/internal/app"
	"github.com/MrSnakeDoc/archivist/internal/domain"
)

var (
	importUser     string
	importCategory string
	importName     string
	importStrict   bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import one export file and print the report as JSON",
	Long: `Import one chat export into a category.

The format is picked from the file extension: .json for ChatGPT exports,
.txt for chat transcripts, anything else is stored as a single note.

Examples:
  archivist import --user u1 --category research conversations.json
  archivist import --user u1 --category trip --name chat.txt ./export/_chat.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		name := importName
		if name == "" {
			name = filepath.Base(path)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, log := loadConfig()
		defer func() { _ = log.Sync() }()

		c, err := app.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer c.Close()

		scope := domain.Scope{UserID: importUser, CategoryID: importCategory}
		report, err := c.Importer.Import(ctx, scope, name, data)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}

		if importStrict && !report.Complete() {
			return fmt.Errorf("%d notes and %d links could not be saved",
				len(report.Notes.Failed), len(report.Links.Failed))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importUser, "user", "", "owner user id (required)")
	importCmd.Flags().StringVar(&importCategory, "category", "", "target category id (required)")
	importCmd.Flags().StringVar(&importName, "name", "", "filename to record (defaults to the file's base name)")
	importCmd.Flags().BoolVar(&importStrict, "strict", false, "exit non-zero when any note or link failed to save")
	_ = importCmd.MarkFlagRequired("user")
	_ = importCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(importCmd)
}
