package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; this one lets you check the
schema version or upgrade explicitly.`,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	dbPath := appConfig.Database.Path
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	slog.Debug("Starting database migration", "database", dbPath, "status_only", status)

	// Create storage instance
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		rows := [][]string{
			{"Database", dbPath},
			{"Current version", fmt.Sprint(current)},
			{"Latest version", fmt.Sprint(storage.ExpectedSchemaVersion)},
		}
		writeLine(out, cli.RenderTable([]string{cli.ChartIcon + " Migration status", ""}, rows))
		if current < storage.ExpectedSchemaVersion {
			writeLine(out, cli.FormatWarning("Run 'payday migrate' to upgrade."))
		}
		return nil
	}

	writeLine(out, cli.FormatInfo(cli.FolderIcon+"  Running database migrations on "+dbPath))

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	writeLine(out, cli.FormatSuccess("Database migrations completed successfully!"))
	return nil
}
