package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flowregistry/internal/platform/database"
	"github.com/spf13/cobra"
)

// schemaVersion is the output of "migrate version".
type schemaVersion struct {
	Version int64 `json:"version" yaml:"version"`
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	long := "Run a migration command against the configured database.\n\nCommands: " +
		strings.Join(database.MigrateCommands, ", ")

	return &cobra.Command{
		Use:       "migrate <command>",
		Short:     "Run database migrations",
		Long:      long,
		Args:      cobra.ExactArgs(1),
		ValidArgs: database.MigrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDatabase(cmd, opts)
			if err != nil {
				return err
			}
			defer func() {
				if err := conn.db.Close(); err != nil {
					conn.logger.Warn("failed to close database", slog.String("error", err.Error()))
				}
			}()

			command := args[0]
			driver := conn.cfg.Database.Driver

			if command == database.MigrateVersion {
				v, err := database.SchemaVersion(cmd.Context(), conn.db, driver, conn.logger)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, schemaVersion{Version: v})
			}

			conn.logger.Info("executing migrations",
				slog.String("migration_command", command),
				slog.String("database_url", database.MaskURL(conn.cfg.Database.URL)))
			if err := database.Migrate(cmd.Context(), conn.db, driver, command, conn.logger); err != nil {
				return fmt.Errorf("migrations failed: %w", err)
			}
			return nil
		},
	}
}
