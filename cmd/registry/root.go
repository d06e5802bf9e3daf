package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/config"
	"github.com/phrazzld/flowregistry/internal/platform/database"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
	"github.com/phrazzld/flowregistry/internal/service"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	output     string
}

// runtime is the set of dependencies a command works with. It is built per
// invocation and released with close.
type runtime struct {
	logger  *slog.Logger
	db      *sql.DB
	service *service.MetadataService
}

func (r *runtime) close() {
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "registry",
		Short:        "Manage the flow and extension registry database",
		Long:         `registry administers the buckets, versioned flows and extension bundles kept in a PostgreSQL or SQLite registry database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(opts.output)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml if present)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputYAML, "output format: yaml or json")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBucketCmd(opts),
		newFlowCmd(opts),
		newSnapshotCmd(opts),
		newBundleCmd(opts),
		newExtensionCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration named by --config, or the default
// locations when the flag is empty.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// connection is an open database together with the settings it was opened with.
type connection struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect sqlexec.Dialect
}

// openDatabase loads configuration, sets up logging to the command's error
// stream and connects to the database.
func openDatabase(cmd *cobra.Command, opts *rootOptions) (*connection, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Log.Level, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log = log.With(slog.String("command", cmd.CommandPath()))

	db, dialect, err := database.Open(cmd.Context(), cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &connection{cfg: cfg, logger: log, db: db, dialect: dialect}, nil
}

// newRuntime wires the metadata service for a command, applying pending
// migrations first when the configuration asks for it.
func newRuntime(cmd *cobra.Command, opts *rootOptions) (*runtime, error) {
	conn, err := openDatabase(cmd, opts)
	if err != nil {
		return nil, err
	}

	if conn.cfg.Database.MigrateOnStart {
		err := database.Migrate(cmd.Context(), conn.db, conn.cfg.Database.Driver, database.MigrateUp, conn.logger)
		if err != nil {
			_ = conn.db.Close()
			return nil, err
		}
	}

	stores, err := sqlstore.NewStores(conn.db, conn.dialect, conn.logger)
	if err != nil {
		_ = conn.db.Close()
		return nil, err
	}
	svc, err := service.NewMetadataService(service.NewSQLStores(stores), conn.logger)
	if err != nil {
		_ = conn.db.Close()
		return nil, err
	}

	return &runtime{logger: conn.logger, db: conn.db, service: svc}, nil
}

// withRuntime adapts a command body that needs the metadata service into a
// cobra RunE function.
func withRuntime(
	opts *rootOptions,
	fn func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, opts)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := logger.WithLogger(cmd.Context(), rt.logger)
		return fn(ctx, cmd, rt, args)
	}
}
