package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/flowregistry/internal/config"
	"github.com/phrazzld/flowregistry/internal/redact"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PingTimeout bounds the connectivity check performed by Open.
const PingTimeout = 5 * time.Second

// Open connects to the database described by cfg, applies the pool settings and
// verifies connectivity. It returns the placeholder dialect matching the driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, sqlexec.Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(
		slog.String("component", "database"),
		slog.String("driver", cfg.Driver),
	)

	var (
		driverName string
		dsn        string
		dialect    sqlexec.Dialect
	)
	switch cfg.Driver {
	case DriverPostgres:
		driverName, dsn, dialect = "pgx", cfg.URL, sqlexec.Dollar
	case DriverSQLite:
		driverName, dsn, dialect = "sqlite", SQLiteDSN(cfg.URL), sqlexec.Question
	default:
		return nil, 0, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite && IsMemoryDSN(cfg.URL) {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	start := time.Now()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		log.Error("database ping failed",
			slog.String("error", redact.Error(err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil, 0, pingError(err)
	}

	log.Info("database connection established",
		slog.String("url", MaskURL(cfg.URL)),
		slog.String("dialect", dialect.String()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return db, dialect, nil
}

func pingError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("database ping timed out after %s: %w", PingTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("network error connecting to database: %w", err)
	}
	return fmt.Errorf("failed to ping database: %w", err)
}

// NewTemplate returns a statement template over db that rebinds placeholders for
// dialect and maps driver errors with MapError.
func NewTemplate(db *sql.DB, dialect sqlexec.Dialect, logger *slog.Logger) *sqlexec.Template {
	return sqlexec.NewTemplate(db,
		sqlexec.WithDialect(dialect),
		sqlexec.WithLogger(logger),
		sqlexec.WithErrorMapper(MapError),
	)
}

// IsMemoryDSN reports whether a sqlite URL names a private in-memory database.
func IsMemoryDSN(u string) bool {
	return u == ":memory:" || strings.HasPrefix(u, ":memory:?") ||
		strings.Contains(u, "mode=memory")
}

// SQLiteDSN enables foreign key enforcement and a busy timeout on a sqlite
// file name or URI, keeping any pragmas the caller already set.
func SQLiteDSN(u string) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	var b strings.Builder
	b.WriteString(u)
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		name := p[:strings.IndexByte(p, '(')]
		if strings.Contains(u, "_pragma="+name) {
			continue
		}
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// MaskURL hides the password of a connection URL for logging.
func MaskURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		if _, has := parsed.User.Password(); has {
			parsed.User = url.UserPassword(parsed.User.Username(), "****")
			return parsed.String()
		}
	}
	return dbURL
}
