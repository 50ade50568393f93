package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgLogger "github.com/sjperalta/feria-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// Options configures the database connection
type Options struct {
	Driver      string
	URL         string
	Environment string
}

// Connect establishes a connection to the configured database
func Connect(opts Options) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if opts.Environment == "development" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(opts.URL)
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(opts.URL), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dialector = sqlite.Open(opts.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	// Writes that matter always go through an explicit Scope, so the
	// implicit per-statement transaction is skipped.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            opts.Driver != DriverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// SQLite has no row locks; a single connection serializes scopes.
		sqlDB.SetMaxOpenConns(1)
		for _, pragma := range sqlitePragmas {
			if _, err := sqlDB.Exec(pragma); err != nil {
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
