package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/domain"
	applog "github.com/maya/screenrank/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectionError indicates storage was unreachable after the bounded
// startup retry loop was exhausted.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database unreachable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InitDB initializes the database connection based on configuration and runs migrations.
// Connectivity is retried with a fixed sleep up to the configured attempt
// ceiling; this is confined to startup, later calls are not wrapped.
// Parameters:
//   - cfg: database configuration including driver and connection settings.
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: *ConnectionError if the database stays unreachable, otherwise
//     the first fatal setup error.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	applog.Info("Initializing database with driver: %q", cfg.Driver)

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = openDB(cfg, gormConfig)
		if err == nil {
			break
		}
		applog.GetDefault().WithFields(applog.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
		}).WithError(err).Warn("Database connection failed")
		if attempt < attempts {
			time.Sleep(cfg.ConnectBackoff)
		}
	}
	if err != nil {
		return nil, &ConnectionError{Attempts: attempts, Err: err}
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		applog.Info("AutoMigrate enabled")
		if err := db.AutoMigrate(
			&domain.Person{},
			&domain.Title{},
			&domain.Rating{},
			&domain.Credit{},
			&domain.ActorScore{},
			&domain.PipelineRun{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	} else {
		applog.Info("AutoMigrate disabled")
	}

	return db, nil
}

func openDB(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg, gormConfig)
	case "postgres":
		return openPostgres(cfg, gormConfig)
	default:
		applog.Warn("Unknown driver %q, defaulting to postgres", cfg.Driver)
		return openPostgres(cfg, gormConfig)
	}
}

// openPostgres initializes a PostgreSQL database connection using the unified DSN
func openPostgres(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	// PreferSimpleProtocol keeps the driver compatible with transaction poolers
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// openSQLite initializes a SQLite database connection
func openSQLite(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	// Ensure the directory exists
	if cfg.Path != "" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// PRAGMA statements are SQLite specific, separate from pool settings
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA foreign_keys=ON")

	return db, nil
}
