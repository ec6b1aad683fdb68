package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apperrors "boxoffice/internal/errors"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB struct {
	*sql.DB
	driver string
}

type Config struct {
	Driver string `validate:"oneof=sqlite3 postgres"`

	// sqlite3: file location of the ledger
	Path string `validate:"required_if=Driver sqlite3"`

	// postgres
	Host     string `validate:"required_if=Driver postgres"`
	Port     int
	User     string
	Password string
	DBName   string `validate:"required_if=Driver postgres"`
	SSLMode  string

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int
}

// Connect opens the ledger store and verifies it can be reached. Any failure
// to open or create the location is reported as ErrStorageUnavailable.
func Connect(cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var dsn string
	switch driver {
	case DriverSQLite:
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", cfg.Path)
	case DriverPostgres:
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", apperrors.ErrStorageUnavailable, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", apperrors.ErrStorageUnavailable, err)
	}

	if driver == DriverSQLite {
		// one writer; keeps every statement on the same file handle
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMin) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", apperrors.ErrStorageUnavailable, err)
	}

	if driver == DriverSQLite {
		slog.Info("Connected to database", "driver", driver, "path", cfg.Path)
	} else {
		slog.Info("Connected to database",
			"driver", driver, "host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName,
			"max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Open connects and runs migrations: the single entry point used by the
// command line tools and tests.
func Open(cfg Config) (*DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}
