package database

import (
	"fmt"
	"log/slog"
)

// RunMigrations creates the seats and sales tables when they do not exist.
// Both tables carry a unique (rec_date, seat_code) index so a date can never
// hold two records for one seat.
func (db *DB) RunMigrations() error {
	slog.Debug("Running database migrations...", "driver", db.driver)

	migrations := sqliteMigrations
	if db.driver == DriverPostgres {
		migrations = postgresMigrations
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Debug("All migrations completed successfully")
	return nil
}

var sqliteMigrations = []string{
	createSeatsTableSQLite,
	createSalesTableSQLite,
	createSeatsDayIndex,
	createSalesDayIndex,
}

var postgresMigrations = []string{
	createSeatsTablePostgres,
	createSalesTablePostgres,
	createSeatsDayIndex,
	createSalesDayIndex,
}

const createSeatsTableSQLite = `
CREATE TABLE IF NOT EXISTS seats (
    rec_no INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
    seat_code INTEGER NOT NULL,
    session10 INTEGER NOT NULL DEFAULT 0,
    session12 INTEGER NOT NULL DEFAULT 0,
    session14 INTEGER NOT NULL DEFAULT 0,
    session16 INTEGER NOT NULL DEFAULT 0,
    rec_date TEXT NOT NULL
);`

const createSalesTableSQLite = `
CREATE TABLE IF NOT EXISTS sales (
    rec_no INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
    rec_date TEXT NOT NULL,
    seat_code INTEGER NOT NULL,
    session10 INTEGER NOT NULL DEFAULT 0,
    session12 INTEGER NOT NULL DEFAULT 0,
    session14 INTEGER NOT NULL DEFAULT 0,
    session16 INTEGER NOT NULL DEFAULT 0
);`

const createSeatsTablePostgres = `
CREATE TABLE IF NOT EXISTS seats (
    rec_no BIGSERIAL PRIMARY KEY,
    seat_code INTEGER NOT NULL,
    session10 INTEGER NOT NULL DEFAULT 0,
    session12 INTEGER NOT NULL DEFAULT 0,
    session14 INTEGER NOT NULL DEFAULT 0,
    session16 INTEGER NOT NULL DEFAULT 0,
    rec_date TEXT NOT NULL
);`

const createSalesTablePostgres = `
CREATE TABLE IF NOT EXISTS sales (
    rec_no BIGSERIAL PRIMARY KEY,
    rec_date TEXT NOT NULL,
    seat_code INTEGER NOT NULL,
    session10 BIGINT NOT NULL DEFAULT 0,
    session12 BIGINT NOT NULL DEFAULT 0,
    session14 BIGINT NOT NULL DEFAULT 0,
    session16 BIGINT NOT NULL DEFAULT 0
);`

const createSeatsDayIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS seats_rec_date_seat_code_idx
ON seats (rec_date, seat_code);`

const createSalesDayIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS sales_rec_date_seat_code_idx
ON sales (rec_date, seat_code);`
