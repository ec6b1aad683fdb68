package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	apperrors "boxoffice/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"seats", "sales"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
	assert.Equal(t, DriverSQLite, db.Driver())
}

func TestMigrationsAreRepeatable(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO seats (seat_code, rec_date) VALUES ($1, $2)`, 101, "2024-01-01")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations())

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM seats`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUniqueSeatPerDay(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO seats (seat_code, rec_date) VALUES ($1, $2)`, 101, "2024-01-01")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO seats (seat_code, rec_date) VALUES ($1, $2)`, 101, "2024-01-01")
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO seats (seat_code, rec_date) VALUES ($1, $2)`, 101, "2024-01-02")
	assert.NoError(t, err)
}

func TestOpenUnreachableLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "ledger.db")

	_, err := Open(Config{Driver: DriverSQLite, Path: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable), "got %v", err)
}

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"})
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO seats (seat_code, rec_date) VALUES ($1, $2)`, 101, "2024-01-01"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM seats`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithTxRetriesBusyStore(t *testing.T) {
	db := openTestDB(t)

	attempts := 0
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("write tcp: broken pipe"), true},
		{errors.New("UNIQUE constraint failed"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryableError(tt.err), "%v", tt.err)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	health := db.HealthCheck(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, DriverSQLite, health.Driver)
	assert.Equal(t, 1, health.Stats.MaxOpenConns)
}
