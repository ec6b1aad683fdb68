package validation

import (
	"context"
	"path/filepath"
	"testing"

	"boxoffice/internal/database"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuditor(t *testing.T) (*Auditor, *repository.LedgerRepository, *database.DB) {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "audit.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ledger := repository.NewLedgerRepository(db)
	return NewAuditor(ledger), ledger, db
}

func TestAuditCleanLedger(t *testing.T) {
	auditor, ledger, _ := setupAuditor(t)
	ctx := context.Background()
	d := models.NewDay(2024, 1, 1)

	_, err := ledger.EnsureDay(ctx, d, 30)
	require.NoError(t, err)
	require.NoError(t, ledger.Sell(ctx, 101, models.Session10, d, 30))

	report, err := auditor.AuditDay(ctx, d)
	require.NoError(t, err)
	assert.True(t, report.OK())

	report, err = auditor.AuditAll(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestAuditFindsCorruption(t *testing.T) {
	auditor, ledger, db := setupAuditor(t)
	ctx := context.Background()
	d1 := models.NewDay(2024, 1, 1)
	d2 := models.NewDay(2024, 1, 2)

	for _, d := range []models.Day{d1, d2} {
		_, err := ledger.EnsureDay(ctx, d, 30)
		require.NoError(t, err)
	}

	_, err := db.Exec(`UPDATE seats SET session16 = 1 WHERE rec_date = $1 AND seat_code = $2`, d1, 1010)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM sales WHERE rec_date = $1 AND seat_code = $2`, d2, 101)
	require.NoError(t, err)

	report, err := auditor.AuditDay(ctx, d1)
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, models.SeatCode(1010), report.Mismatches[0].SeatCode)
	assert.Equal(t, models.Session16, report.Mismatches[0].Showing)
	assert.Empty(t, report.CountIssues)

	report, err = auditor.AuditAll(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Mismatches, 2)
	require.Len(t, report.CountIssues, 1)
	assert.True(t, report.CountIssues[0].Date.Equal(d2))
	assert.Equal(t, models.SeatCount, report.CountIssues[0].Seats)
	assert.Equal(t, models.SeatCount-1, report.CountIssues[0].Sales)
}

func TestAuditDayRequiresDate(t *testing.T) {
	auditor, _, _ := setupAuditor(t)

	_, err := auditor.AuditDay(context.Background(), models.Day{})
	assert.Error(t, err)
}
