package service

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"boxoffice/internal/database"
	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	services *Services
	repos    *repository.Repositories
	metrics  *metrics.Ledger
	db       *database.DB
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()
	logger.InitWriter(io.Discard, "error", "text")

	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "boxoffice.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if opts.Price == 0 {
		opts.Price = 30
	}
	repos := repository.NewRepositories(db)
	m := metrics.New()
	return &fixture{
		services: NewServices(repos, m, opts, rand.New(rand.NewSource(42))),
		repos:    repos,
		metrics:  m,
		db:       db,
	}
}

func day(t *testing.T, s string) models.Day {
	t.Helper()
	d, err := models.ParseDay(s)
	require.NoError(t, err)
	return d
}

// clockAt returns a fixed local clock.
func clockAt(t *testing.T, s string) func() time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	require.NoError(t, err)
	return func() time.Time { return ts }
}

func TestSellSeedsDayLazily(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	d := day(t, "2024-01-01")
	box := f.services.BoxOffice

	report, err := box.ReportByOccupancy(ctx, d)
	require.NoError(t, err)
	assert.Nil(t, report)

	require.NoError(t, box.Sell(ctx, 101, models.Session10, d))
	require.NoError(t, box.Sell(ctx, 305, models.Session14, d))

	report, err = box.ReportByOccupancy(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, [models.ShowingCount]int{1, 0, 1, 0}, report.Sold)
	assert.InDelta(t, 0.005, report.DailyPercent, 1e-9)

	revenue, err := box.ReportByRevenue(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(60), revenue.DailyTotal)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DaysSeeded))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TicketsSold.WithLabelValues("Session10")))
	assert.Equal(t, 60.0, testutil.ToFloat64(f.metrics.Revenue))
}

func TestIsVacantSeedsDay(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	d := day(t, "2024-01-01")

	vacant, err := f.services.BoxOffice.IsVacant(ctx, 101, models.Session10, d)
	require.NoError(t, err)
	assert.True(t, vacant)

	initialized, err := f.repos.Ledger.DayInitialized(ctx, d)
	require.NoError(t, err)
	assert.True(t, initialized)
}

func TestReturnCountsMetric(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	d := day(t, "2024-01-01")
	box := f.services.BoxOffice

	require.NoError(t, box.Sell(ctx, 101, models.Session12, d))
	require.NoError(t, box.Return(ctx, 101, models.Session12, d))

	vacant, err := box.IsVacant(ctx, 101, models.Session12, d)
	require.NoError(t, err)
	assert.True(t, vacant)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TicketsReturned.WithLabelValues("Session12")))
}

func TestSetPriceAppliesToLaterSales(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	d := day(t, "2024-01-01")
	box := f.services.BoxOffice

	require.NoError(t, box.Sell(ctx, 101, models.Session10, d))
	require.NoError(t, box.SetPrice(45))
	require.NoError(t, box.Sell(ctx, 102, models.Session10, d))

	assert.True(t, errors.Is(box.SetPrice(0), apperrors.ErrInvalidPrice))
	assert.Equal(t, models.Amount(45), box.Price())

	revenue, err := box.ReportByRevenue(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(75), revenue.RevenueFor(models.Session10))
}

func TestInvalidSeatIsReported(t *testing.T) {
	f := setup(t, Options{})

	err := f.services.BoxOffice.Sell(context.Background(), 1111, models.Session10, day(t, "2024-01-01"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidSeat), "got %v", err)

	err = f.services.BoxOffice.Sell(context.Background(), 101, models.Showing(9), day(t, "2024-01-01"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidShowing), "got %v", err)
}

func TestShowingCutoff(t *testing.T) {
	f := setup(t, Options{
		EnforceShowingCutoff: true,
		Now:                  clockAt(t, "2024-05-10 13:00"),
	})
	ctx := context.Background()
	box := f.services.BoxOffice
	today := day(t, "2024-05-10")

	// 10:00 closed at 11:50, 12:00 closes at 13:50
	err := box.Sell(ctx, 101, models.Session10, today)
	assert.True(t, errors.Is(err, apperrors.ErrShowingClosed), "got %v", err)
	assert.NoError(t, box.Sell(ctx, 101, models.Session12, today))
	assert.NoError(t, box.Sell(ctx, 101, models.Session16, today))

	err = box.Return(ctx, 101, models.Session10, day(t, "2024-05-09"))
	assert.True(t, errors.Is(err, apperrors.ErrShowingClosed))

	assert.NoError(t, box.Sell(ctx, 101, models.Session10, day(t, "2024-05-11")))
	assert.False(t, box.ShowingOpen(models.Session10, today))
	assert.True(t, box.ShowingOpen(models.Session14, today))
	assert.True(t, box.Today().Equal(today))
}

func TestCutoffBoundary(t *testing.T) {
	f := setup(t, Options{
		EnforceShowingCutoff: true,
		Now:                  clockAt(t, "2024-05-10 15:50"),
	})
	box := f.services.BoxOffice
	today := day(t, "2024-05-10")

	assert.False(t, box.ShowingOpen(models.Session14, today))
	assert.True(t, box.ShowingOpen(models.Session16, today))
}

func TestCutoffDisabled(t *testing.T) {
	f := setup(t, Options{Now: clockAt(t, "2024-05-10 22:00")})

	err := f.services.BoxOffice.Sell(context.Background(), 101, models.Session10, day(t, "2020-01-01"))
	assert.NoError(t, err)
}

func TestDumpAfterTwoDays(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	box := f.services.BoxOffice

	require.NoError(t, box.EnsureDay(ctx, day(t, "2024-01-01")))
	require.NoError(t, box.EnsureDay(ctx, day(t, "2024-01-02")))
	require.NoError(t, box.EnsureDay(ctx, day(t, "2024-01-02")))

	seats, sales, err := box.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, seats, 2*models.SeatCount)
	assert.Len(t, sales, 2*models.SeatCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DaysSeeded))
}

func TestStoreFailureSurfaces(t *testing.T) {
	f := setup(t, Options{})
	require.NoError(t, f.db.Close())

	err := f.services.BoxOffice.Sell(context.Background(), 101, models.Session10, day(t, "2024-01-01"))
	assert.Error(t, err)
}

func TestSeatStatus(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	d := day(t, "2024-01-01")
	box := f.services.BoxOffice

	require.NoError(t, box.SetPrice(35))
	require.NoError(t, box.Sell(ctx, 808, models.Session14, d))

	status, err := box.Seat(ctx, 808, d)
	require.NoError(t, err)
	assert.True(t, status.Sold(models.Session14))
	assert.False(t, status.Sold(models.Session10))
	assert.Equal(t, models.Amount(35), status.Amount(models.Session14))

	status, err = box.Seat(ctx, 101, day(t, "2024-01-02"))
	require.NoError(t, err)
	require.NotNil(t, status.Seat)
	assert.False(t, status.Sold(models.Session10))

	_, err = box.Seat(ctx, 1111, d)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidSeat))
}
