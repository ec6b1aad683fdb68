package repository

import (
	"context"
	"database/sql"
	"fmt"

	"boxoffice/internal/models"
)

const occupancyColumns = `
	COALESCE(SUM(CASE WHEN session10 > 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN session12 > 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN session14 > 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN session16 > 0 THEN 1 ELSE 0 END), 0)`

const revenueColumns = `
	SUM(session10), SUM(session12), SUM(session14), SUM(session16)`

// ReportByOccupancy counts sold seats per showing on day. Returns nil when
// the day was never initialized.
func (r *LedgerRepository) ReportByOccupancy(ctx context.Context, day models.Day) (*models.OccupancyReport, error) {
	query := `SELECT COUNT(*),` + occupancyColumns + ` FROM seats WHERE rec_date = $1`

	var (
		records int
		sold    [models.ShowingCount]int
	)
	err := r.db.QueryRowContext(ctx, query, day).Scan(
		&records,
		&sold[models.Session10],
		&sold[models.Session12],
		&sold[models.Session14],
		&sold[models.Session16],
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build occupancy report for %s: %w", day, err)
	}

	if records == 0 {
		return nil, nil
	}
	return models.NewOccupancyReport(day, sold), nil
}

// ReportByRevenue sums sale amounts per showing on day. Returns nil when the
// day was never initialized. SUM over no sale rows comes back NULL and is
// reported as zero.
func (r *LedgerRepository) ReportByRevenue(ctx context.Context, day models.Day) (*models.RevenueReport, error) {
	query := `SELECT (SELECT COUNT(*) FROM seats WHERE rec_date = $1),` + revenueColumns + `
		FROM sales WHERE rec_date = $1`

	var (
		records int
		sums    [models.ShowingCount]sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, day).Scan(
		&records,
		&sums[models.Session10],
		&sums[models.Session12],
		&sums[models.Session14],
		&sums[models.Session16],
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue report for %s: %w", day, err)
	}

	if records == 0 {
		return nil, nil
	}
	return models.NewRevenueReport(day, normalizeSums(sums)), nil
}

func normalizeSums(sums [models.ShowingCount]sql.NullInt64) [models.ShowingCount]models.Amount {
	var revenue [models.ShowingCount]models.Amount
	for i, s := range sums {
		if s.Valid {
			revenue[i] = models.Amount(s.Int64)
		}
	}
	return revenue
}

// OccupancyBetween returns one report per initialized day in [from, to],
// ordered by date.
func (r *LedgerRepository) OccupancyBetween(ctx context.Context, from, to models.Day) ([]models.OccupancyReport, error) {
	query := `SELECT rec_date,` + occupancyColumns + `
		FROM seats
		WHERE rec_date >= $1 AND rec_date <= $2
		GROUP BY rec_date
		ORDER BY rec_date`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build occupancy series: %w", err)
	}
	defer rows.Close()

	var reports []models.OccupancyReport
	for rows.Next() {
		var (
			day  models.Day
			sold [models.ShowingCount]int
		)
		err := rows.Scan(
			&day,
			&sold[models.Session10],
			&sold[models.Session12],
			&sold[models.Session14],
			&sold[models.Session16],
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *models.NewOccupancyReport(day, sold))
	}

	return reports, rows.Err()
}

// RevenueBetween returns one report per initialized day in [from, to],
// ordered by date. Days are taken from the seats table so a day whose sale
// rows are missing still reports zero revenue.
func (r *LedgerRepository) RevenueBetween(ctx context.Context, from, to models.Day) ([]models.RevenueReport, error) {
	query := `SELECT d.rec_date, SUM(a.session10), SUM(a.session12), SUM(a.session14), SUM(a.session16)
		FROM (SELECT DISTINCT rec_date FROM seats WHERE rec_date >= $1 AND rec_date <= $2) d
		LEFT JOIN sales a ON a.rec_date = d.rec_date
		GROUP BY d.rec_date
		ORDER BY d.rec_date`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue series: %w", err)
	}
	defer rows.Close()

	var reports []models.RevenueReport
	for rows.Next() {
		var (
			day  models.Day
			sums [models.ShowingCount]sql.NullInt64
		)
		err := rows.Scan(
			&day,
			&sums[models.Session10],
			&sums[models.Session12],
			&sums[models.Session14],
			&sums[models.Session16],
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *models.NewRevenueReport(day, normalizeSums(sums)))
	}

	return reports, rows.Err()
}

// ListDays returns the initialized days in [from, to]. Zero bounds are open.
func (r *LedgerRepository) ListDays(ctx context.Context, from, to models.Day) ([]models.Day, error) {
	var args []interface{}
	var conditions []string
	argIndex := 1

	if !from.IsZero() {
		conditions = append(conditions, fmt.Sprintf("rec_date >= $%d", argIndex))
		args = append(args, from)
		argIndex++
	}
	if !to.IsZero() {
		conditions = append(conditions, fmt.Sprintf("rec_date <= $%d", argIndex))
		args = append(args, to)
		argIndex++
	}

	query := `SELECT DISTINCT rec_date FROM seats`
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY rec_date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	defer rows.Close()

	var days []models.Day
	for rows.Next() {
		var day models.Day
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	return days, rows.Err()
}
