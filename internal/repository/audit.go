package repository

import (
	"context"
	"fmt"

	"boxoffice/internal/models"
)

// Mismatch reasons.
const (
	ReasonSaleMissing       = "sale record missing"
	ReasonSeatMissing       = "seat record missing"
	ReasonSoldWithoutAmount = "sold without amount"
	ReasonAmountWithoutSale = "amount without sale"
)

// DayRecordCount is the number of seat and sale records stored for one day.
type DayRecordCount struct {
	Date  models.Day
	Seats int
	Sales int
}

// FindMismatches returns every (date, seat, showing) where the seat flag and
// the sale amount disagree, plus seats whose paired sale record is missing.
// A zero day scans the whole ledger.
func (r *LedgerRepository) FindMismatches(ctx context.Context, day models.Day) ([]models.Mismatch, error) {
	query := `
		SELECT s.rec_date, s.seat_code,
		       s.session10, s.session12, s.session14, s.session16,
		       COALESCE(a.session10, 0), COALESCE(a.session12, 0),
		       COALESCE(a.session14, 0), COALESCE(a.session16, 0),
		       CASE WHEN a.rec_no IS NULL THEN 1 ELSE 0 END
		FROM seats s
		LEFT JOIN sales a ON a.rec_date = s.rec_date AND a.seat_code = s.seat_code`

	var args []interface{}
	if !day.IsZero() {
		query += " WHERE s.rec_date = $1"
		args = append(args, day)
	}
	query += " ORDER BY s.rec_date, s.seat_code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger: %w", err)
	}
	defer rows.Close()

	var mismatches []models.Mismatch
	for rows.Next() {
		var (
			date        models.Day
			code        int
			flags       [models.ShowingCount]int
			amounts     [models.ShowingCount]int64
			saleMissing int
		)
		err := rows.Scan(
			&date, &code,
			&flags[models.Session10], &flags[models.Session12],
			&flags[models.Session14], &flags[models.Session16],
			&amounts[models.Session10], &amounts[models.Session12],
			&amounts[models.Session14], &amounts[models.Session16],
			&saleMissing,
		)
		if err != nil {
			return nil, err
		}

		seat := models.SeatCode(code)
		if saleMissing == 1 {
			mismatches = append(mismatches, models.Mismatch{
				Date:     date,
				SeatCode: seat,
				Reason:   ReasonSaleMissing,
			})
			continue
		}

		for _, showing := range models.Showings() {
			sold := flags[showing] > 0
			amount := models.Amount(amounts[showing])
			if sold == (amount != 0) {
				continue
			}
			reason := ReasonSoldWithoutAmount
			if !sold {
				reason = ReasonAmountWithoutSale
			}
			mismatches = append(mismatches, models.Mismatch{
				Date:     date,
				SeatCode: seat,
				Showing:  showing,
				Sold:     sold,
				Amount:   amount,
				Reason:   reason,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orphans, err := r.orphanSales(ctx, day)
	if err != nil {
		return nil, err
	}
	return append(mismatches, orphans...), nil
}

func (r *LedgerRepository) orphanSales(ctx context.Context, day models.Day) ([]models.Mismatch, error) {
	query := `
		SELECT a.rec_date, a.seat_code
		FROM sales a
		LEFT JOIN seats s ON s.rec_date = a.rec_date AND s.seat_code = a.seat_code
		WHERE s.rec_no IS NULL`

	var args []interface{}
	if !day.IsZero() {
		query += " AND a.rec_date = $1"
		args = append(args, day)
	}
	query += " ORDER BY a.rec_date, a.seat_code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}
	defer rows.Close()

	var result []models.Mismatch
	for rows.Next() {
		var (
			date models.Day
			code int
		)
		if err := rows.Scan(&date, &code); err != nil {
			return nil, err
		}
		result = append(result, models.Mismatch{
			Date:     date,
			SeatCode: models.SeatCode(code),
			Reason:   ReasonSeatMissing,
		})
	}

	return result, rows.Err()
}

// RecordCounts returns seat and sale record counts per stored day.
func (r *LedgerRepository) RecordCounts(ctx context.Context) ([]DayRecordCount, error) {
	query := `
		SELECT rec_date, SUM(seats), SUM(sales) FROM (
			SELECT rec_date, 1 AS seats, 0 AS sales FROM seats
			UNION ALL
			SELECT rec_date, 0 AS seats, 1 AS sales FROM sales
		) t
		GROUP BY rec_date
		ORDER BY rec_date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	var counts []DayRecordCount
	for rows.Next() {
		var c DayRecordCount
		if err := rows.Scan(&c.Date, &c.Seats, &c.Sales); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}
