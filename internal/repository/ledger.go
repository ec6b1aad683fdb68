package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"boxoffice/internal/database"
	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

// LedgerRepository is the seat/sales ledger: the seats table holds a sold
// flag per showing, the sales table the amount taken per showing, one row
// per (date, seat) in each. Every write touches both tables in a single
// transaction.
type LedgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// DayInitialized reports whether any seat record exists for day.
func (r *LedgerRepository) DayInitialized(ctx context.Context, day models.Day) (bool, error) {
	return dayExists(ctx, r.db, day)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func dayExists(ctx context.Context, q queryRower, day models.Day) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE rec_date = $1`, day).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check day %s: %w", day, err)
	}
	return n > 0, nil
}

// EnsureDay seeds vacant seat records and zero sale records for every seat of
// the hall on day. It is a no-op when the day already has records, and either
// all 100 pairs are written or none are. Sale records found for a date with no
// seat records are replaced. price is not stored: amounts are
// captured by Sell. Returns true when the day was created by this call.
func (r *LedgerRepository) EnsureDay(ctx context.Context, day models.Day, price models.Amount) (bool, error) {
	if day.IsZero() {
		return false, fmt.Errorf("ensure day: empty date")
	}

	created := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		created = false

		exists, err := dayExists(ctx, tx, day)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		// sales left over from an unseeded date would disagree with the new grid
		res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE rec_date = $1`, day)
		if err != nil {
			return fmt.Errorf("failed to clear stale sales for %s: %w", day, err)
		}
		if stale, _ := res.RowsAffected(); stale > 0 {
			slog.Warn("Removed sales without seat records", "date", day.String(), "rows", stale)
		}

		grid := models.Grid()

		seatsQuery, seatsArgs := bulkInsert(
			`INSERT INTO seats (seat_code, rec_date) VALUES `, grid, day, false)
		if _, err := tx.ExecContext(ctx, seatsQuery, seatsArgs...); err != nil {
			return fmt.Errorf("failed to seed seats for %s: %w", day, err)
		}

		salesQuery, salesArgs := bulkInsert(
			`INSERT INTO sales (rec_date, seat_code) VALUES `, grid, day, true)
		if _, err := tx.ExecContext(ctx, salesQuery, salesArgs...); err != nil {
			return fmt.Errorf("failed to seed sales for %s: %w", day, err)
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// bulkInsert builds one multi-row INSERT for the grid. Placeholders are
// numbered in order of appearance. Rows that already exist are skipped.
func bulkInsert(prefix string, grid []models.SeatCode, day models.Day, dateFirst bool) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(prefix)

	args := make([]interface{}, 0, len(grid)*2)
	for i, code := range grid {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "($%d, $%d)", 2*i+1, 2*i+2)
		if dateFirst {
			args = append(args, day, int(code))
		} else {
			args = append(args, int(code), day)
		}
	}
	b.WriteString(" ON CONFLICT (rec_date, seat_code) DO NOTHING")

	return b.String(), args
}

// IsVacant reports whether the showing is unsold for the seat on day. Dates
// that were never initialized read as vacant.
func (r *LedgerRepository) IsVacant(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day) (bool, error) {
	if !seat.Valid() {
		return false, fmt.Errorf("%w: %d", apperrors.ErrInvalidSeat, seat)
	}
	col, err := showing.Column()
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM seats WHERE rec_date = $1 AND seat_code = $2 AND %s > 0`, col)

	var n int
	if err := r.db.QueryRowContext(ctx, query, day, int(seat)).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check seat %d: %w", seat, err)
	}
	return n == 0, nil
}

// Sell marks the showing sold and records price as its amount. Vacancy is not
// re-checked: selling a sold seat overwrites the amount.
func (r *LedgerRepository) Sell(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day, price models.Amount) error {
	if price <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidPrice, price)
	}
	return r.setShowing(ctx, seat, showing, day, 1, price)
}

// Return clears the showing flag and zeroes its amount. Returning a vacant
// seat succeeds without changes.
func (r *LedgerRepository) Return(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day) error {
	return r.setShowing(ctx, seat, showing, day, 0, 0)
}

func (r *LedgerRepository) setShowing(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day, flag int, amount models.Amount) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidSeat, seat)
	}
	col, err := showing.Column()
	if err != nil {
		return err
	}

	seatsQuery := fmt.Sprintf(`UPDATE seats SET %s = $1 WHERE seat_code = $2 AND rec_date = $3`, col)
	salesQuery := fmt.Sprintf(`UPDATE sales SET %s = $1 WHERE seat_code = $2 AND rec_date = $3`, col)

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, seatsQuery, flag, int(seat), day)
		if err != nil {
			return fmt.Errorf("failed to update seat %d: %w", seat, err)
		}
		seatRows, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if seatRows == 0 {
			exists, err := dayExists(ctx, tx, day)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", apperrors.ErrNotInitialized, day)
			}
			return fmt.Errorf("%w: no seat record for %d on %s", apperrors.ErrPartialWrite, seat, day)
		}

		res, err = tx.ExecContext(ctx, salesQuery, int64(amount), int(seat), day)
		if err != nil {
			return fmt.Errorf("failed to update sale %d: %w", seat, err)
		}
		saleRows, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if saleRows != seatRows {
			return fmt.Errorf("%w: seat %d on %s updated %d seat rows and %d sale rows",
				apperrors.ErrPartialWrite, seat, day, seatRows, saleRows)
		}

		return nil
	})
}

// GetSeatDay returns the seat record for (day, seat), nil when absent.
func (r *LedgerRepository) GetSeatDay(ctx context.Context, seat models.SeatCode, day models.Day) (*models.SeatDay, error) {
	rows, err := r.querySeatDays(ctx, `WHERE rec_date = $1 AND seat_code = $2`, day, int(seat))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetSale returns the sale record for (day, seat), nil when absent.
func (r *LedgerRepository) GetSale(ctx context.Context, seat models.SeatCode, day models.Day) (*models.Sale, error) {
	rows, err := r.querySales(ctx, `WHERE rec_date = $1 AND seat_code = $2`, day, int(seat))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListSeatDays dumps the seats table for day, or the whole table when day is zero.
func (r *LedgerRepository) ListSeatDays(ctx context.Context, day models.Day) ([]models.SeatDay, error) {
	if day.IsZero() {
		return r.querySeatDays(ctx, "")
	}
	return r.querySeatDays(ctx, `WHERE rec_date = $1`, day)
}

// ListSales dumps the sales table for day, or the whole table when day is zero.
func (r *LedgerRepository) ListSales(ctx context.Context, day models.Day) ([]models.Sale, error) {
	if day.IsZero() {
		return r.querySales(ctx, "")
	}
	return r.querySales(ctx, `WHERE rec_date = $1`, day)
}

func (r *LedgerRepository) querySeatDays(ctx context.Context, where string, args ...interface{}) ([]models.SeatDay, error) {
	query := `
		SELECT rec_no, seat_code, session10, session12, session14, session16, rec_date
		FROM seats ` + where + `
		ORDER BY rec_date, seat_code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.SeatDay
	for rows.Next() {
		var (
			seat  models.SeatDay
			code  int
			flags [models.ShowingCount]int
		)
		err := rows.Scan(
			&seat.RecNo,
			&code,
			&flags[models.Session10],
			&flags[models.Session12],
			&flags[models.Session14],
			&flags[models.Session16],
			&seat.Date,
		)
		if err != nil {
			return nil, err
		}
		seat.SeatCode = models.SeatCode(code)
		for i, f := range flags {
			seat.Sold[i] = f > 0
		}
		result = append(result, seat)
	}

	return result, rows.Err()
}

func (r *LedgerRepository) querySales(ctx context.Context, where string, args ...interface{}) ([]models.Sale, error) {
	query := `
		SELECT rec_no, rec_date, seat_code, session10, session12, session14, session16
		FROM sales ` + where + `
		ORDER BY rec_date, seat_code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Sale
	for rows.Next() {
		var (
			sale    models.Sale
			code    int
			amounts [models.ShowingCount]int64
		)
		err := rows.Scan(
			&sale.RecNo,
			&sale.Date,
			&code,
			&amounts[models.Session10],
			&amounts[models.Session12],
			&amounts[models.Session14],
			&amounts[models.Session16],
		)
		if err != nil {
			return nil, err
		}
		sale.SeatCode = models.SeatCode(code)
		for i, a := range amounts {
			sale.Amounts[i] = models.Amount(a)
		}
		result = append(result, sale)
	}

	return result, rows.Err()
}
