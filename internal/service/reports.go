package service

import (
	"context"
	"fmt"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
)

// MaxSeriesDays bounds a report series.
const MaxSeriesDays = 366

// Reports builds per-day report series over a date range.
type Reports struct {
	ledger *repository.LedgerRepository
}

func NewReports(ledger *repository.LedgerRepository) *Reports {
	return &Reports{ledger: ledger}
}

func checkRange(from, to models.Day) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: both bounds are required", apperrors.ErrInvalidRange)
	}
	if from.After(to) {
		return fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidRange, from, to)
	}
	if n := models.DaysBetween(from, to); n > MaxSeriesDays {
		return fmt.Errorf("%w: %d days, at most %d", apperrors.ErrInvalidRange, n, MaxSeriesDays)
	}
	return nil
}

// OccupancySeries returns one point per day of [from, to]. Days without
// records are included with Initialized=false.
func (r *Reports) OccupancySeries(ctx context.Context, from, to models.Day) ([]models.OccupancyPoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	reports, err := r.ledger.OccupancyBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.OccupancyReport, len(reports))
	for _, rep := range reports {
		byDay[rep.Date.String()] = rep
	}

	points := make([]models.OccupancyPoint, 0, models.DaysBetween(from, to))
	for d := from; !d.After(to); d = d.Next() {
		rep, ok := byDay[d.String()]
		if !ok {
			rep = *models.NewOccupancyReport(d, [models.ShowingCount]int{})
		}
		points = append(points, models.OccupancyPoint{Date: d, Initialized: ok, Report: rep})
	}
	return points, nil
}

// RevenueSeries returns one point per day of [from, to].
func (r *Reports) RevenueSeries(ctx context.Context, from, to models.Day) ([]models.RevenuePoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	reports, err := r.ledger.RevenueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.RevenueReport, len(reports))
	for _, rep := range reports {
		byDay[rep.Date.String()] = rep
	}

	points := make([]models.RevenuePoint, 0, models.DaysBetween(from, to))
	for d := from; !d.After(to); d = d.Next() {
		rep, ok := byDay[d.String()]
		if !ok {
			rep = *models.NewRevenueReport(d, [models.ShowingCount]models.Amount{})
		}
		points = append(points, models.RevenuePoint{Date: d, Initialized: ok, Report: rep})
	}
	return points, nil
}

// Summarize aggregates both series over [from, to]. AvgPercent averages the
// initialized days only.
func (r *Reports) Summarize(ctx context.Context, from, to models.Day) (*models.SeriesSummary, error) {
	occupancy, err := r.OccupancySeries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	revenue, err := r.RevenueSeries(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &models.SeriesSummary{Days: len(occupancy)}
	var percent float64
	for _, p := range occupancy {
		if !p.Initialized {
			continue
		}
		summary.Initialized++
		summary.SeatsSold += p.Report.DailyTotal
		percent += p.Report.DailyPercent
	}
	for _, p := range revenue {
		summary.Revenue += p.Report.DailyTotal
	}
	if summary.Initialized > 0 {
		summary.AvgPercent = percent / float64(summary.Initialized)
	}
	return summary, nil
}
