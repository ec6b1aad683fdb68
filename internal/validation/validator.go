package validation

import (
	"context"
	"fmt"
	"log/slog"

	"boxoffice/internal/models"
	"boxoffice/internal/repository"
)

// DayCountIssue - день, в котором число записей мест или продаж не равно
// числу мест в зале
type DayCountIssue struct {
	Date  models.Day `json:"date"`
	Seats int        `json:"seats"`
	Sales int        `json:"sales"`
}

// Report - результат проверки согласованности журнала
type Report struct {
	Mismatches  []models.Mismatch `json:"mismatches"`
	CountIssues []DayCountIssue   `json:"count_issues"`
}

// OK сообщает, что расхождений не найдено
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && len(r.CountIssues) == 0
}

// Auditor - проверка того, что флаги мест и суммы продаж совпадают
type Auditor struct {
	ledger *repository.LedgerRepository
}

// NewAuditor создает новый аудитор
func NewAuditor(ledger *repository.LedgerRepository) *Auditor {
	return &Auditor{ledger: ledger}
}

// AuditDay проверяет один день
func (a *Auditor) AuditDay(ctx context.Context, day models.Day) (*Report, error) {
	if day.IsZero() {
		return nil, fmt.Errorf("audit day: empty date")
	}
	return a.audit(ctx, day)
}

// AuditAll проверяет весь журнал
func (a *Auditor) AuditAll(ctx context.Context) (*Report, error) {
	return a.audit(ctx, models.Day{})
}

func (a *Auditor) audit(ctx context.Context, day models.Day) (*Report, error) {
	slog.Debug("Starting ledger audit", "date", day.String())

	mismatches, err := a.ledger.FindMismatches(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("audit failed: %w", err)
	}

	counts, err := a.ledger.RecordCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit failed: %w", err)
	}

	report := &Report{Mismatches: mismatches}
	for _, c := range counts {
		if !day.IsZero() && !c.Date.Equal(day) {
			continue
		}
		if c.Seats != models.SeatCount || c.Sales != models.SeatCount {
			report.CountIssues = append(report.CountIssues, DayCountIssue{
				Date:  c.Date,
				Seats: c.Seats,
				Sales: c.Sales,
			})
		}
	}

	if report.OK() {
		slog.Info("Ledger audit passed", "date", day.String())
	} else {
		slog.Warn("Ledger audit found problems",
			"date", day.String(),
			"mismatches", len(report.Mismatches),
			"count_issues", len(report.CountIssues))
	}
	return report, nil
}
