package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
)

// ShowingLength is how long a showing stays open for sales and returns after
// its start hour.
const ShowingLength = time.Hour + 50*time.Minute

type Options struct {
	Price                models.Amount
	EnforceShowingCutoff bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// BoxOffice is the operator-facing ledger: it seeds a date the first time it
// is touched, charges the configured ticket price and records metrics.
type BoxOffice struct {
	ledger  *repository.LedgerRepository
	metrics *metrics.Ledger

	enforceCutoff bool
	now           func() time.Time

	mu     sync.Mutex
	price  models.Amount
	seeded map[string]struct{}
}

func NewBoxOffice(ledger *repository.LedgerRepository, m *metrics.Ledger, opts Options) *BoxOffice {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &BoxOffice{
		ledger:        ledger,
		metrics:       m,
		enforceCutoff: opts.EnforceShowingCutoff,
		now:           now,
		price:         opts.Price,
		seeded:        make(map[string]struct{}),
	}
}

func (b *BoxOffice) Price() models.Amount {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.price
}

// SetPrice changes the price charged by later sales. Sold amounts keep the
// price of their sale.
func (b *BoxOffice) SetPrice(price models.Amount) error {
	if price <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidPrice, price)
	}
	b.mu.Lock()
	b.price = price
	b.mu.Unlock()
	return nil
}

func (b *BoxOffice) Today() models.Day {
	return models.DayOf(b.now())
}

// EnsureDay seeds day unless this box office already did so.
func (b *BoxOffice) EnsureDay(ctx context.Context, day models.Day) error {
	key := day.String()

	b.mu.Lock()
	_, done := b.seeded[key]
	b.mu.Unlock()
	if done {
		return nil
	}

	start := time.Now()
	created, err := b.ledger.EnsureDay(ctx, day, b.Price())
	b.metrics.ObserveSince("ensure_day", start)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to initialize day", "date", day.String(), "error", err)
		return err
	}

	if created {
		b.metrics.DaysSeeded.Inc()
		logger.WithContext(ctx).Info("Day initialized", "date", day.String(), "seats", models.SeatCount)
	}

	b.mu.Lock()
	b.seeded[key] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (b *BoxOffice) IsVacant(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day) (bool, error) {
	if err := b.EnsureDay(ctx, day); err != nil {
		return false, err
	}

	start := time.Now()
	vacant, err := b.ledger.IsVacant(ctx, seat, showing, day)
	b.metrics.ObserveSince("is_vacant", start)
	return vacant, err
}

// Sell sells the seat for the showing at the current ticket price.
func (b *BoxOffice) Sell(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day) error {
	if err := b.checkOpen(showing, day); err != nil {
		return err
	}
	return b.sell(ctx, seat, showing, day, b.Price())
}

func (b *BoxOffice) sell(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day, price models.Amount) error {
	log := logger.WithContext(ctx).With(
		"seat", seat.String(), "showing", showing.String(), "date", day.String())

	if err := b.EnsureDay(ctx, day); err != nil {
		return err
	}

	start := time.Now()
	err := b.ledger.Sell(ctx, seat, showing, day, price)
	b.metrics.ObserveSince("sell", start)
	if err != nil {
		log.Error("Failed to sell ticket", "error", err)
		return fmt.Errorf("failed to sell seat %s: %w", seat, err)
	}

	b.metrics.TicketsSold.WithLabelValues(showing.String()).Inc()
	b.metrics.Revenue.Add(float64(price))
	log.Info("Ticket sold", "price", int64(price))
	return nil
}

// Return takes the seat back for the showing.
func (b *BoxOffice) Return(ctx context.Context, seat models.SeatCode, showing models.Showing, day models.Day) error {
	log := logger.WithContext(ctx).With(
		"seat", seat.String(), "showing", showing.String(), "date", day.String())

	if err := b.checkOpen(showing, day); err != nil {
		return err
	}
	if err := b.EnsureDay(ctx, day); err != nil {
		return err
	}

	start := time.Now()
	err := b.ledger.Return(ctx, seat, showing, day)
	b.metrics.ObserveSince("return", start)
	if err != nil {
		log.Error("Failed to return ticket", "error", err)
		return fmt.Errorf("failed to return seat %s: %w", seat, err)
	}

	b.metrics.TicketsReturned.WithLabelValues(showing.String()).Inc()
	log.Info("Ticket returned")
	return nil
}

// ShowingOpen reports whether sales and returns are still accepted for the
// showing on day. Always true when the cut-off is not enforced.
func (b *BoxOffice) ShowingOpen(showing models.Showing, day models.Day) bool {
	return b.checkOpen(showing, day) == nil
}

func (b *BoxOffice) checkOpen(showing models.Showing, day models.Day) error {
	if !showing.Valid() {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidShowing, showing)
	}
	if !b.enforceCutoff {
		return nil
	}

	now := b.now()
	today := models.DayOf(now)
	if day.Before(today) {
		return fmt.Errorf("%w: %s %s", apperrors.ErrShowingClosed, day, showing.Label())
	}
	if day.Equal(today) {
		closes := day.At(showing.StartHour(), 0, now.Location()).Add(ShowingLength)
		if !now.Before(closes) {
			return fmt.Errorf("%w: %s %s", apperrors.ErrShowingClosed, day, showing.Label())
		}
	}
	return nil
}

// ReportByOccupancy does not seed the day: nil means no data for the date.
func (b *BoxOffice) ReportByOccupancy(ctx context.Context, day models.Day) (*models.OccupancyReport, error) {
	start := time.Now()
	defer b.metrics.ObserveSince("report_occupancy", start)
	return b.ledger.ReportByOccupancy(ctx, day)
}

// ReportByRevenue does not seed the day: nil means no data for the date.
func (b *BoxOffice) ReportByRevenue(ctx context.Context, day models.Day) (*models.RevenueReport, error) {
	start := time.Now()
	defer b.metrics.ObserveSince("report_revenue", start)
	return b.ledger.ReportByRevenue(ctx, day)
}

// SeatStatus is the pair of records held for one seat on one date.
type SeatStatus struct {
	Seat *models.SeatDay
	Sale *models.Sale
}

func (s *SeatStatus) Sold(showing models.Showing) bool {
	return s.Seat != nil && s.Seat.IsSold(showing)
}

func (s *SeatStatus) Amount(showing models.Showing) models.Amount {
	if s.Sale == nil {
		return 0
	}
	return s.Sale.AmountFor(showing)
}

// Seat returns the seat and sale records for seat on day, seeding the day
// first.
func (b *BoxOffice) Seat(ctx context.Context, seat models.SeatCode, day models.Day) (*SeatStatus, error) {
	if !seat.Valid() {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidSeat, seat)
	}
	if err := b.EnsureDay(ctx, day); err != nil {
		return nil, err
	}

	seatDay, err := b.ledger.GetSeatDay(ctx, seat, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat %s: %w", seat, err)
	}
	sale, err := b.ledger.GetSale(ctx, seat, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale %s: %w", seat, err)
	}
	return &SeatStatus{Seat: seatDay, Sale: sale}, nil
}

// Dump returns every stored seat and sale record.
func (b *BoxOffice) Dump(ctx context.Context) ([]models.SeatDay, []models.Sale, error) {
	seats, err := b.ledger.ListSeatDays(ctx, models.Day{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dump seats: %w", err)
	}
	sales, err := b.ledger.ListSales(ctx, models.Day{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dump sales: %w", err)
	}
	return seats, sales, nil
}
