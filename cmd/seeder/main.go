package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/service"
)

var (
	fromDate  = flag.String("from", "", "First day to seed, YYYY-MM-DD (default today)")
	toDate    = flag.String("to", "", "Last day to seed, YYYY-MM-DD (default -from)")
	randomize = flag.Bool("randomize", false, "Sell random seats on every seeded day")
	price     = flag.Int64("price", 0, "Ticket price for randomized sales (default TICKET_PRICE)")
	seed      = flag.Int64("seed", 0, "Random seed (0 = current time)")
	dryRun    = flag.Bool("dry-run", false, "Show what would be seeded without making changes")
)

type DaySeeder struct {
	ledger   *repository.LedgerRepository
	services *service.Services
	log      *slog.Logger
	dryRun   bool
	random   bool
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	sessionID := logger.NewSessionID()
	log := logger.WithSessionID(sessionID)

	from, to, err := parseRange(*fromDate, *toDate, time.Now())
	if err != nil {
		log.Error("Invalid date range", "error", err)
		os.Exit(2)
	}

	ticketPrice := models.Amount(cfg.TicketPrice)
	if *price != 0 {
		ticketPrice = models.Amount(*price)
	}

	log.Info("Starting day seeder...", "from", from.String(), "to", to.String(), "randomize", *randomize)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	repos := repository.NewRepositories(db)
	opts := service.Options{Price: ticketPrice}
	seeder := &DaySeeder{
		ledger:   repos.Ledger,
		services: service.NewServices(repos, metrics.New(), opts, rand.New(rand.NewSource(rngSeed))),
		log:      log,
		dryRun:   *dryRun,
		random:   *randomize,
	}

	ctx := logger.ContextWithSession(context.Background(), sessionID, cfg.OperatorName)
	if err := seeder.SeedRange(ctx, from, to, ticketPrice); err != nil {
		log.Error("Failed to seed days", "error", err)
		db.Close()
		os.Exit(1)
	}

	log.Info("Day seeding completed successfully!")
}

// parseRange applies the flag defaults and bounds the range like a report series.
func parseRange(fromStr, toStr string, now time.Time) (models.Day, models.Day, error) {
	from := models.DayOf(now)
	if fromStr != "" {
		d, err := models.ParseDay(fromStr)
		if err != nil {
			return models.Day{}, models.Day{}, err
		}
		from = d
	}

	to := from
	if toStr != "" {
		d, err := models.ParseDay(toStr)
		if err != nil {
			return models.Day{}, models.Day{}, err
		}
		to = d
	}

	if from.After(to) {
		return models.Day{}, models.Day{}, fmt.Errorf("-from %s is after -to %s", from, to)
	}
	if n := models.DaysBetween(from, to); n > service.MaxSeriesDays {
		return models.Day{}, models.Day{}, fmt.Errorf("range of %d days exceeds %d", n, service.MaxSeriesDays)
	}
	return from, to, nil
}

func (s *DaySeeder) SeedRange(ctx context.Context, from, to models.Day, price models.Amount) error {
	if s.dryRun {
		_, err := s.plan(ctx, from, to)
		return err
	}

	for d := from; !d.After(to); d = d.Next() {
		if err := s.seedDay(ctx, d, price); err != nil {
			return fmt.Errorf("failed to seed %s: %w", d, err)
		}
	}
	return nil
}

// plan logs what SeedRange would do and returns the days it would seed.
func (s *DaySeeder) plan(ctx context.Context, from, to models.Day) ([]models.Day, error) {
	existing, err := s.ledger.ListDays(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeded days: %w", err)
	}
	seeded := make(map[string]bool, len(existing))
	for _, d := range existing {
		seeded[d.String()] = true
	}

	var pending []models.Day
	for d := from; !d.After(to); d = d.Next() {
		if seeded[d.String()] {
			s.log.Info("[DRY RUN] Day already has records, would skip", "date", d.String())
			continue
		}
		s.log.Info("[DRY RUN] Would seed day", "date", d.String(), "seats", models.SeatCount)
		pending = append(pending, d)
	}
	return pending, nil
}

func (s *DaySeeder) seedDay(ctx context.Context, day models.Day, price models.Amount) error {
	if s.random {
		sold, err := s.services.Randomizer.Fill(ctx, day, price)
		if err != nil {
			return err
		}
		s.log.Info("Seeded day with random sales", "date", day.String(), "sold", sold)
		return nil
	}

	return s.services.BoxOffice.EnsureDay(ctx, day)
}
