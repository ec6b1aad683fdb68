package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/service"
	"boxoffice/internal/validation"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const menu = `
1) connect
2) seed today
3) report by occupancy
4) report by sales
5) dump all
6) randomize today
7) counters
s) sell ticket
r) return ticket
p) operator and ticket price
8) quit
> `

var errNotConnected = errors.New("not connected: choose 1 first")

type console struct {
	ctx context.Context
	cfg *config.Config
	in  *bufio.Scanner
	out io.Writer
	p   *message.Printer

	// now and rng are replaced in tests
	now func() time.Time
	rng *rand.Rand

	db       *database.DB
	metrics  *metrics.Ledger
	services *service.Services
}

func newConsole(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) *console {
	return &console{
		ctx:     ctx,
		cfg:     cfg,
		in:      bufio.NewScanner(in),
		out:     out,
		p:       message.NewPrinter(language.English),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		metrics: metrics.New(),
	}
}

func (c *console) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

func (c *console) run() error {
	for {
		fmt.Fprint(c.out, menu)
		if !c.in.Scan() {
			return c.in.Err()
		}

		choice := strings.TrimSpace(c.in.Text())
		var err error
		switch choice {
		case "1":
			err = c.connect()
		case "2":
			err = c.seedToday()
		case "3":
			err = c.occupancy()
		case "4":
			err = c.revenue()
		case "5":
			err = c.dumpAll()
		case "6":
			err = c.randomizeToday()
		case "7":
			err = c.counters()
		case "s":
			err = c.sell()
		case "r":
			err = c.returnTicket()
		case "p":
			err = c.settings()
		case "8", "q":
			return nil
		case "":
			continue
		default:
			fmt.Fprintf(c.out, "unknown choice %q\n", choice)
			continue
		}

		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				logger.WithContext(c.ctx).Error("Ledger store unavailable", "error", err)
			}
		}
		if c.ctx.Err() != nil {
			return nil
		}
	}
}

func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// readDay reads a date; blank is today.
func (c *console) readDay(label string) (models.Day, error) {
	s, _ := c.prompt(label + " [YYYY-MM-DD, blank = today]: ")
	if s == "" {
		return models.DayOf(c.now()), nil
	}
	return models.ParseDay(s)
}

func (c *console) connect() error {
	dbCfg := c.cfg.Database
	if dbCfg.Driver == database.DriverSQLite {
		if path, _ := c.prompt(fmt.Sprintf("ledger file [%s]: ", dbCfg.Path)); path != "" {
			dbCfg.Path = path
		}
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	c.close()
	c.db = db

	opts := service.Options{
		Price:                models.Amount(c.cfg.TicketPrice),
		EnforceShowingCutoff: c.cfg.EnforceShowingCutoff,
		Now:                  c.now,
	}
	c.services = service.NewServices(repository.NewRepositories(db), c.metrics, opts, c.rng)

	health := db.HealthCheck(c.ctx)
	fmt.Fprintf(c.out, "connected (%s): %s in %s\n",
		health.Driver, health.Status, health.ResponseTime.Round(time.Microsecond))
	if health.Status != "healthy" {
		return fmt.Errorf("%w: %s", apperrors.ErrStorageUnavailable, health.Error)
	}
	logger.WithContext(c.ctx).Info("Ledger connected",
		"driver", health.Driver, "open_conns", health.Stats.OpenConns, "max_open_conns", health.Stats.MaxOpenConns)
	return nil
}

func (c *console) seedToday() error {
	if c.services == nil {
		return errNotConnected
	}
	today := c.services.BoxOffice.Today()
	if err := c.services.BoxOffice.EnsureDay(c.ctx, today); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s ready\n", today)
	return nil
}

// readRange reads "from" and "to"; blank "to" means a single day.
func (c *console) readRange() (models.Day, models.Day, error) {
	from, err := c.readDay("from")
	if err != nil {
		return models.Day{}, models.Day{}, err
	}
	s, _ := c.prompt("to [YYYY-MM-DD, blank = same day]: ")
	if s == "" {
		return from, from, nil
	}
	to, err := models.ParseDay(s)
	return from, to, err
}

func (c *console) occupancy() error {
	if c.services == nil {
		return errNotConnected
	}
	from, to, err := c.readRange()
	if err != nil {
		return err
	}

	points, err := c.services.Reports.OccupancySeries(c.ctx, from, to)
	if err != nil {
		return err
	}
	printOccupancy(c.out, c.p, points)

	if len(points) > 1 {
		summary, err := c.services.Reports.Summarize(c.ctx, from, to)
		if err != nil {
			return err
		}
		c.p.Fprintf(c.out, "%d of %d days with data, %d seats sold, average %.2f%%\n",
			summary.Initialized, summary.Days, summary.SeatsSold, summary.AvgPercent*100)
	}
	return nil
}

func (c *console) revenue() error {
	if c.services == nil {
		return errNotConnected
	}
	from, to, err := c.readRange()
	if err != nil {
		return err
	}

	points, err := c.services.Reports.RevenueSeries(c.ctx, from, to)
	if err != nil {
		return err
	}
	printRevenue(c.out, c.p, points)
	return nil
}

func (c *console) dumpAll() error {
	if c.services == nil {
		return errNotConnected
	}
	seats, sales, err := c.services.BoxOffice.Dump(c.ctx)
	if err != nil {
		return err
	}
	printDump(c.out, seats, sales)
	return nil
}

func (c *console) randomizeToday() error {
	if c.services == nil {
		return errNotConnected
	}
	today := c.services.BoxOffice.Today()
	sold, err := c.services.Randomizer.Fill(c.ctx, today, c.services.BoxOffice.Price())
	if err != nil {
		return err
	}
	c.p.Fprintf(c.out, "%s: %d tickets sold\n", today, sold)
	return nil
}

func (c *console) counters() error {
	lines, err := c.metrics.Snapshot()
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
	return nil
}

func (c *console) readTicket() (models.SeatCode, models.Showing, models.Day, error) {
	day, err := c.readDay("date")
	if err != nil {
		return 0, 0, models.Day{}, err
	}
	s, _ := c.prompt("showing [10, 12, 14, 16]: ")
	showing, err := models.ParseShowing(s)
	if err != nil {
		return 0, 0, models.Day{}, err
	}
	s, _ = c.prompt("seat [row-col or code]: ")
	seat, err := models.ParseSeatCode(s)
	if err != nil {
		return 0, 0, models.Day{}, err
	}
	return seat, showing, day, nil
}

func (c *console) sell() error {
	if c.services == nil {
		return errNotConnected
	}
	seat, showing, day, err := c.readTicket()
	if err != nil {
		return err
	}

	vacant, err := c.services.BoxOffice.IsVacant(c.ctx, seat, showing, day)
	if err != nil {
		return err
	}
	if !vacant {
		return fmt.Errorf("seat %s is already sold for %s", seat, showing.Label())
	}

	if err := c.services.BoxOffice.Sell(c.ctx, seat, showing, day); err != nil {
		return err
	}
	c.p.Fprintf(c.out, "sold %s %s %s for %d\n", day, showing.Label(), seat, int64(c.services.BoxOffice.Price()))
	return nil
}

func (c *console) returnTicket() error {
	if c.services == nil {
		return errNotConnected
	}
	seat, showing, day, err := c.readTicket()
	if err != nil {
		return err
	}
	status, err := c.services.BoxOffice.Seat(c.ctx, seat, day)
	if err != nil {
		return err
	}
	if !status.Sold(showing) {
		return fmt.Errorf("seat %s is not sold for %s", seat, showing.Label())
	}

	if err := c.services.BoxOffice.Return(c.ctx, seat, showing, day); err != nil {
		return err
	}
	c.p.Fprintf(c.out, "returned %s %s %s, refund %d\n", day, showing.Label(), seat, int64(status.Amount(showing)))
	return nil
}

// settings updates the operator name and ticket price and persists both to
// the settings file.
func (c *console) settings() error {
	operator := c.cfg.OperatorName
	if s, _ := c.prompt(fmt.Sprintf("operator [%s]: ", operator)); s != "" {
		operator = s
	}

	price := c.cfg.TicketPrice
	if s, _ := c.prompt(fmt.Sprintf("ticket price [%d]: ", price)); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", apperrors.ErrInvalidPrice, s)
		}
		price = v
	}

	if err := config.SaveSettings(c.cfg.SettingsFile, operator, price); err != nil {
		return err
	}
	c.cfg.OperatorName = operator
	c.cfg.TicketPrice = price
	if c.services != nil {
		if err := c.services.BoxOffice.SetPrice(models.Amount(price)); err != nil {
			return err
		}
	}

	logger.WithContext(c.ctx).Info("Settings saved", "operator", operator, "price", price)
	fmt.Fprintf(c.out, "saved to %s\n", c.cfg.SettingsFile)
	return nil
}

func printAudit(w io.Writer, report *validation.Report) {
	for _, m := range report.Mismatches {
		if m.Reason == repository.ReasonSoldWithoutAmount || m.Reason == repository.ReasonAmountWithoutSale {
			fmt.Fprintf(w, "%s seat %s %s: %s (amount %d)\n",
				m.Date, m.SeatCode, m.Showing.Label(), m.Reason, int64(m.Amount))
			continue
		}
		fmt.Fprintf(w, "%s seat %s: %s\n", m.Date, m.SeatCode, m.Reason)
	}
	for _, issue := range report.CountIssues {
		fmt.Fprintf(w, "%s: %d seat records, %d sale records\n", issue.Date, issue.Seats, issue.Sales)
	}
	if report.OK() {
		fmt.Fprintln(w, "ledger consistent")
	}
}
