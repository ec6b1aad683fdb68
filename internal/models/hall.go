package models

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "boxoffice/internal/errors"
)

// Hall geometry. One screen, 10 rows of 10 seats.
const (
	Rows        = 10
	SeatsPerRow = 10
	SeatCount   = Rows * SeatsPerRow

	// DailyCapacity is the number of seat-showings that can be sold in one day.
	DailyCapacity = SeatCount * ShowingCount
)

// SeatCode encodes a seat as row*100+column.
type SeatCode int

// NewSeatCode validates row and column and returns the encoded seat.
func NewSeatCode(row, col int) (SeatCode, error) {
	if row < 1 || row > Rows || col < 1 || col > SeatsPerRow {
		return 0, fmt.Errorf("%w: row %d, seat %d", apperrors.ErrInvalidSeat, row, col)
	}
	return SeatCode(row*100 + col), nil
}

// ParseSeatCode accepts "305" or "3-5" / "3:5".
func ParseSeatCode(s string) (SeatCode, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "-:"); i > 0 {
		row, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidSeat, s)
		}
		col, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidSeat, s)
		}
		return NewSeatCode(row, col)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidSeat, s)
	}
	code := SeatCode(n)
	if !code.Valid() {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrInvalidSeat, n)
	}
	return code, nil
}

func (c SeatCode) Row() int { return int(c) / 100 }

func (c SeatCode) Col() int { return int(c) % 100 }

// Valid reports whether the code lies on the hall grid.
func (c SeatCode) Valid() bool {
	row, col := c.Row(), c.Col()
	return row >= 1 && row <= Rows && col >= 1 && col <= SeatsPerRow
}

func (c SeatCode) String() string {
	return strconv.Itoa(int(c))
}

// Grid returns every seat code of the hall in row-major order. It is the only
// source of codes used when a day is seeded.
func Grid() []SeatCode {
	codes := make([]SeatCode, 0, SeatCount)
	for row := 1; row <= Rows; row++ {
		for col := 1; col <= SeatsPerRow; col++ {
			codes = append(codes, SeatCode(row*100+col))
		}
	}
	return codes
}

// Showing is one of the four fixed daily time slots.
type Showing int

const (
	Session10 Showing = iota
	Session12
	Session14
	Session16
)

// ShowingCount is the number of daily showings.
const ShowingCount = 4

var showingData = [ShowingCount]struct {
	name   string
	column string
	hour   int
}{
	{"Session10", "session10", 10},
	{"Session12", "session12", 12},
	{"Session14", "session14", 14},
	{"Session16", "session16", 16},
}

// Showings lists the showings in chronological order.
func Showings() []Showing {
	return []Showing{Session10, Session12, Session14, Session16}
}

// ParseShowing accepts "Session14", "14" or "14:00".
func ParseShowing(s string) (Showing, error) {
	s = strings.TrimSpace(s)
	for i, d := range showingData {
		hour := strconv.Itoa(d.hour)
		if strings.EqualFold(s, d.name) || s == hour || s == hour+":00" {
			return Showing(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidShowing, s)
}

func (s Showing) Valid() bool {
	return s >= 0 && int(s) < ShowingCount
}

func (s Showing) String() string {
	if !s.Valid() {
		return "Showing(" + strconv.Itoa(int(s)) + ")"
	}
	return showingData[s].name
}

// Column is the storage column backing this showing in both tables.
// Only the four fixed names can ever be returned.
func (s Showing) Column() (string, error) {
	if !s.Valid() {
		return "", fmt.Errorf("%w: %d", apperrors.ErrInvalidShowing, int(s))
	}
	return showingData[s].column, nil
}

// StartHour is the hour of day the showing begins.
func (s Showing) StartHour() int {
	if !s.Valid() {
		return 0
	}
	return showingData[s].hour
}

// Label is the operator-facing time, e.g. "14:00".
func (s Showing) Label() string {
	return fmt.Sprintf("%02d:00", s.StartHour())
}
