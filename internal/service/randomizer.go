package service

import (
	"context"
	"fmt"
	"math/rand"

	"boxoffice/internal/logger"
	"boxoffice/internal/models"
)

// Randomizer fills a day with random sales for testing reports.
type Randomizer struct {
	box *BoxOffice
	rng *rand.Rand
}

func NewRandomizer(box *BoxOffice, rng *rand.Rand) *Randomizer {
	return &Randomizer{box: box, rng: rng}
}

// Fill seeds day and sells each seat/showing on a coin flip at price,
// ignoring the showing cut-off. Returns the number of tickets sold.
func (r *Randomizer) Fill(ctx context.Context, day models.Day, price models.Amount) (int, error) {
	if err := r.box.EnsureDay(ctx, day); err != nil {
		return 0, err
	}

	sold := 0
	for _, seat := range models.Grid() {
		for _, showing := range models.Showings() {
			if r.rng.Intn(2) == 0 {
				continue
			}
			if err := r.box.sell(ctx, seat, showing, day, price); err != nil {
				return sold, fmt.Errorf("randomize %s: %w", day, err)
			}
			sold++
		}
	}

	logger.WithContext(ctx).Info("Day randomized", "date", day.String(), "sold", sold)
	return sold, nil
}
