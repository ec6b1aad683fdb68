package service

import (
	"math/rand"

	"boxoffice/internal/metrics"
	"boxoffice/internal/repository"
)

type Services struct {
	BoxOffice  *BoxOffice
	Reports    *Reports
	Randomizer *Randomizer
}

func NewServices(repos *repository.Repositories, m *metrics.Ledger, opts Options, rng *rand.Rand) *Services {
	boxOffice := NewBoxOffice(repos.Ledger, m, opts)

	return &Services{
		BoxOffice:  boxOffice,
		Reports:    NewReports(repos.Ledger),
		Randomizer: NewRandomizer(boxOffice, rng),
	}
}
