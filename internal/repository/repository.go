package repository

import (
	"boxoffice/internal/database"
)

type Repositories struct {
	Ledger *LedgerRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Ledger: NewLedgerRepository(db),
	}
}
