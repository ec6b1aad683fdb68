package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/validation"
)

func main() {
	var path string
	flag.StringVar(&path, "db", "boxoffice.db", "Ledger file to validate")
	flag.Parse()

	logger.Init("warn", "text")
	log.Printf("Starting ledger validation: %s", path)

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: path})
	if err != nil {
		log.Fatalf("❌ Не удалось открыть журнал: %v", err)
	}
	defer db.Close()

	auditor := validation.NewAuditor(repository.NewLedgerRepository(db))
	report, err := auditor.AuditAll(context.Background())
	if err != nil {
		log.Fatalf("❌ Валидация не выполнена: %v", err)
	}

	for _, m := range report.Mismatches {
		log.Println(mismatchLine(m))
	}
	for _, c := range report.CountIssues {
		log.Printf("%s: %d seat records, %d sale records", c.Date, c.Seats, c.Sales)
	}

	if !report.OK() {
		log.Printf("❌ Валидация не пройдена")
		db.Close()
		os.Exit(1)
	}

	log.Println("✅ Валидация успешно пройдена!")
}

// mismatchLine names the showing only for flag/amount disagreements: a missing
// record has no showing.
func mismatchLine(m models.Mismatch) string {
	switch m.Reason {
	case repository.ReasonSoldWithoutAmount, repository.ReasonAmountWithoutSale:
		return fmt.Sprintf("%s seat %s %s: %s (amount %d)", m.Date, m.SeatCode, m.Showing.Label(), m.Reason, int64(m.Amount))
	default:
		return fmt.Sprintf("%s seat %s: %s", m.Date, m.SeatCode, m.Reason)
	}
}
