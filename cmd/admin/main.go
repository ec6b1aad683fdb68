package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// отчеты идут в stdout, логи в stderr
	logger.InitWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := logger.NewSessionID()
	ctx = logger.ContextWithSession(ctx, sessionID, cfg.OperatorName)

	// Проверяем, нужно ли запустить аудит
	if len(os.Args) > 1 && os.Args[1] == "audit" {
		os.Exit(runAudit(ctx, cfg, os.Args[2:]))
	}

	logger.WithContext(ctx).Info("Admin session started", "settings", cfg.SettingsFile)

	c := newConsole(ctx, cfg, os.Stdin, os.Stdout)
	defer c.close()

	if err := c.run(); err != nil {
		logger.Fatal("Admin session failed", "error", err)
	}
}

// runAudit returns the process exit code: 0 clean, 1 problems found, 2 failure.
func runAudit(ctx context.Context, cfg *config.Config, args []string) int {
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to open ledger", "error", err)
		return 2
	}
	defer db.Close()

	auditor := validation.NewAuditor(repository.NewLedgerRepository(db))

	var report *validation.Report
	if len(args) > 0 {
		day, err := models.ParseDay(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		report, err = auditor.AuditDay(ctx, day)
		if err != nil {
			logger.WithContext(ctx).Error("Audit failed", "error", err)
			return 2
		}
	} else {
		report, err = auditor.AuditAll(ctx)
		if err != nil {
			logger.WithContext(ctx).Error("Audit failed", "error", err)
			return 2
		}
	}

	printAudit(os.Stdout, report)
	if !report.OK() {
		return 1
	}
	return 0
}
