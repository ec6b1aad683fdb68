package main

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/logger"
	"boxoffice/internal/validation"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		SettingsFile: config.DefaultSettingsFile,
		OperatorName: config.DefaultOperatorName,
		TicketPrice:  30,
		LogLevel:     "error",
		LogFormat:    "text",
		Database: database.Config{
			Driver: database.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "admin.db"),
		},
	}
}

func runConsole(t *testing.T, cfg *config.Config, input string) string {
	t.Helper()
	logger.InitWriter(io.Discard, "error", "text")

	var out bytes.Buffer
	c := newConsole(context.Background(), cfg, strings.NewReader(input), &out)
	c.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) }
	c.rng = rand.New(rand.NewSource(1))
	defer c.close()

	require.NoError(t, c.run())
	return out.String()
}

func TestConsoleRequiresConnection(t *testing.T) {
	out := runConsole(t, testConfig(t), "2\n8\n")
	assert.Contains(t, out, "not connected")
}

func TestConsoleSellAndReport(t *testing.T) {
	input := strings.Join([]string{
		"1", "",
		"2",
		"s", "", "10", "1-1",
		"s", "", "14", "305",
		"s", "", "14", "305",
		"3", "", "",
		"4", "", "",
		"7",
		"8",
	}, "\n") + "\n"

	out := runConsole(t, testConfig(t), input)

	assert.Contains(t, out, "connected (sqlite3): healthy")
	assert.Contains(t, out, "2024-01-01 ready")
	assert.Contains(t, out, "sold 2024-01-01 10:00 101 for 30")
	assert.Contains(t, out, "seat 305 is already sold for 14:00")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "60")
	assert.Contains(t, out, `boxoffice_tickets_sold_total{showing="Session14"} 1`)
}

func TestConsoleReturnAndDump(t *testing.T) {
	input := strings.Join([]string{
		"1", "",
		"s", "2024-01-02", "12", "1010",
		"r", "2024-01-02", "12", "1010",
		"r", "2024-01-02", "12", "1010",
		"5",
		"q",
	}, "\n") + "\n"

	out := runConsole(t, testConfig(t), input)

	assert.Contains(t, out, "returned 2024-01-02 12:00 1010, refund 30")
	assert.Contains(t, out, "seat 1010 is not sold for 12:00")
	assert.Contains(t, out, "seats")
	assert.Contains(t, out, "sales")
	assert.Contains(t, out, "2024-01-02")
}

func TestConsoleRandomizeAndAudit(t *testing.T) {
	cfg := testConfig(t)
	out := runConsole(t, cfg, "1\n\n6\n8\n")
	assert.Contains(t, out, "tickets sold")

	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	report := &validation.Report{}
	printAudit(&buf, report)
	assert.Contains(t, buf.String(), "ledger consistent")

	assert.Equal(t, 0, runAudit(context.Background(), cfg, nil))
	assert.Equal(t, 0, runAudit(context.Background(), cfg, []string{"2024-01-01"}))

	_, err = db.Exec(`UPDATE sales SET session10 = 99 WHERE seat_code = $1`, 101)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE seats SET session10 = 0 WHERE seat_code = $1`, 101)
	require.NoError(t, err)
	assert.Equal(t, 1, runAudit(context.Background(), cfg, nil))
	assert.Equal(t, 2, runAudit(context.Background(), cfg, []string{"not-a-date"}))
}

func TestConsoleSavesSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.SettingsFile = filepath.Join(t.TempDir(), "boxoffice.env")

	input := strings.Join([]string{
		"1", "",
		"p", "Arya Stark", "45",
		"s", "", "16", "505",
		"4", "", "",
		"8",
	}, "\n") + "\n"

	out := runConsole(t, cfg, input)
	assert.Contains(t, out, "saved to "+cfg.SettingsFile)
	assert.Contains(t, out, "sold 2024-01-01 16:00 505 for 45")

	settings, err := godotenv.Read(cfg.SettingsFile)
	require.NoError(t, err)
	assert.Equal(t, "Arya Stark", settings["OPERATOR_NAME"])
	assert.Equal(t, "45", settings["TICKET_PRICE"])
}

func TestConsoleRejectsBadRange(t *testing.T) {
	out := runConsole(t, testConfig(t), "1\n\n3\n2024-01-05\n2024-01-01\n8\n")
	assert.Contains(t, out, "invalid date range")
}
