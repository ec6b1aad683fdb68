package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"boxoffice/internal/database"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultSettingsFile = "boxoffice.env"
	DefaultOperatorName = "John Snow"
	DefaultTicketPrice  = 30
)

// Config содержит конфигурацию приложения
type Config struct {
	SettingsFile string `validate:"required"`

	OperatorName string `validate:"required,max=100"`
	TicketPrice  int64  `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat string `validate:"oneof=json text"`

	// EnforceShowingCutoff refuses sells and returns for showings that are over.
	// On unless ENFORCE_SHOWING_CUTOFF=false.
	EnforceShowingCutoff bool

	Database database.Config
}

var validate = validator.New()

// Load загружает конфигурацию из файла настроек и переменных окружения.
// Переменные окружения имеют приоритет над файлом.
func Load() (*Config, error) {
	settings := getEnv("BOXOFFICE_SETTINGS", DefaultSettingsFile)
	if err := godotenv.Load(settings); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read settings file %s: %w", settings, err)
	}

	cfg := &Config{
		SettingsFile: settings,
		OperatorName: getEnv("OPERATOR_NAME", DefaultOperatorName),
		TicketPrice:  int64(getEnvInt("TICKET_PRICE", DefaultTicketPrice)),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),

		EnforceShowingCutoff: getEnv("ENFORCE_SHOWING_CUTOFF", "true") != "false",

		Database: database.Config{
			Driver:             getEnv("DB_DRIVER", database.DriverSQLite),
			Path:               getEnv("DB_PATH", "boxoffice.db"),
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "boxoffice"),
			Password:           getEnv("DB_PASSWORD", ""),
			DBName:             getEnv("DB_NAME", "boxoffice"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SaveSettings записывает имя оператора и цену билета в файл настроек.
// Остальные ключи файла сохраняются.
func SaveSettings(path, operator string, price int64) error {
	if err := validate.Var(operator, "required,max=100"); err != nil {
		return fmt.Errorf("invalid operator name: %w", err)
	}
	if price <= 0 {
		return fmt.Errorf("invalid ticket price %d", price)
	}

	settings, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		settings = map[string]string{}
	}

	settings["OPERATOR_NAME"] = operator
	settings["TICKET_PRICE"] = strconv.FormatInt(price, 10)

	if err := godotenv.Write(settings, path); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
