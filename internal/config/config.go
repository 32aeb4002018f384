package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Env      string
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Engine   EngineConfig
	Digest   DigestConfig
	Sheets   SheetsConfig
	Notifier NotifierConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// EngineConfig tunes the availability engine.
type EngineConfig struct {
	// BatchConcurrency bounds parallel pledge lookups in batch queries.
	BatchConcurrency int
}

// DigestConfig holds scheduler-related settings for the shortfall digest.
type DigestConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration required to export to Google Sheets.
// Export is disabled when both fields are empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// NotifierConfig points at the webhook receiving digest summaries.
type NotifierConfig struct {
	WebhookURL string
	Token      string
	Timeout    time.Duration
}

// Enabled reports whether digest delivery is configured.
func (c NotifierConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	mongoTimeout, err := getenvDuration("MONGODB_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	notifierTimeout, err := getenvDuration("DIGEST_WEBHOOK_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	concurrency, err := getenvInt("BATCH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: getenvWithDefault("APP_ENV", "development"),
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:     getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName:  getenvWithDefault("MONGODB_DB_NAME", "relief"),
			Timeout: mongoTimeout,
		},
		Engine: EngineConfig{
			BatchConcurrency: concurrency,
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Notifier: NotifierConfig{
			WebhookURL: os.Getenv("DIGEST_WEBHOOK_URL"),
			Token:      os.Getenv("DIGEST_WEBHOOK_TOKEN"),
			Timeout:    notifierTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	case c.MongoDB.Timeout <= 0:
		return errors.New("MONGODB_TIMEOUT must be positive")
	}

	if c.Engine.BatchConcurrency <= 0 {
		return errors.New("BATCH_CONCURRENCY must be positive")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Digest.Timezone, err)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
