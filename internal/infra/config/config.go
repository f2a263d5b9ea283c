package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDrawsURL     = "https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json"
	DefaultFallbackFile = "data/ee_rounds_123_en.json"
	DefaultStateFile    = "last_sent.json"
	DefaultSQLitePath   = "data/notifier.db"
	DefaultStateKey     = "express_entry"
)

// State backends
const (
	StateBackendFile     = "file"
	StateBackendSQLite   = "sqlite"
	StateBackendPostgres = "postgres"
)

// Notification transports
const (
	TransportSMTP     = "smtp"
	TransportTelegram = "telegram"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string

	Source   SourceConfig
	State    StateConfig
	SMTP     SMTPConfig
	Telegram TelegramConfig

	Transport       string
	DispatchTimeout time.Duration
	ForceNotify     bool
	CronSpec        string
}

// SourceConfig describes where draw data is loaded from, primary first.
type SourceConfig struct {
	URL            string
	FallbackFile   string
	FallbackCSV    string // Optional, empty disables the CSV fallback
	MirrorFallback bool   // Refresh FallbackFile after a successful live fetch
	FetchTimeout   time.Duration
}

// StateConfig selects and configures the notification marker store.
type StateConfig struct {
	Backend     string
	File        string
	SQLitePath  string
	DatabaseURL string
	Key         string
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	To          string
	ImplicitTLS bool
}

// TelegramConfig holds Telegram transport settings.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Recipient returns the recipient string for the configured transport.
func (c *AppConfig) Recipient() string {
	if c.Transport == TransportTelegram {
		return strconv.FormatInt(c.Telegram.ChatID, 10)
	}
	return c.SMTP.To
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	// Draw sources
	cfg.Source.URL = getEnv("DRAWS_URL", DefaultDrawsURL)
	cfg.Source.FallbackFile = getEnv("DRAWS_FALLBACK_FILE", DefaultFallbackFile)
	cfg.Source.FallbackCSV = os.Getenv("DRAWS_FALLBACK_CSV")
	if cfg.Source.MirrorFallback, err = getEnvBool("DRAWS_MIRROR_FALLBACK", true); err != nil {
		return nil, err
	}
	if cfg.Source.FetchTimeout, err = getEnvDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Notification state
	cfg.State.Backend = strings.ToLower(getEnv("STATE_BACKEND", StateBackendFile))
	cfg.State.File = getEnv("STATE_FILE", DefaultStateFile)
	cfg.State.SQLitePath = getEnv("SQLITE_PATH", DefaultSQLitePath)
	cfg.State.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.State.Key = getEnv("STATE_KEY", DefaultStateKey)
	switch cfg.State.Backend {
	case StateBackendFile, StateBackendSQLite:
	case StateBackendPostgres:
		if cfg.State.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for STATE_BACKEND=postgres)")
		}
	default:
		return nil, fmt.Errorf("unsupported STATE_BACKEND %q", cfg.State.Backend)
	}

	// Transport
	cfg.Transport = strings.ToLower(getEnv("TRANSPORT", TransportSMTP))
	if cfg.DispatchTimeout, err = getEnvDuration("DISPATCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	switch cfg.Transport {
	case TransportSMTP:
		if err := loadSMTP(cfg); err != nil {
			return nil, err
		}
	case TransportTelegram:
		if err := loadTelegram(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported TRANSPORT %q", cfg.Transport)
	}

	// FORCE_NOTIFY wins over the older TEST_EMAIL toggle.
	if cfg.ForceNotify, err = getEnvBool("TEST_EMAIL", false); err != nil {
		return nil, err
	}
	if os.Getenv("FORCE_NOTIFY") != "" {
		if cfg.ForceNotify, err = getEnvBool("FORCE_NOTIFY", false); err != nil {
			return nil, err
		}
	}

	cfg.CronSpec = getEnv("CRON_SPEC", "*/30 * * * *") // Default: every 30 minutes

	return cfg, nil
}

// ValidateTransport checks the settings needed to actually send a notification.
// Commands that only read draw data skip it.
func (c *AppConfig) ValidateTransport() error {
	switch c.Transport {
	case TransportSMTP:
		if c.SMTP.From == "" {
			return fmt.Errorf("EMAIL_FROM or SMTP_USER must be set")
		}
		if c.SMTP.To == "" {
			return fmt.Errorf("EMAIL_TO is not set")
		}
	case TransportTelegram:
		if c.Telegram.Token == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("TELEGRAM_CHAT_ID is not set")
		}
	}
	return nil
}

func loadSMTP(cfg *AppConfig) error {
	var err error

	cfg.SMTP.Host = getEnv("SMTP_SERVER", "smtp.zoho.com")
	if cfg.SMTP.Port, err = getEnvInt("SMTP_PORT", 465); err != nil {
		return err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = getEnv("EMAIL_FROM", cfg.SMTP.Username)
	cfg.SMTP.To = os.Getenv("EMAIL_TO")
	// Port 465 is the implicit TLS (SMTPS) port; anything else defaults to STARTTLS.
	if cfg.SMTP.ImplicitTLS, err = getEnvBool("SMTP_IMPLICIT_TLS", cfg.SMTP.Port == 465); err != nil {
		return err
	}
	return nil
}

func loadTelegram(cfg *AppConfig) error {
	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		return nil
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}
	cfg.Telegram.ChatID = chatID
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
