package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	LogLevel  string
	LogFormat string

	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	OCR      OCRConfig
	Media    MediaConfig
	Invoice  InvoiceConfig
	Redis    RedisConfig
	Telegram TelegramConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // sqlite | postgres | memory
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	PublicBaseURL   string
	ShutdownTimeout time.Duration
	TurnTimeout     time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL         string
	Model           string
	TranscribeModel string
	APIKey          string
	Temperature     float32
	Timeout         time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Enabled       bool
	TesseractPath string
	Lang          string
	TessdataDir   string
}

// MediaConfig controls inbound media downloads.
type MediaConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	MaxMB            int
	Timeout          time.Duration
}

// InvoiceConfig controls where rendered invoices land.
type InvoiceConfig struct {
	OutputDir   string
	LedgerPath  string
	DefaultName string
}

// RedisConfig enables the cross-process identity lock when URL is set.
type RedisConfig struct {
	URL     string
	LockTTL time.Duration
}

// TelegramConfig enables the Telegram webhook when Token is set.
type TelegramConfig struct {
	Token       string
	WebhookPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:              getEnv("DB_URL", "file:billbot.db?_pragma=busy_timeout(5000)"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr:        getEnv("GRPC_ADDR", ""),
			PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			TurnTimeout:     getEnvAsDuration("TURN_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			TranscribeModel: getEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			Temperature:     getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:         getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		OCR: OCRConfig{
			Enabled:       getEnvAsBool("OCR_ENABLED", false),
			TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
			Lang:          getEnv("OCR_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		Media: MediaConfig{
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			MaxMB:            getEnvAsInt("MEDIA_MAX_MB", 16),
			Timeout:          getEnvAsDuration("MEDIA_TIMEOUT", 20*time.Second),
		},
		Invoice: InvoiceConfig{
			OutputDir:   getEnv("INVOICE_DIR", "./static"),
			LedgerPath:  getEnv("LEDGER_PATH", "./ledger.xlsx"),
			DefaultName: getEnv("DEFAULT_COMPANY_NAME", "BillBot Services"),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			LockTTL: getEnvAsDuration("REDIS_LOCK_TTL", 90*time.Second),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			WebhookPath: getEnv("TELEGRAM_WEBHOOK_PATH", "/webhooks/telegram"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("LOG_LEVEL", strings.ToLower(c.LogLevel), OneOf("debug", "info", "warn", "error")).
		Field("LOG_FORMAT", strings.ToLower(c.LogFormat), OneOf("text", "json")).
		Field("DB_DRIVER", c.Database.Driver, OneOf("sqlite", "postgres", "memory")).
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("PUBLIC_BASE_URL", c.Server.PublicBaseURL, AbsoluteURL).
		Field("OPENAI_API_KEY", c.LLM.APIKey, Required).
		Field("OPENAI_MODEL", c.LLM.Model, Required).
		Field("INVOICE_DIR", c.Invoice.OutputDir, Required).
		Field("MEDIA_MAX_MB", c.Media.MaxMB, Positive)
	if c.Database.Driver != "memory" {
		v.Field("DB_URL", c.Database.DSN, Required)
	}
	// A lock that expires mid-turn lets a second replica into the same conversation.
	if c.Redis.URL != "" {
		v.Field("REDIS_LOCK_TTL", c.Redis.LockTTL, LongerThan(c.Server.TurnTimeout, "TURN_TIMEOUT"))
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
