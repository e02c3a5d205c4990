package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	CanvasAPIURL   string
	CanvasAPIToken string

	TelegramToken  string
	TelegramChatID int64 // destination for scheduled digests; 0 disables them

	SMTPServer    string
	SMTPPort      int
	EmailSender   string
	EmailPassword string
	SMSEmail      string // <number>@<carrier-gateway-domain>

	OllamaHost  string
	OllamaModel string

	DaysAhead   int
	CheckHour   int
	CheckMinute int
	Timezone    *time.Location

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.CanvasAPIURL = strings.TrimRight(os.Getenv("CANVAS_API_URL"), "/")
	if cfg.CanvasAPIURL == "" {
		return nil, fmt.Errorf("CANVAS_API_URL is not set")
	}

	cfg.CanvasAPIToken = os.Getenv("CANVAS_API_TOKEN")
	if cfg.CanvasAPIToken == "" {
		return nil, fmt.Errorf("CANVAS_API_TOKEN is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.SMTPServer = os.Getenv("SMTP_SERVER")
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		cfg.SMTPPort, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	} else {
		cfg.SMTPPort = 587
	}
	cfg.EmailSender = os.Getenv("EMAIL_SENDER")
	cfg.EmailPassword = os.Getenv("EMAIL_PASSWORD")
	cfg.SMSEmail = os.Getenv("SMS_EMAIL")

	cfg.OllamaHost = strings.TrimRight(os.Getenv("OLLAMA_HOST"), "/")
	if cfg.OllamaHost == "" {
		cfg.OllamaHost = "http://localhost:11434"
	}
	cfg.OllamaModel = os.Getenv("OLLAMA_MODEL")
	if cfg.OllamaModel == "" {
		cfg.OllamaModel = "mistral"
	}

	cfg.DaysAhead, err = intEnv("DAYS_AHEAD", 7)
	if err != nil {
		return nil, err
	}
	if cfg.DaysAhead < 1 {
		return nil, fmt.Errorf("DAYS_AHEAD must be at least 1, got %d", cfg.DaysAhead)
	}

	cfg.CheckHour, err = intEnv("CHECK_HOUR", 8)
	if err != nil {
		return nil, err
	}
	cfg.CheckMinute, err = intEnv("CHECK_MINUTE", 0)
	if err != nil {
		return nil, err
	}
	if cfg.CheckHour < 0 || cfg.CheckHour > 23 || cfg.CheckMinute < 0 || cfg.CheckMinute > 59 {
		return nil, fmt.Errorf("invalid CHECK_HOUR/CHECK_MINUTE: %02d:%02d", cfg.CheckHour, cfg.CheckMinute)
	}

	tzName := os.Getenv("APP_TIMEZONE")
	if tzName == "" {
		tzName = "America/New_York"
	}
	cfg.Timezone, err = time.LoadLocation(tzName)
	if err != nil {
		// Fall back to UTC rather than refusing to start; main logs a warning.
		cfg.Timezone = time.UTC
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
