package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// DatabaseURL is the only mandatory setting; the process refuses to
	// start without it.
	DatabaseURL string

	TelegramToken  string
	TelegramChatID int64
	WebhookSecret  string
	CronSecret     string

	RemindInterval time.Duration

	FrontendOrigin string
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:        getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:       firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    normalizeDatabaseURL(os.Getenv("DATABASE_URL")),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),
		WebhookSecret:  os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		CronSecret:     os.Getenv("CRON_SECRET"),
		RemindInterval: time.Duration(getEnvInt64("REMIND_INTERVAL_SECONDS", 14400)) * time.Second,
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "*"),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	return nil
}

// TelegramEnabled reports whether outbound notifications are configured at
// all. Token without chat id still allows webhook replies.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// normalizeDatabaseURL upgrades the postgresql:// scheme some platforms hand
// out to the postgres:// form both pgx and golang-migrate accept.
func normalizeDatabaseURL(u string) string {
	if strings.HasPrefix(u, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(u, "postgresql://")
	}
	return u
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
