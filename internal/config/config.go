package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	// Outbound mail (ZeptoMail HTTP API).
	ZeptoAPIURL   string
	ZeptoAPIKey   string
	EmailFrom     string
	EmailFromName string

	// Origin used in reminder email links.
	AppBaseURL string

	// Reminder dispatch tuning.
	ReminderCooldown  time.Duration
	ReminderSendDelay time.Duration

	LogLevel string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		JWTSecret: mustGetenv("JWT_SECRET"),

		ZeptoAPIURL:   getenv("ZEPTO_API_URL", ""),
		ZeptoAPIKey:   getenv("ZEPTO_API_KEY", ""),
		EmailFrom:     getenv("EMAIL_FROM", ""),
		EmailFromName: getenv("EMAIL_FROM_NAME", "CDS LedgerPro"),

		AppBaseURL: getenv("APP_BASE_URL", "http://localhost:3000"),

		ReminderCooldown:  time.Duration(intGetenv("REMINDER_COOLDOWN_DAYS", 2)) * 24 * time.Hour,
		ReminderSendDelay: time.Duration(intGetenv("REMINDER_SEND_DELAY_MS", 1000)) * time.Millisecond,

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intGetenv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
