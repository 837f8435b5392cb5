package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	AppEnv      string
	LogLevel    string
	Timezone    string

	SessionTTL time.Duration

	RateLimitPerMinute       int
	RateLimitBurst           int
	TenantRateLimitPerMinute int
	TenantRateLimitBurst     int
	TrustProxyHeaders        bool

	EventSink     string
	WebhookURL    string
	WebhookToken  string
	RedisAddr     string
	RedisChannel  string
	KafkaBrokers  []string
	KafkaTopic    string
	RelayInterval time.Duration
	RelayBatch    int

	ReminderInterval time.Duration
	ReminderLead     time.Duration
	ReminderBatch    int
	ReminderLang     string

	OTLPEndpoint string
	OTLPInsecure bool
}

// Load reads the environment after merging a .env file when one exists.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        readString("PORT", "8080"),
		DatabaseURL: os.Getenv("DB_DSN"),
		AppEnv:      readString("APP_ENV", "production"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Timezone:    readString("TIMEZONE", "Europe/Istanbul"),

		SessionTTL: readDurationSeconds("SESSION_TTL_SECONDS", 8*60*60),

		RateLimitPerMinute:       readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:           readInt("RATE_LIMIT_BURST", 30),
		TenantRateLimitPerMinute: readInt("TENANT_RATE_LIMIT_PER_MIN", 600),
		TenantRateLimitBurst:     readInt("TENANT_RATE_LIMIT_BURST", 120),
		TrustProxyHeaders:        readBool("TRUST_PROXY_HEADERS", false),

		EventSink:     readString("EVENTS_SINK", "log"),
		WebhookURL:    os.Getenv("EVENTS_WEBHOOK_URL"),
		WebhookToken:  os.Getenv("EVENTS_WEBHOOK_TOKEN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisChannel:  os.Getenv("REDIS_CHANNEL"),
		KafkaBrokers:  readList("KAFKA_BROKERS"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		RelayInterval: readDurationSeconds("RELAY_INTERVAL_SECONDS", 5),
		RelayBatch:    readInt("RELAY_BATCH_SIZE", 100),

		ReminderInterval: readDurationSeconds("REMINDER_INTERVAL_SECONDS", 60),
		ReminderLead:     readDurationSeconds("REMINDER_LEAD_SECONDS", 2*60*60),
		ReminderBatch:    readInt("REMINDER_BATCH_SIZE", 50),
		ReminderLang:     readString("REMINDER_LANG", "tr"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: readBool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
}

// Location resolves Timezone, falling back to UTC when the zone is unknown.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

func readString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func readList(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
