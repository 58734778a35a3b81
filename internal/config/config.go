package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	OpenMinute       int
	CloseMinute      int
	SlotInterval     time.Duration
	MinLeadBuffer    time.Duration
	ServiceBays      int
	AvgServiceMinute int

	RateLimitPerMinute int
	RateLimitBurst     int

	KafkaBrokers []string
	KafkaTopic   string

	OTLPEndpoint string
	OTLPInsecure bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:        port,
		DatabaseURL: os.Getenv("DB_DSN"),

		OpenMinute:       readMinuteOfDay("SLOT_OPEN", 9*60),
		CloseMinute:      readMinuteOfDay("SLOT_CLOSE", 19*60),
		SlotInterval:     readDurationMinutes("SLOT_INTERVAL_MINUTES", 30),
		MinLeadBuffer:    readDurationMinutes("MIN_BUFFER_MINUTES", 30),
		ServiceBays:      readInt("SERVICE_BAYS", 2),
		AvgServiceMinute: readInt("AVG_SERVICE_MINUTES", 40),

		RateLimitPerMinute: readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("RATE_LIMIT_BURST", 30),

		KafkaBrokers: readList("KAFKA_BROKERS"),
		KafkaTopic:   readString("KAFKA_TOPIC", "queue-record-events"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: readBool("OTEL_EXPORTER_OTLP_INSECURE"),
	}
}

// Validate fails fast on capacity misconfiguration instead of letting the
// slot calculator divide by zero at request time.
func (c Config) Validate() error {
	if c.ServiceBays <= 0 {
		return fmt.Errorf("SERVICE_BAYS must be positive, got %d", c.ServiceBays)
	}
	if c.AvgServiceMinute <= 0 {
		return fmt.Errorf("AVG_SERVICE_MINUTES must be positive, got %d", c.AvgServiceMinute)
	}
	if c.OpenMinute >= c.CloseMinute {
		return fmt.Errorf("SLOT_OPEN must be before SLOT_CLOSE")
	}
	if c.SlotInterval <= 0 {
		return fmt.Errorf("SLOT_INTERVAL_MINUTES must be positive")
	}
	return nil
}

func readString(key, fallback string) string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return raw
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

func readBool(key string) bool {
	return os.Getenv(key) == "true"
}

func readDurationMinutes(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Minute
}

// readMinuteOfDay parses an HH:MM value into minutes after midnight.
func readMinuteOfDay(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return fallback
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func readList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
