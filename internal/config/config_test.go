package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SLOT_OPEN", "SLOT_CLOSE", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.OpenMinute != 9*60 || cfg.CloseMinute != 19*60 {
		t.Fatalf("working window = %d..%d", cfg.OpenMinute, cfg.CloseMinute)
	}
	if cfg.OTLPEndpoint != "" || cfg.OTLPInsecure {
		t.Fatalf("tracing should be off by default: %q %v", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SLOT_OPEN", "08:30")
	t.Setenv("SLOT_INTERVAL_MINUTES", "20")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg := Load()

	if cfg.OpenMinute != 8*60+30 {
		t.Fatalf("open minute = %d", cfg.OpenMinute)
	}
	if cfg.SlotInterval != 20*time.Minute {
		t.Fatalf("slot interval = %v", cfg.SlotInterval)
	}
	if cfg.OTLPEndpoint != "collector:4317" || !cfg.OTLPInsecure {
		t.Fatalf("tracing config = %q %v", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	}
}

func TestValidateRejectsBadCapacity(t *testing.T) {
	cfg := Load()
	cfg.ServiceBays = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for zero bays")
	}
}
