package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "APP_TIMEZONE", "MIDTRANS_IS_PRODUCTION", "EMAIL_FROM"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.AppTimezone != "Asia/Manila" {
		t.Errorf("AppTimezone = %q; want Asia/Manila", cfg.AppTimezone)
	}
	if cfg.MidtransIsProduction {
		t.Error("MidtransIsProduction = true; want false")
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for default ENV")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg := Load()
	if cfg.Port != "9000" || !cfg.IsProduction() || !cfg.MidtransIsProduction {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v; want UTC", cfg.Location())
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := Config{AppTimezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v; want UTC fallback", cfg.Location())
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"false", true, false},
		{"1", false, true},
		{"yes please", false, false},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)
		if got := getBool("TEST_BOOL", tt.fallback); got != tt.want {
			t.Errorf("getBool(%q, %v) = %v; want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}
