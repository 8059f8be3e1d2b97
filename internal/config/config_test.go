package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("WALLET_REFRESH_DELAY", "250ms")
	t.Setenv("CLICKHOUSE_ENABLED", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}
	if cfg.Store.Backend != BackendRedis {
		t.Errorf("Store.Backend = %v, want %v", cfg.Store.Backend, BackendRedis)
	}
	if cfg.Database.Redis.Host != "cache.internal" {
		t.Errorf("Database.Redis.Host = %v, want %v", cfg.Database.Redis.Host, "cache.internal")
	}
	if cfg.Wallet.RefreshDelay != 250*time.Millisecond {
		t.Errorf("Wallet.RefreshDelay = %v, want %v", cfg.Wallet.RefreshDelay, 250*time.Millisecond)
	}
	if !cfg.Database.ClickHouse.Enabled {
		t.Error("Database.ClickHouse.Enabled = false, want true")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %v, want %v", cfg.Store.Backend, BackendSQLite)
	}
	if cfg.Market.URL != DefaultMarketURL {
		t.Errorf("Market.URL = %v, want %v", cfg.Market.URL, DefaultMarketURL)
	}
	if cfg.Market.RefreshSchedule != "@every 5m" {
		t.Errorf("Market.RefreshSchedule = %v, want @every 5m", cfg.Market.RefreshSchedule)
	}
	if cfg.Wallet.RefreshDelay != time.Second {
		t.Errorf("Wallet.RefreshDelay = %v, want 1s", cfg.Wallet.RefreshDelay)
	}
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "etcd")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() expected error for unknown backend")
	}
}

func TestPostgresConfig_URL(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", Database: "hub", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/hub?sslmode=disable"
	if got := cfg.URL(); got != want {
		t.Errorf("URL() = %v, want %v", got, want)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "NONEXISTENT_KEY",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				if err := os.Setenv(tt.key, tt.envValue); err != nil {
					t.Fatalf("Failed to set env var: %v", err)
				}
				defer func() {
					_ = os.Unsetenv(tt.key)
				}()
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"parses true", "true", false, true},
		{"parses 0", "0", true, false},
		{"invalid falls back", "maybe", true, true},
		{"unset falls back", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			if got := getEnvAsBool("TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvAsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "2.5")
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("getEnvAsFloat() = %v, want 2.5", got)
	}

	t.Setenv("TEST_FLOAT", "abc")
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 1 {
		t.Errorf("getEnvAsFloat() = %v, want 1", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{
			name:         "returns integer when valid",
			key:          "TEST_INT",
			defaultValue: 100,
			envValue:     "200",
			want:         200,
		},
		{
			name:         "returns default when invalid",
			key:          "TEST_INT_INVALID",
			defaultValue: 100,
			envValue:     "invalid",
			want:         100,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_INT_NOTSET",
			defaultValue: 100,
			envValue:     "",
			want:         100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{"returns duration when valid", 10 * time.Second, "30s", 30 * time.Second},
		{"returns default when invalid", 10 * time.Second, "invalid", 10 * time.Second},
		{"returns default when not set", 10 * time.Second, "", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)

			got := getEnvAsDuration("TEST_DURATION", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
