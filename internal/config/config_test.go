package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("PASSWORD_HASH", "$2a$10$hash")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "ration")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "ration")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Database.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.TTL != 0 {
		t.Errorf("Redis = %+v, want empty addr and no ttl", cfg.Redis)
	}
	if got := cfg.Schedule; got.UTCOffsetHours != 10 || got.AcceptCutoffHour != 9 || got.ChangeCutoffHour != 15 {
		t.Errorf("Schedule = %+v, want {10 9 15}", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_TTL", "72h")
	t.Setenv("WORKERS", "2")
	t.Setenv("CHANGE_CUTOFF_HOUR", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.TTL != 72*time.Hour {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Schedule.ChangeCutoffHour != 14 {
		t.Errorf("ChangeCutoffHour = %d, want 14", cfg.Schedule.ChangeCutoffHour)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"no workers", "WORKERS", "0", "WORKERS"},
		{"offset", "TZ_OFFSET_HOURS", "15", "TZ_OFFSET_HOURS"},
		{"cutoff", "ACCEPT_CUTOFF_HOUR", "25", "ACCEPT_CUTOFF_HOUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() succeeded with %s=%s", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestLoadRequiresToken(t *testing.T) {
	setRequired(t)
	os.Unsetenv("TELEGRAM_TOKEN")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without TELEGRAM_TOKEN")
	}
}
