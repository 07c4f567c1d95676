package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN,required"`
	PasswordHash  string `env:"PASSWORD_HASH,required"`
	Debug         bool   `env:"BOT_DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Workers       int    `env:"WORKERS" envDefault:"8"`
	ReportsDir    string `env:"REPORTS_DIR"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Schedule ScheduleConfig
}

type DatabaseConfig struct {
	Host            string        `env:"HOST,required"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,required"`
	Password        string        `env:"PASSWORD,required"`
	Name            string        `env:"NAME,required"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

// RedisConfig with an empty Addr keeps sessions in process memory.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"0"`
}

type ScheduleConfig struct {
	UTCOffsetHours   int `env:"TZ_OFFSET_HOURS" envDefault:"10"`
	AcceptCutoffHour int `env:"ACCEPT_CUTOFF_HOUR" envDefault:"9"`
	ChangeCutoffHour int `env:"CHANGE_CUTOFF_HOUR" envDefault:"15"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.Schedule.UTCOffsetHours < -12 || c.Schedule.UTCOffsetHours > 14 {
		return fmt.Errorf("TZ_OFFSET_HOURS out of range: %d", c.Schedule.UTCOffsetHours)
	}
	for name, h := range map[string]int{
		"ACCEPT_CUTOFF_HOUR": c.Schedule.AcceptCutoffHour,
		"CHANGE_CUTOFF_HOUR": c.Schedule.ChangeCutoffHour,
	} {
		if h < 0 || h > 24 {
			return fmt.Errorf("%s out of range: %d", name, h)
		}
	}
	return nil
}
