// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jason-s-yu/munchkin/internal/game"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port     int    `env:"MUNCHKIN_PORT" envDefault:"8080"`
	LogLevel string `env:"MUNCHKIN_LOG_LEVEL" envDefault:"info"`

	MinPlayers     int           `env:"MUNCHKIN_MIN_PLAYERS" envDefault:"2"`
	HandSize       int           `env:"MUNCHKIN_HAND_SIZE" envDefault:"4"`
	WinLevel       int           `env:"MUNCHKIN_WIN_LEVEL" envDefault:"10"`
	StallTimeout   time.Duration `env:"MUNCHKIN_STALL_TIMEOUT" envDefault:"30s"`
	AutoReadyIdle  bool          `env:"MUNCHKIN_AUTO_READY_IDLE" envDefault:"false"`
	IdleReadyDelay time.Duration `env:"MUNCHKIN_IDLE_READY_DELAY" envDefault:"1s"`

	// Resume tokens. Without key paths a fresh key pair is generated at start.
	TokenTTL       time.Duration `env:"TOKEN_EXPIRE_TIME" envDefault:"72h"`
	PrivateKeyPath string        `env:"TOKEN_PRIVATE_KEY_PATH"`
	PublicKeyPath  string        `env:"TOKEN_PUBLIC_KEY_PATH"`

	// Empty addresses disable the action queue and result storage.
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	QueueName   string `env:"HISTORIAN_QUEUE_NAME" envDefault:"munchkin_actions"`
	DatabaseURL string `env:"DATABASE_URL"`

	HistorianBatchSize  int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushDelay time.Duration `env:"HISTORIAN_FLUSH_DELAY" envDefault:"500ms"`
	InactivityTimeout   time.Duration `env:"SESSION_INACTIVITY_TIMEOUT" envDefault:"10m"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("MUNCHKIN_PORT out of range: %d", cfg.Port)
	}
	if cfg.MinPlayers < 1 {
		return Config{}, fmt.Errorf("MUNCHKIN_MIN_PLAYERS must be at least 1, got %d", cfg.MinPlayers)
	}
	if cfg.HistorianBatchSize < 1 {
		cfg.HistorianBatchSize = 1
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Level parses LogLevel, falling back to info.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Rules returns the session rules configured by the environment on top of the
// default catalog.
func (c Config) Rules() game.Rules {
	r := game.DefaultRules()
	r.MinPlayers = c.MinPlayers
	r.HandSize = c.HandSize
	r.WinLevel = c.WinLevel
	r.StallTimeout = c.StallTimeout
	r.AutoReadyIdle = c.AutoReadyIdle
	r.IdleReadyDelay = c.IdleReadyDelay
	return r
}
