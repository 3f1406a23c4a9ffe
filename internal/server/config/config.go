// Package config handles configuration for the engine process, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the Eros engine.
//
// Fields:
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite".
//   - DatabaseDSN: DSN handed to the driver (a file path for sqlite).
//   - MetricsAddr: bind address of the Prometheus /metrics endpoint; empty disables it.
//   - LogLevel: debug, info, warn or error.
//   - AdminIDs: user identities allowed to run administrative operations.
//   - CooldownWindow: length of the attempts lockout, marriage and collection gates.
//   - MaxAttempts: contest attempts allowed before the lockout starts.
//   - ContestDieSides / ContestAdvantage: the contest roll is dN against dN+advantage.
//   - CollectMin / CollectMax: inclusive range of a currency collection.
//   - RankLimit / PageSize: sizes of the ranking and of an owned-list page.
//   - TxRetries: how many times a transaction is re-run after a serialization conflict.
type Config struct {
	DatabaseDriver   string        `env:"EROS_DATABASE_DRIVER"`
	DatabaseDSN      string        `env:"EROS_DATABASE_DSN"`
	MetricsAddr      string        `env:"EROS_METRICS_ADDR"`
	LogLevel         string        `env:"EROS_LOG_LEVEL"`
	AdminIDs         []string      `env:"EROS_ADMIN_IDS" envSeparator:","`
	CooldownWindow   time.Duration `env:"EROS_COOLDOWN_WINDOW"`
	MaxAttempts      int           `env:"EROS_MAX_ATTEMPTS"`
	ContestDieSides  int           `env:"EROS_CONTEST_DIE_SIDES"`
	ContestAdvantage int           `env:"EROS_CONTEST_ADVANTAGE"`
	CollectMin       int64         `env:"EROS_COLLECT_MIN"`
	CollectMax       int64         `env:"EROS_COLLECT_MAX"`
	RankLimit        int           `env:"EROS_RANK_LIMIT"`
	PageSize         int           `env:"EROS_PAGE_SIZE"`
	TxRetries        int           `env:"EROS_TX_RETRIES"`
}

// LoadDefaults populates Config with the values the original game shipped with.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "eros.db"
	c.MetricsAddr = ":9090"
	c.LogLevel = "info"
	c.AdminIDs = nil
	c.CooldownWindow = 18 * time.Hour
	c.MaxAttempts = 5
	c.ContestDieSides = 20
	c.ContestAdvantage = 3
	c.CollectMin = 0
	c.CollectMax = 100
	c.RankLimit = 10
	c.PageSize = 15
	c.TxRetries = 5
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseDSN == "":
		return fmt.Errorf("database dsn is empty")
	case c.CooldownWindow <= 0:
		return fmt.Errorf("cooldown window must be positive, got %s", c.CooldownWindow)
	case c.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	case c.ContestDieSides < 1:
		return fmt.Errorf("contest die sides must be at least 1, got %d", c.ContestDieSides)
	case c.CollectMin < 0 || c.CollectMax < c.CollectMin:
		return fmt.Errorf("invalid collect range [%d, %d]", c.CollectMin, c.CollectMax)
	case c.RankLimit < 1 || c.PageSize < 1:
		return fmt.Errorf("rank limit and page size must be positive")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
