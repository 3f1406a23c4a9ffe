package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/flagx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from a zero value so that a partial file only
// overrides what it names.
type JsonConfig struct {
	DatabaseDriver   *string         `json:"database_driver"`
	DatabaseDSN      *string         `json:"database_dsn"`
	MetricsAddr      *string         `json:"metrics_addr"`
	LogLevel         *string         `json:"log_level"`
	AdminIDs         []string        `json:"admin_ids"`
	CooldownWindow   *timex.Duration `json:"cooldown_window"`
	MaxAttempts      *int            `json:"max_attempts"`
	ContestDieSides  *int            `json:"contest_die_sides"`
	ContestAdvantage *int            `json:"contest_advantage"`
	CollectMin       *int64          `json:"collect_min"`
	CollectMax       *int64          `json:"collect_max"`
	RankLimit        *int            `json:"rank_limit"`
	PageSize         *int            `json:"page_size"`
	TxRetries        *int            `json:"tx_retries"`
}

// parseJSON loads the file named by -c/-config (or $EROS_CONFIG) into config.
// No file means nothing to do.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setIf(&config.DatabaseDriver, c.DatabaseDriver)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.MetricsAddr, c.MetricsAddr)
	setIf(&config.LogLevel, c.LogLevel)
	if c.AdminIDs != nil {
		config.AdminIDs = c.AdminIDs
	}
	if c.CooldownWindow != nil {
		config.CooldownWindow = c.CooldownWindow.Duration
	}
	setIf(&config.MaxAttempts, c.MaxAttempts)
	setIf(&config.ContestDieSides, c.ContestDieSides)
	setIf(&config.ContestAdvantage, c.ContestAdvantage)
	setIf(&config.CollectMin, c.CollectMin)
	setIf(&config.CollectMax, c.CollectMax)
	setIf(&config.RankLimit, c.RankLimit)
	setIf(&config.PageSize, c.PageSize)
	setIf(&config.TxRetries, c.TxRetries)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
