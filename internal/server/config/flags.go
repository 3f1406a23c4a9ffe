package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-k string   database driver ("pgx" or "sqlite")
//	-d string   database DSN
//	-a string   metrics bind address (e.g. ":9090")
//	-l string   log level
//	-w int      cooldown window, minutes
//	-x int      contest attempts before lockout
//
// args is filtered with flagx.FilterArgs first so that flags owned by other
// components do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-k", "-d", "-a", "-l", "-w", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "k", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MetricsAddr, "a", config.MetricsAddr, "metrics address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	window := fs.Int("w", int(config.CooldownWindow.Minutes()), "cooldown window (in minutes)")
	fs.IntVar(&config.MaxAttempts, "x", config.MaxAttempts, "contest attempts before lockout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			config.CooldownWindow = time.Duration(*window) * time.Minute
		}
	})
	return nil
}
