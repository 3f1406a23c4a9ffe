package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/cli"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/admin"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/services"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "erosctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("erosctl", flag.ContinueOnError)
	caller := fs.String("u", "", "operator identity (defaults to the first configured admin)")
	output := fs.String("o", string(cli.FormatAuto), "output format: auto, table or json")
	// consumed by config.LoadConfig
	fs.String("c", "", "config file")
	fs.String("config", "", "config file")
	fs.String("k", "", "database driver")
	fs.String("d", "", "database DSN")
	fs.String("a", "", "metrics address (unused)")
	fs.String("l", "", "log level")
	fs.Int("w", 0, "cooldown window (in minutes)")
	fs.Int("x", 0, "contest attempts before lockout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(args[:len(args)-fs.NArg()])
	if err != nil {
		return err
	}
	if *caller == "" && len(cfg.AdminIDs) > 0 {
		*caller = cfg.AdminIDs[0]
	}
	format, err := cli.ResolveFormat(cli.Format(*output), os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	st, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	engine := services.NewEngine(st.DB, st.Manager, cfg, services.WithLogger(logger))
	adm := admin.New(engine, admin.NewStaticAuthorizer(cfg.AdminIDs), logger)
	app := cli.NewApp(engine, adm, *caller, format, os.Stdout)

	if fs.NArg() == 0 {
		app.Repl(ctx, os.Stdin)
		return nil
	}
	return app.Exec(ctx, fs.Args())
}
