// Package cli implements erosctl, the operator console of the engine. It
// runs one command from the command line or, without one, reads commands
// from standard input.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/admin"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/services"
)

type App struct {
	engine *services.Engine
	admin  *admin.Admin
	caller string
	format Format
	out    io.Writer
}

// NewApp builds the console. caller is the operator identity presented to
// the admin authorizer.
func NewApp(engine *services.Engine, adm *admin.Admin, caller string, format Format, out io.Writer) *App {
	return &App{engine: engine, admin: adm, caller: caller, format: format, out: out}
}

// Exec runs a single command.
func (a *App) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given, try 'help'")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("usage: %s %s", args[0], cmd.usage)
	}
	r, err := cmd.run(ctx, a, args[1:])
	if err != nil {
		return err
	}
	return a.print(r)
}

// Repl reads commands line by line until EOF or "exit".
func (a *App) Repl(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, "erosctl> ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			if err := a.Exec(ctx, parts); err != nil {
				fmt.Fprintln(a.out, "error:", err)
			}
		}
	}
}
