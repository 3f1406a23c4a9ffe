package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
)

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, a *App, args []string) (result, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":           {"", 0, help},
		"add":            {"<name> [image]", 1, add},
		"remove":         {"<name>", 1, remove},
		"lookup":         {"<name>", 1, lookup},
		"list":           {"", 0, list},
		"owned":          {"<user> [page]", 1, owned},
		"balance":        {"<user>", 1, balance},
		"rank":           {"[limit]", 0, rank},
		"adjust":         {"<user> <delta>", 2, adjust},
		"cooldowns":      {"<user>", 1, cooldowns},
		"reset-attempts": {"", 0, resetAttempts},
		"reset-marriage": {"", 0, resetMarriage},
		"reset-balances": {"", 0, resetBalances},
		"release-all":    {"", 0, releaseAll},
		"audit":          {"", 0, audit},
	}
}

func help(_ context.Context, _ *App, _ []string) (result, error) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	r := result{header: []string{"COMMAND", "ARGS"}}
	usage := map[string]string{}
	for _, n := range names {
		r.rows = append(r.rows, []string{n, commands[n].usage})
		usage[n] = commands[n].usage
	}
	r.v = usage
	return r, nil
}

func add(ctx context.Context, a *App, args []string) (result, error) {
	image := ""
	if len(args) > 1 {
		image = args[1]
	}
	c, err := a.admin.AddCollectible(ctx, a.caller, args[0], image)
	if err != nil {
		return result{}, err
	}
	return result{v: c, rows: [][]string{{fmt.Sprintf("%s added", c.Name)}}}, nil
}

func remove(ctx context.Context, a *App, args []string) (result, error) {
	if err := a.admin.RemoveCollectible(ctx, a.caller, args[0]); err != nil {
		return result{}, err
	}
	return message("%s removed", args[0]), nil
}

func lookup(ctx context.Context, a *App, args []string) (result, error) {
	p, err := a.engine.Catalog.Profile(ctx, args[0])
	if err != nil {
		return result{}, err
	}
	owner := p.OwnerID
	if !p.Owned() {
		owner = "-"
	}
	return result{
		v:      p,
		header: []string{"NAME", "OWNER", "IMAGE"},
		rows:   [][]string{{p.Collectible.Name, owner, p.Collectible.Image}},
	}, nil
}

func list(ctx context.Context, a *App, _ []string) (result, error) {
	items, err := a.engine.Catalog.List(ctx)
	if err != nil {
		return result{}, err
	}
	r := result{v: items, header: []string{"ID", "NAME", "CLAIMED"}}
	for _, c := range items {
		r.rows = append(r.rows, []string{strconv.FormatInt(c.ID, 10), c.Name, strconv.FormatBool(c.Claimed)})
	}
	return r, nil
}

func owned(ctx context.Context, a *App, args []string) (result, error) {
	page := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return result{}, fmt.Errorf("page must be a number: %w", err)
		}
		page = n
	}
	p, err := a.engine.Ownership.OwnedPage(ctx, args[0], page)
	if err != nil {
		return result{}, err
	}
	r := result{v: p, header: []string{"#", "NAME"}}
	for i, n := range p.Items {
		r.rows = append(r.rows, []string{strconv.Itoa(i + 1), n})
	}
	r.rows = append(r.rows, []string{"", fmt.Sprintf("page %d/%d, %d total", p.Page+1, max(p.TotalPages, 1), p.Total)})
	return r, nil
}

func balance(ctx context.Context, a *App, args []string) (result, error) {
	amount, err := a.engine.Ledger.Balance(ctx, args[0])
	if err != nil {
		return result{}, err
	}
	return result{
		v:      map[string]any{"user": args[0], "balance": amount},
		header: []string{"USER", "BALANCE"},
		rows:   [][]string{{args[0], strconv.FormatInt(amount, 10)}},
	}, nil
}

func rank(ctx context.Context, a *App, args []string) (result, error) {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return result{}, fmt.Errorf("limit must be a number: %w", err)
		}
		limit = n
	}
	entries, err := a.engine.Ledger.Rank(ctx, limit)
	if err != nil {
		return result{}, err
	}
	r := result{v: entries, header: []string{"#", "USER", "BALANCE"}}
	for _, e := range entries {
		r.rows = append(r.rows, []string{strconv.Itoa(e.Position), e.UserID, strconv.FormatInt(e.Amount, 10)})
	}
	return r, nil
}

func adjust(ctx context.Context, a *App, args []string) (result, error) {
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return result{}, fmt.Errorf("%w: %s", common.ErrInvalidAmount, args[1])
	}
	bal, err := a.admin.Adjust(ctx, a.caller, args[0], delta)
	if err != nil {
		return result{}, err
	}
	return result{
		v:      map[string]any{"user": args[0], "balance": bal},
		header: []string{"USER", "BALANCE"},
		rows:   [][]string{{args[0], strconv.FormatInt(bal, 10)}},
	}, nil
}

func cooldowns(ctx context.Context, a *App, args []string) (result, error) {
	cd, err := a.engine.Cooldowns.Status(ctx, args[0])
	if err != nil {
		return result{}, err
	}
	r := result{v: cd, header: []string{"USER", "ATTEMPTS", "EXPIRY", "LAST WIN", "LAST COLLECT"}}
	r.rows = [][]string{{cd.UserID, strconv.Itoa(cd.Attempts),
		stamp(cd.AttemptsExpiry), stamp(cd.LastMarriage), stamp(cd.LastCollect)}}
	return r, nil
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func resetAttempts(ctx context.Context, a *App, _ []string) (result, error) {
	if err := a.admin.ResetAttempts(ctx, a.caller); err != nil {
		return result{}, err
	}
	return message("attempt counters reset"), nil
}

func resetMarriage(ctx context.Context, a *App, _ []string) (result, error) {
	if err := a.admin.ResetMarriage(ctx, a.caller); err != nil {
		return result{}, err
	}
	return message("marriage gate reset"), nil
}

func resetBalances(ctx context.Context, a *App, _ []string) (result, error) {
	if err := a.admin.ResetBalances(ctx, a.caller); err != nil {
		return result{}, err
	}
	return message("balances reset"), nil
}

func releaseAll(ctx context.Context, a *App, _ []string) (result, error) {
	if err := a.admin.ReleaseAll(ctx, a.caller); err != nil {
		return result{}, err
	}
	return message("all collectibles released"), nil
}

func audit(ctx context.Context, a *App, _ []string) (result, error) {
	bad, err := a.admin.Audit(ctx, a.caller)
	if err != nil {
		return result{}, err
	}
	if len(bad) == 0 {
		return result{v: []string{}, rows: [][]string{{"catalog consistent"}}}, nil
	}
	r := result{v: bad, header: []string{"INCONSISTENT"}}
	for _, n := range bad {
		r.rows = append(r.rows, []string{n})
	}
	return r, nil
}
