package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/store"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/store/storetest"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedDice returns the queued values (modulo n), then zeros.
type scriptedDice struct {
	mu   sync.Mutex
	vals []int
}

func (d *scriptedDice) IntN(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.vals) == 0 {
		return 0
	}
	v := d.vals[0]
	d.vals = d.vals[1:]
	return v % n
}

func (d *scriptedDice) Push(vals ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vals = append(d.vals, vals...)
}

type fixture struct {
	*Engine
	store *store.Store
	clock *fakeClock
	dice  *scriptedDice
	cfg   *config.Config
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.Open(t)
	cfg := testConfig()
	clock := &fakeClock{t: epoch}
	d := &scriptedDice{}
	e := NewEngine(st.DB, st.Manager, cfg, WithClock(clock.Now), WithDice(d))
	return &fixture{Engine: e, store: st, clock: clock, dice: d, cfg: cfg}
}

func (f *fixture) addCollectibles(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := f.Catalog.Add(context.Background(), n, "https://img/"+n+".png")
		require.NoError(t, err)
	}
}

// requireClaimedIffOwned checks that every collectible is flagged claimed
// exactly when one ownership row references it.
func (f *fixture) requireClaimedIffOwned(t *testing.T) {
	t.Helper()
	rows, err := f.store.DB.Query(`
		SELECT c.name, c.claimed, (SELECT COUNT(*) FROM ownership o WHERE lower(o.collectible_name) = lower(c.name))
		FROM collectibles c`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		var claimed bool
		var owners int
		require.NoError(t, rows.Scan(&name, &claimed, &owners))
		require.LessOrEqual(t, owners, 1, name)
		require.Equal(t, owners == 1, claimed, name)
	}
	require.NoError(t, rows.Err())
}
