package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnership_GrantAndRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCollectibles(t, "Hera")

	owner, err := f.Ownership.OwnerOf(ctx, "hera")
	require.NoError(t, err)
	assert.Empty(t, owner)

	require.NoError(t, f.Ownership.Grant(ctx, "alice", "hera"))
	owner, err = f.Ownership.OwnerOf(ctx, "HERA")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
	f.requireClaimedIffOwned(t)

	err = f.Ownership.Grant(ctx, "bob", "Hera")
	assert.ErrorIs(t, err, common.ErrAlreadyOwned)
	err = f.Ownership.Grant(ctx, "alice", "Hera")
	assert.ErrorIs(t, err, common.ErrAlreadyOwned)

	assert.ErrorIs(t, f.Ownership.Release(ctx, "bob", "Hera"), common.ErrNotOwner)
	owner, _ = f.Ownership.OwnerOf(ctx, "Hera")
	assert.Equal(t, "alice", owner, "failed release must not mutate")

	require.NoError(t, f.Ownership.Release(ctx, "alice", "hERA"))
	owner, err = f.Ownership.OwnerOf(ctx, "Hera")
	require.NoError(t, err)
	assert.Empty(t, owner)
	f.requireClaimedIffOwned(t)

	assert.ErrorIs(t, f.Ownership.Grant(ctx, "bob", "Zeus"), common.ErrorNotFound)
}

func TestOwnership_ListOwnedKeepsAcquisitionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCollectibles(t, "Zeta", "Alpha", "Mu")

	for _, n := range []string{"Mu", "Zeta", "Alpha"} {
		require.NoError(t, f.Ownership.Grant(ctx, "u1", n))
	}
	names, err := f.Ownership.ListOwned(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mu", "Zeta", "Alpha"}, names)

	names, err = f.Ownership.ListOwned(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestOwnership_OwnedPageWrapsAround(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.cfg.PageSize = 2

	var names []string
	for i := 0; i < 5; i++ {
		names = append(names, fmt.Sprintf("c%d", i))
	}
	f.addCollectibles(t, names...)
	for _, n := range names {
		require.NoError(t, f.Ownership.Grant(ctx, "u1", n))
	}

	p, err := f.Ownership.OwnedPage(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c1"}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 5, p.Total)

	p, err = f.Ownership.OwnedPage(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c4"}, p.Items)

	p, err = f.Ownership.OwnedPage(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Page)
	assert.Equal(t, []string{"c0", "c1"}, p.Items)

	p, err = f.Ownership.OwnedPage(ctx, "u1", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)

	p, err = f.Ownership.OwnedPage(ctx, "nobody", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestOwnership_ReleaseAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCollectibles(t, "A", "B", "C")
	require.NoError(t, f.Ownership.Grant(ctx, "u1", "A"))
	require.NoError(t, f.Ownership.Grant(ctx, "u2", "B"))

	require.NoError(t, f.Ownership.ReleaseAll(ctx))

	for _, n := range []string{"A", "B", "C"} {
		c, err := f.Catalog.Lookup(ctx, n)
		require.NoError(t, err)
		assert.False(t, c.Claimed, n)
	}
	f.requireClaimedIffOwned(t)
}

func TestOwnership_ConcurrentGrantsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCollectibles(t, "Helen")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.Ownership.Grant(ctx, fmt.Sprintf("u%d", i), "Helen")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, common.ErrAlreadyOwned):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	f.requireClaimedIffOwned(t)
}

func TestOwnership_Audit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCollectibles(t, "A", "B")
	require.NoError(t, f.Ownership.Grant(ctx, "u1", "A"))

	bad, err := f.Ownership.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, bad)

	_, err = f.store.DB.Exec(`UPDATE collectibles SET claimed = 1 WHERE name = 'B'`)
	require.NoError(t, err)
	bad, err = f.Ownership.Audit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, bad)
}
