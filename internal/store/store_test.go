package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/roadsplit/internal/store"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
)

func openTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal", "roadsplit.db")

	s, err := store.Open(context.Background(), path)
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })

	return s, path
}

func TestStore_InitAppendLoad(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Initialized(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Init(ctx, []int64{5, 1, 7}))
	require.NoError(t, s.Append(ctx, 0, 10, 8))
	require.NoError(t, s.Append(ctx, 2, 12, 1))

	l, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, l.Sections())
	assert.Equal(t, int64(12), l.LastDay())

	total, err := l.TotalCost(0, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(58), total)
}

func TestStore_ReopenReplays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roadsplit.db")

	first, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Init(ctx, []int64{2, 2}))
	require.NoError(t, first.Append(ctx, 1, 0, 6))
	require.NoError(t, first.Close())

	second, err := store.Open(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { second.Close() })

	l, err := second.Load(ctx)
	require.NoError(t, err)

	totals, err := l.Totals(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 12}, totals)
	assert.Equal(t, path, second.Path())
}

func TestStore_InitTwice(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, []int64{1, 1}))
	require.ErrorIs(t, s.Init(ctx, []int64{1, 1}), store.ErrAlreadyInitialized)
}

func TestStore_InitRejectsInvalidCosts(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)

	require.ErrorIs(t, s.Init(context.Background(), []int64{1}), ledger.ErrTooFewSections)
	require.ErrorIs(t, s.Init(context.Background(), []int64{1, -2}), ledger.ErrInvalidCost)
}

func TestStore_LoadUninitialized(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, store.ErrNotInitialized)
}

func TestStore_CorruptReplay(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, []int64{1, 1}))
	require.NoError(t, s.Append(ctx, 0, 9, 1))
	// Out of order on replay: the journal does not enforce day order itself.
	require.NoError(t, s.Append(ctx, 1, 3, 1))

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, store.ErrCorruptJournal)
	require.ErrorIs(t, err, ledger.ErrNonMonotonicDay)
}

func TestStore_AppendUnknownSection(t *testing.T) {
	t.Parallel()

	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, []int64{1, 1}))
	require.Error(t, s.Append(ctx, 7, 1, 1))
	require.NoError(t, s.HealthCheck(ctx))
}
