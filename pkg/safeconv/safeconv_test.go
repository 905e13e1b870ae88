package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64ToInt(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		got, err := Int64ToInt(42)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("negative", func(t *testing.T) {
		t.Parallel()

		got, err := Int64ToInt(-7)
		require.NoError(t, err)
		assert.Equal(t, -7, got)
	})

	t.Run("max_int", func(t *testing.T) {
		t.Parallel()

		got, err := Int64ToInt(int64(MaxInt))
		require.NoError(t, err)
		assert.Equal(t, MaxInt, got)
	})

	t.Run("min_int", func(t *testing.T) {
		t.Parallel()

		got, err := Int64ToInt(int64(MinInt))
		require.NoError(t, err)
		assert.Equal(t, MinInt, got)
	})
}

func TestMustInt64ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, math.MaxInt32, MustInt64ToInt(math.MaxInt32))
	assert.Zero(t, MustInt64ToInt(0))
}

func TestMustUintptrToInt(t *testing.T) {
	t.Parallel()

	t.Run("descriptor", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 2, MustUintptrToInt(2))
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: uintptr to int overflow", func() {
			MustUintptrToInt(^uintptr(0))
		})
	})
}
