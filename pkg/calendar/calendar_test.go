package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DayNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int64
	}{
		{"1900-01-01", 0},
		{"1900-01-02", 1},
		{"1900-3-1", 59},
		{"1901-01-01", 365},
		{"2000-01-01", 36524},
		{"2000-03-01", 36524 + 60},
		{"2024-02-29", 45349},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDay(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"", "2020", "2020-01", "2020-01-01-01", "2020-13-01", "2020-00-10",
		"2020-02-30", "2019-02-29", "1900-02-29", "2020-1-", "2020-001-01",
		"20x0-01-01", "+2020-01-01", "2020-01-1a",
	} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrInvalidDate, in)
	}

	_, err := Parse("1899-12-31")
	require.ErrorIs(t, err, ErrBeforeEpoch)
}

func TestFromDayNumber_Inverse(t *testing.T) {
	t.Parallel()

	for _, day := range []int64{0, 1, 58, 59, 365, 36524, 45349, 1 << 20} {
		d, err := FromDayNumber(day)
		require.NoError(t, err)
		assert.Equal(t, day, d.DayNumber(), d.String())

		back, err := ParseDay(d.String())
		require.NoError(t, err)
		assert.Equal(t, day, back)
	}

	_, err := FromDayNumber(-1)
	require.ErrorIs(t, err, ErrBeforeEpoch)
}

func TestDate_String(t *testing.T) {
	t.Parallel()

	d, err := NewDate(2021, time.March, 7)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-07", d.String())
}

func TestIsLeap(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLeap(2000))
	assert.True(t, IsLeap(2024))
	assert.False(t, IsLeap(1900))
	assert.False(t, IsLeap(2023))
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February))
}
