package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shanghai(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 8, 31, hour, minute, 0, 0, Zone())
}

func TestWithinWindowBoundaries(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", shanghai(t, 7, 59), false},
		{"at start is inside", shanghai(t, 8, 0), true},
		{"mid window", shanghai(t, 10, 15), true},
		{"last minute inside", shanghai(t, 11, 29), true},
		{"at end is outside", shanghai(t, 11, 30), false},
		{"after end", shanghai(t, 12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WithinWindowAt(tc.at, OrderWindowStart, OrderWindowEnd))
		})
	}
}

func TestWithinWindowUsesFixedZoneNotHostZone(t *testing.T) {
	// 02:30 UTC is 10:30 in Shanghai: inside the window regardless of the
	// zone the instant was built in.
	at := time.Date(2026, 8, 31, 2, 30, 0, 0, time.UTC)
	assert.True(t, WithinWindowAt(at, OrderWindowStart, OrderWindowEnd))

	// 09:00 UTC is 17:00 in Shanghai: outside.
	at = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.False(t, WithinWindowAt(at, OrderWindowStart, OrderWindowEnd))
}

func TestAtOrAfter(t *testing.T) {
	assert.False(t, AtOrAfterAt(shanghai(t, 12, 49), PickupLockClock))
	assert.True(t, AtOrAfterAt(shanghai(t, 12, 50), PickupLockClock), "boundary is inclusive")
	assert.True(t, AtOrAfterAt(shanghai(t, 23, 0), PickupLockClock))
}

func TestDayRollsOverOnShanghaiMidnight(t *testing.T) {
	// 17:00 UTC on the 31st is already 01:00 on September 1st in Shanghai.
	late := time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-01", DayOf(late))

	// 15:30 UTC is 23:30 local: still the 31st.
	early := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-31", DayOf(early))
}

func TestDayOffsets(t *testing.T) {
	restore := Now
	defer func() { Now = restore }()
	Now = func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, Zone()) }

	require.Equal(t, "2026-08-31", Day(0))
	require.Equal(t, "2026-09-01", Day(1))
	require.Equal(t, "2026-08-30", Day(-1))
}
