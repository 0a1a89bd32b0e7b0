package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 31, hour, minute, 0, 0, timeutil.Zone())
}

func pendingOrder(createdAt time.Time) *Order {
	return &Order{ID: 1, UserID: 7, CreatedAt: createdAt}
}

func TestCancelGuardAccepts(t *testing.T) {
	order := pendingOrder(at(8, 30))
	require.NoError(t, order.CancelGuard(at(10, 0)))
}

func TestCancelGuardRejections(t *testing.T) {
	cases := []struct {
		name  string
		order *Order
		now   time.Time
		want  error
	}{
		{
			name: "already cancelled",
			order: &Order{
				CreatedAt: at(8, 30),
				Cancelled: true,
			},
			now:  at(10, 0),
			want: ErrAlreadyCancelled,
		},
		{
			name: "already picked",
			order: &Order{
				CreatedAt:    at(8, 30),
				PickupStatus: PickupPicked,
			},
			now:  at(10, 0),
			want: ErrAlreadyPicked,
		},
		{
			name:  "previous-day order is locked",
			order: pendingOrder(at(8, 30).AddDate(0, 0, -1)),
			now:   at(10, 0),
			want:  ErrStaleOrder,
		},
		{
			name:  "outside cancellation window",
			order: pendingOrder(at(8, 30)),
			now:   at(11, 45),
			want:  ErrCancelWindow,
		},
		{
			name:  "after pickup lock time",
			order: pendingOrder(at(8, 30)),
			now:   at(12, 50),
			want:  ErrPickupLocked,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.order.CancelGuard(tc.now)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsBusinessError(err))
		})
	}
}

func TestCancelGuardWindowEndIsExclusive(t *testing.T) {
	order := pendingOrder(at(8, 30))
	assert.NoError(t, order.CancelGuard(at(11, 29)))
	assert.ErrorIs(t, order.CancelGuard(at(11, 30)), ErrCancelWindow)
}

func TestEffectivePickupStatus(t *testing.T) {
	const (
		today     = "2026-08-31"
		yesterday = "2026-08-30"
	)
	cases := []struct {
		name      string
		cancelled bool
		stored    PickupStatus
		orderDay  string
		now       time.Time
		want      PickupStatus
	}{
		{"pending today before lock", false, PickupPending, today, at(10, 0), PickupPending},
		{"null status defaults to pending", false, "", today, at(10, 0), PickupPending},
		{"pending today after lock becomes missed", false, PickupPending, today, at(12, 50), PickupMissed},
		{"pending from yesterday is missed", false, PickupPending, yesterday, at(10, 0), PickupMissed},
		{"picked stays picked after lock", false, PickupPicked, today, at(13, 0), PickupPicked},
		{"picked from yesterday stays picked", false, PickupPicked, yesterday, at(10, 0), PickupPicked},
		{"cancelled is never missed", true, PickupPending, yesterday, at(13, 0), PickupPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectivePickupStatus(tc.cancelled, tc.stored, tc.orderDay, tc.now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckUserCap(t *testing.T) {
	assert.NoError(t, CheckUserCap(0, 1))
	assert.NoError(t, CheckUserCap(0, 2))
	assert.NoError(t, CheckUserCap(1, 1))
	assert.ErrorIs(t, CheckUserCap(1, 2), ErrDailyCapExceeded)
	assert.ErrorIs(t, CheckUserCap(2, 1), ErrDailyCapExceeded)
}

func TestRemainingToday(t *testing.T) {
	assert.Equal(t, 50, RemainingToday(50, 0))
	assert.Equal(t, 1, RemainingToday(50, 49))
	assert.Equal(t, 0, RemainingToday(50, 50))
	assert.Equal(t, 0, RemainingToday(10, 25), "cap lowered after sales never goes negative")
}
