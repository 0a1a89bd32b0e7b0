package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
)

type PickupStatus string

const (
	PickupPending PickupStatus = "pending"
	PickupPicked  PickupStatus = "picked"
	// PickupMissed is derived at read time and never stored.
	PickupMissed PickupStatus = "missed"
)

type Order struct {
	ID           int64        `db:"id" json:"id"`
	UserID       int64        `db:"user_id" json:"userId"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	Cancelled    bool         `db:"cancelled" json:"cancelled"`
	PickupStatus PickupStatus `db:"pickup_status" json:"pickupStatus"`
}

type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"orderId"`
	ProductID int64   `db:"product_id" json:"productId"`
	// Snapshot of the product at order time; later product edits and
	// deletions must never change historical orders.
	ProductName string  `db:"product_name" json:"productName"`
	UnitPrice   float64 `db:"unit_price" json:"unitPrice"`
	Qty         int     `db:"qty" json:"qty"`
}

// BusinessError is an expected, user-actionable rejection; its text is the
// client-facing message. Anything else surfacing from an operation is an
// internal fault and stays generic toward the client.
type BusinessError string

func (e BusinessError) Error() string { return string(e) }

// IsBusinessError reports whether err carries a client-facing message.
func IsBusinessError(err error) bool {
	var be BusinessError
	return errors.As(err, &be)
}

// Rejections for order admission and cancellation.
var (
	ErrEmptyCart        = BusinessError("cart is empty")
	ErrOrderWindow      = BusinessError("ordering window is closed (08:00-11:30)")
	ErrDayNotOpen       = BusinessError("reservations are not open today, browsing only")
	ErrDailyCapExceeded = BusinessError(fmt.Sprintf("daily limit is %d cups, please check your quantities", timeutil.MaxCupsPerUserPerDay))
	ErrInvalidProduct   = BusinessError("cart contains an unknown or inactive product")

	ErrAlreadyCancelled = BusinessError("order is already cancelled")
	ErrAlreadyPicked    = BusinessError("picked-up orders cannot be cancelled")
	ErrStaleOrder       = BusinessError("orders from a previous day are locked and cannot be cancelled")
	ErrCancelWindow     = BusinessError("cancellation window is closed (08:00-11:30)")
	ErrPickupLocked     = BusinessError("order is locked as missed after 12:50 and cannot be cancelled")
	ErrCancelConflict   = BusinessError("order can no longer be cancelled")
)

// ErrInsufficientStock names the product and the headroom left.
func ErrInsufficientStock(name string, remaining int) error {
	return BusinessError(fmt.Sprintf("not enough stock for %q, %d cup(s) left today", name, remaining))
}

// CheckUserCap enforces the per-student daily quota: quantity already
// committed today plus the new request must stay within the cap.
func CheckUserCap(alreadyCommitted, requested int) error {
	if alreadyCommitted+requested > timeutil.MaxCupsPerUserPerDay {
		return ErrDailyCapExceeded
	}
	return nil
}

// CancelGuard decides whether the order may be cancelled at instant now.
// Ownership is checked by the caller's query; everything else lives here so
// each guard is independently testable.
func (o *Order) CancelGuard(now time.Time) error {
	switch {
	case o.Cancelled:
		return ErrAlreadyCancelled
	case o.PickupStatus == PickupPicked:
		return ErrAlreadyPicked
	case timeutil.DayOf(o.CreatedAt) != timeutil.DayOf(now):
		return ErrStaleOrder
	case timeutil.AtOrAfterAt(now, timeutil.PickupLockClock):
		return ErrPickupLocked
	case !timeutil.WithinWindowAt(now, timeutil.CancelWindowStart, timeutil.CancelWindowEnd):
		return ErrCancelWindow
	}
	return nil
}

// EffectivePickupStatus derives the status shown to users. A pending order
// becomes missed once its day has passed, or once the pickup-lock time is
// reached on the order's own day. Missed is never written back to storage.
func EffectivePickupStatus(cancelled bool, stored PickupStatus, orderDay string, now time.Time) PickupStatus {
	status := stored
	if status == "" {
		status = PickupPending
	}
	if cancelled || status == PickupPicked {
		return status
	}
	if orderDay != timeutil.DayOf(now) || timeutil.AtOrAfterAt(now, timeutil.PickupLockClock) {
		return PickupMissed
	}
	return status
}
