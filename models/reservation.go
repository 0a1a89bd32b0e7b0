package models

import "time"

// ReservationDay is the per-day gate the bar admin flips for tomorrow.
// A missing row means closed: absence is default-deny, not an omission.
type ReservationDay struct {
	Day       string    `db:"day" json:"day"`
	IsOpen    bool      `db:"is_open" json:"isOpen"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
