package dbhelper

import (
	"database/sql"

	"github.com/Ricardo-1112/waterbar-reservation/database"
)

// IsDayOpen reports whether reservations are open on the given civil day.
// No row means closed: the gate is default-deny.
func IsDayOpen(q Queryable, day string) (bool, error) {
	var isOpen bool
	err := q.QueryRow(`
		SELECT is_open FROM reservation_days WHERE day = $1::date`, day).
		Scan(&isOpen)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isOpen, nil
}

// SetDayOpen upserts the gate for one day. Callers only ever pass tomorrow.
func SetDayOpen(day string, isOpen bool) error {
	_, err := database.WaterBar.Exec(`
		INSERT INTO reservation_days (day, is_open, updated_at)
		VALUES ($1::date, $2, now())
		ON CONFLICT (day) DO UPDATE
		SET is_open = EXCLUDED.is_open, updated_at = now()`,
		day, isOpen)
	return err
}
