package models

type Product struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Img       string  `db:"img" json:"img"`
	Hot       bool    `db:"hot" json:"hot"`
	MaxPerDay int     `db:"max_per_day" json:"maxPerDay"`
	Active    bool    `db:"active" json:"active"`
}

// RemainingToday is the headroom left under the per-product daily cap, never
// negative even if the cap was lowered after sales happened.
func RemainingToday(maxPerDay, soldToday int) int {
	if remaining := maxPerDay - soldToday; remaining > 0 {
		return remaining
	}
	return 0
}
