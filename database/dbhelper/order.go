package dbhelper

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/models"
)

// LockReservationScope takes a transaction-scoped advisory lock on a
// capacity scope such as "user:2026-08-31:17" or "product:2026-08-31:3".
// Two admissions contending for the same scope serialize here, so the
// committed-quantity reads that follow cannot both see stale headroom.
// The lock is released automatically at commit or rollback.
func LockReservationScope(tx *sql.Tx, key string) error {
	_, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}

// UserCommittedOnDay sums the item quantities of the user's non-cancelled
// orders created on the given civil day.
func UserCommittedOnDay(q Queryable, userID int64, day string) (int, error) {
	var count int
	err := q.QueryRow(`
		SELECT COALESCE(SUM(oi.qty), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		  AND o.cancelled = FALSE
		  AND (o.created_at AT TIME ZONE 'Asia/Shanghai')::date = $2::date`,
		userID, day).Scan(&count)
	return count, err
}

// ProductStock is the admission view of a product: its snapshot fields plus
// how much of its daily cap is already committed.
type ProductStock struct {
	ID        int64
	Name      string
	Price     float64
	MaxPerDay int
	SoldToday int
}

// ProductsForOrder loads the active products among ids with their committed
// quantity for the day, keyed by product ID. A requested product missing
// from the result is unknown or inactive.
func ProductsForOrder(q Queryable, ids []int64, day string) (map[int64]ProductStock, error) {
	rows, err := q.Query(`
		SELECT
			p.id, p.name, p.price, p.max_per_day,
			COALESCE(SUM(
				CASE
					WHEN o.cancelled = FALSE
					 AND (o.created_at AT TIME ZONE 'Asia/Shanghai')::date = $2::date
					THEN oi.qty
					ELSE 0
				END
			), 0) AS sold_today
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		LEFT JOIN orders o ON oi.order_id = o.id
		WHERE p.id = ANY($1) AND p.active = TRUE
		GROUP BY p.id`,
		pq.Array(ids), day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := make(map[int64]ProductStock, len(ids))
	for rows.Next() {
		var s ProductStock
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.MaxPerDay, &s.SoldToday); err != nil {
			return nil, err
		}
		stocks[s.ID] = s
	}
	return stocks, rows.Err()
}

func InsertOrder(tx *sql.Tx, userID int64, createdAt time.Time) (int64, error) {
	var id int64
	err := tx.QueryRow(`
		INSERT INTO orders (user_id, created_at, cancelled, pickup_status)
		VALUES ($1, $2, FALSE, NULL)
		RETURNING id`,
		userID, createdAt).Scan(&id)
	return id, err
}

// InsertOrderItem writes one line with the frozen product snapshot. The
// snapshot fields are never updated afterwards.
func InsertOrderItem(tx *sql.Tx, orderID, productID int64, productName string, unitPrice float64, qty int) error {
	_, err := tx.Exec(`
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, qty)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, productID, productName, unitPrice, qty)
	return err
}

// GetOrderForUser fetches an order only when it belongs to the user;
// sql.ErrNoRows covers both "missing" and "not yours".
func GetOrderForUser(orderID, userID int64) (*models.Order, error) {
	var (
		o      models.Order
		status sql.NullString
	)
	err := database.WaterBar.QueryRow(`
		SELECT id, user_id, created_at, cancelled, pickup_status
		FROM orders
		WHERE id = $1 AND user_id = $2`,
		orderID, userID).
		Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Cancelled, &status)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		o.PickupStatus = models.PickupStatus(status.String)
	}
	return &o, nil
}

// CancelOrder flips the cancelled flag, re-checking the state guards inside
// the statement: a pickup marking racing in between the caller's guard and
// this update must not yield a cancelled-and-picked row. Returns false when
// the row no longer qualified.
func CancelOrder(orderID int64) (bool, error) {
	res, err := database.WaterBar.Exec(`
		UPDATE orders
		SET cancelled = TRUE
		WHERE id = $1
		  AND cancelled = FALSE
		  AND (pickup_status IS NULL OR pickup_status <> 'picked')`, orderID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func SetPickupStatus(orderID int64, status models.PickupStatus) error {
	_, err := database.WaterBar.Exec(`
		UPDATE orders SET pickup_status = $1 WHERE id = $2`,
		status, orderID)
	return err
}

type OrderLine struct {
	ProductName string  `json:"productName"`
	Qty         int     `json:"qty"`
	UnitPrice   float64 `json:"unitPrice"`
}

type UserOrder struct {
	ID           int64               `json:"id"`
	CreatedAt    time.Time           `json:"createdAt"`
	Cancelled    bool                `json:"cancelled"`
	PickupStatus models.PickupStatus `json:"pickupStatus"`
	TotalPrice   float64             `json:"totalPrice"`
	Items        []OrderLine         `json:"items"`
}

// ListOrdersByUser returns the user's orders newest first, each with its
// snapshot lines. The stored pickup status is returned raw; the handler
// derives the effective (possibly missed) status.
func ListOrdersByUser(userID int64) ([]UserOrder, error) {
	rows, err := database.WaterBar.Query(`
		SELECT
			o.id, o.created_at, o.cancelled, o.pickup_status,
			oi.product_name, oi.qty, oi.unit_price
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		orders []UserOrder
		index  = map[int64]int{}
	)
	for rows.Next() {
		var (
			id        int64
			createdAt time.Time
			cancelled bool
			status    sql.NullString
			line      OrderLine
		)
		if err := rows.Scan(&id, &createdAt, &cancelled, &status,
			&line.ProductName, &line.Qty, &line.UnitPrice); err != nil {
			return nil, err
		}

		i, ok := index[id]
		if !ok {
			order := UserOrder{ID: id, CreatedAt: createdAt, Cancelled: cancelled}
			if status.Valid {
				order.PickupStatus = models.PickupStatus(status.String)
			}
			orders = append(orders, order)
			i = len(orders) - 1
			index[id] = i
		}
		orders[i].Items = append(orders[i].Items, line)
		orders[i].TotalPrice += float64(line.Qty) * line.UnitPrice
	}
	return orders, rows.Err()
}

// DayOrderRow is one pickup-reconciliation line: order, owner, item.
type DayOrderRow struct {
	OrderID      int64               `json:"id"`
	UserEmail    string              `json:"userEmail"`
	ProductName  string              `json:"productName"`
	Qty          int                 `json:"qty"`
	CreatedAt    time.Time           `json:"createdAt"`
	PickupStatus models.PickupStatus `json:"pickupStatus"`
}

// ListDayOrders returns the non-cancelled orders of one civil day, joined
// with the owner's handle, for the bar-admin and pickup views.
func ListDayOrders(day string) ([]DayOrderRow, error) {
	rows, err := database.WaterBar.Query(`
		SELECT
			o.id, u.email, oi.product_name, oi.qty, o.created_at, o.pickup_status
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		WHERE (o.created_at AT TIME ZONE 'Asia/Shanghai')::date = $1::date
		  AND o.cancelled = FALSE
		ORDER BY o.created_at, o.id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayOrderRow
	for rows.Next() {
		var (
			row    DayOrderRow
			status sql.NullString
		)
		if err := rows.Scan(&row.OrderID, &row.UserEmail, &row.ProductName,
			&row.Qty, &row.CreatedAt, &status); err != nil {
			return nil, err
		}
		row.PickupStatus = models.PickupPending
		if status.Valid {
			row.PickupStatus = models.PickupStatus(status.String)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
