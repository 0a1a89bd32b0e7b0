package dbhelper

import (
	"github.com/Ricardo-1112/waterbar-reservation/database"
)

// PeriodReport is one sales rollup row; Period is a day, an ISO week or a
// month depending on the query.
type PeriodReport struct {
	Period string  `json:"period"`
	Orders int     `json:"orders"`
	Cups   int     `json:"cups"`
	Amount float64 `json:"amount"`
}

func periodReport(query string) ([]PeriodReport, error) {
	rows, err := database.WaterBar.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []PeriodReport
	for rows.Next() {
		var r PeriodReport
		if err := rows.Scan(&r.Period, &r.Orders, &r.Cups, &r.Amount); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// DailyReport rolls up the last 7 civil days of non-cancelled sales.
func DailyReport() ([]PeriodReport, error) {
	return periodReport(`
		SELECT
			((o.created_at AT TIME ZONE 'Asia/Shanghai')::date)::text AS day,
			COUNT(DISTINCT o.id) AS orders,
			COALESCE(SUM(oi.qty), 0) AS cups,
			COALESCE(SUM(oi.qty * oi.unit_price), 0) AS amount
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.cancelled = FALSE
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT 7`)
}

// WeeklyReport rolls up the last 4 ISO weeks.
func WeeklyReport() ([]PeriodReport, error) {
	return periodReport(`
		SELECT
			to_char(o.created_at AT TIME ZONE 'Asia/Shanghai', 'IYYY-IW') AS week,
			COUNT(DISTINCT o.id) AS orders,
			COALESCE(SUM(oi.qty), 0) AS cups,
			COALESCE(SUM(oi.qty * oi.unit_price), 0) AS amount
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.cancelled = FALSE
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT 4`)
}

// MonthlyReport rolls up the last 6 calendar months.
func MonthlyReport() ([]PeriodReport, error) {
	return periodReport(`
		SELECT
			to_char(o.created_at AT TIME ZONE 'Asia/Shanghai', 'YYYY-MM') AS month,
			COUNT(DISTINCT o.id) AS orders,
			COALESCE(SUM(oi.qty), 0) AS cups,
			COALESCE(SUM(oi.qty * oi.unit_price), 0) AS amount
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.cancelled = FALSE
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT 6`)
}

// ProductDayReport is one spreadsheet row: a product's sales on one day.
type ProductDayReport struct {
	ProductName string
	Cups        int
	Amount      float64
}

// DayProductReport breaks one day's non-cancelled sales down by product
// snapshot name for the spreadsheet export.
func DayProductReport(day string) ([]ProductDayReport, error) {
	rows, err := database.WaterBar.Query(`
		SELECT
			oi.product_name,
			COALESCE(SUM(oi.qty), 0) AS cups,
			COALESCE(SUM(oi.qty * oi.unit_price), 0) AS amount
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.cancelled = FALSE
		  AND (o.created_at AT TIME ZONE 'Asia/Shanghai')::date = $1::date
		GROUP BY oi.product_name
		ORDER BY oi.product_name`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []ProductDayReport
	for rows.Next() {
		var r ProductDayReport
		if err := rows.Scan(&r.ProductName, &r.Cups, &r.Amount); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
