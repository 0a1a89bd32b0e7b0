package dbhelper

import (
	"fmt"
	"strings"

	"github.com/Ricardo-1112/waterbar-reservation/database"
	"github.com/Ricardo-1112/waterbar-reservation/models"
)

// ProductWithSold pairs a product with its committed quantity for one day.
type ProductWithSold struct {
	models.Product
	SoldToday int
}

func CreateProduct(p models.Product) (int64, error) {
	var id int64
	err := database.WaterBar.QueryRow(`
		INSERT INTO products (name, price, img, hot, max_per_day, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id`,
		p.Name, p.Price, p.Img, p.Hot, p.MaxPerDay).Scan(&id)
	return id, err
}

func GetProductByID(id int64) (*models.Product, error) {
	var p models.Product
	err := database.WaterBar.QueryRow(`
		SELECT id, name, price, COALESCE(img, ''), hot, max_per_day, active
		FROM products
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Img, &p.Hot, &p.MaxPerDay, &p.Active)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func UpdateProduct(p models.Product) error {
	_, err := database.WaterBar.Exec(`
		UPDATE products
		SET name = $1, price = $2, img = $3, hot = $4, max_per_day = $5, active = $6
		WHERE id = $7`,
		p.Name, p.Price, p.Img, p.Hot, p.MaxPerDay, p.Active, p.ID)
	return err
}

// productColumns maps the JSON field names accepted by the partial-update
// endpoint to their columns. Anything else is silently ignored.
var productColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"img":       "img",
	"hot":       "hot",
	"maxPerDay": "max_per_day",
	"active":    "active",
}

// UpdateProductFields applies a sparse update built from the request body.
// Returns false when no recognized field was supplied.
func UpdateProductFields(id int64, fields map[string]interface{}) (bool, error) {
	var (
		sets   []string
		params []interface{}
	)
	for key, column := range productColumns {
		if value, ok := fields[key]; ok {
			params = append(params, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(params)))
		}
	}
	if len(sets) == 0 {
		return false, nil
	}

	params = append(params, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(params))
	_, err := database.WaterBar.Exec(query, params...)
	return true, err
}

func DeleteProduct(id int64) error {
	_, err := database.WaterBar.Exec(`DELETE FROM products WHERE id = $1`, id)
	return err
}

// ListActiveWithSoldToday returns every active product together with the
// quantity committed on the given civil day, so the storefront can show the
// remaining headroom.
func ListActiveWithSoldToday(day string) ([]ProductWithSold, error) {
	rows, err := database.WaterBar.Query(`
		SELECT
			p.id, p.name, p.price, COALESCE(p.img, ''), p.hot, p.max_per_day, p.active,
			COALESCE(SUM(
				CASE
					WHEN o.cancelled = FALSE
					 AND (o.created_at AT TIME ZONE 'Asia/Shanghai')::date = $1::date
					THEN oi.qty
					ELSE 0
				END
			), 0) AS sold_today
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		LEFT JOIN orders o ON oi.order_id = o.id
		WHERE p.active = TRUE
		GROUP BY p.id
		ORDER BY p.id`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductWithSold
	for rows.Next() {
		var p ProductWithSold
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Img, &p.Hot,
			&p.MaxPerDay, &p.Active, &p.SoldToday); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
