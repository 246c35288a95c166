package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesDay aggregates orders placed on one calendar day. Canceled orders are
// excluded.
type SalesDay struct {
	Day     time.Time
	Orders  int64
	Units   int64
	Revenue decimal.Decimal
}

// TopProduct ranks a product by revenue across the queried window.
type TopProduct struct {
	ProductID uuid.UUID
	Name      string
	Units     int64
	Revenue   decimal.Decimal
}

// SalesDaily aggregates order totals per day in [from, to).
func (s *Store) SalesDaily(ctx context.Context, from, to time.Time) ([]SalesDay, error) {
	rows, err := s.q.Query(ctx,
		`SELECT day, count(*), coalesce(sum(units), 0), coalesce(sum(total), 0)
		 FROM (
		     SELECT date_trunc('day', o.created_at) AS day,
		            o.total,
		            (SELECT coalesce(sum(oi.qty), 0) FROM order_items oi WHERE oi.order_id = o.id) AS units
		     FROM orders o
		     WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> $3
		 ) t
		 GROUP BY day
		 ORDER BY day`,
		from, to, OrderStatusCanceled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var days []SalesDay
	for rows.Next() {
		var d SalesDay
		if err := rows.Scan(&d.Day, &d.Orders, &d.Units, &d.Revenue); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// TopProducts ranks products by revenue over [from, to), excluding canceled
// orders.
func (s *Store) TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]TopProduct, error) {
	rows, err := s.q.Query(ctx,
		`SELECT oi.product_id, max(oi.name), coalesce(sum(oi.qty), 0), coalesce(sum(oi.total_amount), 0)
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> $3
		 GROUP BY oi.product_id
		 ORDER BY sum(oi.total_amount) DESC
		 LIMIT $4`,
		from, to, OrderStatusCanceled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units, &p.Revenue); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
