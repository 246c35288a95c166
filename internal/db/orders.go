package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Fulfillment-side transitions beyond cancellation are owned
// by the admin back office.
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCanceled  = "CANCELED"
)

// Order is a checkout snapshot. Monetary fields are rounded to two decimal
// places at insert time and never recomputed from live catalog data.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          string
	PaymentMode     string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	DeliveryCharges decimal.Decimal
	CODCharges      decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountPending   decimal.Decimal
	Address         []byte
	Notes           *string
	CreatedAt       time.Time
}

// OrderItem is an independent line snapshot; later catalog changes never
// alter it.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Name        string
	Qty         int64
	UnitPrice   decimal.Decimal
	NetAmount   decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

const orderColumns = `id, user_id, status, payment_mode, subtotal, tax, delivery_charges, cod_charges, discount, total, amount_paid, amount_pending, address, notes, created_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentMode, &o.Subtotal, &o.Tax,
		&o.DeliveryCharges, &o.CODCharges, &o.Discount, &o.Total, &o.AmountPaid,
		&o.AmountPending, &o.Address, &o.Notes, &o.CreatedAt)
	return o, err
}

// CreateOrderParams holds the computed order header written at checkout.
type CreateOrderParams struct {
	UserID          uuid.UUID
	Status          string
	PaymentMode     string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	DeliveryCharges decimal.Decimal
	CODCharges      decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountPending   decimal.Decimal
	Address         []byte
	Notes           *string
}

// CreateOrder inserts the order header.
func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := s.q.QueryRow(ctx,
		`INSERT INTO orders (user_id, status, payment_mode, subtotal, tax, delivery_charges,
		                     cod_charges, discount, total, amount_paid, amount_pending, address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+orderColumns,
		arg.UserID, arg.Status, arg.PaymentMode, arg.Subtotal, arg.Tax, arg.DeliveryCharges,
		arg.CODCharges, arg.Discount, arg.Total, arg.AmountPaid, arg.AmountPending, arg.Address, arg.Notes)
	return scanOrder(row)
}

// CreateOrderItem inserts one line snapshot.
func (s *Store) CreateOrderItem(ctx context.Context, item OrderItem) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, name, qty, unit_price, net_amount, tax_amount, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.OrderID, item.ProductID, item.Name, item.Qty, item.UnitPrice,
		item.NetAmount, item.TaxAmount, item.TotalAmount)
	return err
}

// GetOrderForUser loads an order owned by the user.
func (s *Store) GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (Order, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, notFound(err)
	}
	return o, nil
}

// GetOrder loads an order regardless of owner (admin paths).
func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (Order, error) {
	row := s.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, notFound(err)
	}
	return o, nil
}

// ListOrdersForUser pages the user's order history, newest first, and returns
// the unpaged count.
func (s *Store) ListOrdersForUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]Order, int64, error) {
	var total int64
	if err := s.q.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// ListOrders pages all orders for the admin dashboard, optionally by status.
func (s *Store) ListOrders(ctx context.Context, status *string, limit, offset int32) ([]Order, int64, error) {
	var total int64
	if err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE ($1::text IS NULL OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE ($1::text IS NULL OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// ListOrderItems returns the line snapshots of an order.
func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, order_id, product_id, name, qty, unit_price, net_amount, tax_amount, total_amount
		 FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Qty,
			&it.UnitPrice, &it.NetAmount, &it.TaxAmount, &it.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderStatus sets the order status.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	tag, err := s.q.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertDomainEvent persists an emitted event for the audit trail.
func (s *Store) InsertDomainEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)`,
		topic, aggregateID, payload)
	return err
}
