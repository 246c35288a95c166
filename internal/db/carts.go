package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is the persisted cart record keyed by (user, product). Qty is in
// base units and always a positive unit-set multiple; a line with quantity
// zero is deleted, never stored.
type CartLine struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Qty       int64
	UnitPrice decimal.Decimal
	// TierMinimum is the minimum (in sets) of the bulk tier that produced
	// UnitPrice; nil when the per-piece price applied.
	TierMinimum *int64
	UpdatedAt   time.Time
}

const cartLineColumns = `user_id, product_id, qty, unit_price, tier_minimum, updated_at`

// GetCartLine loads the cart line for (user, product).
func (s *Store) GetCartLine(ctx context.Context, userID, productID uuid.UUID) (CartLine, error) {
	var l CartLine
	err := s.q.QueryRow(ctx,
		`SELECT `+cartLineColumns+` FROM cart_lines WHERE user_id = $1 AND product_id = $2`,
		userID, productID).Scan(&l.UserID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.TierMinimum, &l.UpdatedAt)
	if err != nil {
		return CartLine{}, notFound(err)
	}
	return l, nil
}

// ListCartLines returns all lines of a user's cart.
func (s *Store) ListCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+cartLineColumns+` FROM cart_lines WHERE user_id = $1 ORDER BY updated_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.UserID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.TierMinimum, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpsertCartLine writes the authoritative reconciled line.
func (s *Store) UpsertCartLine(ctx context.Context, l CartLine) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO cart_lines (user_id, product_id, qty, unit_price, tier_minimum, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET qty = EXCLUDED.qty, unit_price = EXCLUDED.unit_price,
		               tier_minimum = EXCLUDED.tier_minimum, updated_at = now()`,
		l.UserID, l.ProductID, l.Qty, l.UnitPrice, l.TierMinimum)
	return err
}

// DeleteCartLine removes the line for (user, product). Deleting an absent
// line is not an error: removal is idempotent.
func (s *Store) DeleteCartLine(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

// ClearCart removes every line of the user's cart.
func (s *Store) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	return err
}
