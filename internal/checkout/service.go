// Package checkout converts a reconciled cart into an immutable order
// snapshot. Prices are re-resolved from the live catalog inside the checkout
// transaction so a stale cart line can never buy at an outdated tier.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-mandi/internal/cart"
	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/events"
	"github.com/noah-isme/backend-mandi/internal/obs"
	"github.com/noah-isme/backend-mandi/internal/pricing"
)

// Payment modes accepted at checkout.
const (
	PaymentCOD     = "COD"
	PaymentPrepaid = "PREPAID"
	PaymentAdvance = "ADVANCE"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidPaymentMode is returned for an unrecognised payment mode.
	ErrInvalidPaymentMode = errors.New("invalid payment mode")
	// ErrProductUnavailable indicates a cart line references a missing or
	// inactive product.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrStockExceeded indicates stock changed between cart reconciliation
	// and checkout. The cart is left untouched so the buyer can adjust.
	ErrStockExceeded = errors.New("stock exceeded")
)

// Address is the delivery address captured on the order.
type Address struct {
	ReceiverName string `json:"receiverName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Pincode      string `json:"pincode" validate:"required"`
}

// Input is the checkout request.
type Input struct {
	PaymentMode string  `json:"paymentMode"`
	Address     Address `json:"address"`
	Notes       *string `json:"notes"`
}

// PricingConfig carries the charge knobs applied on top of item totals.
type PricingConfig struct {
	DeliveryCharge    decimal.Decimal
	FreeDeliveryAbove decimal.Decimal
	CODCharge         decimal.Decimal
	AdvancePercent    decimal.Decimal
}

// DraftLine is one priced order line before persistence.
type DraftLine struct {
	ProductID   uuid.UUID
	Name        string
	Qty         int64
	UnitPrice   decimal.Decimal
	NetAmount   decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// Draft is the fully priced order before it is written.
type Draft struct {
	Lines           []DraftLine
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	DeliveryCharges decimal.Decimal
	CODCharges      decimal.Decimal
	Total           decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountPending   decimal.Decimal
}

// BuildDraft re-resolves every cart line against the live products and prices
// the order. It is pure so the tier re-resolution and charge rules can be
// tested without a database.
func BuildDraft(lines []db.CartLine, products map[uuid.UUID]db.Product, paymentMode string, cfg PricingConfig) (Draft, error) {
	if len(lines) == 0 {
		return Draft{}, ErrEmptyCart
	}
	switch paymentMode {
	case PaymentCOD, PaymentPrepaid, PaymentAdvance:
	default:
		return Draft{}, fmt.Errorf("%q: %w", paymentMode, ErrInvalidPaymentMode)
	}

	draft := Draft{Lines: make([]DraftLine, 0, len(lines))}
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		product, ok := products[l.ProductID]
		if !ok || !product.Active {
			return Draft{}, fmt.Errorf("product %s: %w", l.ProductID, ErrProductUnavailable)
		}
		if l.Qty > product.Stock {
			return Draft{}, fmt.Errorf("product %s: only %d in stock: %w", l.ProductID, product.Stock, ErrStockExceeded)
		}
		unit := product.PerPiecePrice
		if tier := pricing.ResolveTier(cart.ProductTiers(product), product.UnitSet, l.Qty); tier != nil {
			unit = tier.UnitPrice
		}
		pl := pricing.Line{Qty: l.Qty, UnitPrice: unit, GSTPercent: product.GSTPercent}
		net, tax, gross := pl.Amounts()
		draft.Lines = append(draft.Lines, DraftLine{
			ProductID:   l.ProductID,
			Name:        product.Name,
			Qty:         l.Qty,
			UnitPrice:   unit,
			NetAmount:   net,
			TaxAmount:   tax,
			TotalAmount: gross,
		})
		priced = append(priced, pl)
	}

	itemTotals := pricing.ComputeTotals(priced, decimal.Zero, decimal.Zero, decimal.Zero)
	delivery := cfg.DeliveryCharge
	if cfg.FreeDeliveryAbove.IsPositive() && itemTotals.Total.GreaterThanOrEqual(cfg.FreeDeliveryAbove) {
		delivery = decimal.Zero
	}
	cod := decimal.Zero
	if paymentMode == PaymentCOD {
		cod = cfg.CODCharge
	}
	totals := pricing.ComputeTotals(priced, delivery, cod, decimal.Zero)

	draft.Subtotal = totals.Subtotal
	draft.Tax = totals.Tax
	draft.DeliveryCharges = delivery
	draft.CODCharges = cod
	draft.Total = totals.Total

	switch paymentMode {
	case PaymentCOD:
		draft.AmountPaid = decimal.Zero
		draft.AmountPending = totals.Total.Round(2)
	case PaymentPrepaid:
		draft.AmountPaid = totals.Total.Round(2)
		draft.AmountPending = decimal.Zero
	case PaymentAdvance:
		draft.AmountPaid, draft.AmountPending = pricing.SplitAdvance(totals.Total, cfg.AdvancePercent)
	}
	return draft, nil
}

// Service performs checkout against Postgres.
type Service struct {
	Pool   *pgxpool.Pool
	Store  *db.Store
	Cfg    PricingConfig
	Events *events.Bus
	Logger zerolog.Logger
}

// Output is the checkout response body.
type Output struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	PaymentMode   string `json:"paymentMode"`
	Total         string `json:"total"`
	AmountPaid    string `json:"amountPaid"`
	AmountPending string `json:"amountPending"`
}

// Create places an order from the user's current cart. Stock is decremented
// with a conditional update inside the transaction; any line that cannot be
// covered aborts the whole checkout.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (Output, error) {
	if s == nil || s.Pool == nil || s.Store == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	start := time.Now()

	address, err := json.Marshal(in.Address)
	if err != nil {
		return Output{}, fmt.Errorf("encode address: %w", err)
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	store := s.Store.WithTx(tx)

	lines, err := store.ListCartLines(ctx, userID)
	if err != nil {
		return Output{}, err
	}
	if len(lines) == 0 {
		return Output{}, ErrEmptyCart
	}

	products := make(map[uuid.UUID]db.Product, len(lines))
	for _, l := range lines {
		p, err := store.GetProduct(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return Output{}, fmt.Errorf("product %s: %w", l.ProductID, ErrProductUnavailable)
			}
			return Output{}, err
		}
		products[l.ProductID] = p
	}

	draft, err := BuildDraft(lines, products, in.PaymentMode, s.Cfg)
	if err != nil {
		obs.ObserveOrderPlaced(in.PaymentMode, "rejected")
		return Output{}, err
	}

	for _, dl := range draft.Lines {
		ok, err := store.DecrementStock(ctx, dl.ProductID, dl.Qty)
		if err != nil {
			return Output{}, err
		}
		if !ok {
			obs.ObserveOrderPlaced(in.PaymentMode, "rejected")
			return Output{}, fmt.Errorf("product %s: %w", dl.ProductID, ErrStockExceeded)
		}
	}

	order, err := store.CreateOrder(ctx, db.CreateOrderParams{
		UserID:          userID,
		Status:          db.OrderStatusPlaced,
		PaymentMode:     in.PaymentMode,
		Subtotal:        draft.Subtotal.Round(2),
		Tax:             draft.Tax.Round(2),
		DeliveryCharges: draft.DeliveryCharges.Round(2),
		CODCharges:      draft.CODCharges.Round(2),
		Discount:        decimal.Zero,
		Total:           draft.Total.Round(2),
		AmountPaid:      draft.AmountPaid,
		AmountPending:   draft.AmountPending,
		Address:         address,
		Notes:           in.Notes,
	})
	if err != nil {
		return Output{}, err
	}
	for _, dl := range draft.Lines {
		if err := store.CreateOrderItem(ctx, db.OrderItem{
			OrderID:     order.ID,
			ProductID:   dl.ProductID,
			Name:        dl.Name,
			Qty:         dl.Qty,
			UnitPrice:   dl.UnitPrice,
			NetAmount:   dl.NetAmount.Round(2),
			TaxAmount:   dl.TaxAmount.Round(2),
			TotalAmount: dl.TotalAmount.Round(2),
		}); err != nil {
			return Output{}, err
		}
	}
	if err := store.ClearCart(ctx, userID); err != nil {
		return Output{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}

	obs.ObserveOrderPlaced(in.PaymentMode, "placed")
	obs.ObserveCheckoutDuration(obs.DurationMillis(time.Since(start)))

	if s.Events != nil {
		payload := map[string]any{
			"orderId":     order.ID.String(),
			"userId":      userID.String(),
			"paymentMode": order.PaymentMode,
			"total":       order.Total.StringFixed(2),
		}
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, order.ID, payload); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("emit order.created")
		}
	}

	return Output{
		OrderID:       order.ID.String(),
		Status:        order.Status,
		PaymentMode:   order.PaymentMode,
		Total:         order.Total.StringFixed(2),
		AmountPaid:    order.AmountPaid.StringFixed(2),
		AmountPending: order.AmountPending.StringFixed(2),
	}, nil
}
