package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/obs"
	"github.com/noah-isme/backend-mandi/internal/pricing"
)

// ErrNotFound indicates the requested cart line could not be located.
var ErrNotFound = errors.New("cart line not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrProductUnavailable indicates the referenced product is missing or inactive.
var ErrProductUnavailable = errors.New("product unavailable")

// ErrStockExceeded indicates the requested quantity is above available stock.
// The cart line keeps its prior quantity; nothing is truncated.
var ErrStockExceeded = errors.New("stock exceeded")

// Store is the persistence surface the cart service needs.
type Store interface {
	GetProduct(ctx context.Context, id uuid.UUID) (db.Product, error)
	GetCartLine(ctx context.Context, userID, productID uuid.UUID) (db.CartLine, error)
	ListCartLines(ctx context.Context, userID uuid.UUID) ([]db.CartLine, error)
	UpsertCartLine(ctx context.Context, line db.CartLine) error
	DeleteCartLine(ctx context.Context, userID, productID uuid.UUID) error
}

// Locker serialises mutations per cart-line key. Reconciliation must always
// start from the latest persisted quantity; without this two concurrent
// increments race and one is lost.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// ProductTiers converts stored tier rows into pricing tiers.
func ProductTiers(p db.Product) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		tiers = append(tiers, pricing.Tier{Minimum: t.MinimumSets, Maximum: t.MaximumSets, UnitPrice: t.UnitPrice})
	}
	return tiers
}

// Result is the authoritative outcome of reconciling one cart line.
type Result struct {
	// Remove signals a tombstone: the line must be deleted and never
	// persisted with quantity zero.
	Remove bool
	Line   db.CartLine
	Tier   *pricing.Tier
	Total  decimal.Decimal
}

// Reconcile merges a requested quantity with the server-held line (nil when
// adding) and produces the new line snapshot. It is pure; persistence of the
// result is the caller's job.
func Reconcile(line *db.CartLine, product db.Product, userID uuid.UUID, requested int64) (Result, error) {
	if !product.Active {
		return Result{}, ErrProductUnavailable
	}
	if requested < 0 {
		return Result{}, fmt.Errorf("requested quantity must not be negative: %w", pricing.ErrInvalidQuantity)
	}
	if requested == 0 {
		return Result{Remove: true, Total: decimal.Zero}, nil
	}
	if requested > product.Stock {
		return Result{}, fmt.Errorf("only %d in stock: %w", product.Stock, ErrStockExceeded)
	}
	tiers := ProductTiers(product)
	tier := pricing.ResolveTier(tiers, product.UnitSet, requested)
	unit := product.PerPiecePrice
	var tierMin *int64
	if tier != nil {
		unit = tier.UnitPrice
		m := tier.Minimum
		tierMin = &m
	}
	next := db.CartLine{
		UserID:      userID,
		ProductID:   product.ID,
		Qty:         requested,
		UnitPrice:   unit,
		TierMinimum: tierMin,
	}
	return Result{Line: next, Tier: tier, Total: unit.Mul(decimal.NewFromInt(requested))}, nil
}

// Service encapsulates cart domain operations.
type Service struct {
	Store   Store
	Locker  Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

func (s *Service) lockTTL() time.Duration {
	if s == nil || s.LockTTL <= 0 {
		return 5 * time.Second
	}
	return s.LockTTL
}

func lockKey(userID, productID uuid.UUID) string {
	return "cartline:" + userID.String() + ":" + productID.String()
}

// Add puts sets unit-sets of the product into the cart, incrementing any
// existing line.
func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID, sets int64) (Result, error) {
	if sets <= 0 {
		return Result{}, fmt.Errorf("sets must be positive: %w", ErrInvalidInput)
	}
	return s.apply(ctx, userID, productID, func(current int64, p db.Product) (pricing.NormalizeResult, error) {
		if p.UnitSet > 0 && sets > math.MaxInt64/p.UnitSet {
			return pricing.NormalizeResult{}, fmt.Errorf("%d sets of %d overflows: %w", sets, p.UnitSet, pricing.ErrInvalidQuantity)
		}
		return pricing.Normalize(current, sets*p.UnitSet, p.UnitSet, p.Stock)
	})
}

// Step increments (+1) or decrements (-1) the line by one unit set.
func (s *Service) Step(ctx context.Context, userID, productID uuid.UUID, direction int) (Result, error) {
	if direction != 1 && direction != -1 {
		return Result{}, fmt.Errorf("direction must be +1 or -1: %w", ErrInvalidInput)
	}
	return s.apply(ctx, userID, productID, func(current int64, p db.Product) (pricing.NormalizeResult, error) {
		return pricing.Normalize(current, int64(direction)*p.UnitSet, p.UnitSet, p.Stock)
	})
}

// SetQuantity replaces the line quantity with a directly entered base-unit
// amount, which must be a whole unit-set multiple.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int64) (Result, error) {
	if qty < 0 {
		return Result{}, fmt.Errorf("qty must not be negative: %w", ErrInvalidInput)
	}
	return s.apply(ctx, userID, productID, func(current int64, p db.Product) (pricing.NormalizeResult, error) {
		if !pricing.IsSetMultiple(qty, p.UnitSet) {
			return pricing.NormalizeResult{}, fmt.Errorf("qty must be a multiple of %d: %w", p.UnitSet, pricing.ErrInvalidQuantity)
		}
		return pricing.Normalize(current, qty-current, p.UnitSet, p.Stock)
	})
}

// Remove deletes the line regardless of quantity.
func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	key := lockKey(userID, productID)
	return s.withLock(ctx, key, func(ctx context.Context) error {
		return s.Store.DeleteCartLine(ctx, userID, productID)
	})
}

func (s *Service) withLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	return s.Locker.WithLock(ctx, key, s.lockTTL(), fn)
}

// apply runs one serialized read-normalise-reconcile-persist cycle for the
// (user, product) line.
func (s *Service) apply(ctx context.Context, userID, productID uuid.UUID, normalize func(current int64, p db.Product) (pricing.NormalizeResult, error)) (Result, error) {
	if s == nil || s.Store == nil {
		return Result{}, errors.New("cart service not configured")
	}
	var out Result
	err := s.withLock(ctx, lockKey(userID, productID), func(ctx context.Context) error {
		product, err := s.Store.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrProductUnavailable
			}
			return err
		}
		if !product.Active {
			return ErrProductUnavailable
		}
		s.noteSkippedTiers(product)

		var current int64
		var existing *db.CartLine
		line, err := s.Store.GetCartLine(ctx, userID, productID)
		switch {
		case err == nil:
			current = line.Qty
			existing = &line
		case errors.Is(err, db.ErrNotFound):
		default:
			return err
		}

		res, err := normalize(current, product)
		if err != nil {
			return err
		}
		if res.Exceeded {
			obs.ObserveStockRejection()
			return common.NewAppError("STOCK_EXCEEDED",
				fmt.Sprintf("only %d units available", product.Stock),
				http.StatusConflict,
				fmt.Errorf("requested above stock %d: %w", product.Stock, ErrStockExceeded))
		}

		rec, err := Reconcile(existing, product, userID, res.Quantity)
		if err != nil {
			return err
		}
		if rec.Remove {
			if err := s.Store.DeleteCartLine(ctx, userID, productID); err != nil {
				return err
			}
			obs.ObserveCartReconcile("removed")
			out = rec
			return nil
		}
		if err := s.Store.UpsertCartLine(ctx, rec.Line); err != nil {
			return err
		}
		obs.ObserveCartReconcile("persisted")
		out = rec
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return out, nil
}

func (s *Service) noteSkippedTiers(p db.Product) {
	tiers := ProductTiers(p)
	skipped := len(tiers) - len(pricing.ValidTiers(tiers))
	if skipped > 0 {
		obs.ObserveTierRowsSkipped(skipped)
		s.Logger.Warn().
			Str("product_id", p.ID.String()).
			Int("skipped", skipped).
			Msg("malformed bulk tier rows skipped")
	}
}

// LineView is a cart line enriched for display.
type LineView struct {
	ProductID   uuid.UUID
	Name        string
	Qty         int64
	Sets        int64
	UnitPrice   decimal.Decimal
	TierMinimum *int64
	Total       decimal.Decimal
	Unavailable bool
}

// View returns the server-confirmed cart contents plus a totals preview.
// Lines whose product is missing or inactive are marked unavailable and
// excluded from totals instead of failing the whole cart.
func (s *Service) View(ctx context.Context, userID uuid.UUID) ([]LineView, pricing.Totals, error) {
	if s == nil || s.Store == nil {
		return nil, pricing.Totals{}, errors.New("cart service not configured")
	}
	lines, err := s.Store.ListCartLines(ctx, userID)
	if err != nil {
		return nil, pricing.Totals{}, err
	}
	views := make([]LineView, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		view := LineView{
			ProductID:   l.ProductID,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			TierMinimum: l.TierMinimum,
			Total:       l.UnitPrice.Mul(decimal.NewFromInt(l.Qty)),
		}
		product, err := s.Store.GetProduct(ctx, l.ProductID)
		if err != nil || !product.Active {
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, pricing.Totals{}, err
			}
			view.Unavailable = true
			views = append(views, view)
			continue
		}
		view.Name = product.Name
		if product.UnitSet > 0 {
			view.Sets = l.Qty / product.UnitSet
		}
		views = append(views, view)
		priced = append(priced, pricing.Line{Qty: l.Qty, UnitPrice: l.UnitPrice, GSTPercent: product.GSTPercent})
	}
	totals := pricing.ComputeTotals(priced, decimal.Zero, decimal.Zero, decimal.Zero)
	return views, totals, nil
}
