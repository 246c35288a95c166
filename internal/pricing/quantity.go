package pricing

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity is returned for inputs the normaliser cannot work with.
var ErrInvalidQuantity = errors.New("invalid quantity")

// NormalizeResult carries the outcome of a quantity change request.
type NormalizeResult struct {
	// Quantity is the new authoritative quantity in base units. When
	// Exceeded is set it is unchanged from the current quantity.
	Quantity int64
	// Removed signals the quantity reached zero and the cart line must be
	// deleted, never persisted with a zero quantity.
	Removed bool
	// Clamped signals the raw result was negative and floored to zero.
	Clamped bool
	// Exceeded signals the requested quantity is above stock. The request
	// is rejected, not truncated: the caller surfaces the limit to the
	// user and keeps the prior quantity.
	Exceeded bool
}

// Normalize applies a signed quantity delta to the current base-unit quantity,
// flooring at zero and rejecting results above stock. delta is ±unitSet for a
// single step or an arbitrary signed value for direct entry.
func Normalize(current, delta, unitSet, stock int64) (NormalizeResult, error) {
	if unitSet <= 0 {
		return NormalizeResult{}, fmt.Errorf("unit set must be positive: %w", ErrInvalidQuantity)
	}
	if current < 0 {
		return NormalizeResult{}, fmt.Errorf("current quantity must not be negative: %w", ErrInvalidQuantity)
	}
	if stock < 0 {
		stock = 0
	}
	raw := current + delta
	if delta > 0 && raw < current {
		return NormalizeResult{}, fmt.Errorf("quantity delta overflows: %w", ErrInvalidQuantity)
	}
	clamped := false
	if raw < 0 {
		raw = 0
		clamped = true
	}
	if raw > stock {
		return NormalizeResult{Quantity: current, Exceeded: true}, nil
	}
	return NormalizeResult{Quantity: raw, Removed: raw == 0, Clamped: clamped}, nil
}

// IsSetMultiple reports whether qty is a whole multiple of the unit set.
// Direct quantity entry is validated with this; step operations produce
// multiples by construction.
func IsSetMultiple(qty, unitSet int64) bool {
	if unitSet <= 0 {
		return false
	}
	return qty%unitSet == 0
}
