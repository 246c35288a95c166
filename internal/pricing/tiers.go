// Package pricing implements bulk-tier price resolution, quantity
// normalisation and order totals calculation. Everything in this package is
// pure: callers own all persistence and locking.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier maps a quantity range to a discounted unit price. Minimum and Maximum
// are expressed in unit-set multiples; the base-unit threshold is obtained by
// multiplying with the product's unit set. A nil Maximum means the range is
// unbounded above.
type Tier struct {
	Minimum   int64
	Maximum   *int64
	UnitPrice decimal.Decimal
}

// contains reports whether qty (in base units) falls inside the tier range.
func (t Tier) contains(unitSet, qty int64) bool {
	if qty < t.Minimum*unitSet {
		return false
	}
	return t.Maximum == nil || qty <= *t.Maximum*unitSet
}

// ValidTiers drops malformed tier rows: a non-positive minimum, a non-positive
// maximum, or a negative price. Catalog data does not enforce tier shape, so
// bad rows are skipped rather than treated as fatal. Callers that care about
// data quality can compare input and output lengths.
func ValidTiers(tiers []Tier) []Tier {
	valid := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.Minimum <= 0 {
			continue
		}
		if t.Maximum != nil && *t.Maximum <= 0 {
			continue
		}
		if t.UnitPrice.IsNegative() {
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// ResolveTier picks the bulk tier applying to qty base units, or nil when no
// tier matches and the caller should fall back to the per-piece price.
//
// Tiers are walked in descending-minimum order. The highest tier applies to
// any quantity at or above its threshold regardless of its stated maximum, so
// the best bulk price never degrades as the quantity keeps growing.
func ResolveTier(tiers []Tier, unitSet, qty int64) *Tier {
	if unitSet <= 0 || qty <= 0 {
		return nil
	}
	valid := ValidTiers(tiers)
	if len(valid) == 0 {
		return nil
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Minimum > valid[j].Minimum
	})
	if qty >= valid[0].Minimum*unitSet {
		top := valid[0]
		return &top
	}
	for _, t := range valid[1:] {
		if t.contains(unitSet, qty) {
			match := t
			return &match
		}
	}
	return nil
}

// UnitPrice resolves the effective per-unit price for qty base units,
// falling back to perPiece when no bulk tier applies.
func UnitPrice(tiers []Tier, unitSet, qty int64, perPiece decimal.Decimal) decimal.Decimal {
	if t := ResolveTier(tiers, unitSet, qty); t != nil {
		return t.UnitPrice
	}
	return perPiece
}
