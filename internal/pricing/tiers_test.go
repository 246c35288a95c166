package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func maxSets(v int64) *int64 {
	return &v
}

func TestResolveTierRangeMatch(t *testing.T) {
	tiers := []Tier{
		{Minimum: 10, Maximum: maxSets(19), UnitPrice: price(90)},
		{Minimum: 20, UnitPrice: price(80)},
	}
	got := ResolveTier(tiers, 5, 60)
	if got == nil {
		t.Fatalf("expected a tier for 60 base units")
	}
	if !got.UnitPrice.Equal(price(90)) {
		t.Fatalf("expected unit price 90, got %s", got.UnitPrice)
	}
}

func TestResolveTierTopTierShortCircuit(t *testing.T) {
	tiers := []Tier{
		{Minimum: 10, Maximum: maxSets(20), UnitPrice: price(9)},
		{Minimum: 21, UnitPrice: price(8)},
	}
	got := ResolveTier(tiers, 1, 100)
	if got == nil {
		t.Fatalf("expected the top tier for quantity 100")
	}
	if !got.UnitPrice.Equal(price(8)) {
		t.Fatalf("expected unit price 8, got %s", got.UnitPrice)
	}

	// The top tier applies even when the quantity exceeds its own maximum.
	capped := []Tier{
		{Minimum: 10, Maximum: maxSets(20), UnitPrice: price(9)},
		{Minimum: 21, Maximum: maxSets(30), UnitPrice: price(8)},
	}
	got = ResolveTier(capped, 1, 500)
	if got == nil || !got.UnitPrice.Equal(price(8)) {
		t.Fatalf("expected top tier beyond its stated maximum, got %+v", got)
	}
}

func TestResolveTierNoMatch(t *testing.T) {
	if got := ResolveTier(nil, 1, 5); got != nil {
		t.Fatalf("expected nil for empty tier table, got %+v", got)
	}
	tiers := []Tier{{Minimum: 10, Maximum: maxSets(20), UnitPrice: price(9)}}
	if got := ResolveTier(tiers, 1, 5); got != nil {
		t.Fatalf("expected nil below the lowest tier, got %+v", got)
	}
}

func TestResolveTierSkipsMalformed(t *testing.T) {
	tiers := []Tier{
		{Minimum: 0, UnitPrice: price(1)},
		{Minimum: -3, UnitPrice: price(2)},
		{Minimum: 5, Maximum: maxSets(-1), UnitPrice: price(3)},
		{Minimum: 2, UnitPrice: price(7)},
	}
	got := ResolveTier(tiers, 1, 4)
	if got == nil || !got.UnitPrice.Equal(price(7)) {
		t.Fatalf("expected the single valid tier, got %+v", got)
	}
	if len(ValidTiers(tiers)) != 1 {
		t.Fatalf("expected 1 valid tier, got %d", len(ValidTiers(tiers)))
	}
}

func TestResolveTierInvalidInputs(t *testing.T) {
	tiers := []Tier{{Minimum: 1, UnitPrice: price(5)}}
	if got := ResolveTier(tiers, 0, 10); got != nil {
		t.Fatalf("expected nil for zero unit set")
	}
	if got := ResolveTier(tiers, 1, 0); got != nil {
		t.Fatalf("expected nil for zero quantity")
	}
}

func TestUnitPriceFallback(t *testing.T) {
	perPiece := price(100)
	if got := UnitPrice(nil, 1, 5, perPiece); !got.Equal(perPiece) {
		t.Fatalf("expected per-piece fallback 100, got %s", got)
	}
	tiers := []Tier{{Minimum: 2, UnitPrice: price(90)}}
	if got := UnitPrice(tiers, 1, 5, perPiece); !got.Equal(price(90)) {
		t.Fatalf("expected tier price 90, got %s", got)
	}
}

func TestUnitPriceMonotonic(t *testing.T) {
	tiers := []Tier{
		{Minimum: 10, Maximum: maxSets(19), UnitPrice: price(90)},
		{Minimum: 20, Maximum: maxSets(49), UnitPrice: price(80)},
		{Minimum: 50, UnitPrice: price(70)},
	}
	perPiece := price(100)
	prev := UnitPrice(tiers, 5, 5, perPiece)
	for qty := int64(10); qty <= 400; qty += 5 {
		cur := UnitPrice(tiers, 5, qty, perPiece)
		if cur.GreaterThan(prev) {
			t.Fatalf("unit price rose from %s to %s at quantity %d", prev, cur, qty)
		}
		prev = cur
	}
}
