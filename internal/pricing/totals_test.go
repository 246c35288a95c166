package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotalsWithGST(t *testing.T) {
	lines := []Line{
		{Qty: 60, UnitPrice: dec("90"), GSTPercent: dec("18")},
		{Qty: 10, UnitPrice: dec("12.50"), GSTPercent: dec("5")},
	}
	got := ComputeTotals(lines, dec("40"), dec("25"), dec("100"))
	if !got.Subtotal.Equal(dec("5525")) {
		t.Fatalf("expected subtotal 5525, got %s", got.Subtotal)
	}
	// 5400*0.18 + 125*0.05 = 972 + 6.25
	if !got.Tax.Equal(dec("978.25")) {
		t.Fatalf("expected tax 978.25, got %s", got.Tax)
	}
	if !got.Total.Equal(dec("6468.25")) {
		t.Fatalf("expected total 6468.25, got %s", got.Total)
	}
}

func TestComputeTotalsNegativeNotClamped(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: dec("10"), GSTPercent: decimal.Zero}}
	got := ComputeTotals(lines, decimal.Zero, decimal.Zero, dec("50"))
	if !got.Total.Equal(dec("-40")) {
		t.Fatalf("expected -40 total to surface, got %s", got.Total)
	}
}

func TestComputeTotalsSkipsNonPositiveQty(t *testing.T) {
	lines := []Line{
		{Qty: 0, UnitPrice: dec("10"), GSTPercent: dec("18")},
		{Qty: -3, UnitPrice: dec("10"), GSTPercent: dec("18")},
		{Qty: 2, UnitPrice: dec("10"), GSTPercent: decimal.Zero},
	}
	got := ComputeTotals(lines, decimal.Zero, decimal.Zero, decimal.Zero)
	if !got.Total.Equal(dec("20")) {
		t.Fatalf("expected total 20, got %s", got.Total)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []Line{
		{Qty: 7, UnitPrice: dec("33.33"), GSTPercent: dec("12")},
		{Qty: 13, UnitPrice: dec("0.07"), GSTPercent: dec("18")},
	}
	first := ComputeTotals(lines, dec("15"), decimal.Zero, dec("3.50"))
	second := ComputeTotals(lines, dec("15"), decimal.Zero, dec("3.50"))
	if first.Subtotal.String() != second.Subtotal.String() ||
		first.Tax.String() != second.Tax.String() ||
		first.Total.String() != second.Total.String() {
		t.Fatalf("recomputation drifted: %+v vs %+v", first, second)
	}
}

func TestSplitAdvance(t *testing.T) {
	paid, pending := SplitAdvance(dec("1000.01"), dec("30"))
	if !paid.Equal(dec("300")) {
		t.Fatalf("expected advance 300, got %s", paid)
	}
	if !pending.Equal(dec("700.01")) {
		t.Fatalf("expected pending 700.01, got %s", pending)
	}
	if !paid.Add(pending).Equal(dec("1000.01")) {
		t.Fatalf("paid + pending must equal the rounded total")
	}
}

func TestSplitAdvanceBounds(t *testing.T) {
	paid, pending := SplitAdvance(dec("500"), decimal.Zero)
	if !paid.IsZero() || !pending.Equal(dec("500")) {
		t.Fatalf("expected full pending at 0%%, got paid=%s pending=%s", paid, pending)
	}
	paid, pending = SplitAdvance(dec("500"), dec("100"))
	if !paid.Equal(dec("500")) || !pending.IsZero() {
		t.Fatalf("expected full payment at 100%%, got paid=%s pending=%s", paid, pending)
	}
}

// Scenario from the storefront: unitSet 5, per-piece 100, tiers 10-19 sets at
// 90 and 20+ sets at 80.
func TestBulkPricingScenario(t *testing.T) {
	tiers := []Tier{
		{Minimum: 10, Maximum: maxSets(19), UnitPrice: dec("90")},
		{Minimum: 20, UnitPrice: dec("80")},
	}
	perPiece := dec("100")

	unit := UnitPrice(tiers, 5, 60, perPiece)
	if !unit.Equal(dec("90")) {
		t.Fatalf("expected 90 for 12 sets, got %s", unit)
	}
	line := Line{Qty: 60, UnitPrice: unit}
	net, _, _ := line.Amounts()
	if !net.Equal(dec("5400")) {
		t.Fatalf("expected line total 5400, got %s", net)
	}

	unit = UnitPrice(tiers, 5, 120, perPiece)
	if !unit.Equal(dec("80")) {
		t.Fatalf("expected 80 for 24 sets, got %s", unit)
	}
	line = Line{Qty: 120, UnitPrice: unit}
	net, _, _ = line.Amounts()
	if !net.Equal(dec("9600")) {
		t.Fatalf("expected line total 9600, got %s", net)
	}
}
