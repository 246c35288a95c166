package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is a priced order line used for totals calculation. GSTPercent is the
// tax rate captured on the product snapshot, not a global rate.
type Line struct {
	Qty        int64
	UnitPrice  decimal.Decimal
	GSTPercent decimal.Decimal
}

// Amounts returns the net, tax and gross amount for the line. No rounding is
// applied here; amounts are rounded once at the persistence boundary.
func (l Line) Amounts() (net, tax, gross decimal.Decimal) {
	net = l.UnitPrice.Mul(decimal.NewFromInt(l.Qty))
	tax = net.Mul(l.GSTPercent).Div(hundred)
	return net, tax, net.Add(tax)
}

// Totals aggregates computed order pricing components.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals aggregates line totals, per-line GST, delivery and COD charges
// and the order discount. A discount exceeding the charges yields a negative
// total on purpose: that is a data-entry problem to surface upstream, not
// something to clamp silently. Intermediate results are kept at full decimal
// precision so recomputation from the same snapshots is always identical.
func ComputeTotals(lines []Line, delivery, cod, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		net, lineTax, _ := l.Amounts()
		subtotal = subtotal.Add(net)
		tax = tax.Add(lineTax)
	}
	total := subtotal.Add(tax).Add(delivery).Add(cod).Sub(discount)
	return Totals{Subtotal: subtotal, Tax: tax, Total: total}
}

// SplitAdvance divides a total into the upfront amount collected now and the
// pending balance for advance-payment orders. Both sides are rounded to two
// decimal places and always sum to the rounded total.
func SplitAdvance(total decimal.Decimal, advancePercent decimal.Decimal) (paid, pending decimal.Decimal) {
	rounded := total.Round(2)
	if advancePercent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero.Round(2), rounded
	}
	if advancePercent.GreaterThanOrEqual(hundred) {
		return rounded, decimal.Zero.Round(2)
	}
	paid = total.Mul(advancePercent).Div(hundred).Round(2)
	pending = rounded.Sub(paid)
	return paid, pending
}
