package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-mandi/internal/db"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func maxSets(v int64) *int64 { return &v }

func draftProduct(unitSet, stock int64) db.Product {
	return db.Product{
		ID:            uuid.New(),
		Name:          "Toor Dal 1kg",
		UnitSet:       unitSet,
		PerPiecePrice: dec("100"),
		Stock:         stock,
		GSTPercent:    dec("5"),
		Active:        true,
		Tiers: []db.ProductTier{
			{MinimumSets: 10, MaximumSets: maxSets(19), UnitPrice: dec("90")},
			{MinimumSets: 20, MaximumSets: maxSets(39), UnitPrice: dec("80")},
		},
	}
}

func defaultCfg() PricingConfig {
	return PricingConfig{
		DeliveryCharge:    dec("50"),
		FreeDeliveryAbove: dec("2000"),
		CODCharge:         dec("25"),
		AdvancePercent:    dec("30"),
	}
}

func TestBuildDraftReResolvesTier(t *testing.T) {
	product := draftProduct(5, 500)
	lines := []db.CartLine{{
		UserID:    uuid.New(),
		ProductID: product.ID,
		Qty:       60,
		// Stale per-piece price on the line; the draft must re-resolve it.
		UnitPrice: dec("100"),
	}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	draft, err := BuildDraft(lines, products, PaymentPrepaid, defaultCfg())
	require.NoError(t, err)
	require.Len(t, draft.Lines, 1)
	require.True(t, draft.Lines[0].UnitPrice.Equal(dec("90")), "unit price %s", draft.Lines[0].UnitPrice)
	// 60 * 90 = 5400 net, 5% GST = 270, free delivery above 2000.
	require.True(t, draft.Subtotal.Equal(dec("5400")))
	require.True(t, draft.Tax.Equal(dec("270")))
	require.True(t, draft.DeliveryCharges.IsZero())
	require.True(t, draft.Total.Equal(dec("5670")))
	require.True(t, draft.AmountPaid.Equal(dec("5670")))
	require.True(t, draft.AmountPending.IsZero())
}

func TestBuildDraftCODAddsChargesBelowFreeDelivery(t *testing.T) {
	product := draftProduct(5, 500)
	lines := []db.CartLine{{ProductID: product.ID, Qty: 5, UnitPrice: dec("100")}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	draft, err := BuildDraft(lines, products, PaymentCOD, defaultCfg())
	require.NoError(t, err)
	// 5 * 100 = 500 net + 25 tax = 525 items, below 2000 so delivery applies.
	require.True(t, draft.DeliveryCharges.Equal(dec("50")))
	require.True(t, draft.CODCharges.Equal(dec("25")))
	require.True(t, draft.Total.Equal(dec("600")))
	require.True(t, draft.AmountPaid.IsZero())
	require.True(t, draft.AmountPending.Equal(dec("600")))
}

func TestBuildDraftAdvanceSplitSumsToTotal(t *testing.T) {
	product := draftProduct(5, 500)
	lines := []db.CartLine{{ProductID: product.ID, Qty: 60, UnitPrice: dec("90")}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	draft, err := BuildDraft(lines, products, PaymentAdvance, defaultCfg())
	require.NoError(t, err)
	require.True(t, draft.AmountPaid.Add(draft.AmountPending).Equal(draft.Total.Round(2)))
	require.True(t, draft.AmountPaid.Equal(dec("1701")), "paid %s", draft.AmountPaid)
}

func TestBuildDraftRejectsEmptyCart(t *testing.T) {
	_, err := BuildDraft(nil, nil, PaymentCOD, defaultCfg())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildDraftRejectsUnknownPaymentMode(t *testing.T) {
	product := draftProduct(5, 500)
	lines := []db.CartLine{{ProductID: product.ID, Qty: 5, UnitPrice: dec("100")}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	_, err := BuildDraft(lines, products, "CHEQUE", defaultCfg())
	require.ErrorIs(t, err, ErrInvalidPaymentMode)
}

func TestBuildDraftRejectsInactiveProduct(t *testing.T) {
	product := draftProduct(5, 500)
	product.Active = false
	lines := []db.CartLine{{ProductID: product.ID, Qty: 5, UnitPrice: dec("100")}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	_, err := BuildDraft(lines, products, PaymentCOD, defaultCfg())
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestBuildDraftRejectsStockShortfall(t *testing.T) {
	product := draftProduct(5, 40)
	lines := []db.CartLine{{ProductID: product.ID, Qty: 60, UnitPrice: dec("90")}}
	products := map[uuid.UUID]db.Product{product.ID: product}

	_, err := BuildDraft(lines, products, PaymentPrepaid, defaultCfg())
	require.ErrorIs(t, err, ErrStockExceeded)
}
