package catalog_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-mandi/internal/catalog"
	"github.com/noah-isme/backend-mandi/internal/db"
)

type fakeStore struct {
	products  []db.Product
	listCalls int
}

func (f *fakeStore) ListProducts(_ context.Context, arg db.ListProductsParams) ([]db.Product, int64, error) {
	f.listCalls++
	var out []db.Product
	for _, p := range f.products {
		if arg.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) GetProductBySlug(_ context.Context, slug string) (db.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return db.Product{}, db.ErrNotFound
}

func (f *fakeStore) ListCategories(context.Context) ([]db.Category, error) { return nil, nil }
func (f *fakeStore) ListBanners(context.Context) ([]db.Banner, error)      { return nil, nil }

func maxSets(v int64) *int64 { return &v }

func seedProduct(active bool) db.Product {
	return db.Product{
		ID:            uuid.New(),
		Name:          "Sona Masoori Rice 1kg",
		Slug:          "sona-masoori-rice-1kg",
		UnitSet:       5,
		PerPiecePrice: decimal.NewFromInt(100),
		Stock:         500,
		GSTPercent:    decimal.NewFromInt(5),
		Active:        active,
		Tiers: []db.ProductTier{
			{MinimumSets: 10, MaximumSets: maxSets(19), UnitPrice: decimal.NewFromInt(90)},
			{MinimumSets: 20, MaximumSets: nil, UnitPrice: decimal.NewFromInt(80)},
		},
	}
}

func newCache(t *testing.T) *catalog.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return catalog.NewCache(client, time.Minute)
}

func newService(t *testing.T, store *fakeStore) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store:        store,
		Cache:        newCache(t),
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)
	return svc
}

func TestListProductsCachesDefaultPage(t *testing.T) {
	store := &fakeStore{products: []db.Product{seedProduct(true)}}
	svc := newService(t, store)
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	require.Equal(t, 1, store.listCalls)

	second, err := svc.ListProducts(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, 1, store.listCalls, "default page must be served from cache")

	// A non-default page bypasses the cache.
	_, err = svc.ListProducts(ctx, catalog.ListParams{Page: 2})
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)
}

func TestInvalidateProductDropsCaches(t *testing.T) {
	product := seedProduct(true)
	store := &fakeStore{products: []db.Product{product}}
	svc := newService(t, store)
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	svc.InvalidateProduct(ctx, product.Slug)

	_, err = svc.ListProducts(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls, "invalidation must force a fresh read")
}

func TestGetProductHidesInactive(t *testing.T) {
	store := &fakeStore{products: []db.Product{seedProduct(false)}}
	svc := newService(t, store)

	_, err := svc.GetProduct(context.Background(), "sona-masoori-rice-1kg")
	require.Error(t, err)
}

func TestPreviewPriceResolvesTier(t *testing.T) {
	product := seedProduct(true)
	store := &fakeStore{products: []db.Product{product}}
	svc := newService(t, store)

	preview, err := svc.PreviewPrice(context.Background(), product.Slug, 12)
	require.NoError(t, err)
	require.Equal(t, int64(60), preview.Qty)
	require.Equal(t, "90.00", preview.UnitPrice)
	require.NotNil(t, preview.TierMinimum)
	require.Equal(t, int64(10), *preview.TierMinimum)
	require.Equal(t, "5400.00", preview.LineTotal)

	// Below every tier the per-piece price applies.
	preview, err = svc.PreviewPrice(context.Background(), product.Slug, 2)
	require.NoError(t, err)
	require.Equal(t, "100.00", preview.UnitPrice)
	require.Nil(t, preview.TierMinimum)
}

func TestPreviewPriceRejectsNonPositiveSets(t *testing.T) {
	store := &fakeStore{products: []db.Product{seedProduct(true)}}
	svc := newService(t, store)

	_, err := svc.PreviewPrice(context.Background(), "sona-masoori-rice-1kg", 0)
	require.Error(t, err)
}
