// Package catalog serves the storefront product surface: paged listings,
// product detail with the bulk tier table, and a tier-aware price preview.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-mandi/internal/cart"
	"github.com/noah-isme/backend-mandi/internal/common"
	"github.com/noah-isme/backend-mandi/internal/db"
	"github.com/noah-isme/backend-mandi/internal/pricing"
)

// Store is the persistence surface the catalog service reads from.
type Store interface {
	ListProducts(ctx context.Context, arg db.ListProductsParams) ([]db.Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (db.Product, error)
	ListCategories(ctx context.Context) ([]db.Category, error)
	ListBanners(ctx context.Context) ([]db.Banner, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	store        Store
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// TierView is a bulk tier row shaped for API responses.
type TierView struct {
	MinimumSets int64  `json:"minimumSets"`
	MaximumSets *int64 `json:"maximumSets,omitempty"`
	UnitPrice   string `json:"unitPrice"`
}

// ProductView is the public product payload with its tier table.
type ProductView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	CategoryID    *string    `json:"categoryId,omitempty"`
	UnitSet       int64      `json:"unitSet"`
	PerPiecePrice string     `json:"perPiecePrice"`
	GSTPercent    string     `json:"gstPercent"`
	InStock       bool       `json:"inStock"`
	Stock         int64      `json:"stock"`
	Tiers         []TierView `json:"tiers"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductView
	Total int64
	Page  int
	Limit int
}

// ListParams captures filters for product listing.
type ListParams struct {
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// PricePreview is the resolved price for a requested number of sets.
type PricePreview struct {
	Sets        int64  `json:"sets"`
	Qty         int64  `json:"qty"`
	UnitPrice   string `json:"unitPrice"`
	TierMinimum *int64 `json:"tierMinimum,omitempty"`
	LineTotal   string `json:"lineTotal"`
}

func productView(p db.Product) ProductView {
	view := ProductView{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		UnitSet:       p.UnitSet,
		PerPiecePrice: common.MoneyString(p.PerPiecePrice),
		GSTPercent:    p.GSTPercent.String(),
		InStock:       p.Stock > 0,
		Stock:         p.Stock,
		Tiers:         make([]TierView, 0, len(p.Tiers)),
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		view.CategoryID = &id
	}
	for _, t := range p.Tiers {
		view.Tiers = append(view.Tiers, TierView{
			MinimumSets: t.MinimumSets,
			MaximumSets: t.MaximumSets,
			UnitPrice:   common.MoneyString(t.UnitPrice),
		})
	}
	return view
}

// NormalizeListParams clamps paging values into the configured bounds.
func (s *Service) NormalizeListParams(params ListParams) ListParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = s.defaultLimit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	return params
}

// ListProducts returns active products with pagination metadata.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	params = s.NormalizeListParams(params)

	key, shouldUseCache := s.listCacheKey(params)
	if shouldUseCache {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
	}

	offset := int32((params.Page - 1) * params.Limit)
	products, total, err := s.store.ListProducts(ctx, db.ListProductsParams{
		CategoryID: params.CategoryID,
		ActiveOnly: true,
		Limit:      int32(params.Limit),
		Offset:     offset,
	})
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductView, 0, len(products))
	for _, p := range products {
		items = append(items, productView(p))
	}
	if shouldUseCache {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetProduct returns the public product detail by slug.
func (s *Service) GetProduct(ctx context.Context, slug string) (ProductView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductView{}, badRequest("slug", "slug is required", nil)
	}
	key := detailCacheKey(slug)
	var cached ProductView
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.loadActiveProduct(ctx, slug)
	if err != nil {
		return ProductView{}, err
	}
	view := productView(product)
	_ = s.cache.SetJSON(ctx, key, view)
	return view, nil
}

// PreviewPrice resolves the tier price for the requested number of sets
// without touching any cart state.
func (s *Service) PreviewPrice(ctx context.Context, slug string, sets int64) (PricePreview, error) {
	if sets <= 0 {
		return PricePreview{}, badRequest("sets", "sets must be a positive integer", nil)
	}
	product, err := s.loadActiveProduct(ctx, slug)
	if err != nil {
		return PricePreview{}, err
	}
	qty := sets * product.UnitSet
	preview := PricePreview{Sets: sets, Qty: qty}
	unit := product.PerPiecePrice
	if tier := pricing.ResolveTier(cart.ProductTiers(product), product.UnitSet, qty); tier != nil {
		unit = tier.UnitPrice
		m := tier.Minimum
		preview.TierMinimum = &m
	}
	preview.UnitPrice = common.MoneyString(unit)
	preview.LineTotal = common.MoneyString(unit.Mul(decimal.NewFromInt(qty)))
	return preview, nil
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]db.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// ListBanners returns storefront banners in display order.
func (s *Service) ListBanners(ctx context.Context) ([]db.Banner, error) {
	banners, err := s.store.ListBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}

func (s *Service) loadActiveProduct(ctx context.Context, slug string) (db.Product, error) {
	product, err := s.store.GetProductBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return db.Product{}, notFoundErr(err)
		}
		return db.Product{}, fmt.Errorf("get product by slug: %w", err)
	}
	if !product.Active {
		return db.Product{}, notFoundErr(db.ErrNotFound)
	}
	return product, nil
}

type cachedList struct {
	Items []ProductView `json:"items"`
	Total int64         `json:"total"`
}

func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if params.Page != 1 || params.Limit != s.defaultLimit || params.CategoryID != nil {
		return "", false
	}
	return listDefaultCacheKey, true
}

const listDefaultCacheKey = "catalog:products:list:default"

func detailCacheKey(slug string) string {
	return "catalog:products:detail:" + slug
}

// InvalidateProduct drops the cached detail for slug plus the default listing.
func (s *Service) InvalidateProduct(ctx context.Context, slug string) {
	keys := []string{listDefaultCacheKey}
	if slug = strings.TrimSpace(slug); slug != "" {
		keys = append(keys, detailCacheKey(slug))
	}
	_ = s.cache.Invalidate(ctx, keys...)
}

func notFoundErr(err error) *common.AppError {
	return &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
