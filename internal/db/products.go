package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog row together with its bulk tier table.
type Product struct {
	ID            uuid.UUID
	Name          string
	Slug          string
	CategoryID    *uuid.UUID
	UnitSet       int64
	PerPiecePrice decimal.Decimal
	Stock         int64
	GSTPercent    decimal.Decimal
	Active        bool
	Tiers         []ProductTier
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductTier is a stored bulk tier row. MinimumSets and MaximumSets are
// expressed in unit-set multiples.
type ProductTier struct {
	MinimumSets int64
	MaximumSets *int64
	UnitPrice   decimal.Decimal
}

// Category groups products for browsing.
type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

// Banner is a piece of promotional content shown on the storefront.
type Banner struct {
	ID        uuid.UUID
	Title     string
	ImageURL  string
	TargetURL *string
	Position  int32
	CreatedAt time.Time
}

const productColumns = `id, name, slug, category_id, unit_set, per_piece_price, stock, gst_percent, active, created_at, updated_at`

func (s *Store) scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.UnitSet, &p.PerPiecePrice,
		&p.Stock, &p.GSTPercent, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProduct loads a product with its tier table.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := s.scanProduct(row)
	if err != nil {
		return Product{}, notFound(err)
	}
	p.Tiers, err = s.listTiers(ctx, p.ID)
	return p, err
}

// GetProductBySlug loads a product with its tier table by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	row := s.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	p, err := s.scanProduct(row)
	if err != nil {
		return Product{}, notFound(err)
	}
	p.Tiers, err = s.listTiers(ctx, p.ID)
	return p, err
}

// ListProductsParams filters and pages the catalog listing.
type ListProductsParams struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
	Limit      int32
	Offset     int32
}

// ListProducts returns catalog rows with their tier tables plus the unpaged
// total count.
func (s *Store) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, int64, error) {
	var total int64
	err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE ($1::uuid IS NULL OR category_id = $1) AND (NOT $2 OR active)`,
		arg.CategoryID, arg.ActiveOnly).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE ($1::uuid IS NULL OR category_id = $1) AND (NOT $2 OR active)
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		arg.CategoryID, arg.ActiveOnly, arg.Limit, arg.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := s.scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Tiers, err = s.listTiers(ctx, products[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

func (s *Store) listTiers(ctx context.Context, productID uuid.UUID) ([]ProductTier, error) {
	rows, err := s.q.Query(ctx,
		`SELECT minimum_sets, maximum_sets, unit_price FROM product_tiers WHERE product_id = $1 ORDER BY minimum_sets`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []ProductTier
	for rows.Next() {
		var t ProductTier
		if err := rows.Scan(&t.MinimumSets, &t.MaximumSets, &t.UnitPrice); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// CreateProductParams holds the writable product fields.
type CreateProductParams struct {
	Name          string
	Slug          string
	CategoryID    *uuid.UUID
	UnitSet       int64
	PerPiecePrice decimal.Decimal
	Stock         int64
	GSTPercent    decimal.Decimal
	Active        bool
}

// CreateProduct inserts a product and returns the stored row.
func (s *Store) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := s.q.QueryRow(ctx,
		`INSERT INTO products (name, slug, category_id, unit_set, per_piece_price, stock, gst_percent, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+productColumns,
		arg.Name, arg.Slug, arg.CategoryID, arg.UnitSet, arg.PerPiecePrice, arg.Stock, arg.GSTPercent, arg.Active)
	return s.scanProduct(row)
}

// UpdateProduct overwrites the writable product fields.
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, arg CreateProductParams) (Product, error) {
	row := s.q.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, slug = $3, category_id = $4, unit_set = $5, per_piece_price = $6,
		     stock = $7, gst_percent = $8, active = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, arg.Name, arg.Slug, arg.CategoryID, arg.UnitSet, arg.PerPiecePrice, arg.Stock, arg.GSTPercent, arg.Active)
	p, err := s.scanProduct(row)
	if err != nil {
		return Product{}, notFound(err)
	}
	return p, nil
}

// ReplaceProductTiers swaps the tier table of a product.
func (s *Store) ReplaceProductTiers(ctx context.Context, productID uuid.UUID, tiers []ProductTier) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM product_tiers WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, t := range tiers {
		if _, err := s.q.Exec(ctx,
			`INSERT INTO product_tiers (product_id, minimum_sets, maximum_sets, unit_price) VALUES ($1, $2, $3, $4)`,
			productID, t.MinimumSets, t.MaximumSets, t.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// AdjustStock applies a signed stock delta, refusing to go below zero.
func (s *Store) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) (int64, error) {
	var stock int64
	err := s.q.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now()
		 WHERE id = $1 AND stock + $2 >= 0
		 RETURNING stock`,
		productID, delta).Scan(&stock)
	if err != nil {
		return 0, notFound(err)
	}
	return stock, nil
}

// DecrementStock conditionally reduces stock by qty. It reports false when the
// remaining stock is insufficient, leaving the row untouched. Combined with a
// transaction this is the single atomic check-and-decrement step order
// placement relies on.
func (s *Store) DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.q.Query(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateCategory inserts a category.
func (s *Store) CreateCategory(ctx context.Context, name, slug string) (Category, error) {
	var c Category
	err := s.q.QueryRow(ctx,
		`INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id, name, slug, created_at`,
		name, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// DeleteCategory removes a category; products keep a null category.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBanners returns promotional banners in display order.
func (s *Store) ListBanners(ctx context.Context) ([]Banner, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, title, image_url, target_url, position, created_at FROM banners ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var banners []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.TargetURL, &b.Position, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

// CreateBanner inserts a banner.
func (s *Store) CreateBanner(ctx context.Context, title, imageURL string, targetURL *string, position int32) (Banner, error) {
	var b Banner
	err := s.q.QueryRow(ctx,
		`INSERT INTO banners (title, image_url, target_url, position) VALUES ($1, $2, $3, $4)
		 RETURNING id, title, image_url, target_url, position, created_at`,
		title, imageURL, targetURL, position).Scan(&b.ID, &b.Title, &b.ImageURL, &b.TargetURL, &b.Position, &b.CreatedAt)
	if err != nil {
		return Banner{}, fmt.Errorf("insert banner: %w", err)
	}
	return b, nil
}

// DeleteBanner removes a banner.
func (s *Store) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
