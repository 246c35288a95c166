package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

type tier struct {
	Min   int64
	Max   *int64
	Price string
}

type product struct {
	Name     string
	Slug     string
	Category string
	UnitSet  int64
	Price    string
	Stock    int64
	GST      string
	Tiers    []tier
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	catIDs := seedCategories(ctx, pool)
	seedProducts(ctx, pool, catIDs)
	seedBanners(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) map[string]string {
	categories := []struct {
		Name string
		Slug string
	}{
		{"Staples & Grains", "staples-grains"},
		{"Pulses & Lentils", "pulses-lentils"},
		{"Spices & Masala", "spices-masala"},
		{"Edible Oils", "edible-oils"},
		{"Snacks & Namkeen", "snacks-namkeen"},
		{"Beverages", "beverages"},
		{"Cleaning & Household", "cleaning-household"},
		{"Personal Care", "personal-care"},
	}

	log.Println("Seeding categories...")
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id;
		`, c.Name, c.Slug).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Slug, err)
			continue
		}
		ids[c.Slug] = id
	}
	return ids
}

func ptr(v int64) *int64 { return &v }

func seedProducts(ctx context.Context, pool *pgxpool.Pool, catIDs map[string]string) {
	products := []product{
		{
			Name: "Basmati Rice 1kg", Slug: "basmati-rice-1kg", Category: "staples-grains",
			UnitSet: 10, Price: "110.00", Stock: 400, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(4), Price: "105.00"},
				{Min: 5, Max: ptr(9), Price: "98.00"},
				{Min: 10, Max: nil, Price: "92.00"},
			},
		},
		{
			Name: "Whole Wheat Atta 5kg", Slug: "whole-wheat-atta-5kg", Category: "staples-grains",
			UnitSet: 4, Price: "260.00", Stock: 240, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(2), Price: "250.00"},
				{Min: 3, Max: nil, Price: "238.00"},
			},
		},
		{
			Name: "Toor Dal 1kg", Slug: "toor-dal-1kg", Category: "pulses-lentils",
			UnitSet: 12, Price: "155.00", Stock: 360, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(3), Price: "149.00"},
				{Min: 4, Max: nil, Price: "141.00"},
			},
		},
		{
			Name: "Chana Dal 1kg", Slug: "chana-dal-1kg", Category: "pulses-lentils",
			UnitSet: 12, Price: "98.00", Stock: 300, GST: "5",
			Tiers: []tier{
				{Min: 2, Max: ptr(5), Price: "93.00"},
				{Min: 6, Max: nil, Price: "88.00"},
			},
		},
		{
			Name: "Turmeric Powder 200g", Slug: "turmeric-powder-200g", Category: "spices-masala",
			UnitSet: 20, Price: "58.00", Stock: 600, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(4), Price: "55.00"},
				{Min: 5, Max: nil, Price: "51.00"},
			},
		},
		{
			Name: "Garam Masala 100g", Slug: "garam-masala-100g", Category: "spices-masala",
			UnitSet: 24, Price: "72.00", Stock: 480, GST: "12",
		},
		{
			Name: "Sunflower Oil 1L", Slug: "sunflower-oil-1l", Category: "edible-oils",
			UnitSet: 12, Price: "148.00", Stock: 350, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(4), Price: "142.00"},
				{Min: 5, Max: nil, Price: "136.00"},
			},
		},
		{
			Name: "Mustard Oil 1L", Slug: "mustard-oil-1l", Category: "edible-oils",
			UnitSet: 12, Price: "168.00", Stock: 280, GST: "5",
		},
		{
			Name: "Salted Peanuts 400g", Slug: "salted-peanuts-400g", Category: "snacks-namkeen",
			UnitSet: 16, Price: "85.00", Stock: 320, GST: "12",
			Tiers: []tier{
				{Min: 2, Max: nil, Price: "79.00"},
			},
		},
		{
			Name: "Masala Tea 250g", Slug: "masala-tea-250g", Category: "beverages",
			UnitSet: 20, Price: "120.00", Stock: 500, GST: "5",
			Tiers: []tier{
				{Min: 1, Max: ptr(2), Price: "116.00"},
				{Min: 3, Max: ptr(7), Price: "110.00"},
				{Min: 8, Max: nil, Price: "102.00"},
			},
		},
		{
			Name: "Dish Wash Bar 4x130g", Slug: "dish-wash-bar-4x130g", Category: "cleaning-household",
			UnitSet: 18, Price: "60.00", Stock: 450, GST: "18",
		},
		{
			Name: "Bathing Soap 4x100g", Slug: "bathing-soap-4x100g", Category: "personal-care",
			UnitSet: 15, Price: "130.00", Stock: 380, GST: "18",
			Tiers: []tier{
				{Min: 2, Max: nil, Price: "123.00"},
			},
		},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		var categoryID *string
		if id, ok := catIDs[p.Category]; ok {
			categoryID = &id
		}
		var productID string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (name, slug, category_id, unit_set, per_piece_price, stock, gst_percent, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				category_id = EXCLUDED.category_id,
				unit_set = EXCLUDED.unit_set,
				per_piece_price = EXCLUDED.per_piece_price,
				gst_percent = EXCLUDED.gst_percent,
				updated_at = now()
			RETURNING id;
		`, p.Name, p.Slug, categoryID, p.UnitSet, p.Price, p.Stock, p.GST).Scan(&productID)
		if err != nil {
			log.Printf("Failed to upsert product %s: %v", p.Slug, err)
			continue
		}

		if _, err := pool.Exec(ctx, `DELETE FROM product_tiers WHERE product_id = $1`, productID); err != nil {
			log.Printf("Failed to clear tiers for %s: %v", p.Slug, err)
			continue
		}
		for _, t := range p.Tiers {
			if _, err := pool.Exec(ctx, `
				INSERT INTO product_tiers (product_id, minimum_sets, maximum_sets, unit_price)
				VALUES ($1, $2, $3, $4);
			`, productID, t.Min, t.Max, t.Price); err != nil {
				log.Printf("Failed to insert tier for %s: %v", p.Slug, err)
			}
		}
	}
}

func seedBanners(ctx context.Context, pool *pgxpool.Pool) {
	banners := []struct {
		Title    string
		ImageURL string
		Target   string
		Position int
	}{
		{"Monsoon Staples Sale", "https://cdn.example.com/banners/monsoon-staples.jpg", "/categories/staples-grains", 1},
		{"Bulk Spice Deals", "https://cdn.example.com/banners/bulk-spices.jpg", "/categories/spices-masala", 2},
		{"Free Delivery Above 2000", "https://cdn.example.com/banners/free-delivery.jpg", "", 3},
	}

	log.Println("Seeding banners...")
	for _, b := range banners {
		var target *string
		if b.Target != "" {
			t := b.Target
			target = &t
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO banners (title, image_url, target_url, position)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (SELECT 1 FROM banners WHERE title = $1);
		`, b.Title, b.ImageURL, target, b.Position); err != nil {
			log.Printf("Failed to insert banner %s: %v", b.Title, err)
		}
	}
}
