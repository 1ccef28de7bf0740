package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type seedCategory struct {
	Name        string
	Description string
}

type seedProduct struct {
	SKU         string
	Name        string
	Description string
	Price       string
	StockLevel  int
	Category    string
}

var sampleCategories = []seedCategory{
	{"Electronics", "Electronic devices and accessories"},
	{"Clothing", "Apparel and fashion items"},
	{"Books", "Books and publications"},
	{"Home & Garden", "Home improvement and garden supplies"},
}

var sampleProducts = []seedProduct{
	{"LAPTOP-001", `MacBook Pro 13"`, "Apple MacBook Pro with M2 chip, 8GB RAM, 256GB SSD", "1299.99", 50, "Electronics"},
	{"PHONE-001", "iPhone 15 Pro", "Apple iPhone 15 Pro with A17 Pro chip, 128GB storage", "999.99", 100, "Electronics"},
	{"TSHIRT-001", "Cotton T-Shirt", "Comfortable 100% cotton t-shirt, available in multiple colors", "19.99", 200, "Clothing"},
	{"BOOK-001", "The Great Gatsby", "Classic novel by F. Scott Fitzgerald", "12.99", 75, "Books"},
	{"TOOL-001", "Cordless Drill", "20V MAX cordless drill with battery and charger", "89.99", 30, "Home & Garden"},
}

// SeedResult counts the rows a Seed call inserted
type SeedResult struct {
	Categories int
	Products   int
}

// Seed inserts the sample categories and products that are not present yet
func Seed(ctx context.Context, categories CategoryStore, products ProductStore) (SeedResult, error) {
	var result SeedResult
	categoryIDs := make(map[string]int64, len(sampleCategories))

	for _, c := range sampleCategories {
		existing, err := categories.FindByName(ctx, c.Name)
		if err != nil {
			return result, err
		}
		if existing != nil {
			categoryIDs[c.Name] = existing.ID
			continue
		}
		id, err := categories.Insert(ctx, c.Name, c.Description)
		if err != nil {
			return result, err
		}
		categoryIDs[c.Name] = id
		result.Categories++
	}

	for _, p := range sampleProducts {
		existing, err := products.FindBySKU(ctx, p.SKU)
		if err != nil {
			return result, err
		}
		if existing != nil {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return result, errors.Wrapf(err, "parse price of %s", p.SKU)
		}
		_, err = products.Insert(ctx, NewProductRecord{
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			StockLevel:  p.StockLevel,
			CategoryID:  sql.NullInt64{Int64: categoryIDs[p.Category], Valid: true},
		})
		if err != nil {
			return result, err
		}
		result.Products++
	}

	return result, nil
}
