package product

import (
	"database/sql"
	"time"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockLevel  int             `json:"stockLevel"`
	CategoryID  *int64          `json:"categoryId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewProduct holds the validated fields of a product to create
type NewProduct struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	StockLevel  int
	CategoryID  int64
}

// Field is one value of a partial update together with whether it was supplied
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Field holding v
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Patch lists the fields of a partial update. Absent fields are left untouched.
type Patch struct {
	SKU         Field[string]
	Name        Field[string]
	Description Field[string]
	Price       Field[decimal.Decimal]
	StockLevel  Field[int]
	CategoryID  Field[int64]
}

// IsEmpty reports whether no field is present
func (p Patch) IsEmpty() bool {
	return len(p.assignments()) == 0
}

// Fields returns the names of the present fields, in API spelling
func (p Patch) Fields() []string {
	var names []string
	if p.SKU.Set {
		names = append(names, "sku")
	}
	if p.Name.Set {
		names = append(names, "name")
	}
	if p.Description.Set {
		names = append(names, "description")
	}
	if p.Price.Set {
		names = append(names, "price")
	}
	if p.StockLevel.Set {
		names = append(names, "stockLevel")
	}
	if p.CategoryID.Set {
		names = append(names, "categoryId")
	}
	return names
}

func (p Patch) assignments() []store.Assignment {
	var out []store.Assignment
	if p.SKU.Set {
		out = append(out, store.Assignment{Column: store.ColumnSKU, Value: p.SKU.Value})
	}
	if p.Name.Set {
		out = append(out, store.Assignment{Column: store.ColumnName, Value: p.Name.Value})
	}
	if p.Description.Set {
		out = append(out, store.Assignment{Column: store.ColumnDescription, Value: p.Description.Value})
	}
	if p.Price.Set {
		out = append(out, store.Assignment{Column: store.ColumnPrice, Value: p.Price.Value})
	}
	if p.StockLevel.Set {
		out = append(out, store.Assignment{Column: store.ColumnStockLevel, Value: p.StockLevel.Value})
	}
	if p.CategoryID.Set {
		out = append(out, store.Assignment{Column: store.ColumnCategoryID, Value: nullID(p.CategoryID.Value)})
	}
	return out
}

// FromRecord converts a stored row into a Product
func FromRecord(r store.ProductRecord) *Product {
	p := &Product{
		ID:          r.ID,
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		StockLevel:  r.StockLevel,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.Int64
		p.CategoryID = &id
	}
	return p
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
