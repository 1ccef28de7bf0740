package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// Product columns that may be assigned by ProductStore.Update
const (
	ColumnSKU         = "sku"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnStockLevel  = "stock_level"
	ColumnCategoryID  = "category_id"
)

// ProductRecord is a row of the products table
type ProductRecord struct {
	ID          int64           `db:"id"`
	SKU         string          `db:"sku"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	StockLevel  int             `db:"stock_level"`
	CategoryID  sql.NullInt64   `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// NewProductRecord holds the columns supplied on insert
type NewProductRecord struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	StockLevel  int
	CategoryID  sql.NullInt64
}

// Assignment sets one column in an UPDATE statement
type Assignment struct {
	Column string
	Value  any
}

// CartItemRecord is a cart_items row joined with its product
type CartItemRecord struct {
	ID        int64
	ProductID int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Product   ProductRecord
}

// CategoryRecord is a row of the categories table
type CategoryRecord struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ProductStore persists products. Lookups return (nil, nil) when no row matches.
type ProductStore interface {
	Insert(ctx context.Context, p NewProductRecord) (int64, error)
	FindByID(ctx context.Context, id int64) (*ProductRecord, error)
	FindBySKU(ctx context.Context, sku string) (*ProductRecord, error)
	// List returns one page ordered newest first together with the total row count
	List(ctx context.Context, limit, offset int) ([]ProductRecord, int, error)
	Update(ctx context.Context, id int64, assignments []Assignment) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// DecrementStock subtracts quantity only when enough stock is left
	DecrementStock(ctx context.Context, id int64, quantity int) (bool, error)
}

// CartStore persists the line items of the shared cart
type CartStore interface {
	// UpsertItem inserts a line for productID or adds quantity to the existing one
	UpsertItem(ctx context.Context, productID int64, quantity int) (int64, error)
	FindItem(ctx context.Context, itemID int64) (*CartItemRecord, error)
	ListItems(ctx context.Context) ([]CartItemRecord, error)
	SetQuantity(ctx context.Context, itemID int64, quantity int) (bool, error)
	DeleteItem(ctx context.Context, itemID int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// CategoryStore reads and seeds categories
type CategoryStore interface {
	Insert(ctx context.Context, name, description string) (int64, error)
	FindByName(ctx context.Context, name string) (*CategoryRecord, error)
	List(ctx context.Context) ([]CategoryRecord, error)
}
