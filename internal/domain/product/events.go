package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventProductCreated   = "product.created"
	EventProductUpdated   = "product.updated"
	EventProductDeleted   = "product.deleted"
	EventStockDecremented = "product.stock_decremented"
	EventStockLow         = "product.stock_low"
)

type ProductCreated struct {
	ProductID  int64           `json:"productId"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	StockLevel int             `json:"stockLevel"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ProductUpdated struct {
	ProductID int64     `json:"productId"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductDeleted struct {
	ProductID int64     `json:"productId"`
	DeletedAt time.Time `json:"deletedAt"`
}

type StockDecremented struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Remaining int   `json:"remaining"`
}

// StockLow is emitted when a write leaves a product at or below the alert threshold
type StockLow struct {
	ProductID  int64     `json:"productId"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	StockLevel int       `json:"stockLevel"`
	Threshold  int       `json:"threshold"`
	DetectedAt time.Time `json:"detectedAt"`
}
