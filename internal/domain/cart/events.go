package cart

import "github.com/shopspring/decimal"

const (
	EventItemAdded   = "cart.item.added"
	EventItemUpdated = "cart.item.updated"
	EventItemRemoved = "cart.item.removed"
	EventCartCleared = "cart.cleared"
)

type ItemAdded struct {
	ItemID       int64           `json:"itemId"`
	ProductID    int64           `json:"productId"`
	Quantity     int             `json:"quantity"`
	LineQuantity int             `json:"lineQuantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ItemUpdated struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

type ItemRemoved struct {
	ItemID int64 `json:"itemId"`
}

type CartCleared struct {
	Removed int64 `json:"removed"`
}
