package cart

import (
	"context"
	"time"

	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = product.ErrInsufficientStock
)

// Item is a cart line joined with the current state of its product
type Item struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Product   product.Product `json:"product"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is derived from the stored lines on every read
type Cart struct {
	Items       []*Item         `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ProductLookup resolves the product a line refers to
type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type Service struct {
	store    store.CartStore
	products ProductLookup
}

func NewService(s store.CartStore, products ProductLookup) *Service {
	return &Service{store: s, products: products}
}

// AddItem puts quantity units of a product in the cart, adding to the line
// already held for that product. Stock is checked against quantity alone and
// is not reserved.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) (*Item, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.StockLevel < quantity {
		return nil, ErrInsufficientStock
	}

	itemID, err := s.store.UpsertItem(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		// product deleted after the stock check
		return nil, ErrProductNotFound
	}
	return item, nil
}

// UpdateItem replaces the quantity of a line. It returns nil when the line does not exist.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, quantity int) (*Item, error) {
	existing, err := s.getItem(ctx, itemID)
	if err != nil || existing == nil {
		return nil, err
	}
	if existing.Product.StockLevel < quantity {
		return nil, ErrInsufficientStock
	}

	ok, err := s.store.SetQuantity(ctx, itemID, quantity)
	if err != nil || !ok {
		return nil, err
	}
	return s.getItem(ctx, itemID)
}

// RemoveItem reports whether a line was removed
func (s *Service) RemoveItem(ctx context.Context, itemID int64) (bool, error) {
	return s.store.DeleteItem(ctx, itemID)
}

// GetCart lists every line newest first with totals at current prices
func (s *Service) GetCart(ctx context.Context) (*Cart, error) {
	records, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	c := &Cart{Items: make([]*Item, 0, len(records)), TotalAmount: decimal.Zero}
	for _, rec := range records {
		item := newItem(rec)
		c.Items = append(c.Items, item)
		c.TotalItems += item.Quantity
		c.TotalAmount = c.TotalAmount.Add(item.Subtotal)
	}
	return c, nil
}

// Clear empties the cart and returns the number of lines removed
func (s *Service) Clear(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}

func (s *Service) getItem(ctx context.Context, itemID int64) (*Item, error) {
	rec, err := s.store.FindItem(ctx, itemID)
	if err != nil || rec == nil {
		return nil, err
	}
	return newItem(*rec), nil
}

func newItem(rec store.CartItemRecord) *Item {
	p := product.FromRecord(rec.Product)
	return &Item{
		ID:        rec.ID,
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Product:   *p,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(rec.Quantity))),
	}
}
