package command

import (
	"context"
	"strconv"
	"time"

	"github.com/example/ec-catalog-cart/internal/activity"
	"github.com/example/ec-catalog-cart/internal/domain/cart"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// cartKey partitions all cart events together since there is one shared cart
const cartKey = "cart"

type Handler struct {
	productSvc        *product.Service
	cartSvc           *cart.Service
	publisher         *activity.Publisher
	metrics           *metrics.Metrics
	lowStockThreshold int
	log               *log.Entry
}

func NewHandler(
	productSvc *product.Service,
	cartSvc *cart.Service,
	publisher *activity.Publisher,
	m *metrics.Metrics,
	lowStockThreshold int,
) *Handler {
	return &Handler{
		productSvc:        productSvc,
		cartSvc:           cartSvc,
		publisher:         publisher,
		metrics:           m,
		lowStockThreshold: lowStockThreshold,
		log:               log.WithField("component", "command"),
	}
}

// CreateProduct checks the SKU first for a clear conflict; the unique
// constraint still rejects a duplicate inserted concurrently.
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	existing, err := h.productSvc.GetBySKU(ctx, cmd.Product.SKU)
	if err != nil {
		h.metrics.Product("created", metrics.ResultError)
		return nil, err
	}
	if existing != nil {
		h.metrics.Product("created", metrics.ResultDuplicateSKU)
		return nil, product.ErrDuplicateSKU
	}

	p, err := h.productSvc.Create(ctx, cmd.Product)
	if err != nil {
		h.metrics.Product("created", result(err))
		return nil, err
	}

	h.log.WithFields(log.Fields{"productId": p.ID, "sku": p.SKU}).Info("product created")
	h.metrics.Product("created", metrics.ResultSuccess)
	h.publisher.Emit(ctx, product.EventProductCreated, productKey(p.ID), product.ProductCreated{
		ProductID:  p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      p.Price,
		StockLevel: p.StockLevel,
		CreatedAt:  p.CreatedAt,
	})
	h.checkLowStock(ctx, p)
	return p, nil
}

// UpdateProduct returns nil when the product does not exist
func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) (*product.Product, error) {
	if cmd.Patch.SKU.Set {
		existing, err := h.productSvc.GetBySKU(ctx, cmd.Patch.SKU.Value)
		if err != nil {
			h.metrics.Product("updated", metrics.ResultError)
			return nil, err
		}
		if existing != nil && existing.ID != cmd.ProductID {
			h.metrics.Product("updated", metrics.ResultDuplicateSKU)
			return nil, product.ErrDuplicateSKU
		}
	}

	p, err := h.productSvc.Update(ctx, cmd.ProductID, cmd.Patch)
	if err != nil {
		h.metrics.Product("updated", result(err))
		return nil, err
	}
	if p == nil {
		h.metrics.Product("updated", metrics.ResultNotFound)
		return nil, nil
	}

	fields := cmd.Patch.Fields()
	h.log.WithFields(log.Fields{"productId": p.ID, "fields": fields}).Info("product updated")
	h.metrics.Product("updated", metrics.ResultSuccess)
	if len(fields) > 0 {
		h.publisher.Emit(ctx, product.EventProductUpdated, productKey(p.ID), product.ProductUpdated{
			ProductID: p.ID,
			Fields:    fields,
			UpdatedAt: p.UpdatedAt,
		})
	}
	if cmd.Patch.StockLevel.Set {
		h.checkLowStock(ctx, p)
	}
	return p, nil
}

// DeleteProduct reports whether the product existed
func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) (bool, error) {
	removed, err := h.productSvc.Delete(ctx, cmd.ProductID)
	if err != nil {
		h.metrics.Product("deleted", metrics.ResultError)
		return false, err
	}
	if !removed {
		h.metrics.Product("deleted", metrics.ResultNotFound)
		return false, nil
	}

	h.log.WithField("productId", cmd.ProductID).Info("product deleted")
	h.metrics.Product("deleted", metrics.ResultSuccess)
	h.publisher.Emit(ctx, product.EventProductDeleted, productKey(cmd.ProductID), product.ProductDeleted{
		ProductID: cmd.ProductID,
		DeletedAt: time.Now().UTC(),
	})
	return true, nil
}

// DecrementStock returns nil when the product does not exist and
// ErrInsufficientStock when it has fewer units than requested.
func (h *Handler) DecrementStock(ctx context.Context, cmd DecrementStock) (*product.Product, error) {
	ok, err := h.productSvc.DecrementStock(ctx, cmd.ProductID, cmd.Quantity)
	if err != nil {
		h.metrics.Product("stock_decremented", metrics.ResultError)
		return nil, err
	}

	p, err := h.productSvc.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		h.metrics.Product("stock_decremented", metrics.ResultNotFound)
		return nil, nil
	}
	if !ok {
		h.metrics.Product("stock_decremented", metrics.ResultInsufficientStock)
		return nil, product.ErrInsufficientStock
	}

	h.metrics.Product("stock_decremented", metrics.ResultSuccess)
	h.publisher.Emit(ctx, product.EventStockDecremented, productKey(p.ID), product.StockDecremented{
		ProductID: p.ID,
		Quantity:  cmd.Quantity,
		Remaining: p.StockLevel,
	})
	h.checkLowStock(ctx, p)
	return p, nil
}

func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*cart.Item, error) {
	item, err := h.cartSvc.AddItem(ctx, cmd.ProductID, cmd.Quantity)
	if err != nil {
		h.metrics.Cart("item_added", result(err))
		return nil, err
	}

	h.log.WithFields(log.Fields{
		"itemId":    item.ID,
		"productId": item.ProductID,
		"quantity":  item.Quantity,
	}).Info("item added to cart")
	h.metrics.Cart("item_added", metrics.ResultSuccess)
	h.publisher.Emit(ctx, cart.EventItemAdded, cartKey, cart.ItemAdded{
		ItemID:       item.ID,
		ProductID:    item.ProductID,
		Quantity:     cmd.Quantity,
		LineQuantity: item.Quantity,
		Subtotal:     item.Subtotal,
	})
	return item, nil
}

// UpdateCartItem returns nil when the line does not exist
func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) (*cart.Item, error) {
	item, err := h.cartSvc.UpdateItem(ctx, cmd.ItemID, cmd.Quantity)
	if err != nil {
		h.metrics.Cart("item_updated", result(err))
		return nil, err
	}
	if item == nil {
		h.metrics.Cart("item_updated", metrics.ResultNotFound)
		return nil, nil
	}

	h.metrics.Cart("item_updated", metrics.ResultSuccess)
	h.publisher.Emit(ctx, cart.EventItemUpdated, cartKey, cart.ItemUpdated{
		ItemID:   item.ID,
		Quantity: item.Quantity,
	})
	return item, nil
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (bool, error) {
	removed, err := h.cartSvc.RemoveItem(ctx, cmd.ItemID)
	if err != nil {
		h.metrics.Cart("item_removed", metrics.ResultError)
		return false, err
	}
	if !removed {
		h.metrics.Cart("item_removed", metrics.ResultNotFound)
		return false, nil
	}

	h.metrics.Cart("item_removed", metrics.ResultSuccess)
	h.publisher.Emit(ctx, cart.EventItemRemoved, cartKey, cart.ItemRemoved{ItemID: cmd.ItemID})
	return true, nil
}

func (h *Handler) ClearCart(ctx context.Context, _ ClearCart) error {
	removed, err := h.cartSvc.Clear(ctx)
	if err != nil {
		h.metrics.Cart("cleared", metrics.ResultError)
		return err
	}

	h.log.WithField("removed", removed).Info("cart cleared")
	h.metrics.Cart("cleared", metrics.ResultSuccess)
	h.publisher.Emit(ctx, cart.EventCartCleared, cartKey, cart.CartCleared{Removed: removed})
	return nil
}

func (h *Handler) checkLowStock(ctx context.Context, p *product.Product) {
	if h.lowStockThreshold <= 0 || p.StockLevel > h.lowStockThreshold {
		return
	}
	h.log.WithFields(log.Fields{"productId": p.ID, "stockLevel": p.StockLevel}).Warn("low stock")
	h.publisher.Emit(ctx, product.EventStockLow, productKey(p.ID), product.StockLow{
		ProductID:  p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		StockLevel: p.StockLevel,
		Threshold:  h.lowStockThreshold,
		DetectedAt: time.Now().UTC(),
	})
}

func productKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// result maps a domain error to its metrics label
func result(err error) string {
	switch {
	case errors.Is(err, product.ErrDuplicateSKU):
		return metrics.ResultDuplicateSKU
	case errors.Is(err, product.ErrInsufficientStock):
		return metrics.ResultInsufficientStock
	case errors.Is(err, cart.ErrProductNotFound):
		return metrics.ResultProductNotFound
	default:
		return metrics.ResultError
	}
}
