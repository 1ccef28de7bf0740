package query

import (
	"context"

	"github.com/example/ec-catalog-cart/internal/domain/cart"
	"github.com/example/ec-catalog-cart/internal/domain/category"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/metrics"
)

type Handler struct {
	productSvc  *product.Service
	cartSvc     *cart.Service
	categorySvc *category.Service
	metrics     *metrics.Metrics
}

func NewHandler(productSvc *product.Service, cartSvc *cart.Service, categorySvc *category.Service, m *metrics.Metrics) *Handler {
	return &Handler{
		productSvc:  productSvc,
		cartSvc:     cartSvc,
		categorySvc: categorySvc,
		metrics:     m,
	}
}

// Products

// GetProduct returns nil when no product has the id
func (h *Handler) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	p, err := h.productSvc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		h.metrics.Product("fetched", metrics.ResultNotFound)
		return nil, nil
	}
	h.metrics.Product("fetched", metrics.ResultSuccess)
	return p, nil
}

func (h *Handler) ListProducts(ctx context.Context, page, limit int) (*product.Page, error) {
	result, err := h.productSvc.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	h.metrics.Listing(len(result.Products), result.Pagination.Total)
	return result, nil
}

// Categories
func (h *Handler) ListCategories(ctx context.Context) ([]*category.Category, error) {
	return h.categorySvc.List(ctx)
}

// Cart
func (h *Handler) GetCart(ctx context.Context) (*cart.Cart, error) {
	c, err := h.cartSvc.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	amount, _ := c.TotalAmount.Float64()
	h.metrics.CartTotals(c.TotalItems, amount)
	return c, nil
}
