package query

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/ec-catalog-cart/internal/domain/cart"
	"github.com/example/ec-catalog-cart/internal/domain/category"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store/mocks"
	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler    *Handler
	products   *mocks.MockProductStore
	lines      *mocks.MockCartStore
	categories *mocks.MockCategoryStore
	metrics    *metrics.Metrics
}

func newTestQueryHandler() testEnv {
	products := mocks.NewMockProductStore()
	lines := mocks.NewMockCartStore(products)
	categories := mocks.NewMockCategoryStore()
	m := metrics.New(prometheus.NewRegistry())

	productSvc := product.NewService(products)
	handler := NewHandler(productSvc, cart.NewService(lines, productSvc), category.NewService(categories), m)
	return testEnv{handler: handler, products: products, lines: lines, categories: categories, metrics: m}
}

func (e testEnv) addProduct(t *testing.T, sku, price string) int64 {
	t.Helper()
	id, err := e.products.Insert(context.Background(), store.NewProductRecord{
		SKU:         sku,
		Name:        "Product " + sku,
		Description: "Test product",
		Price:       decimal.RequireFromString(price),
		StockLevel:  100,
		CategoryID:  sql.NullInt64{Int64: 1, Valid: true},
	})
	require.NoError(t, err)
	return id
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_GetProduct_Found(t *testing.T) {
	env := newTestQueryHandler()
	id := env.addProduct(t, "TEST-001", "10.00")

	p, err := env.handler.GetProduct(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "TEST-001", p.SKU)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ProductOperations.WithLabelValues("fetched", metrics.ResultSuccess)))
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	env := newTestQueryHandler()

	p, err := env.handler.GetProduct(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ProductOperations.WithLabelValues("fetched", metrics.ResultNotFound)))
}

func TestHandler_ListProducts(t *testing.T) {
	env := newTestQueryHandler()
	env.addProduct(t, "A-001", "1.00")
	env.addProduct(t, "B-001", "1.00")
	env.addProduct(t, "C-001", "1.00")

	page, err := env.handler.ListProducts(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.ProductsFetched))
	assert.Equal(t, 3.0, testutil.ToFloat64(env.metrics.CatalogSize))
}

func TestHandler_ListProducts_Empty(t *testing.T) {
	env := newTestQueryHandler()

	page, err := env.handler.ListProducts(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Empty(t, page.Products)
}

// ============================================
// Category / Cart Query Tests
// ============================================

func TestHandler_ListCategories(t *testing.T) {
	env := newTestQueryHandler()
	_, err := env.categories.Insert(context.Background(), "Books", "Books and publications")
	require.NoError(t, err)

	categories, err := env.handler.ListCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "books", categories[0].Slug)
}

func TestHandler_GetCart_Empty(t *testing.T) {
	env := newTestQueryHandler()

	c, err := env.handler.GetCart(context.Background())

	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.True(t, c.TotalAmount.IsZero())
}

func TestHandler_GetCart_RecordsTotals(t *testing.T) {
	env := newTestQueryHandler()
	ctx := context.Background()
	id := env.addProduct(t, "TEST-002", "99.99")
	_, err := env.lines.UpsertItem(ctx, id, 5)
	require.NoError(t, err)

	c, err := env.handler.GetCart(ctx)

	require.NoError(t, err)
	assert.Equal(t, 5, c.TotalItems)
	assert.True(t, decimal.RequireFromString("499.95").Equal(c.TotalAmount))
	assert.Equal(t, 5.0, testutil.ToFloat64(env.metrics.CartItems))
	assert.InDelta(t, 499.95, testutil.ToFloat64(env.metrics.CartAmount), 0.001)
}
