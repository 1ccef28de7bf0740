package cart

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc      *Service
	products *mocks.MockProductStore
	lines    *mocks.MockCartStore
}

func newTestEnv() testEnv {
	products := mocks.NewMockProductStore()
	lines := mocks.NewMockCartStore(products)
	return testEnv{
		svc:      NewService(lines, product.NewService(products)),
		products: products,
		lines:    lines,
	}
}

func (e testEnv) addProduct(t *testing.T, sku, price string, stock int) int64 {
	t.Helper()
	id, err := e.products.Insert(context.Background(), store.NewProductRecord{
		SKU:         sku,
		Name:        "Product " + sku,
		Description: "Test product",
		Price:       decimal.RequireFromString(price),
		StockLevel:  stock,
		CategoryID:  sql.NullInt64{Int64: 1, Valid: true},
	})
	require.NoError(t, err)
	return id
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ============================================
// Add Item Tests
// ============================================

func TestService_AddItem_MergesRepeatedProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "TEST-002", "99.99", 10)

	first, err := env.svc.AddItem(ctx, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Quantity)
	assert.True(t, dec("299.97").Equal(first.Subtotal), "got %s", first.Subtotal)
	assert.Equal(t, "TEST-002", first.Product.SKU)

	second, err := env.svc.AddItem(ctx, productID, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.True(t, dec("499.95").Equal(second.Subtotal), "got %s", second.Subtotal)
	assert.Equal(t, 1, env.lines.LineCount())

	c, err := env.svc.GetCart(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.TotalItems)
	assert.True(t, dec("499.95").Equal(c.TotalAmount), "got %s", c.TotalAmount)
}

func TestService_AddItem_ProductNotFound(t *testing.T) {
	env := newTestEnv()

	item, err := env.svc.AddItem(context.Background(), 404, 1)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, item)
	assert.Empty(t, env.lines.UpsertCalls)
}

func TestService_AddItem_InsufficientStock(t *testing.T) {
	env := newTestEnv()
	productID := env.addProduct(t, "LOW-001", "10.00", 2)

	item, err := env.svc.AddItem(context.Background(), productID, 3)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, item)
	assert.Empty(t, env.lines.UpsertCalls)
}

func TestService_AddItem_StockCheckIgnoresHeldQuantity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "HELD-001", "1.00", 3)

	_, err := env.svc.AddItem(ctx, productID, 3)
	require.NoError(t, err)
	item, err := env.svc.AddItem(ctx, productID, 3)

	require.NoError(t, err)
	assert.Equal(t, 6, item.Quantity)
}

func TestService_AddItem_DoesNotTouchStock(t *testing.T) {
	env := newTestEnv()
	productID := env.addProduct(t, "KEEP-001", "5.00", 10)

	_, err := env.svc.AddItem(context.Background(), productID, 4)
	require.NoError(t, err)

	p, ok := env.products.Product(productID)
	require.True(t, ok)
	assert.Equal(t, 10, p.StockLevel)
	assert.Empty(t, env.products.DecrementCalls)
}

func TestService_AddItem_StoreError(t *testing.T) {
	env := newTestEnv()
	productID := env.addProduct(t, "ERR-001", "5.00", 10)
	env.lines.Err = errors.New("lock wait timeout")

	_, err := env.svc.AddItem(context.Background(), productID, 1)

	assert.EqualError(t, err, "lock wait timeout")
}

// ============================================
// Update Item Tests
// ============================================

func TestService_UpdateItem_ReplacesQuantity(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "UPD-001", "2.50", 10)
	added, err := env.svc.AddItem(ctx, productID, 4)
	require.NoError(t, err)

	item, err := env.svc.UpdateItem(ctx, added.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, dec("5.00").Equal(item.Subtotal))
	assert.Equal(t, []mocks.SetQuantityCall{{ItemID: added.ID, Quantity: 2}}, env.lines.SetQuantityCalls)
}

func TestService_UpdateItem_UnknownItem(t *testing.T) {
	env := newTestEnv()

	item, err := env.svc.UpdateItem(context.Background(), 12345, 2)

	assert.NoError(t, err)
	assert.Nil(t, item)
	assert.Empty(t, env.lines.SetQuantityCalls)
}

func TestService_UpdateItem_InsufficientStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "UPD-002", "2.50", 5)
	added, err := env.svc.AddItem(ctx, productID, 1)
	require.NoError(t, err)

	item, err := env.svc.UpdateItem(ctx, added.ID, 6)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, item)
	assert.Empty(t, env.lines.SetQuantityCalls)
}

// ============================================
// Remove / Clear Tests
// ============================================

func TestService_RemoveItem(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "DEL-001", "1.00", 5)
	added, err := env.svc.AddItem(ctx, productID, 1)
	require.NoError(t, err)

	removed, err := env.svc.RemoveItem(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = env.svc.RemoveItem(ctx, added.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestService_RemoveItem_Unknown(t *testing.T) {
	env := newTestEnv()

	removed, err := env.svc.RemoveItem(context.Background(), 999)

	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestService_Clear(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addProduct(t, "CLR-001", "1.00", 5)
	b := env.addProduct(t, "CLR-002", "2.00", 5)
	_, err := env.svc.AddItem(ctx, a, 1)
	require.NoError(t, err)
	_, err = env.svc.AddItem(ctx, b, 1)
	require.NoError(t, err)

	removed, err := env.svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	c, err := env.svc.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

// ============================================
// Get Cart Tests
// ============================================

func TestService_GetCart_Empty(t *testing.T) {
	env := newTestEnv()

	c, err := env.svc.GetCart(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.True(t, c.TotalAmount.IsZero())
}

func TestService_GetCart_NewestFirstWithTotals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addProduct(t, "A-001", "10.10", 10)
	b := env.addProduct(t, "B-001", "0.20", 10)
	_, err := env.svc.AddItem(ctx, a, 3)
	require.NoError(t, err)
	_, err = env.svc.AddItem(ctx, b, 7)
	require.NoError(t, err)

	c, err := env.svc.GetCart(ctx)

	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, b, c.Items[0].ProductID)
	assert.Equal(t, a, c.Items[1].ProductID)
	assert.Equal(t, 10, c.TotalItems)
	// 30.30 + 1.40, exact in decimal
	assert.True(t, dec("31.70").Equal(c.TotalAmount), "got %s", c.TotalAmount)
}

func TestService_GetCart_UsesCurrentPrice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "PRICE-001", "10.00", 10)
	_, err := env.svc.AddItem(ctx, productID, 2)
	require.NoError(t, err)

	_, err = env.products.Update(ctx, productID, []store.Assignment{
		{Column: store.ColumnPrice, Value: dec("12.50")},
	})
	require.NoError(t, err)

	c, err := env.svc.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, dec("25.00").Equal(c.Items[0].Subtotal))
	assert.True(t, dec("25.00").Equal(c.TotalAmount))
}

func TestService_GetCart_DropsLinesOfDeletedProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	productID := env.addProduct(t, "GONE-001", "3.00", 10)
	_, err := env.svc.AddItem(ctx, productID, 1)
	require.NoError(t, err)

	removed, err := product.NewService(env.products).Delete(ctx, productID)
	require.NoError(t, err)
	require.True(t, removed)

	c, err := env.svc.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, env.lines.LineCount())
}
