package store

import (
	"context"
	"database/sql"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// openTestDB connects to TEST_DATABASE_URL with a freshly migrated schema.
// TEST_DATABASE_DRIVER selects postgres (default) or mysql.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	driver := os.Getenv("TEST_DATABASE_DRIVER")
	if driver == "" {
		driver = DriverPostgres
	}
	migrateDSN := dsn
	if driver == DriverMySQL {
		var err error
		migrateDSN, err = normalizeMySQLDSN(dsn)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(driver, migrateDSN, MigrateDown))
	require.NoError(t, Migrate(driver, migrateDSN, MigrateUp))

	db, err := Connect(driver, dsn, PoolConfig{MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertProduct(t *testing.T, s *SQLProductStore, sku string, stock int) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), NewProductRecord{
		SKU:         sku,
		Name:        "Product " + sku,
		Description: "Integration test product",
		Price:       decimal.RequireFromString("99.99"),
		StockLevel:  stock,
	})
	require.NoError(t, err)
	return id
}

// ============================================
// Product Store Tests
// ============================================

func TestSQLProductStore_CRUD(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLProductStore(db)
	ctx := context.Background()

	id := insertProduct(t, s, "SQL-001", 10)

	p, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "SQL-001", p.SKU)
	assert.True(t, decimal.RequireFromString("99.99").Equal(p.Price))
	assert.False(t, p.CategoryID.Valid)

	ok, err := s.Update(ctx, id, []Assignment{{Column: ColumnName, Value: "Renamed"}, {Column: ColumnStockLevel, Value: 3}})
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = s.FindBySKU(ctx, "SQL-001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, 3, p.StockLevel)

	removed, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	p, err = s.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLProductStore_DuplicateSKU(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLProductStore(db)
	insertProduct(t, s, "SQL-001", 10)

	_, err := s.Insert(context.Background(), NewProductRecord{
		SKU:   "SQL-001",
		Name:  "Again",
		Price: decimal.RequireFromString("1.00"),
	})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLProductStore_UpdateRejectsUnknownColumn(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLProductStore(db)
	id := insertProduct(t, s, "SQL-001", 10)

	_, err := s.Update(context.Background(), id, []Assignment{{Column: "id", Value: 5}})

	assert.Error(t, err)
}

func TestSQLProductStore_ListNewestFirst(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLProductStore(db)
	for _, sku := range []string{"SQL-001", "SQL-002", "SQL-003"} {
		insertProduct(t, s, sku, 1)
	}

	page, total, err := s.List(context.Background(), 2, 0)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "SQL-003", page[0].SKU)
	assert.Equal(t, "SQL-002", page[1].SKU)
}

func TestSQLProductStore_ConcurrentDecrement(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLProductStore(db)
	id := insertProduct(t, s, "SQL-001", 10)

	var succeeded atomic.Int32
	var g errgroup.Group
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			ok, err := s.DecrementStock(context.Background(), id, 1)
			if ok {
				succeeded.Add(1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	p, err := s.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, 0, p.StockLevel)
}

// ============================================
// Cart Store Tests
// ============================================

func TestSQLCartStore_UpsertMerges(t *testing.T) {
	db := openTestDB(t)
	products := NewSQLProductStore(db)
	cart := NewSQLCartStore(db)
	ctx := context.Background()
	productID := insertProduct(t, products, "SQL-001", 10)

	first, err := cart.UpsertItem(ctx, productID, 3)
	require.NoError(t, err)
	second, err := cart.UpsertItem(ctx, productID, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	item, err := cart.FindItem(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, "SQL-001", item.Product.SKU)
}

func TestSQLCartStore_SetQuantitySameValue(t *testing.T) {
	db := openTestDB(t)
	products := NewSQLProductStore(db)
	cart := NewSQLCartStore(db)
	ctx := context.Background()
	id, err := cart.UpsertItem(ctx, insertProduct(t, products, "SQL-001", 10), 2)
	require.NoError(t, err)

	ok, err := cart.SetQuantity(ctx, id, 2)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLCartStore_CascadeAndClear(t *testing.T) {
	db := openTestDB(t)
	products := NewSQLProductStore(db)
	cart := NewSQLCartStore(db)
	ctx := context.Background()

	gone := insertProduct(t, products, "SQL-001", 10)
	kept := insertProduct(t, products, "SQL-002", 10)
	_, err := cart.UpsertItem(ctx, gone, 1)
	require.NoError(t, err)
	_, err = cart.UpsertItem(ctx, kept, 1)
	require.NoError(t, err)

	_, err = products.Delete(ctx, gone)
	require.NoError(t, err)

	items, err := cart.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept, items[0].ProductID)

	n, err := cart.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLCartStore_MissingItem(t *testing.T) {
	db := openTestDB(t)
	cart := NewSQLCartStore(db)
	ctx := context.Background()

	item, err := cart.FindItem(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, item)

	ok, err := cart.SetQuantity(ctx, 999, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cart.DeleteItem(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================
// Category Store Tests
// ============================================

func TestSQLCategoryStore(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLCategoryStore(db)
	ctx := context.Background()

	_, err := s.Insert(ctx, "Electronics", "Devices")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "Books", "")
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Books", list[0].Name)
	assert.Equal(t, sql.NullString{}, list[0].Description)

	found, err := s.FindByName(ctx, "Electronics")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Devices", found.Description.String)

	missing, err := s.FindByName(ctx, "Garden")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
