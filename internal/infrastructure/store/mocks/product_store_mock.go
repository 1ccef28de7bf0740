package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// MockProductStore is an in-memory implementation of store.ProductStore for testing
type MockProductStore struct {
	mu       sync.Mutex
	products map[int64]store.ProductRecord
	nextID   int64
	onDelete []func(productID int64)

	// Err, when set, is returned by every method
	Err error

	// For tracking calls in tests
	InsertCalls    []store.NewProductRecord
	UpdateCalls    []UpdateCall
	DecrementCalls []DecrementCall
	// DropInserts simulates a store that loses the row right after insert
	DropInserts bool
}

// UpdateCall records parameters passed to Update
type UpdateCall struct {
	ID          int64
	Assignments []store.Assignment
}

// DecrementCall records parameters passed to DecrementStock
type DecrementCall struct {
	ID       int64
	Quantity int
}

// NewMockProductStore creates a new MockProductStore
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products: make(map[int64]store.ProductRecord),
	}
}

// SetProduct stores a product directly, bypassing call tracking
func (m *MockProductStore) SetProduct(p store.ProductRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID > m.nextID {
		m.nextID = p.ID
	}
	m.products[p.ID] = p
}

// Product returns the stored product and whether it exists
func (m *MockProductStore) Product(id int64) (store.ProductRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *MockProductStore) Insert(ctx context.Context, p store.NewProductRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, p)
	if m.Err != nil {
		return 0, m.Err
	}
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return 0, store.ErrDuplicate
		}
	}

	m.nextID++
	if m.DropInserts {
		return m.nextID, nil
	}
	// Each insert is one second apart so creation order is observable
	created := baseTime.Add(time.Duration(m.nextID) * time.Second)
	m.products[m.nextID] = store.ProductRecord{
		ID:          m.nextID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		StockLevel:  p.StockLevel,
		CategoryID:  p.CategoryID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	return m.nextID, nil
}

func (m *MockProductStore) FindByID(ctx context.Context, id int64) (*store.ProductRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockProductStore) FindBySKU(ctx context.Context, sku string) (*store.ProductRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.products {
		if p.SKU == sku {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockProductStore) List(ctx context.Context, limit, offset int) ([]store.ProductRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}
	all := make([]store.ProductRecord, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []store.ProductRecord{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *MockProductStore) Update(ctx context.Context, id int64, assignments []store.Assignment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Assignments: assignments})
	if m.Err != nil {
		return false, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return false, nil
	}

	for _, a := range assignments {
		switch a.Column {
		case store.ColumnSKU:
			sku := a.Value.(string)
			for otherID, other := range m.products {
				if otherID != id && other.SKU == sku {
					return false, store.ErrDuplicate
				}
			}
			p.SKU = sku
		case store.ColumnName:
			p.Name = a.Value.(string)
		case store.ColumnDescription:
			p.Description = a.Value.(string)
		case store.ColumnPrice:
			p.Price = a.Value.(decimal.Decimal)
		case store.ColumnStockLevel:
			p.StockLevel = a.Value.(int)
		case store.ColumnCategoryID:
			p.CategoryID = a.Value.(sql.NullInt64)
		}
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
	m.products[id] = p
	return true, nil
}

func (m *MockProductStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	if m.Err != nil {
		m.mu.Unlock()
		return false, m.Err
	}
	_, ok := m.products[id]
	delete(m.products, id)
	hooks := m.onDelete
	m.mu.Unlock()

	if ok {
		for _, hook := range hooks {
			hook(id)
		}
	}
	return ok, nil
}

func (m *MockProductStore) DecrementStock(ctx context.Context, id int64, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DecrementCalls = append(m.DecrementCalls, DecrementCall{ID: id, Quantity: quantity})
	if m.Err != nil {
		return false, m.Err
	}
	p, ok := m.products[id]
	if !ok || p.StockLevel < quantity {
		return false, nil
	}
	p.StockLevel -= quantity
	m.products[id] = p
	return true, nil
}
