package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
)

type cartLine struct {
	id        int64
	productID int64
	quantity  int
	createdAt time.Time
	updatedAt time.Time
}

// MockCartStore is an in-memory implementation of store.CartStore for testing.
// Lines are joined against the products of the MockProductStore it was created with,
// and removed when their product is deleted.
type MockCartStore struct {
	mu       sync.Mutex
	products *MockProductStore
	lines    map[int64]*cartLine
	nextID   int64

	// Err, when set, is returned by every method
	Err error

	// For tracking calls in tests
	UpsertCalls      []UpsertCall
	SetQuantityCalls []SetQuantityCall
	DeleteAllCalls   int
}

// UpsertCall records parameters passed to UpsertItem
type UpsertCall struct {
	ProductID int64
	Quantity  int
}

// SetQuantityCall records parameters passed to SetQuantity
type SetQuantityCall struct {
	ItemID   int64
	Quantity int
}

// NewMockCartStore creates a new MockCartStore joined with products
func NewMockCartStore(products *MockProductStore) *MockCartStore {
	m := &MockCartStore{
		products: products,
		lines:    make(map[int64]*cartLine),
	}
	products.mu.Lock()
	products.onDelete = append(products.onDelete, m.deleteByProduct)
	products.mu.Unlock()
	return m
}

// LineCount returns the number of stored lines
func (m *MockCartStore) LineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

func (m *MockCartStore) UpsertItem(ctx context.Context, productID int64, quantity int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{ProductID: productID, Quantity: quantity})
	if m.Err != nil {
		return 0, m.Err
	}
	for _, line := range m.lines {
		if line.productID == productID {
			line.quantity += quantity
			line.updatedAt = line.updatedAt.Add(time.Second)
			return line.id, nil
		}
	}

	m.nextID++
	created := baseTime.Add(time.Duration(m.nextID) * time.Second)
	m.lines[m.nextID] = &cartLine{
		id:        m.nextID,
		productID: productID,
		quantity:  quantity,
		createdAt: created,
		updatedAt: created,
	}
	return m.nextID, nil
}

func (m *MockCartStore) FindItem(ctx context.Context, itemID int64) (*store.CartItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	line, ok := m.lines[itemID]
	if !ok {
		return nil, nil
	}
	rec, ok := m.join(line)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MockCartStore) ListItems(ctx context.Context) ([]store.CartItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	items := make([]store.CartItemRecord, 0, len(m.lines))
	for _, line := range m.lines {
		if rec, ok := m.join(line); ok {
			items = append(items, rec)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (m *MockCartStore) SetQuantity(ctx context.Context, itemID int64, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetQuantityCalls = append(m.SetQuantityCalls, SetQuantityCall{ItemID: itemID, Quantity: quantity})
	if m.Err != nil {
		return false, m.Err
	}
	line, ok := m.lines[itemID]
	if !ok {
		return false, nil
	}
	line.quantity = quantity
	line.updatedAt = line.updatedAt.Add(time.Second)
	return true, nil
}

func (m *MockCartStore) DeleteItem(ctx context.Context, itemID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.lines[itemID]; !ok {
		return false, nil
	}
	delete(m.lines, itemID)
	return true, nil
}

func (m *MockCartStore) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteAllCalls++
	if m.Err != nil {
		return 0, m.Err
	}
	n := int64(len(m.lines))
	m.lines = make(map[int64]*cartLine)
	return n, nil
}

func (m *MockCartStore) deleteByProduct(productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, line := range m.lines {
		if line.productID == productID {
			delete(m.lines, id)
		}
	}
}

// join must be called with m.mu held
func (m *MockCartStore) join(line *cartLine) (store.CartItemRecord, bool) {
	p, ok := m.products.Product(line.productID)
	if !ok {
		return store.CartItemRecord{}, false
	}
	return store.CartItemRecord{
		ID:        line.id,
		ProductID: line.productID,
		Quantity:  line.quantity,
		CreatedAt: line.createdAt,
		UpdatedAt: line.updatedAt,
		Product:   p,
	}, true
}
