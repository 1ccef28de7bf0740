package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
)

// MockCategoryStore is an in-memory implementation of store.CategoryStore for testing
type MockCategoryStore struct {
	mu         sync.Mutex
	categories map[int64]store.CategoryRecord
	nextID     int64

	Err         error
	InsertCalls []string
}

func NewMockCategoryStore() *MockCategoryStore {
	return &MockCategoryStore{categories: make(map[int64]store.CategoryRecord)}
}

func (m *MockCategoryStore) Insert(ctx context.Context, name, description string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, name)
	if m.Err != nil {
		return 0, m.Err
	}
	m.nextID++
	m.categories[m.nextID] = store.CategoryRecord{
		ID:          m.nextID,
		Name:        name,
		Description: sql.NullString{String: description, Valid: description != ""},
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
	return m.nextID, nil
}

func (m *MockCategoryStore) FindByName(ctx context.Context, name string) (*store.CategoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.categories {
		if c.Name == name {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryStore) List(ctx context.Context) ([]store.CategoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	list := make([]store.CategoryRecord, 0, len(m.categories))
	for _, c := range m.categories {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
