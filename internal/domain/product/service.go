package product

import (
	"context"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/pkg/errors"
)

var (
	ErrCreationFailed    = errors.New("failed to create product")
	ErrDuplicateSKU      = errors.New("product with this SKU already exists")
	ErrInvalidPage       = errors.New("page and page size must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Pagination describes one page of a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a slice of products ordered newest first
type Page struct {
	Products   []*Product
	Pagination Pagination
}

type Service struct {
	store store.ProductStore
}

func NewService(s store.ProductStore) *Service {
	return &Service{store: s}
}

// Create inserts a product and returns it as stored
func (s *Service) Create(ctx context.Context, np NewProduct) (*Product, error) {
	id, err := s.store.Insert(ctx, store.NewProductRecord{
		SKU:         np.SKU,
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		StockLevel:  np.StockLevel,
		CategoryID:  nullID(np.CategoryID),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateSKU
	}
	if err != nil {
		return nil, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrCreationFailed
	}
	return p, nil
}

// GetByID returns nil when no product has the id
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return FromRecord(*rec), nil
}

// GetBySKU returns nil when no product has the SKU
func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	rec, err := s.store.FindBySKU(ctx, sku)
	if err != nil || rec == nil {
		return nil, err
	}
	return FromRecord(*rec), nil
}

func (s *Service) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 || pageSize < 1 {
		return nil, ErrInvalidPage
	}

	records, total, err := s.store.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	products := make([]*Product, 0, len(records))
	for _, rec := range records {
		products = append(products, FromRecord(rec))
	}
	return &Page{
		Products: products,
		Pagination: Pagination{
			Page:       page,
			Limit:      pageSize,
			Total:      total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	}, nil
}

// Update applies the present fields of patch. It returns nil when the product
// does not exist and the unchanged product when patch is empty.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	ok, err := s.store.Update(ctx, id, patch.assignments())
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateSKU
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		// deleted between the read and the write
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

// Delete reports whether a product was removed. Its cart lines go with it.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id)
}

// DecrementStock takes quantity units out of stock in one conditional write.
// It returns false when the product is missing or has fewer units left.
func (s *Service) DecrementStock(ctx context.Context, id int64, quantity int) (bool, error) {
	return s.store.DecrementStock(ctx, id, quantity)
}
