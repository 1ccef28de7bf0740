package category

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Category groups products. Categories are seeded and read-only at runtime.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Service struct {
	store store.CategoryStore
}

func NewService(s store.CategoryStore) *Service {
	return &Service{store: s}
}

// List returns every category ordered by name
func (s *Service) List(ctx context.Context) ([]*Category, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]*Category, 0, len(records))
	for _, r := range records {
		categories = append(categories, &Category{
			ID:          r.ID,
			Name:        r.Name,
			Slug:        generateSlug(r.Name),
			Description: r.Description.String,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return categories, nil
}

func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
