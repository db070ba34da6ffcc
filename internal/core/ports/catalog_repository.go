package ports

import (
	"context"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// SlugFilter lists categories or genres by name.
type SlugFilter struct {
	Search string // optional: substring of name
	Page   int
	Limit  int
}

// CategoryRepository persists categories. Slugs are unique
// (domain.ErrSlugExists).
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, filter SlugFilter) ([]*domain.Category, int64, error)
	// Delete removes the category and clears it from every title.
	Delete(ctx context.Context, slug string) error
}

// GenreRepository persists genres. Slugs are unique (domain.ErrSlugExists).
type GenreRepository interface {
	Create(ctx context.Context, g *domain.Genre) (*domain.Genre, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	// FindBySlugs returns the genres matching slugs; missing slugs are
	// simply absent from the result.
	FindBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error)
	List(ctx context.Context, filter SlugFilter) ([]*domain.Genre, int64, error)
	// Delete removes the genre and detaches it from every title.
	Delete(ctx context.Context, slug string) error
}

// TitleFilter carries the query parameters for listing titles.
type TitleFilter struct {
	Name     string // optional: substring of name
	Genre    string // optional: genre slug
	Category string // optional: category slug
	Year     int    // optional: exact year, 0 = any
	Page     int
	Limit    int
}

// TitleRepository persists titles. Reads populate Category, Genres and the
// derived Rating.
type TitleRepository interface {
	Create(ctx context.Context, t *domain.Title) (*domain.Title, error)
	FindByID(ctx context.Context, id int64) (*domain.Title, error)
	// List returns a page ordered by year descending, then name.
	List(ctx context.Context, filter TitleFilter) ([]*domain.Title, int64, error)
	Update(ctx context.Context, t *domain.Title) (*domain.Title, error)
	// Delete removes the title, its reviews and their comments atomically.
	Delete(ctx context.Context, id int64) error
}
