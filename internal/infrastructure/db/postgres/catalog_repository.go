package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// listSlugged pages through categories or genres ordered by name.
func listSlugged[M any](ctx context.Context, db *gorm.DB, filter ports.SlugFilter) ([]M, int64, error) {
	var zero M
	q := db.WithContext(ctx).Model(&zero)
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []M
	err := q.Order("name ASC, id ASC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	m := Category{Name: c.Name, Slug: c.Slug}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlugExists
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return m.toDomain(), nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var m Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return m.toDomain(), nil
}

func (r *CategoryRepository) List(ctx context.Context, filter ports.SlugFilter) ([]*domain.Category, int64, error) {
	rows, total, err := listSlugged[Category](ctx, r.db, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	out := make([]*domain.Category, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

// Delete removes the category; titles.category_id is nulled by the foreign key.
func (r *CategoryRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&Category{})
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) (*domain.Genre, error) {
	m := Genre{Name: g.Name, Slug: g.Slug}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlugExists
		}
		return nil, fmt.Errorf("insert genre: %w", err)
	}
	out := m.toDomain()
	return &out, nil
}

func (r *GenreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var m Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGenreNotFound
		}
		return nil, fmt.Errorf("find genre: %w", err)
	}
	out := m.toDomain()
	return &out, nil
}

func (r *GenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	var rows []Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	out := make([]domain.Genre, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *GenreRepository) List(ctx context.Context, filter ports.SlugFilter) ([]*domain.Genre, int64, error) {
	rows, total, err := listSlugged[Genre](ctx, r.db, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}
	out := make([]*domain.Genre, 0, len(rows))
	for _, m := range rows {
		g := m.toDomain()
		out = append(out, &g)
	}
	return out, total, nil
}

// Delete removes the genre and its title_genres links in one transaction.
func (r *GenreRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Genre
		if err := tx.Where("slug = ?", slug).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrGenreNotFound
			}
			return fmt.Errorf("find genre: %w", err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", m.ID).Error; err != nil {
			return fmt.Errorf("detach genre: %w", err)
		}
		if err := tx.Delete(&m).Error; err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
}
