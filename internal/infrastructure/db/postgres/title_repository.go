package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	m := titleModel(t)
	m.ID = 0
	// Genres already exist; only the join rows are written.
	if err := r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(&m).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("insert title: %w", err)
	}
	return r.FindByID(ctx, m.ID)
}

func (r *TitleRepository) FindByID(ctx context.Context, id int64) (*domain.Title, error) {
	var m Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", orderByName).
		First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	ratings, err := r.ratings(ctx, []int64{m.ID})
	if err != nil {
		return nil, err
	}
	return m.toDomain(ratings[m.ID]), nil
}

func orderByName(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name ASC")
}

func (r *TitleRepository) List(ctx context.Context, filter ports.TitleFilter) ([]*domain.Title, int64, error) {
	q := r.db.WithContext(ctx).Model(&Title{})
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+escapeLike(filter.Name)+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id = (SELECT id FROM categories WHERE slug = ?)", filter.Category)
	}
	if filter.Genre != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = titles.id AND g.slug = ?)`, filter.Genre)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}
	var rows []Title
	err := q.Preload("Category").
		Preload("Genres", orderByName).
		Order("titles.year DESC, titles.name ASC, titles.id ASC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	ratings, err := r.ratings(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Title, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain(ratings[m.ID]))
	}
	return out, total, nil
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	m := titleModel(t)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Title{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"name":        m.Name,
			"year":        m.Year,
			"description": m.Description,
			"category_id": m.CategoryID,
		})
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return domain.ErrCategoryNotFound
			}
			return fmt.Errorf("update title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrTitleNotFound
		}
		genres := m.Genres
		if genres == nil {
			genres = []Genre{}
		}
		if err := tx.Model(&Title{ID: t.ID}).Omit("Genres.*").Association("Genres").Replace(genres); err != nil {
			return fmt.Errorf("replace title genres: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, t.ID)
}

// Delete removes the title; reviews and their comments cascade, the genre
// links are removed explicitly.
func (r *TitleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("detach title genres: %w", err)
		}
		res := tx.Delete(&Title{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrTitleNotFound
		}
		return nil
	})
}

// ratings averages review scores per title; titles without reviews map to nil.
func (r *TitleRepository) ratings(ctx context.Context, ids []int64) (map[int64]*float64, error) {
	out := make(map[int64]*float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		TitleID int64
		Rating  float64
	}
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("title_id, AVG(score) AS rating").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	for _, row := range rows {
		avg := row.Rating
		out[row.TitleID] = &avg
	}
	return out, nil
}
