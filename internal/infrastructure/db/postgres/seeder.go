package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

var onIDConflict = clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}

// insert writes m unless a row with the same id exists. Other unique
// violations still fail.
func (s *Seeder) insert(ctx context.Context, m interface{}, omit ...string) (bool, error) {
	q := s.db.WithContext(ctx).Clauses(onIDConflict)
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	res := q.Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Seeder) SeedUser(ctx context.Context, u *domain.User) (bool, error) {
	m := userModel(u)
	created, err := s.insert(ctx, &m)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrUserExists
		}
		return false, fmt.Errorf("seed user %d: %w", u.ID, err)
	}
	return created, nil
}

func (s *Seeder) SeedCategory(ctx context.Context, c *domain.Category) (bool, error) {
	m := Category{ID: c.ID, Name: c.Name, Slug: c.Slug}
	created, err := s.insert(ctx, &m)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrSlugExists
		}
		return false, fmt.Errorf("seed category %d: %w", c.ID, err)
	}
	return created, nil
}

func (s *Seeder) SeedGenre(ctx context.Context, g *domain.Genre) (bool, error) {
	m := Genre{ID: g.ID, Name: g.Name, Slug: g.Slug}
	created, err := s.insert(ctx, &m)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrSlugExists
		}
		return false, fmt.Errorf("seed genre %d: %w", g.ID, err)
	}
	return created, nil
}

func (s *Seeder) SeedTitle(ctx context.Context, t *domain.Title, categoryID *int64) (bool, error) {
	m := Title{ID: t.ID, Name: t.Name, Year: t.Year, Description: t.Description, CategoryID: categoryID}
	created, err := s.insert(ctx, &m, "Category", "Genres")
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("title %d: %w", t.ID, domain.ErrCategoryNotFound)
		}
		return false, fmt.Errorf("seed title %d: %w", t.ID, err)
	}
	return created, nil
}

func (s *Seeder) SeedTitleGenre(ctx context.Context, titleID, genreID int64) (bool, error) {
	res := s.db.WithContext(ctx).Exec(
		"INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		titleID, genreID,
	)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			if _, constraint := pgCode(res.Error); strings.Contains(constraint, "genre") {
				return false, fmt.Errorf("genre %d: %w", genreID, domain.ErrGenreNotFound)
			}
			return false, fmt.Errorf("title %d: %w", titleID, domain.ErrTitleNotFound)
		}
		return false, fmt.Errorf("seed title genre: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Seeder) SeedReview(ctx context.Context, r *domain.Review) (bool, error) {
	m := reviewModel(r)
	created, err := s.insert(ctx, &m, "Title", "Author")
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return false, domain.ErrDuplicateReview
		case isForeignKeyViolation(err):
			return false, fmt.Errorf("review %d: %w", r.ID, referencedNotFound(err, domain.ErrTitleNotFound))
		}
		return false, fmt.Errorf("seed review %d: %w", r.ID, err)
	}
	return created, nil
}

func (s *Seeder) SeedComment(ctx context.Context, c *domain.Comment) (bool, error) {
	m := commentModel(c)
	created, err := s.insert(ctx, &m, "Review", "Author")
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("comment %d: %w", c.ID, referencedNotFound(err, domain.ErrReviewNotFound))
		}
		return false, fmt.Errorf("seed comment %d: %w", c.ID, err)
	}
	return created, nil
}

// referencedNotFound picks the missing parent from the violated constraint:
// author constraints point at users, everything else at fallback.
func referencedNotFound(err error, fallback error) error {
	if _, constraint := pgCode(err); strings.Contains(constraint, "author") {
		return domain.ErrUserNotFound
	}
	return fallback
}

// SyncSequences moves every serial past the highest seeded id.
func (s *Seeder) SyncSequences(ctx context.Context) error {
	for _, table := range []string{"users", "categories", "genres", "titles", "reviews", "comments"} {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("sync %s sequence: %w", table, err)
		}
	}
	return nil
}
