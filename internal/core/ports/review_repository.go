package ports

import (
	"context"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// PageFilter selects one page of a nested collection.
type PageFilter struct {
	Page  int
	Limit int
}

// ReviewRepository persists reviews. A unique index on (author, title)
// turns concurrent duplicates into domain.ErrDuplicateReview.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) (*domain.Review, error)
	// FindByID returns the review only if it belongs to titleID.
	FindByID(ctx context.Context, titleID, id int64) (*domain.Review, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
	// List returns a page of the title's reviews, newest first.
	List(ctx context.Context, titleID int64, page PageFilter) ([]*domain.Review, int64, error)
	// Update persists text and score; pub_date never changes.
	Update(ctx context.Context, r *domain.Review) (*domain.Review, error)
	// Delete removes the review and its comments atomically.
	Delete(ctx context.Context, id int64) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	// FindByID returns the comment only if it belongs to reviewID.
	FindByID(ctx context.Context, reviewID, id int64) (*domain.Comment, error)
	List(ctx context.Context, reviewID int64, page PageFilter) ([]*domain.Comment, int64, error)
	Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Genres     GenreRepository
	Titles     TitleRepository
	Reviews    ReviewRepository
	Comments   CommentRepository
	Seeder     Seeder
}

// Seeder inserts rows with explicit ids for the bulk loader. Each call is a
// get-or-create: an existing row with the same id is left untouched and
// created is false. Dangling references fail with a domain not-found error.
type Seeder interface {
	SeedUser(ctx context.Context, u *domain.User) (created bool, err error)
	SeedCategory(ctx context.Context, c *domain.Category) (bool, error)
	SeedGenre(ctx context.Context, g *domain.Genre) (bool, error)
	SeedTitle(ctx context.Context, t *domain.Title, categoryID *int64) (bool, error)
	SeedTitleGenre(ctx context.Context, titleID, genreID int64) (bool, error)
	SeedReview(ctx context.Context, r *domain.Review) (bool, error)
	SeedComment(ctx context.Context, c *domain.Comment) (bool, error)
	// SyncSequences moves id generators past the highest seeded id.
	SyncSequences(ctx context.Context) error
}
