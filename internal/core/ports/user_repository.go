package ports

import (
	"context"
	"time"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// UserFilter carries the query parameters for listing users.
type UserFilter struct {
	Search string // optional: substring of username
	Page   int    // 1-based
	Limit  int
}

// UserRepository defines persistence operations for accounts. Username and
// email are unique; violations surface as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns a page of users ordered by username and the total count.
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	// Update persists the mutable fields of u and stamps UpdatedAt.
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	// RecordLogin sets last_login to now only while it still equals prev.
	// A lost race yields domain.ErrInvalidCode.
	RecordLogin(ctx context.Context, id int64, prev, now time.Time) error
	// Delete removes the user with their reviews, the comments on those
	// reviews and their own comments, atomically.
	Delete(ctx context.Context, id int64) error
}
