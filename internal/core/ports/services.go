package ports

import (
	"context"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// TotalPages is the number of pages needed for Total items.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// AuthService runs the confirmation-code signup flow and resolves bearer
// tokens into actors.
type AuthService interface {
	// RequestConfirmation gets or creates the (username, email) account and
	// mails it a fresh confirmation code.
	RequestConfirmation(ctx context.Context, username, email string) (*domain.User, error)
	// ObtainToken redeems a confirmation code for a bearer token.
	ObtainToken(ctx context.Context, username, code string) (string, error)
	// Authenticate verifies token and loads the user's current role.
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      domain.Role // empty = user
}

// UserPatch is a partial account update; nil fields are left unchanged.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *domain.Role
}

// UserService manages accounts and the caller's own profile.
type UserService interface {
	List(ctx context.Context, actor domain.Actor, filter UserFilter) (Page[*domain.User], error)
	Create(ctx context.Context, actor domain.Actor, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, actor domain.Actor, username string) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, username string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Actor, username string) error
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)
	// UpdateMe applies patch to the caller's profile. patch.Role is ignored.
	UpdateMe(ctx context.Context, actor domain.Actor, patch UserPatch) (*domain.User, error)
}

// TitleInput creates a title. Genre and category are referenced by slug.
type TitleInput struct {
	Name         string
	Year         int
	Description  string
	GenreSlugs   []string
	CategorySlug *string
}

// TitlePatch is a partial title update. A nil GenreSlugs keeps the genres;
// an empty *CategorySlug clears the category.
type TitlePatch struct {
	Name         *string
	Year         *int
	Description  *string
	GenreSlugs   []string
	CategorySlug *string
}

// CatalogService manages categories, genres and titles.
type CatalogService interface {
	ListCategories(ctx context.Context, filter SlugFilter) (Page[*domain.Category], error)
	CreateCategory(ctx context.Context, actor domain.Actor, name, slug string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor domain.Actor, slug string) error

	ListGenres(ctx context.Context, filter SlugFilter) (Page[*domain.Genre], error)
	CreateGenre(ctx context.Context, actor domain.Actor, name, slug string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, actor domain.Actor, slug string) error

	ListTitles(ctx context.Context, filter TitleFilter) (Page[*domain.Title], error)
	GetTitle(ctx context.Context, id int64) (*domain.Title, error)
	CreateTitle(ctx context.Context, actor domain.Actor, in TitleInput) (*domain.Title, error)
	UpdateTitle(ctx context.Context, actor domain.Actor, id int64, patch TitlePatch) (*domain.Title, error)
	DeleteTitle(ctx context.Context, actor domain.Actor, id int64) error
}

// ReviewPatch is a partial review update.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// ReviewService manages reviews and their comments.
type ReviewService interface {
	ListReviews(ctx context.Context, titleID int64, page PageFilter) (Page[*domain.Review], error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error)
	CreateReview(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error)
	UpdateReview(ctx context.Context, actor domain.Actor, titleID, reviewID int64, patch ReviewPatch) (*domain.Review, error)
	DeleteReview(ctx context.Context, actor domain.Actor, titleID, reviewID int64) error

	ListComments(ctx context.Context, titleID, reviewID int64, page PageFilter) (Page[*domain.Comment], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*domain.Comment, error)
	CreateComment(ctx context.Context, actor domain.Actor, titleID, reviewID int64, text string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64, text *string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64) error
}
