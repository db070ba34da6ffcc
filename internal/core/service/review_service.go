package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/policy"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// ReviewService implements reviews and comments nested under titles.
type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	logger   zerolog.Logger
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{titles: titles, reviews: reviews, comments: comments, logger: logger}
}

// ── Reviews ───────────────────────────────────────────────────────────────────

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64, page ports.PageFilter) (ports.Page[*domain.Review], error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return ports.Page[*domain.Review]{}, err
	}
	page.Page, page.Limit = normalizePage(page.Page, page.Limit)
	items, total, err := s.reviews.List(ctx, titleID, page)
	if err != nil {
		return ports.Page[*domain.Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	return newPage(items, total, page.Page, page.Limit), nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*domain.Review, error) {
	return s.reviews.FindByID(ctx, titleID, reviewID)
}

// CreateReview posts the actor's review of a title. The early existence check
// gives the common case a clean error; the store's unique index on (author,
// title) decides concurrent attempts.
func (s *ReviewService) CreateReview(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindReview}); err != nil {
		return nil, err
	}
	r := &domain.Review{
		TitleID:        titleID,
		AuthorID:       actor.UserID,
		AuthorUsername: actor.Username,
		Text:           text,
		Score:          score,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateReview
	}

	r.PubDate = domain.Now()
	created, err := s.reviews.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("review_id", created.ID).
		Int64("title_id", titleID).
		Str("author", actor.Username).
		Int("score", score).
		Msg("review created")
	return created, nil
}

// UpdateReview edits text and score. The one-review rule is not re-checked
// and pub_date is left as stamped on creation.
func (s *ReviewService) UpdateReview(ctx context.Context, actor domain.Actor, titleID, reviewID int64, patch ports.ReviewPatch) (*domain.Review, error) {
	r, err := s.loadReviewFor(ctx, actor, policy.Update, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if patch.Text != nil {
		r.Text = *patch.Text
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.reviews.Update(ctx, r)
}

// DeleteReview removes the review and its comments.
func (s *ReviewService) DeleteReview(ctx context.Context, actor domain.Actor, titleID, reviewID int64) error {
	r, err := s.loadReviewFor(ctx, actor, policy.Delete, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, r.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("review_id", r.ID).Str("by", actor.Username).Msg("review deleted")
	return nil
}

// loadReviewFor checks authentication before the lookup and ownership after
// it, so anonymous callers never learn whether a review exists.
func (s *ReviewService) loadReviewFor(ctx context.Context, actor domain.Actor, action policy.Action, titleID, reviewID int64) (*domain.Review, error) {
	if !actor.Authenticated() {
		return nil, policy.Authorize(actor, action, policy.Resource{Kind: policy.KindReview})
	}
	r, err := s.reviews.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, policy.Resource{Kind: policy.KindReview, OwnerID: r.AuthorID}); err != nil {
		return nil, err
	}
	return r, nil
}

// ── Comments ──────────────────────────────────────────────────────────────────

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, page ports.PageFilter) (ports.Page[*domain.Comment], error) {
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return ports.Page[*domain.Comment]{}, err
	}
	page.Page, page.Limit = normalizePage(page.Page, page.Limit)
	items, total, err := s.comments.List(ctx, reviewID, page)
	if err != nil {
		return ports.Page[*domain.Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	return newPage(items, total, page.Page, page.Limit), nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, reviewID, commentID)
}

func (s *ReviewService) CreateComment(ctx context.Context, actor domain.Actor, titleID, reviewID int64, text string) (*domain.Comment, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindComment}); err != nil {
		return nil, err
	}
	c := &domain.Comment{
		ReviewID:       reviewID,
		AuthorID:       actor.UserID,
		AuthorUsername: actor.Username,
		Text:           text,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	c.PubDate = domain.Now()
	created, err := s.comments.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.logger.Info().Int64("comment_id", created.ID).Int64("review_id", reviewID).Str("author", actor.Username).Msg("comment created")
	return created, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64, text *string) (*domain.Comment, error) {
	c, err := s.loadCommentFor(ctx, actor, policy.Update, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		c.Text = *text
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.comments.Update(ctx, c)
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64) error {
	c, err := s.loadCommentFor(ctx, actor, policy.Delete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("comment_id", c.ID).Str("by", actor.Username).Msg("comment deleted")
	return nil
}

func (s *ReviewService) loadCommentFor(ctx context.Context, actor domain.Actor, action policy.Action, titleID, reviewID, commentID int64) (*domain.Comment, error) {
	if !actor.Authenticated() {
		return nil, policy.Authorize(actor, action, policy.Resource{Kind: policy.KindComment})
	}
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, action, policy.Resource{Kind: policy.KindComment, OwnerID: c.AuthorID}); err != nil {
		return nil, err
	}
	return c, nil
}
