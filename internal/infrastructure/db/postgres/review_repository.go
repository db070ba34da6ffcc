package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	m := reviewModel(rv)
	m.ID = 0
	if err := r.db.WithContext(ctx).Omit("Title", "Author").Create(&m).Error; err != nil {
		return nil, reviewInsertError(err)
	}
	return r.FindByID(ctx, m.TitleID, m.ID)
}

func reviewInsertError(err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicateReview
	case isForeignKeyViolation(err):
		return referencedNotFound(err, domain.ErrTitleNotFound)
	}
	return fmt.Errorf("insert review: %w", err)
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, id int64) (*domain.Review, error) {
	var m Review
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("reviews.id = ? AND reviews.title_id = ?", id, titleID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count reviews: %w", err)
	}
	return n > 0, nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID int64, page ports.PageFilter) ([]*domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&Review{}).Where("reviews.title_id = ?", titleID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	var rows []Review
	err := q.Joins("Author").
		Order("reviews.pub_date DESC, reviews.id DESC").
		Offset(offset(page.Page, page.Limit)).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]*domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	res := r.db.WithContext(ctx).Model(&Review{}).Where("id = ?", rv.ID).Updates(map[string]interface{}{
		"text":  rv.Text,
		"score": rv.Score,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.FindByID(ctx, rv.TitleID, rv.ID)
}

// Delete removes the review; its comments cascade.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	m := commentModel(c)
	m.ID = 0
	if err := r.db.WithContext(ctx).Omit("Review", "Author").Create(&m).Error; err != nil {
		return nil, commentInsertError(err)
	}
	return r.FindByID(ctx, m.ReviewID, m.ID)
}

func commentInsertError(err error) error {
	if isForeignKeyViolation(err) {
		return referencedNotFound(err, domain.ErrReviewNotFound)
	}
	return fmt.Errorf("insert comment: %w", err)
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, id int64) (*domain.Comment, error) {
	var m Comment
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("comments.id = ? AND comments.review_id = ?", id, reviewID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return m.toDomain(), nil
}

func (r *CommentRepository) List(ctx context.Context, reviewID int64, page ports.PageFilter) ([]*domain.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&Comment{}).Where("comments.review_id = ?", reviewID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	var rows []Comment
	err := q.Joins("Author").
		Order("comments.pub_date DESC, comments.id DESC").
		Offset(offset(page.Page, page.Limit)).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	out := make([]*domain.Comment, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	res := r.db.WithContext(ctx).Model(&Comment{}).Where("id = ?", c.ID).Update("text", c.Text)
	if res.Error != nil {
		return nil, fmt.Errorf("update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrCommentNotFound
	}
	return r.FindByID(ctx, c.ReviewID, c.ID)
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
