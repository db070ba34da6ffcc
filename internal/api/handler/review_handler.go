package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
)

// ReviewHandler serves reviews and their comments under a title.
type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// reviewPath is the id triple carried by nested routes. Only the ids present
// in the route are parsed.
type reviewPath struct {
	titleID, reviewID, commentID int64
}

func parseReviewPath(c echo.Context, names ...string) (reviewPath, error) {
	var p reviewPath
	for _, name := range names {
		id, err := pathID(c, name)
		if err != nil {
			return reviewPath{}, err
		}
		switch name {
		case "title_id":
			p.titleID = id
		case "review_id":
			p.reviewID = id
		case "comment_id":
			p.commentID = id
		}
	}
	return p, nil
}

// ── Reviews ───────────────────────────────────────────────────────────────────

// ListReviews handles GET /titles/:title_id/reviews.
//
// @Summary      List reviews of a title
// @Tags         reviews
// @Produce      json
// @Param        title_id  path      int  true   "Title id"
// @Param        page      query     int  false  "Page number"
// @Param        limit     query     int  false  "Page size (max 100)"
// @Success      200       {object}  pageResponse[domain.Review]
// @Failure      404       {object}  errorResponse
// @Router       /titles/{title_id}/reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id")
	if err != nil {
		return err
	}
	page, err := pageFilter(c)
	if err != nil {
		return err
	}
	result, err := h.reviews.ListReviews(c.Request().Context(), p.titleID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// GetReview handles GET /titles/:title_id/reviews/:review_id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        title_id   path      int  true  "Title id"
// @Param        review_id  path      int  true  "Review id"
// @Success      200        {object}  domain.Review
// @Failure      404        {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id} [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id")
	if err != nil {
		return err
	}
	review, err := h.reviews.GetReview(c.Request().Context(), p.titleID, p.reviewID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// CreateReview handles POST /titles/:title_id/reviews.
//
// @Summary      Review a title
// @Description  One review per author and title.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      int                  true  "Title id"
// @Param        body      body      createReviewRequest  true  "Review"
// @Success      201       {object}  domain.Review
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /titles/{title_id}/reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id")
	if err != nil {
		return err
	}
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ReviewsCreatedTotal.WithLabelValues("invalid").Inc()
		return err
	}

	review, err := h.reviews.CreateReview(c.Request().Context(), actorFrom(c), p.titleID, req.Text, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateReview):
			metrics.ReviewsCreatedTotal.WithLabelValues("duplicate").Inc()
		case errors.Is(err, domain.ErrValidation):
			metrics.ReviewsCreatedTotal.WithLabelValues("invalid").Inc()
		}
		return err
	}

	metrics.ReviewsCreatedTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, review)
}

// UpdateReview handles PATCH /titles/:title_id/reviews/:review_id.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      int                  true  "Title id"
// @Param        review_id  path      int                  true  "Review id"
// @Param        body       body      updateReviewRequest  true  "Fields to change"
// @Success      200        {object}  domain.Review
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id} [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id")
	if err != nil {
		return err
	}
	var req updateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.UpdateReview(c.Request().Context(), actorFrom(c), p.titleID, p.reviewID, toReviewPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// DeleteReview handles DELETE /titles/:title_id/reviews/:review_id.
//
// @Summary      Delete a review with its comments
// @Tags         reviews
// @Security     BearerAuth
// @Param        title_id   path  int  true  "Title id"
// @Param        review_id  path  int  true  "Review id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id")
	if err != nil {
		return err
	}
	if err := h.reviews.DeleteReview(c.Request().Context(), actorFrom(c), p.titleID, p.reviewID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ── Comments ──────────────────────────────────────────────────────────────────

// ListComments handles GET /titles/:title_id/reviews/:review_id/comments.
//
// @Summary      List comments on a review
// @Tags         comments
// @Produce      json
// @Param        title_id   path      int  true   "Title id"
// @Param        review_id  path      int  true   "Review id"
// @Param        page       query     int  false  "Page number"
// @Param        limit      query     int  false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[domain.Comment]
// @Failure      404        {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *ReviewHandler) ListComments(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id")
	if err != nil {
		return err
	}
	page, err := pageFilter(c)
	if err != nil {
		return err
	}
	result, err := h.reviews.ListComments(c.Request().Context(), p.titleID, p.reviewID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// GetComment handles GET /titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Param        title_id    path      int  true  "Title id"
// @Param        review_id   path      int  true  "Review id"
// @Param        comment_id  path      int  true  "Comment id"
// @Success      200         {object}  domain.Comment
// @Failure      404         {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *ReviewHandler) GetComment(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return err
	}
	comment, err := h.reviews.GetComment(c.Request().Context(), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// CreateComment handles POST /titles/:title_id/reviews/:review_id/comments.
//
// @Summary      Comment on a review
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      int             true  "Title id"
// @Param        review_id  path      int             true  "Review id"
// @Param        body       body      commentRequest  true  "Comment"
// @Success      201        {object}  domain.Comment
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *ReviewHandler) CreateComment(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.reviews.CreateComment(c.Request().Context(), actorFrom(c), p.titleID, p.reviewID, req.Text)
	if err != nil {
		return err
	}
	metrics.CommentsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment handles PATCH /titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id    path      int                   true  "Title id"
// @Param        review_id   path      int                   true  "Review id"
// @Param        comment_id  path      int                   true  "Comment id"
// @Param        body        body      updateCommentRequest  true  "Fields to change"
// @Success      200         {object}  domain.Comment
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *ReviewHandler) UpdateComment(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return err
	}
	var req updateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.reviews.UpdateComment(c.Request().Context(), actorFrom(c), p.titleID, p.reviewID, p.commentID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /titles/:title_id/reviews/:review_id/comments/:comment_id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        title_id    path  int  true  "Title id"
// @Param        review_id   path  int  true  "Review id"
// @Param        comment_id  path  int  true  "Comment id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *ReviewHandler) DeleteComment(c echo.Context) error {
	p, err := parseReviewPath(c, "title_id", "review_id", "comment_id")
	if err != nil {
		return err
	}
	if err := h.reviews.DeleteComment(c.Request().Context(), actorFrom(c), p.titleID, p.reviewID, p.commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
