package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/api/middleware"
	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type stubReviews struct {
	ports.ReviewService

	createFn func(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error)
	patch    ports.ReviewPatch
	ids      []int64
	text     *string
}

func (s *stubReviews) CreateReview(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error) {
	return s.createFn(ctx, actor, titleID, text, score)
}

func (s *stubReviews) UpdateReview(ctx context.Context, actor domain.Actor, titleID, reviewID int64, patch ports.ReviewPatch) (*domain.Review, error) {
	s.ids, s.patch = []int64{titleID, reviewID}, patch
	return &domain.Review{ID: reviewID, TitleID: titleID, Text: "updated", Score: 5}, nil
}

func (s *stubReviews) UpdateComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64, text *string) (*domain.Comment, error) {
	s.ids, s.text = []int64{titleID, reviewID, commentID}, text
	return &domain.Comment{ID: commentID, ReviewID: reviewID, Text: *text}, nil
}

func (s *stubReviews) DeleteComment(ctx context.Context, actor domain.Actor, titleID, reviewID, commentID int64) error {
	s.ids = []int64{titleID, reviewID, commentID}
	return domain.ErrForbidden
}

func withParams(c echo.Context, kv ...string) {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

func TestReviewHandler_CreateReview_Success(t *testing.T) {
	author := domain.Actor{UserID: 4, Username: "bob", Role: domain.RoleUser}
	pub := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubReviews{
		createFn: func(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error) {
			if actor != author || titleID != 7 || text != "Great" || score != 9 {
				t.Fatalf("unexpected args: %+v %d %q %d", actor, titleID, text, score)
			}
			return &domain.Review{ID: 1, TitleID: 7, AuthorID: 4, AuthorUsername: "bob", Text: text, Score: score, PubDate: pub}, nil
		},
	}
	handler := NewReviewHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/titles/7/reviews", `{"text":"Great","score":9}`)
	withParams(c, "title_id", "7")
	c.Set(middleware.ActorKey, author)
	if err := handler.CreateReview(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["author"] != "bob" || resp["score"] != 9.0 || resp["pub_date"] != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestReviewHandler_CreateReview_ScoreOutOfRange(t *testing.T) {
	stub := &stubReviews{
		createFn: func(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewReviewHandler(stub)

	for _, body := range []string{`{"text":"x","score":0}`, `{"text":"x","score":11}`, `{"score":5}`} {
		c, _ := newTestContext(http.MethodPost, "/api/v1/titles/7/reviews", body)
		withParams(c, "title_id", "7")
		if err := handler.CreateReview(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestReviewHandler_CreateReview_Duplicate(t *testing.T) {
	stub := &stubReviews{
		createFn: func(ctx context.Context, actor domain.Actor, titleID int64, text string, score int) (*domain.Review, error) {
			return nil, domain.ErrDuplicateReview
		},
	}
	handler := NewReviewHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/titles/7/reviews", `{"text":"again","score":3}`)
	withParams(c, "title_id", "7")
	if err := handler.CreateReview(c); !errors.Is(err, domain.ErrDuplicateReview) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestReviewHandler_UpdateReview_Partial(t *testing.T) {
	stub := &stubReviews{}
	handler := NewReviewHandler(stub)

	c, rec := newTestContext(http.MethodPatch, "/api/v1/titles/7/reviews/2", `{"score":5}`)
	withParams(c, "title_id", "7", "review_id", "2")
	if err := handler.UpdateReview(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.ids[0] != 7 || stub.ids[1] != 2 {
		t.Fatalf("unexpected ids %v", stub.ids)
	}
	if stub.patch.Text != nil || stub.patch.Score == nil || *stub.patch.Score != 5 {
		t.Fatalf("unexpected patch %+v", stub.patch)
	}
}

func TestReviewHandler_UpdateComment(t *testing.T) {
	stub := &stubReviews{}
	handler := NewReviewHandler(stub)

	c, rec := newTestContext(http.MethodPatch, "/api/v1/titles/7/reviews/2/comments/3", `{"text":"edited"}`)
	withParams(c, "title_id", "7", "review_id", "2", "comment_id", "3")
	if err := handler.UpdateComment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(stub.ids) != 3 || stub.ids[2] != 3 || stub.text == nil || *stub.text != "edited" {
		t.Fatalf("unexpected call: %v %v", stub.ids, stub.text)
	}
}

func TestReviewHandler_DeleteComment_Forbidden(t *testing.T) {
	handler := NewReviewHandler(&stubReviews{})

	c, _ := newTestContext(http.MethodDelete, "/api/v1/titles/7/reviews/2/comments/3", "")
	withParams(c, "title_id", "7", "review_id", "2", "comment_id", "3")
	if err := handler.DeleteComment(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestReviewHandler_BadReviewID(t *testing.T) {
	handler := NewReviewHandler(&stubReviews{})

	c, _ := newTestContext(http.MethodDelete, "/api/v1/titles/7/reviews/-1/comments/3", "")
	withParams(c, "title_id", "7", "review_id", "-1", "comment_id", "3")
	err := handler.DeleteComment(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
