package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type reviewFixture struct {
	svc     *ReviewService
	catalog *CatalogService
	store   *memStore
	admin   domain.Actor
	alice   domain.Actor
	bob     domain.Actor
	mod     domain.Actor
	title   *domain.Title
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	store := newMemStore()
	f := &reviewFixture{
		svc:     NewReviewService(memTitles{store}, memReviews{store}, memComments{store}, zerolog.Nop()),
		catalog: NewCatalogService(memCategories{store}, memGenres{store}, memTitles{store}, zerolog.Nop()),
		store:   store,
		admin:   store.addUser("root", domain.RoleAdmin),
		alice:   store.addUser("alice", domain.RoleUser),
		bob:     store.addUser("bob", domain.RoleUser),
		mod:     store.addUser("mod", domain.RoleModerator),
	}
	f.title = mustTitle(t, store, f.admin)
	return f
}

// ----------------------------------------------------------------------------
// Reviews
// ----------------------------------------------------------------------------

func TestCreateReview_SecondReviewIsDuplicate(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if r.PubDate.IsZero() || r.AuthorUsername != "alice" {
		t.Errorf("unexpected review %+v", r)
	}

	if _, err := f.svc.CreateReview(ctx, f.alice, f.title.ID, "again", 3); !errors.Is(err, domain.ErrDuplicateReview) {
		t.Errorf("second review: expected ErrDuplicateReview, got %v", err)
	}
	if _, err := f.svc.CreateReview(ctx, f.bob, f.title.ID, "mine", 5); err != nil {
		t.Errorf("another author may review the same title: %v", err)
	}
}

func TestCreateReview_ConcurrentAttemptsYieldOneRow(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateReview(ctx, f.alice, f.title.ID, "race", 6)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrDuplicateReview):
			t.Errorf("unexpected error %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one success, got %d", ok)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	for _, score := range []int{0, 11} {
		if _, err := f.svc.CreateReview(ctx, f.alice, f.title.ID, "x", score); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("score %d: expected ErrValidation, got %v", score, err)
		}
	}
	if _, err := f.svc.CreateReview(ctx, f.alice, 9999, "x", 5); !errors.Is(err, domain.ErrTitleNotFound) {
		t.Errorf("missing title: expected ErrTitleNotFound, got %v", err)
	}
	if _, err := f.svc.CreateReview(ctx, domain.Actor{}, f.title.ID, "x", 5); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
}

func TestRating_IsMeanOfScores(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	got, _ := f.catalog.GetTitle(ctx, f.title.ID)
	if got.Rating != nil {
		t.Fatalf("expected nil rating without reviews, got %v", *got.Rating)
	}

	for i, score := range []int{6, 8, 10} {
		author := []domain.Actor{f.alice, f.bob, f.mod}[i]
		if _, err := f.svc.CreateReview(ctx, author, f.title.ID, "r", score); err != nil {
			t.Fatalf("review: %v", err)
		}
	}

	got, _ = f.catalog.GetTitle(ctx, f.title.ID)
	if got.Rating == nil || *got.Rating != 8.0 {
		t.Errorf("expected rating 8.0, got %v", got.Rating)
	}
}

func TestUpdateReview_KeepsPubDateAndSkipsDuplicateCheck(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r, err := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	score := 9
	got, err := f.svc.UpdateReview(ctx, f.alice, f.title.ID, r.ID, ports.ReviewPatch{Score: &score})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Score != 9 || got.Text != "good" {
		t.Errorf("unexpected review after update %+v", got)
	}
	if !got.PubDate.Equal(r.PubDate) {
		t.Errorf("pub_date changed from %v to %v", r.PubDate, got.PubDate)
	}

	if _, err := f.svc.UpdateReview(ctx, f.bob, f.title.ID, r.ID, ports.ReviewPatch{Score: &score}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-author: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.UpdateReview(ctx, f.mod, f.title.ID, r.ID, ports.ReviewPatch{Text: strPtr("moderated")}); err != nil {
		t.Errorf("moderator edit: %v", err)
	}
}

func TestGetReview_MustBelongToTitle(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r, _ := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)

	if _, err := f.svc.GetReview(ctx, f.title.ID+1000, r.ID); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Errorf("expected ErrReviewNotFound, got %v", err)
	}
}

// ----------------------------------------------------------------------------
// Comments and cascade
// ----------------------------------------------------------------------------

func TestCreateComment_NoUniqueness(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r, _ := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.CreateComment(ctx, f.bob, f.title.ID, r.ID, "me too"); err != nil {
			t.Fatalf("comment %d: %v", i, err)
		}
	}
	page, err := f.svc.ListComments(ctx, f.title.ID, r.ID, ports.PageFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("expected 3 comments, got %d", page.Total)
	}
}

func TestDeleteComment_Permissions(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r, _ := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)
	c1, _ := f.svc.CreateComment(ctx, f.alice, f.title.ID, r.ID, "first")
	c2, _ := f.svc.CreateComment(ctx, f.alice, f.title.ID, r.ID, "second")
	c3, _ := f.svc.CreateComment(ctx, f.bob, f.title.ID, r.ID, "third")

	if err := f.svc.DeleteComment(ctx, f.bob, f.title.ID, r.ID, c1.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user deleting another's comment: expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteComment(ctx, f.bob, f.title.ID, r.ID, c3.ID); err != nil {
		t.Errorf("user deleting own comment: %v", err)
	}
	if err := f.svc.DeleteComment(ctx, f.mod, f.title.ID, r.ID, c1.ID); err != nil {
		t.Errorf("moderator deleting another's comment: %v", err)
	}
	if err := f.svc.DeleteComment(ctx, domain.Actor{}, f.title.ID, r.ID, c2.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
}

func TestDeleteTitle_CascadesReviewsAndComments(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	r, _ := f.svc.CreateReview(ctx, f.alice, f.title.ID, "good", 7)
	if _, err := f.svc.CreateComment(ctx, f.bob, f.title.ID, r.ID, "agree"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := f.catalog.DeleteTitle(ctx, f.admin, f.title.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	titles, reviews, comments := f.store.counts()
	if titles != 0 || reviews != 0 || comments != 0 {
		t.Errorf("expected no records left, got titles=%d reviews=%d comments=%d", titles, reviews, comments)
	}
	if _, err := f.svc.GetReview(ctx, f.title.ID, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected review to be gone, got %v", err)
	}
}
