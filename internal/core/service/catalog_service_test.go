package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *memStore, domain.Actor) {
	t.Helper()
	store := newMemStore()
	svc := NewCatalogService(memCategories{store}, memGenres{store}, memTitles{store}, zerolog.Nop())
	admin := store.addUser("root", domain.RoleAdmin)
	ctx := context.Background()
	if _, err := svc.CreateGenre(ctx, admin, "Drama", "drama"); err != nil {
		t.Fatalf("genre: %v", err)
	}
	if _, err := svc.CreateGenre(ctx, admin, "Comedy", "comedy"); err != nil {
		t.Fatalf("genre: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, admin, "Film", "film"); err != nil {
		t.Fatalf("category: %v", err)
	}
	return svc, store, admin
}

// mustTitle creates a drama film titled "Solaris" in store.
func mustTitle(t *testing.T, store *memStore, admin domain.Actor) *domain.Title {
	t.Helper()
	svc := NewCatalogService(memCategories{store}, memGenres{store}, memTitles{store}, zerolog.Nop())
	ctx := context.Background()
	if _, err := svc.genres.FindBySlug(ctx, "drama"); err != nil {
		if _, err := svc.CreateGenre(ctx, admin, "Drama", "drama"); err != nil {
			t.Fatalf("genre: %v", err)
		}
	}
	title, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Solaris", Year: 1972, GenreSlugs: []string{"drama"}})
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	return title
}

func TestCreateTitle_YearBoundary(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	svc.now = func() time.Time { return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Future", Year: 2027, GenreSlugs: []string{"drama"}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("next year: expected ErrValidation, got %v", err)
	}

	got, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Now", Year: 2026, GenreSlugs: []string{"drama"}})
	if err != nil {
		t.Fatalf("current year: unexpected error %v", err)
	}
	if got.Year != 2026 {
		t.Errorf("expected year 2026, got %d", got.Year)
	}
}

func TestCreateTitle_ResolvesReferences(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	ctx := context.Background()
	film := "film"

	got, err := svc.CreateTitle(ctx, admin, ports.TitleInput{
		Name:         "Stalker",
		Year:         1979,
		GenreSlugs:   []string{"drama", "comedy", "drama"},
		CategorySlug: &film,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category == nil || got.Category.Slug != "film" {
		t.Errorf("expected film category, got %+v", got.Category)
	}
	if len(got.Genres) != 2 {
		t.Errorf("expected 2 distinct genres, got %d", len(got.Genres))
	}
	if got.Rating != nil {
		t.Errorf("title without reviews must have nil rating, got %v", *got.Rating)
	}
}

func TestCreateTitle_DanglingReferences(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	ctx := context.Background()
	missing := "podcast"

	_, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "X", Year: 2000, GenreSlugs: []string{"drama", "horror"}})
	if !errors.Is(err, domain.ErrGenreNotFound) {
		t.Errorf("unknown genre: expected ErrGenreNotFound, got %v", err)
	}

	_, err = svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "X", Year: 2000, GenreSlugs: []string{"drama"}, CategorySlug: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown category: expected ErrNotFound, got %v", err)
	}

	_, err = svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "X", Year: 2000})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("no genres: expected ErrValidation, got %v", err)
	}
}

func TestCatalogWrites_AdminOnly(t *testing.T) {
	svc, store, _ := newCatalogFixture(t)
	ctx := context.Background()
	moderator := store.addUser("mod", domain.RoleModerator)

	if _, err := svc.CreateGenre(ctx, moderator, "Horror", "horror"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteCategory(ctx, domain.Actor{}, "film"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.CreateTitle(ctx, moderator, ports.TitleInput{Name: "X", Year: 2000, GenreSlugs: []string{"drama"}}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteCategory_ClearsTitleCategory(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	ctx := context.Background()
	film := "film"

	title, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Mirror", Year: 1975, GenreSlugs: []string{"drama"}, CategorySlug: &film})
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := svc.DeleteCategory(ctx, admin, "film"); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := svc.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("title should survive category deletion: %v", err)
	}
	if got.Category != nil {
		t.Errorf("expected nil category, got %+v", got.Category)
	}
}

func TestUpdateTitle(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	svc.now = func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	title, err := svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Old", Year: 2001, GenreSlugs: []string{"drama"}})
	if err != nil {
		t.Fatalf("title: %v", err)
	}

	future := 2030
	if _, err := svc.UpdateTitle(ctx, admin, title.ID, ports.TitlePatch{Year: &future}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("future year: expected ErrValidation, got %v", err)
	}

	got, err := svc.UpdateTitle(ctx, admin, title.ID, ports.TitlePatch{Name: strPtr("New"), GenreSlugs: []string{"comedy"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" || len(got.Genres) != 1 || got.Genres[0].Slug != "comedy" {
		t.Errorf("unexpected title after update: %+v", got)
	}
	if got.Year != 2001 {
		t.Errorf("year should be untouched, got %d", got.Year)
	}
}

func TestListTitles_FiltersAndOrder(t *testing.T) {
	svc, _, admin := newCatalogFixture(t)
	ctx := context.Background()
	for _, in := range []ports.TitleInput{
		{Name: "B", Year: 2000, GenreSlugs: []string{"drama"}},
		{Name: "A", Year: 2000, GenreSlugs: []string{"comedy"}},
		{Name: "C", Year: 2010, GenreSlugs: []string{"drama"}},
	} {
		if _, err := svc.CreateTitle(ctx, admin, in); err != nil {
			t.Fatalf("title: %v", err)
		}
	}

	page, err := svc.ListTitles(ctx, ports.TitleFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names string
	for _, title := range page.Items {
		names += title.Name
	}
	if names != "CAB" {
		t.Errorf("expected order CAB (year desc, name asc), got %s", names)
	}

	page, err = svc.ListTitles(ctx, ports.TitleFilter{Genre: "drama", Year: 2000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "B" {
		t.Errorf("unexpected filtered result %+v", page.Items)
	}
}
