package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/policy"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// CatalogService implements categories, genres and titles.
type CatalogService struct {
	categories ports.CategoryRepository
	genres     ports.GenreRepository
	titles     ports.TitleRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewCatalogService(
	categories ports.CategoryRepository,
	genres ports.GenreRepository,
	titles ports.TitleRepository,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		logger:     logger,
		now:        time.Now,
	}
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *CatalogService) ListCategories(ctx context.Context, filter ports.SlugFilter) (ports.Page[*domain.Category], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.categories.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return newPage(items, total, filter.Page, filter.Limit), nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor domain.Actor, name, slug string) (*domain.Category, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindCategory}); err != nil {
		return nil, err
	}
	if err := domain.ValidateSlugged(name, slug); err != nil {
		return nil, err
	}
	c, err := s.categories.Create(ctx, &domain.Category{Name: name, Slug: slug})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("slug", slug).Msg("category created")
	return c, nil
}

// DeleteCategory removes the category; titles in it keep existing without one.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor domain.Actor, slug string) error {
	if err := policy.Authorize(actor, policy.Delete, policy.Resource{Kind: policy.KindCategory}); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, slug); err != nil {
		return err
	}
	s.logger.Info().Str("slug", slug).Msg("category deleted")
	return nil
}

// ── Genres ────────────────────────────────────────────────────────────────────

func (s *CatalogService) ListGenres(ctx context.Context, filter ports.SlugFilter) (ports.Page[*domain.Genre], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.genres.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.Genre]{}, fmt.Errorf("list genres: %w", err)
	}
	return newPage(items, total, filter.Page, filter.Limit), nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, actor domain.Actor, name, slug string) (*domain.Genre, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindGenre}); err != nil {
		return nil, err
	}
	if err := domain.ValidateSlugged(name, slug); err != nil {
		return nil, err
	}
	g, err := s.genres.Create(ctx, &domain.Genre{Name: name, Slug: slug})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("slug", slug).Msg("genre created")
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, actor domain.Actor, slug string) error {
	if err := policy.Authorize(actor, policy.Delete, policy.Resource{Kind: policy.KindGenre}); err != nil {
		return err
	}
	if err := s.genres.Delete(ctx, slug); err != nil {
		return err
	}
	s.logger.Info().Str("slug", slug).Msg("genre deleted")
	return nil
}

// ── Titles ────────────────────────────────────────────────────────────────────

func (s *CatalogService) ListTitles(ctx context.Context, filter ports.TitleFilter) (ports.Page[*domain.Title], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.titles.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.Title]{}, fmt.Errorf("list titles: %w", err)
	}
	return newPage(items, total, filter.Page, filter.Limit), nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*domain.Title, error) {
	return s.titles.FindByID(ctx, id)
}

// CreateTitle validates the year against the clock at call time and resolves
// every genre and the optional category by slug.
func (s *CatalogService) CreateTitle(ctx context.Context, actor domain.Actor, in ports.TitleInput) (*domain.Title, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindTitle}); err != nil {
		return nil, err
	}

	t := &domain.Title{Name: in.Name, Year: in.Year, Description: in.Description}
	verr := &domain.ValidationError{}
	mergeValidation(verr, t.Validate(s.now()))
	if len(in.GenreSlugs) == 0 {
		verr.Add("genre", "at least one genre is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, in.GenreSlugs)
	if err != nil {
		return nil, err
	}
	t.Genres = genres
	if in.CategorySlug != nil && *in.CategorySlug != "" {
		c, err := s.categories.FindBySlug(ctx, *in.CategorySlug)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", *in.CategorySlug, err)
		}
		t.Category = c
	}

	created, err := s.titles.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	s.logger.Info().Int64("title_id", created.ID).Str("name", created.Name).Msg("title created")
	return created, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, actor domain.Actor, id int64, patch ports.TitlePatch) (*domain.Title, error) {
	if err := policy.Authorize(actor, policy.Update, policy.Resource{Kind: policy.KindTitle}); err != nil {
		return nil, err
	}
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Year != nil {
		t.Year = *patch.Year
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	verr := &domain.ValidationError{}
	mergeValidation(verr, t.Validate(s.now()))
	if patch.GenreSlugs != nil && len(patch.GenreSlugs) == 0 {
		verr.Add("genre", "at least one genre is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.GenreSlugs != nil {
		if t.Genres, err = s.resolveGenres(ctx, patch.GenreSlugs); err != nil {
			return nil, err
		}
	}
	if patch.CategorySlug != nil {
		if *patch.CategorySlug == "" {
			t.Category = nil
		} else if t.Category, err = s.categories.FindBySlug(ctx, *patch.CategorySlug); err != nil {
			return nil, fmt.Errorf("category %q: %w", *patch.CategorySlug, err)
		}
	}

	updated, err := s.titles.Update(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	return updated, nil
}

// DeleteTitle removes the title together with its reviews and their comments.
func (s *CatalogService) DeleteTitle(ctx context.Context, actor domain.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.Delete, policy.Resource{Kind: policy.KindTitle}); err != nil {
		return err
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("title_id", id).Str("by", actor.Username).Msg("title deleted")
	return nil
}

func (s *CatalogService) resolveGenres(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	found, err := s.genres.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	bySlug := make(map[string]domain.Genre, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g
	}

	genres := make([]domain.Genre, 0, len(unique))
	for _, slug := range unique {
		g, ok := bySlug[slug]
		if !ok {
			return nil, fmt.Errorf("genre %q: %w", slug, domain.ErrGenreNotFound)
		}
		genres = append(genres, g)
	}
	return genres, nil
}

func mergeValidation(dst *domain.ValidationError, err error) {
	if v, ok := err.(*domain.ValidationError); ok {
		for k, msg := range v.Fields {
			dst.Add(k, msg)
		}
	}
}
