package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// memStore is an in-memory backend enforcing the same uniqueness and
// cascade rules as the real stores.
type memStore struct {
	mu         sync.Mutex
	seq        int64
	users      map[int64]*domain.User
	categories map[int64]*domain.Category
	genres     map[int64]*domain.Genre
	titles     map[int64]*memTitle
	reviews    map[int64]*domain.Review
	comments   map[int64]*domain.Comment
}

type memTitle struct {
	domain.Title
	categoryID *int64
	genreIDs   []int64
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[int64]*domain.User),
		categories: make(map[int64]*domain.Category),
		genres:     make(map[int64]*domain.Genre),
		titles:     make(map[int64]*memTitle),
		reviews:    make(map[int64]*domain.Review),
		comments:   make(map[int64]*domain.Comment),
	}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ---- users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := *u
	c.ID = r.nextID()
	r.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r memUsers) List(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if f.Search == "" || strings.Contains(u.Username, f.Search) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r memUsers) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && (existing.Username == u.Username || existing.Email == u.Email) {
			return nil, domain.ErrUserExists
		}
	}
	c := *u
	r.users[u.ID] = &c
	out := c
	return &out, nil
}

func (r memUsers) RecordLogin(_ context.Context, id int64, prev, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !u.LastLogin.Equal(prev) {
		return domain.ErrInvalidCode
	}
	u.LastLogin = now
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for rid, rv := range r.reviews {
		if rv.AuthorID == id {
			r.deleteReviewLocked(rid)
		}
	}
	for cid, c := range r.comments {
		if c.AuthorID == id {
			delete(r.comments, cid)
		}
	}
	delete(r.users, id)
	return nil
}

// ---- categories and genres

type memCategories struct{ *memStore }

func (r memCategories) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Slug == c.Slug {
			return nil, domain.ErrSlugExists
		}
	}
	n := *c
	n.ID = r.nextID()
	r.categories[n.ID] = &n
	out := n
	return &out, nil
}

func (r memCategories) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r memCategories) List(_ context.Context, f ports.SlugFilter) ([]*domain.Category, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.categories {
		if f.Search == "" || strings.Contains(c.Name, f.Search) {
			n := *c
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r memCategories) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.categories {
		if c.Slug == slug {
			for _, t := range r.titles {
				if t.categoryID != nil && *t.categoryID == id {
					t.categoryID = nil
				}
			}
			delete(r.categories, id)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

type memGenres struct{ *memStore }

func (r memGenres) Create(_ context.Context, g *domain.Genre) (*domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.genres {
		if existing.Slug == g.Slug {
			return nil, domain.ErrSlugExists
		}
	}
	n := *g
	n.ID = r.nextID()
	r.genres[n.ID] = &n
	out := n
	return &out, nil
}

func (r memGenres) FindBySlug(_ context.Context, slug string) (*domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.genres {
		if g.Slug == slug {
			out := *g
			return &out, nil
		}
	}
	return nil, domain.ErrGenreNotFound
}

func (r memGenres) FindBySlugs(_ context.Context, slugs []string) ([]domain.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Genre
	for _, slug := range slugs {
		for _, g := range r.genres {
			if g.Slug == slug {
				out = append(out, *g)
			}
		}
	}
	return out, nil
}

func (r memGenres) List(_ context.Context, f ports.SlugFilter) ([]*domain.Genre, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Genre
	for _, g := range r.genres {
		if f.Search == "" || strings.Contains(g.Name, f.Search) {
			n := *g
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r memGenres) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, g := range r.genres {
		if g.Slug == slug {
			for _, t := range r.titles {
				kept := t.genreIDs[:0]
				for _, gid := range t.genreIDs {
					if gid != id {
						kept = append(kept, gid)
					}
				}
				t.genreIDs = kept
			}
			delete(r.genres, id)
			return nil
		}
	}
	return domain.ErrGenreNotFound
}

// ---- titles

type memTitles struct{ *memStore }

func (r memTitles) hydrateLocked(t *memTitle) *domain.Title {
	out := t.Title
	out.Category = nil
	if t.categoryID != nil {
		if c, ok := r.categories[*t.categoryID]; ok {
			cc := *c
			out.Category = &cc
		}
	}
	out.Genres = nil
	for _, gid := range t.genreIDs {
		if g, ok := r.genres[gid]; ok {
			out.Genres = append(out.Genres, *g)
		}
	}
	var scores []int
	for _, rv := range r.reviews {
		if rv.TitleID == t.ID {
			scores = append(scores, rv.Score)
		}
	}
	out.Rating = domain.AverageScore(scores)
	return &out
}

func (r memTitles) Create(_ context.Context, t *domain.Title) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mt := &memTitle{Title: *t, categoryID: t.CategoryID(), genreIDs: t.GenreIDs()}
	mt.ID = r.nextID()
	r.titles[mt.ID] = mt
	return r.hydrateLocked(mt), nil
}

func (r memTitles) FindByID(_ context.Context, id int64) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	return r.hydrateLocked(t), nil
}

func (r memTitles) List(_ context.Context, f ports.TitleFilter) ([]*domain.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Title
	for _, t := range r.titles {
		h := r.hydrateLocked(t)
		if f.Name != "" && !strings.Contains(h.Name, f.Name) {
			continue
		}
		if f.Year != 0 && h.Year != f.Year {
			continue
		}
		if f.Category != "" && (h.Category == nil || h.Category.Slug != f.Category) {
			continue
		}
		if f.Genre != "" {
			match := false
			for _, g := range h.Genres {
				match = match || g.Slug == f.Genre
			}
			if !match {
				continue
			}
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Name < out[j].Name
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r memTitles) Update(_ context.Context, t *domain.Title) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[t.ID]; !ok {
		return nil, domain.ErrTitleNotFound
	}
	mt := &memTitle{Title: *t, categoryID: t.CategoryID(), genreIDs: t.GenreIDs()}
	r.titles[t.ID] = mt
	return r.hydrateLocked(mt), nil
}

func (r memTitles) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return domain.ErrTitleNotFound
	}
	for rid, rv := range r.reviews {
		if rv.TitleID == id {
			r.deleteReviewLocked(rid)
		}
	}
	delete(r.titles, id)
	return nil
}

// ---- reviews and comments

func (m *memStore) deleteReviewLocked(id int64) {
	for cid, c := range m.comments {
		if c.ReviewID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.reviews, id)
}

func (m *memStore) usernameLocked(id int64) string {
	if u, ok := m.users[id]; ok {
		return u.Username
	}
	return ""
}

type memReviews struct{ *memStore }

func (r memReviews) Create(_ context.Context, rv *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == rv.TitleID && existing.AuthorID == rv.AuthorID {
			return nil, domain.ErrDuplicateReview
		}
	}
	n := *rv
	n.ID = r.nextID()
	r.reviews[n.ID] = &n
	out := n
	out.AuthorUsername = r.usernameLocked(n.AuthorID)
	return &out, nil
}

func (r memReviews) FindByID(_ context.Context, titleID, id int64) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok || rv.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	out := *rv
	out.AuthorUsername = r.usernameLocked(rv.AuthorID)
	return &out, nil
}

func (r memReviews) ExistsForAuthor(_ context.Context, titleID, authorID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReviews) List(_ context.Context, titleID int64, p ports.PageFilter) ([]*domain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.TitleID == titleID {
			n := *rv
			n.AuthorUsername = r.usernameLocked(rv.AuthorID)
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return paginate(out, p.Page, p.Limit), int64(len(out)), nil
}

func (r memReviews) Update(_ context.Context, rv *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[rv.ID]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	stored.Text = rv.Text
	stored.Score = rv.Score
	out := *stored
	out.AuthorUsername = r.usernameLocked(stored.AuthorID)
	return &out, nil
}

func (r memReviews) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	r.deleteReviewLocked(id)
	return nil
}

type memComments struct{ *memStore }

func (r memComments) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[c.ReviewID]; !ok {
		return nil, domain.ErrReviewNotFound
	}
	n := *c
	n.ID = r.nextID()
	r.comments[n.ID] = &n
	out := n
	out.AuthorUsername = r.usernameLocked(n.AuthorID)
	return &out, nil
}

func (r memComments) FindByID(_ context.Context, reviewID, id int64) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.ReviewID != reviewID {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	out.AuthorUsername = r.usernameLocked(c.AuthorID)
	return &out, nil
}

func (r memComments) List(_ context.Context, reviewID int64, p ports.PageFilter) ([]*domain.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			n := *c
			n.AuthorUsername = r.usernameLocked(c.AuthorID)
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return paginate(out, p.Page, p.Limit), int64(len(out)), nil
}

func (r memComments) Update(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.comments[c.ID]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	stored.Text = c.Text
	out := *stored
	out.AuthorUsername = r.usernameLocked(stored.AuthorID)
	return &out, nil
}

func (r memComments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

// ---- helpers shared by the service tests

func (m *memStore) addUser(username string, role domain.Role) domain.Actor {
	u, err := memUsers{m}.Create(context.Background(), &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	})
	if err != nil {
		panic(err)
	}
	return domain.ActorFor(u)
}

func (m *memStore) counts() (titles, reviews, comments int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.titles), len(m.reviews), len(m.comments)
}

var errBoom = errors.New("boom")
