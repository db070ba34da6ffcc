package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// slugDoc is the shared shape of categories and genres.
type slugDoc struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
	Slug string `bson:"slug"`
}

// slugCollection implements the operations categories and genres share.
type slugCollection struct {
	col      *mongo.Collection
	seq      sequences
	seqName  string
	notFound error
}

func (s slugCollection) create(ctx context.Context, name, slug string) (slugDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := s.seq.next(ctx, s.seqName)
	if err != nil {
		return slugDoc{}, err
	}
	doc := slugDoc{ID: id, Name: name, Slug: slug}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return slugDoc{}, domain.ErrSlugExists
		}
		return slugDoc{}, fmt.Errorf("insert %s: %w", s.seqName, err)
	}
	return doc, nil
}

func (s slugCollection) findBySlug(ctx context.Context, slug string) (slugDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc slugDoc
	if err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return slugDoc{}, s.notFound
		}
		return slugDoc{}, fmt.Errorf("find %s: %w", s.seqName, err)
	}
	return doc, nil
}

func (s slugCollection) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]slugDoc, error) {
	cur, err := s.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.seqName, err)
	}
	var docs []slugDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.seqName, err)
	}
	return docs, nil
}

func (s slugCollection) list(ctx context.Context, filter ports.SlugFilter) ([]slugDoc, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Search != "" {
		q["name"] = containsFold(filter.Search)
	}
	total, err := s.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.seqName, err)
	}
	docs, err := s.find(ctx, q, findPage(filter.Page, filter.Limit).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ── Categories ────────────────────────────────────────────────────────────────

type CategoryRepository struct {
	client *mongo.Client
	slugs  slugCollection
	titles *mongo.Collection
}

func NewCategoryRepository(client *mongo.Client, db *mongo.Database, seq sequences) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		slugs: slugCollection{
			col:      db.Collection(collectionCategories),
			seq:      seq,
			seqName:  collectionCategories,
			notFound: domain.ErrCategoryNotFound,
		},
		titles: db.Collection(collectionTitles),
	}
}

func toCategory(d slugDoc) *domain.Category {
	return &domain.Category{ID: d.ID, Name: d.Name, Slug: d.Slug}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	doc, err := r.slugs.create(ctx, c.Name, c.Slug)
	if err != nil {
		return nil, err
	}
	return toCategory(doc), nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	doc, err := r.slugs.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toCategory(doc), nil
}

func (r *CategoryRepository) List(ctx context.Context, filter ports.SlugFilter) ([]*domain.Category, int64, error) {
	docs, total, err := r.slugs.list(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, toCategory(d))
	}
	return out, total, nil
}

// Delete removes the category and unsets it on its titles.
func (r *CategoryRepository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		doc, err := r.slugs.findBySlug(sc, slug)
		if err != nil {
			return err
		}
		if _, err := r.titles.UpdateMany(sc, bson.M{"category_id": doc.ID}, bson.M{"$set": bson.M{"category_id": nil}}); err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
		if _, err := r.slugs.col.DeleteOne(sc, bson.M{"_id": doc.ID}); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// ── Genres ────────────────────────────────────────────────────────────────────

type GenreRepository struct {
	client *mongo.Client
	slugs  slugCollection
	titles *mongo.Collection
}

func NewGenreRepository(client *mongo.Client, db *mongo.Database, seq sequences) *GenreRepository {
	return &GenreRepository{
		client: client,
		slugs: slugCollection{
			col:      db.Collection(collectionGenres),
			seq:      seq,
			seqName:  collectionGenres,
			notFound: domain.ErrGenreNotFound,
		},
		titles: db.Collection(collectionTitles),
	}
}

func toGenre(d slugDoc) domain.Genre {
	return domain.Genre{ID: d.ID, Name: d.Name, Slug: d.Slug}
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) (*domain.Genre, error) {
	doc, err := r.slugs.create(ctx, g.Name, g.Slug)
	if err != nil {
		return nil, err
	}
	out := toGenre(doc)
	return &out, nil
}

func (r *GenreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	doc, err := r.slugs.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	out := toGenre(doc)
	return &out, nil
}

func (r *GenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, err := r.slugs.find(ctx, bson.M{"slug": bson.M{"$in": slugs}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Genre, 0, len(docs))
	for _, d := range docs {
		out = append(out, toGenre(d))
	}
	return out, nil
}

func (r *GenreRepository) List(ctx context.Context, filter ports.SlugFilter) ([]*domain.Genre, int64, error) {
	docs, total, err := r.slugs.list(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Genre, 0, len(docs))
	for _, d := range docs {
		g := toGenre(d)
		out = append(out, &g)
	}
	return out, total, nil
}

// Delete removes the genre and pulls it from every title's genre set.
func (r *GenreRepository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		doc, err := r.slugs.findBySlug(sc, slug)
		if err != nil {
			return err
		}
		if _, err := r.titles.UpdateMany(sc, bson.M{"genre_ids": doc.ID}, bson.M{"$pull": bson.M{"genre_ids": doc.ID}}); err != nil {
			return fmt.Errorf("detach genre: %w", err)
		}
		if _, err := r.slugs.col.DeleteOne(sc, bson.M{"_id": doc.ID}); err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
}
