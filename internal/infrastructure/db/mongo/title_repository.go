package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type TitleRepository struct {
	client     *mongo.Client
	col        *mongo.Collection
	categories *mongo.Collection
	genres     *mongo.Collection
	reviews    *mongo.Collection
	comments   *mongo.Collection
	seq        sequences
}

func NewTitleRepository(client *mongo.Client, db *mongo.Database, seq sequences) *TitleRepository {
	return &TitleRepository{
		client:     client,
		col:        db.Collection(collectionTitles),
		categories: db.Collection(collectionCategories),
		genres:     db.Collection(collectionGenres),
		reviews:    db.Collection(collectionReviews),
		comments:   db.Collection(collectionComments),
		seq:        seq,
	}
}

// titleDoc references its category and genres by id. The rating is never
// stored.
type titleDoc struct {
	ID          int64   `bson:"_id"`
	Name        string  `bson:"name"`
	Year        int     `bson:"year"`
	Description string  `bson:"description"`
	CategoryID  *int64  `bson:"category_id"`
	GenreIDs    []int64 `bson:"genre_ids"`
}

func toTitleDoc(t *domain.Title) titleDoc {
	return titleDoc{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		CategoryID:  t.CategoryID(),
		GenreIDs:    t.GenreIDs(),
	}
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionTitles)
	if err != nil {
		return nil, err
	}
	doc := toTitleDoc(t)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *TitleRepository) FindByID(ctx context.Context, id int64) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc titleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	titles, err := r.hydrate(ctx, []titleDoc{doc})
	if err != nil {
		return nil, err
	}
	return titles[0], nil
}

func (r *TitleRepository) List(ctx context.Context, filter ports.TitleFilter) ([]*domain.Title, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Name != "" {
		q["name"] = containsFold(filter.Name)
	}
	if filter.Year != 0 {
		q["year"] = filter.Year
	}
	if filter.Genre != "" {
		id, ok, err := r.slugID(ctx, r.genres, filter.Genre)
		if err != nil || !ok {
			return []*domain.Title{}, 0, err
		}
		q["genre_ids"] = id
	}
	if filter.Category != "" {
		id, ok, err := r.slugID(ctx, r.categories, filter.Category)
		if err != nil || !ok {
			return []*domain.Title{}, 0, err
		}
		q["category_id"] = id
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}
	cur, err := r.col.Find(ctx, q, findPage(filter.Page, filter.Limit).SetSort(bson.D{
		{Key: "year", Value: -1},
		{Key: "name", Value: 1},
		{Key: "_id", Value: 1},
	}))
	if err != nil {
		return nil, 0, fmt.Errorf("find titles: %w", err)
	}
	var docs []titleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode titles: %w", err)
	}
	titles, err := r.hydrate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *TitleRepository) slugID(ctx context.Context, col *mongo.Collection, slug string) (int64, bool, error) {
	var doc slugDoc
	err := col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve slug %q: %w", slug, err)
	}
	return doc.ID, true, nil
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toTitleDoc(t)
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": bson.M{
		"name":        doc.Name,
		"year":        doc.Year,
		"description": doc.Description,
		"category_id": doc.CategoryID,
		"genre_ids":   doc.GenreIDs,
	}})
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTitleNotFound
	}
	return r.FindByID(ctx, t.ID)
}

// Delete removes the title, its reviews and their comments in one
// transaction.
func (r *TitleRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.col.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete title: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrTitleNotFound
		}
		reviewIDs, err := r.reviews.Distinct(sc, "_id", bson.M{"title_id": id})
		if err != nil {
			return fmt.Errorf("find title reviews: %w", err)
		}
		if len(reviewIDs) > 0 {
			if _, err := r.comments.DeleteMany(sc, bson.M{"review_id": bson.M{"$in": reviewIDs}}); err != nil {
				return fmt.Errorf("delete comments: %w", err)
			}
		}
		if _, err := r.reviews.DeleteMany(sc, bson.M{"title_id": id}); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		return nil
	})
}

// hydrate attaches categories, genres and ratings to docs with one query
// per collection.
func (r *TitleRepository) hydrate(ctx context.Context, docs []titleDoc) ([]*domain.Title, error) {
	titleIDs := make([]int64, 0, len(docs))
	var categoryIDs, genreIDs []int64
	for _, d := range docs {
		titleIDs = append(titleIDs, d.ID)
		if d.CategoryID != nil {
			categoryIDs = append(categoryIDs, *d.CategoryID)
		}
		genreIDs = append(genreIDs, d.GenreIDs...)
	}

	categories, err := r.slugsByID(ctx, r.categories, categoryIDs)
	if err != nil {
		return nil, err
	}
	genres, err := r.slugsByID(ctx, r.genres, genreIDs)
	if err != nil {
		return nil, err
	}
	ratings, err := r.ratings(ctx, titleIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Title, 0, len(docs))
	for _, d := range docs {
		t := &domain.Title{
			ID:          d.ID,
			Name:        d.Name,
			Year:        d.Year,
			Description: d.Description,
			Genres:      []domain.Genre{},
		}
		if d.CategoryID != nil {
			if c, ok := categories[*d.CategoryID]; ok {
				t.Category = toCategory(c)
			}
		}
		for _, gid := range d.GenreIDs {
			if g, ok := genres[gid]; ok {
				t.Genres = append(t.Genres, toGenre(g))
			}
		}
		if avg, ok := ratings[d.ID]; ok {
			t.Rating = &avg
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TitleRepository) slugsByID(ctx context.Context, col *mongo.Collection, ids []int64) (map[int64]slugDoc, error) {
	out := make(map[int64]slugDoc, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	var docs []slugDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	for _, d := range docs {
		out[d.ID] = d
	}
	return out, nil
}

// ratings averages review scores per title. Titles without reviews are
// absent from the result.
func (r *TitleRepository) ratings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}
	cur, err := r.reviews.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"title_id": bson.M{"$in": titleIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$title_id", "rating": bson.M{"$avg": "$score"}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	var rows []struct {
		TitleID int64   `bson:"_id"`
		Rating  float64 `bson:"rating"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	for _, row := range rows {
		out[row.TitleID] = row.Rating
	}
	return out, nil
}
