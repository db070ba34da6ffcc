package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// Seeder inserts rows with fixed ids for the CSV loader.
type Seeder struct {
	db  *mongo.Database
	seq sequences
}

func NewSeeder(db *mongo.Database, seq sequences) *Seeder {
	return &Seeder{db: db, seq: seq}
}

// insertIfAbsent writes doc only when no document with its _id exists yet.
func (s *Seeder) insertIfAbsent(ctx context.Context, collection string, id int64, doc interface{}) (bool, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode %s %d: %w", collection, id, err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return false, fmt.Errorf("encode %s %d: %w", collection, id, err)
	}
	// _id comes from the filter on insert.
	delete(fields, "_id")

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if collection == collectionUsers {
				return false, domain.ErrUserExists
			}
			if collection == collectionReviews {
				return false, domain.ErrDuplicateReview
			}
			return false, domain.ErrSlugExists
		}
		return false, fmt.Errorf("seed %s %d: %w", collection, id, err)
	}
	return res.UpsertedCount > 0, nil
}

func (s *Seeder) require(ctx context.Context, collection string, id int64, notFound error) error {
	ok, err := exists(ctx, s.db.Collection(collection), bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check %s %d: %w", collection, id, err)
	}
	if !ok {
		return fmt.Errorf("%s %d: %w", collection, id, notFound)
	}
	return nil
}

func (s *Seeder) SeedUser(ctx context.Context, u *domain.User) (bool, error) {
	doc := toUserDoc(u)
	return s.insertIfAbsent(ctx, collectionUsers, u.ID, doc)
}

func (s *Seeder) SeedCategory(ctx context.Context, c *domain.Category) (bool, error) {
	return s.insertIfAbsent(ctx, collectionCategories, c.ID, slugDoc{ID: c.ID, Name: c.Name, Slug: c.Slug})
}

func (s *Seeder) SeedGenre(ctx context.Context, g *domain.Genre) (bool, error) {
	return s.insertIfAbsent(ctx, collectionGenres, g.ID, slugDoc{ID: g.ID, Name: g.Name, Slug: g.Slug})
}

func (s *Seeder) SeedTitle(ctx context.Context, t *domain.Title, categoryID *int64) (bool, error) {
	if categoryID != nil {
		if err := s.require(ctx, collectionCategories, *categoryID, domain.ErrCategoryNotFound); err != nil {
			return false, err
		}
	}
	doc := titleDoc{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		CategoryID:  categoryID,
		GenreIDs:    []int64{},
	}
	return s.insertIfAbsent(ctx, collectionTitles, t.ID, doc)
}

// SeedTitleGenre adds genreID to the title's set; created reports whether the
// link was new.
func (s *Seeder) SeedTitleGenre(ctx context.Context, titleID, genreID int64) (bool, error) {
	if err := s.require(ctx, collectionGenres, genreID, domain.ErrGenreNotFound); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.db.Collection(collectionTitles).UpdateOne(ctx,
		bson.M{"_id": titleID},
		bson.M{"$addToSet": bson.M{"genre_ids": genreID}},
	)
	if err != nil {
		return false, fmt.Errorf("seed title genre: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("titles %d: %w", titleID, domain.ErrTitleNotFound)
	}
	return res.ModifiedCount > 0, nil
}

func (s *Seeder) SeedReview(ctx context.Context, r *domain.Review) (bool, error) {
	if err := s.require(ctx, collectionTitles, r.TitleID, domain.ErrTitleNotFound); err != nil {
		return false, err
	}
	if err := s.require(ctx, collectionUsers, r.AuthorID, domain.ErrUserNotFound); err != nil {
		return false, err
	}
	return s.insertIfAbsent(ctx, collectionReviews, r.ID, toReviewDoc(r))
}

func (s *Seeder) SeedComment(ctx context.Context, c *domain.Comment) (bool, error) {
	if err := s.require(ctx, collectionReviews, c.ReviewID, domain.ErrReviewNotFound); err != nil {
		return false, err
	}
	if err := s.require(ctx, collectionUsers, c.AuthorID, domain.ErrUserNotFound); err != nil {
		return false, err
	}
	doc := commentDoc{ID: c.ID, ReviewID: c.ReviewID, AuthorID: c.AuthorID, Text: c.Text, PubDate: c.PubDate}
	return s.insertIfAbsent(ctx, collectionComments, c.ID, doc)
}

func (s *Seeder) SyncSequences(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, name := range []string{
		collectionUsers, collectionCategories, collectionGenres,
		collectionTitles, collectionReviews, collectionComments,
	} {
		var top struct {
			ID int64 `bson:"_id"`
		}
		err := s.db.Collection(name).FindOne(ctx, bson.M{},
			options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}).SetProjection(bson.M{"_id": 1}),
		).Decode(&top)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return fmt.Errorf("max %s id: %w", name, err)
		}
		if err := s.seq.atLeast(ctx, name, top.ID); err != nil {
			return fmt.Errorf("sync %s sequence: %w", name, err)
		}
	}
	return nil
}
