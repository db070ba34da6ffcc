package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

type ReviewRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	titles   *mongo.Collection
	comments *mongo.Collection
	users    *mongo.Collection
	seq      sequences
}

func NewReviewRepository(client *mongo.Client, db *mongo.Database, seq sequences) *ReviewRepository {
	return &ReviewRepository{
		client:   client,
		col:      db.Collection(collectionReviews),
		titles:   db.Collection(collectionTitles),
		comments: db.Collection(collectionComments),
		users:    db.Collection(collectionUsers),
		seq:      seq,
	}
}

type reviewDoc struct {
	ID       int64     `bson:"_id"`
	TitleID  int64     `bson:"title_id"`
	AuthorID int64     `bson:"author_id"`
	Text     string    `bson:"text"`
	Score    int       `bson:"score"`
	PubDate  time.Time `bson:"pub_date"`
}

func toReviewDoc(r *domain.Review) reviewDoc {
	return reviewDoc{
		ID:       r.ID,
		TitleID:  r.TitleID,
		AuthorID: r.AuthorID,
		Text:     r.Text,
		Score:    r.Score,
		PubDate:  r.PubDate,
	}
}

func (d reviewDoc) toDomain(author string) *domain.Review {
	return &domain.Review{
		ID:             d.ID,
		TitleID:        d.TitleID,
		AuthorID:       d.AuthorID,
		AuthorUsername: author,
		Text:           d.Text,
		Score:          d.Score,
		PubDate:        d.PubDate.UTC(),
	}
}

// Create inserts the review in a transaction that also touches its title and
// author, so it cannot interleave with a cascade deleting either of them.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionReviews)
	if err != nil {
		return nil, err
	}
	doc := toReviewDoc(rv)
	doc.ID = id

	err = withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if err := touch(sc, r.titles, doc.TitleID, domain.ErrTitleNotFound); err != nil {
			return err
		}
		if err := touch(sc, r.users, doc.AuthorID, domain.ErrUserNotFound); err != nil {
			return err
		}
		_, err := r.col.InsertOne(sc, doc)
		return err
	})
	if err != nil {
		return nil, reviewWriteError(err)
	}
	return r.withAuthor(ctx, doc)
}

// reviewWriteError maps a failed review insert onto domain errors. The
// (author_id, title_id) unique index is the only one a new review can hit.
func reviewWriteError(err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicateReview
	case errors.Is(err, domain.ErrNotFound):
		return err
	}
	return fmt.Errorf("insert review: %w", err)
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, id int64) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "title_id": titleID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r.withAuthor(ctx, doc)
}

func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.col, bson.M{"title_id": titleID, "author_id": authorID})
	if err != nil {
		return false, fmt.Errorf("count reviews: %w", err)
	}
	return ok, nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID int64, page ports.PageFilter) ([]*domain.Review, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{"title_id": titleID}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	cur, err := r.col.Find(ctx, q, pageOf(page).SetSort(bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode reviews: %w", err)
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.AuthorID)
	}
	authors, err := usernames(ctx, r.users, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(authors[d.AuthorID]))
	}
	return out, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": rv.ID}, bson.M{"$set": bson.M{
		"text":  rv.Text,
		"score": rv.Score,
	}})
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return r.FindByID(ctx, rv.TitleID, rv.ID)
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		res, err := r.col.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrReviewNotFound
		}
		if _, err := r.comments.DeleteMany(sc, bson.M{"review_id": id}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return nil
	})
}

func (r *ReviewRepository) withAuthor(ctx context.Context, doc reviewDoc) (*domain.Review, error) {
	authors, err := usernames(ctx, r.users, []int64{doc.AuthorID})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(authors[doc.AuthorID]), nil
}
