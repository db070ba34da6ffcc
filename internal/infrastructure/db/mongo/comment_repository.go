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

type CommentRepository struct {
	client  *mongo.Client
	col     *mongo.Collection
	reviews *mongo.Collection
	users   *mongo.Collection
	seq     sequences
}

func NewCommentRepository(client *mongo.Client, db *mongo.Database, seq sequences) *CommentRepository {
	return &CommentRepository{
		client:  client,
		col:     db.Collection(collectionComments),
		reviews: db.Collection(collectionReviews),
		users:   db.Collection(collectionUsers),
		seq:     seq,
	}
}

type commentDoc struct {
	ID       int64     `bson:"_id"`
	ReviewID int64     `bson:"review_id"`
	AuthorID int64     `bson:"author_id"`
	Text     string    `bson:"text"`
	PubDate  time.Time `bson:"pub_date"`
}

func (d commentDoc) toDomain(author string) *domain.Comment {
	return &domain.Comment{
		ID:             d.ID,
		ReviewID:       d.ReviewID,
		AuthorID:       d.AuthorID,
		AuthorUsername: author,
		Text:           d.Text,
		PubDate:        d.PubDate.UTC(),
	}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionComments)
	if err != nil {
		return nil, err
	}
	doc := commentDoc{ID: id, ReviewID: c.ReviewID, AuthorID: c.AuthorID, Text: c.Text, PubDate: c.PubDate}

	// Touching the review and the author makes a concurrent cascade over
	// either one conflict with this insert.
	err = withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		if err := touch(sc, r.reviews, doc.ReviewID, domain.ErrReviewNotFound); err != nil {
			return err
		}
		if err := touch(sc, r.users, doc.AuthorID, domain.ErrUserNotFound); err != nil {
			return err
		}
		_, err := r.col.InsertOne(sc, doc)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.withAuthor(ctx, doc)
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, id int64) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "review_id": reviewID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return r.withAuthor(ctx, doc)
}

func (r *CommentRepository) List(ctx context.Context, reviewID int64, page ports.PageFilter) ([]*domain.Comment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{"review_id": reviewID}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	cur, err := r.col.Find(ctx, q, pageOf(page).SetSort(bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find comments: %w", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode comments: %w", err)
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.AuthorID)
	}
	authors, err := usernames(ctx, r.users, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(authors[d.AuthorID]))
	}
	return out, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{"text": c.Text}})
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrCommentNotFound
	}
	return r.FindByID(ctx, c.ReviewID, c.ID)
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) withAuthor(ctx context.Context, doc commentDoc) (*domain.Comment, error) {
	authors, err := usernames(ctx, r.users, []int64{doc.AuthorID})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(authors[doc.AuthorID]), nil
}
