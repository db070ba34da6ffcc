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

type UserRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	reviews  *mongo.Collection
	comments *mongo.Collection
	seq      sequences
}

func NewUserRepository(client *mongo.Client, db *mongo.Database, seq sequences) *UserRepository {
	return &UserRepository{
		client:   client,
		col:      db.Collection(collectionUsers),
		reviews:  db.Collection(collectionReviews),
		comments: db.Collection(collectionComments),
		seq:      seq,
	}
}

type userDoc struct {
	ID        int64     `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Bio       string    `bson:"bio"`
	Role      string    `bson:"role"`
	IsStaff   bool      `bson:"is_staff"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	LastLogin time.Time `bson:"last_login"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID,
		Username:  d.Username,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Bio:       d.Bio,
		Role:      domain.Role(d.Role),
		IsStaff:   d.IsStaff,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		LastLogin: d.LastLogin.UTC(),
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionUsers)
	if err != nil {
		return nil, err
	}
	doc := toUserDoc(u)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Search != "" {
		q["username"] = containsFold(filter.Search)
	}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	cur, err := r.col.Find(ctx, q, findPage(filter.Page, filter.Limit).SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"bio":        u.Bio,
		"role":       string(u.Role),
		"is_staff":   u.IsStaff,
		"updated_at": u.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, u.ID)
}

func (r *UserRepository) RecordLogin(ctx context.Context, id int64, prev, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "last_login": prev},
		bson.M{"$set": bson.M{"last_login": now}},
	)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidCode
	}
	return nil
}

// Delete removes the user, their reviews with every comment on them, and their
// remaining comments in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return withTransaction(ctx, r.client, func(sc mongo.SessionContext) error {
		reviewIDs, err := r.reviews.Distinct(sc, "_id", bson.M{"author_id": id})
		if err != nil {
			return fmt.Errorf("find user reviews: %w", err)
		}
		if reviewIDs == nil {
			reviewIDs = []interface{}{}
		}
		if _, err := r.comments.DeleteMany(sc, bson.M{"$or": bson.A{
			bson.M{"author_id": id},
			bson.M{"review_id": bson.M{"$in": reviewIDs}},
		}}); err != nil {
			return fmt.Errorf("delete user comments: %w", err)
		}
		if _, err := r.reviews.DeleteMany(sc, bson.M{"author_id": id}); err != nil {
			return fmt.Errorf("delete user reviews: %w", err)
		}
		res, err := r.col.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if res.DeletedCount == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}
