package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviewhub/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers      = "users"
	collectionCategories = "categories"
	collectionGenres     = "genres"
	collectionTitles     = "titles"
	collectionReviews    = "reviews"
	collectionComments   = "comments"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// NewStore wires every repository to db.
func NewStore(client *mongo.Client, db *mongo.Database) ports.Store {
	seq := sequences{col: db.Collection(collectionCounters)}
	users := NewUserRepository(client, db, seq)
	titles := NewTitleRepository(client, db, seq)
	return ports.Store{
		Users:      users,
		Categories: NewCategoryRepository(client, db, seq),
		Genres:     NewGenreRepository(client, db, seq),
		Titles:     titles,
		Reviews:    NewReviewRepository(client, db, seq),
		Comments:   NewCommentRepository(client, db, seq),
		Seeder:     NewSeeder(db, seq),
	}
}

// EnsureIndexes creates the unique constraints and query indexes. The
// (author_id, title_id) index is what serializes concurrent reviews.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, indexes := range indexPlan() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
	}
	return nil
}

// indexPlan lists the indexes of every collection.
func indexPlan() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		collectionCategories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		collectionGenres: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		collectionTitles: {
			{Keys: bson.D{{Key: "year", Value: -1}, {Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "genre_ids", Value: 1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
		},
		collectionReviews: {
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "title_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "title_id", Value: 1}, {Key: "pub_date", Value: -1}}},
		},
		collectionComments: {
			{Keys: bson.D{{Key: "review_id", Value: 1}, {Key: "pub_date", Value: -1}}},
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
		},
	}
}
