package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviewhub/internal/core/ports"
)

const collectionCounters = "counters"

// sequences hands out int64 ids from one counter document per collection.
type sequences struct {
	col *mongo.Collection
}

func (s sequences) next(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// atLeast moves the counter to id unless it is already past it.
func (s sequences) atLeast(ctx context.Context, name string, id int64) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": id}},
		options.Update().SetUpsert(true),
	)
	return err
}

// withTransaction runs fn in a multi-document transaction. Cascading deletes
// rely on it, so the deployment must be a replica set.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// touch stamps the parent document. Inside a transaction this makes a
// concurrent transaction deleting that parent fail with a write conflict
// instead of leaving the child orphaned. A missing parent yields notFound.
func touch(ctx context.Context, col *mongo.Collection, id int64, notFound error) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"touched_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("lock %s %d: %w", col.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

// containsFold matches s anywhere in the field, ignoring case.
func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func findPage(page, limit int) *options.FindOptions {
	return options.Find().SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
}

func pageOf(p ports.PageFilter) *options.FindOptions {
	return findPage(p.Page, p.Limit)
}

// usernames resolves author ids to their current usernames.
func usernames(ctx context.Context, users *mongo.Collection, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"username": 1}))
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	var docs []struct {
		ID       int64  `bson:"_id"`
		Username string `bson:"username"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.Username
	}
	return out, nil
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) (bool, error) {
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
