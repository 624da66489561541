package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quizlearn/data-gateway/internal/core/ports"
)

// Executor runs generic data operations against arbitrary collections on
// behalf of the gateway. Filters are normalized (string _id → ObjectID)
// before execution; everything else is passed to the driver as received.
type Executor struct {
	db *mongo.Database
}

func NewExecutor(db *mongo.Database) *Executor {
	return &Executor{db: db}
}

var _ ports.Store = (*Executor)(nil)

func (e *Executor) Find(ctx context.Context, collection string, filter map[string]any, opts *ports.FindOptions) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts != nil {
		if opts.Sort != nil {
			findOpts.SetSort(opts.Sort)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}

	cur, err := e.db.Collection(collection).Find(ctx, f, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	docs := []map[string]any{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find %s: decode: %w", collection, err)
	}
	return docs, nil
}

// FindOne returns nil without error when no document matches, mirroring the
// null the frontend expects.
func (e *Executor) FindOne(ctx context.Context, collection string, filter map[string]any) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := e.db.Collection(collection).FindOne(ctx, f).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("findOne %s: %w", collection, err)
	}
	return doc, nil
}

func (e *Executor) InsertOne(ctx context.Context, collection string, doc map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := e.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insertOne %s: %w", collection, err)
	}
	return idString(res.InsertedID), nil
}

func (e *Executor) InsertMany(ctx context.Context, collection string, docs []any) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := e.db.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insertMany %s: %w", collection, err)
	}

	ids := make([]string, 0, len(res.InsertedIDs))
	for _, id := range res.InsertedIDs {
		ids = append(ids, idString(id))
	}
	return ids, nil
}

func (e *Executor) UpdateOne(ctx context.Context, collection string, filter, update map[string]any) (*ports.UpdateResult, error) {
	return e.update(ctx, collection, filter, update, false)
}

func (e *Executor) UpdateMany(ctx context.Context, collection string, filter, update map[string]any) (*ports.UpdateResult, error) {
	return e.update(ctx, collection, filter, update, true)
}

func (e *Executor) update(ctx context.Context, collection string, filter, update map[string]any, many bool) (*ports.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	col := e.db.Collection(collection)
	var res *mongo.UpdateResult
	if many {
		res, err = col.UpdateMany(ctx, f, update)
	} else {
		res, err = col.UpdateOne(ctx, f, update)
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}

	out := &ports.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
	if res.UpsertedID != nil {
		out.UpsertedID = idString(res.UpsertedID)
	}
	return out, nil
}

func (e *Executor) DeleteOne(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	return e.delete(ctx, collection, filter, false)
}

func (e *Executor) DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	return e.delete(ctx, collection, filter, true)
}

func (e *Executor) delete(ctx context.Context, collection string, filter map[string]any, many bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	col := e.db.Collection(collection)
	var res *mongo.DeleteResult
	if many {
		res, err = col.DeleteMany(ctx, f)
	} else {
		res, err = col.DeleteOne(ctx, f)
	}
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (e *Executor) Aggregate(ctx context.Context, collection string, pipeline []any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := e.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}

	docs := []map[string]any{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("aggregate %s: decode: %w", collection, err)
	}
	return docs, nil
}

func (e *Executor) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	n, err := e.db.Collection(collection).CountDocuments(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// idString renders a store-assigned identifier the way the frontend consumes
// it: ObjectIDs as hex, anything else via its string form.
func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprintf("%v", id)
}
