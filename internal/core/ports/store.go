package ports

import "context"

// FindOptions carries the caller-supplied options accepted by find.
type FindOptions struct {
	Sort  map[string]any
	Limit int64
}

// UpdateResult reports the outcome of an update operation.
type UpdateResult struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// Store executes generic data operations against a named collection on
// behalf of the gateway. Implementations normalize top-level string _id
// filters to the store's native identifier before execution. The store
// performs no authorization of its own; callers are gated upstream.
type Store interface {
	Find(ctx context.Context, collection string, filter map[string]any, opts *FindOptions) ([]map[string]any, error)
	FindOne(ctx context.Context, collection string, filter map[string]any) (map[string]any, error)
	InsertOne(ctx context.Context, collection string, doc map[string]any) (string, error)
	InsertMany(ctx context.Context, collection string, docs []any) ([]string, error)
	UpdateOne(ctx context.Context, collection string, filter, update map[string]any) (*UpdateResult, error)
	UpdateMany(ctx context.Context, collection string, filter, update map[string]any) (*UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter map[string]any) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error)
	Aggregate(ctx context.Context, collection string, pipeline []any) ([]map[string]any, error)
	Count(ctx context.Context, collection string, filter map[string]any) (int64, error)
}
