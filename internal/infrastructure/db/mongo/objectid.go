package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizlearn/data-gateway/internal/core/domain"
)

// normalizeFilter rewrites a top-level string _id into a native ObjectID so
// browser clients can filter by the hex string they received. The rewrite is
// deliberately shallow: an _id nested inside $or/$in or any other operator is
// passed through unconverted.
func normalizeFilter(filter map[string]any) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}

	out := make(bson.M, len(filter))
	for k, v := range filter {
		out[k] = v
	}

	if raw, ok := out["_id"].(string); ok {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidObjectID, raw)
		}
		out["_id"] = oid
	}

	return out, nil
}
