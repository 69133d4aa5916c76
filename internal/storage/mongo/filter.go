package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"hotel_booking/internal/query"
)

var mongoOps = map[query.Op]string{
	query.Gt:  "$gt",
	query.Gte: "$gte",
	query.Lt:  "$lt",
	query.Lte: "$lte",
	query.In:  "$in",
}

// field maps a schema field to its document key.
func field(name string) string {
	if name == "id" {
		return "_id"
	}
	return name
}

// renderFilter builds a match document. Several conditions are combined with
// $and so two bounds on the same field do not overwrite each other.
func renderFilter(f query.Filter) (bson.D, error) {
	if len(f) == 0 {
		return bson.D{}, nil
	}
	docs := make(bson.A, 0, len(f))
	for _, c := range f {
		key := field(c.Field)
		if c.Op == query.Eq {
			docs = append(docs, bson.D{{Key: key, Value: c.Value()}})
			continue
		}
		op, ok := mongoOps[c.Op]
		if !ok {
			return nil, fmt.Errorf("%w: operator %q", query.ErrInvalid, c.Op)
		}
		var val any = c.Value()
		if c.Op == query.In {
			val = bson.A(c.Values)
		}
		docs = append(docs, bson.D{{Key: key, Value: bson.D{{Key: op, Value: val}}}})
	}
	if len(docs) == 1 {
		return docs[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: docs}}, nil
}

func renderSort(sortBy []query.SortField) bson.D {
	out := make(bson.D, 0, len(sortBy)+1)
	sawID := false
	for _, s := range sortBy {
		dir := 1
		if s.Descending {
			dir = -1
		}
		key := field(s.Field)
		out = append(out, bson.E{Key: key, Value: dir})
		sawID = sawID || key == "_id"
	}
	if !sawID {
		out = append(out, bson.E{Key: "_id", Value: 1})
	}
	return out
}

// renderProjection returns nil when every field is wanted.
func renderProjection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	out := bson.D{{Key: "_id", Value: 1}}
	for _, f := range fields {
		if key := field(f); key != "_id" {
			out = append(out, bson.E{Key: key, Value: 1})
		}
	}
	return out
}
