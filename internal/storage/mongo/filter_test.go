package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"hotel_booking/internal/query"
)

func TestRenderFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter query.Filter
		want   bson.D
	}{
		{"empty", nil, bson.D{}},
		{
			"single eq on id",
			query.Filter{}.Where("id", query.Eq, "h1"),
			bson.D{{Key: "_id", Value: "h1"}},
		},
		{
			"two bounds keep both",
			query.Filter{}.Where("name", query.Gte, "M").Where("name", query.Lt, "T"),
			bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "name", Value: bson.D{{Key: "$gte", Value: "M"}}}},
				bson.D{{Key: "name", Value: bson.D{{Key: "$lt", Value: "T"}}}},
			}}},
		},
		{
			"in",
			query.Filter{}.Where("province", query.In, "Bangkok", "Phuket"),
			bson.D{{Key: "province", Value: bson.D{{Key: "$in", Value: bson.A{"Bangkok", "Phuket"}}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderFilter(tt.filter)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v\nwant %#v", got, tt.want)
			}
		})
	}

	if _, err := renderFilter(query.Filter{}.Where("name", query.Op("like"), "x")); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestRenderSortAndProjection(t *testing.T) {
	got := renderSort([]query.SortField{{Field: "createdAt", Descending: true}})
	want := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sort: got %v want %v", got, want)
	}

	if p := renderProjection(nil); p != nil {
		t.Fatalf("expected nil projection, got %v", p)
	}
	p := renderProjection([]string{"name", "id", "province"})
	wantP := bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: 1}, {Key: "province", Value: 1}}
	if !reflect.DeepEqual(p, wantP) {
		t.Fatalf("projection: got %v want %v", p, wantP)
	}
}
