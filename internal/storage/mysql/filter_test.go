package mysql

import (
	"errors"
	"reflect"
	"testing"

	"hotel_booking/internal/query"
)

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   query.Filter
		wantSQL  string
		wantArgs []any
	}{
		{"empty", nil, "", nil},
		{
			"range",
			query.Filter{}.Where("name", query.Gte, "M").Where("name", query.Lt, "T"),
			" WHERE name >= ? AND name < ?",
			[]any{"M", "T"},
		},
		{
			"in and eq",
			query.Filter{}.Where("province", query.In, "Bangkok", "Phuket").Where("postalcode", query.Eq, "10110"),
			" WHERE province IN (?,?) AND postalcode = ?",
			[]any{"Bangkok", "Phuket", "10110"},
		},
		{
			"renamed column",
			query.Filter{}.Where("createdAt", query.Gt, "2024-01-01"),
			" WHERE created_at > ?",
			[]any{"2024-01-01"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := whereClause(tt.filter, hotelColumns)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("sql: got %q want %q", got, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args: got %v want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereClause_RejectsUnknown(t *testing.T) {
	if _, _, err := whereClause(query.Filter{}.Where("stars", query.Eq, "5"), hotelColumns); !errors.Is(err, query.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown column, got %v", err)
	}
	if _, _, err := whereClause(query.Filter{}.Where("name", query.Op("like"), "x"), hotelColumns); !errors.Is(err, query.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown operator, got %v", err)
	}
}

func TestOrderClause(t *testing.T) {
	got, err := orderClause([]query.SortField{{Field: "createdAt", Descending: true}, {Field: "name"}}, hotelColumns)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if want := " ORDER BY created_at DESC, name ASC, id ASC"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	got, _ = orderClause([]query.SortField{{Field: "id", Descending: true}}, hotelColumns)
	if want := " ORDER BY id DESC"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if _, err := orderClause([]query.SortField{{Field: "stars"}}, hotelColumns); !errors.Is(err, query.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
