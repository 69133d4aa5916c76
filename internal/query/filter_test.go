package query_test

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"hotel_booking/internal/query"
)

func testSchema() *query.Schema {
	return query.NewSchema().
		Field("name", query.String).
		Field("province", query.String).
		Field("age", query.Number).
		Field("createdAt", query.Time)
}

func TestParseFilter_GteOnNumber(t *testing.T) {
	f, err := query.ParseFilter(url.Values{"age[gte]": {"30"}}, testSchema())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := query.Filter{{Field: "age", Op: query.Gte, Values: []any{30.0}}}
	if !reflect.DeepEqual(f, want) {
		t.Fatalf("got %+v, want %+v", f, want)
	}
}

func TestParseFilter_ControlKeysIgnored(t *testing.T) {
	v := url.Values{
		"select": {"name"},
		"sort":   {"-name"},
		"page":   {"2"},
		"limit":  {"5"},
	}
	f, err := query.ParseFilter(v, testSchema())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(f) != 0 {
		t.Fatalf("expected empty filter, got %+v", f)
	}
}

func TestParseFilter_Operators(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   url.Values
		want query.Filter
	}{
		{"equality", url.Values{"province": {"Bangkok"}}, query.Filter{{Field: "province", Op: query.Eq, Values: []any{"Bangkok"}}}},
		{"repeated equality is in", url.Values{"province": {"A", "B"}}, query.Filter{{Field: "province", Op: query.In, Values: []any{"A", "B"}}}},
		{"in splits commas", url.Values{"name[in]": {"a, b,,c"}}, query.Filter{{Field: "name", Op: query.In, Values: []any{"a", "b", "c"}}}},
		{"lt", url.Values{"age[lt]": {"7.5"}}, query.Filter{{Field: "age", Op: query.Lt, Values: []any{7.5}}}},
		{"date only", url.Values{"createdAt[gt]": {"2024-03-01"}}, query.Filter{{Field: "createdAt", Op: query.Gt, Values: []any{day}}}},
		{"rfc3339", url.Values{"createdAt[lte]": {"2024-03-01T00:00:00Z"}}, query.Filter{{Field: "createdAt", Op: query.Lte, Values: []any{day}}}},
		{
			"sorted by key",
			url.Values{"province": {"X"}, "age[gt]": {"1"}},
			query.Filter{
				{Field: "age", Op: query.Gt, Values: []any{1.0}},
				{Field: "province", Op: query.Eq, Values: []any{"X"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.ParseFilter(tt.in, testSchema())
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFilter_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   url.Values
	}{
		{"unknown field", url.Values{"password": {"x"}}},
		{"unknown operator", url.Values{"name[regex]": {".*"}}},
		{"mongo style operator", url.Values{"name[$ne]": {"x"}}},
		{"not a number", url.Values{"age[gte]": {"thirty"}}},
		{"not a date", url.Values{"createdAt[gt]": {"yesterday"}}},
		{"empty in", url.Values{"name[in]": {" , "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := query.ParseFilter(tt.in, testSchema())
			if !errors.Is(err, query.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseSortAndSelect(t *testing.T) {
	s, err := query.ParseSort("name, -createdAt", testSchema())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []query.SortField{{Field: "name"}, {Field: "createdAt", Descending: true}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("sort: got %+v, want %+v", s, want)
	}
	if _, err := query.ParseSort("-secret", testSchema()); !errors.Is(err, query.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown sort field, got %v", err)
	}

	fields, err := query.ParseSelect("name,province,name", testSchema())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"name", "province"}) {
		t.Fatalf("select: got %v", fields)
	}
	if _, err := query.ParseSelect("name,password", testSchema()); !errors.Is(err, query.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown select field, got %v", err)
	}
}

func TestParse_DefaultSortAndPage(t *testing.T) {
	def := []query.SortField{{Field: "createdAt", Descending: true}}
	opts, err := query.Parse(url.Values{}, testSchema(), def, 100)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !reflect.DeepEqual(opts.Sort, def) {
		t.Fatalf("sort: got %+v", opts.Sort)
	}
	if opts.Page != (query.Page{Page: 1, Limit: 25}) {
		t.Fatalf("page: got %+v", opts.Page)
	}
	if opts.Fields != nil || len(opts.Filter) != 0 {
		t.Fatalf("expected no fields and no filter, got %+v", opts)
	}
}
