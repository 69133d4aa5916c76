package mysql

import (
	"fmt"
	"strings"

	"hotel_booking/internal/query"
)

// hotelColumns maps hotel schema fields to columns.
var hotelColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"address":    "address",
	"district":   "district",
	"province":   "province",
	"postalcode": "postalcode",
	"tel":        "tel",
	"region":     "region",
	"createdAt":  "created_at",
}

var sqlOps = map[query.Op]string{
	query.Eq:  "=",
	query.Gt:  ">",
	query.Gte: ">=",
	query.Lt:  "<",
	query.Lte: "<=",
}

// whereClause renders f as " WHERE ..." with placeholders. An empty filter
// renders as "".
func whereClause(f query.Filter, columns map[string]string) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(f))
	var args []any
	for _, c := range f {
		col, ok := columns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: no column for %q", query.ErrInvalid, c.Field)
		}
		if c.Op == query.In {
			if len(c.Values) == 0 {
				return "", nil, fmt.Errorf("%w: empty in on %q", query.ErrInvalid, c.Field)
			}
			marks := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
			parts = append(parts, col+" IN ("+marks+")")
			args = append(args, c.Values...)
			continue
		}
		op, ok := sqlOps[c.Op]
		if !ok {
			return "", nil, fmt.Errorf("%w: operator %q", query.ErrInvalid, c.Op)
		}
		parts = append(parts, col+" "+op+" ?")
		args = append(args, c.Value())
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

// orderClause renders sort keys; id is appended as a tie-breaker so paging is
// stable.
func orderClause(sortBy []query.SortField, columns map[string]string) (string, error) {
	keys := make([]string, 0, len(sortBy)+1)
	sawID := false
	for _, s := range sortBy {
		col, ok := columns[s.Field]
		if !ok {
			return "", fmt.Errorf("%w: cannot sort on %q", query.ErrInvalid, s.Field)
		}
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		keys = append(keys, col+" "+dir)
		sawID = sawID || col == "id"
	}
	if !sawID {
		keys = append(keys, "id ASC")
	}
	return " ORDER BY " + strings.Join(keys, ", "), nil
}
