package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalid is returned for filters, projections or sort keys that do not
// fit the schema.
var ErrInvalid = errors.New("invalid query")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Op is a comparison operator.
type Op string

const (
	Eq  Op = "eq"
	Gt  Op = "gt"
	Gte Op = "gte"
	Lt  Op = "lt"
	Lte Op = "lte"
	In  Op = "in"
)

var bracketOps = map[string]Op{
	"gt":  Gt,
	"gte": Gte,
	"lt":  Lt,
	"lte": Lte,
	"in":  In,
}

// Condition compares one field. Eq and the ordering operators carry exactly
// one value, In carries one or more.
type Condition struct {
	Field  string
	Op     Op
	Values []any
}

func (c Condition) Value() any {
	if len(c.Values) == 0 {
		return nil
	}
	return c.Values[0]
}

// Filter is a conjunction of conditions.
type Filter []Condition

// Where appends a condition. Values are expected to already have the Go type
// of the field (see Schema.Parse).
func (f Filter) Where(field string, op Op, values ...any) Filter {
	return append(f, Condition{Field: field, Op: op, Values: values})
}

// ControlKeys are consumed by Parse and never become filter conditions.
var ControlKeys = []string{"select", "sort", "page", "limit"}

func isControl(key string) bool {
	for _, k := range ControlKeys {
		if k == key {
			return true
		}
	}
	return false
}

var filterKey = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[([A-Za-z]+)\])?$`)

// ParseFilter builds a Filter from query-string values. Keys are either
// "field" (equality) or "field[op]" with op one of gt, gte, lt, lte, in.
// Repeated equality keys become an In condition. Keys are processed in
// sorted order so the output is deterministic.
func ParseFilter(values url.Values, schema *Schema) (Filter, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !isControl(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var f Filter
	for _, key := range keys {
		m := filterKey.FindStringSubmatch(key)
		if m == nil {
			return nil, invalidf("malformed filter key %q", key)
		}
		field, opName := m[1], strings.ToLower(m[2])
		if !schema.Has(field) {
			return nil, invalidf("unknown field %q", field)
		}

		raw := values[key]
		switch {
		case opName == "":
			vals, err := parseAll(schema, field, raw)
			if err != nil {
				return nil, err
			}
			if len(vals) == 1 {
				f = f.Where(field, Eq, vals[0])
			} else {
				f = f.Where(field, In, vals...)
			}

		case opName == "in":
			var parts []string
			for _, r := range raw {
				for _, p := range strings.Split(r, ",") {
					if p = strings.TrimSpace(p); p != "" {
						parts = append(parts, p)
					}
				}
			}
			if len(parts) == 0 {
				return nil, invalidf("%s[in] needs at least one value", field)
			}
			vals, err := parseAll(schema, field, parts)
			if err != nil {
				return nil, err
			}
			f = f.Where(field, In, vals...)

		default:
			op, ok := bracketOps[opName]
			if !ok {
				return nil, invalidf("unsupported operator %q on %q", opName, field)
			}
			vals, err := parseAll(schema, field, raw)
			if err != nil {
				return nil, err
			}
			for _, v := range vals {
				f = f.Where(field, op, v)
			}
		}
	}
	return f, nil
}

func parseAll(schema *Schema, field string, raw []string) ([]any, error) {
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := schema.Parse(field, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
