package query

import (
	"strings"
	"time"
)

// Compare orders two values of the same field kind. ok is false when the
// values are not comparable (different or unsupported types).
func Compare(a, b any) (c int, ok bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}

// Match evaluates the filter against a record keyed by field name. It is the
// reference semantics the database renderings must agree with.
func (f Filter) Match(record map[string]any) bool {
	for _, c := range f {
		if !c.match(record[c.Field]) {
			return false
		}
	}
	return true
}

func (c Condition) match(v any) bool {
	if c.Op == In {
		for _, want := range c.Values {
			if n, ok := Compare(v, want); ok && n == 0 {
				return true
			}
		}
		return false
	}
	n, ok := Compare(v, c.Value())
	if !ok {
		return false
	}
	switch c.Op {
	case Eq:
		return n == 0
	case Gt:
		return n > 0
	case Gte:
		return n >= 0
	case Lt:
		return n < 0
	case Lte:
		return n <= 0
	}
	return false
}

// Less reports whether record a sorts before b under sortBy.
func Less(a, b map[string]any, sortBy []SortField) bool {
	for _, s := range sortBy {
		n, ok := Compare(a[s.Field], b[s.Field])
		if !ok || n == 0 {
			continue
		}
		if s.Descending {
			return n > 0
		}
		return n < 0
	}
	return false
}
