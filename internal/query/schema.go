// Package query turns list requests (filters, projections, sorting, paging)
// into typed values that the storage adapters render for their backend.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type of a schema field. It decides how raw query-string
// values are parsed and compared.
type Kind int

const (
	String Kind = iota
	Number
	Time
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Time:
		return "time"
	default:
		return "string"
	}
}

// Schema is the fixed set of fields a resource can be filtered, selected and
// sorted on.
type Schema struct {
	kinds map[string]Kind
	names []string
}

func NewSchema() *Schema {
	return &Schema{kinds: make(map[string]Kind)}
}

// Field registers a field. Registration order is the order Names returns.
func (s *Schema) Field(name string, kind Kind) *Schema {
	if _, ok := s.kinds[name]; !ok {
		s.names = append(s.names, name)
	}
	s.kinds[name] = kind
	return s
}

func (s *Schema) Kind(name string) (Kind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

func (s *Schema) Has(name string) bool {
	_, ok := s.kinds[name]
	return ok
}

func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Parse converts a raw query-string value into the Go type of the field:
// string, float64 or time.Time.
func (s *Schema) Parse(field, raw string) (any, error) {
	kind, ok := s.kinds[field]
	if !ok {
		return nil, invalidf("unknown field %q", field)
	}
	switch kind {
	case Number:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, invalidf("%s: %q is not a number", field, raw)
		}
		return f, nil
	case Time:
		t, err := parseTime(raw)
		if err != nil {
			return nil, invalidf("%s: %q is not a date", field, raw)
		}
		return t, nil
	default:
		return raw, nil
	}
}

// accepts RFC3339 timestamps or plain dates (UTC midnight)
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t.UTC(), nil
}
