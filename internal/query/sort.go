package query

import "strings"

// SortField is one ORDER BY key. Field is the schema name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSort parses "name,-createdAt" into sort fields; a leading "-" means
// descending. Empty input returns nil so callers can apply their default.
func ParseSort(s string, schema *Schema) ([]SortField, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: part}
		if after, ok := strings.CutPrefix(part, "-"); ok {
			sf = SortField{Field: after, Descending: true}
		} else if after, ok := strings.CutPrefix(part, "+"); ok {
			sf.Field = after
		}
		if !schema.Has(sf.Field) {
			return nil, invalidf("cannot sort on unknown field %q", sf.Field)
		}
		out = append(out, sf)
	}
	return out, nil
}

// ParseSelect parses a comma-separated projection. Duplicates are dropped and
// unknown fields rejected. Empty input returns nil (all fields).
func ParseSelect(s string, schema *Schema) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !schema.Has(part) {
			return nil, invalidf("cannot select unknown field %q", part)
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out, nil
}
