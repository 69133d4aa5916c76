package query

import "net/url"

// Options is a fully parsed list request.
type Options struct {
	Filter Filter
	Fields []string // nil selects every field
	Sort   []SortField
	Page   Page
}

// Parse reads filter, select, sort, page and limit from values. defaultSort is
// used when no sort key is given.
func Parse(values url.Values, schema *Schema, defaultSort []SortField, maxLimit int) (Options, error) {
	filter, err := ParseFilter(values, schema)
	if err != nil {
		return Options{}, err
	}
	fields, err := ParseSelect(values.Get("select"), schema)
	if err != nil {
		return Options{}, err
	}
	sortBy, err := ParseSort(values.Get("sort"), schema)
	if err != nil {
		return Options{}, err
	}
	page, err := ParsePage(values, maxLimit)
	if err != nil {
		return Options{}, err
	}
	if len(sortBy) == 0 {
		sortBy = append([]SortField(nil), defaultSort...)
	}
	return Options{
		Filter: filter,
		Fields: fields,
		Sort:   sortBy,
		Page:   page,
	}, nil
}
