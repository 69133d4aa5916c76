package query

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

// MaxOffset bounds (page-1)*limit so offsets stay representable in every
// store.
const MaxOffset = math.MaxInt32

// Page is a 1-indexed page request.
type Page struct {
	Page  int
	Limit int
}

// ParsePage reads page and limit. Missing, non-numeric or non-positive values
// fall back to the defaults; limit is capped at maxLimit when maxLimit > 0.
// A page whose offset would exceed MaxOffset is rejected with ErrInvalid.
func ParsePage(values url.Values, maxLimit int) (Page, error) {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(values.Get("limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Page-1 > MaxOffset/p.Limit {
		return Page{}, invalidf("page %d is out of range", p.Page)
	}
	return p, nil
}

// StartIndex is the number of records skipped before this page.
func (p Page) StartIndex() int { return (p.Page - 1) * p.Limit }

// EndIndex is the exclusive index of the last record on this page.
func (p Page) EndIndex() int { return p.Page * p.Limit }

// Cursor points at a neighbouring page.
type Cursor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the neighbouring pages that exist.
type Pagination struct {
	Next *Cursor `json:"next,omitempty"`
	Prev *Cursor `json:"prev,omitempty"`
}

// Paginate computes next/prev for page p over total records.
func Paginate(p Page, total int64) Pagination {
	var out Pagination
	if int64(p.EndIndex()) < total {
		out.Next = &Cursor{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.StartIndex() > 0 {
		out.Prev = &Cursor{Page: p.Page - 1, Limit: p.Limit}
	}
	return out
}
