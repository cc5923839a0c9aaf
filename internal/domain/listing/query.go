// Package listing holds the tenant-agnostic parts of the list engine:
// query normalization, pagination math, per-kind descriptors and bulk
// identifier parsing. The store adapter turns these into SQL.
package listing

import (
	"slices"
	"strconv"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Desc only for "desc"; anything else sorts ascending.
func ParseDirection(s string) Direction {
	if s == string(Desc) {
		return Desc
	}
	return Asc
}

// DefaultPageSize is used whenever the requested page size is not allowed.
const DefaultPageSize = 10

// PageSizes is the allow-list of page sizes a caller may request.
var PageSizes = []int{10, 25, 50, 100}

// DefaultView is the presentation mode echoed when none is requested.
const DefaultView = "table"

// Query is a list request for one record kind. Sort holds the caller's
// logical key; it is resolved against a Descriptor before reaching the store.
type Query struct {
	Search   string    `json:"q"`
	Sort     string    `json:"sort"`
	Dir      Direction `json:"dir"`
	Page     int       `json:"page"`
	PageSize int       `json:"per_page"`
	View     string    `json:"view"`
}

// Values is satisfied by url.Values.
type Values interface {
	Get(key string) string
}

// ParseQuery reads the standard list parameters (q, sort, dir, page,
// per_page, view) and normalizes them. Sort keys are not resolved here.
func ParseQuery(v Values) Query {
	q := Query{
		Search: v.Get("q"),
		Sort:   strings.TrimSpace(v.Get("sort")),
		Dir:    ParseDirection(v.Get("dir")),
		View:   strings.TrimSpace(v.Get("view")),
	}
	q.Page, _ = strconv.Atoi(strings.TrimSpace(v.Get("page")))
	q.PageSize, _ = strconv.Atoi(strings.TrimSpace(v.Get("per_page")))
	return q.Normalize()
}

// Normalize trims the search term and resets page size, page and view to
// their defaults when they are out of range. Page is only lower-bounded;
// the upper bound depends on the total and is applied by Paginate.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Dir != Desc {
		q.Dir = Asc
	}
	if !slices.Contains(PageSizes, q.PageSize) {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.View == "" {
		q.View = DefaultView
	}
	return q
}

// FirstPage returns the query used to refresh a listing after a mutation:
// page one, default sort and page size.
func FirstPage() Query {
	return Query{}.Normalize()
}

// searchEscaper escapes LIKE metacharacters so the term matches literally.
var searchEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern returns the ILIKE pattern for a substring search on term.
func LikePattern(term string) string {
	return "%" + searchEscaper.Replace(term) + "%"
}
