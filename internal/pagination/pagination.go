// Package pagination turns loosely typed list parameters (page, limit, sort,
// filters, free-text search) into a bounded, deterministic page and the
// metadata that describes it. The same Spec drives both the SQL builder used
// by the Postgres store and the in-memory evaluator used by the memory store.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "createdAt"

	maxPage = math.MaxInt32
)

// Order is the direction of a sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Request describes which slice of a collection the caller wants.
type Request struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder Order
}

// NewRequest returns a request populated with the defaults.
func NewRequest() Request {
	return Request{Page: DefaultPage, Limit: DefaultLimit, SortBy: DefaultSort, SortOrder: Desc}
}

// Offset is the number of items skipped before the page starts.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

// ParseRequest reads page, limit, sortBy and sortOrder from query values.
// Missing or non-numeric page/limit values fall back to the defaults; present
// numeric values are kept as given and clamped later by Spec.Normalize.
func ParseRequest(values url.Values) Request {
	req := NewRequest()

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			req.Page = page
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			req.Limit = limit
		}
	}
	if sortBy := strings.TrimSpace(values.Get("sortBy")); sortBy != "" {
		req.SortBy = sortBy
	}
	if order := strings.TrimSpace(values.Get("sortOrder")); order != "" {
		req.SortOrder = Order(order)
	}

	return req
}

// Meta is the pagination block returned alongside every list response.
type Meta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewMeta computes metadata for a normalized request and a total count.
func NewMeta(total int, req Request) Meta {
	totalPages := 0
	if total > 0 && req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	return Meta{
		Total:       total,
		Page:        req.Page,
		Limit:       req.Limit,
		TotalPages:  totalPages,
		HasNextPage: req.Page < totalPages,
		HasPrevPage: req.Page > 1,
	}
}

// Page is one slice of a collection with its metadata.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// NewPage builds a page, replacing a nil slice with an empty one so that
// encoders emit [] rather than null.
func NewPage[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: NewMeta(total, req)}
}

// Spec declares what a collection can be sorted, searched and filtered by.
type Spec struct {
	// Sorts maps API sort names to SQL columns. It must contain DefaultSort.
	Sorts map[string]string
	// IDColumn is the identity column used as the ordering tie-break.
	IDColumn string
	// Search lists the fields matched by the free-text "search" parameter.
	Search []Field
	// Fields lists the recognized filter parameters.
	Fields []Field
}

// Normalize applies defaults, clamps and the sort allow-list.
func (s Spec) Normalize(req Request) Request {
	switch {
	case req.Page < 1:
		req.Page = DefaultPage
	case req.Page > maxPage:
		req.Page = maxPage
	}

	switch {
	case req.Limit < 1:
		req.Limit = 1
	case req.Limit > MaxLimit:
		req.Limit = MaxLimit
	}

	if _, ok := s.Sorts[req.SortBy]; !ok {
		req.SortBy = DefaultSort
	}

	switch Order(strings.ToLower(string(req.SortOrder))) {
	case Asc:
		req.SortOrder = Asc
	default:
		req.SortOrder = Desc
	}

	return req
}

func (s Spec) idColumn() string {
	if s.IDColumn != "" {
		return s.IDColumn
	}
	return "id"
}
