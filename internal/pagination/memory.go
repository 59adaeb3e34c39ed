package pagination

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Accessor returns the value of the named API field for item. It should
// return nil for unknown names.
type Accessor[T any] func(item T, field string) any

// Apply evaluates f and req over items and returns the requested page. req
// must already be normalized by s. Ordering is stable with id as tie-break.
func Apply[T any](items []T, s Spec, f Filter, req Request, get Accessor[T], id func(T) int64) Page[T] {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, s, f, get) {
			matched = append(matched, item)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		cmp := sortCompare(get(matched[i], req.SortBy), get(matched[j], req.SortBy))
		if cmp == 0 {
			cmp = compare(id(matched[i]), id(matched[j]))
		}
		if req.SortOrder == Asc {
			return cmp < 0
		}
		return cmp > 0
	})

	total := len(matched)
	start := req.Offset()
	if start > total || start < 0 {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, matched[start:end])
	return NewPage(out, total, req)
}

func matches[T any](item T, s Spec, f Filter, get Accessor[T]) bool {
	for _, c := range f.Conditions {
		v := get(item, c.Field.Param)
		switch c.Op {
		case OpContains:
			if !containsFold(v, fmt.Sprint(c.Value)) {
				return false
			}
		case OpGte:
			if v == nil || compare(v, c.Value) < 0 {
				return false
			}
		case OpLte:
			if v == nil || compare(v, c.Value) > 0 {
				return false
			}
		case OpHas:
			if !hasElement(v, c.Value) {
				return false
			}
		default:
			if v == nil || compare(v, c.Value) != 0 {
				return false
			}
		}
	}

	if f.Search == "" || len(s.Search) == 0 {
		return true
	}
	for _, field := range s.Search {
		if containsFold(get(item, field.Param), f.Search) {
			return true
		}
	}
	return false
}

func containsFold(v any, needle string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(needle))
}

func hasElement(v any, want any) bool {
	switch list := v.(type) {
	case []string:
		for _, el := range list {
			if compare(el, want) == 0 {
				return true
			}
		}
	case []int64:
		for _, el := range list {
			if compare(el, want) == 0 {
				return true
			}
		}
	}
	return false
}

// sortCompare is compare with the ordering Postgres applies to ORDER BY:
// NULL ranks above every value, so it comes last ascending and first
// descending. Strings compare case-folded first, then byte-wise, which
// approximates a linguistic collation while staying total.
func sortCompare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if c := strings.Compare(strings.ToLower(as), strings.ToLower(bs)); c != 0 {
				return c
			}
			return strings.Compare(as, bs)
		}
	}
	return compare(a, b)
}

// compare orders two values of compatible kinds. Numbers compare
// numerically across int widths and floats; incomparable values are equal.
func compare(a, b any) int {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
