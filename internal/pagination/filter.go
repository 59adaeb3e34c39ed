package pagination

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"barsandbios/internal/apperr"
)

// Kind selects how a filter field matches.
type Kind int

const (
	// Exact matches on equality.
	Exact Kind = iota
	// Contains matches a case-insensitive substring.
	Contains
	// Range matches inclusive min<Param> / max<Param> bounds.
	Range
	// JSONContains matches membership in an array-valued field.
	JSONContains
)

// ValueType is the type a raw query value is parsed into.
type ValueType int

const (
	String ValueType = iota
	Int
	Float
	Bool
	Time
)

// Field is a recognized filter or search field. Param is the API name and is
// also the key passed to in-memory accessors; Column is the SQL expression.
type Field struct {
	Param  string
	Column string
	Kind   Kind
	Type   ValueType
}

// MinParam is the query key for the lower bound of a Range field.
func (f Field) MinParam() string { return "min" + capitalize(f.Param) }

// MaxParam is the query key for the upper bound of a Range field.
func (f Field) MaxParam() string { return "max" + capitalize(f.Param) }

// Op is the comparison applied by a Condition.
type Op int

const (
	OpEq Op = iota
	OpContains
	OpGte
	OpLte
	OpHas
)

// Condition is one typed predicate.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// Filter is the conjunction of its conditions and, when Search is set, a
// disjunction of substring matches across the Spec's Search fields.
type Filter struct {
	Conditions []Condition
	Search     string
}

// Where returns a copy of f with an extra equality condition.
func (f Filter) Where(field Field, value any) Filter {
	conds := make([]Condition, 0, len(f.Conditions)+1)
	conds = append(conds, f.Conditions...)
	conds = append(conds, Condition{Field: field, Op: OpEq, Value: value})
	f.Conditions = conds
	return f
}

// ParseFilter extracts the recognized filter keys from values. Unknown keys
// are ignored; a recognized key with a malformed value is a validation error.
func (s Spec) ParseFilter(values url.Values) (Filter, error) {
	var f Filter

	for _, field := range s.Fields {
		switch field.Kind {
		case Range:
			for _, bound := range []struct {
				key string
				op  Op
			}{{field.MinParam(), OpGte}, {field.MaxParam(), OpLte}} {
				raw := strings.TrimSpace(values.Get(bound.key))
				if raw == "" {
					continue
				}
				v, err := parseValue(field.Type, raw)
				if err != nil {
					return Filter{}, apperr.Invalid("invalid value %q for %s", raw, bound.key)
				}
				f.Conditions = append(f.Conditions, Condition{Field: field, Op: bound.op, Value: v})
			}
		default:
			raw := strings.TrimSpace(values.Get(field.Param))
			if raw == "" {
				continue
			}
			v, err := parseValue(field.Type, raw)
			if err != nil {
				return Filter{}, apperr.Invalid("invalid value %q for %s", raw, field.Param)
			}
			op := OpEq
			switch field.Kind {
			case Contains:
				op = OpContains
			case JSONContains:
				op = OpHas
			}
			f.Conditions = append(f.Conditions, Condition{Field: field, Op: op, Value: v})
		}
	}

	f.Search = strings.TrimSpace(values.Get("search"))
	return f, nil
}

func parseValue(t ValueType, raw string) (any, error) {
	switch t {
	case Int:
		return strconv.ParseInt(raw, 10, 64)
	case Float:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts, nil
		}
		return time.Parse(time.DateOnly, raw)
	default:
		return raw, nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
