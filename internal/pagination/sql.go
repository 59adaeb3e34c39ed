package pagination

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query is the SQL rendering of a filter and a normalized request.
type Query struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// Build renders f and req into SQL fragments with positional arguments.
// req must already be normalized by s.
func (s Spec) Build(f Filter, req Request) (Query, error) {
	var (
		clauses []string
		args    []any
	)

	for _, c := range f.Conditions {
		switch c.Op {
		case OpContains:
			args = append(args, likePattern(fmt.Sprint(c.Value)))
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", c.Field.Column, len(args)))
		case OpGte:
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", c.Field.Column, len(args)))
		case OpLte:
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", c.Field.Column, len(args)))
		case OpHas:
			payload, err := json.Marshal([]any{c.Value})
			if err != nil {
				return Query{}, fmt.Errorf("marshal %s filter: %w", c.Field.Param, err)
			}
			args = append(args, string(payload))
			clauses = append(clauses, fmt.Sprintf("%s @> $%d::jsonb", c.Field.Column, len(args)))
		default:
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", c.Field.Column, len(args)))
		}
	}

	if f.Search != "" && len(s.Search) > 0 {
		args = append(args, likePattern(f.Search))
		ors := make([]string, 0, len(s.Search))
		for _, field := range s.Search {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", field.Column, len(args)))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	q := Query{
		Args:   args,
		Limit:  req.Limit,
		Offset: req.Offset(),
	}
	if len(clauses) > 0 {
		q.Where = " WHERE " + strings.Join(clauses, " AND ")
	}

	column, ok := s.Sorts[req.SortBy]
	if !ok {
		column = s.Sorts[DefaultSort]
	}
	dir := "DESC"
	if req.SortOrder == Asc {
		dir = "ASC"
	}
	q.OrderBy = fmt.Sprintf(" ORDER BY %s %s, %s %s", column, dir, s.idColumn(), dir)

	return q, nil
}

// Select renders the paged SELECT for base, which holds everything up to
// and including the FROM/JOIN clauses.
func (q Query) Select(base string) (string, []any) {
	args := make([]any, 0, len(q.Args)+2)
	args = append(args, q.Args...)
	args = append(args, q.Limit, q.Offset)
	return fmt.Sprintf("%s%s%s LIMIT $%d OFFSET $%d", base, q.Where, q.OrderBy, len(args)-1, len(args)), args
}

// Count renders the matching COUNT(*) query over from.
func (q Query) Count(from string) (string, []any) {
	return "SELECT COUNT(*) FROM " + from + q.Where, q.Args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
