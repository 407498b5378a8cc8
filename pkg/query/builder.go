package query

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

const placeholder = "$%d"

type condition struct {
	clause string
	args   []any
}

// SortField represents a single term in an ORDER BY clause.
// Field is a projection view name, or a raw expression/alias when unmapped.
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL queries with automatic $n parameter numbering.
// Conditions are joined with AND.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	orderBy     []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		conditions:  make([]condition, 0),
		defaultSort: defaultSort,
	}
}

// OrderBy sets the sort order, overriding the default sort fields.
func (b *Builder) OrderBy(fields ...SortField) *Builder {
	b.orderBy = fields
	return b
}

// WhereEquals adds an equality condition. No-op for nil values and nil pointers.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = %s", b.projection.Column(field), placeholder),
		args:   []any{deref(value)},
	})
	return b
}

// WhereRange adds inclusive lower and upper bounds on a timestamp field.
// Either bound may be nil.
func (b *Builder) WhereRange(field string, from, to *time.Time) *Builder {
	col := b.projection.Column(field)
	if from != nil {
		b.conditions = append(b.conditions, condition{
			clause: fmt.Sprintf("%s >= %s", col, placeholder),
			args:   []any{*from},
		})
	}
	if to != nil {
		b.conditions = append(b.conditions, condition{
			clause: fmt.Sprintf("%s <= %s", col, placeholder),
			args:   []any{*to},
		})
	}
	return b
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where)
	return sql, args
}

// BuildPage returns a SELECT query with ordering, LIMIT and OFFSET.
func (b *Builder) BuildPage(offset, limit int) (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
		limit,
		offset,
	)
	return sql, args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

// BuildAggregate returns a grouped SELECT of the given expressions with the current
// conditions. groupBy entries are projection view names; ordering follows OrderBy
// or the default sort.
func (b *Builder) BuildAggregate(selects []string, groupBy ...string) (string, []any) {
	where, args := b.buildWhere()

	group := ""
	if len(groupBy) > 0 {
		cols := make([]string, len(groupBy))
		for i, g := range groupBy {
			cols[i] = b.projection.Column(g)
		}
		group = " GROUP BY " + strings.Join(cols, ", ")
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s%s",
		strings.Join(selects, ", "),
		b.projection.From(),
		where,
		group,
		b.buildOrderBy(),
	)
	return sql, args
}

func (b *Builder) buildOrderBy() string {
	fields := b.orderBy
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", b.projection.Column(f.Field), dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	n := 1

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, placeholder, fmt.Sprintf("$%d", n), 1)
			args = append(args, arg)
			n++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func deref(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}
