// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThanOrEqual ConditionType = ">="
	LessThan           ConditionType = "<"
	// IsNull ignores Value.
	IsNull ConditionType = "IS NULL"
	// AnyOf matches the field against a slice passed as one array parameter.
	AnyOf ConditionType = "ANY"

	unset = -1
)

type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// AnyCond groups conditions with OR. An empty group is dropped.
type AnyCond []Condition

type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	Groups     []AnyCond
	OrderBy    []string
	OrderDir   string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition adds a condition joined with AND.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithAnyOf adds a parenthesized OR group joined with AND.
func WithAnyOf(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Groups = append(o.Groups, AnyCond(conds)) }
}

// WithOrderBy sets the ordering columns and a shared direction.
func WithOrderBy(direction string, columns ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = columns
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

type builder struct {
	args []any
}

func (b *builder) param(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) condition(c Condition) string {
	if c.Field == "" {
		return ""
	}
	field := ident(c.Field)
	switch c.Type {
	case IsNull:
		return field + " IS NULL"
	case AnyOf:
		return fmt.Sprintf("%s = ANY(%s)", field, b.param(c.Value))
	case Equal, NotEqual, GreaterThanOrEqual, LessThan:
		return fmt.Sprintf("%s %s %s", field, c.Type, b.param(c.Value))
	default:
		return ""
	}
}

// BuildListQuery constructs a SQL query string and arguments from options, sanitizing identifiers.
//
//	query, args := BuildListQuery(NewListQueryOptions("jobs",
//		WithColumns("id", "job_no"),
//		WithCondition(WhereCond("status", Equal, "ACTIVE")),
//		WithOrderBy("DESC", "created_at", "id"),
//		WithLimit(50),
//	))
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var q strings.Builder
	b := &builder{}

	switch {
	case options.CountOnly:
		q.WriteString("SELECT COUNT(*)")
	case len(options.Columns) == 0:
		q.WriteString("SELECT *")
	default:
		cols := make([]string, len(options.Columns))
		for i, c := range options.Columns {
			cols[i] = ident(c)
		}
		q.WriteString("SELECT " + strings.Join(cols, ", "))
	}
	q.WriteString(" FROM " + ident(options.Table))

	var where []string
	for _, c := range options.Conditions {
		if s := b.condition(c); s != "" {
			where = append(where, s)
		}
	}
	for _, g := range options.Groups {
		var ors []string
		for _, c := range g {
			if s := b.condition(c); s != "" {
				ors = append(ors, s)
			}
		}
		if len(ors) > 0 {
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if options.CountOnly {
		return q.String(), b.args
	}

	if len(options.OrderBy) > 0 {
		dir := strings.ToUpper(options.OrderDir)
		cols := make([]string, len(options.OrderBy))
		for i, c := range options.OrderBy {
			cols[i] = ident(c)
			if dir == "ASC" || dir == "DESC" {
				cols[i] += " " + dir
			}
		}
		q.WriteString(" ORDER BY " + strings.Join(cols, ", "))
	}
	if options.Limit != unset {
		q.WriteString(" LIMIT " + b.param(options.Limit))
	}
	if options.Offset != unset {
		q.WriteString(" OFFSET " + b.param(options.Offset))
	}
	return q.String(), b.args
}
