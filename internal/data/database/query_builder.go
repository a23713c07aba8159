// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison used by a Condition.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	ILike              ConditionType = "ILIKE"
	In                 ConditionType = "IN"
	Custom             ConditionType = "CUSTOM"

	unset = -1
)

var placeholderRE = regexp.MustCompile(`\$(\d+)`)

// Condition is one predicate of a WHERE clause; conditions are ANDed.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery string
}

// WhereCond builds a field comparison.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond embeds raw SQL whose $n placeholders are renumbered to fit the
// surrounding query. The SQL itself is not sanitized.
func WhereRawCond(rawQuery string, params ...any) Condition {
	return Condition{Type: Custom, rawQuery: rawQuery, Value: params}
}

// ListQueryOptions describes a SELECT over one table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions applies opts over defaults for table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	o := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
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

// WithCountOnly selects COUNT(*) and drops ordering and paging.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

func sanitizeIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildListQuery renders options into SQL and positional args.
func BuildListQuery(o *ListQueryOptions) (string, []any) {
	if o == nil {
		return "", nil
	}

	var q strings.Builder
	switch {
	case o.CountOnly:
		q.WriteString("SELECT COUNT(*) ")
	case len(o.Columns) == 0:
		q.WriteString("SELECT * ")
	default:
		cols := make([]string, len(o.Columns))
		for i, c := range o.Columns {
			cols[i] = sanitizeIdentifier(c)
		}
		q.WriteString("SELECT " + strings.Join(cols, ", ") + " ")
	}
	q.WriteString("FROM " + sanitizeIdentifier(o.Table))

	where, args, next := buildWhereClause(o.Conditions, 1)
	if where != "" {
		q.WriteString(" " + where)
	}
	if o.CountOnly {
		return q.String(), args
	}

	if o.OrderBy != "" {
		q.WriteString(" ORDER BY " + sanitizeIdentifier(o.OrderBy))
		if dir := strings.ToUpper(o.OrderDir); dir == "ASC" || dir == "DESC" {
			q.WriteString(" " + dir)
		}
	}
	if o.Limit != unset {
		q.WriteString(fmt.Sprintf(" LIMIT $%d", next))
		args = append(args, o.Limit)
		next++
	}
	if o.Offset != unset {
		q.WriteString(fmt.Sprintf(" OFFSET $%d", next))
		args = append(args, o.Offset)
	}
	return q.String(), args
}

func buildWhereClause(conds []Condition, start int) (string, []any, int) {
	parts := make([]string, 0, len(conds))
	args := []any{}
	n := start
	for _, c := range conds {
		sql, condArgs, next := processCondition(c, n)
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, condArgs...)
		n = next
	}
	if len(parts) == 0 {
		return "", args, n
	}
	return "WHERE " + strings.Join(parts, " AND "), args, n
}

func processCondition(c Condition, n int) (string, []any, int) {
	switch c.Type {
	case Custom:
		return renumberRaw(c, n)
	case In:
		if c.Field == "" {
			return "", nil, n
		}
		rv := reflect.ValueOf(c.Value)
		if rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return "", nil, n
		}
		ph := make([]string, rv.Len())
		args := make([]any, rv.Len())
		for i := range rv.Len() {
			ph[i] = fmt.Sprintf("$%d", n)
			args[i] = rv.Index(i).Interface()
			n++
		}
		return fmt.Sprintf("%s IN (%s)", sanitizeIdentifier(c.Field), strings.Join(ph, ", ")), args, n
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual, ILike:
		if c.Field == "" {
			return "", nil, n
		}
		return fmt.Sprintf("%s %s $%d", sanitizeIdentifier(c.Field), c.Type, n), []any{c.Value}, n + 1
	}
	return "", nil, n
}

// renumberRaw maps $1..$k in the raw SQL onto the next free parameter
// numbers; repeated placeholders share one argument.
func renumberRaw(c Condition, n int) (string, []any, int) {
	if c.rawQuery == "" {
		return "", nil, n
	}
	params, _ := c.Value.([]any)
	args := []any{}
	idx := make(map[int]int)
	out := placeholderRE.ReplaceAllStringFunc(c.rawQuery, func(m string) string {
		k, err := strconv.Atoi(m[1:])
		if err != nil || k < 1 || k > len(params) {
			return m
		}
		if _, ok := idx[k]; !ok {
			idx[k] = n
			args = append(args, params[k-1])
			n++
		}
		return fmt.Sprintf("$%d", idx[k])
	})
	return out, args, n
}
