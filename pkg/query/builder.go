package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField orders by a projected view name. Unmapped names are dropped when
// the query is rendered.
type SortField struct {
	Field      string
	Descending bool
}

// condition renders one WHERE term. bind records a value and returns its
// placeholder, so parameters are numbered in the order terms are rendered.
type condition func(bind func(any) string) string

// Builder renders SELECT statements over a ProjectionMap. Conditions are
// joined with AND. Values are always bound as parameters.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// ParseSortFields reads a comma-separated list such as "Status,-UpdatedAt".
// A leading "-" sorts descending. Blank entries are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// OrderByFields replaces the default sort. If none of fields is mapped the
// default still applies.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals skips nil values, including typed nil pointers.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bind func(any) string) string {
		return col + " = " + bind(value)
	})
}

// WhereContains matches a case-insensitive substring. Nil or empty is skipped.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches value as a case-insensitive substring of any of fields.
func (b *Builder) WhereSearch(value *string, fields ...string) *Builder {
	if value == nil || *value == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *value + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}

	return b.where(func(bind func(any) string) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + bind(pattern)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

func (b *Builder) Build() (string, []any) {
	return b.render(true, "")
}

func (b *Builder) BuildCount() (string, []any) {
	where, args := b.renderWhere()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage renders one 1-based page of pageSize rows.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	return b.render(true, fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize))
}

func (b *Builder) BuildLimit(limit int) (string, []any) {
	return b.render(true, " LIMIT "+strconv.Itoa(limit))
}

// BuildSingle selects the row whose idField equals id. Conditions and sort
// on b are ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	single := &Builder{projection: b.projection}
	return single.WhereEquals(idField, id).render(false, "")
}

func (b *Builder) where(c condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

func (b *Builder) render(ordered bool, suffix string) (string, []any) {
	where, args := b.renderWhere()

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.projection.Columns())
	sb.WriteString(" FROM ")
	sb.WriteString(b.projection.From())
	sb.WriteString(where)
	if ordered {
		sb.WriteString(b.renderOrderBy())
	}
	sb.WriteString(suffix)

	return sb.String(), args
}

func (b *Builder) renderWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	terms := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		terms[i] = c(bind)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

// renderOrderBy only emits mapped fields, so client-supplied sort names never
// reach the SQL text.
func (b *Builder) renderOrderBy() string {
	terms := b.orderTerms(b.sort)
	if len(terms) == 0 {
		terms = b.orderTerms(b.defaultSort)
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func (b *Builder) orderTerms(fields []SortField) []string {
	var terms []string
	for _, f := range fields {
		if !b.projection.Has(f.Field) {
			continue
		}
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms = append(terms, b.projection.Column(f.Field)+dir)
	}
	return terms
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
