// Package query renders parameterized SELECT statements from a projection of
// view names onto SQL columns.
package query

import "strings"

type projected struct {
	view string
	expr string
}

// ProjectionMap maps the names clients see (ID, UpdatedAt) onto qualified
// column references such as "b.updated_at". Entries keep their insertion
// order, which is the order of the select list and of scanned fields.
type ProjectionMap struct {
	schema, table, alias string

	entries []projected
	index   map[string]int
	joins   []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		index:  map[string]int{},
	}
}

// Project maps a column of the base table.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.ProjectFrom(p.alias, column, viewName)
}

// ProjectFrom maps a column owned by a joined alias.
func (p *ProjectionMap) ProjectFrom(alias, column, viewName string) *ProjectionMap {
	return p.ProjectExpr(alias+"."+column, viewName)
}

// ProjectExpr maps a computed expression. expr is emitted as written.
// Re-projecting a view name replaces its expression in place.
func (p *ProjectionMap) ProjectExpr(expr, viewName string) *ProjectionMap {
	if i, ok := p.index[viewName]; ok {
		p.entries[i].expr = expr
		return p
	}
	p.index[viewName] = len(p.entries)
	p.entries = append(p.entries, projected{view: viewName, expr: expr})
	return p
}

func (p *ProjectionMap) Join(schema, table, alias, on string) *ProjectionMap {
	return p.join("JOIN", schema, table, alias, on)
}

func (p *ProjectionMap) LeftJoin(schema, table, alias, on string) *ProjectionMap {
	return p.join("LEFT JOIN", schema, table, alias, on)
}

func (p *ProjectionMap) join(kind, schema, table, alias, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table is the aliased base table, "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// From is the body of the FROM clause including joins.
func (p *ProjectionMap) From() string {
	return strings.Join(append([]string{p.Table()}, p.joins...), " ")
}

// Column resolves viewName, returning it unchanged when it is not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if i, ok := p.index[viewName]; ok {
		return p.entries[i].expr
	}
	return viewName
}

func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.index[viewName]
	return ok
}

func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ColumnList(), ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	cols := make([]string, len(p.entries))
	for i, e := range p.entries {
		cols[i] = e.expr
	}
	return cols
}
