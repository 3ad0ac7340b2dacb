package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified columns of one table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []string
	fields  map[string]string
}

// NewProjectionMap creates a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project adds column to the SELECT list under the logical name field.
// Columns are selected in the order they are projected.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns = append(p.columns, qualified)
	p.fields[field] = qualified
	return p
}

// Table returns the FROM clause target.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Columns returns the SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

// Column returns the qualified column for field. Unknown fields panic,
// since they indicate a programming error rather than bad input.
func (p *ProjectionMap) Column(field string) string {
	col, ok := p.fields[field]
	if !ok {
		panic(fmt.Sprintf("query: unknown field %q for %s", field, p.table))
	}
	return col
}
