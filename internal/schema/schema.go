// Package schema describes the tables the query gateway is allowed to
// expose to generated SQL. The context is built once at startup and
// shared read-only by every request.
package schema

import "strings"

// Column is a single approved column.
type Column struct {
	Name string
	Type string
}

// Table is an approved table with its ordered columns.
type Table struct {
	Name    string
	Columns []Column
}

// Context is the closed set of tables the gateway may expose.
type Context struct {
	tables []Table
	ddl    string
}

// New builds an immutable Context from the given table definitions.
func New(tables []Table) *Context {
	return &Context{
		tables: tables,
		ddl:    renderDDL(tables),
	}
}

// Default returns the approved inventory schema: products,
// inventory_levels and sales_orders.
func Default() *Context {
	return New([]Table{
		{
			Name: "products",
			Columns: []Column{
				{Name: "product_id", Type: "SERIAL PRIMARY KEY"},
				{Name: "sku", Type: "VARCHAR(50) UNIQUE NOT NULL"},
				{Name: "product_name", Type: "VARCHAR(255) NOT NULL"},
				{Name: "category", Type: "VARCHAR(100)"},
				{Name: "purchase_price", Type: "NUMERIC(10, 2) NOT NULL"},
				{Name: "selling_price", Type: "NUMERIC(10, 2) NOT NULL"},
			},
		},
		{
			Name: "inventory_levels",
			Columns: []Column{
				{Name: "inventory_id", Type: "SERIAL PRIMARY KEY"},
				{Name: "product_id", Type: "INTEGER REFERENCES products(product_id)"},
				{Name: "quantity", Type: "INTEGER NOT NULL"},
				{Name: "location", Type: "VARCHAR(100)"},
			},
		},
		{
			Name: "sales_orders",
			Columns: []Column{
				{Name: "order_id", Type: "SERIAL PRIMARY KEY"},
				{Name: "product_id", Type: "INTEGER REFERENCES products(product_id)"},
				{Name: "quantity_sold", Type: "INTEGER NOT NULL"},
				{Name: "order_date", Type: "TIMESTAMP WITH TIME ZONE NOT NULL"},
			},
		},
	})
}

// Tables returns the approved table definitions in declaration order.
func (c *Context) Tables() []Table {
	return c.tables
}

// TableNames returns the approved table names in declaration order.
func (c *Context) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

// DDL returns a CREATE TABLE description of the approved schema,
// suitable for inclusion in a generation prompt.
func (c *Context) DDL() string {
	return c.ddl
}

func renderDDL(tables []Table) string {
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("-- Table: " + t.Name + "\n")
		b.WriteString("CREATE TABLE " + t.Name + " (\n")
		for j, col := range t.Columns {
			b.WriteString("    " + col.Name + " " + col.Type)
			if j < len(t.Columns)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(");\n")
	}
	return b.String()
}
