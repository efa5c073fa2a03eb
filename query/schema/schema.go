// Package schema describes table column manifests used to resolve and
// validate column references while building queries.
package schema

// ColumnType is the declared type of a table column.
type ColumnType string

const (
	Int       ColumnType = "int"
	Float     ColumnType = "float"
	String    ColumnType = "string"
	Bool      ColumnType = "bool"
	Date      ColumnType = "date"
	Timestamp ColumnType = "timestamp"
	Any       ColumnType = "any"
)

// Column is a single column declaration.
type Column struct {
	Name string
	Type ColumnType
}

// Table is an ordered column manifest for one table.
type Table struct {
	Name    string
	Columns []Column
}

// NewTable creates a manifest with the given columns, in order.
func NewTable(name string, columns ...Column) *Table {
	return &Table{
		Name:    name,
		Columns: columns,
	}
}

// Col is a convenience constructor for a column declaration.
func Col(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ}
}

// Has reports whether the manifest declares the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.Type(name)
	return ok
}

// Type returns the declared type of the named column.
func (t *Table) Type(name string) (ColumnType, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
