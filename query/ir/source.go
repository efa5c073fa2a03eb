package ir

import "github.com/sqlforge/sqlforge/query/schema"

// DataSource is the closed set of FROM-clause sources.
type DataSource interface {
	isSource()
}

// TableReference names a database table, optionally schema-qualified and
// aliased. Columns is an optional manifest used by the builder layer to
// resolve unqualified column references; the generators never consult it.
type TableReference struct {
	Name    string
	Schema  string
	Alias   string
	Columns *schema.Table
}

func (TableReference) isSource() {}

// Table is a convenience constructor for a plain table reference.
func Table(name string) *TableReference {
	return &TableReference{Name: name}
}

// SubquerySource wraps a query so it can serve as a FROM-clause source.
// The alias is mandatory: SQL requires derived tables to be named.
type SubquerySource struct {
	Query *Query
	Alias string
}

func (SubquerySource) isSource() {}

// JoinType enumerates the supported join flavors.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
	CrossJoin JoinType = "CROSS"
)

// JoinOperation combines two sources. Successive joins build a left-deep
// tree: each new join wraps the entire prior source as Left.
type JoinOperation struct {
	Left      DataSource
	Right     DataSource
	Type      JoinType
	Condition Expression
}

func (JoinOperation) isSource() {}
