// Package builder is the expression-building surface of the query model.
// A Table proxy hands out column expressions, validated against an
// optional schema manifest, and Expr combinators assemble ir nodes
// without the caller touching the ir package directly. Construction
// errors are carried through the chain and surface once, at Build.
package builder

import (
	"github.com/sqlforge/sqlforge/query/funcs"
	"github.com/sqlforge/sqlforge/query/ir"
	"github.com/sqlforge/sqlforge/query/schema"
)

// Expr wraps an ir expression together with any error produced while
// building it. Combinators on a failed Expr are no-ops that keep the
// first error.
type Expr struct {
	node ir.Expression
	err  error
}

// Build returns the underlying expression node, or the first error
// recorded anywhere in the chain that produced it.
func (e *Expr) Build() (ir.Expression, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.node, nil
}

// As names the expression for the select list.
func (e *Expr) As(alias string) (ir.Column, error) {
	if e.err != nil {
		return ir.Column{}, e.err
	}
	return ir.NewColumn(e.node, alias), nil
}

// Lit wraps a constant value.
func Lit(v interface{}) *Expr {
	return &Expr{node: ir.Lit(v)}
}

// Column references a column without manifest validation. Use Table.Col
// for validated references.
func Column(name string) *Expr {
	return &Expr{node: ir.Col(name)}
}

func failed(err error) *Expr {
	return &Expr{err: err}
}

func (e *Expr) binary(op string, right *Expr) *Expr {
	if e.err != nil {
		return e
	}
	if right.err != nil {
		return right
	}
	return &Expr{node: &ir.BinaryOperation{Left: e.node, Operator: op, Right: right.node}}
}

// Comparison combinators.

func (e *Expr) Eq(other *Expr) *Expr  { return e.binary("=", other) }
func (e *Expr) Ne(other *Expr) *Expr  { return e.binary("!=", other) }
func (e *Expr) Gt(other *Expr) *Expr  { return e.binary(">", other) }
func (e *Expr) Gte(other *Expr) *Expr { return e.binary(">=", other) }
func (e *Expr) Lt(other *Expr) *Expr  { return e.binary("<", other) }
func (e *Expr) Lte(other *Expr) *Expr { return e.binary("<=", other) }

// Arithmetic combinators.

func (e *Expr) Add(other *Expr) *Expr { return e.binary("+", other) }
func (e *Expr) Sub(other *Expr) *Expr { return e.binary("-", other) }
func (e *Expr) Mul(other *Expr) *Expr { return e.binary("*", other) }
func (e *Expr) Div(other *Expr) *Expr { return e.binary("/", other) }

// Logical combinators.

func (e *Expr) And(other *Expr) *Expr { return e.binary("AND", other) }
func (e *Expr) Or(other *Expr) *Expr  { return e.binary("OR", other) }

// Not negates a condition.
func Not(e *Expr) *Expr {
	if e.err != nil {
		return e
	}
	return &Expr{node: &ir.UnaryOperation{Operator: "NOT", Operand: e.node}}
}

// Neg is arithmetic negation.
func Neg(e *Expr) *Expr {
	if e.err != nil {
		return e
	}
	return &Expr{node: &ir.UnaryOperation{Operator: "-", Operand: e.node}}
}

// Like matches against a SQL pattern.
func (e *Expr) Like(pattern string) *Expr {
	return e.binary("LIKE", Lit(pattern))
}

// In tests membership in a literal list.
func (e *Expr) In(values ...interface{}) *Expr {
	return e.binary("IN", Lit(values))
}

// IsNull tests for NULL.
func (e *Expr) IsNull() *Expr {
	return e.binary("IS", Lit(nil))
}

// IsNotNull tests for non-NULL.
func (e *Expr) IsNotNull() *Expr {
	return e.binary("IS NOT", Lit(nil))
}

// Parens forces parentheses around the expression regardless of
// precedence. Only meaningful on binary operations.
func (e *Expr) Parens() *Expr {
	if e.err != nil {
		return e
	}
	if b, ok := e.node.(*ir.BinaryOperation); ok {
		wrapped := *b
		wrapped.NeedsParens = true
		return &Expr{node: &wrapped}
	}
	return e
}

// TableOption configures a Table proxy.
type TableOption func(*Table)

// WithSchema attaches a column manifest; Col then validates names
// against it.
func WithSchema(manifest *schema.Table) TableOption {
	return func(t *Table) { t.manifest = manifest }
}

// WithAlias sets the table alias. Column references from the proxy are
// qualified by the alias.
func WithAlias(alias string) TableOption {
	return func(t *Table) { t.alias = alias }
}

// WithSchemaName sets the database schema qualifier.
func WithSchemaName(name string) TableOption {
	return func(t *Table) { t.schemaName = name }
}

// Table is a symbolic proxy for a database table. Its Col method is how
// validated column expressions enter a query.
type Table struct {
	name       string
	alias      string
	schemaName string
	manifest   *schema.Table
}

// NewTable creates a table proxy.
func NewTable(name string, opts ...TableOption) *Table {
	t := &Table{name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ref builds the ir source node for the table.
func (t *Table) Ref() *ir.TableReference {
	return &ir.TableReference{
		Name:    t.name,
		Schema:  t.schemaName,
		Alias:   t.alias,
		Columns: t.manifest,
	}
}

// Query starts a query reading from this table.
func (t *Table) Query() *ir.Query {
	return ir.From(t.Ref())
}

// Col references a column of this table. With a manifest attached,
// unknown names fail with a ColumnResolutionError carried on the Expr.
// References are qualified by the table alias when one is set.
func (t *Table) Col(name string) *Expr {
	if t.manifest != nil && !t.manifest.Has(name) {
		return failed(&ir.ColumnResolutionError{Column: name, Table: t.name})
	}
	return &Expr{node: &ir.ColumnReference{Name: name, Table: t.alias}}
}

// QCol is like Col but always qualifies, by alias when set and table
// name otherwise. Use it when joining tables that share column names.
func (t *Table) QCol(name string) *Expr {
	if t.manifest != nil && !t.manifest.Has(name) {
		return failed(&ir.ColumnResolutionError{Column: name, Table: t.name})
	}
	qualifier := t.alias
	if qualifier == "" {
		qualifier = t.name
	}
	return &Expr{node: &ir.ColumnReference{Name: name, Table: qualifier}}
}

// defaultFuncs backs the package-level function constructors.
var defaultFuncs = funcs.DefaultRegistry()

// Call builds a function call through the default catalog. Unknown names
// become generic scalar calls; arity violations surface at Build.
func Call(name string, args ...*Expr) *Expr {
	return CallIn(defaultFuncs, name, args...)
}

// CallIn is Call against an explicit registry.
func CallIn(r *funcs.Registry, name string, args ...*Expr) *Expr {
	nodes := make([]ir.Expression, len(args))
	for i, a := range args {
		if a.err != nil {
			return a
		}
		nodes[i] = a.node
	}
	fn, err := r.Call(name, nodes...)
	if err != nil {
		return failed(err)
	}
	return &Expr{node: fn}
}
