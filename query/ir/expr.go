// Package ir defines the query intermediate representation: expression
// nodes, data sources and the Query value that the SQL generators consume.
// Nodes are immutable once constructed and may be shared freely between
// clauses and between queries.
package ir

// Expression is the closed set of value nodes a query clause can hold.
type Expression interface {
	isExpression()
}

// Literal is a constant value (string, number, bool, nil or a slice of
// those for IN-style lists).
type Literal struct {
	Value interface{}
}

func (Literal) isExpression() {}

// Lit is a convenience constructor for a Literal.
func Lit(value interface{}) *Literal {
	return &Literal{Value: value}
}

// ColumnReference names a column, optionally qualified by the source
// table's name or alias.
type ColumnReference struct {
	Name  string
	Table string
}

func (ColumnReference) isExpression() {}

// Col is a convenience constructor for an unqualified column reference.
func Col(name string) *ColumnReference {
	return &ColumnReference{Name: name}
}

// QualifiedCol is a convenience constructor for a qualified column reference.
func QualifiedCol(table, name string) *ColumnReference {
	return &ColumnReference{Name: name, Table: table}
}

// BinaryOperation is an infix operation over two expressions.
//
// NeedsParens is an explicit override: when set, the generators wrap the
// node in parentheses no matter what precedence says. When unset, standard
// precedence rules still apply.
type BinaryOperation struct {
	Left        Expression
	Operator    string
	Right       Expression
	NeedsParens bool
}

func (BinaryOperation) isExpression() {}

// UnaryOperation is a prefix operation, e.g. logical NOT.
type UnaryOperation struct {
	Operator string
	Operand  Expression
}

func (UnaryOperation) isExpression() {}

// FunctionKind classifies a function expression.
type FunctionKind int

const (
	Scalar FunctionKind = iota
	Aggregate
	Window
)

// FunctionExpression is a function call. Over is only meaningful when
// Kind is Window; Distinct is only meaningful for aggregates (COUNT).
type FunctionExpression struct {
	Name     string
	Args     []Expression
	Kind     FunctionKind
	Distinct bool
	Over     *WindowSpec
}

func (FunctionExpression) isExpression() {}

// WindowSpec is the OVER(...) metadata attached to a window function.
type WindowSpec struct {
	PartitionBy []Expression
	OrderBy     []OrderByClause
	Frame       *Frame
}

// FrameType selects between ROWS and RANGE window frames.
type FrameType string

const (
	RowsFrame  FrameType = "ROWS"
	RangeFrame FrameType = "RANGE"
)

// FrameBound is one edge of a window frame, expressed as an abstract
// offset: Unbounded maps to UNBOUNDED, offset 0 maps to CURRENT ROW and a
// positive offset maps to N PRECEDING or N FOLLOWING depending on which
// side of the frame the bound sits on.
type FrameBound struct {
	Unbounded bool
	Offset    int
}

// UnboundedBound returns the UNBOUNDED frame edge.
func UnboundedBound() FrameBound {
	return FrameBound{Unbounded: true}
}

// CurrentRowBound returns the CURRENT ROW frame edge.
func CurrentRowBound() FrameBound {
	return FrameBound{}
}

// Bound returns a frame edge n rows (or range units) away from the
// current row.
func Bound(n int) FrameBound {
	return FrameBound{Offset: n}
}

// Frame is a window frame specification.
type Frame struct {
	Type  FrameType
	Start FrameBound
	End   FrameBound
}

// WhenClause is one WHEN/THEN branch of a CASE expression.
type WhenClause struct {
	Condition Expression
	Result    Expression
}

// CaseExpression is a searched CASE expression. Branches render in the
// supplied order; Else may be nil.
type CaseExpression struct {
	Whens []WhenClause
	Else  Expression
}

func (CaseExpression) isExpression() {}

// Column pairs an expression with an optional display alias. It is the
// only node that carries a display name; it appears in select lists only.
type Column struct {
	Expr  Expression
	Alias string
}

// NewColumn creates an aliased select-list column.
func NewColumn(expr Expression, alias string) Column {
	return Column{Expr: expr, Alias: alias}
}
