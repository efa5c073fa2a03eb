package ir

import (
	"fmt"
	"reflect"
	"strings"
)

// SortDirection is the direction of an ORDER BY entry.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// ParseSortDirection maps a direction token to its enum value,
// case-insensitively.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "ASCENDING":
		return Asc, true
	case "DESC", "DESCENDING":
		return Desc, true
	default:
		return "", false
	}
}

// OrderByClause pairs an expression with a sort direction.
type OrderByClause struct {
	Expr      Expression
	Direction SortDirection
}

// OrderSpec is a normalized ORDER BY request: an expression plus an
// explicit direction. Bare expressions passed to OrderBy default to
// ascending.
type OrderSpec struct {
	Expr      Expression
	Direction SortDirection
}

// OrderAsc builds an ascending order spec.
func OrderAsc(expr Expression) OrderSpec {
	return OrderSpec{Expr: expr, Direction: Asc}
}

// OrderDesc builds a descending order spec.
func OrderDesc(expr Expression) OrderSpec {
	return OrderSpec{Expr: expr, Direction: Desc}
}

// CommonTableExpression is one WITH-clause entry. The body is either a
// query or raw SQL text, never both.
type CommonTableExpression struct {
	Name      string
	Query     *Query
	RawSQL    string
	Columns   []string
	Recursive bool
}

// Query aggregates a data source, an ordered select list and the familiar
// SQL clause slots. Transition methods never mutate the receiver; each
// returns a new value sharing the untouched structure, so a derived query
// can be branched freely and compiled concurrently.
type Query struct {
	Columns  []Column
	Source   DataSource
	Filter   Expression
	GroupBy  []Expression
	Having   Expression
	OrderBy  []OrderByClause
	Limit    *int
	Offset   *int
	Distinct bool
	CTEs     []CommonTableExpression
}

// From creates a query reading from the given source.
func From(src DataSource) *Query {
	return &Query{Source: src}
}

// FromTable creates a query reading from a plain table.
func FromTable(name string) *Query {
	return From(Table(name))
}

// FromQuery creates a query reading from another query as a derived
// table under the given alias.
func FromQuery(inner *Query, alias string) *Query {
	return From(&SubquerySource{Query: inner, Alias: alias})
}

// clone returns a shallow copy. Slice fields are copied lazily by the
// transitions that extend them, so unmodified clauses stay shared.
func (q *Query) clone() *Query {
	out := *q
	return &out
}

// Select replaces the select list. Order is preserved and duplicates are
// permitted.
func (q *Query) Select(cols ...Column) *Query {
	out := q.clone()
	out.Columns = append([]Column(nil), cols...)
	return out
}

// SelectExprs replaces the select list with unaliased expressions.
func (q *Query) SelectExprs(exprs ...Expression) *Query {
	cols := make([]Column, len(exprs))
	for i, e := range exprs {
		cols[i] = Column{Expr: e}
	}
	return q.Select(cols...)
}

// Where adds a filter condition. A second call combines with the existing
// filter using logical AND, keeping the earlier condition on the left.
func (q *Query) Where(cond Expression) (*Query, error) {
	if cond == nil {
		return nil, &InvalidFilterConditionError{}
	}
	out := q.clone()
	if out.Filter != nil {
		out.Filter = &BinaryOperation{Left: out.Filter, Operator: "AND", Right: cond}
	} else {
		out.Filter = cond
	}
	return out, nil
}

// GroupByExprs replaces the GROUP BY clause wholesale.
func (q *Query) GroupByExprs(exprs ...Expression) *Query {
	out := q.clone()
	out.GroupBy = append([]Expression(nil), exprs...)
	return out
}

// HavingCond replaces the HAVING condition.
func (q *Query) HavingCond(cond Expression) *Query {
	out := q.clone()
	out.Having = cond
	return out
}

// OrderBySpecs appends order-by entries. Each spec is normalized (bare
// Expression means ascending), then deduplicated by expression equality:
// a later entry naming an expression already ordered is dropped, so the
// earlier entry's direction wins.
//
// Accepted spec kinds: Expression, OrderSpec, OrderByClause.
func (q *Query) OrderBySpecs(specs ...interface{}) (*Query, error) {
	out := q.clone()
	out.OrderBy = append([]OrderByClause(nil), q.OrderBy...)
	for _, spec := range specs {
		var clause OrderByClause
		switch s := spec.(type) {
		case OrderSpec:
			clause = OrderByClause{Expr: s.Expr, Direction: s.Direction}
		case OrderByClause:
			clause = s
		case Expression:
			clause = OrderByClause{Expr: s, Direction: Asc}
		default:
			return nil, fmt.Errorf("order by: unsupported spec type %T", spec)
		}
		if clause.Direction == "" {
			clause.Direction = Asc
		}
		if containsOrderExpr(out.OrderBy, clause.Expr) {
			continue
		}
		out.OrderBy = append(out.OrderBy, clause)
	}
	return out, nil
}

func containsOrderExpr(clauses []OrderByClause, expr Expression) bool {
	for _, c := range clauses {
		if sameExpression(c.Expr, expr) {
			return true
		}
	}
	return false
}

// sameExpression reports whether two expressions describe the same order
// key. Column references compare by qualifier and name; everything else
// compares structurally.
func sameExpression(a, b Expression) bool {
	if ca, ok := a.(*ColumnReference); ok {
		if cb, ok := b.(*ColumnReference); ok {
			return ca.Name == cb.Name && ca.Table == cb.Table
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Join combines this query's source with another table or query. The
// result's source is a JoinOperation wrapping the prior source as its
// left child; the select list is carried over from the left side
// unchanged, joining never projects.
func (q *Query) Join(right interface{}, cond Expression, jt JoinType) (*Query, error) {
	if q.Source == nil {
		return nil, &MissingSourceError{Op: "join"}
	}
	rightSource, err := q.joinSource(right)
	if err != nil {
		return nil, err
	}
	out := q.clone()
	out.Source = &JoinOperation{
		Left:      q.Source,
		Right:     rightSource,
		Type:      jt,
		Condition: cond,
	}
	return out, nil
}

// JoinSource is Join for callers that already hold a DataSource, such as
// a derived table with an explicit alias.
func (q *Query) JoinSource(right DataSource, cond Expression, jt JoinType) (*Query, error) {
	if q.Source == nil {
		return nil, &MissingSourceError{Op: "join"}
	}
	out := q.clone()
	out.Source = &JoinOperation{
		Left:      q.Source,
		Right:     right,
		Type:      jt,
		Condition: cond,
	}
	return out, nil
}

func (q *Query) joinSource(right interface{}) (DataSource, error) {
	switch r := right.(type) {
	case *TableReference:
		return r, nil
	case *Query:
		if tr, ok := r.Source.(*TableReference); ok && r.isBareTable() {
			return tr, nil
		}
		alias := fmt.Sprintf("subquery_%d", countSubqueries(q.Source))
		return &SubquerySource{Query: r, Alias: alias}, nil
	default:
		return nil, &InvalidJoinTargetError{Got: right}
	}
}

// isBareTable reports whether the query is nothing more than a table
// scan, in which case a join can reference the table directly instead of
// wrapping the query as a derived table.
func (q *Query) isBareTable() bool {
	return len(q.Columns) == 0 && q.Filter == nil && len(q.GroupBy) == 0 &&
		q.Having == nil && len(q.OrderBy) == 0 && q.Limit == nil &&
		q.Offset == nil && !q.Distinct && len(q.CTEs) == 0
}

func countSubqueries(src DataSource) int {
	switch s := src.(type) {
	case *SubquerySource:
		return 1
	case *JoinOperation:
		return countSubqueries(s.Left) + countSubqueries(s.Right)
	default:
		return 0
	}
}

// InnerJoinWith is the INNER JOIN convenience wrapper.
func (q *Query) InnerJoinWith(right interface{}, cond Expression) (*Query, error) {
	return q.Join(right, cond, InnerJoin)
}

// LeftJoinWith is the LEFT JOIN convenience wrapper.
func (q *Query) LeftJoinWith(right interface{}, cond Expression) (*Query, error) {
	return q.Join(right, cond, LeftJoin)
}

// RightJoinWith is the RIGHT JOIN convenience wrapper.
func (q *Query) RightJoinWith(right interface{}, cond Expression) (*Query, error) {
	return q.Join(right, cond, RightJoin)
}

// FullJoinWith is the FULL JOIN convenience wrapper.
func (q *Query) FullJoinWith(right interface{}, cond Expression) (*Query, error) {
	return q.Join(right, cond, FullJoin)
}

// CrossJoinWith joins without a condition. The stored condition is an
// always-true literal; the generators omit the ON clause for cross joins.
func (q *Query) CrossJoinWith(right interface{}) (*Query, error) {
	return q.Join(right, Lit(true), CrossJoin)
}

// WithCTE appends a common table expression whose body is a query.
// Names are not deduplicated: callers may shadow an earlier definition,
// and the generators emit entries in append order.
func (q *Query) WithCTE(name string, body *Query, columns []string, recursive bool) *Query {
	return q.appendCTE(CommonTableExpression{
		Name:      name,
		Query:     body,
		Columns:   columns,
		Recursive: recursive,
	})
}

// WithRawCTE appends a common table expression whose body is raw SQL.
func (q *Query) WithRawCTE(name, body string, columns []string, recursive bool) *Query {
	return q.appendCTE(CommonTableExpression{
		Name:      name,
		RawSQL:    body,
		Columns:   columns,
		Recursive: recursive,
	})
}

func (q *Query) appendCTE(cte CommonTableExpression) *Query {
	out := q.clone()
	out.CTEs = append(append([]CommonTableExpression(nil), q.CTEs...), cte)
	return out
}

// DistinctRows makes the query return distinct rows.
func (q *Query) DistinctRows() *Query {
	out := q.clone()
	out.Distinct = true
	return out
}

// LimitRows sets the LIMIT value. The value is not range-checked; a
// negative limit surfaces as a SQL error at execution time, not here.
func (q *Query) LimitRows(n int) *Query {
	out := q.clone()
	out.Limit = &n
	return out
}

// OffsetRows sets the OFFSET value. Like LimitRows, no range validation.
func (q *Query) OffsetRows(n int) *Query {
	out := q.clone()
	out.Offset = &n
	return out
}
