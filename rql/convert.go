package rql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlforge/sqlforge/query/funcs"
	"github.com/sqlforge/sqlforge/query/ir"
)

// defaultFuncs classifies function names during conversion so that
// aggregates and window functions carry the right kind.
var defaultFuncs = funcs.DefaultRegistry()

func convertQuery(raw *queryNode) (*ir.Query, error) {
	src, err := convertSource(raw.From)
	if err != nil {
		return nil, err
	}
	q := ir.From(src)

	for _, join := range raw.Joins {
		q, err = convertJoin(q, join)
		if err != nil {
			return nil, err
		}
	}

	if raw.Where != nil {
		cond, err := convertExpr(raw.Where)
		if err != nil {
			return nil, err
		}
		q, err = q.Where(cond)
		if err != nil {
			return nil, err
		}
	}

	if len(raw.GroupBy) > 0 {
		keys := make([]ir.Expression, len(raw.GroupBy))
		for i, e := range raw.GroupBy {
			keys[i], err = convertExpr(e)
			if err != nil {
				return nil, err
			}
		}
		q = q.GroupByExprs(keys...)
	}

	if raw.Having != nil {
		cond, err := convertExpr(raw.Having)
		if err != nil {
			return nil, err
		}
		q = q.HavingCond(cond)
	}

	if len(raw.OrderBy) > 0 {
		specs := make([]interface{}, len(raw.OrderBy))
		for i, o := range raw.OrderBy {
			clause, err := convertOrder(o)
			if err != nil {
				return nil, err
			}
			specs[i] = clause
		}
		q, err = q.OrderBySpecs(specs...)
		if err != nil {
			return nil, err
		}
	}

	if raw.Limit != nil {
		q = q.LimitRows(*raw.Limit)
	}
	if raw.Offset != nil {
		q = q.OffsetRows(*raw.Offset)
	}
	if raw.Distinct != "" {
		q = q.DistinctRows()
	}

	if len(raw.Select) > 0 {
		cols := make([]ir.Column, len(raw.Select))
		for i, s := range raw.Select {
			expr, err := convertExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			cols[i] = ir.Column{Expr: expr, Alias: s.Alias}
		}
		q = q.Select(cols...)
	}

	if raw.With != nil {
		recursive := raw.With.Recursive != ""
		for _, cte := range raw.With.CTEs {
			body, err := convertQuery(cte.Body)
			if err != nil {
				return nil, fmt.Errorf("cte %q: %w", cte.Name, err)
			}
			q = q.WithCTE(cte.Name, body, cte.Columns, recursive)
		}
	}

	return q, nil
}

func convertSource(src *sourceNode) (ir.DataSource, error) {
	if src.Sub != nil {
		if src.Alias == "" {
			return nil, fmt.Errorf("derived table requires an alias (use AS)")
		}
		inner, err := convertQuery(src.Sub)
		if err != nil {
			return nil, err
		}
		return &ir.SubquerySource{Query: inner, Alias: src.Alias}, nil
	}
	ref := &ir.TableReference{Name: src.Table.First, Alias: src.Alias}
	if src.Table.Second != "" {
		ref.Schema = src.Table.First
		ref.Name = src.Table.Second
	}
	return ref, nil
}

func convertJoin(q *ir.Query, join *joinNode) (*ir.Query, error) {
	jt := ir.InnerJoin
	switch strings.ToUpper(join.Type) {
	case "", "INNER":
	case "LEFT":
		jt = ir.LeftJoin
	case "RIGHT":
		jt = ir.RightJoin
	case "FULL":
		jt = ir.FullJoin
	case "CROSS":
		jt = ir.CrossJoin
	}

	right, err := convertSource(join.Source)
	if err != nil {
		return nil, err
	}

	if jt == ir.CrossJoin {
		if join.On != nil {
			return nil, fmt.Errorf("cross join takes no ON condition")
		}
		return q.JoinSource(right, ir.Lit(true), jt)
	}
	if join.On == nil {
		return nil, fmt.Errorf("%s join requires an ON condition", strings.ToLower(string(jt)))
	}
	cond, err := convertExpr(join.On)
	if err != nil {
		return nil, err
	}
	return q.JoinSource(right, cond, jt)
}

func convertOrder(o *orderNode) (ir.OrderByClause, error) {
	expr, err := convertExpr(o.Expr)
	if err != nil {
		return ir.OrderByClause{}, err
	}
	dir := ir.Asc
	if o.Dir != "" {
		parsed, ok := ir.ParseSortDirection(o.Dir)
		if !ok {
			return ir.OrderByClause{}, fmt.Errorf("bad sort direction %q", o.Dir)
		}
		dir = parsed
	}
	return ir.OrderByClause{Expr: expr, Direction: dir}, nil
}

func convertExpr(e *exprNode) (ir.Expression, error) {
	left, err := convertAnd(e.Left)
	if err != nil {
		return nil, err
	}
	for _, rest := range e.Rest {
		right, err := convertAnd(rest)
		if err != nil {
			return nil, err
		}
		left = &ir.BinaryOperation{Left: left, Operator: "OR", Right: right}
	}
	return left, nil
}

func convertAnd(a *andNode) (ir.Expression, error) {
	left, err := convertNot(a.Left)
	if err != nil {
		return nil, err
	}
	for _, rest := range a.Rest {
		right, err := convertNot(rest)
		if err != nil {
			return nil, err
		}
		left = &ir.BinaryOperation{Left: left, Operator: "AND", Right: right}
	}
	return left, nil
}

func convertNot(n *notNode) (ir.Expression, error) {
	if n.Not != nil {
		operand, err := convertNot(n.Not)
		if err != nil {
			return nil, err
		}
		return &ir.UnaryOperation{Operator: "NOT", Operand: operand}, nil
	}
	return convertCmp(n.Cmp)
}

func convertCmp(c *cmpNode) (ir.Expression, error) {
	left, err := convertAdd(c.Left)
	if err != nil {
		return nil, err
	}
	if c.Tail == nil {
		return left, nil
	}
	switch {
	case c.Tail.Binary != nil:
		right, err := convertAdd(c.Tail.Binary.Right)
		if err != nil {
			return nil, err
		}
		op := strings.ToUpper(c.Tail.Binary.Op)
		return &ir.BinaryOperation{Left: left, Operator: op, Right: right}, nil
	case c.Tail.In != nil:
		values, err := convertInList(c.Tail.In)
		if err != nil {
			return nil, err
		}
		return &ir.BinaryOperation{Left: left, Operator: "IN", Right: values}, nil
	case c.Tail.Null != nil:
		op := "IS"
		if c.Tail.Null.Not != "" {
			op = "IS NOT"
		}
		return &ir.BinaryOperation{Left: left, Operator: op, Right: ir.Lit(nil)}, nil
	}
	return left, nil
}

// convertInList folds the parsed expressions into one literal list; the
// generators only render literal IN lists.
func convertInList(in *inList) (ir.Expression, error) {
	values := make([]interface{}, len(in.Items))
	for i, item := range in.Items {
		expr, err := convertExpr(item)
		if err != nil {
			return nil, err
		}
		lit, ok := expr.(*ir.Literal)
		if !ok {
			return nil, fmt.Errorf("IN list values must be literals")
		}
		values[i] = lit.Value
	}
	return ir.Lit(values), nil
}

func convertAdd(a *addNode) (ir.Expression, error) {
	left, err := convertMul(a.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range a.Rest {
		right, err := convertMul(tail.Term)
		if err != nil {
			return nil, err
		}
		left = &ir.BinaryOperation{Left: left, Operator: tail.Op, Right: right}
	}
	return left, nil
}

func convertMul(m *mulNode) (ir.Expression, error) {
	left, err := convertUnary(m.Left)
	if err != nil {
		return nil, err
	}
	for _, tail := range m.Rest {
		right, err := convertUnary(tail.Term)
		if err != nil {
			return nil, err
		}
		left = &ir.BinaryOperation{Left: left, Operator: tail.Op, Right: right}
	}
	return left, nil
}

func convertUnary(u *unaryNode) (ir.Expression, error) {
	if u.Neg != nil {
		operand, err := convertUnary(u.Neg)
		if err != nil {
			return nil, err
		}
		return &ir.UnaryOperation{Operator: "-", Operand: operand}, nil
	}
	return convertPrimary(u.Primary)
}

func convertPrimary(p *primaryNode) (ir.Expression, error) {
	switch {
	case p.Case != nil:
		return convertCase(p.Case)
	case p.Func != nil:
		return convertFunc(p.Func)
	case p.Lit != nil:
		return convertLit(p.Lit)
	case p.Col != nil:
		if p.Col.Second != "" {
			return ir.QualifiedCol(p.Col.First, p.Col.Second), nil
		}
		return ir.Col(p.Col.First), nil
	case p.Paren != nil:
		return convertExpr(p.Paren)
	}
	return nil, fmt.Errorf("empty expression")
}

func convertCase(c *caseNode) (ir.Expression, error) {
	out := &ir.CaseExpression{}
	for _, w := range c.Whens {
		cond, err := convertExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		result, err := convertExpr(w.Result)
		if err != nil {
			return nil, err
		}
		out.Whens = append(out.Whens, ir.WhenClause{Condition: cond, Result: result})
	}
	if c.Else != nil {
		elseExpr, err := convertExpr(c.Else)
		if err != nil {
			return nil, err
		}
		out.Else = elseExpr
	}
	return out, nil
}

func convertFunc(f *funcNode) (ir.Expression, error) {
	var fn *ir.FunctionExpression
	if f.Star != "" {
		fn = &ir.FunctionExpression{Name: strings.ToUpper(f.Name), Kind: ir.Aggregate}
	} else {
		args := make([]ir.Expression, len(f.Args))
		for i, a := range f.Args {
			expr, err := convertExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = expr
		}
		var err error
		fn, err = defaultFuncs.Call(f.Name, args...)
		if err != nil {
			return nil, err
		}
	}
	if f.Distinct != "" {
		fn.Distinct = true
	}
	if f.Over != nil {
		spec, err := convertOver(f.Over)
		if err != nil {
			return nil, err
		}
		fn.Kind = ir.Window
		fn.Over = spec
	}
	return fn, nil
}

func convertOver(o *overNode) (*ir.WindowSpec, error) {
	spec := &ir.WindowSpec{}
	for _, p := range o.Partition {
		expr, err := convertExpr(p)
		if err != nil {
			return nil, err
		}
		spec.PartitionBy = append(spec.PartitionBy, expr)
	}
	for _, ord := range o.OrderBy {
		clause, err := convertOrder(ord)
		if err != nil {
			return nil, err
		}
		spec.OrderBy = append(spec.OrderBy, clause)
	}
	if o.Frame != nil {
		frameType := ir.RowsFrame
		if strings.EqualFold(o.Frame.Type, "RANGE") {
			frameType = ir.RangeFrame
		}
		spec.Frame = &ir.Frame{
			Type:  frameType,
			Start: convertBound(o.Frame.Start),
			End:   convertBound(o.Frame.End),
		}
	}
	return spec, nil
}

func convertBound(b *boundNode) ir.FrameBound {
	switch {
	case b.Unbounded != "":
		return ir.UnboundedBound()
	case b.Current != "":
		return ir.CurrentRowBound()
	case b.Offset != nil:
		return ir.Bound(*b.Offset)
	}
	return ir.CurrentRowBound()
}

func convertLit(l *litNode) (ir.Expression, error) {
	switch {
	case l.Str != nil:
		return ir.Lit(unquoteString(*l.Str)), nil
	case l.Num != nil:
		if strings.Contains(*l.Num, ".") {
			f, err := strconv.ParseFloat(*l.Num, 64)
			if err != nil {
				return nil, err
			}
			return ir.Lit(f), nil
		}
		n, err := strconv.Atoi(*l.Num)
		if err != nil {
			return nil, err
		}
		return ir.Lit(n), nil
	case l.True != "":
		return ir.Lit(true), nil
	case l.False != "":
		return ir.Lit(false), nil
	case l.Null != "":
		return ir.Lit(nil), nil
	}
	return nil, fmt.Errorf("empty literal")
}

func unquoteString(s string) string {
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(s, "''", "'")
}
