package builder

import (
	"fmt"

	"github.com/sqlforge/sqlforge/query/ir"
)

// Aggregate constructors.

// Count builds COUNT(*).
func Count() *Expr {
	return &Expr{node: &ir.FunctionExpression{Name: "COUNT", Kind: ir.Aggregate}}
}

// CountOf builds COUNT(expr).
func CountOf(e *Expr) *Expr {
	return aggregate("COUNT", e)
}

// CountDistinct builds COUNT(DISTINCT expr).
func CountDistinct(e *Expr) *Expr {
	if e.err != nil {
		return e
	}
	return &Expr{node: &ir.FunctionExpression{
		Name:     "COUNT",
		Args:     []ir.Expression{e.node},
		Kind:     ir.Aggregate,
		Distinct: true,
	}}
}

func Sum(e *Expr) *Expr { return aggregate("SUM", e) }
func Avg(e *Expr) *Expr { return aggregate("AVG", e) }
func Min(e *Expr) *Expr { return aggregate("MIN", e) }
func Max(e *Expr) *Expr { return aggregate("MAX", e) }

func aggregate(name string, e *Expr) *Expr {
	if e.err != nil {
		return e
	}
	return &Expr{node: &ir.FunctionExpression{
		Name: name,
		Args: []ir.Expression{e.node},
		Kind: ir.Aggregate,
	}}
}

// Window function constructors. Attach the OVER clause with Over.

func RowNumber() *Expr { return windowFn("ROW_NUMBER") }
func Rank() *Expr      { return windowFn("RANK") }
func DenseRank() *Expr { return windowFn("DENSE_RANK") }

// Lag reads a column from an earlier row; offset defaults to 1.
func Lag(e *Expr, offset ...int) *Expr {
	return offsetFn("LAG", e, offset)
}

// Lead reads a column from a later row; offset defaults to 1.
func Lead(e *Expr, offset ...int) *Expr {
	return offsetFn("LEAD", e, offset)
}

func windowFn(name string, args ...ir.Expression) *Expr {
	return &Expr{node: &ir.FunctionExpression{Name: name, Args: args, Kind: ir.Window}}
}

func offsetFn(name string, e *Expr, offset []int) *Expr {
	if e.err != nil {
		return e
	}
	args := []ir.Expression{e.node}
	if len(offset) > 0 {
		args = append(args, ir.Lit(offset[0]))
	}
	return windowFn(name, args...)
}

// WindowOption configures the OVER clause built by Over.
type WindowOption func(*ir.WindowSpec) error

// PartitionBy adds partition keys.
func PartitionBy(keys ...*Expr) WindowOption {
	return func(spec *ir.WindowSpec) error {
		for _, k := range keys {
			if k.err != nil {
				return k.err
			}
			spec.PartitionBy = append(spec.PartitionBy, k.node)
		}
		return nil
	}
}

// OrderAsc adds an ascending ordering key.
func OrderAsc(e *Expr) WindowOption {
	return orderKey(e, ir.Asc)
}

// OrderDesc adds a descending ordering key.
func OrderDesc(e *Expr) WindowOption {
	return orderKey(e, ir.Desc)
}

func orderKey(e *Expr, dir ir.SortDirection) WindowOption {
	return func(spec *ir.WindowSpec) error {
		if e.err != nil {
			return e.err
		}
		spec.OrderBy = append(spec.OrderBy, ir.OrderByClause{Expr: e.node, Direction: dir})
		return nil
	}
}

// Rows sets a ROWS BETWEEN frame.
func Rows(start, end ir.FrameBound) WindowOption {
	return frame(ir.RowsFrame, start, end)
}

// Range sets a RANGE BETWEEN frame.
func Range(start, end ir.FrameBound) WindowOption {
	return frame(ir.RangeFrame, start, end)
}

func frame(t ir.FrameType, start, end ir.FrameBound) WindowOption {
	return func(spec *ir.WindowSpec) error {
		spec.Frame = &ir.Frame{Type: t, Start: start, End: end}
		return nil
	}
}

// Unbounded is the UNBOUNDED frame edge.
func Unbounded() ir.FrameBound { return ir.UnboundedBound() }

// CurrentRow is the CURRENT ROW frame edge.
func CurrentRow() ir.FrameBound { return ir.CurrentRowBound() }

// Preceding is a frame edge n rows before the current row. Which side it
// renders on is decided by its position in the frame, so Preceding and
// Following are interchangeable aliases kept for readability.
func Preceding(n int) ir.FrameBound { return ir.Bound(n) }

// Following is a frame edge n rows after the current row.
func Following(n int) ir.FrameBound { return ir.Bound(n) }

// Over attaches window metadata to a window or aggregate function call.
func (e *Expr) Over(opts ...WindowOption) *Expr {
	if e.err != nil {
		return e
	}
	fn, ok := e.node.(*ir.FunctionExpression)
	if !ok {
		return failed(fmt.Errorf("OVER requires a function call, got %T", e.node))
	}
	spec := &ir.WindowSpec{}
	for _, opt := range opts {
		if err := opt(spec); err != nil {
			return failed(err)
		}
	}
	windowed := *fn
	windowed.Kind = ir.Window
	windowed.Over = spec
	return &Expr{node: &windowed}
}
