package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sqlforge/sqlforge/query/funcs"
	"github.com/sqlforge/sqlforge/query/ir"
)

// Generator renders queries for one dialect. Generators hold no mutable
// state, so one value can serve any number of concurrent compiles.
type Generator struct {
	Dialect Dialect
	Funcs   funcs.Resolver
}

// Generate renders the full query in canonical clause order.
func (g *Generator) Generate(q *ir.Query) (string, error) {
	if q == nil || q.Source == nil {
		return "", &ir.MissingSourceError{Op: "compile"}
	}

	var parts []string

	if len(q.CTEs) > 0 {
		with, err := g.renderCTEs(q.CTEs)
		if err != nil {
			return "", err
		}
		parts = append(parts, with)
	}

	sel, err := g.renderSelectList(q)
	if err != nil {
		return "", err
	}
	parts = append(parts, sel)

	from, err := g.renderSource(q.Source)
	if err != nil {
		return "", err
	}
	parts = append(parts, "FROM "+from)

	if q.Filter != nil {
		cond, err := g.renderExpr(q.Filter)
		if err != nil {
			return "", err
		}
		parts = append(parts, "WHERE "+cond)
	}

	if len(q.GroupBy) > 0 {
		keys := make([]string, len(q.GroupBy))
		for i, e := range q.GroupBy {
			keys[i], err = g.renderExpr(e)
			if err != nil {
				return "", err
			}
		}
		parts = append(parts, "GROUP BY "+strings.Join(keys, ", "))
	}

	if q.Having != nil {
		cond, err := g.renderExpr(q.Having)
		if err != nil {
			return "", err
		}
		parts = append(parts, "HAVING "+cond)
	}

	if len(q.OrderBy) > 0 {
		order, err := g.renderOrderBy(q.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+order)
	}

	if q.Limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *q.Limit))
	}
	if q.Offset != nil {
		parts = append(parts, fmt.Sprintf("OFFSET %d", *q.Offset))
	}

	return strings.Join(parts, " "), nil
}

func (g *Generator) renderCTEs(ctes []ir.CommonTableExpression) (string, error) {
	recursive := false
	entries := make([]string, len(ctes))
	for i, cte := range ctes {
		if cte.Recursive {
			recursive = true
		}
		body := cte.RawSQL
		if cte.Query != nil {
			var err error
			body, err = g.Generate(cte.Query)
			if err != nil {
				return "", fmt.Errorf("cte %q: %w", cte.Name, err)
			}
		}
		name := cte.Name
		if len(cte.Columns) > 0 {
			name = fmt.Sprintf("%s (%s)", name, strings.Join(cte.Columns, ", "))
		}
		entries[i] = fmt.Sprintf("%s AS (%s)", name, body)
	}
	keyword := "WITH"
	if recursive {
		keyword = "WITH RECURSIVE"
	}
	return keyword + " " + strings.Join(entries, ", "), nil
}

func (g *Generator) renderSelectList(q *ir.Query) (string, error) {
	keyword := "SELECT"
	if q.Distinct {
		keyword = "SELECT DISTINCT"
	}
	if len(q.Columns) == 0 {
		return keyword + " *", nil
	}
	items := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		expr, err := g.renderExpr(col.Expr)
		if err != nil {
			return "", err
		}
		if col.Alias != "" {
			expr = fmt.Sprintf("%s AS %s", expr, g.aliasSQL(col.Alias))
		}
		items[i] = expr
	}
	return keyword + " " + strings.Join(items, ", "), nil
}

// aliasSQL quotes an alias only when it is not a plain identifier.
func (g *Generator) aliasSQL(alias string) string {
	if isPlainIdentifier(alias) {
		return alias
	}
	return g.Dialect.QuoteIdent(alias)
}

func (g *Generator) renderSource(src ir.DataSource) (string, error) {
	switch s := src.(type) {
	case *ir.TableReference:
		name := s.Name
		if s.Schema != "" {
			name = s.Schema + "." + name
		}
		if s.Alias != "" {
			name = fmt.Sprintf("%s AS %s", name, g.aliasSQL(s.Alias))
		}
		return name, nil
	case *ir.SubquerySource:
		inner, err := g.Generate(s.Query)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) AS %s", inner, g.aliasSQL(s.Alias)), nil
	case *ir.JoinOperation:
		return g.renderJoin(s)
	default:
		return "", fmt.Errorf("unsupported data source %T", src)
	}
}

func (g *Generator) renderJoin(j *ir.JoinOperation) (string, error) {
	left, err := g.renderSource(j.Left)
	if err != nil {
		return "", err
	}
	right, err := g.renderSource(j.Right)
	if err != nil {
		return "", err
	}
	if j.Type == ir.CrossJoin {
		return fmt.Sprintf("%s CROSS JOIN %s", left, right), nil
	}
	cond, err := g.renderExpr(j.Condition)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s JOIN %s ON %s", left, j.Type, right, cond), nil
}

func (g *Generator) renderOrderBy(clauses []ir.OrderByClause) (string, error) {
	items := make([]string, len(clauses))
	for i, c := range clauses {
		expr, err := g.renderExpr(c.Expr)
		if err != nil {
			return "", err
		}
		items[i] = fmt.Sprintf("%s %s", expr, c.Direction)
	}
	return strings.Join(items, ", "), nil
}

func (g *Generator) renderWindowSpec(spec *ir.WindowSpec) (string, error) {
	var parts []string
	if len(spec.PartitionBy) > 0 {
		keys := make([]string, len(spec.PartitionBy))
		for i, e := range spec.PartitionBy {
			var err error
			keys[i], err = g.renderExpr(e)
			if err != nil {
				return "", err
			}
		}
		parts = append(parts, "PARTITION BY "+strings.Join(keys, ", "))
	}
	if len(spec.OrderBy) > 0 {
		order, err := g.renderOrderBy(spec.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+order)
	}
	if spec.Frame != nil {
		parts = append(parts, g.renderFrame(spec.Frame))
	}
	return strings.Join(parts, " "), nil
}

func (g *Generator) renderFrame(f *ir.Frame) string {
	return fmt.Sprintf("%s BETWEEN %s AND %s",
		f.Type,
		frameBoundSQL(f.Start, "PRECEDING"),
		frameBoundSQL(f.End, "FOLLOWING"))
}

// frameBoundSQL renders one frame edge. The side keyword applies to both
// the unbounded form and the offset form; offset zero is the current row.
func frameBoundSQL(b ir.FrameBound, side string) string {
	if b.Unbounded {
		return "UNBOUNDED " + side
	}
	if b.Offset == 0 {
		return "CURRENT ROW"
	}
	return fmt.Sprintf("%d %s", b.Offset, side)
}
