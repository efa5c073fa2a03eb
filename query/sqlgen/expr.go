package sqlgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/sqlforge/sqlforge/query/ir"
)

// Operator precedence, loosest first. Unknown operators are treated as
// comparisons so they still pick up parentheses inside arithmetic.
const (
	precOr = iota + 1
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
)

func operatorPrecedence(op string) int {
	switch op {
	case "OR":
		return precOr
	case "AND":
		return precAnd
	case "=", "!=", "<>", "<", "<=", ">", ">=",
		"LIKE", "NOT LIKE", "IN", "NOT IN", "IS", "IS NOT":
		return precComparison
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	default:
		return precComparison
	}
}

func isLogical(op string) bool {
	return op == "AND" || op == "OR"
}

func (g *Generator) renderExpr(e ir.Expression) (string, error) {
	switch x := e.(type) {
	case *ir.Literal:
		return g.renderLiteral(x.Value)
	case *ir.ColumnReference:
		if x.Table != "" {
			return x.Table + "." + x.Name, nil
		}
		return x.Name, nil
	case *ir.BinaryOperation:
		return g.renderBinary(x)
	case *ir.UnaryOperation:
		return g.renderUnary(x)
	case *ir.FunctionExpression:
		return g.renderFunction(x)
	case *ir.CaseExpression:
		return g.renderCase(x)
	case nil:
		return "", fmt.Errorf("nil expression")
	default:
		return "", fmt.Errorf("unsupported expression %T", e)
	}
}

func (g *Generator) renderBinary(b *ir.BinaryOperation) (string, error) {
	op := strings.ToUpper(b.Operator)
	prec := operatorPrecedence(op)

	left, err := g.renderOperand(b.Left, op, prec, false)
	if err != nil {
		return "", err
	}
	right, err := g.renderOperand(b.Right, op, prec, true)
	if err != nil {
		return "", err
	}

	sql := fmt.Sprintf("%s %s %s", left, op, right)
	if b.NeedsParens {
		sql = "(" + sql + ")"
	}
	return sql, nil
}

// renderOperand renders a child of a binary operation, parenthesizing it
// when precedence demands, when AND and OR mix, or on the right side of a
// non-associative operator.
func (g *Generator) renderOperand(e ir.Expression, parentOp string, parentPrec int, isRight bool) (string, error) {
	sql, err := g.renderExpr(e)
	if err != nil {
		return "", err
	}
	switch child := e.(type) {
	case *ir.BinaryOperation:
		if child.NeedsParens {
			return sql, nil
		}
		childOp := strings.ToUpper(child.Operator)
		childPrec := operatorPrecedence(childOp)
		switch {
		case isLogical(parentOp) && isLogical(childOp) && parentOp != childOp:
			return "(" + sql + ")", nil
		case childPrec < parentPrec:
			return "(" + sql + ")", nil
		case childPrec == parentPrec && isRight && nonAssociative(parentOp):
			return "(" + sql + ")", nil
		}
	case *ir.UnaryOperation:
		if strings.EqualFold(child.Operator, "NOT") && parentPrec > precNot {
			return "(" + sql + ")", nil
		}
	case *ir.CaseExpression:
		// CASE ... END is self-delimiting.
	}
	return sql, nil
}

func nonAssociative(op string) bool {
	return op == "-" || op == "/" || op == "%"
}

func (g *Generator) renderUnary(u *ir.UnaryOperation) (string, error) {
	operand, err := g.renderExpr(u.Operand)
	if err != nil {
		return "", err
	}
	op := strings.ToUpper(u.Operator)
	if child, ok := u.Operand.(*ir.BinaryOperation); ok && !child.NeedsParens {
		if operatorPrecedence(strings.ToUpper(child.Operator)) < precNot || op == "-" {
			operand = "(" + operand + ")"
		}
	}
	if op == "-" {
		return "-" + operand, nil
	}
	return op + " " + operand, nil
}

func (g *Generator) renderFunction(fn *ir.FunctionExpression) (string, error) {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		var err error
		args[i], err = g.renderExpr(a)
		if err != nil {
			return "", err
		}
	}

	name := strings.ToUpper(fn.Name)
	var call string
	if g.Funcs != nil {
		if def, ok := g.Funcs.Lookup(name); ok && def.Render != nil {
			if rendered, handled := def.Render(g.Dialect.Name, args); handled {
				call = rendered
			}
		}
	}
	if call == "" {
		argList := strings.Join(args, ", ")
		if name == "COUNT" && len(args) == 0 {
			argList = "*"
		}
		if fn.Distinct {
			argList = "DISTINCT " + argList
		}
		call = fmt.Sprintf("%s(%s)", name, argList)
	}

	if fn.Over != nil {
		spec, err := g.renderWindowSpec(fn.Over)
		if err != nil {
			return "", err
		}
		call = fmt.Sprintf("%s OVER (%s)", call, spec)
	}
	return call, nil
}

func (g *Generator) renderCase(c *ir.CaseExpression) (string, error) {
	parts := []string{"CASE"}
	for _, w := range c.Whens {
		cond, err := g.renderExpr(w.Condition)
		if err != nil {
			return "", err
		}
		result, err := g.renderExpr(w.Result)
		if err != nil {
			return "", err
		}
		parts = append(parts, "WHEN "+cond+" THEN "+result)
	}
	if c.Else != nil {
		result, err := g.renderExpr(c.Else)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ELSE "+result)
	}
	parts = append(parts, "END")
	return strings.Join(parts, " "), nil
}

func (g *Generator) renderLiteral(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(val), nil
	case bool:
		return g.Dialect.BoolLiteral(val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return "'" + val.Format("2006-01-02") + "'", nil
		}
		return "'" + val.Format("2006-01-02 15:04:05") + "'", nil
	case []interface{}:
		items := make([]string, len(val))
		for i, item := range val {
			var err error
			items[i], err = g.renderLiteral(item)
			if err != nil {
				return "", err
			}
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	case []string:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = quoteString(item)
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	case []int:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = fmt.Sprintf("%d", item)
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", v)
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
