package builder

import "github.com/sqlforge/sqlforge/query/ir"

// CaseBuilder accumulates WHEN/THEN branches for a searched CASE
// expression. Branches render in the order they were added.
type CaseBuilder struct {
	whens []ir.WhenClause
	err   error
}

// When starts a CASE expression with its first branch.
func When(cond, result *Expr) *CaseBuilder {
	c := &CaseBuilder{}
	return c.When(cond, result)
}

// When appends a branch.
func (c *CaseBuilder) When(cond, result *Expr) *CaseBuilder {
	if c.err != nil {
		return c
	}
	if cond.err != nil {
		c.err = cond.err
		return c
	}
	if result.err != nil {
		c.err = result.err
		return c
	}
	c.whens = append(c.whens, ir.WhenClause{Condition: cond.node, Result: result.node})
	return c
}

// Else closes the CASE with a default branch.
func (c *CaseBuilder) Else(result *Expr) *Expr {
	if c.err != nil {
		return failed(c.err)
	}
	if result.err != nil {
		return result
	}
	return &Expr{node: &ir.CaseExpression{Whens: c.whens, Else: result.node}}
}

// End closes the CASE without a default branch.
func (c *CaseBuilder) End() *Expr {
	if c.err != nil {
		return failed(c.err)
	}
	return &Expr{node: &ir.CaseExpression{Whens: c.whens}}
}
