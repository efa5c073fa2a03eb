// Package rql parses a compact textual query language into query values.
// A query names its source first and its projection last:
//
//	from employees
//	where salary > 50000 and dept = 'eng'
//	order by salary desc
//	limit 10
//	select name, salary * 0.1 as bonus
//
// Joins, CTEs, grouping, window functions and CASE expressions follow
// the same shape as their SQL counterparts.
package rql

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sqlforge/sqlforge/query/ir"
)

// queryNode is the raw parse tree; convert.go turns it into an ir.Query.
type queryNode struct {
	Pos lexer.Position

	With     *withNode     `@@?`
	From     *sourceNode   `"FROM" @@`
	Joins    []*joinNode   `@@*`
	Where    *exprNode     `("WHERE" @@)?`
	GroupBy  []*exprNode   `("GROUP" "BY" @@ ("," @@)*)?`
	Having   *exprNode     `("HAVING" @@)?`
	OrderBy  []*orderNode  `("ORDER" "BY" @@ ("," @@)*)?`
	Limit    *int          `("LIMIT" @Number)?`
	Offset   *int          `("OFFSET" @Number)?`
	Distinct string        `@"DISTINCT"?`
	Select   []*selectNode `("SELECT" @@ ("," @@)*)?`
}

type withNode struct {
	Recursive string     `"WITH" @"RECURSIVE"?`
	CTEs      []*cteNode `@@ ("," @@)*`
}

type cteNode struct {
	Name    string     `@Ident`
	Columns []string   `("(" @Ident ("," @Ident)* ")")?`
	Body    *queryNode `"AS" "(" @@ ")"`
}

type sourceNode struct {
	Sub   *queryNode `( "(" @@ ")"`
	Table *tableNode `| @@ )`
	Alias string     `("AS" @Ident)?`
}

type tableNode struct {
	First  string `@Ident`
	Second string `("." @Ident)?`
}

type joinNode struct {
	Type   string      `@("INNER" | "LEFT" | "RIGHT" | "FULL" | "CROSS")? "JOIN"`
	Source *sourceNode `@@`
	On     *exprNode   `("ON" @@)?`
}

type orderNode struct {
	Expr *exprNode `@@`
	Dir  string    `@("ASC" | "DESC")?`
}

type selectNode struct {
	Expr  *exprNode `@@`
	Alias string    `("AS" @Ident)?`
}

// Expression grammar, loosest binding first.

type exprNode struct {
	Left *andNode   `@@`
	Rest []*andNode `("OR" @@)*`
}

type andNode struct {
	Left *notNode   `@@`
	Rest []*notNode `("AND" @@)*`
}

type notNode struct {
	Not *notNode `( "NOT" @@`
	Cmp *cmpNode `| @@ )`
}

type cmpNode struct {
	Left *addNode `@@`
	Tail *cmpTail `@@?`
}

type cmpTail struct {
	Binary *binaryTail `( @@`
	In     *inList     `| "IN" @@`
	Null   *nullTail   `| @@ )`
}

type binaryTail struct {
	Op    string   `@("<=" | ">=" | "<>" | "!=" | "=" | "<" | ">" | "LIKE")`
	Right *addNode `@@`
}

type inList struct {
	Items []*exprNode `"(" @@ ("," @@)* ")"`
}

type nullTail struct {
	Not string `"IS" @"NOT"? "NULL"`
}

type addNode struct {
	Left *mulNode   `@@`
	Rest []*addTail `@@*`
}

type addTail struct {
	Op   string   `@("+" | "-")`
	Term *mulNode `@@`
}

type mulNode struct {
	Left *unaryNode `@@`
	Rest []*mulTail `@@*`
}

type mulTail struct {
	Op   string     `@("*" | "/" | "%")`
	Term *unaryNode `@@`
}

type unaryNode struct {
	Neg     *unaryNode   `( "-" @@`
	Primary *primaryNode `| @@ )`
}

type primaryNode struct {
	Case  *caseNode `( @@`
	Func  *funcNode `| @@`
	Lit   *litNode  `| @@`
	Col   *colNode  `| @@`
	Paren *exprNode `| "(" @@ ")" )`
}

type caseNode struct {
	Whens []*whenNode `"CASE" @@+`
	Else  *exprNode   `("ELSE" @@)? "END"`
}

type whenNode struct {
	Cond   *exprNode `"WHEN" @@`
	Result *exprNode `"THEN" @@`
}

type funcNode struct {
	Name     string      `@Ident`
	Distinct string      `"(" @"DISTINCT"?`
	Star     string      `( @"*"`
	Args     []*exprNode `| (@@ ("," @@)*)? ) ")"`
	Over     *overNode   `("OVER" "(" @@ ")")?`
}

type overNode struct {
	Partition []*exprNode  `("PARTITION" "BY" @@ ("," @@)*)?`
	OrderBy   []*orderNode `("ORDER" "BY" @@ ("," @@)*)?`
	Frame     *frameNode   `@@?`
}

type frameNode struct {
	Type  string     `@("ROWS" | "RANGE") "BETWEEN"`
	Start *boundNode `@@ "AND"`
	End   *boundNode `@@`
}

type boundNode struct {
	Unbounded string `( @"UNBOUNDED" ("PRECEDING" | "FOLLOWING")`
	Current   string `| @"CURRENT" "ROW"`
	Offset    *int   `| @Number ("PRECEDING" | "FOLLOWING") )`
}

type litNode struct {
	Str   *string `( @String`
	Num   *string `| @Number`
	True  string  `| @"TRUE"`
	False string  `| @"FALSE"`
	Null  string  `| @"NULL" )`
}

type colNode struct {
	First  string `@Ident`
	Second string `("." @Ident)?`
}

var parser = participle.MustBuild[queryNode](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.CaseInsensitive("Keyword"),
	participle.UseLookahead(4),
)

// Parse reads a query from r and converts it to the ir form.
func Parse(filename string, r io.Reader) (*ir.Query, error) {
	raw, err := parser.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return convertQuery(raw)
}

// ParseString parses a query held in a string.
func ParseString(filename, input string) (*ir.Query, error) {
	return Parse(filename, strings.NewReader(input))
}
