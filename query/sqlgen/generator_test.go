package sqlgen

import (
	"errors"
	"testing"

	"github.com/sqlforge/sqlforge/query/ir"
)

func compile(t *testing.T, q *ir.Query, dialect string) string {
	t.Helper()
	sql, err := Compile(q, dialect)
	if err != nil {
		t.Fatalf("Compile(%s): %v", dialect, err)
	}
	return sql
}

func TestSelectFromTable(t *testing.T) {
	q := ir.FromTable("employees").SelectExprs(ir.Col("id"), ir.Col("name"))
	got := compile(t, q, "duckdb")
	want := "SELECT id, name FROM employees"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSelectStarWhenNoColumns(t *testing.T) {
	got := compile(t, ir.FromTable("employees"), "duckdb")
	want := "SELECT * FROM employees"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClauseKeywordsOnlyWhenPresent(t *testing.T) {
	q, err := ir.FromTable("orders").
		SelectExprs(ir.Col("status")).
		Where(&ir.BinaryOperation{Left: ir.Col("total"), Operator: ">", Right: ir.Lit(100)})
	if err != nil {
		t.Fatal(err)
	}
	got := compile(t, q, "duckdb")
	want := "SELECT status FROM orders WHERE total > 100"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFullClauseOrder(t *testing.T) {
	base := ir.FromTable("orders").
		SelectExprs(ir.Col("region")).
		GroupByExprs(ir.Col("region")).
		HavingCond(&ir.BinaryOperation{
			Left:     &ir.FunctionExpression{Name: "COUNT", Kind: ir.Aggregate},
			Operator: ">",
			Right:    ir.Lit(10),
		})
	q, err := base.Where(&ir.BinaryOperation{Left: ir.Col("status"), Operator: "=", Right: ir.Lit("open")})
	if err != nil {
		t.Fatal(err)
	}
	q, err = q.OrderBySpecs(ir.OrderDesc(ir.Col("region")))
	if err != nil {
		t.Fatal(err)
	}
	q = q.LimitRows(5).OffsetRows(10)

	got := compile(t, q, "duckdb")
	want := "SELECT region FROM orders WHERE status = 'open' GROUP BY region " +
		"HAVING COUNT(*) > 10 ORDER BY region DESC LIMIT 5 OFFSET 10"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestOrderByDedupFirstDirectionWins(t *testing.T) {
	q, err := ir.FromTable("t").OrderBySpecs(ir.Col("a"), ir.OrderDesc(ir.Col("a")))
	if err != nil {
		t.Fatal(err)
	}
	got := compile(t, q, "duckdb")
	want := "SELECT * FROM t ORDER BY a ASC"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMixedAndOrParenthesization(t *testing.T) {
	x := &ir.BinaryOperation{Left: ir.Col("x"), Operator: "=", Right: ir.Lit(1)}
	y := &ir.BinaryOperation{Left: ir.Col("y"), Operator: "=", Right: ir.Lit(2)}
	z := &ir.BinaryOperation{Left: ir.Col("z"), Operator: "=", Right: ir.Lit(3)}

	cases := []struct {
		name string
		cond ir.Expression
		want string
	}{
		{
			"and-under-or",
			&ir.BinaryOperation{
				Left:     &ir.BinaryOperation{Left: x, Operator: "AND", Right: y},
				Operator: "OR",
				Right:    z,
			},
			"SELECT * FROM t WHERE (x = 1 AND y = 2) OR z = 3",
		},
		{
			"or-under-and",
			&ir.BinaryOperation{
				Left:     x,
				Operator: "AND",
				Right:    &ir.BinaryOperation{Left: y, Operator: "OR", Right: z},
			},
			"SELECT * FROM t WHERE x = 1 AND (y = 2 OR z = 3)",
		},
		{
			"same-operator-no-parens",
			&ir.BinaryOperation{
				Left:     &ir.BinaryOperation{Left: x, Operator: "AND", Right: y},
				Operator: "AND",
				Right:    z,
			},
			"SELECT * FROM t WHERE x = 1 AND y = 2 AND z = 3",
		},
	}
	for _, tc := range cases {
		q, err := ir.FromTable("t").Where(tc.cond)
		if err != nil {
			t.Fatal(err)
		}
		if got := compile(t, q, "duckdb"); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	// (a + b) * c keeps its parentheses, a + b * c does not gain any.
	grouped := &ir.BinaryOperation{
		Left:     &ir.BinaryOperation{Left: ir.Col("a"), Operator: "+", Right: ir.Col("b")},
		Operator: "*",
		Right:    ir.Col("c"),
	}
	q := ir.FromTable("t").SelectExprs(grouped)
	if got, want := compile(t, q, "duckdb"), "SELECT (a + b) * c FROM t"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	flat := &ir.BinaryOperation{
		Left:     ir.Col("a"),
		Operator: "+",
		Right:    &ir.BinaryOperation{Left: ir.Col("b"), Operator: "*", Right: ir.Col("c")},
	}
	q = ir.FromTable("t").SelectExprs(flat)
	if got, want := compile(t, q, "duckdb"), "SELECT a + b * c FROM t"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNeedsParensOverride(t *testing.T) {
	expr := &ir.BinaryOperation{
		Left:        ir.Col("a"),
		Operator:    "+",
		Right:       ir.Col("b"),
		NeedsParens: true,
	}
	q := ir.FromTable("t").SelectExprs(expr)
	if got, want := compile(t, q, "duckdb"), "SELECT (a + b) FROM t"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNotOperand(t *testing.T) {
	cond := &ir.UnaryOperation{
		Operator: "NOT",
		Operand: &ir.BinaryOperation{
			Left:     &ir.BinaryOperation{Left: ir.Col("a"), Operator: "=", Right: ir.Lit(1)},
			Operator: "AND",
			Right:    &ir.BinaryOperation{Left: ir.Col("b"), Operator: "=", Right: ir.Lit(2)},
		},
	}
	q, err := ir.FromTable("t").Where(cond)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM t WHERE NOT (a = 1 AND b = 2)"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLeftJoin(t *testing.T) {
	cond := &ir.BinaryOperation{
		Left:     ir.QualifiedCol("t1", "id"),
		Operator: "=",
		Right:    ir.QualifiedCol("t2", "t1_id"),
	}
	q, err := ir.FromTable("t1").LeftJoinWith(ir.Table("t2"), cond)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM t1 LEFT JOIN t2 ON t1.id = t2.t1_id"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestChainedJoinsAreLeftDeep(t *testing.T) {
	on12 := &ir.BinaryOperation{Left: ir.QualifiedCol("t1", "id"), Operator: "=", Right: ir.QualifiedCol("t2", "t1_id")}
	on13 := &ir.BinaryOperation{Left: ir.QualifiedCol("t1", "id"), Operator: "=", Right: ir.QualifiedCol("t3", "t1_id")}

	q, err := ir.FromTable("t1").InnerJoinWith(ir.Table("t2"), on12)
	if err != nil {
		t.Fatal(err)
	}
	q, err = q.LeftJoinWith(ir.Table("t3"), on13)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM t1 INNER JOIN t2 ON t1.id = t2.t1_id LEFT JOIN t3 ON t1.id = t3.t1_id"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCrossJoinHasNoOnClause(t *testing.T) {
	q, err := ir.FromTable("colors").CrossJoinWith(ir.Table("sizes"))
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM colors CROSS JOIN sizes"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoinSubquery(t *testing.T) {
	inner := ir.FromTable("orders").
		SelectExprs(ir.Col("customer_id")).
		GroupByExprs(ir.Col("customer_id"))
	cond := &ir.BinaryOperation{
		Left:     ir.QualifiedCol("customers", "id"),
		Operator: "=",
		Right:    ir.QualifiedCol("subquery_0", "customer_id"),
	}
	q, err := ir.FromTable("customers").InnerJoinWith(inner, cond)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM customers INNER JOIN " +
		"(SELECT customer_id FROM orders GROUP BY customer_id) AS subquery_0 " +
		"ON customers.id = subquery_0.customer_id"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCTEPlainAndRecursive(t *testing.T) {
	body := ir.FromTable("orders").SelectExprs(ir.Col("id"))
	q := ir.FromTable("recent").WithCTE("recent", body, nil, false)
	want := "WITH recent AS (SELECT id FROM orders) SELECT * FROM recent"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("plain: got %q, want %q", got, want)
	}

	q = ir.FromTable("tree").WithRawCTE("tree",
		"SELECT id, parent_id FROM nodes WHERE parent_id IS NULL "+
			"UNION ALL SELECT n.id, n.parent_id FROM nodes n JOIN tree t ON n.parent_id = t.id",
		[]string{"id", "parent_id"}, true)
	got := compile(t, q, "duckdb")
	wantPrefix := "WITH RECURSIVE tree (id, parent_id) AS ("
	if len(got) < len(wantPrefix) || got[:len(wantPrefix)] != wantPrefix {
		t.Errorf("recursive: got %q, want prefix %q", got, wantPrefix)
	}
}

func TestCTEsEmitInAppendOrder(t *testing.T) {
	a := ir.FromTable("x")
	b := ir.FromTable("y")
	q := ir.FromTable("b").WithCTE("a", a, nil, false).WithCTE("b", b, nil, false)
	want := "WITH a AS (SELECT * FROM x), b AS (SELECT * FROM y) SELECT * FROM b"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWindowFrameUnboundedToCurrentRow(t *testing.T) {
	fn := &ir.FunctionExpression{
		Name: "SUM",
		Args: []ir.Expression{ir.Col("amount")},
		Kind: ir.Window,
		Over: &ir.WindowSpec{
			PartitionBy: []ir.Expression{ir.Col("region")},
			OrderBy:     []ir.OrderByClause{{Expr: ir.Col("day"), Direction: ir.Asc}},
			Frame: &ir.Frame{
				Type:  ir.RowsFrame,
				Start: ir.UnboundedBound(),
				End:   ir.CurrentRowBound(),
			},
		},
	}
	q := ir.FromTable("sales").Select(ir.NewColumn(fn, "running_total"))
	want := "SELECT SUM(amount) OVER (PARTITION BY region ORDER BY day ASC " +
		"ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS running_total FROM sales"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWindowFrameOffsets(t *testing.T) {
	fn := &ir.FunctionExpression{
		Name: "AVG",
		Args: []ir.Expression{ir.Col("amount")},
		Kind: ir.Window,
		Over: &ir.WindowSpec{
			OrderBy: []ir.OrderByClause{{Expr: ir.Col("day"), Direction: ir.Asc}},
			Frame: &ir.Frame{
				Type:  ir.RangeFrame,
				Start: ir.Bound(3),
				End:   ir.Bound(1),
			},
		},
	}
	q := ir.FromTable("sales").SelectExprs(fn)
	want := "SELECT AVG(amount) OVER (ORDER BY day ASC " +
		"RANGE BETWEEN 3 PRECEDING AND 1 FOLLOWING) FROM sales"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnknownFunctionRendersGenerically(t *testing.T) {
	fn := &ir.FunctionExpression{
		Name: "foo",
		Args: []ir.Expression{ir.Col("a"), ir.Col("b")},
		Kind: ir.Scalar,
	}
	q := ir.FromTable("t").SelectExprs(fn)
	want := "SELECT FOO(a, b) FROM t"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDistinctTokenAfterSelect(t *testing.T) {
	q := ir.FromTable("t").SelectExprs(ir.Col("a")).DistinctRows()
	want := "SELECT DISTINCT a FROM t"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCountDistinct(t *testing.T) {
	fn := &ir.FunctionExpression{
		Name:     "COUNT",
		Args:     []ir.Expression{ir.Col("customer_id")},
		Kind:     ir.Aggregate,
		Distinct: true,
	}
	q := ir.FromTable("orders").SelectExprs(fn)
	want := "SELECT COUNT(DISTINCT customer_id) FROM orders"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCaseExpression(t *testing.T) {
	expr := &ir.CaseExpression{
		Whens: []ir.WhenClause{
			{
				Condition: &ir.BinaryOperation{Left: ir.Col("score"), Operator: ">=", Right: ir.Lit(90)},
				Result:    ir.Lit("A"),
			},
			{
				Condition: &ir.BinaryOperation{Left: ir.Col("score"), Operator: ">=", Right: ir.Lit(80)},
				Result:    ir.Lit("B"),
			},
		},
		Else: ir.Lit("F"),
	}
	q := ir.FromTable("results").Select(ir.NewColumn(expr, "grade"))
	want := "SELECT CASE WHEN score >= 90 THEN 'A' WHEN score >= 80 THEN 'B' ELSE 'F' END AS grade FROM results"
	if got := compile(t, q, "duckdb"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompileWithoutSource(t *testing.T) {
	_, err := Compile(&ir.Query{}, "duckdb")
	var missing *ir.MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSourceError, got %v", err)
	}
}

func TestUnsupportedDialect(t *testing.T) {
	_, err := Compile(ir.FromTable("t"), "oracle")
	var unsupported *ir.UnsupportedDialectError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedDialectError, got %v", err)
	}
	if unsupported.Dialect != "oracle" {
		t.Errorf("Dialect = %q, want oracle", unsupported.Dialect)
	}
}

func TestEmptyDialectUsesDefault(t *testing.T) {
	got, err := Compile(ir.FromTable("t"), "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "SELECT * FROM t" {
		t.Errorf("got %q", got)
	}
}

func TestRegisterCustomDialect(t *testing.T) {
	r := NewRegistry()
	r.Register("upper-table", func(q *ir.Query) (string, error) {
		return "CUSTOM", nil
	})
	got, err := r.Compile(ir.FromTable("t"), "UPPER-TABLE")
	if err != nil {
		t.Fatal(err)
	}
	if got != "CUSTOM" {
		t.Errorf("got %q", got)
	}
}

func TestConcurrentCompileOfSharedQuery(t *testing.T) {
	q, err := ir.FromTable("t").Where(&ir.BinaryOperation{Left: ir.Col("a"), Operator: "=", Right: ir.Lit(1)})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan string, 16)
	for i := 0; i < 16; i++ {
		go func() {
			sql, err := Compile(q, "duckdb")
			if err != nil {
				done <- "err: " + err.Error()
				return
			}
			done <- sql
		}()
	}
	want := "SELECT * FROM t WHERE a = 1"
	for i := 0; i < 16; i++ {
		if got := <-done; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
