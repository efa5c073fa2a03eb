package builder

import (
	"errors"
	"testing"

	"github.com/sqlforge/sqlforge/query/ir"
	"github.com/sqlforge/sqlforge/query/schema"
	"github.com/sqlforge/sqlforge/query/sqlgen"
)

func employees() *Table {
	man := schema.NewTable("employees",
		schema.Col("id", schema.Int),
		schema.Col("name", schema.String),
		schema.Col("salary", schema.Float),
		schema.Col("dept", schema.String),
	)
	return NewTable("employees", WithSchema(man))
}

func mustBuild(t *testing.T, e *Expr) ir.Expression {
	t.Helper()
	node, err := e.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return node
}

func render(t *testing.T, e *Expr) string {
	t.Helper()
	node := mustBuild(t, e)
	q := ir.FromTable("employees").SelectExprs(node)
	sql, err := sqlgen.Compile(q, "duckdb")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return sql
}

func TestColValidatesAgainstManifest(t *testing.T) {
	emp := employees()
	if _, err := emp.Col("salary").Build(); err != nil {
		t.Errorf("known column failed: %v", err)
	}
	_, err := emp.Col("salry").Build()
	var resolution *ir.ColumnResolutionError
	if !errors.As(err, &resolution) {
		t.Fatalf("expected ColumnResolutionError, got %v", err)
	}
	if resolution.Column != "salry" || resolution.Table != "employees" {
		t.Errorf("error fields = %q, %q", resolution.Column, resolution.Table)
	}
}

func TestErrorPropagatesThroughChain(t *testing.T) {
	emp := employees()
	cond := emp.Col("salry").Gt(Lit(100)).And(emp.Col("dept").Eq(Lit("eng")))
	_, err := cond.Build()
	var resolution *ir.ColumnResolutionError
	if !errors.As(err, &resolution) {
		t.Fatalf("expected ColumnResolutionError through the chain, got %v", err)
	}
}

func TestComparisonAndLogic(t *testing.T) {
	emp := employees()
	cond := emp.Col("salary").Gt(Lit(50000)).And(emp.Col("dept").Eq(Lit("eng")))
	node := mustBuild(t, cond)
	q, err := emp.Query().Where(node)
	if err != nil {
		t.Fatal(err)
	}
	sql, err := sqlgen.Compile(q, "duckdb")
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT * FROM employees WHERE salary > 50000 AND dept = 'eng'"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestAliasQualifiesColumns(t *testing.T) {
	emp := NewTable("employees", WithAlias("e"))
	node := mustBuild(t, emp.Col("salary"))
	ref := node.(*ir.ColumnReference)
	if ref.Table != "e" {
		t.Errorf("qualifier = %q, want e", ref.Table)
	}
}

func TestQColQualifiesByTableName(t *testing.T) {
	emp := NewTable("employees")
	ref := mustBuild(t, emp.QCol("id")).(*ir.ColumnReference)
	if ref.Table != "employees" {
		t.Errorf("qualifier = %q, want employees", ref.Table)
	}
}

func TestInAndNullPredicates(t *testing.T) {
	emp := employees()
	if got, want := render(t, emp.Col("dept").In("eng", "ops")),
		"SELECT dept IN ('eng', 'ops') FROM employees"; got != want {
		t.Errorf("In: got %q, want %q", got, want)
	}
	if got, want := render(t, emp.Col("name").IsNull()),
		"SELECT name IS NULL FROM employees"; got != want {
		t.Errorf("IsNull: got %q, want %q", got, want)
	}
	if got, want := render(t, emp.Col("name").IsNotNull()),
		"SELECT name IS NOT NULL FROM employees"; got != want {
		t.Errorf("IsNotNull: got %q, want %q", got, want)
	}
	if got, want := render(t, emp.Col("name").Like("A%")),
		"SELECT name LIKE 'A%' FROM employees"; got != want {
		t.Errorf("Like: got %q, want %q", got, want)
	}
}

func TestArithmetic(t *testing.T) {
	emp := employees()
	bonus := emp.Col("salary").Mul(Lit(0.1)).Add(Lit(500))
	if got, want := render(t, bonus), "SELECT salary * 0.1 + 500 FROM employees"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParensOverride(t *testing.T) {
	emp := employees()
	e := emp.Col("salary").Add(Lit(1)).Parens()
	if got, want := render(t, e), "SELECT (salary + 1) FROM employees"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNot(t *testing.T) {
	emp := employees()
	e := Not(emp.Col("dept").Eq(Lit("eng")))
	if got, want := render(t, e), "SELECT NOT dept = 'eng' FROM employees"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAggregates(t *testing.T) {
	emp := employees()
	cases := []struct {
		expr *Expr
		want string
	}{
		{Count(), "SELECT COUNT(*) FROM employees"},
		{CountDistinct(emp.Col("dept")), "SELECT COUNT(DISTINCT dept) FROM employees"},
		{Sum(emp.Col("salary")), "SELECT SUM(salary) FROM employees"},
		{Avg(emp.Col("salary")), "SELECT AVG(salary) FROM employees"},
	}
	for _, tc := range cases {
		if got := render(t, tc.expr); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestWindowOver(t *testing.T) {
	emp := employees()
	e := RowNumber().Over(
		PartitionBy(emp.Col("dept")),
		OrderDesc(emp.Col("salary")),
	)
	want := "SELECT ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) FROM employees"
	if got := render(t, e); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWindowFrame(t *testing.T) {
	emp := employees()
	e := Sum(emp.Col("salary")).Over(
		OrderAsc(emp.Col("id")),
		Rows(Unbounded(), CurrentRow()),
	)
	want := "SELECT SUM(salary) OVER (ORDER BY id ASC " +
		"ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM employees"
	if got := render(t, e); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOverOnNonFunction(t *testing.T) {
	emp := employees()
	if _, err := emp.Col("salary").Over().Build(); err == nil {
		t.Error("OVER on a bare column should fail")
	}
}

func TestLagDefaultOffset(t *testing.T) {
	emp := employees()
	e := Lag(emp.Col("salary")).Over(OrderAsc(emp.Col("id")))
	want := "SELECT LAG(salary) OVER (ORDER BY id ASC) FROM employees"
	if got := render(t, e); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCaseBuilder(t *testing.T) {
	emp := employees()
	grade := When(emp.Col("salary").Gte(Lit(100000)), Lit("senior")).
		When(emp.Col("salary").Gte(Lit(60000)), Lit("mid")).
		Else(Lit("junior"))
	want := "SELECT CASE WHEN salary >= 100000 THEN 'senior' " +
		"WHEN salary >= 60000 THEN 'mid' ELSE 'junior' END FROM employees"
	if got := render(t, grade); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCaseWithoutElse(t *testing.T) {
	emp := employees()
	e := When(emp.Col("salary").Gt(Lit(0)), Lit("paid")).End()
	want := "SELECT CASE WHEN salary > 0 THEN 'paid' END FROM employees"
	if got := render(t, e); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCallArityError(t *testing.T) {
	if _, err := Call("SUBSTRING", Column("name")).Build(); err == nil {
		t.Error("SUBSTRING with one argument should fail at Build")
	}
}

func TestCallUnknownFunction(t *testing.T) {
	e := Call("my_udf", Column("a"), Lit(1))
	node := mustBuild(t, e)
	fn := node.(*ir.FunctionExpression)
	if fn.Name != "MY_UDF" {
		t.Errorf("Name = %q, want MY_UDF", fn.Name)
	}
}

func TestAs(t *testing.T) {
	emp := employees()
	col, err := Sum(emp.Col("salary")).As("total")
	if err != nil {
		t.Fatal(err)
	}
	if col.Alias != "total" {
		t.Errorf("Alias = %q, want total", col.Alias)
	}
	_, err = emp.Col("bogus").As("x")
	if err == nil {
		t.Error("As on a failed expression should return the error")
	}
}
