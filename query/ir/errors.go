package ir

import "fmt"

// MissingSourceError reports a compile or join attempted on a query that
// has no data source yet.
type MissingSourceError struct {
	Op string
}

func (e *MissingSourceError) Error() string {
	if e.Op == "" {
		return "query has no data source"
	}
	return fmt.Sprintf("%s: query has no data source", e.Op)
}

// InvalidJoinTargetError reports a join whose right-hand side is neither a
// Query nor a TableReference.
type InvalidJoinTargetError struct {
	Got interface{}
}

func (e *InvalidJoinTargetError) Error() string {
	return fmt.Sprintf("join target must be a *Query or *TableReference, got %T", e.Got)
}

// InvalidFilterConditionError reports a filter argument that is not an
// expression.
type InvalidFilterConditionError struct{}

func (e *InvalidFilterConditionError) Error() string {
	return "filter condition must be a non-nil expression"
}

// UnsupportedDialectError reports a compile against an unregistered
// dialect name.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported SQL dialect: %q", e.Dialect)
}

// ColumnResolutionError reports a column that could not be resolved
// against a table manifest. It is raised by the builder layer, never by
// the generators.
type ColumnResolutionError struct {
	Column string
	Table  string
}

func (e *ColumnResolutionError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("unknown column %q", e.Column)
	}
	return fmt.Sprintf("unknown column %q in table %q", e.Column, e.Table)
}
