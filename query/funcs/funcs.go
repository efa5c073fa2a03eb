// Package funcs holds the SQL function catalog. A Registry maps function
// names to definitions carrying the function kind, arity bounds and an
// optional per-dialect rendering hook. Generators receive a Resolver so
// the catalog can be swapped or extended without touching them.
package funcs

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sqlforge/sqlforge/query/ir"
)

// RenderFunc renders a call for one dialect from already-rendered argument
// fragments. Returning false defers to the generic NAME(arg, ...) form.
type RenderFunc func(dialect string, args []string) (string, bool)

// Definition describes one registered function.
//
// MaxArgs of -1 means variadic. Render may be nil, in which case every
// dialect uses the generic form.
type Definition struct {
	Name    string
	Kind    ir.FunctionKind
	MinArgs int
	MaxArgs int
	Render  RenderFunc
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Name string
	Got  int
	Min  int
	Max  int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	if e.Max < 0 {
		return fmt.Sprintf("%s expects at least %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	return fmt.Sprintf("%s expects between %d and %d arguments, got %d", e.Name, e.Min, e.Max, e.Got)
}

// Call builds a function expression node after checking arity.
func (d *Definition) Call(args ...ir.Expression) (*ir.FunctionExpression, error) {
	if len(args) < d.MinArgs || (d.MaxArgs >= 0 && len(args) > d.MaxArgs) {
		return nil, &ArityError{Name: d.Name, Got: len(args), Min: d.MinArgs, Max: d.MaxArgs}
	}
	return &ir.FunctionExpression{Name: d.Name, Args: args, Kind: d.Kind}, nil
}

// Resolver is the lookup capability the generators depend on.
type Resolver interface {
	Lookup(name string) (*Definition, bool)
}

// Registry is a concurrency-safe name-to-definition map. Lookups are
// case-insensitive; names are stored upper-case.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Definition)}
}

// Register adds or replaces a definition under its canonical name.
func (r *Registry) Register(def *Definition) {
	name := strings.ToUpper(def.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *def
	d.Name = name
	r.entries[name] = &d
}

// Lookup finds a definition by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.entries[strings.ToUpper(name)]
	return def, ok
}

// Call resolves the name and builds a function node. Unknown names build a
// generic scalar call so that unregistered functions still render as
// NAME(arg, ...) instead of failing the whole compile.
func (r *Registry) Call(name string, args ...ir.Expression) (*ir.FunctionExpression, error) {
	if def, ok := r.Lookup(name); ok {
		return def.Call(args...)
	}
	return &ir.FunctionExpression{
		Name: strings.ToUpper(name),
		Args: args,
		Kind: ir.Scalar,
	}, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func scalar(name string, min, max int, render RenderFunc) *Definition {
	return &Definition{Name: name, Kind: ir.Scalar, MinArgs: min, MaxArgs: max, Render: render}
}

func aggregate(name string, min, max int) *Definition {
	return &Definition{Name: name, Kind: ir.Aggregate, MinArgs: min, MaxArgs: max}
}

func window(name string, min, max int) *Definition {
	return &Definition{Name: name, Kind: ir.Window, MinArgs: min, MaxArgs: max}
}

// unquote strips the single quotes from a rendered string literal, for
// dialects that want a keyword where others take a quoted date part.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// DefaultRegistry builds the standard catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// String functions.
	r.Register(scalar("UPPER", 1, 1, nil))
	r.Register(scalar("LOWER", 1, 1, nil))
	r.Register(scalar("TRIM", 1, 1, nil))
	r.Register(scalar("LENGTH", 1, 1, func(dialect string, args []string) (string, bool) {
		if dialect == "mysql" {
			return fmt.Sprintf("CHAR_LENGTH(%s)", args[0]), true
		}
		return "", false
	}))
	r.Register(scalar("CONCAT", 2, -1, func(dialect string, args []string) (string, bool) {
		if dialect == "sqlite" {
			return strings.Join(args, " || "), true
		}
		return "", false
	}))
	r.Register(scalar("SUBSTRING", 2, 3, func(dialect string, args []string) (string, bool) {
		if dialect == "sqlite" {
			return fmt.Sprintf("SUBSTR(%s)", strings.Join(args, ", ")), true
		}
		return "", false
	}))
	r.Register(scalar("REPLACE", 3, 3, nil))

	// Numeric functions.
	r.Register(scalar("ABS", 1, 1, nil))
	r.Register(scalar("ROUND", 1, 2, nil))
	r.Register(scalar("CEIL", 1, 1, nil))
	r.Register(scalar("FLOOR", 1, 1, nil))
	r.Register(scalar("SQRT", 1, 1, nil))
	r.Register(scalar("POWER", 2, 2, nil))
	r.Register(scalar("MOD", 2, 2, func(dialect string, args []string) (string, bool) {
		if dialect == "sqlite" {
			return fmt.Sprintf("%s %% %s", args[0], args[1]), true
		}
		return "", false
	}))
	r.Register(scalar("COALESCE", 1, -1, nil))

	// Date and time functions. The first argument of DATE_DIFF, DATE_PART
	// and DATE_TRUNC is the date part as a string literal.
	r.Register(scalar("CURRENT_DATE", 0, 0, func(dialect string, args []string) (string, bool) {
		return "CURRENT_DATE", true
	}))
	r.Register(scalar("DATE_DIFF", 3, 3, func(dialect string, args []string) (string, bool) {
		if dialect == "mysql" {
			part := strings.ToUpper(unquote(args[0]))
			return fmt.Sprintf("TIMESTAMPDIFF(%s, %s, %s)", part, args[1], args[2]), true
		}
		return "", false
	}))
	r.Register(scalar("DATE_PART", 2, 2, func(dialect string, args []string) (string, bool) {
		switch dialect {
		case "mysql":
			part := strings.ToUpper(unquote(args[0]))
			return fmt.Sprintf("EXTRACT(%s FROM %s)", part, args[1]), true
		default:
			return "", false
		}
	}))
	r.Register(scalar("DATE_TRUNC", 2, 2, nil))

	// Aggregates.
	r.Register(aggregate("COUNT", 0, 1))
	r.Register(aggregate("SUM", 1, 1))
	r.Register(aggregate("AVG", 1, 1))
	r.Register(aggregate("MIN", 1, 1))
	r.Register(aggregate("MAX", 1, 1))
	r.Register(aggregate("STRING_AGG", 1, 2))

	// Window functions.
	r.Register(window("ROW_NUMBER", 0, 0))
	r.Register(window("RANK", 0, 0))
	r.Register(window("DENSE_RANK", 0, 0))
	r.Register(window("NTILE", 1, 1))
	r.Register(window("LAG", 1, 3))
	r.Register(window("LEAD", 1, 3))
	r.Register(window("FIRST_VALUE", 1, 1))
	r.Register(window("LAST_VALUE", 1, 1))

	return r
}
