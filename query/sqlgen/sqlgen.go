// Package sqlgen turns query values into SQL text. A Registry maps dialect
// names to generator functions; the built-in dialects share one Generator
// parameterized by a small set of dialect hooks, so adding a dialect means
// supplying hooks, not rewriting clause logic.
package sqlgen

import (
	"sort"
	"strings"
	"sync"

	"github.com/sqlforge/sqlforge/query/funcs"
	"github.com/sqlforge/sqlforge/query/ir"
)

// DefaultDialect is used when the caller does not name one.
const DefaultDialect = "duckdb"

// GeneratorFunc produces SQL text for one dialect.
type GeneratorFunc func(q *ir.Query) (string, error)

// Registry maps dialect names to generators. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]GeneratorFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]GeneratorFunc)}
}

// Register adds or replaces a generator under the given dialect name.
// Names are matched case-insensitively.
func (r *Registry) Register(name string, fn GeneratorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[strings.ToLower(name)] = fn
}

// Compile renders the query for the named dialect. An empty name selects
// the default dialect; an unregistered name is an UnsupportedDialectError.
func (r *Registry) Compile(q *ir.Query, dialect string) (string, error) {
	if dialect == "" {
		dialect = DefaultDialect
	}
	r.mu.RLock()
	fn, ok := r.generators[strings.ToLower(dialect)]
	r.mu.RUnlock()
	if !ok {
		return "", &ir.UnsupportedDialectError{Dialect: dialect}
	}
	return fn(q)
}

// Dialects returns the registered dialect names, sorted.
func (r *Registry) Dialects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDefaultRegistry builds a registry with the built-in dialects, all
// resolving functions through the given resolver.
func NewDefaultRegistry(resolver funcs.Resolver) *Registry {
	r := NewRegistry()
	for _, d := range builtinDialects() {
		g := &Generator{Dialect: d, Funcs: resolver}
		r.Register(d.Name, g.Generate)
		for _, alias := range d.Aliases {
			r.Register(alias, g.Generate)
		}
	}
	return r
}

var defaultRegistry = NewDefaultRegistry(funcs.DefaultRegistry())

// Compile renders the query against the shared default registry.
func Compile(q *ir.Query, dialect string) (string, error) {
	return defaultRegistry.Compile(q, dialect)
}

// Dialects lists the dialect names of the shared default registry.
func Dialects() []string {
	return defaultRegistry.Dialects()
}

// Register adds a dialect to the shared default registry.
func Register(name string, fn GeneratorFunc) {
	defaultRegistry.Register(name, fn)
}
