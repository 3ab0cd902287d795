// Package transformers provides a plugin system for enriching the IR.
// Each transformer inspects a module definition and returns an extended
// copy; the input definition is never modified.
package transformers

import (
	"fmt"

	"github.com/strogmv/moderr/compiler/ir"
)

// Transformer is the interface that all transformers must implement.
type Transformer interface {
	// Name returns the transformer's identifier.
	Name() string

	// Transform returns the extended definition.
	// It should be idempotent: applying it to its own output changes nothing.
	Transform(def ir.ModuleDefinition) (ir.ModuleDefinition, error)
}

// Registry holds all registered transformers.
type Registry struct {
	transformers []Transformer
}

// NewRegistry creates a new transformer registry.
func NewRegistry() *Registry {
	return &Registry{
		transformers: make([]Transformer, 0),
	}
}

// Register adds a transformer to the registry.
func (r *Registry) Register(t Transformer) {
	r.transformers = append(r.transformers, t)
}

// Names lists the registered transformers in application order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.transformers))
	for _, t := range r.transformers {
		out = append(out, t.Name())
	}
	return out
}

// Apply runs all transformers on the definition in order.
func (r *Registry) Apply(def ir.ModuleDefinition) (ir.ModuleDefinition, error) {
	out := def
	for _, t := range r.transformers {
		next, err := t.Transform(out)
		if err != nil {
			return ir.ModuleDefinition{}, fmt.Errorf("transformer %s: %w", t.Name(), err)
		}
		out = next
	}
	return out, nil
}

// DefaultRegistry returns a registry with all built-in transformers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ErrorEnumAugmenter{})
	return r
}
