package dispatch

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry resolves the index of a module type within an assembled system.
type Registry interface {
	ModuleIndex(module reflect.Type) (int, bool)
}

// StaticRegistry is a Registry filled in by the assembly code.
// The zero value is ready to use.
type StaticRegistry struct {
	mu      sync.RWMutex
	indices map[reflect.Type]int
}

// NewStaticRegistry returns an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{indices: make(map[reflect.Type]int)}
}

// Set assigns idx to the module type. Assigning the same index twice to
// different modules is rejected.
func (r *StaticRegistry) Set(module reflect.Type, idx int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indices == nil {
		r.indices = make(map[reflect.Type]int)
	}
	for other, used := range r.indices {
		if used == idx && other != module {
			return fmt.Errorf("module index %d already assigned to %s", idx, other)
		}
	}
	r.indices[module] = idx
	return nil
}

// ModuleIndex implements Registry.
func (r *StaticRegistry) ModuleIndex(module reflect.Type) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.indices[module]
	return idx, ok
}

// Len reports how many modules are registered.
func (r *StaticRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.indices)
}

// Register assigns idx to module type M.
func Register[M any](r *StaticRegistry, idx int) error {
	return r.Set(reflect.TypeFor[M](), idx)
}
