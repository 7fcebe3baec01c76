// internal/archetype/registry.go
package archetype

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "archetype-resolver/internal/common/errors"
)

// Constructor builds a Factory from the run inputs.
type Constructor func(ctx context.Context, in Inputs) (Factory, error)

// Registry maps configuration keys to factory constructors. Keys are
// matched case-insensitively.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: map[string]Constructor{}}
}

// DefaultRegistry returns a registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FactoryAgeClass, NewAgeClassFactory)
	r.Register(FactoryRetrofit, NewRetrofitFactory)
	r.Register(FactoryBuildingSpecific, NewBuildingSpecificFactory)
	return r
}

// Register adds or replaces the constructor for key.
func (r *Registry) Register(key string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[strings.ToLower(key)] = c
}

// Keys lists the registered keys in order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.constructors))
	for k := range r.constructors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New builds the factory registered under key.
func (r *Registry) New(ctx context.Context, key string, in Inputs) (Factory, error) {
	r.mu.RLock()
	c, ok := r.constructors[strings.ToLower(key)]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf(
			"unknown archetype factory %q, registered: %s", key, strings.Join(r.Keys(), ", ")))
	}
	return c(ctx, in)
}

// FromConfig builds the factory named by in.Config.Factory.
func (r *Registry) FromConfig(ctx context.Context, in Inputs) (Factory, error) {
	if in.Config == nil {
		return nil, apperrors.NewConfigurationError("factory inputs need a config")
	}
	return r.New(ctx, in.Config.Factory, in)
}
