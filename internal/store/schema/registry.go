package schema

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/phrazzld/flowregistry/internal/store"
)

// EntityType is the tag under which an entity's table is registered.
type EntityType string

// Registry maps entity types to their tables. Tables are registered during
// startup; after Freeze the registry only serves lookups.
type Registry struct {
	mu     sync.RWMutex
	tables map[EntityType]*Table
	frozen bool
}

// NewRegistry returns an empty registry open for registration.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[EntityType]*Table)}
}

// Register associates table with entityType.
func (r *Registry) Register(entityType EntityType, table *Table) error {
	if strings.TrimSpace(string(entityType)) == "" {
		return fmt.Errorf("%w: entity type is required", store.ErrConfiguration)
	}
	if table == nil {
		return fmt.Errorf("%w: nil table for entity type %s", store.ErrConfiguration, entityType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: registry is frozen, cannot register %s", store.ErrConfiguration, entityType)
	}
	if existing, ok := r.tables[entityType]; ok {
		return fmt.Errorf("%w: entity type %s already registered to table %s",
			store.ErrConfiguration, entityType, existing.Name())
	}
	r.tables[entityType] = table
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(entityType EntityType, table *Table) {
	if err := r.Register(entityType, table); err != nil {
		panic(err)
	}
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Table returns the table registered for entityType.
func (r *Registry) Table(entityType EntityType) (*Table, error) {
	r.mu.RLock()
	t, ok := r.tables[entityType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no table registered for entity type %s", store.ErrIllegalState, entityType)
	}
	return t, nil
}

// Tables returns every registered table sorted by name.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Table) int { return strings.Compare(a.name, b.name) })
	return out
}
