package provider

import (
	"sync"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	domain "github.com/jbctechsolutions/parley/internal/domain/provider"
)

// Registry dispatches a provider identity to its adapter.
// Dispatch is a typed lookup over the closed identity set, never matching
// on endpoint URL contents.
type Registry struct {
	mu       sync.RWMutex
	adapters map[domain.Identity]ports.AdapterPort
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[domain.Identity]ports.AdapterPort),
	}
}

// Register adds an adapter under its own identity.
// Re-registering an identity replaces the previous adapter.
func (r *Registry) Register(adapter ports.AdapterPort) error {
	if adapter == nil {
		return errors.NewError(errors.CodeValidation, "adapter cannot be nil", nil)
	}

	id := adapter.Identity()
	if !id.IsValid() {
		return errors.NewError(errors.CodeValidation, "adapter has invalid identity", errors.ErrUnknownProvider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[id] = adapter
	return nil
}

// Resolve returns the adapter for the given identity.
func (r *Registry) Resolve(id domain.Identity) (ports.AdapterPort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[id]
	if !ok {
		return nil, errors.NewError(errors.CodeConfiguration,
			"no adapter registered for provider "+id.String(), errors.ErrUnknownProvider)
	}
	return adapter, nil
}

// Identities returns the registered identities.
func (r *Registry) Identities() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.Identity, 0, len(r.adapters))
	for _, id := range domain.Identities() {
		if _, ok := r.adapters[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
