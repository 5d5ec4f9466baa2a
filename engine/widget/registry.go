package widget

import (
	"sort"
	"sync"

	"github.com/arloai/reporting/engine/metrics"
)

// Registry maps widget identifiers to descriptors. It is populated once
// before any report generation begins and read-only afterward; the mutex
// only guards the registration phase.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Registering an identifier twice fails with a
// DuplicateWidgetError rather than overwriting.
func (r *Registry) Register(desc *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.widgets[desc.ID]; exists {
		return &DuplicateWidgetError{ID: desc.ID}
	}
	r.widgets[desc.ID] = desc
	return nil
}

// Resolve returns the descriptor for an identifier or an UnknownWidgetError.
func (r *Registry) Resolve(id string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.widgets[id]
	if !ok {
		return nil, &UnknownWidgetError{ID: id}
	}
	return desc, nil
}

// List returns all registered identifiers, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CheckRequirements returns the required fields absent from the dataset. An
// empty result means the widget can render. The check is mandatory before
// invoking a renderer.
func (r *Registry) CheckRequirements(desc *Descriptor, ds *metrics.NormalizedDataset) []metrics.Metric {
	if ds == nil {
		return append([]metrics.Metric(nil), desc.Required...)
	}
	return ds.MissingFields(desc.Required)
}
