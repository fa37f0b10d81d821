package workflows

import "sort"

// Registry stores workflow definitions by derived name. It is populated by
// an explicit bootstrap step at initialization time; Clear exists for test
// isolation rather than process-wide side effects.
type Registry struct {
	definitions map[string]Definition
}

// NewRegistry creates an empty workflow registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// Register stores a definition under name. Re-registering an existing name
// silently overwrites: last registration wins.
func (r *Registry) Register(name string, def Definition) {
	r.definitions[name] = def
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.definitions[name]
	return def, ok
}

// Keys returns all registered names, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// Domains returns the entity-domain definitions in name order.
func (r *Registry) Domains() []Definition {
	var defs []Definition
	for _, name := range r.Keys() {
		if def := r.definitions[name]; def.Domain {
			defs = append(defs, def)
		}
	}
	return defs
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.definitions)
}

// Clear removes all registered definitions.
func (r *Registry) Clear() {
	r.definitions = make(map[string]Definition)
}
