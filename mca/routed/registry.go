package routed

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"sync"
)

// Registry holds the routing components known to a daemon.
type Registry struct {
	mu         sync.Mutex
	components map[string]Component
}

func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[c.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, c.Name())
	}
	r.components[c.Name()] = c
	return nil
}

func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered component names in selection order.
func (r *Registry) Names() []string {
	comps := r.ordered()
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name()
	}
	return names
}

func (r *Registry) ordered() []Component {
	r.mu.Lock()
	comps := make([]Component, 0, len(r.components))
	for _, c := range r.components {
		comps = append(comps, c)
	}
	r.mu.Unlock()

	slices.SortFunc(comps, func(a, b Component) int {
		if c := cmp.Compare(b.Priority(), a.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name(), b.Name())
	})
	return comps
}

// Select returns an initialized module. A non-empty name selects that
// component only; otherwise components are tried by descending priority
// and the first whose Query succeeds wins.
func (r *Registry) Select(name string) (Module, error) {
	if name != "" {
		c, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q not registered", ErrNoComponent, name)
		}
		m, err := c.Query()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoComponent, name, err)
		}
		return initModule(m)
	}

	for _, c := range r.ordered() {
		m, err := c.Query()
		if err != nil {
			log.Printf("[routed] component %s unavailable: %v", c.Name(), err)
			continue
		}
		return initModule(m)
	}
	return nil, ErrNoComponent
}

func initModule(m Module) (Module, error) {
	if err := m.Init(); err != nil {
		return nil, fmt.Errorf("routed: init %s: %w", m.Name(), err)
	}
	log.Printf("[routed] selected module %s", m.Name())
	return m, nil
}
