package payments

import "fmt"

// Registry holds the configured payment providers. Which providers exist is
// a deployment decision; the checkout flow only ever asks the registry.
type Registry struct {
	providers map[string]Provider
	names     []string
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(p Provider) {
	if _, exists := r.providers[p.Name()]; !exists {
		r.names = append(r.names, p.Name())
	}
	r.providers[p.Name()] = p
}

// Get returns the named provider.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Available lists the registered provider names in registration order.
func (r *Registry) Available() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Select resolves the provider for a payment. An empty name auto-selects
// only when exactly one provider is configured; otherwise the caller must
// name one.
func (r *Registry) Select(name string) (Provider, error) {
	if name != "" {
		return r.Get(name)
	}
	if len(r.names) == 1 {
		return r.providers[r.names[0]], nil
	}
	return nil, ErrNoDefaultProvider
}
