package region

import (
	"context"
	"strings"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/fetcher"
	"github.com/sells-group/vetverify/internal/model"
)

// Registry maps region names and jurisdiction codes to adapters.
type Registry struct {
	adapters map[string]Adapter
	aliases  map[string]string // normalized code or name -> region name
	order    []string          // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		aliases:  make(map[string]string),
	}
}

// Register adds an adapter. Registering the same name twice replaces the
// earlier adapter but keeps its position.
func (r *Registry) Register(a Adapter) {
	name := a.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
	r.aliases[normalizeKey(name)] = name
	r.aliases[normalizeKey(a.Code())] = name
}

// Resolve finds the adapter for a jurisdiction code or region name, ignoring
// case and spacing ("CA", "ca", "California", "New York").
func (r *Registry) Resolve(code string) (Adapter, error) {
	name, ok := r.aliases[normalizeKey(code)]
	if !ok {
		return nil, &apperr.UnsupportedRegionError{Code: code}
	}
	return r.adapters[name], nil
}

// Select resolves the given codes in order. An empty list selects every adapter.
func (r *Registry) Select(codes []string) ([]Adapter, error) {
	if len(codes) == 0 {
		return r.All(), nil
	}
	out := make([]Adapter, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		a, err := r.Resolve(c)
		if err != nil {
			return nil, err
		}
		if seen[a.Name()] {
			continue
		}
		seen[a.Name()] = true
		out = append(out, a)
	}
	return out, nil
}

// All returns all adapters in registration order.
func (r *Registry) All() []Adapter {
	result := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.adapters[name])
	}
	return result
}

// Names returns all registered region names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Search dispatches a filtered search to the adapter for code. Adapter errors
// are returned unchanged; unknown codes yield an UnsupportedRegionError.
func (r *Registry) Search(ctx context.Context, f fetcher.Fetcher, code string, filter model.Filter) ([]model.VerificationResult, error) {
	a, err := r.Resolve(code)
	if err != nil {
		return nil, err
	}
	return a.Search(ctx, f, filter.Normalize())
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
