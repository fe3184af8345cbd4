package routing

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps provider names to registered adapters and resolves which
// adapter serves a given request. It is populated once at process boot and
// is read-heavy afterwards; the only runtime mutation is the administrative
// SetDefaultProvider call, so all state sits behind an RWMutex rather than
// relying on unsynchronized reads.
//
// Construct explicitly and inject into the HTTP layer; there is no package
// global, so tests can build isolated registries with fake adapters.
type Registry struct {
	mu          sync.RWMutex
	adapters    map[string]Adapter
	defaultName string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its name. Registration is idempotent per
// name (last registration wins) and validates the adapter's catalog
// invariants: adapters with an empty catalog or a default profile outside
// the catalog fail registration instead of misbehaving later.
//
// The first successfully registered adapter becomes the default provider
// until SetDefaultProvider says otherwise.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if name == "" {
		return fmt.Errorf("routing: registry: adapter has empty name")
	}
	profiles := a.Profiles()
	if len(profiles) == 0 {
		return fmt.Errorf("routing: registry: %s: profile catalog is empty", name)
	}
	if !hasProfile(profiles, a.DefaultProfile()) {
		return fmt.Errorf("routing: registry: %s: default profile %q is not in the catalog",
			name, a.DefaultProfile())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = a
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// SetDefaultProvider changes the default provider. Administrative only; it
// is never called on the request path.
func (r *Registry) SetDefaultProvider(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[name]; !ok {
		return fmt.Errorf("routing: registry: set default %q: %w", name, ErrProviderNotFound)
	}
	r.defaultName = name
	return nil
}

// DefaultProvider returns the current default provider name.
func (r *Registry) DefaultProvider() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// Get looks up an adapter by name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Select resolves the adapter that serves req and validates the requested
// profile against that adapter's catalog. It performs no network I/O, so
// provider and profile errors always surface before any backend call.
//
// Errors:
//   - ErrProviderNotFound (wrapped) when req.Provider is unregistered, or
//     when the registry has no default provider at all.
//   - *InvalidProfileError when req.Profile is set but not in the catalog.
func (r *Registry) Select(req RouteRequest) (Adapter, error) {
	r.mu.RLock()
	name := req.Provider
	if name == "" {
		name = r.defaultName
	}
	a, ok := r.adapters[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("routing: registry: select %q: %w", name, ErrProviderNotFound)
	}

	if req.Profile != "" && !hasProfile(a.Profiles(), req.Profile) {
		return nil, &InvalidProfileError{
			Provider:      a.Name(),
			Profile:       req.Profile,
			ValidProfiles: profileIDs(a.Profiles()),
		}
	}
	return a, nil
}

// Profiles returns the named provider's catalog in display order.
func (r *Registry) Profiles(name string) ([]ProfileMetadata, error) {
	a, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("routing: registry: profiles %q: %w", name, ErrProviderNotFound)
	}
	return SortProfiles(a.Profiles()), nil
}

// IsValidProfile reports whether id is in the named provider's catalog.
// Unregistered providers have no valid profiles.
func (r *Registry) IsValidProfile(name, id string) bool {
	a, ok := r.Get(name)
	if !ok {
		return false
	}
	return hasProfile(a.Profiles(), id)
}

// AvailableProviders returns all registered adapters sorted by name.
// Tier-gating by plan is a documented extension point: current behavior
// exposes every provider to every plan, so the argument is unused.
func (r *Registry) AvailableProviders(_ Plan) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}
