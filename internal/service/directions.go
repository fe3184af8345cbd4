// Package service orchestrates the routing core behind the HTTP layer:
// provider selection and calculation for the directions endpoint, and the
// concurrent health fan-out for the providers listing.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/velotrack/routing-api/internal/routing"
)

// healthCheckTimeout bounds each provider's availability probe during the
// providers listing. Every probe runs under its own deadline, so one hung
// backend delays the listing by at most this long.
const healthCheckTimeout = 3 * time.Second

// Logger is a printf-style logging function injected into the service.
// Using a function type (rather than an interface) keeps the dependency
// minimal and makes test doubles trivial to write.
type Logger func(format string, args ...any)

// ProviderStatus describes one registered provider for client UIs.
type ProviderStatus struct {
	Name           string                    `json:"name"`
	DisplayName    string                    `json:"displayName"`
	Profiles       []routing.ProfileMetadata `json:"profiles"`
	DefaultProfile string                    `json:"defaultProfile"`
	Available      bool                      `json:"available"`
}

// DirectionsService drives registry → adapter for route calculation and
// fans out health checks for the providers listing. It holds no per-request
// state; every method is safe for concurrent use.
type DirectionsService struct {
	registry *routing.Registry
	logger   Logger // called when a backend call fails; nil = silent
}

// DirectionsOption configures a DirectionsService.
type DirectionsOption func(*DirectionsService)

// WithLogger sets a logger for failed backend calls. In production, pass a
// log.Printf-compatible function.
func WithLogger(l Logger) DirectionsOption {
	return func(s *DirectionsService) { s.logger = l }
}

// NewDirectionsService creates a DirectionsService over the given registry.
func NewDirectionsService(registry *routing.Registry, opts ...DirectionsOption) *DirectionsService {
	s := &DirectionsService{registry: registry}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Calculate resolves the adapter for req and performs the route calculation.
//
// Errors:
//   - routing.ErrProviderNotFound / *routing.InvalidProfileError from
//     selection, always before any network call.
//   - *routing.ProviderError from the adapter.
//
// No retries happen here; a backend failure surfaces to the caller
// immediately, which may reissue the request against another provider.
func (s *DirectionsService) Calculate(ctx context.Context, req routing.RouteRequest) (*routing.RouteResponse, error) {
	adapter, err := s.registry.Select(req)
	if err != nil {
		return nil, err
	}

	resp, err := adapter.CalculateRoute(ctx, req)
	if err != nil {
		if s.logger != nil {
			s.logger("service: directions: %s: calculate failed: %v", adapter.Name(), err)
		}
		return nil, err
	}
	return resp, nil
}

// ListProviders returns the status of every registered provider, plus the
// current default provider name. Availability probes run concurrently
// across all adapters and the listing waits for all of them to settle.
func (s *DirectionsService) ListProviders(ctx context.Context, plan routing.Plan) ([]ProviderStatus, string) {
	adapters := s.registry.AvailableProviders(plan)

	statuses := make([]ProviderStatus, len(adapters))
	var wg sync.WaitGroup
	for i, a := range adapters {
		statuses[i] = ProviderStatus{
			Name:           a.Name(),
			DisplayName:    a.DisplayName(),
			Profiles:       routing.SortProfiles(a.Profiles()),
			DefaultProfile: a.DefaultProfile(),
		}

		wg.Add(1)
		go func(i int, a routing.Adapter) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()
			statuses[i].Available = a.IsAvailable(probeCtx)
		}(i, a)
	}
	wg.Wait()

	return statuses, s.registry.DefaultProvider()
}

// ProviderProfiles returns the named provider's catalog in display order
// together with its default profile.
func (s *DirectionsService) ProviderProfiles(name string) ([]routing.ProfileMetadata, string, error) {
	profiles, err := s.registry.Profiles(name)
	if err != nil {
		return nil, "", err
	}
	adapter, _ := s.registry.Get(name)
	return profiles, adapter.DefaultProfile(), nil
}

// SetDefaultProvider forwards the administrative default switch to the
// registry.
func (s *DirectionsService) SetDefaultProvider(name string) error {
	return s.registry.SetDefaultProvider(name)
}
