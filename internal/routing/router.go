// Package routing defines the canonical multi-provider routing contract:
// the request/response shapes shared by every backend adapter, the Adapter
// interface itself, and the registry that selects among adapters.
package routing

import (
	"context"
	"net/http"
	"time"
)

const (
	// defaultRouteTimeout is the maximum duration for a backend routing call.
	defaultRouteTimeout = 5 * time.Second

	// healthCheckTimeout bounds the synthetic route used by IsAvailable.
	healthCheckTimeout = 3 * time.Second

	// httpMaxIdleConns is the maximum number of idle (keep-alive) connections
	// kept in the transport pool across all hosts.
	httpMaxIdleConns = 10

	// httpIdleConnTimeout is how long an idle connection is kept in the pool
	// before being closed. 30 s is a safe value for APIs that enforce shorter
	// server-side keep-alive timeouts.
	httpIdleConnTimeout = 30 * time.Second
)

// healthCheckOrigin/healthCheckDestination are a fixed, known-good coordinate
// pair (downtown San Francisco, ~1.5 km apart) used for synthetic health
// probes against every backend.
var (
	healthCheckOrigin      = Coordinate{Latitude: 37.7749, Longitude: -122.4194}
	healthCheckDestination = Coordinate{Latitude: 37.7849, Longitude: -122.4084}
)

// Coordinate is a WGS-84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies in the WGS-84 domain.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Plan identifies the caller's subscription tier. Providers are currently
// available to all plans; the field exists so tier-gating can be added in
// Registry.AvailableProviders without touching the adapters.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// RouteRequest is a canonical directions request, built once per inbound
// HTTP call and never persisted.
type RouteRequest struct {
	// Waypoints are visited in order; at least two are required.
	Waypoints []Coordinate

	// Profile is a provider-scoped routing profile id. Empty means the
	// selected adapter's default profile.
	Profile string

	// Provider names the adapter that should serve the request. Empty means
	// the registry's default provider.
	Provider string

	// UserID and UserPlan come from the auth layer when enabled.
	UserID   string
	UserPlan Plan
}

// ProfileCategory groups profiles for presentation.
type ProfileCategory string

const (
	CategoryCycling ProfileCategory = "cycling"
	CategoryWalking ProfileCategory = "walking"
	CategoryDriving ProfileCategory = "driving"
	CategoryOther   ProfileCategory = "other"
)

// ProfileMetadata describes one routing profile in a provider's catalog.
// Catalogs are fixed at adapter construction time.
type ProfileMetadata struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Icon        string          `json:"icon"`
	Category    ProfileCategory `json:"category"`
	Description string          `json:"description,omitempty"`
}

// RouteResponse is the canonical route response every adapter produces,
// regardless of backend. Code is "Ok" if and only if Routes is non-empty.
// Routes are ordered best-to-worst by the provider's own ranking.
type RouteResponse struct {
	Code      string     `json:"code"`
	Routes    []Route    `json:"routes"`
	Waypoints []Waypoint `json:"waypoints"`
	Provider  string     `json:"provider"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Route is one complete path through all waypoints.
type Route struct {
	Distance   float64     `json:"distance"` // meters
	Duration   float64     `json:"duration"` // seconds
	Geometry   [][]float64 `json:"geometry"` // [lon,lat] pairs
	Legs       []RouteLeg  `json:"legs"`
	Weight     float64     `json:"weight"`
	WeightName string      `json:"weight_name"`
}

// RouteLeg is the portion of a route between two consecutive waypoints.
type RouteLeg struct {
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Steps    []RouteStep `json:"steps"`
	Summary  string      `json:"summary"`
}

// RouteStep is a single turn-by-turn instruction within a leg.
type RouteStep struct {
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
	Geometry [][]float64 `json:"geometry"`
	Name     string      `json:"name"`
	Mode     string      `json:"mode"`
	Maneuver Maneuver    `json:"maneuver"`
}

// Maneuver describes the action taken at the start of a step. Bearings are
// always normalized to [0,360) degrees; the first point of a route has
// bearing_before 0 and the last point bearing_after 0.
type Maneuver struct {
	Type          string    `json:"type"`
	Instruction   string    `json:"instruction"`
	BearingBefore float64   `json:"bearing_before"`
	BearingAfter  float64   `json:"bearing_after"`
	Location      []float64 `json:"location"` // [lon,lat]
	Modifier      string    `json:"modifier,omitempty"`
}

// Waypoint echoes one requested coordinate back to the caller. Waypoints are
// always synthesized from the original request, never taken from the backend.
type Waypoint struct {
	Name     string    `json:"name"`
	Location []float64 `json:"location"` // [lon,lat]
	Distance float64   `json:"distance,omitempty"`
}

// Adapter is implemented once per routing backend. Implementations translate
// the canonical request into the backend's wire format, issue one outbound
// HTTP call bounded by a timeout, and map backend failures onto the
// canonical error taxonomy (see errors.go).
//
// The profile catalog and default profile are fixed at construction time;
// Registry.Register enforces the catalog invariants.
type Adapter interface {
	// Name is the unique registry key, e.g. "osrm".
	Name() string

	// DisplayName is the human-readable provider name for client UIs.
	DisplayName() string

	// Profiles returns the adapter's full profile catalog.
	Profiles() []ProfileMetadata

	// DefaultProfile is the profile used when the request carries none.
	// It always appears in Profiles().
	DefaultProfile() string

	// CalculateRoute issues one backend call and returns the canonical
	// response, or a *ProviderError. The request's profile has already been
	// validated by the registry; an empty profile means the default.
	CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error)

	// IsAvailable performs a short synthetic routing call and reports
	// whether the backend answered. Errors are swallowed; this informs
	// status displays only and never blocks the request path.
	IsAvailable(ctx context.Context) bool
}

// newBackendClient builds the HTTP client shared by all adapters: pooled
// keep-alive connections and a hard client-side timeout as a backstop for
// the per-request context deadline.
func newBackendClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        httpMaxIdleConns,
			MaxIdleConnsPerHost: httpMaxIdleConns,
			IdleConnTimeout:     httpIdleConnTimeout,
		},
	}
}

// healthRequest is the synthetic request used by adapter health checks.
func healthRequest() RouteRequest {
	return RouteRequest{Waypoints: []Coordinate{healthCheckOrigin, healthCheckDestination}}
}
