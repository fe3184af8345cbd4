package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const osrmDefaultBaseURL = "https://router.project-osrm.org"

// osrmProfiles is the catalog advertised by the OSRM adapter. The demo
// server exposes one routing graph per transport mode.
var osrmProfiles = []ProfileMetadata{
	{ID: "cycling", Title: "Cycling", Icon: "bike", Category: CategoryCycling,
		Description: "General-purpose bicycle routing on the OSM road network"},
	{ID: "walking", Title: "Walking", Icon: "walk", Category: CategoryWalking},
	{ID: "driving", Title: "Driving", Icon: "car", Category: CategoryDriving},
}

// osrmBackendProfiles maps catalog ids to the profile names OSRM uses in its
// request path. Every catalog id must appear here; NewOSRMAdapter enforces it.
var osrmBackendProfiles = map[string]string{
	"cycling": "bike",
	"walking": "foot",
	"driving": "car",
}

// OSRMConfig configures the OSRM adapter.
type OSRMConfig struct {
	// BaseURL of the OSRM HTTP server. Defaults to the public demo server.
	BaseURL string
	// Timeout bounds each routing call. Defaults to 5s.
	Timeout time.Duration
}

// OSRMAdapter routes against an OSRM HTTP server. OSRM's native response is
// already close to the canonical shape (GeoJSON geometry, OSRM maneuver
// vocabulary), so normalization is limited to waypoint synthesis, bearing
// normalization and provenance.
type OSRMAdapter struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOSRMAdapter creates the adapter, validating the catalog invariants.
func NewOSRMAdapter(cfg OSRMConfig) (*OSRMAdapter, error) {
	if err := validateCatalog("osrm", osrmProfiles, "cycling", osrmBackendProfiles); err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = osrmDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	return &OSRMAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: newBackendClient(timeout),
	}, nil
}

func (a *OSRMAdapter) Name() string                { return "osrm" }
func (a *OSRMAdapter) DisplayName() string         { return "OSRM" }
func (a *OSRMAdapter) Profiles() []ProfileMetadata { return osrmProfiles }
func (a *OSRMAdapter) DefaultProfile() string      { return "cycling" }

// CalculateRoute issues one GET against /route/v1/{profile}/{coords} and
// converts the result into the canonical shape.
func (a *OSRMAdapter) CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	profile := req.Profile
	if profile == "" {
		profile = a.DefaultProfile()
	}
	backendProfile, ok := osrmBackendProfiles[profile]
	if !ok {
		// The registry validates profiles before dispatch; reaching this
		// means a catalog/mapping bug, reported as such.
		return nil, providerErr("osrm", KindInvalidInput, "unmapped profile %q", profile)
	}

	coords := make([]string, len(req.Waypoints))
	for i, w := range req.Waypoints {
		coords[i] = fmt.Sprintf("%f,%f", w.Longitude, w.Latitude)
	}
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "true")
	q.Set("alternatives", "false")
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?%s",
		a.baseURL, backendProfile, strings.Join(coords, ";"), q.Encode())

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providerErr("osrm", KindUnknown, "create request: %v", err)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportErr("osrm", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportErr("osrm", err)
	}

	if kindErr := classifyHTTPStatus("osrm", httpResp.StatusCode); kindErr != nil {
		return nil, kindErr
	}

	var native osrmResponse
	if err := json.Unmarshal(respBytes, &native); err != nil {
		return nil, providerErr("osrm", KindUnknown, "unmarshal response: %v", err)
	}

	if native.Code != "Ok" {
		return nil, osrmCodeErr(native.Code, native.Message)
	}
	if len(native.Routes) == 0 {
		return nil, providerErr("osrm", KindNoRouteFound, "backend returned no routes")
	}

	return normalizeOSRM(&native, req.Waypoints), nil
}

// IsAvailable probes the backend with a fixed coordinate pair under a short
// deadline. Any error reads as unavailable; nothing propagates.
func (a *OSRMAdapter) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	_, err := a.CalculateRoute(ctx, healthRequest())
	return err == nil
}

// osrmCodeErr maps OSRM's JSON error codes onto the canonical taxonomy.
func osrmCodeErr(code, message string) *ProviderError {
	var kind ErrorKind
	switch code {
	case "NoRoute", "NoSegment":
		kind = KindNoRouteFound
	case "InvalidUrl", "InvalidService", "InvalidVersion", "InvalidOptions",
		"InvalidQuery", "InvalidValue", "TooBig":
		kind = KindInvalidInput
	default:
		kind = KindUnknown
	}
	return providerErr("osrm", kind, "backend code %s: %s", code, message)
}

// normalizeOSRM converts a native OSRM response into the canonical shape.
// OSRM already emits legs/steps with the canonical maneuver vocabulary;
// bearings are re-normalized defensively and waypoints are synthesized from
// the request per the interop contract.
func normalizeOSRM(native *osrmResponse, waypoints []Coordinate) *RouteResponse {
	routes := make([]Route, len(native.Routes))
	for i, nr := range native.Routes {
		legs := make([]RouteLeg, len(nr.Legs))
		for j, nl := range nr.Legs {
			steps := make([]RouteStep, len(nl.Steps))
			for k, ns := range nl.Steps {
				steps[k] = RouteStep{
					Distance: ns.Distance,
					Duration: ns.Duration,
					Geometry: ns.Geometry.Coordinates,
					Name:     ns.Name,
					Mode:     ns.Mode,
					Maneuver: Maneuver{
						Type:          ns.Maneuver.Type,
						Instruction:   osrmInstruction(ns.Maneuver.Type, ns.Maneuver.Modifier, ns.Name),
						BearingBefore: normalizeBearing(ns.Maneuver.BearingBefore),
						BearingAfter:  normalizeBearing(ns.Maneuver.BearingAfter),
						Location:      ns.Maneuver.Location,
						Modifier:      ns.Maneuver.Modifier,
					},
				}
			}
			legs[j] = RouteLeg{
				Distance: nl.Distance,
				Duration: nl.Duration,
				Steps:    steps,
				Summary:  nl.Summary,
			}
		}
		if len(legs) == 0 {
			legs = singleLeg(nr.Distance, nr.Duration, "")
		}
		routes[i] = Route{
			Distance:   nr.Distance,
			Duration:   nr.Duration,
			Geometry:   nr.Geometry.Coordinates,
			Legs:       legs,
			Weight:     nr.Weight,
			WeightName: nr.WeightName,
		}
	}
	return &RouteResponse{
		Code:      "Ok",
		Routes:    routes,
		Waypoints: synthesizeWaypoints(waypoints),
		Provider:  "osrm",
	}
}

// osrmInstruction builds a human-readable instruction; OSRM leaves phrasing
// to the client, so this is a plain composition of type, modifier and road.
func osrmInstruction(manType, modifier, road string) string {
	parts := []string{manType}
	if modifier != "" {
		parts = append(parts, modifier)
	}
	s := strings.Join(parts, " ")
	if road != "" {
		s += " onto " + road
	}
	return s
}

// classifyHTTPStatus maps transport-agnostic HTTP statuses onto the
// canonical taxonomy. 4xx statuses with vendor payloads are handled by the
// per-adapter code paths; this covers the shared cases. Returns nil for 2xx
// and for 400 (vendor payload expected).
func classifyHTTPStatus(provider string, status int) *ProviderError {
	switch {
	case status == http.StatusOK || status == http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providerErr(provider, KindUnauthorized, "backend rejected credentials (status %d)", status)
	case status == http.StatusTooManyRequests:
		return providerErr(provider, KindRateLimited, "backend throttled the request")
	case status >= 500:
		return providerErr(provider, KindUnavailable, "backend returned status %d", status)
	default:
		return providerErr(provider, KindUnknown, "unexpected backend status %d", status)
	}
}

// --- JSON types for the OSRM HTTP API ---

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance   float64      `json:"distance"`
	Duration   float64      `json:"duration"`
	Weight     float64      `json:"weight"`
	WeightName string       `json:"weight_name"`
	Geometry   osrmGeometry `json:"geometry"`
	Legs       []osrmLeg    `json:"legs"`
}

type osrmGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type osrmLeg struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Summary  string     `json:"summary"`
	Steps    []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Name     string       `json:"name"`
	Mode     string       `json:"mode"`
	Geometry osrmGeometry `json:"geometry"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Type          string    `json:"type"`
	Modifier      string    `json:"modifier"`
	Location      []float64 `json:"location"`
	BearingBefore float64   `json:"bearing_before"`
	BearingAfter  float64   `json:"bearing_after"`
}
