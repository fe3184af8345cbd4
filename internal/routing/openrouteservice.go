package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const orsDefaultBaseURL = "https://api.openrouteservice.org"

var orsProfiles = []ProfileMetadata{
	{ID: "cycling-regular", Title: "Cycling", Icon: "bike", Category: CategoryCycling,
		Description: "Balanced bicycle routing on mixed surfaces"},
	{ID: "cycling-road", Title: "Road Cycling", Icon: "road-bike", Category: CategoryCycling,
		Description: "Prefers paved roads and avoids unpaved surfaces"},
	{ID: "cycling-mountain", Title: "Mountain Biking", Icon: "mtb", Category: CategoryCycling,
		Description: "Allows tracks and trails"},
	{ID: "cycling-electric", Title: "E-Bike", Icon: "ebike", Category: CategoryCycling},
	{ID: "foot-walking", Title: "Walking", Icon: "walk", Category: CategoryWalking},
	{ID: "foot-hiking", Title: "Hiking", Icon: "hike", Category: CategoryWalking},
	{ID: "driving-car", Title: "Driving", Icon: "car", Category: CategoryDriving},
}

// ORS uses the catalog ids verbatim in its request path, so the backend
// mapping is the identity. It still exists so the exhaustiveness check in
// validateCatalog covers this adapter the same way as the others.
var orsBackendProfiles = map[string]string{
	"cycling-regular":  "cycling-regular",
	"cycling-road":     "cycling-road",
	"cycling-mountain": "cycling-mountain",
	"cycling-electric": "cycling-electric",
	"foot-walking":     "foot-walking",
	"foot-hiking":      "foot-hiking",
	"driving-car":      "driving-car",
}

// orsManeuvers translates OpenRouteService's integer instruction types into
// the canonical {type, modifier} vocabulary. The table is total over the
// documented 0–13 range; unknown future codes fall back to a plain turn.
var orsManeuvers = map[int]Maneuver{
	0:  {Type: "turn", Modifier: "left"},
	1:  {Type: "turn", Modifier: "right"},
	2:  {Type: "turn", Modifier: "sharp left"},
	3:  {Type: "turn", Modifier: "sharp right"},
	4:  {Type: "turn", Modifier: "slight left"},
	5:  {Type: "turn", Modifier: "slight right"},
	6:  {Type: "continue", Modifier: "straight"},
	7:  {Type: "roundabout"},
	8:  {Type: "exit roundabout"},
	9:  {Type: "turn", Modifier: "uturn"},
	10: {Type: "arrive"},
	11: {Type: "depart"},
	12: {Type: "fork", Modifier: "slight left"},
	13: {Type: "fork", Modifier: "slight right"},
}

// ORSConfig configures the OpenRouteService adapter.
type ORSConfig struct {
	// APIKey authenticates against the ORS API. Required.
	APIKey string
	// BaseURL overrides the public API host, e.g. for a self-hosted
	// instance or a test server.
	BaseURL string
	// Timeout bounds each routing call. Defaults to 5s.
	Timeout time.Duration
}

// ORSAdapter routes against the OpenRouteService directions API. The native
// response differs materially from the canonical shape — encoded polyline
// geometry, segment/step nesting addressed by shape indexes, and integer
// instruction types — so this adapter leans on the normalizer for all of it.
type ORSAdapter struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewORSAdapter creates the adapter, validating the catalog invariants.
func NewORSAdapter(cfg ORSConfig) (*ORSAdapter, error) {
	if err := validateCatalog("openrouteservice", orsProfiles, "cycling-regular", orsBackendProfiles); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("routing: openrouteservice: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = orsDefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	return &ORSAdapter{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: newBackendClient(timeout),
	}, nil
}

func (a *ORSAdapter) Name() string                { return "openrouteservice" }
func (a *ORSAdapter) DisplayName() string         { return "OpenRouteService" }
func (a *ORSAdapter) Profiles() []ProfileMetadata { return orsProfiles }
func (a *ORSAdapter) DefaultProfile() string      { return "cycling-regular" }

// CalculateRoute POSTs to /v2/directions/{profile}/json and normalizes the
// response.
func (a *ORSAdapter) CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	profile := req.Profile
	if profile == "" {
		profile = a.DefaultProfile()
	}
	backendProfile, ok := orsBackendProfiles[profile]
	if !ok {
		return nil, providerErr("openrouteservice", KindInvalidInput, "unmapped profile %q", profile)
	}

	coords := make([][]float64, len(req.Waypoints))
	for i, w := range req.Waypoints {
		coords[i] = []float64{w.Longitude, w.Latitude}
	}
	body, err := json.Marshal(orsRequest{Coordinates: coords, Instructions: true})
	if err != nil {
		return nil, providerErr("openrouteservice", KindUnknown, "marshal request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v2/directions/%s/json", a.baseURL, backendProfile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, providerErr("openrouteservice", KindUnknown, "create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", a.apiKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportErr("openrouteservice", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportErr("openrouteservice", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, orsStatusErr(httpResp.StatusCode, respBytes)
	}

	var native orsResponse
	if err := json.Unmarshal(respBytes, &native); err != nil {
		return nil, providerErr("openrouteservice", KindUnknown, "unmarshal response: %v", err)
	}
	if len(native.Routes) == 0 {
		return nil, providerErr("openrouteservice", KindNoRouteFound, "backend returned no routes")
	}

	return normalizeORS(&native, req.Waypoints)
}

// IsAvailable probes the backend with a fixed coordinate pair under a short
// deadline. Any error reads as unavailable; nothing propagates.
func (a *ORSAdapter) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	_, err := a.CalculateRoute(ctx, healthRequest())
	return err == nil
}

// orsStatusErr maps a non-200 ORS response onto the canonical taxonomy.
// ORS embeds numeric error codes in the body; those take precedence over
// the HTTP status because no-route arrives as a 404.
func orsStatusErr(status int, body []byte) *ProviderError {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Code != 0 {
		var kind ErrorKind
		switch payload.Error.Code {
		case 2009, 2010: // no route between locations / point not found
			kind = KindNoRouteFound
		case 2000, 2001, 2002, 2003, 2004, 2005, 2006, 2008:
			kind = KindInvalidInput
		default:
			kind = KindUnknown
		}
		return providerErr("openrouteservice", kind, "backend code %d: %s",
			payload.Error.Code, payload.Error.Message)
	}
	if kindErr := classifyHTTPStatus("openrouteservice", status); kindErr != nil {
		return kindErr
	}
	return providerErr("openrouteservice", KindUnknown, "backend returned status %d", status)
}

// normalizeORS converts a native ORS response into the canonical shape:
// decodes the precision-5 polyline into [lon,lat] geometry, maps segments to
// legs and steps 1:1, translates instruction types, and computes bearings
// from the geometry since ORS does not supply them.
func normalizeORS(native *orsResponse, waypoints []Coordinate) (*RouteResponse, error) {
	routes := make([]Route, len(native.Routes))
	var warnings []string
	for i, nr := range native.Routes {
		geometry, err := decodePolyline(nr.Geometry, polylinePrecision5)
		if err != nil {
			return nil, providerErr("openrouteservice", KindUnknown, "route geometry: %v", err)
		}

		legs := make([]RouteLeg, len(nr.Segments))
		for j, seg := range nr.Segments {
			steps := make([]RouteStep, len(seg.Steps))
			for k, st := range seg.Steps {
				start, end := 0, 0
				if len(st.WayPoints) == 2 {
					start, end = st.WayPoints[0], st.WayPoints[1]
				}
				man := orsManeuver(st.Type)
				man.Instruction = st.Instruction
				if start >= 0 && start < len(geometry) {
					man.Location = geometry[start]
					man.BearingBefore, man.BearingAfter = bearingsAt(geometry, start)
				}
				steps[k] = RouteStep{
					Distance: st.Distance,
					Duration: st.Duration,
					Geometry: sliceGeometry(geometry, start, end),
					Name:     st.Name,
					Mode:     "default",
					Maneuver: man,
				}
			}
			legs[j] = RouteLeg{
				Distance: seg.Distance,
				Duration: seg.Duration,
				Steps:    steps,
			}
		}
		if len(legs) == 0 {
			legs = singleLeg(nr.Summary.Distance, nr.Summary.Duration, "")
		}

		routes[i] = Route{
			Distance:   nr.Summary.Distance,
			Duration:   nr.Summary.Duration,
			Geometry:   geometry,
			Legs:       legs,
			Weight:     nr.Summary.Duration,
			WeightName: "duration",
		}
		for _, w := range nr.Warnings {
			warnings = append(warnings, w.Message)
		}
	}
	return &RouteResponse{
		Code:      "Ok",
		Routes:    routes,
		Waypoints: synthesizeWaypoints(waypoints),
		Provider:  "openrouteservice",
		Warnings:  warnings,
	}, nil
}

// orsManeuver looks up the canonical maneuver for an ORS instruction type.
// Unknown codes degrade to a plain turn rather than failing the response.
func orsManeuver(instructionType int) Maneuver {
	if m, ok := orsManeuvers[instructionType]; ok {
		return m
	}
	return Maneuver{Type: "turn"}
}

// --- JSON types for the OpenRouteService directions API ---

type orsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
}

type orsResponse struct {
	Routes []orsRoute `json:"routes"`
}

type orsRoute struct {
	Summary  orsSummary   `json:"summary"`
	Geometry string       `json:"geometry"` // encoded polyline, precision 5
	Segments []orsSegment `json:"segments"`
	Warnings []orsWarning `json:"warnings"`
}

type orsSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type orsSegment struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Steps    []orsStep `json:"steps"`
}

type orsStep struct {
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Type        int     `json:"type"`
	Instruction string  `json:"instruction"`
	Name        string  `json:"name"`
	WayPoints   []int   `json:"way_points"`
}

type orsWarning struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
