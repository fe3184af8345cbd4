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

var valhallaProfiles = []ProfileMetadata{
	{ID: "bicycle", Title: "Cycling", Icon: "bike", Category: CategoryCycling,
		Description: "Bicycle costing with surface and hill penalties"},
	{ID: "pedestrian", Title: "Walking", Icon: "walk", Category: CategoryWalking},
	{ID: "auto", Title: "Driving", Icon: "car", Category: CategoryDriving},
	{ID: "motor_scooter", Title: "Scooter", Icon: "scooter", Category: CategoryOther},
}

// Valhalla costing names match the catalog ids; the identity mapping keeps
// the exhaustiveness check uniform across adapters.
var valhallaBackendProfiles = map[string]string{
	"bicycle":       "bicycle",
	"pedestrian":    "pedestrian",
	"auto":          "auto",
	"motor_scooter": "motor_scooter",
}

// valhallaManeuvers translates Valhalla's numeric maneuver types into the
// canonical {type, modifier} vocabulary. Unknown codes fall back to a plain
// turn.
var valhallaManeuvers = map[int]Maneuver{
	1:  {Type: "depart"},
	2:  {Type: "depart", Modifier: "right"},
	3:  {Type: "depart", Modifier: "left"},
	4:  {Type: "arrive"},
	5:  {Type: "arrive", Modifier: "right"},
	6:  {Type: "arrive", Modifier: "left"},
	7:  {Type: "new name", Modifier: "straight"},
	8:  {Type: "continue", Modifier: "straight"},
	9:  {Type: "turn", Modifier: "slight right"},
	10: {Type: "turn", Modifier: "right"},
	11: {Type: "turn", Modifier: "sharp right"},
	12: {Type: "turn", Modifier: "uturn"},
	13: {Type: "turn", Modifier: "uturn"},
	14: {Type: "turn", Modifier: "sharp left"},
	15: {Type: "turn", Modifier: "left"},
	16: {Type: "turn", Modifier: "slight left"},
	17: {Type: "on ramp", Modifier: "straight"},
	18: {Type: "on ramp", Modifier: "right"},
	19: {Type: "on ramp", Modifier: "left"},
	20: {Type: "off ramp", Modifier: "right"},
	21: {Type: "off ramp", Modifier: "left"},
	22: {Type: "fork", Modifier: "straight"},
	23: {Type: "fork", Modifier: "right"},
	24: {Type: "fork", Modifier: "left"},
	25: {Type: "merge"},
	26: {Type: "roundabout"},
	27: {Type: "exit roundabout"},
	28: {Type: "continue"}, // ferry enter
	29: {Type: "continue"}, // ferry exit
}

// ValhallaConfig configures the Valhalla adapter.
type ValhallaConfig struct {
	// BaseURL of the Valhalla server. Required; there is no public default.
	BaseURL string
	// Timeout bounds each routing call. Defaults to 5s.
	Timeout time.Duration
}

// ValhallaAdapter routes against a Valhalla server. Valhalla returns one
// encoded shape per leg at precision 6 and numeric maneuver types, both of
// which go through the normalizer.
type ValhallaAdapter struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewValhallaAdapter creates the adapter, validating the catalog invariants.
func NewValhallaAdapter(cfg ValhallaConfig) (*ValhallaAdapter, error) {
	if err := validateCatalog("valhalla", valhallaProfiles, "bicycle", valhallaBackendProfiles); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("routing: valhalla: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	return &ValhallaAdapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: newBackendClient(timeout),
	}, nil
}

func (a *ValhallaAdapter) Name() string                { return "valhalla" }
func (a *ValhallaAdapter) DisplayName() string         { return "Valhalla" }
func (a *ValhallaAdapter) Profiles() []ProfileMetadata { return valhallaProfiles }
func (a *ValhallaAdapter) DefaultProfile() string      { return "bicycle" }

// CalculateRoute POSTs to /route and normalizes the trip response.
func (a *ValhallaAdapter) CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	profile := req.Profile
	if profile == "" {
		profile = a.DefaultProfile()
	}
	costing, ok := valhallaBackendProfiles[profile]
	if !ok {
		return nil, providerErr("valhalla", KindInvalidInput, "unmapped profile %q", profile)
	}

	locations := make([]valhallaLocation, len(req.Waypoints))
	for i, w := range req.Waypoints {
		locations[i] = valhallaLocation{Lat: w.Latitude, Lon: w.Longitude}
	}
	body, err := json.Marshal(valhallaRequest{
		Locations: locations,
		Costing:   costing,
		Units:     "kilometers",
	})
	if err != nil {
		return nil, providerErr("valhalla", KindUnknown, "marshal request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/route", bytes.NewReader(body))
	if err != nil {
		return nil, providerErr("valhalla", KindUnknown, "create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportErr("valhalla", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportErr("valhalla", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, valhallaStatusErr(httpResp.StatusCode, respBytes)
	}

	var native valhallaResponse
	if err := json.Unmarshal(respBytes, &native); err != nil {
		return nil, providerErr("valhalla", KindUnknown, "unmarshal response: %v", err)
	}
	if len(native.Trip.Legs) == 0 {
		return nil, providerErr("valhalla", KindNoRouteFound, "backend returned no legs")
	}

	return normalizeValhalla(&native, req.Waypoints)
}

// IsAvailable probes the backend with a fixed coordinate pair under a short
// deadline. Any error reads as unavailable; nothing propagates.
func (a *ValhallaAdapter) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	_, err := a.CalculateRoute(ctx, healthRequest())
	return err == nil
}

// valhallaStatusErr maps a non-200 Valhalla response onto the canonical
// taxonomy using the embedded error_code when present.
func valhallaStatusErr(status int, body []byte) *ProviderError {
	var payload struct {
		ErrorCode int    `json:"error_code"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrorCode != 0 {
		var kind ErrorKind
		switch {
		case payload.ErrorCode >= 440 && payload.ErrorCode <= 445:
			// "no path could be found" family
			kind = KindNoRouteFound
		case status == http.StatusBadRequest:
			kind = KindInvalidInput
		default:
			kind = KindUnknown
		}
		return providerErr("valhalla", kind, "backend code %d: %s", payload.ErrorCode, payload.Error)
	}
	if kindErr := classifyHTTPStatus("valhalla", status); kindErr != nil {
		return kindErr
	}
	return providerErr("valhalla", KindInvalidInput, "backend returned status %d", status)
}

// normalizeValhalla converts a trip response into the canonical shape: legs
// map 1:1 to canonical legs, maneuvers 1:1 to steps, per-leg precision-6
// shapes are decoded and concatenated into the route geometry, and lengths
// are converted from kilometers to meters.
func normalizeValhalla(native *valhallaResponse, waypoints []Coordinate) (*RouteResponse, error) {
	trip := native.Trip

	var geometry [][]float64
	legs := make([]RouteLeg, len(trip.Legs))
	for i, nl := range trip.Legs {
		legGeom, err := decodePolyline(nl.Shape, polylinePrecision6)
		if err != nil {
			return nil, providerErr("valhalla", KindUnknown, "leg %d shape: %v", i, err)
		}

		steps := make([]RouteStep, len(nl.Maneuvers))
		for j, m := range nl.Maneuvers {
			man := valhallaManeuver(m.Type)
			man.Instruction = m.Instruction
			if m.BeginShapeIndex >= 0 && m.BeginShapeIndex < len(legGeom) {
				man.Location = legGeom[m.BeginShapeIndex]
				man.BearingBefore, man.BearingAfter = bearingsAt(legGeom, m.BeginShapeIndex)
			}
			name := ""
			if len(m.StreetNames) > 0 {
				name = m.StreetNames[0]
			}
			mode := m.TravelMode
			if mode == "" {
				mode = "default"
			}
			steps[j] = RouteStep{
				Distance: m.Length * 1000,
				Duration: m.Time,
				Geometry: sliceGeometry(legGeom, m.BeginShapeIndex, m.EndShapeIndex),
				Name:     name,
				Mode:     mode,
				Maneuver: man,
			}
		}

		legs[i] = RouteLeg{
			Distance: nl.Summary.Length * 1000,
			Duration: nl.Summary.Time,
			Steps:    steps,
		}

		// Adjacent legs share their boundary point; skip it when stitching
		// the full route geometry.
		if i > 0 && len(legGeom) > 0 {
			legGeom = legGeom[1:]
		}
		geometry = append(geometry, legGeom...)
	}

	route := Route{
		Distance:   trip.Summary.Length * 1000,
		Duration:   trip.Summary.Time,
		Geometry:   geometry,
		Legs:       legs,
		Weight:     trip.Summary.Time,
		WeightName: "duration",
	}

	return &RouteResponse{
		Code:      "Ok",
		Routes:    []Route{route},
		Waypoints: synthesizeWaypoints(waypoints),
		Provider:  "valhalla",
	}, nil
}

// valhallaManeuver looks up the canonical maneuver for a Valhalla type code.
func valhallaManeuver(code int) Maneuver {
	if m, ok := valhallaManeuvers[code]; ok {
		return m
	}
	return Maneuver{Type: "turn"}
}

// --- JSON types for the Valhalla route API ---

type valhallaRequest struct {
	Locations []valhallaLocation `json:"locations"`
	Costing   string             `json:"costing"`
	Units     string             `json:"units"`
}

type valhallaLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type valhallaResponse struct {
	Trip valhallaTrip `json:"trip"`
}

type valhallaTrip struct {
	Legs    []valhallaLeg   `json:"legs"`
	Summary valhallaSummary `json:"summary"`
}

type valhallaLeg struct {
	Shape     string                 `json:"shape"`
	Summary   valhallaSummary        `json:"summary"`
	Maneuvers []valhallaTripManeuver `json:"maneuvers"`
}

type valhallaSummary struct {
	Length float64 `json:"length"` // kilometers
	Time   float64 `json:"time"`   // seconds
}

type valhallaTripManeuver struct {
	Type            int      `json:"type"`
	Instruction     string   `json:"instruction"`
	StreetNames     []string `json:"street_names"`
	Time            float64  `json:"time"`
	Length          float64  `json:"length"` // kilometers
	BeginShapeIndex int      `json:"begin_shape_index"`
	EndShapeIndex   int      `json:"end_shape_index"`
	TravelMode      string   `json:"travel_mode"`
}
