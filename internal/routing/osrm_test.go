package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// osrmFixture is a trimmed real-shape OSRM response for a two-point cycling
// request across downtown San Francisco.
const osrmFixture = `{
  "code": "Ok",
  "routes": [{
    "distance": 1893.2,
    "duration": 476.8,
    "weight": 476.8,
    "weight_name": "duration",
    "geometry": {"type": "LineString", "coordinates": [[-122.4194,37.7749],[-122.4153,37.7789],[-122.4084,37.7849]]},
    "legs": [{
      "distance": 1893.2,
      "duration": 476.8,
      "summary": "Market Street, Sutter Street",
      "steps": [
        {"distance": 900, "duration": 240, "name": "Market Street", "mode": "cycling",
         "geometry": {"coordinates": [[-122.4194,37.7749],[-122.4153,37.7789]]},
         "maneuver": {"type": "depart", "modifier": "", "location": [-122.4194,37.7749], "bearing_before": 0, "bearing_after": 39}},
        {"distance": 993.2, "duration": 236.8, "name": "Sutter Street", "mode": "cycling",
         "geometry": {"coordinates": [[-122.4153,37.7789],[-122.4084,37.7849]]},
         "maneuver": {"type": "turn", "modifier": "right", "location": [-122.4153,37.7789], "bearing_before": 39, "bearing_after": 42}}
      ]
    }]
  }],
  "waypoints": [
    {"name": "Market Street", "location": [-122.4194,37.7749]},
    {"name": "Sutter Street", "location": [-122.4084,37.7849]}
  ]
}`

func testRouteRequest() RouteRequest {
	return RouteRequest{
		Waypoints: []Coordinate{
			{Latitude: 37.7749, Longitude: -122.4194},
			{Latitude: 37.7849, Longitude: -122.4084},
		},
	}
}

func newOSRMTestAdapter(t *testing.T, handler http.HandlerFunc) (*OSRMAdapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewOSRMAdapter(OSRMConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewOSRMAdapter: %v", err)
	}
	return a, srv
}

func TestOSRM_CalculateRoute_Success(t *testing.T) {
	var gotPath string
	a, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(osrmFixture))
	})

	req := testRouteRequest()
	req.Profile = "cycling"

	resp, err := a.CalculateRoute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Catalog id "cycling" maps to OSRM's "bike" graph.
	if !strings.HasPrefix(gotPath, "/route/v1/bike/") {
		t.Errorf("request path = %q, want /route/v1/bike/...", gotPath)
	}

	if resp.Code != "Ok" {
		t.Errorf("code = %q, want Ok", resp.Code)
	}
	if resp.Provider != "osrm" {
		t.Errorf("provider = %q, want osrm", resp.Provider)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(resp.Routes))
	}

	route := resp.Routes[0]
	if route.Distance != 1893.2 || route.Duration != 476.8 {
		t.Errorf("distance/duration = %f/%f", route.Distance, route.Duration)
	}
	if route.WeightName != "duration" {
		t.Errorf("weight_name = %q", route.WeightName)
	}
	if len(route.Geometry) != 3 {
		t.Errorf("geometry has %d points, want 3", len(route.Geometry))
	}
	if len(route.Legs) != 1 || len(route.Legs[0].Steps) != 2 {
		t.Fatalf("legs/steps shape wrong: %+v", route.Legs)
	}
	step := route.Legs[0].Steps[1]
	if step.Maneuver.Type != "turn" || step.Maneuver.Modifier != "right" {
		t.Errorf("maneuver = %+v", step.Maneuver)
	}

	// Waypoints come from the request, not the backend's street names.
	if len(resp.Waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2", len(resp.Waypoints))
	}
	if resp.Waypoints[0].Name != "Origin" || resp.Waypoints[1].Name != "Destination" {
		t.Errorf("waypoint names = %q, %q", resp.Waypoints[0].Name, resp.Waypoints[1].Name)
	}
}

func TestOSRM_CalculateRoute_DefaultProfile(t *testing.T) {
	var gotPath string
	a, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(osrmFixture))
	})

	// No profile in the request: the adapter substitutes its default.
	if _, err := a.CalculateRoute(context.Background(), testRouteRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/route/v1/bike/") {
		t.Errorf("request path = %q, want default cycling profile (bike)", gotPath)
	}
}

func TestOSRM_CalculateRoute_NoRoute(t *testing.T) {
	a, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	})

	_, err := a.CalculateRoute(context.Background(), testRouteRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Kind != KindNoRouteFound {
		t.Errorf("kind = %s, want %s", provErr.Kind, KindNoRouteFound)
	}
	if provErr.Provider != "osrm" {
		t.Errorf("provider = %q, want osrm", provErr.Provider)
	}
}

func TestOSRM_CalculateRoute_RateLimited(t *testing.T) {
	a, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := a.CalculateRoute(context.Background(), testRouteRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Kind != KindRateLimited {
		t.Errorf("error = %v, want RateLimited ProviderError", err)
	}
}

func TestOSRM_CalculateRoute_BackendDown(t *testing.T) {
	a, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := a.CalculateRoute(context.Background(), testRouteRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Kind != KindUnavailable {
		t.Errorf("kind = %s, want %s", provErr.Kind, KindUnavailable)
	}
	if !provErr.Retriable() {
		t.Error("backend-down error should be retriable")
	}
}

func TestOSRM_CalculateRoute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(osrmFixture))
	}))
	t.Cleanup(srv.Close)

	a, err := NewOSRMAdapter(OSRMConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewOSRMAdapter: %v", err)
	}

	_, err = a.CalculateRoute(context.Background(), testRouteRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Kind != KindTimeout {
		t.Errorf("kind = %s, want %s", provErr.Kind, KindTimeout)
	}
	if !provErr.Retriable() {
		t.Error("timeout should be retriable")
	}
}

func TestOSRM_IsAvailable(t *testing.T) {
	up, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(osrmFixture))
	})
	if !up.IsAvailable(context.Background()) {
		t.Error("healthy backend reported unavailable")
	}

	down, _ := newOSRMTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if down.IsAvailable(context.Background()) {
		t.Error("broken backend reported available")
	}
}
