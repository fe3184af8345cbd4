package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velotrack/routing-api/internal/middleware"
	"github.com/velotrack/routing-api/internal/routing"
)

// directionsRequest is the JSON body for POST /api/routing/directions.
type directionsRequest struct {
	Waypoints []routing.Coordinate `json:"waypoints"`
	Profile   string               `json:"profile"`
	Provider  string               `json:"provider"`
}

// CalculateDirections handles POST /api/routing/directions.
//
// Request body:
//
//	{"waypoints":[{"latitude":..,"longitude":..}, ...], "profile":"..", "provider":".."}
//
// waypoints requires at least two coordinates; profile and provider are
// optional and default to the selected provider's default profile and the
// registry's default provider.
//
// Responses:
//   - 200: canonical route response, including "provider" and optional "warnings".
//   - 400: malformed body/coordinates, or InvalidProfile with "availableProfiles".
//   - 404: ProviderNotFound.
//   - 503: backend timeout/unreachable, naming the failing provider.
//   - 500: unclassified failure, naming the provider when known.
func (h *Handler) CalculateDirections(c *gin.Context) {
	var body directionsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "InvalidInput",
			"message": "request body must be valid JSON with a waypoints array",
		})
		return
	}

	// Shape validation happens before the registry is consulted.
	if len(body.Waypoints) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "InvalidInput",
			"message": "at least 2 waypoints are required",
		})
		return
	}
	for i, w := range body.Waypoints {
		if !w.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "InvalidInput",
				"message": "waypoint coordinates out of range",
				"index":   i,
			})
			return
		}
	}

	req := routing.RouteRequest{
		Waypoints: body.Waypoints,
		Profile:   body.Profile,
		Provider:  body.Provider,
		UserID:    c.GetString(middleware.ContextKeyUserID),
		UserPlan:  routing.Plan(c.GetString(middleware.ContextKeyPlan)),
	}

	resp, err := h.directions.Calculate(c.Request.Context(), req)
	if err != nil {
		writeRoutingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// writeRoutingError maps core routing errors onto the HTTP error contract.
func writeRoutingError(c *gin.Context, err error) {
	var invalidProfile *routing.InvalidProfileError
	if errors.As(err, &invalidProfile) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":              "InvalidProfile",
			"message":           invalidProfile.Error(),
			"availableProfiles": invalidProfile.ValidProfiles,
		})
		return
	}

	if errors.Is(err, routing.ErrProviderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "ProviderNotFound",
			"message": "the requested routing provider is not registered",
		})
		return
	}

	var provErr *routing.ProviderError
	if errors.As(err, &provErr) {
		if provErr.Retriable() {
			// Network-level failure: the client may retry against another
			// provider by reissuing with a different "provider" field.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":     "ServiceUnavailable",
				"message":  "routing backend did not respond",
				"details":  provErr.Message,
				"provider": provErr.Provider,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":     "Error",
			"message":  provErr.Message,
			"provider": provErr.Provider,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "Error",
		"message": "failed to calculate route",
	})
}
