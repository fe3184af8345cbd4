// Package handler contains the gin HTTP handlers for the routing API.
package handler

import (
	"github.com/velotrack/routing-api/internal/service"
)

// Handler holds the domain dependencies for all HTTP handlers.
// A single Handler is shared across all route groups; individual methods are
// registered as gin handler functions.
type Handler struct {
	directions *service.DirectionsService
}

// New creates a Handler with the given dependencies.
func New(directions *service.DirectionsService) *Handler {
	return &Handler{directions: directions}
}
