package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velotrack/routing-api/internal/middleware"
	"github.com/velotrack/routing-api/internal/routing"
)

// ListProviders handles GET /api/routing/providers.
//
// Response 200:
//
//	{"providers":[{"name","displayName","profiles":[...],"defaultProfile","available"}],
//	 "defaultProvider":"..."}
//
// Availability is probed live against every backend concurrently; the
// response waits for all probes to settle, each bounded by its own short
// deadline.
func (h *Handler) ListProviders(c *gin.Context) {
	plan := routing.Plan(c.GetString(middleware.ContextKeyPlan))
	providers, defaultProvider := h.directions.ListProviders(c.Request.Context(), plan)

	c.JSON(http.StatusOK, gin.H{
		"providers":       providers,
		"defaultProvider": defaultProvider,
	})
}

// GetProviderProfiles handles GET /api/routing/providers/:provider/profiles.
//
// Response 200: {"provider","profiles":[...sorted for display...],"defaultProfile"}.
// Response 404: the provider name is unregistered.
func (h *Handler) GetProviderProfiles(c *gin.Context) {
	name := c.Param("provider")

	profiles, defaultProfile, err := h.directions.ProviderProfiles(name)
	if err != nil {
		if errors.Is(err, routing.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "ProviderNotFound",
				"message": "the requested routing provider is not registered",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "Error",
			"message": "failed to list profiles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider":       name,
		"profiles":       profiles,
		"defaultProfile": defaultProfile,
	})
}
