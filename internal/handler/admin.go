package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velotrack/routing-api/internal/routing"
)

// setDefaultProviderRequest is the JSON body for the admin default switch.
type setDefaultProviderRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// SetDefaultProvider handles PUT /api/routing/admin/default-provider.
// Admin-only; changes which provider serves requests that carry no explicit
// "provider" field. This is the sole runtime mutation of the registry.
func (h *Handler) SetDefaultProvider(c *gin.Context) {
	var body setDefaultProviderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "InvalidInput",
			"message": "provider field is required",
		})
		return
	}

	if err := h.directions.SetDefaultProvider(body.Provider); err != nil {
		if errors.Is(err, routing.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "ProviderNotFound",
				"message": "the requested routing provider is not registered",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "Error",
			"message": "failed to set default provider",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"defaultProvider": body.Provider})
}
