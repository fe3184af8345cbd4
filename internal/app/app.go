// Package app wires the application: adapters, registry, services, and the
// HTTP engine with its route table.
package app

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velotrack/routing-api/internal/config"
	"github.com/velotrack/routing-api/internal/handler"
	"github.com/velotrack/routing-api/internal/middleware"
	"github.com/velotrack/routing-api/internal/routing"
	"github.com/velotrack/routing-api/internal/service"
)

// requestDeadline bounds the whole inbound request. It sits comfortably
// above the per-backend route timeout so adapter errors surface as
// structured 5xx bodies rather than the middleware's generic timeout.
const requestDeadline = 10 * time.Second

// App holds the application-level dependencies.
type App struct {
	Router   *gin.Engine
	Registry *routing.Registry
	cfg      *config.Config
}

// New initializes the application: constructs one adapter per configured
// backend, registers them, wires the services, and configures the HTTP
// engine with routes.
func New(cfg *config.Config) (*App, error) {
	registry := routing.NewRegistry()

	// --- Provider adapters ---
	// OSRM is always registered: it has a public default base URL.
	osrm, err := routing.NewOSRMAdapter(routing.OSRMConfig{
		BaseURL: cfg.OSRMBaseURL,
		Timeout: cfg.RouteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("app: build osrm adapter: %w", err)
	}
	if err := registry.Register(osrm); err != nil {
		return nil, fmt.Errorf("app: register osrm: %w", err)
	}

	if cfg.ORSAPIKey != "" {
		ors, err := routing.NewORSAdapter(routing.ORSConfig{
			APIKey:  cfg.ORSAPIKey,
			BaseURL: cfg.ORSBaseURL,
			Timeout: cfg.RouteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("app: build openrouteservice adapter: %w", err)
		}
		if err := registry.Register(ors); err != nil {
			return nil, fmt.Errorf("app: register openrouteservice: %w", err)
		}
		log.Println("openrouteservice adapter registered")
	}

	if cfg.ValhallaBaseURL != "" {
		valhalla, err := routing.NewValhallaAdapter(routing.ValhallaConfig{
			BaseURL: cfg.ValhallaBaseURL,
			Timeout: cfg.RouteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("app: build valhalla adapter: %w", err)
		}
		if err := registry.Register(valhalla); err != nil {
			return nil, fmt.Errorf("app: register valhalla: %w", err)
		}
		log.Println("valhalla adapter registered")
	}

	if err := registry.SetDefaultProvider(cfg.DefaultProvider); err != nil {
		return nil, fmt.Errorf("app: default provider %q: %w", cfg.DefaultProvider, err)
	}

	// --- Domain dependencies ---
	directions := service.NewDirectionsService(registry, service.WithLogger(log.Printf))

	// --- HTTP engine ---
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Timeout(requestDeadline))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handler.New(directions)

	api := router.Group("/api/routing")
	if cfg.JWTSecret != "" {
		validator := service.NewTokenValidator(cfg.JWTSecret)
		api.Use(middleware.JWTAuth(validator))
		log.Println("bearer auth enabled")

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.PUT("/default-provider", h.SetDefaultProvider)
		}
	}
	{
		api.POST("/directions", h.CalculateDirections)
		api.GET("/providers", h.ListProviders)
		api.GET("/providers/:provider/profiles", h.GetProviderProfiles)
	}

	return &App{
		Router:   router,
		Registry: registry,
		cfg:      cfg,
	}, nil
}
