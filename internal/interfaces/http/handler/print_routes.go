package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/missionpuck/logprinter/internal/interfaces/http/router"
)

// PrintJobRoutes creates the route group for print job endpoints
func PrintJobRoutes(h *PrintJobHandler) *router.DomainGroup {
	group := router.NewDomainGroup("print-jobs", "/print-jobs")

	group.POST("", h.Submit)
	group.GET("", h.List)
	group.GET("/current", h.Current)
	group.GET("/:id", h.Get)

	return group
}

// RegisterHealth mounts GET /health outside the versioned API
func RegisterHealth(engine *gin.Engine, h *HealthHandler) {
	engine.GET("/health", h.Health)
}
