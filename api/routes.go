package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hyunwoooim-star/ai-market-sub000/api/handlers"
)

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine, h *handlers.Handlers) {
	api := router.Group("/api")
	{
		api.POST("/simulation/run", h.RunSimulation)
		api.GET("/agents", h.GetAgents)
		api.GET("/epochs", h.GetEpochs)
		api.GET("/epochs/:number", h.GetEpoch)
		api.POST("/epochs/:number/anchor", h.AnchorEpoch)
		api.GET("/epochs/:number/anchor", h.GetAnchor)
		api.GET("/anchors", h.ListAnchors)
		api.GET("/ws", handlers.HandleWebSocket)
	}
}
