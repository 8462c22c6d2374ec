package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api/v1
func RegisterRoutes(router *gin.Engine, valuation *ValuationHandler, chat *ChatHandler) {
	apiV1 := router.Group("/api/v1")
	{
		// Form valuation endpoints
		apiV1.POST("/estimate", valuation.Estimate)
		apiV1.POST("/estimate/stream", valuation.EstimateStream) // Streaming valuation
		apiV1.GET("/valuations", valuation.History)

		// Chat endpoints
		chatGroup := apiV1.Group("/chat")
		chatGroup.GET("/examples", chat.Examples)
		chatGroup.GET("/ws", chat.WebSocket)
		chatGroup.POST("/sessions", chat.CreateSession)
		chatGroup.GET("/sessions/:id", chat.GetSession)
		chatGroup.DELETE("/sessions/:id", chat.DeleteSession)
		chatGroup.POST("/sessions/:id/messages", chat.SendMessage)
		chatGroup.POST("/sessions/:id/stream", chat.StreamMessage) // Streaming turn
		chatGroup.GET("/sessions/:id/theme", chat.GetTheme)
		chatGroup.PUT("/sessions/:id/theme", chat.SetTheme)
	}
}
