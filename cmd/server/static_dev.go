//go:build !embed
// +build !embed

package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// setupStaticFiles serves the chat page from disk for development (no embedding)
func setupStaticFiles(router *gin.Engine, logger *zap.Logger) {
	logger.Info("Using local filesystem for frontend assets (development mode)",
		zap.String("dir", "./cmd/server/web/dist"),
	)

	router.StaticFile("/", "./cmd/server/web/dist/index.html")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"hint":  "The chat page is served at / ; build with -tags embed to bundle it",
		})
	})
}
