package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter sets up the Gin router with the gate mounted globally. The
// gate itself decides per path whether a request is protected.
func SetupRouter(gate *Gate, handlers *AuthHandlers) *gin.Engine {
	router := gin.Default()

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.Use(gate.Handler())

	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", handlers.Logout)
	}

	// Protected API routes; protection comes from the access policy.
	api := router.Group("/api")
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
