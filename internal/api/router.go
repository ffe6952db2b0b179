package api

import (
	"net/http"

	"mining-pnl/internal/api/handlers"
	"mining-pnl/internal/api/middleware"
	"mining-pnl/internal/data"

	"github.com/gin-gonic/gin"
)

// Options configures the router.
type Options struct {
	ReferenceDir string
	CORSOrigins  []string
	Tables       *data.TableCache
	// RequestLog enables the per-request log line.
	RequestLog bool
}

// NewRouter wires middleware, handlers and routes.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(opts.CORSOrigins))
	if opts.RequestLog {
		router.Use(middleware.Logger())
	}
	router.Use(middleware.ErrorHandler())

	dir := handlers.NewReferenceDir(opts.ReferenceDir)
	projectionHandler := handlers.NewProjectionHandler(dir, opts.Tables)
	modelsHandler := handlers.NewModelsHandler(dir, opts.Tables)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/projections", projectionHandler.RunProjection)
		v1.GET("/models", modelsHandler.ListModels)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
