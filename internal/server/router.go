package server

import (
	"github.com/gin-gonic/gin"

	"github.com/qforge/fmea-backend/internal/http/handlers"
)

type RouterConfig struct {
	AtomicHandler *handlers.AtomicHandler
	SyncHandler   *handlers.SyncHandler
	HealthHandler *handlers.HealthHandler
	Middleware    []gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	for _, mw := range cfg.Middleware {
		router.Use(mw)
	}

	router.GET("/healthz", cfg.HealthHandler.Health)

	api := router.Group("/api")
	{
		atomic := api.Group("/atomic")
		{
			atomic.POST("/rebuild", cfg.AtomicHandler.Rebuild)
			atomic.GET("/failure-analysis", cfg.AtomicHandler.FailureAnalysis)
		}
		sync := api.Group("/sync")
		{
			sync.POST("/structure", cfg.SyncHandler.SyncStructure)
			sync.POST("/data", cfg.SyncHandler.SyncData)
		}
	}
	return router
}
