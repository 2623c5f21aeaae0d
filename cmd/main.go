package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qforge/fmea-backend/internal/db"
	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/engine/normalize"
	"github.com/qforge/fmea-backend/internal/http/handlers"
	"github.com/qforge/fmea-backend/internal/http/middleware"
	"github.com/qforge/fmea-backend/internal/platform/envutil"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/repos"
	"github.com/qforge/fmea-backend/internal/server"
	"github.com/qforge/fmea-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Document store
	log.Info("Setting up document store from main...")
	redisAddr := envutil.GetEnv("REDIS_ADDR", "")
	var docs docstore.Store
	if redisAddr == "" {
		log.Warn("REDIS_ADDR not set, using in-memory document store")
		docs = docstore.NewMemoryStore()
	} else {
		docs, err = docstore.NewRedisStore(log, redisAddr)
		if err != nil {
			log.Error("Could not init redis document store", "error", err)
			os.Exit(1)
		}
	}

	// Repos
	log.Info("Setting up Repos from main...")
	structureRepo := repos.NewStructureRepo(thePG, log)
	functionRepo := repos.NewFunctionRepo(thePG, log)
	failureRepo := repos.NewFailureRepo(thePG, log)
	rebuildRunRepo := repos.NewRebuildRunRepo(thePG, log)
	analysisRowRepo := repos.NewAnalysisRowRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	normalizeOpts := normalize.Options{
		RequireCompleteChain: envutil.GetEnvAsBool("RISK_REQUIRE_COMPLETE_CHAIN", false),
	}
	rebuildService := services.NewRebuildService(thePG, log, docs, structureRepo, functionRepo, failureRepo, rebuildRunRepo, normalizeOpts)
	failureAnalysisService := services.NewFailureAnalysisService(thePG, log, structureRepo, functionRepo, failureRepo, analysisRowRepo)
	syncService := services.NewSyncService(log, docs, structureRepo, functionRepo, rebuildService)

	// Handlers
	log.Info("Setting up handlers from main...")
	atomicHandler := handlers.NewAtomicHandler(log, rebuildService, failureAnalysisService)
	syncHandler := handlers.NewSyncHandler(log, syncService)
	healthHandler := handlers.NewHealthHandler()

	// Middleware
	var allowedOrigins []string
	if raw := envutil.GetEnv("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AtomicHandler: atomicHandler,
		SyncHandler:   syncHandler,
		HealthHandler: healthHandler,
		Middleware: []gin.HandlerFunc{
			middleware.CORS(allowedOrigins),
			middleware.RequestLogger(log),
		},
	})

	port := envutil.GetEnv("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
