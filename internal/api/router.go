package api

import (
	"github.com/gin-gonic/gin"
	"github.com/maya/screenrank/internal/api/handler"
	"github.com/maya/screenrank/internal/api/middleware"
	"github.com/maya/screenrank/internal/config"
	"github.com/maya/screenrank/internal/etl"
	"github.com/maya/screenrank/internal/logger"
	"github.com/maya/screenrank/internal/repository"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	db *gorm.DB,
	scores *repository.ScoreRepository,
	runs *repository.RunRepository,
	agg *etl.AggregationEngine,
	newPipeline handler.PipelineFactory,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(db)
	actorHandler := handler.NewActorHandler(scores)
	etlHandler := handler.NewETLHandler(runs, agg, newPipeline, log)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Aggregated scores
		v1.GET("/actors", actorHandler.ListActors)

		// Pipeline control
		v1.POST("/etl/start", etlHandler.StartETL)
		v1.GET("/etl/status", etlHandler.GetStatus)
		v1.GET("/etl/history", etlHandler.GetHistory)
		v1.POST("/etl/refresh", etlHandler.RefreshScores)
		v1.DELETE("/etl/cancel/:run_id", etlHandler.CancelRun)
	}

	return r
}
