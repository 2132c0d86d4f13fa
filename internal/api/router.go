package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/fleetboard/tracking-service/docs"
	"github.com/fleetboard/tracking-service/internal/api/handler"
	"github.com/fleetboard/tracking-service/internal/api/middleware"
	"github.com/fleetboard/tracking-service/internal/core/service"
	"github.com/fleetboard/tracking-service/internal/infrastructure/config"
	storemongo "github.com/fleetboard/tracking-service/internal/infrastructure/db/mongo"
	storeredis "github.com/fleetboard/tracking-service/internal/infrastructure/db/redis"
	"github.com/fleetboard/tracking-service/internal/live"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, hub *live.Hub, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracking_http"))

	// --- Dependencies ---
	loadRepo := storemongo.NewLoadRepository(db)
	pointsRepo := storemongo.NewTrackingRepository(db)
	cache := storeredis.NewViewCache(rdb, cfg.CacheTTL, log)
	publisher := live.NewPublisher(rdb)

	ingestService := service.NewIngestService(loadRepo, pointsRepo, publisher, log)
	queryService := service.NewQueryService(loadRepo, pointsRepo, cache, log)

	trackingHandler := handler.NewTrackingHandler(
		ingestService,
		queryService,
		hub,
		cfg.CacheTTL,
		cfg.MapAccessToken != "",
	)

	// --- Telemetry ingest (shared-secret, no session) ---
	ingest := e.Group("/v1/tracking", middleware.IngestKey(cfg.IngestToken, cfg.IngestTokenHash))
	ingest.POST("/events", trackingHandler.Ingest)

	// --- Viewer/operator endpoints (JWT) ---
	loads := e.Group("/v1/loads", middleware.Auth(cfg.JWTSecret))
	loads.GET("/:id/tracking", trackingHandler.Get)
	loads.POST("/:id/tracking", trackingHandler.ManualUpdate)
	loads.GET("/:id/tracking/route", trackingHandler.Route)
	loads.GET("/:id/tracking/stream", trackingHandler.Stream)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
