package internal

import (
	"time"

	"animov/pkg/cache"
	"animov/pkg/catalog/providers"
	"animov/pkg/config"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/server"
	"animov/pkg/validation"
	catalogHTTP "animov/services/catalog/internal/controller/http"
	"animov/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "animov/services/catalog/docs" // Swagger docs
)

const serviceName = "catalog"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	httpServer  *server.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.ForService(serviceName, cfg.LogLevel, cfg.LogPretty)

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (catalog details are not cached)", err)
		redisClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
	}, nil
}

func (a *App) Router() *gin.Engine {
	if err := validation.Register(); err != nil {
		a.log.Error("Failed to register validators: %v", err)
	}

	catalogUseCase := usecase.NewCatalogUseCase(providers.New(a.cfg, a.redisClient, a.log), a.log)
	catalogHandler := catalogHTTP.NewCatalogHandler(catalogUseCase, a.log)

	r := server.NewRouter(a.cfg, a.log, serviceName)
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(a.redisClient, 120, time.Minute))
	catalogHandler.RegisterRoutes(api)

	return r
}

func (a *App) Run() error {
	a.httpServer = server.New(serviceName, a.cfg.ServerPort, a.Router(), a.log)
	a.httpServer.Start()
	return nil
}

func (a *App) Wait() {
	server.WaitForSignal()
	a.log.Info("Shutting down catalog service...")
}

func (a *App) Shutdown() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Shutdown()
}
