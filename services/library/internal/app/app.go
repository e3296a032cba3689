package internal

import (
	"animov/pkg/cache"
	"animov/pkg/catalog/providers"
	"animov/pkg/config"
	"animov/pkg/database"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/server"
	"animov/pkg/session"
	"animov/pkg/validation"
	libraryHTTP "animov/services/library/internal/controller/http"
	"animov/services/library/internal/repo/persistent"
	"animov/services/library/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "animov/services/library/docs" // Swagger docs
)

const serviceName = "library"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	httpServer  *server.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.ForService(serviceName, cfg.LogLevel, cfg.LogPretty)

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (catalog details will not be cached)", err)
		redisClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Router() *gin.Engine {
	if err := validation.Register(); err != nil {
		a.log.Error("Failed to register validators: %v", err)
	}

	libraryUseCase := usecase.NewLibraryUseCase(
		persistent.NewFavoriteRepository(a.db),
		persistent.NewWatchlistRepository(a.db),
		persistent.NewReadlistRepository(a.db),
		providers.New(a.cfg, a.redisClient, a.log),
		a.log,
	)
	libraryHandler := libraryHTTP.NewLibraryHandler(libraryUseCase, a.log)

	sessions := session.NewStore(a.db, a.redisClient)

	r := server.NewRouter(a.cfg, a.log, serviceName)
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService, sessions))
	libraryHandler.RegisterRoutes(api)

	return r
}

func (a *App) Run() error {
	a.httpServer = server.New(serviceName, a.cfg.ServerPort, a.Router(), a.log)
	a.httpServer.Start()
	return nil
}

func (a *App) Wait() {
	server.WaitForSignal()
	a.log.Info("Shutting down library service...")
}

func (a *App) Shutdown() error {
	if err := database.Close(a.db); err != nil {
		a.log.Error("Error closing database: %v", err)
	}

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
