package internal

import (
	"context"

	"animov/pkg/cache"
	"animov/pkg/config"
	"animov/pkg/database"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/queue"
	"animov/pkg/server"
	"animov/pkg/session"
	notificationHTTP "animov/services/notification/internal/controller/http"
	"animov/services/notification/internal/repo/persistent"
	"animov/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "animov/services/notification/docs" // Swagger docs
)

const serviceName = "notification"

type App struct {
	cfg                 *config.Config
	log                 *logger.Logger
	db                  *gorm.DB
	redisClient         *redis.Client
	queueClient         *queue.Client
	jwtService          *jwt.Service
	notificationUseCase usecase.NotificationUseCase
	httpServer          *server.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.ForService(serviceName, cfg.LogLevel, cfg.LogPretty)

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	// Inboxes live in Redis, so the service cannot run without it.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		database.Close(db)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (serving stored notifications only)", err)
		queueClient = nil
	}

	return &App{
		cfg:                 cfg,
		log:                 log,
		db:                  db,
		redisClient:         redisClient,
		queueClient:         queueClient,
		jwtService:          jwt.NewService(cfg.JWTSecret),
		notificationUseCase: usecase.NewNotificationUseCase(persistent.NewNotificationRepository(db), redisClient, log),
	}, nil
}

func (a *App) Router() *gin.Engine {
	notificationHandler := notificationHTTP.NewNotificationHandler(a.notificationUseCase, a.log)
	sessions := session.NewStore(a.db, a.redisClient)

	r := server.NewRouter(a.cfg, a.log, serviceName)
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService, sessions))
	notificationHandler.RegisterRoutes(api)

	return r
}

func (a *App) Run() error {
	if a.queueClient != nil {
		a.log.Info("Starting notification queue processor...")
		err := a.queueClient.Consume(func(event queue.Event) error {
			return a.notificationUseCase.HandleEvent(context.Background(), event)
		})
		if err != nil {
			return err
		}
	}

	a.httpServer = server.New(serviceName, a.cfg.ServerPort, a.Router(), a.log)
	a.httpServer.Start()
	return nil
}

func (a *App) Wait() {
	server.WaitForSignal()
	a.log.Info("Shutting down notification service...")
}

func (a *App) Shutdown() error {
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := database.Close(a.db); err != nil {
		a.log.Error("Error closing database: %v", err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Shutdown()
}
