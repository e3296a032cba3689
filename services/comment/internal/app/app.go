package internal

import (
	"animov/pkg/cache"
	"animov/pkg/config"
	"animov/pkg/database"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/queue"
	"animov/pkg/server"
	"animov/pkg/session"
	"animov/pkg/validation"
	commentHTTP "animov/services/comment/internal/controller/http"
	"animov/services/comment/internal/repo/persistent"
	"animov/services/comment/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "animov/services/comment/docs" // Swagger docs
)

const serviceName = "comment"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	queueClient *queue.Client
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
		log.Warn("Failed to connect to redis: %v (sessions resolve from the database only)", err)
		redisClient = nil
	}

	// Connect to RabbitMQ for publishing notification events
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without notifications)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		queueClient: queueClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Router() *gin.Engine {
	if err := validation.Register(); err != nil {
		a.log.Error("Failed to register validators: %v", err)
	}

	var publisher queue.Publisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	commentUseCase := usecase.NewCommentUseCase(persistent.NewCommentRepository(a.db), publisher, a.log)
	commentHandler := commentHTTP.NewCommentHandler(commentUseCase, a.log)

	sessions := session.NewStore(a.db, a.redisClient)
	requireAuth := middleware.AuthMiddleware(a.jwtService, sessions)
	optionalAuth := middleware.OptionalAuth(a.jwtService, sessions)

	r := server.NewRouter(a.cfg, a.log, serviceName)
	comments := r.Group("/api/v1/comments")
	{
		// Public routes
		comments.GET("", optionalAuth, commentHandler.ListComments)
		comments.GET("/rating", commentHandler.GetRating)

		// Protected routes
		comments.POST("", requireAuth, commentHandler.CreateComment)
		comments.PATCH("/:id", requireAuth, commentHandler.UpdateComment)
		comments.PUT("/:id", requireAuth, commentHandler.UpdateComment)
		comments.DELETE("/:id", requireAuth, commentHandler.DeleteComment)
		comments.POST("/:id/like", requireAuth, commentHandler.LikeComment)
		comments.DELETE("/:id/like", requireAuth, commentHandler.UnlikeComment)
	}

	return r
}

func (a *App) Run() error {
	a.httpServer = server.New(serviceName, a.cfg.ServerPort, a.Router(), a.log)
	a.httpServer.Start()
	return nil
}

func (a *App) Wait() {
	server.WaitForSignal()
	a.log.Info("Shutting down comment service...")
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

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Shutdown()
}
