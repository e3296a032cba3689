package internal

import (
	"context"
	"time"

	"animov/pkg/cache"
	"animov/pkg/config"
	"animov/pkg/database"
	"animov/pkg/jwt"
	"animov/pkg/logger"
	"animov/pkg/middleware"
	"animov/pkg/s3"
	"animov/pkg/server"
	"animov/pkg/session"
	"animov/pkg/sessioncookie"
	"animov/pkg/validation"
	authHTTP "animov/services/auth/internal/controller/http"
	"animov/services/auth/internal/repo/persistent"
	"animov/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "animov/services/auth/docs" // Swagger docs
)

const (
	serviceName         = "auth"
	sessionPurgeEvery   = time.Hour
	authRateLimitWindow = time.Minute
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	httpServer  *server.Server
	stopJanitor context.CancelFunc
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

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (avatar upload disabled)", err)
		s3Client = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Router() *gin.Engine {
	if err := validation.Register(); err != nil {
		a.log.Error("Failed to register validators: %v", err)
	}

	userRepo := persistent.NewUserRepository(a.db)
	sessions := session.NewStore(a.db, a.redisClient)

	var storage usecase.AvatarStorage
	if a.s3Client != nil {
		storage = a.s3Client
	}

	authUseCase := usecase.NewAuthUseCase(userRepo, sessions, a.jwtService, storage, a.cfg.SessionTTL, a.log)
	authHandler := authHTTP.NewAuthHandler(authUseCase, sessioncookie.Policy{
		Secure: a.cfg.CookieSecure,
		Domain: a.cfg.CookieDomain,
	}, a.log)

	a.startJanitor(authUseCase)

	r := server.NewRouter(a.cfg, a.log, serviceName)
	requireAuth := middleware.AuthMiddleware(a.jwtService, sessions)
	optionalAuth := middleware.OptionalAuth(a.jwtService, sessions)
	rateLimit := middleware.RateLimitMiddleware(a.redisClient, a.cfg.AuthRateLimit, authRateLimitWindow)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", rateLimit, authHandler.Signup)
		auth.POST("/signin", rateLimit, authHandler.Signin)
		auth.POST("/signout", optionalAuth, authHandler.Signout)
		auth.GET("/session", requireAuth, authHandler.Session)

		users := api.Group("/users")
		users.GET("/me", requireAuth, authHandler.Me)
		users.PATCH("/me", requireAuth, authHandler.UpdateMe)
		users.POST("/me/avatar", requireAuth, authHandler.UploadAvatar)
		users.GET("/:username", optionalAuth, authHandler.GetProfile)
	}

	return r
}

// startJanitor purges expired session rows once an hour.
func (a *App) startJanitor(uc usecase.AuthUseCase) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopJanitor = cancel

	go func() {
		ticker := time.NewTicker(sessionPurgeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := uc.PurgeExpiredSessions(ctx)
				if err != nil {
					a.log.Error("Failed to purge expired sessions: %v", err)
					continue
				}
				if n > 0 {
					a.log.Info("Purged %d expired sessions", n)
				}
			}
		}
	}()
}

func (a *App) Run() error {
	a.httpServer = server.New(serviceName, a.cfg.ServerPort, a.Router(), a.log)
	a.httpServer.Start()
	return nil
}

func (a *App) Wait() {
	server.WaitForSignal()
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	if a.stopJanitor != nil {
		a.stopJanitor()
	}

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
