package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnflix/pkg/cache"
	"learnflix/pkg/config"
	"learnflix/pkg/database"
	"learnflix/pkg/jwt"
	"learnflix/pkg/logger"
	"learnflix/pkg/middleware"
	assistantHTTP "learnflix/services/assistant/internal/controller/http"
	"learnflix/services/assistant/internal/repo/persistent"
	"learnflix/services/assistant/internal/repo/webapi"
	"learnflix/services/assistant/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "learnflix/services/assistant/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	scheduler   *cron.Cron
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	if cfg.AIAPIKey == "" {
		log.Warn("AI_API_KEY is not set; assistant questions will fail")
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL),
		scheduler:   cron.New(cron.WithLocation(time.UTC)),
	}, nil
}

func (a *App) Run() error {
	usageRepo := persistent.NewUsageRepository(a.db)
	subscriptionRepo := persistent.NewSubscriptionRepository(a.db)
	chatClient := webapi.NewChatClient(a.cfg)

	assistantUseCase := usecase.NewAssistantUseCase(usageRepo, subscriptionRepo, chatClient, a.log)
	assistantHandler := assistantHTTP.NewAssistantHandler(assistantUseCase, a.log)

	if _, err := a.scheduler.AddJob("@daily", usecase.NewRetentionJob(usageRepo, a.cfg.AIUsageRetentionDays, a.log)); err != nil {
		a.log.Error("Failed to schedule usage purge: %v", err)
		return err
	}
	a.scheduler.Start()
	a.log.Info("[ASSISTANT] usage purge scheduled daily, retention %d days", a.cfg.AIUsageRetentionDays)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(a.jwtService),
		middleware.BanGuard(a.redisClient),
		middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitRequests, a.cfg.RateLimitWindow),
	)
	{
		api.POST("/assistant/questions", assistantHandler.Ask)
		api.GET("/assistant/usage", assistantHandler.GetUsage)
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Assistant service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down assistant service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	// Wait for a running purge before closing the pool it uses.
	<-a.scheduler.Stop().Done()

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Assistant service exited")
	return nil
}
