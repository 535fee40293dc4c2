package app

import (
	"context"
	"fmt"
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
	"learnflix/pkg/models"
	"learnflix/pkg/queue"
	notificationHTTP "learnflix/services/notification/internal/controller/http"
	"learnflix/services/notification/internal/repo/persistent"
	"learnflix/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	_ "learnflix/services/notification/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

// NewApp dials Postgres, Redis and RabbitMQ in parallel. The consumer cannot work without any of them.
func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	var (
		db          *gorm.DB
		redisClient *redis.Client
		queueClient *queue.Client
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if db, err = database.NewPostgresDB(cfg); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if redisClient, err = cache.NewRedisClient(cfg); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if queueClient, err = queue.NewRabbitMQClient(cfg, log); err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Failed to connect: %v", err)
		if queueClient != nil {
			queueClient.Close()
		}
		if redisClient != nil {
			redisClient.Close()
		}
		if db != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
		}
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL),
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	notificationRepo := persistent.NewNotificationRepository(a.db)
	notificationStore := persistent.NewNotificationStore(a.redisClient)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, notificationStore, a.queueClient, a.log)

	if err := a.queueClient.ConsumeNotificationTasks(notificationUseCase.HandleTask); err != nil {
		a.log.Error("Failed to start notification consumer: %v", err)
		return err
	}

	notificationHandler := notificationHTTP.NewNotificationHandler(notificationUseCase, a.log)

	messageRepo := persistent.NewMessageRepository(a.db)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, a.queueClient, a.log)
	messageHandler := notificationHTTP.NewMessageHandler(messageUseCase, a.log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
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
		api.GET("/notifications", notificationHandler.GetNotifications)
		api.DELETE("/notifications", notificationHandler.ClearNotifications)

		api.POST("/messages", messageHandler.SendMessage)
		api.GET("/messages", messageHandler.GetInbox)
		api.GET("/messages/unread-count", messageHandler.GetUnreadCount)
		api.GET("/messages/sent", messageHandler.GetSent)
		api.POST("/messages/:id/read", messageHandler.MarkRead)

		admin := api.Group("/admin", middleware.RequireRoles(string(models.RoleAdmin)))
		admin.GET("/notifications/queue", notificationHandler.QueueLength)
		admin.GET("/messages", messageHandler.ListAllMessages)
		admin.DELETE("/messages/:id", messageHandler.DeleteMessage)
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Notification service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down notification service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	// Closing the channel ends the consumer goroutine; unacked deliveries go back to the queue.
	if err := a.queueClient.Close(); err != nil {
		a.log.Error("Error closing RabbitMQ: %v", err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Notification service exited")
	return nil
}
