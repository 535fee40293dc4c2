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
	"learnflix/pkg/queue"
	billingHTTP "learnflix/services/billing/internal/controller/http"
	"learnflix/services/billing/internal/repo/persistent"
	"learnflix/services/billing/internal/repo/webapi"
	"learnflix/services/billing/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "learnflix/services/billing/docs" // Swagger docs
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

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without subscription notifications)", err)
		queueClient = nil
	}

	if cfg.PayPalClientID == "" || cfg.PayPalClientSecret == "" {
		log.Warn("PayPal credentials are not set; checkout requests will fail")
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
	subscriptionRepo := persistent.NewSubscriptionRepository(a.db)
	orderRepo := persistent.NewOrderRepository(a.db)
	payPalClient := webapi.NewPayPalClient(a.cfg)

	var publisher usecase.NotificationPublisher
	if a.queueClient != nil {
		publisher = a.queueClient
	}

	billingUseCase := usecase.NewBillingUseCase(
		subscriptionRepo,
		orderRepo,
		payPalClient,
		publisher,
		usecase.Plan{Price: a.cfg.PayPalPlanPrice, Currency: a.cfg.PayPalCurrency},
		a.log,
	)

	billingHandler := billingHTTP.NewBillingHandler(billingUseCase, a.log)

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
		api.POST("/subscriptions/orders", billingHandler.CreateOrder)
		api.POST("/subscriptions/capture", billingHandler.CaptureOrder)
		api.GET("/subscriptions/status", billingHandler.GetStatus)
		api.GET("/subscriptions", billingHandler.ListSubscriptions)
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Billing service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down billing service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
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

	a.log.Info("Billing service exited")
	return nil
}
