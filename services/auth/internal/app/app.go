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
	"learnflix/pkg/models"
	authHTTP "learnflix/services/auth/internal/controller/http"
	"learnflix/services/auth/internal/repo/persistent"
	"learnflix/services/auth/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "learnflix/services/auth/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
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
		log.Error("Failed to connect to redis: %v (continuing without rate limiting)", err)
		redisClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewServiceWithTTL(cfg.JWTSecret, cfg.JWTTTL),
	}, nil
}

func (a *App) Run() error {
	userRepo := persistent.NewUserRepository(a.db)
	ipRepo := persistent.NewIPRegistrationRepository(a.db)
	authUseCase := usecase.NewAuthUseCase(userRepo, ipRepo, a.cfg.IPAccountLimit, a.jwtService, a.log)
	authHandler := authHTTP.NewAuthHandler(authUseCase)
	ipLimitUseCase := usecase.NewIPLimitUseCase(ipRepo, a.cfg.IPAccountLimit, a.log)
	ipLimitHandler := authHTTP.NewIPLimitHandler(ipLimitUseCase, a.log)

	r := gin.Default()

	// ClientIP only honours X-Forwarded-For from these proxies.
	if err := r.SetTrustedProxies(a.cfg.TrustedProxies); err != nil {
		a.log.Error("Invalid TRUSTED_PROXIES: %v", err)
		return err
	}

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
	{
		public := api.Group("")
		if a.redisClient != nil {
			public.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitRequests, a.cfg.RateLimitWindow))
		}
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/invite-codes/validate", authHandler.ValidateInviteCode)
		public.GET("/registration/eligibility", ipLimitHandler.CheckEligibility)
		public.POST("/registration/bypass-requests", ipLimitHandler.RequestBypass)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		{
			protected.GET("/me", authHandler.Me)

			admin := protected.Group("/admin", middleware.RequireRoles(string(models.RoleAdmin)))
			admin.GET("/ip-bypass-requests", ipLimitHandler.ListBypassRequests)
			admin.POST("/ip-bypass-requests/:id/approve", ipLimitHandler.ApproveBypassRequest)
			admin.POST("/ip-bypass-requests/:id/reject", ipLimitHandler.RejectBypassRequest)
		}
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Auth service exited")
	return nil
}
