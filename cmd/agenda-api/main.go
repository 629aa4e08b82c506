package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/e-agenda/e-agenda-api/api/swagger"
	"github.com/e-agenda/e-agenda-api/internal/handler"
	"github.com/e-agenda/e-agenda-api/internal/middleware"
	"github.com/e-agenda/e-agenda-api/internal/models"
	"github.com/e-agenda/e-agenda-api/internal/repository"
	"github.com/e-agenda/e-agenda-api/internal/service"
	"github.com/e-agenda/e-agenda-api/pkg/cache"
	"github.com/e-agenda/e-agenda-api/pkg/config"
	"github.com/e-agenda/e-agenda-api/pkg/database"
	"github.com/e-agenda/e-agenda-api/pkg/logger"
	corsmiddleware "github.com/e-agenda/e-agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/e-agenda/e-agenda-api/pkg/middleware/requestid"
)

// @title E-Agenda API
// @version 1.0.0
// @description Institutional calendar backend with event conflict detection and public share links
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, share windows served without cache", "error", err)
		redisClient = nil
	}

	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	sharedRepo := repository.NewSharedCalendarRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	auditDispatcher := service.NewAuditDispatcher(auditRepo, logr)
	auditDispatcher.Start(context.Background())
	defer auditDispatcher.Stop()

	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo)
	eventSvc := service.NewEventService(eventRepo, auditDispatcher, cacheRepo, nil, logr)
	userSvc := service.NewUserService(userRepo, auditDispatcher, logr)
	sharedSvc := service.NewSharedCalendarService(sharedRepo, eventRepo, cacheRepo, metricsSvc, auditDispatcher, nil, logr, service.SharedCalendarConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		CacheTTL:      cfg.Shared.CacheTTL,
	})
	authSvc := service.NewAuthService(userRepo, auditDispatcher, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "e-agenda-api",
	})

	eventHandler := handler.NewEventHandler(eventSvc)
	userHandler := handler.NewUserHandler(userSvc)
	sharedHandler := handler.NewSharedCalendarHandler(sharedSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Share links resolve without authentication, the token is the credential.
	// Registered at the root so issued URLs stay short.
	r.GET("/shared/:token", sharedHandler.Resolve)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)

		authed.GET("/events", eventHandler.List)
		authed.GET("/events/conflicts", eventHandler.Conflicts)
		authed.GET("/events/:id", eventHandler.Get)

		authed.GET("/shared", sharedHandler.List)

		admin := authed.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/events", eventHandler.Create)
			admin.PUT("/events/:id", eventHandler.Update)
			admin.DELETE("/events/:id", eventHandler.Delete)

			admin.POST("/shared", sharedHandler.Create)

			admin.GET("/users", userHandler.List)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)
			admin.GET("/audit", auditHandler.List)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
