package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/coordination-api/api/swagger"
	"github.com/campushq/coordination-api/internal/handler"
	"github.com/campushq/coordination-api/internal/middleware"
	"github.com/campushq/coordination-api/internal/models"
	"github.com/campushq/coordination-api/internal/repository"
	"github.com/campushq/coordination-api/internal/service"
	"github.com/campushq/coordination-api/pkg/cache"
	"github.com/campushq/coordination-api/pkg/config"
	"github.com/campushq/coordination-api/pkg/database"
	"github.com/campushq/coordination-api/pkg/logger"
	"github.com/campushq/coordination-api/pkg/mailer"
	corsmiddleware "github.com/campushq/coordination-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/coordination-api/pkg/middleware/requestid"
)

// @title Coordination API
// @version 1.0.0
// @description Academic coordination backend: leave requests, suggestions, and the course directory
// @BasePath /api/v1
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, course cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var courseCache service.CourseCache
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		courseCache = service.NewCacheService(cacheRepo, metricsSvc, cfg.Courses.CacheTTL, logr, cfg.Courses.CacheEnabled)
	}

	notificationSvc := service.NewNotificationService(
		mailer.New(cfg.SMTP, logr), metricsSvc, cfg.Notifications, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, notificationSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, courseCache, cfg.Courses.CacheTTL, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, userRepo, userRepo, notificationSvc, validate, logr)
	suggestionSvc := service.NewSuggestionService(suggestionRepo, userRepo, notificationSvc, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc)
	systemHandler := handler.NewSystemHandler(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	v1 := r.Group(prefix)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	// Public directory routes; claims are attached when present so
	// access shows up attributed in logs.
	directory := v1.Group("", middleware.OptionalJWT(authSvc))
	{
		directory.GET("/coordinators", userHandler.Coordinators)
		directory.GET("/coordinators/:staff_id/courses", courseHandler.ByCoordinator)
		directory.GET("/courses", courseHandler.List)
		directory.GET("/courses/:id", courseHandler.Get)
	}

	courses := v1.Group("/courses", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		courses.POST("", courseHandler.Create)
		courses.PUT("/:id", courseHandler.Update)
		courses.DELETE("/:id", courseHandler.Delete)
	}

	leave := v1.Group("/leave-requests", middleware.JWT(authSvc))
	{
		leave.POST("", leaveHandler.Submit)
		leave.GET("/pending", middleware.RequireRoles(models.RoleAdmin), leaveHandler.ListPending)
		leave.GET("/:id", leaveHandler.Get)
		leave.PUT("/:id/approve", middleware.RequireRoles(models.RoleAdmin), leaveHandler.Approve)
		leave.PUT("/:id/reject", middleware.RequireRoles(models.RoleAdmin), leaveHandler.Reject)
		leave.POST("/:id/statements", leaveHandler.SubmitStatement)
		leave.GET("/:id/statements", leaveHandler.ListStatements)
		leave.GET("/history/:staff_id", leaveHandler.History)
		leave.GET("/history/:staff_id/export", leaveHandler.ExportHistory)
	}

	suggestions := v1.Group("/suggestions", middleware.JWT(authSvc))
	{
		suggestions.POST("", suggestionHandler.Submit)
		suggestions.GET("", middleware.RequireRoles(models.RoleAdmin), suggestionHandler.List)
		suggestions.GET("/history/:staff_id", suggestionHandler.History)
		suggestions.GET("/:id", suggestionHandler.Get)
		suggestions.PUT("/:id/approve", middleware.RequireRoles(models.RoleAdmin), suggestionHandler.Approve)
		suggestions.PUT("/:id/reject", middleware.RequireRoles(models.RoleAdmin), suggestionHandler.Reject)
	}

	users := v1.Group("/users", middleware.JWT(authSvc))
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		users.POST("", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionUserCreate, "users"), userHandler.Create)
		users.GET("/:staff_id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
		users.PUT("/:staff_id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Update)
		users.DELETE("/:staff_id", middleware.RequireRoles(models.RoleAdmin), userHandler.Deactivate)
		users.POST("/:staff_id/promote", middleware.RequireRoles(models.RoleAdmin), userHandler.Promote)
	}

	system := v1.Group("/system", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		system.GET("/metrics", systemHandler.Metrics)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
