package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/controllers"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/djsmacker01/flavour-api/middleware"
	"github.com/djsmacker01/flavour-api/models"
	"github.com/djsmacker01/flavour-api/services"
	"github.com/djsmacker01/flavour-api/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetDefault(logger.New("flavour-api", cfg.LogLevel, os.Stdout))
	appLog := logger.Default()
	appLog.Info("service_starting", "Starting Flavour Restaurant API", "env", cfg.GoEnv, "port", cfg.Port)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		appLog.Error("database_failed", "Failed to connect to database", err)
		os.Exit(1)
	}

	// Auto-migrate database models
	if err := config.GetDB().AutoMigrate(models.All()...); err != nil {
		appLog.Error("migration_failed", "Failed to migrate database", err)
		os.Exit(1)
	}
	appLog.Info("migration_completed", "Database migration completed successfully")

	if err := validation.RegisterBindings(); err != nil {
		appLog.Error("validation_setup_failed", "Failed to register validators", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Image storage is optional; without it menu items simply have no images
	s3Service, err := services.InitS3Service(ctx, cfg)
	if err != nil {
		appLog.Warn("storage_disabled", "S3 is not configured, menu image upload is disabled", "error", err.Error())
	} else {
		services.InitImageService(s3Service)
	}

	services.InitPaymentService(cfg)

	publisher, err := services.InitEventPublisher(cfg.RabbitMQURL)
	if err != nil {
		appLog.Error("broker_failed", "Failed to connect to RabbitMQ", err)
		os.Exit(1)
	}
	defer publisher.Close()

	authMiddleware, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		appLog.Error("auth_setup_failed", "Failed to set up JWT validation", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, authMiddleware),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("service_started", "Server is running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("server_failed", "HTTP server failed", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("graceful_shutdown", "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("shutdown_failed", "Server did not shut down cleanly", err)
	}
}

// setupRouter builds the application router. auth validates bearer tokens.
func setupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger.Default()), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}
	controllers.RegisterRoutes(v1, auth)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Flavour Restaurant API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		databaseError(c, "DATABASE_ERROR", "Database is not initialized")
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		databaseError(c, "DATABASE_ERROR", "Failed to get database instance")
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		databaseError(c, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	query := "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"
	if db.Dialector.Name() == "sqlite" {
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}

	var tables []string
	if err := db.WithContext(c.Request.Context()).Raw(query).Scan(&tables).Error; err != nil {
		databaseError(c, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}

func databaseError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
