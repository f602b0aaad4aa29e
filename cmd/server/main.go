package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	allocationapp "github.com/rentbooks/backend/internal/application/allocation"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/infrastructure/cache"
	"github.com/rentbooks/backend/internal/infrastructure/config"
	"github.com/rentbooks/backend/internal/infrastructure/logger"
	"github.com/rentbooks/backend/internal/infrastructure/persistence"
	"github.com/rentbooks/backend/internal/interfaces/http/handler"
	"github.com/rentbooks/backend/internal/interfaces/http/middleware"
	"github.com/rentbooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// maxRequestBodyBytes caps request bodies; allocation payloads are small
const maxRequestBodyBytes = 1 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting RentBooks backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Initialize repositories
	declarationRepo := persistence.NewGormTaxDeclarationRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	txWriter := persistence.NewGormTransactionWriter(db.DB)

	var revenueProvider allocation.PropertyRevenueProvider = persistence.NewGormPropertyRevenueProvider(db.DB)

	// Optional Redis cache in front of the revenue aggregation query
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		revenueProvider = cache.NewRedisRevenueCache(redisClient, revenueProvider, cfg.Cache.RevenueTTL, log)
		log.Info("Revenue cache enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Cache.RevenueTTL),
		)
	}

	// Initialize application services
	allocationService := allocationapp.NewAllocationService(declarationRepo, revenueProvider, txWriter)
	expenseSplitService := allocationapp.NewExpenseSplitService(revenueProvider, txWriter)
	propertyService := allocationapp.NewPropertyService(propertyRepo)

	// Initialize HTTP handlers
	allocationHandler := handler.NewAllocationHandler(allocationService)
	expenseSplitHandler := handler.NewExpenseSplitHandler(expenseSplitService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and logging can tag
	// their entries with it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(maxRequestBodyBytes))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Register domain routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(allocationHandler).
		Register(expenseSplitHandler).
		Register(propertyHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
