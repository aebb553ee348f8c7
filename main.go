package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"grabbi-engine/availability"
	"grabbi-engine/config"
	"grabbi-engine/database"
	"grabbi-engine/middleware"
	"grabbi-engine/models"
	"grabbi-engine/pricing"
	"grabbi-engine/promotions"
	"grabbi-engine/routes"
	"grabbi-engine/store"
	"grabbi-engine/telemetry"
	"grabbi-engine/timeslots"
	"grabbi-engine/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.Options{
		OTLPEndpoint: cfg.OTLPEndpoint,
		Stdout:       cfg.TraceStdout,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing:", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Upsell counters
	var (
		counters    store.Counters
		redisClient *redis.Client
	)
	switch cfg.CounterBackend {
	case config.CounterBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisClient, err = store.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		counters = store.NewRedisCounters(redisClient)
		log.Println("Upsell counters stored in redis")
	default:
		retry := utils.DefaultRetryConfig()
		retry.MaxAttempts = cfg.CounterMaxAttempts
		counters = store.NewDBCounters(db, retry)
	}

	ruleStore := store.New(db, counters)
	catalog := store.NewCatalog(db)
	matcher := promotions.NewMatcher(ruleStore, catalog, availability.NewPredicate(cfg.Timezone))
	slots := timeslots.NewCalculator(cfg.Timezone)

	var codeLimiter *middleware.RateLimiter
	if cfg.CodeRateLimit > 0 {
		codeLimiter = middleware.NewRateLimiter(cfg.CodeRateLimit, time.Minute)
		defer codeLimiter.Close()
	}

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		Store:   ruleStore,
		Catalog: catalog,
		Matcher: matcher,
		Slots:   slots,
		Fees: pricing.FeeConfig{
			DeliveryFee: cfg.DeliveryFee,
			BagFee:      cfg.BagFee,
			AdminFee: pricing.AdminFee{
				Method: models.DiscountMethod(cfg.AdminFeeType),
				Value:  cfg.AdminFee,
			},
		},
		CodeLimiter: codeLimiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: otelhttp.NewHandler(r, telemetry.ServiceName),
	}

	// Run server in a goroutine
	go func() {
		log.Printf("Server starting on port %s (operating timezone %s)", cfg.Port, cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Error flushing traces: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing redis connection: %v", err)
		}
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed")
		}
	}

	log.Println("Server exited gracefully")
}
