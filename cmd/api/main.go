package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/suar-net/suar-relay/internal/config"
	"github.com/suar-net/suar-relay/internal/database"
	"github.com/suar-net/suar-relay/internal/handler"
	"github.com/suar-net/suar-relay/internal/ratelimit"
	"github.com/suar-net/suar-relay/internal/repository"
	"github.com/suar-net/suar-relay/internal/service"
	"github.com/suar-net/suar-relay/internal/telemetry"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	logger := log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Fatalf("Failed to initialize telemetry: %v", err)
	}

	repo, closeStore := openStore(cfg.DB, logger)
	defer closeStore()

	verifier, err := service.NewTokenVerifier(cfg.Auth)
	if err != nil {
		logger.Fatalf("Failed to configure authentication: %v", err)
	}

	recorder := service.NewHistoryRecorder(repo.History(), cfg.Relay.StoreTimeout, logger)

	router := handler.SetupRouter(handler.Dependencies{
		ProxyService:       service.NewHTTPProxyService(cfg.Relay, recorder),
		IdentityService:    service.NewIdentityService(verifier, logger),
		HistoryService:     service.NewHistoryService(repo.History(), cfg.Relay.HistoryLimit),
		CollectionService:  service.NewCollectionService(repo.Collection()),
		EnvironmentService: service.NewEnvironmentService(repo.Environment()),
		Store:              repo,
		Limiter:            newLimiter(cfg, logger),
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		Logger:             logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "suar-relay"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Printf("Server starting on port %s", cfg.Server.Port)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Cannot run server on port %s: %v", cfg.Server.Port, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Println("Shut down the server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Relay.StoreTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("Server shutdown failed: %v", err)
	}
	if err := recorder.Wait(ctx); err != nil {
		logger.Printf("Pending history writes abandoned: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Printf("Telemetry shutdown failed: %v", err)
	}
	logger.Println("Server successfully shut down")
}

// openStore returns the record store selected by STORE_DRIVER and a func that releases it.
func openStore(cfg config.DBConfig, logger *log.Logger) (repository.IRepository, func()) {
	if cfg.Driver == "memory" {
		logger.Println("Using in-memory record store; data is lost on restart")
		return repository.NewMemoryRepository(), func() {}
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Println("Succesfully connected to database")

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			logger.Fatalf("Failed to apply database schema: %v", err)
		}
		logger.Println("Database schema is up to date")
	}

	return repository.NewRepository(db), func() { db.Close() }
}

// newLimiter returns nil when the relay rate limit is disabled.
func newLimiter(cfg *config.Config, logger *log.Logger) ratelimit.Limiter {
	if cfg.Relay.RateLimit <= 0 {
		return nil
	}

	if cfg.Redis.Addr == "" {
		logger.Printf("Relay rate limit: %d per %s, in-memory", cfg.Relay.RateLimit, cfg.Relay.RateLimitWindow)
		return ratelimit.NewMemory(cfg.Relay.RateLimit, cfg.Relay.RateLimitWindow)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Printf("Redis unavailable, rate limiting in memory: %v", err)
		return ratelimit.NewMemory(cfg.Relay.RateLimit, cfg.Relay.RateLimitWindow)
	}
	logger.Printf("Relay rate limit: %d per %s, redis at %s", cfg.Relay.RateLimit, cfg.Relay.RateLimitWindow, cfg.Redis.Addr)
	return ratelimit.NewRedis(client, cfg.Relay.RateLimit, cfg.Relay.RateLimitWindow, logger)
}
