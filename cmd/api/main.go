package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/glamour/internal/config"
	"github.com/joshua-takyi/glamour/internal/connect"
	"github.com/joshua-takyi/glamour/internal/container"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/jobs"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/routes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("Starting Glamour API server", zap.String("environment", cfg.Environment))

	ctx := context.Background()

	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Supabase", zap.Error(err))
	}
	serviceClient, err := connect.InitSupabaseService(cfg)
	if err != nil {
		logger.Fatal("Failed to create Supabase service client", zap.Error(err))
	}
	if serviceClient == nil {
		logger.Warn("SUPABASE_SERVICE_ROLE_KEY not set; admin user management runs with the anon key")
	}
	logger.Info("Connected to Supabase successfully")

	mongoClient, err := connect.MongoDBConnect(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	logger.Info("Connected to MongoDB successfully")

	repos, mdb := container.ProductionRepos(cfg, supaClient, serviceClient, mongoClient)
	if err := mdb.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create MongoDB indexes", zap.Error(err))
	}

	redisClient, err := connect.RedisConnect(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	var locker lock.Locker = lock.NewLocal()
	if redisClient != nil {
		locker = lock.NewRedis(redisClient, cfg.LockTTL, logger)
		logger.Info("Using Redis for booking and provider locks", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("REDIS_ADDR not set; locks are local to this process")
	}

	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Cloudinary", zap.Error(err))
	}

	jwks, err := helpers.NewJWKSVerifier(ctx, cfg.SupabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to load Supabase signing keys", zap.Error(err))
	}

	appContainer := container.NewContainer(cfg, logger, repos, locker, jwks, cld)

	var scheduler *jobs.Scheduler
	if cfg.RatingReconcileCron != "" {
		scheduler = jobs.NewScheduler(appContainer.RatingAggregator, 5*time.Minute, logger)
		if err := scheduler.Start(cfg.RatingReconcileCron); err != nil {
			logger.Fatal("Failed to schedule rating reconcile", zap.Error(err))
		}
	}

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	jwks.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis", zap.Error(err))
		}
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", zap.Error(err))
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
