package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avorn/posts-be/internal/api"
	"github.com/avorn/posts-be/internal/cache"
	"github.com/avorn/posts-be/internal/config"
	"github.com/avorn/posts-be/internal/database"
	"github.com/avorn/posts-be/internal/logger"
	"github.com/avorn/posts-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the cache backend
	var store cache.Store
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		redisStore, err := cache.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		store = redisStore
	default:
		store = cache.NewMemoryStore(cfg.CacheTTL)
	}

	// Set up services
	authService := services.NewAuthService(db)
	userService := services.NewUserService(db, store, cfg.CacheTTL, cfg.CacheAggregates)
	postService := services.NewPostService(db, store, cfg.CacheTTL, cfg.CacheAggregates)

	// Set up router and server
	router := api.NewRouter(authService, userService, postService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
