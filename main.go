package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/submission-service/internal/cache"
	"github.com/SAP-F-2025/submission-service/internal/config"
	"github.com/SAP-F-2025/submission-service/internal/events"
	"github.com/SAP-F-2025/submission-service/internal/handlers"
	"github.com/SAP-F-2025/submission-service/internal/repositories"
	"github.com/SAP-F-2025/submission-service/internal/repositories/boltdb"
	"github.com/SAP-F-2025/submission-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/submission-service/internal/repositories/memory"
	"github.com/SAP-F-2025/submission-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/submission-service/internal/services"
	"github.com/SAP-F-2025/submission-service/internal/utils"
	"github.com/SAP-F-2025/submission-service/internal/validator"
	"github.com/SAP-F-2025/submission-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Redis is optional and only backs the postgres read caches
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			redisClient = nil
		}
	}

	repo, err := initRepository(cfg, redisClient, logger)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	topics := events.NewTopics(cfg.Kafka.TopicPrefix)
	publisher, subscriber, err := initEvents(cfg, topics, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize events: %v", err)
	}

	validator := validator.New()

	serviceManager := services.NewDefaultServiceManager(repo, publisher, slogLogger, validator)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	rootCtx, stopRouter := context.WithCancel(context.Background())
	defer stopRouter()

	if redisClient != nil {
		invalidator := events.NewCacheInvalidator(cache.NewCacheManager(redisClient), slogLogger)
		router, err := events.NewInvalidationRouter(subscriber, topics, invalidator, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event router: %v", err)
		}
		go events.RunRouter(rootCtx, router, slogLogger)
	}

	auth := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, repo.User(), logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, auth)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins...)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "storage", cfg.StorageDriver, "kafka", cfg.UseKafka())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopRouter()
	if err := subscriber.Close(); err != nil {
		logger.Error("Failed to close subscriber", "error", err)
	}

	// closes the publisher and the storage connections
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
}

func initRepository(cfg *config.Config, redisClient *redis.Client, logger utils.Logger) (repositories.Repository, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		repo := memory.NewRepository()
		if err := seed(repo, cfg.SeedFile, logger); err != nil {
			return nil, err
		}
		return repo, nil
	case config.StorageBolt:
		repo, err := boltdb.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		if err := seed(repo, cfg.SeedFile, logger); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return repo, nil
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		Users: casdoor.NewUserCasdoor(casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		}, redisClient),
	})
	if err := repoManager.Initialize(); err != nil {
		return nil, err
	}
	return repoManager.GetRepository(), nil
}

type fixtureLoader interface {
	LoadFixturesFile(path string) error
}

func seed(repo fixtureLoader, path string, logger utils.Logger) error {
	if path == "" {
		return nil
	}
	if err := repo.LoadFixturesFile(path); err != nil {
		return err
	}
	logger.Info("Loaded fixtures", "file", path)
	return nil
}

// initEvents picks Kafka when brokers are configured, else an in-process pub/sub
func initEvents(cfg *config.Config, topics events.Topics, logger *slog.Logger) (events.EventPublisher, message.Subscriber, error) {
	if !cfg.UseKafka() {
		publisher, pubSub := events.NewGoChannelPublisher(topics, logger)
		return publisher, pubSub, nil
	}

	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, topics, logger)
	if err != nil {
		return nil, nil, err
	}
	subscriber, err := events.NewKafkaSubscriber(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, logger)
	if err != nil {
		_ = publisher.Close()
		return nil, nil, err
	}
	return publisher, subscriber, nil
}
