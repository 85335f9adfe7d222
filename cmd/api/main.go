package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campushq/placement-go-api/internal/config"
	"github.com/campushq/placement-go-api/internal/database"
	"github.com/campushq/placement-go-api/internal/handler"
	"github.com/campushq/placement-go-api/internal/middleware"
	"github.com/campushq/placement-go-api/internal/models"
	"github.com/campushq/placement-go-api/internal/repository"
	"github.com/campushq/placement-go-api/internal/router"
	"github.com/campushq/placement-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Job{}, &models.Assessment{}, &models.AssessmentResult{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional collaborators; the engine degrades to
	// uncached, event-less operation without them.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, results caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, domain events disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	events := service.NewAssessmentEvents(natsConn, logger)

	assessmentRepo := repository.NewAssessmentRepository(db)
	resultRepo := repository.NewResultRepository(db)

	assessmentService := service.NewAssessmentService(assessmentRepo, resultRepo, validate, events, logger)
	attemptService := service.NewAttemptService(assessmentRepo, resultRepo, validate, redisClient, events, logger)
	resultsService := service.NewResultsService(assessmentRepo, resultRepo, redisClient, cfg.ResultsCacheTTL, logger)

	assessmentHandler := handler.NewAssessmentHandler(assessmentService, resultsService, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: assessmentHandler,
		AttemptHandler:    attemptHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
