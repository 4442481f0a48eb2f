package main

import (
	"log"
	"net/http"

	_ "noctuai/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"noctuai/internal/auth"
	"noctuai/internal/cache"
	"noctuai/internal/config"
	"noctuai/internal/db"
	"noctuai/internal/handler"
	"noctuai/internal/model"
	"noctuai/internal/provider"
	"noctuai/internal/repository"
	"noctuai/internal/router"
	"noctuai/internal/service"
	"noctuai/internal/storage/s3"
)

// @title noctuai API
// @version 1.0
// @description Generative-AI creation service with plan/quota gating, creation history, and a community feed.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Creation{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	creationRepo := repository.NewCreationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize external providers
	geminiClient := provider.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey)
	stabilityClient := provider.NewStabilityClient(cfg.StabilityHost, cfg.StabilityAPIKey)
	cdnStorage, err := s3.New(s3.Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("s3 init: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	creationService := service.NewCreationService(
		userRepo,
		creationRepo,
		geminiClient,
		stabilityClient,
		stabilityClient,
		cdnStorage,
		cacheClient,
		cfg.FreeUsageLimit,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	aiHandler := handler.NewAIHandler(creationService)
	creationHandler := handler.NewCreationHandler(creationService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		aiHandler,
		creationHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
