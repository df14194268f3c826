package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/kindcoach/kindcoach-api/pkg/validator"

	"github.com/kindcoach/kindcoach-api/internal/adapter/handler"
	"github.com/kindcoach/kindcoach-api/internal/adapter/repository"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/blobstore"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/cache"
	httpmw "github.com/kindcoach/kindcoach-api/internal/infrastructure/http/middleware"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/storage"
	"github.com/kindcoach/kindcoach-api/internal/usecase/analysis"
	"github.com/kindcoach/kindcoach-api/internal/usecase/auth"
	"github.com/kindcoach/kindcoach-api/internal/usecase/pipeline"
	"github.com/kindcoach/kindcoach-api/internal/usecase/prompt"
	pkgai "github.com/kindcoach/kindcoach-api/pkg/ai"
	"github.com/kindcoach/kindcoach-api/pkg/config"
	"github.com/kindcoach/kindcoach-api/pkg/jwt"
)

// @title           KindCoach API
// @version         1.0
// @description     Coaching analysis API for teacher-child conversations: audio upload, transcription, role classification and LLM coaching reports.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	sessionStore := cache.NewRedisSessionStore(redisClient)

	// Initialize MinIO recording archive
	log.Println("📦 Connecting to object storage...")
	archive, err := storage.NewRecordingArchive(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize recording archive: %v", err)
	}

	// Initialize the analysis document store
	log.Println("⚙️  Initializing document store...")
	store, err := blobstore.New(cfg.Data.ResultsDir)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	conversationRepo := repository.NewConversationRepository(store)
	sessionManager := analysis.NewManager(conversationRepo, logger)

	// Initialize prompt manager
	log.Println("📝 Initializing prompt manager...")
	promptManager, err := prompt.NewManager(cfg.Data.PromptsFile, cfg.Data.BackupDir, logger)
	if err != nil {
		log.Fatalf("Failed to initialize prompt manager: %v", err)
	}

	// Initialize AI collaborators
	log.Println("🤖 Initializing AI components...")
	asmClient := pkgai.NewAssemblyAIClient(&cfg.Assembly)
	openaiClient := pkgai.NewOpenAIClient(&cfg.OpenAI)

	// Initialize the conversation pipeline
	pipelineService := pipeline.NewService(asmClient, openaiClient, archive, promptManager, sessionManager, cfg.OpenAI.Model, logger)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize auth service
	log.Println("🔐 Initializing auth service...")
	authService, err := auth.NewService(
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPassword,
		cfg.Auth.SessionTimeout,
		jwtManager,
		sessionStore,
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuth(authService, logger)
	conversationHandler := handler.NewConversation(pipelineService, sessionManager, logger)
	promptHandler := handler.NewPrompt(promptManager, logger)
	dashboardHandler := handler.NewDashboard(sessionManager, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authEchoMW := httpmw.EchoAuth(authService)
	router := handler.NewRouter(cfg, authHandler, conversationHandler, promptHandler, dashboardHandler, authEchoMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
