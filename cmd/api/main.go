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
	echomw "github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/accordfamily/accord-backend/pkg/validator"

	"github.com/accordfamily/accord-backend/internal/adapter/handler"
	"github.com/accordfamily/accord-backend/internal/adapter/repository"
	"github.com/accordfamily/accord-backend/internal/infrastructure/cache"
	"github.com/accordfamily/accord-backend/internal/infrastructure/database"
	httpmw "github.com/accordfamily/accord-backend/internal/infrastructure/http/middleware"
	"github.com/accordfamily/accord-backend/internal/infrastructure/notification"
	"github.com/accordfamily/accord-backend/internal/infrastructure/storage"
	"github.com/accordfamily/accord-backend/internal/usecase/auth"
	"github.com/accordfamily/accord-backend/internal/usecase/call"
	"github.com/accordfamily/accord-backend/internal/usecase/messaging"
	"github.com/accordfamily/accord-backend/internal/usecase/moderation"
	"github.com/accordfamily/accord-backend/internal/usecase/policy"
	pkgai "github.com/accordfamily/accord-backend/pkg/ai"
	"github.com/accordfamily/accord-backend/pkg/config"
	"github.com/accordfamily/accord-backend/pkg/jwt"
)

const policyCacheTTL = 10 * time.Minute

// @title           Accord Family API
// @version         1.0
// @description     Mediated co-parenting communication API with message screening, accountable calls, and post-call analysis

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

	e.HideBanner = true
	e.HidePort = false

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running schema migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	log.Println("🗄️  Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	authSessionRepo := repository.NewAuthSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	callRepo := repository.NewScheduledCallRepository(db)
	callSessionRepo := repository.NewCallSessionRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize moderation backend
	log.Println("🤖 Initializing moderation components...")
	anthropicClient := pkgai.NewAnthropicClient(&cfg.Anthropic)
	evaluator := moderation.NewEvaluator(anthropicClient, logger)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize services
	log.Println("✨ Initializing services...")
	dispatcher := notification.NewDispatcher(&cfg.Notification, notificationRepo, logger)
	policyCache := cache.NewPolicyCache(redisClient, policyCacheTTL)
	policyService := policy.NewService(policyRepo, minioClient, policyCache, logger)
	authService := auth.NewService(userRepo, authSessionRepo, jwtManager, logger)
	messagingService := messaging.NewService(messageRepo, userRepo, evaluator, policyService, dispatcher, logger)
	analyzer := call.NewAnalyzer(transcriptRepo, anthropicClient, logger)
	scheduler := call.NewScheduler(callRepo, dispatcher, logger)
	coordinator := call.NewCoordinator(callRepo, callSessionRepo, analyzer, dispatcher, logger)
	monitor := call.NewMonitor(callRepo, callSessionRepo, transcriptRepo, evaluator, policyService, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuthHandler(authService, logger)
	messageHandler := handler.NewMessageHandler(messagingService, logger)
	callHandler := handler.NewCallHandler(scheduler, coordinator, monitor, logger)
	policyHandler := handler.NewPolicyHandler(policyService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	authMW := httpmw.NewAuthMiddleware(authService)
	router := handler.NewRouter(authHandler, messageHandler, callHandler, policyHandler, notificationHandler, authMW)
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
