package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	echoSwagger "github.com/swaggo/echo-swagger"

	"congregate/internal/caching"
	"congregate/internal/handlers"
	"congregate/internal/identity"
	"congregate/internal/jobs/background"
	"congregate/internal/middleware"
	"congregate/internal/repositories"
	"congregate/internal/services"
	"congregate/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioClient, err := minio.New(minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioAccessKey, minioSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize MinIO client: %v", err)
	}
	storageSvc := services.NewMinioStorageServiceFromClient(minioClient)
	if err := storageSvc.EnsureBucketExists(context.Background(), "song-attachments"); err != nil {
		log.Printf("WARNING: Failed to ensure attachment bucket: %v", err)
	}

	// Create repositories
	profileRepo := repositories.NewProfileRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	inviteRepo := repositories.NewInviteRepo(pool)
	orgRepo := repositories.NewOrganizationRepo(pool)
	songRepo := repositories.NewSongRepo(pool)
	planRepo := repositories.NewServicePlanRepo(pool)

	// Identity provider
	provider := identity.NewPgProvider(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, 3600, 7*24*3600)
	notificationSvc := services.NewLogNotificationService()
	invitationSvc := services.NewInvitationService(inviteRepo, orgRepo, provider, notificationSvc)
	onboardingSvc := services.NewOnboardingService(provider, profileRepo, membershipRepo, inviteRepo)
	orgSvc := services.NewOrganizationService(orgRepo, membershipRepo)
	songSvc := services.NewSongService(songRepo, storageSvc, cacheSvc)
	planSvc := services.NewPlanService(planRepo, songRepo, cacheSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, invitationSvc, provider)
	onboardingHandlers := handlers.NewOnboardingHandlers(onboardingSvc, provider)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc, provider)
	invitationHandlers := handlers.NewInvitationHandlers(invitationSvc, provider)
	songHandlers := handlers.NewSongHandlers(songSvc)
	planHandlers := handlers.NewPlanHandlers(planSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioClient)

	// Auth middleware: locally issued tokens by default, hosted-provider
	// JWKS tokens when a JWKS URL is configured.
	authMiddleware := middleware.JWTMiddleware(authSvc)
	if jwksURL := os.Getenv("PROVIDER_JWKS_URL"); jwksURL != "" {
		providerJWT, err := middleware.NewProviderJWTMiddleware(jwksURL)
		if err != nil {
			log.Fatalf("Failed to initialize provider JWKS middleware: %v", err)
		}
		authMiddleware = providerJWT.Verify()
		log.Printf("Using hosted-provider token verification via %s", jwksURL)
	}
	membershipMiddleware := middleware.NewMembershipMiddleware(membershipRepo)

	// Background jobs
	scheduler := background.NewJobScheduler(cacheSvc, inviteRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	// Deadline on the request context so every downstream database, cache
	// and storage call inherits it.
	e.Use(echoMiddleware.ContextTimeout(30 * time.Second))

	// Health and docs endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login/refresh)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(authMiddleware)

	protected.GET("/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	// Onboarding routes
	protected.GET("/onboarding/next", onboardingHandlers.Next)
	protected.POST("/onboarding/profile", onboardingHandlers.CompleteProfile)
	protected.POST("/onboarding/accept-invite", onboardingHandlers.AcceptInvitation)

	// Organization routes
	protected.POST("/organizations", orgHandlers.Create)
	protected.GET("/organizations", orgHandlers.List)

	// Organization-scoped routes gated by active membership
	org := protected.Group("/organizations/:orgID", membershipMiddleware.RequireMember())
	org.GET("", orgHandlers.Get)
	org.GET("/members", orgHandlers.ListMembers)

	org.GET("/songs", songHandlers.List)
	org.POST("/songs", songHandlers.Create)
	org.GET("/songs/:songID", songHandlers.Get)
	org.PUT("/songs/:songID", songHandlers.Update)
	org.DELETE("/songs/:songID", songHandlers.Delete)
	org.POST("/songs/:songID/attachment", songHandlers.UploadAttachment)
	org.GET("/songs/:songID/attachment", songHandlers.GetAttachmentURL)

	org.GET("/plans", planHandlers.List)
	org.POST("/plans", planHandlers.Create)
	org.GET("/plans/:planID", planHandlers.Get)
	org.PUT("/plans/:planID", planHandlers.Update)
	org.DELETE("/plans/:planID", planHandlers.Delete)
	org.GET("/plans/:planID/items", planHandlers.GetItems)
	org.PUT("/plans/:planID/items", planHandlers.SetItems)

	// Admin-only organization routes
	admin := protected.Group("/organizations/:orgID", membershipMiddleware.RequireAdmin())
	admin.PUT("", orgHandlers.Update)
	admin.POST("/invitations", invitationHandlers.Create)
	admin.GET("/invitations", invitationHandlers.ListPending)
	admin.DELETE("/invitations/:inviteID", invitationHandlers.Revoke)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Congregate server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if err := e.Shutdown(context.Background()); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
}
