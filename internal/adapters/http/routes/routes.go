package routes

import (
	"time"

	"bloodlink-api/internal/adapters/http/handlers"
	"bloodlink-api/internal/adapters/http/middleware"
	"bloodlink-api/internal/adapters/persistence/repositories"
	"bloodlink-api/internal/config"
	"bloodlink-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	eventRepo := repositories.NewRequestEventRepository(db)
	fundRepo := repositories.NewFundRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	requestService := services.NewRequestService(requestRepo, eventRepo, userRepo)
	fundService := services.NewFundService(fundRepo)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	fundHandler := handlers.NewFundHandler(fundService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Static reference data (cached)
	apiV1.Get("/blood-groups", middleware.BloodGroupCache(), healthHandler.BloodGroups)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Donation request routes (authenticated)
	requestRoutes := apiV1.Group("/requests")
	requestRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRequestRoutes(requestRoutes, requestHandler)

	// Fund routes (authenticated; writes admin only)
	fundRoutes := apiV1.Group("/funds")
	fundRoutes.Use(middleware.AuthMiddleware(cfg))
	setupFundRoutes(fundRoutes, fundHandler)

	// Dashboard routes (authenticated)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against abuse
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupRequestRoutes configures donation request routes. Route-level role
// gating is deliberately coarse; the service re-runs the full policy on every
// mutation, so fine-grained rules (owner, assigned donor, lifecycle state)
// live in one place.
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/my", handler.GetMine)
	router.Get("/assigned", handler.GetAssigned)
	router.Get("/:id", handler.GetByID)
	router.Get("/:id/history", handler.GetHistory)
	router.Post("/:id/donate", handler.Donate)
	router.Put("/:id/status", handler.AdvanceStatus)
	router.Put("/:id", handler.EditFields)
	router.Delete("/:id", handler.Delete)
}

// setupFundRoutes configures fund record routes
func setupFundRoutes(router fiber.Router, handler *handlers.FundHandler) {
	// Any authenticated user may view the funding ledger
	router.Get("/", middleware.CacheControl(time.Minute), handler.List)

	// Admin only writes
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", handler.Create)
	adminRoutes.Delete("/:id", handler.Delete)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	// Auto-detect role dashboard (All authenticated users)
	router.Get("/", handler.GetMyDashboard)

	// Donor dashboard (All authenticated users)
	router.Get("/donor", handler.GetDonorDashboard)

	// Volunteer dashboard (Volunteer/Admin only)
	router.Get("/volunteer", middleware.VolunteerOrAdmin(), handler.GetVolunteerDashboard)

	// Admin dashboard (Admin only)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/role", handler.SetRole)
	router.Put("/:id/block", handler.Block)
	router.Put("/:id/unblock", handler.Unblock)
	router.Delete("/:id", handler.Delete)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", middleware.StrictRateLimiter(), handler.ChangePassword)
}
