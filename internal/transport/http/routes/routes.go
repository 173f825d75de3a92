package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/infra/config"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/infra/security"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/handlers"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth       *usecase.AuthService
	Decisions  *usecase.DecisionService
	Sessions   *usecase.SessionService
	Policies   *usecase.PolicyService
	Usage      *usecase.UsageService
	Users      *usecase.UserService
	Violations *usecase.ViolationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	JWTManager  *security.JWTManager
	Metrics     *middleware.HTTPMetrics
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.JWTManager)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, isDev)
		authHandler.RegisterRoutes(authGroup, authMiddleware, buildLoginMiddlewares(deps)...)

		accessGroup := api.Group("/access")
		accessGroup.Use(authMiddleware)
		accessHandler := handlers.NewAccessHandler(deps.Services.Decisions)
		accessHandler.RegisterRoutes(accessGroup)

		sessionHandler := handlers.NewSessionHandler(deps.Services.Sessions, deps.Services.Decisions, deps.Services.Usage)
		sessionGroup := api.Group("/sessions")
		sessionGroup.Use(authMiddleware)
		sessionHandler.RegisterRoutes(sessionGroup)
		sessionHandler.RegisterAdminRoutes(sessionGroup.Group("", adminOnly))

		policyHandler := handlers.NewPolicyHandler(deps.Services.Policies)
		policyGroup := api.Group("/policies")
		policyGroup.Use(authMiddleware)
		policyHandler.RegisterRoutes(policyGroup)
		policyHandler.RegisterAdminRoutes(policyGroup.Group("", adminOnly))

		usageHandler := handlers.NewUsageHandler(deps.Services.Usage)
		usageGroup := api.Group("/usage")
		usageGroup.Use(authMiddleware)
		usageHandler.RegisterRoutes(usageGroup)
		usageHandler.RegisterAdminRoutes(usageGroup.Group("", adminOnly))

		userHandler := handlers.NewUserHandler(deps.Services.Users)
		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware)
		userHandler.RegisterAdminRoutes(userGroup.Group("", adminOnly))

		violationHandler := handlers.NewViolationHandler(deps.Services.Violations)
		violationGroup := api.Group("/violations")
		violationGroup.Use(authMiddleware)
		violationHandler.RegisterRoutes(violationGroup)
		violationHandler.RegisterAdminRoutes(violationGroup.Group("", adminOnly))
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
