package routes

import (
	"context"
	"io"
	"net/http"

	"aspire-wishlist/internal/config"
	"aspire-wishlist/internal/delivery/http/handler"
	"aspire-wishlist/internal/domain"
	"aspire-wishlist/internal/domain/event"
	"aspire-wishlist/internal/domain/mail"
	domainUser "aspire-wishlist/internal/domain/user"
	domainWishlist "aspire-wishlist/internal/domain/wishlist"
	"aspire-wishlist/internal/logger"
	"aspire-wishlist/internal/middleware"
	"aspire-wishlist/internal/usecase/account"
	"aspire-wishlist/internal/usecase/passwordreset"
	"aspire-wishlist/internal/usecase/verification"
	"aspire-wishlist/internal/usecase/wishlist"
	"aspire-wishlist/pkg/clock"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Store is the persistence backend, postgres or memory.
type Store interface {
	domain.Transactor
	Users() domainUser.Repository
	VerificationTokens() domainUser.VerificationTokenRepository
	PasswordResets() domainUser.PasswordResetRepository
	Wishlists() domainWishlist.Repository
	Items() domainWishlist.ItemRepository
	Health(ctx context.Context) error
}

type Deps struct {
	Store  Store
	Mailer mail.Sender
	Events event.Publisher
	Clock  clock.Clock
	// Random feeds token generation; nil means crypto/rand.
	Random io.Reader
}

// SetupRoutes wires the services and returns the engine. Background work
// started here (rate limiter eviction) stops when ctx is done.
func SetupRoutes(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Events == nil {
		deps.Events = event.NopPublisher{}
	}

	router := gin.New()

	generalLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	// Order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware("/health"))
	router.Use(middleware.SecurityHeadersMiddleware(cfg.Server.Environment == "production"))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(generalLimiter))

	store := deps.Store
	router.GET("/health", func(c *gin.Context) {
		if err := store.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	hasher := utils.NewArgon2Hasher(utils.Argon2Params{
		Memory:      cfg.Hasher.MemoryKB,
		Iterations:  cfg.Hasher.Iterations,
		Parallelism: cfg.Hasher.Parallelism,
	})

	verificationService := verification.NewService(
		store, store.Users(), store.VerificationTokens(),
		deps.Clock, deps.Random, deps.Mailer, deps.Events, cfg,
	)
	accountService := account.NewService(
		store.Users(), hasher, deps.Clock, deps.Mailer, deps.Events, verificationService, cfg,
	)
	resetService := passwordreset.NewService(
		store, store.Users(), store.PasswordResets(), hasher,
		deps.Clock, deps.Random, deps.Mailer, deps.Events, cfg,
	)
	wishlistService := wishlist.NewService(
		store, store.Wishlists(), store.Items(), hasher, deps.Clock, deps.Events,
	)

	accountHandler := handler.NewAccountHandler(accountService, verificationService, resetService)
	wishlistHandler := handler.NewWishlistHandler(wishlistService)

	v1 := router.Group("/api/v1")
	{
		credentials := v1.Group("")
		credentials.Use(middleware.RateLimitMiddleware(authLimiter))
		{
			accountHandler.RegisterPublicRoutes(credentials)
		}

		wishlistHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			accountHandler.RegisterProfileRoutes(protected)
			wishlistHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.StaffOnly())
			{
				accountHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
