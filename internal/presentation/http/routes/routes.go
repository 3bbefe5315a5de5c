package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/config"
	domainRepo "github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/handler"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/middleware"
	"github.com/sangkips/mn-payments-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Receipt  *handler.ReceiptHandler
	Invoice  *handler.InvoiceHandler
	Callback *handler.CallbackHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Log             *logrus.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/token", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// Gateway callback entry point; the gateway does not authenticate,
		// the reconciler verifies everything against payment/check.
		v1.POST("/payments/callback", h.Callback.HandleCallback)

		// Protected routes (terminal authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-terminal rate limiter
		rateLimiter := middleware.NewTerminalRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := protected.Group("/receipts")
	{
		receipts.POST("", h.Receipt.Submit)
		receipts.GET("", h.Receipt.List)
		receipts.GET("/:id", h.Receipt.Get)
	}

	// Taxpayer directory and reference data
	protected.GET("/taxpayers/:reg_no", h.Receipt.LookupTaxpayer)
	protected.GET("/districts", h.Receipt.Districts)
	protected.POST("/districts/refresh", h.Receipt.RefreshDistricts)

	// Tax authority connector admin
	ebarimt := protected.Group("/ebarimt")
	{
		ebarimt.GET("/info", h.Receipt.PosInfo)
		ebarimt.POST("/send-data", h.Receipt.SendData)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		// Invoice creation uses idempotency middleware to prevent duplicates
		invoices.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/check", h.Invoice.Check)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
	}
}
