package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/application/service"
	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/database"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/ebarimt"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/qpay"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/repository"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/handler"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/routes"
	"github.com/sangkips/mn-payments-api/pkg/email"
	"github.com/sangkips/mn-payments-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Seed the configured terminal
	if err := database.SeedDefaultData(db); err != nil {
		log.WithError(err).Warn("Failed to seed default data")
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	receiptRepo := repository.NewReceiptRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	terminalRepo := repository.NewTerminalRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize external clients
	ebarimtClient := ebarimt.NewClient(&cfg.Ebarimt, log)
	qpayClient := qpay.NewClient(&cfg.QPay, log)

	// Initialize email service
	emailService := email.NewEmailService(&cfg.Email)

	// Initialize services
	receiptService := service.NewReceiptService(
		receiptRepo,
		ebarimtClient,
		emailService,
		service.MerchantInfo{
			TIN:          cfg.Ebarimt.MerchantTIN,
			PosNo:        cfg.Ebarimt.PosNo,
			BranchNo:     cfg.Ebarimt.BranchNo,
			DistrictCode: cfg.Ebarimt.DistrictCode,
		},
		cfg.Ebarimt.DistrictCacheTTL,
		log,
	)
	invoiceService := service.NewInvoiceService(invoiceRepo, qpayClient, log)
	reconcileService := service.NewReconcileService(invoiceRepo, qpayClient, log)
	authService := service.NewAuthService(terminalRepo, jwtManager)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Receipt:  handler.NewReceiptHandler(receiptService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Callback: handler.NewCallbackHandler(reconcileService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Log:             log,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.WithFields(logrus.Fields{
		"service": cfg.App.Name,
		"port":    port,
		"env":     cfg.App.Env,
	}).Info("Starting server")

	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
		os.Exit(1)
	}
}
