package database

import (
	"fmt"
	"log"

	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/pkg/utils"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Receipt entities
		&entity.Receipt{},
		&entity.ReceiptItem{},

		// Invoice entities
		&entity.Invoice{},
		&entity.PaymentURL{},

		// System entities
		&entity.PosTerminal{},
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData creates the initial POS terminal when one is configured via
// environment variables and does not exist yet.
func SeedDefaultData(db *gorm.DB) error {
	terminalCode := viper.GetString("TERMINAL_CODE")
	terminalSecret := viper.GetString("TERMINAL_SECRET")
	terminalName := viper.GetString("TERMINAL_NAME")

	if terminalCode == "" || terminalSecret == "" {
		return nil
	}

	var existing entity.PosTerminal
	if err := db.Where("code = ?", terminalCode).First(&existing).Error; err == nil {
		log.Printf("Terminal already exists: %s", terminalCode)
		return nil
	}

	hash, err := utils.HashPassword(terminalSecret)
	if err != nil {
		return fmt.Errorf("failed to hash terminal secret: %w", err)
	}

	if terminalName == "" {
		terminalName = terminalCode
	}
	terminal := entity.PosTerminal{
		Code:       terminalCode,
		Name:       terminalName,
		SecretHash: hash,
		Active:     true,
	}
	if err := db.Create(&terminal).Error; err != nil {
		return fmt.Errorf("failed to create terminal %s: %w", terminalCode, err)
	}

	log.Printf("Terminal created: %s", terminalCode)
	return nil
}
