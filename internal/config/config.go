package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Ebarimt   EbarimtConfig
	QPay      QPayConfig
	Email     EmailConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

// EbarimtConfig carries the PosAPI (local tax terminal) and TPI (tax authority
// information service) endpoints plus the merchant registration data stamped
// onto every receipt.
type EbarimtConfig struct {
	PosAPIURL        string
	TPIURL           string
	TPIAuthURL       string
	TPIClientID      string
	TPIUsername      string
	TPIPassword      string
	MerchantTIN      string
	PosNo            string
	BranchNo         string
	DistrictCode     string
	Timeout          time.Duration
	DistrictCacheTTL time.Duration
}

type QPayConfig struct {
	BaseURL     string
	Username    string
	Password    string
	InvoiceCode string
	CallbackURL string
	Timeout     time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	From         string
	NotifyTo     string
	Enabled      bool
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "mn-payments-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "mn_payments")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Ulaanbaatar")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("EBARIMT_POSAPI_URL", "http://localhost:7080")
	viper.SetDefault("EBARIMT_TPI_URL", "https://st.api.ebarimt.mn")
	viper.SetDefault("EBARIMT_TPI_AUTH_URL", "https://st.auth.itc.gov.mn/auth/realms/Staging/protocol/openid-connect/token")
	viper.SetDefault("EBARIMT_TPI_CLIENT_ID", "vatps")
	viper.SetDefault("EBARIMT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("EBARIMT_DISTRICT_CACHE_TTL_HOURS", 24)
	viper.SetDefault("QPAY_BASE_URL", "https://merchant.qpay.mn/v2")
	viper.SetDefault("QPAY_TIMEOUT_SECONDS", 30)
	viper.SetDefault("EMAIL_SMTP_PORT", "587")
	viper.SetDefault("EMAIL_ENABLED", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		Ebarimt: EbarimtConfig{
			PosAPIURL:        viper.GetString("EBARIMT_POSAPI_URL"),
			TPIURL:           viper.GetString("EBARIMT_TPI_URL"),
			TPIAuthURL:       viper.GetString("EBARIMT_TPI_AUTH_URL"),
			TPIClientID:      viper.GetString("EBARIMT_TPI_CLIENT_ID"),
			TPIUsername:      viper.GetString("EBARIMT_TPI_USERNAME"),
			TPIPassword:      viper.GetString("EBARIMT_TPI_PASSWORD"),
			MerchantTIN:      viper.GetString("EBARIMT_MERCHANT_TIN"),
			PosNo:            viper.GetString("EBARIMT_POS_NO"),
			BranchNo:         viper.GetString("EBARIMT_BRANCH_NO"),
			DistrictCode:     viper.GetString("EBARIMT_DISTRICT_CODE"),
			Timeout:          time.Duration(viper.GetInt("EBARIMT_TIMEOUT_SECONDS")) * time.Second,
			DistrictCacheTTL: time.Duration(viper.GetInt("EBARIMT_DISTRICT_CACHE_TTL_HOURS")) * time.Hour,
		},
		QPay: QPayConfig{
			BaseURL:     viper.GetString("QPAY_BASE_URL"),
			Username:    viper.GetString("QPAY_USERNAME"),
			Password:    viper.GetString("QPAY_PASSWORD"),
			InvoiceCode: viper.GetString("QPAY_INVOICE_CODE"),
			CallbackURL: viper.GetString("QPAY_CALLBACK_URL"),
			Timeout:     time.Duration(viper.GetInt("QPAY_TIMEOUT_SECONDS")) * time.Second,
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("EMAIL_SMTP_HOST"),
			SMTPPort:     viper.GetString("EMAIL_SMTP_PORT"),
			SMTPUser:     viper.GetString("EMAIL_SMTP_USER"),
			SMTPPassword: viper.GetString("EMAIL_SMTP_PASSWORD"),
			From:         viper.GetString("EMAIL_FROM"),
			NotifyTo:     viper.GetString("EMAIL_NOTIFY_TO"),
			Enabled:      viper.GetBool("EMAIL_ENABLED"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
