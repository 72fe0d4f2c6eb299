package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL          string
	DBDriver             string
	Port                 string
	GoEnv                string
	Auth0Domain          string
	Auth0Audience        string
	AWSRegion            string
	AWSS3Bucket          string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	StripeSecretKey      string
	StripePublishableKey string
	PaymentCurrency      string
	RabbitMQURL          string
	RestaurantName       string
	RestaurantTimezone   string
	CORSAllowedOrigins   []string
	LogLevel             string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production the environment is set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Port:                 getEnv("PORT", "8080"),
		GoEnv:                getEnv("GO_ENV", "development"),
		Auth0Domain:          getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:        getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:            getEnv("AWS_REGION", "eu-west-2"),
		AWSS3Bucket:          getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		PaymentCurrency:      strings.ToLower(getEnv("PAYMENT_CURRENCY", "gbp")),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		RestaurantName:       getEnv("RESTAURANT_NAME", "Flavour Restaurant"),
		RestaurantTimezone:   getEnv("RESTAURANT_TIMEZONE", "Europe/London"),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if _, err := time.LoadLocation(c.RestaurantTimezone); err != nil {
		return fmt.Errorf("invalid RESTAURANT_TIMEZONE %q: %w", c.RestaurantTimezone, err)
	}
	if len(c.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a three-letter ISO code, got %q", c.PaymentCurrency)
	}
	if nonCentesimalCurrencies[c.PaymentCurrency] {
		return fmt.Errorf("PAYMENT_CURRENCY %q is not supported: amounts are charged in hundredths", c.PaymentCurrency)
	}
	return nil
}

// nonCentesimalCurrencies are the processor's zero- and three-decimal
// currencies, whose minor unit is not 1/100
var nonCentesimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
	"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// PaymentsEnabled reports whether payment processor credentials are present
func (c *Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

// Location returns the restaurant's time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.RestaurantTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetConfig returns the configuration loaded by Load or set by SetConfig
func GetConfig() *Config {
	if appConfig == nil {
		return &Config{
			GoEnv:              "development",
			PaymentCurrency:    "gbp",
			RestaurantName:     "Flavour Restaurant",
			RestaurantTimezone: "UTC",
		}
	}
	return appConfig
}

// SetConfig replaces the active configuration (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
