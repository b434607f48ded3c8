package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures runtime configuration for the API service.
type Config struct {
	HTTP       HTTPConfig
	Database   DatabaseConfig
	Razorpay   RazorpayConfig
	Shiprocket ShiprocketConfig
	Telemetry  TelemetryConfig
	Service    ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
}

type ShiprocketConfig struct {
	Enabled        bool
	BaseURL        string
	Email          string
	Password       string
	PickupPostcode string
	PickupLocation string
	Timeout        time.Duration
	PollInterval   time.Duration
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort         = 8080
	defaultShutdownGrace    = 15
	defaultMigrationsPath   = "migrations"
	defaultAutoMigrate      = true
	defaultServiceName      = "yellowtea-api"
	defaultServiceVersion   = "0.1.0"
	defaultEnvironment      = "development"
	defaultLogLevel         = "info"
	defaultOTelSampleRate   = 1.0
	defaultCurrency         = "INR"
	defaultRazorpayBaseURL  = "https://api.razorpay.com"
	defaultShiprocketURL    = "https://apiv2.shiprocket.in"
	defaultGatewayTimeout   = 10 * time.Second
	defaultPollInterval     = 5 * time.Minute
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	dbCfg := loadDatabaseConfig()

	razorpayCfg, err := loadRazorpayConfig()
	if err != nil {
		return nil, fmt.Errorf("loading razorpay config: %w", err)
	}

	shiprocketCfg, err := loadShiprocketConfig()
	if err != nil {
		return nil, fmt.Errorf("loading shiprocket config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	return &Config{
		HTTP:       httpCfg,
		Database:   dbCfg,
		Razorpay:   razorpayCfg,
		Shiprocket: shiprocketCfg,
		Telemetry:  telCfg,
		Service:    serviceCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	autoMigrate := defaultAutoMigrate
	if value, ok := os.LookupEnv("AUTO_MIGRATE"); ok {
		autoMigrate = value == "true"
	}

	migrationsPath := getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    autoMigrate,
		MigrationsPath: migrationsPath,
	}
}

func loadRazorpayConfig() (RazorpayConfig, error) {
	timeout, err := getDurationEnv("RAZORPAY_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return RazorpayConfig{}, err
	}

	return RazorpayConfig{
		BaseURL:       getEnvOrDefault("RAZORPAY_BASE_URL", defaultRazorpayBaseURL),
		KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		Currency:      getEnvOrDefault("PAYMENT_CURRENCY", defaultCurrency),
		Timeout:       timeout,
	}, nil
}

func loadShiprocketConfig() (ShiprocketConfig, error) {
	timeout, err := getDurationEnv("SHIPROCKET_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return ShiprocketConfig{}, err
	}

	pollInterval, err := getDurationEnv("SHIPROCKET_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return ShiprocketConfig{}, err
	}

	return ShiprocketConfig{
		Enabled:        getBoolEnv("SHIPROCKET_ENABLED", false),
		BaseURL:        getEnvOrDefault("SHIPROCKET_BASE_URL", defaultShiprocketURL),
		Email:          os.Getenv("SHIPROCKET_EMAIL"),
		Password:       os.Getenv("SHIPROCKET_PASSWORD"),
		PickupPostcode: os.Getenv("SHIPROCKET_PICKUP_POSTCODE"),
		PickupLocation: getEnvOrDefault("SHIPROCKET_PICKUP_LOCATION", "Primary"),
		Timeout:        timeout,
		PollInterval:   pollInterval,
	}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      logLevel,
		OTelEndpoint:  otelEndpoint,
		EnableTracing: enableTracing,
		EnableMetrics: enableMetrics,
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "yellowtea")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbName, sslMode,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
