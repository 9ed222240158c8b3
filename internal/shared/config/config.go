package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Payment providers
	Stripe   StripeConfig
	Paystack PaystackConfig

	// Checkout behaviour
	Checkout CheckoutConfig

	// Reconciliation poller
	Reconcile ReconcileConfig

	// Kafka
	Kafka KafkaConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for different operations
	CacheTTL    time.Duration
	TempDataTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// StripeConfig holds Stripe credentials. Provider availability is driven by
// key presence: an empty secret key means the provider is not offered.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// PaystackConfig holds Paystack credentials and callback endpoints.
type PaystackConfig struct {
	SecretKey   string
	PublicKey   string
	CallbackURL string
}

// CheckoutConfig holds checkout session behaviour.
type CheckoutConfig struct {
	// HoldTTL is the reservation window: inventory held by a checkout
	// session is released when this expires. Fixed at session start,
	// never extended by later selection changes.
	HoldTTL time.Duration

	// DefaultCurrency for orders when the event carries none.
	DefaultCurrency string
}

// ReconcileConfig holds the payment reconciliation poller settings.
type ReconcileConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	PollInterval  time.Duration
	MaxAttempts   int
	// GracePeriod is how long after initiation a payment is left alone
	// before the poller starts verifying it.
	GracePeriod time.Duration
	BatchSize   int
}

// KafkaConfig holds Kafka connection configuration.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                  bool          `json:"enabled"`
	WindowDuration           time.Duration `json:"window_duration"`
	DefaultRequests          int           `json:"default_requests"`
	PublicRequests           int           `json:"public_requests"`
	CheckoutRequests         int           `json:"checkout_requests"`
	CheckoutCriticalRequests int           `json:"checkout_critical_requests"`
	WebhookRequests          int           `json:"webhook_requests"`
	UserRequests             int           `json:"user_requests"`
	HealthRequests           int           `json:"health_requests"`
	WhitelistedIPs           []string      `json:"whitelisted_ips"`
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ticketflow_db"),
			User:     getEnv("DB_USER", "ticketflow_user"),
			Password: getEnv("DB_PASSWORD", "ticketflow_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			CacheTTL:    getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
			TempDataTTL: getDurationEnv("REDIS_TEMP_DATA_TTL", 5*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		// Payment providers
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			PublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			PublicKey:   getEnv("PAYSTACK_PUBLIC_KEY", ""),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),
		},

		// Checkout behaviour
		Checkout: CheckoutConfig{
			HoldTTL:         getDurationEnv("CHECKOUT_HOLD_TTL", 10*time.Minute),
			DefaultCurrency: getEnv("CHECKOUT_DEFAULT_CURRENCY", "USD"),
		},

		// Reconciliation poller
		Reconcile: ReconcileConfig{
			Enabled:       getBoolEnv("RECONCILE_ENABLED", true),
			SweepInterval: getDurationEnv("RECONCILE_SWEEP_INTERVAL", 30*time.Second),
			PollInterval:  getDurationEnv("RECONCILE_POLL_INTERVAL", 2*time.Second),
			MaxAttempts:   getIntEnv("RECONCILE_MAX_ATTEMPTS", 10),
			GracePeriod:   getDurationEnv("RECONCILE_GRACE_PERIOD", 1*time.Minute),
			BatchSize:     getIntEnv("RECONCILE_BATCH_SIZE", 50),
		},

		// Kafka
		Kafka: KafkaConfig{
			Enabled: getBoolEnv("KAFKA_ENABLED", false),
			Brokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:                  getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:           getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:          getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:           getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			CheckoutRequests:         getIntEnv("RATE_LIMIT_CHECKOUT_REQUESTS", 30),
			CheckoutCriticalRequests: getIntEnv("RATE_LIMIT_CHECKOUT_CRITICAL_REQUESTS", 10),
			WebhookRequests:          getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 120),
			UserRequests:             getIntEnv("RATE_LIMIT_USER_REQUESTS", 60),
			HealthRequests:           getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:           getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// Configured reports whether Stripe credentials are present.
func (s StripeConfig) Configured() bool {
	return s.SecretKey != ""
}

// Configured reports whether Paystack credentials are present.
func (p PaystackConfig) Configured() bool {
	return p.SecretKey != ""
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
