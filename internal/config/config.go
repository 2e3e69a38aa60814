package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Transport GatewayConfig   `yaml:"transport_service"`
	Account   GatewayConfig   `yaml:"account_service"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Pricing   PricingConfig   `yaml:"pricing"`
	JWT       JWTConfig       `yaml:"jwt"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// KafkaConfig contains event broker settings
type KafkaConfig struct {
	Brokers           string `yaml:"brokers"`
	ClientID          string `yaml:"client_id"`
	NotificationTopic string `yaml:"notification_topic"`
	ReportTopic       string `yaml:"report_topic"`
	AnalyticsTopic    string `yaml:"analytics_topic"`
}

// GatewayConfig contains settings for one downstream service client
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// BreakerConfig contains circuit breaker thresholds shared by both gateways
type BreakerConfig struct {
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
	OpenSeconds         int    `yaml:"open_seconds"`
	HalfOpenMaxCalls    uint32 `yaml:"half_open_max_calls"`
}

// PricingConfig contains the default tariff, currency-scaled cents
type PricingConfig struct {
	BaseFareCents  int64 `yaml:"base_fare_cents"`
	PerMinuteCents int64 `yaml:"per_minute_cents"`
	PerKmCents     int64 `yaml:"per_km_cents"`
}

// JWTConfig contains service token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// AlertsConfig contains ops alerting settings (SendGrid)
type AlertsConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	OpsEmail       string `yaml:"ops_email"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileVehicleStatus string `yaml:"reconcile_vehicle_status"`
	SweepStaleRentals      string `yaml:"sweep_stale_rentals"`
	StaleRentalHours       int    `yaml:"stale_rental_hours"`
	MaxReconcileAttempts   int    `yaml:"max_reconcile_attempts"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Kafka
	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		c.Kafka.Brokers = val
	}

	// Downstream services
	if val := os.Getenv("TRANSPORT_SERVICE_URL"); val != "" {
		c.Transport.BaseURL = val
	}
	if val := os.Getenv("ACCOUNT_SERVICE_URL"); val != "" {
		c.Account.BaseURL = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Alerts
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Alerts.SendGridAPIKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Kafka.Brokers == "" {
		return fmt.Errorf("kafka brokers are required")
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "rental-service"
	}
	if c.Kafka.NotificationTopic == "" {
		c.Kafka.NotificationTopic = "rental-notifications"
	}
	if c.Kafka.ReportTopic == "" {
		c.Kafka.ReportTopic = "rental-reports"
	}
	if c.Kafka.AnalyticsTopic == "" {
		c.Kafka.AnalyticsTopic = "rental-analytics"
	}

	if c.Transport.BaseURL == "" {
		return fmt.Errorf("transport service base URL is required")
	}
	if c.Account.BaseURL == "" {
		return fmt.Errorf("account service base URL is required")
	}
	if c.Transport.TimeoutSeconds <= 0 {
		c.Transport.TimeoutSeconds = 3
	}
	if c.Account.TimeoutSeconds <= 0 {
		c.Account.TimeoutSeconds = 3
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Breaker defaults
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = 5
	}
	if c.Breaker.OpenSeconds <= 0 {
		c.Breaker.OpenSeconds = 30
	}
	if c.Breaker.HalfOpenMaxCalls == 0 {
		c.Breaker.HalfOpenMaxCalls = 1
	}

	// Pricing defaults: 50 RUB unlock, 6.50 RUB per minute, 12 RUB per km
	if c.Pricing.BaseFareCents == 0 {
		c.Pricing.BaseFareCents = 5000
	}
	if c.Pricing.PerMinuteCents == 0 {
		c.Pricing.PerMinuteCents = 650
	}
	if c.Pricing.PerKmCents == 0 {
		c.Pricing.PerKmCents = 1200
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileVehicleStatus == "" {
		c.Scheduler.ReconcileVehicleStatus = "0 */2 * * * *" // every 2 minutes
	}
	if c.Scheduler.SweepStaleRentals == "" {
		c.Scheduler.SweepStaleRentals = "0 0 * * * *" // hourly
	}
	if c.Scheduler.StaleRentalHours <= 0 {
		c.Scheduler.StaleRentalHours = 24
	}
	if c.Scheduler.MaxReconcileAttempts <= 0 {
		c.Scheduler.MaxReconcileAttempts = 10
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
