// Package config provides configuration structures and validation for the
// payment gateway core. It covers the HTTP server, database connections, the
// event bus, the upstream telecom gateway, and the background schedulers.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents
// a major subsystem and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Gateway     GatewayConfig
	Whitelist   WhitelistConfig
	OTP         OTPConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains event bus configuration
type KafkaConfig struct {
	Brokers           string
	TransactionTopic  string // Transaction created/status-changed events
	MandateTopic      string // Mandate state-changed events
	OTPTopic          string // Code-issued events for the notification consumer
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	MaxWait           time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the callback journal
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// GatewayConfig contains upstream telecom gateway configuration. Each token
// type authenticates with its own subscription key.
type GatewayConfig struct {
	BaseURL                     string
	TargetEnvironment           string        // Environment callers must echo; mismatches are rejected
	CollectionSubscriptionKey   string
	DisbursementSubscriptionKey string
	RequestTimeout              time.Duration // Per-call upstream timeout
	TokenRefreshInterval        time.Duration // Scheduler cadence for token refreshes
	TokenDefaultTTL             time.Duration // Used when upstream omits expires_in
}

// WhitelistConfig contains the whitelist/subscription lookup collaborator
type WhitelistConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OTPConfig contains one-time-code configuration
type OTPConfig struct {
	TTL           time.Duration // Code validity window
	SweepInterval time.Duration // Cadence of the expired-code sweep
}

// WorkerPoolConfig contains callback worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent callback reconciliations
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.TransactionTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_TRANSACTION_TOPIC is required")
	}
	if c.Kafka.MandateTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_MANDATE_TOPIC is required")
	}
	if c.Kafka.OTPTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_OTP_TOPIC is required")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_PRODUCER_MAX_WAIT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Gateway config
	if c.Gateway.BaseURL == "" {
		validationErrors = append(validationErrors, "GATEWAY_BASE_URL is required")
	}
	if c.Gateway.TargetEnvironment == "" {
		validationErrors = append(validationErrors, "GATEWAY_TARGET_ENVIRONMENT is required")
	}
	if c.Gateway.CollectionSubscriptionKey == "" {
		validationErrors = append(validationErrors, "GATEWAY_COLLECTION_SUBSCRIPTION_KEY is required")
	}
	if c.Gateway.DisbursementSubscriptionKey == "" {
		validationErrors = append(validationErrors, "GATEWAY_DISBURSEMENT_SUBSCRIPTION_KEY is required")
	}
	if c.Gateway.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "GATEWAY_REQUEST_TIMEOUT must be greater than 0")
	}
	if c.Gateway.TokenRefreshInterval <= 0 {
		validationErrors = append(validationErrors, "GATEWAY_TOKEN_REFRESH_INTERVAL must be greater than 0")
	}
	if c.Gateway.TokenDefaultTTL <= 0 {
		validationErrors = append(validationErrors, "GATEWAY_TOKEN_DEFAULT_TTL must be greater than 0")
	}

	// Validate Whitelist config
	if c.Whitelist.BaseURL == "" {
		validationErrors = append(validationErrors, "WHITELIST_BASE_URL is required")
	}
	if c.Whitelist.Timeout <= 0 {
		validationErrors = append(validationErrors, "WHITELIST_TIMEOUT must be greater than 0")
	}

	// Validate OTP config
	if c.OTP.TTL <= 0 {
		validationErrors = append(validationErrors, "OTP_TTL must be greater than 0")
	}
	if c.OTP.SweepInterval <= 0 {
		validationErrors = append(validationErrors, "OTP_SWEEP_INTERVAL must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
