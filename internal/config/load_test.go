package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"
	testEnvironment := "mtnghana"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nGATEWAY_TARGET_ENVIRONMENT=%s\n"+
			"GATEWAY_COLLECTION_SUBSCRIPTION_KEY=col-key\nGATEWAY_DISBURSEMENT_SUBSCRIPTION_KEY=dis-key\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers, testEnvironment,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)
	assert.Equal(t, testEnvironment, cfg.Gateway.TargetEnvironment)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "transaction_events", cfg.Kafka.TransactionTopic)
	assert.Equal(t, "mandate_events", cfg.Kafka.MandateTopic)
	assert.Equal(t, "otp_events", cfg.Kafka.OTPTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 8*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, 45*time.Minute, cfg.Gateway.TokenRefreshInterval)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy") // Viper will look for configs/test_happy.env
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	// Test LoadConfigWithNameAndType
	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_MissingSubscriptionKeys(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Defaults leave the subscription keys empty, so validation must fail
	_, err = LoadConfig("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY_COLLECTION_SUBSCRIPTION_KEY")
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{
		Application: ApplicationConfig{Env: v.GetString("APP_ENV"), Name: v.GetString("APP_NAME")},
		Logging:     LoggingConfig{Level: v.GetString("LOG_LEVEL")},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Brokers:           v.GetString("KAFKA_BROKERS"),
			TransactionTopic:  v.GetString("KAFKA_TRANSACTION_TOPIC"),
			MandateTopic:      v.GetString("KAFKA_MANDATE_TOPIC"),
			OTPTopic:          v.GetString("KAFKA_OTP_TOPIC"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			MaxWait:           v.GetDuration("KAFKA_PRODUCER_MAX_WAIT"),
		},
		Postgres: PostgresConfig{
			URL:             v.GetString("POSTGRES_URL"),
			MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
			MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
			ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGO_URI"),
			Database:        v.GetString("MONGO_DATABASE"),
			Timeout:         v.GetDuration("MONGO_TIMEOUT"),
			MaxPoolSize:     uint64(v.GetInt("MONGO_MAX_POOL_SIZE")),
			MinPoolSize:     uint64(v.GetInt("MONGO_MIN_POOL_SIZE")),
			MaxConnIdleTime: v.GetDuration("MONGO_MAX_CONN_IDLE_TIME"),
		},
		Gateway: GatewayConfig{
			BaseURL:                     v.GetString("GATEWAY_BASE_URL"),
			TargetEnvironment:           v.GetString("GATEWAY_TARGET_ENVIRONMENT"),
			CollectionSubscriptionKey:   "col-key",
			DisbursementSubscriptionKey: "dis-key",
			RequestTimeout:              v.GetDuration("GATEWAY_REQUEST_TIMEOUT"),
			TokenRefreshInterval:        v.GetDuration("GATEWAY_TOKEN_REFRESH_INTERVAL"),
			TokenDefaultTTL:             v.GetDuration("GATEWAY_TOKEN_DEFAULT_TTL"),
		},
		Whitelist: WhitelistConfig{
			BaseURL: v.GetString("WHITELIST_BASE_URL"),
			Timeout: v.GetDuration("WHITELIST_TIMEOUT"),
		},
		OTP: OTPConfig{
			TTL:           v.GetDuration("OTP_TTL"),
			SweepInterval: v.GetDuration("OTP_SWEEP_INTERVAL"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
	}
	err := cfg.validate()
	assert.NoError(t, err, "Default config with subscription keys should be valid")
}

func TestConfig_Validate_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
	assert.Contains(t, err.Error(), "POSTGRES_URL")
	assert.Contains(t, err.Error(), "GATEWAY_BASE_URL")
	assert.Contains(t, err.Error(), "OTP_TTL")
}
