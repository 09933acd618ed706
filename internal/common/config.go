package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Batch    BatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	InMemory         bool
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// Storage modes
const (
	StorageModeGCS   = "gcs"
	StorageModeLocal = "local"
)

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Mode            string
	Bucket          string
	EmulatorHost    string
	CredentialsFile string
	LocalDir        string
	SignedURLTTL    time.Duration
	PutRetries      int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL      string
	Model        string
	APIKey       string
	Temperature  float32
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// BatchConfig holds orchestrator and queue configuration
type BatchConfig struct {
	Concurrency  int
	QueueWorkers int
	QueueSize    int
	JobTimeout   time.Duration
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first; variables
// already present in the environment are not overridden.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			InMemory:         getEnvAsBool("DB_INMEM", false),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			Mode:            strings.ToLower(getEnv("STORAGE_MODE", StorageModeLocal)),
			Bucket:          getEnv("GCS_BUCKET", ""),
			EmulatorHost:    getEnv("STORAGE_EMULATOR_HOST", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			LocalDir:        getEnv("LOCAL_STORAGE_DIR", "./tmp/storage"),
			SignedURLTTL:    getEnvAsDuration("SIGNED_URL_TTL", 15*time.Minute),
			PutRetries:      getEnvAsInt("STORAGE_PUT_RETRIES", 2),
		},
		LLM: LLMConfig{
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			Temperature:  getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			MaxRetries:   getEnvAsInt("OPENAI_MAX_RETRIES", 2),
			RetryBackoff: getEnvAsDuration("OPENAI_RETRY_BACKOFF", time.Second),
		},
		Batch: BatchConfig{
			Concurrency:  getEnvAsInt("BATCH_CONCURRENCY", 1),
			QueueWorkers: getEnvAsInt("QUEUE_WORKERS", 2),
			QueueSize:    getEnvAsInt("QUEUE_SIZE", 64),
			JobTimeout:   getEnvAsDuration("JOB_TIMEOUT", 15*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if !c.Database.InMemory && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required unless DB_INMEM is set", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	switch c.Storage.Mode {
	case StorageModeGCS:
		if c.Storage.Bucket == "" {
			return NewAppError("CONFIG_ERROR", "GCS_BUCKET is required when STORAGE_MODE=gcs", ErrInvalidInput)
		}
	case StorageModeLocal:
		if c.Storage.LocalDir == "" {
			return NewAppError("CONFIG_ERROR", "LOCAL_STORAGE_DIR is required when STORAGE_MODE=local", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "STORAGE_MODE must be gcs or local", ErrInvalidInput)
	}
	if c.Batch.Concurrency < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_CONCURRENCY must be >= 1", ErrInvalidInput)
	}
	return nil
}
