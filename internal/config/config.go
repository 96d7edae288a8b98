package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTableBindings string
	SNSTopicARN         string // empty disables the SNS notifier

	// ServiceTokenSecret signs the bearer tokens the interactive front-end
	// uses on the session-management routes. Empty leaves those routes open
	// (development only).
	ServiceTokenSecret string
	ServiceTokenExpiry time.Duration

	SessionTTL time.Duration
	LockTTL    time.Duration

	// DeleteOnFailedSignature makes a failed signature check terminal instead
	// of leaving the session alive for resubmission until its TTL.
	DeleteOnFailedSignature bool

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3001"),
		AppEnv:  getEnv("APP_ENV", "development"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTableBindings: getEnv("DYNAMO_TABLE_WALLET_BINDINGS", "wallet_bindings"),
		SNSTopicARN:         getEnv("SNS_TOPIC_ARN", ""),

		ServiceTokenSecret: getEnv("SERVICE_TOKEN_SECRET", ""),
		ServiceTokenExpiry: getEnvDuration("SERVICE_TOKEN_EXPIRY", 24*time.Hour),

		SessionTTL: getEnvDuration("SESSION_TTL", 5*time.Minute),
		LockTTL:    getEnvDuration("LOCK_TTL", 30*time.Second),

		DeleteOnFailedSignature: getEnvBool("DELETE_ON_FAILED_SIGNATURE", false),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
