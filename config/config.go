package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Zarinpal          ZarinpalConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type ZarinpalConfig struct {
	MerchantID  string
	Sandbox     bool
	ZarinGate   bool
	HTTPTimeout time.Duration
	CallbackURL string
}

type JobsConfig struct {
	UnverifiedPollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	merchantID := strings.TrimSpace(os.Getenv("ZARINPAL_MERCHANT_ID"))
	if merchantID == "" {
		return nil, errors.New("ZARINPAL_MERCHANT_ID environment variable is required")
	}
	if _, err := uuid.Parse(merchantID); err != nil {
		return nil, errors.New("ZARINPAL_MERCHANT_ID must be a valid UUID")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "zarinpal-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Zarinpal: ZarinpalConfig{
			MerchantID:  merchantID,
			Sandbox:     getBoolEnv("ZARINPAL_SANDBOX", false),
			ZarinGate:   getBoolEnv("ZARINPAL_ZARINGATE", false),
			HTTPTimeout: getSecondsEnv("ZARINPAL_HTTP_TIMEOUT_SECONDS", 10*time.Second),
			CallbackURL: getEnv("ZARINPAL_CALLBACK_URL", ""),
		},
		Jobs: JobsConfig{
			UnverifiedPollInterval: getMinutesEnv("UNVERIFIED_POLL_INTERVAL_MINUTES", 15*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
