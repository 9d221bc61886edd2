package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string
	AgentID     string

	// Collection gateway configuration
	GatewayBaseURL  string
	GatewayTokenURL string
	GatewayClientID string
	GatewaySecret   string
	GatewayPartner  string
	GatewayKeyID    string
	GatewayHMACKey  string

	// Redis configuration
	RedisURL   string
	SessionTTL time.Duration

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string

	// Download configuration
	DownloadDir string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AgentID:     getEnv("AGENT_ID", ""),

		// Gateway
		GatewayBaseURL:  getEnv("GATEWAY_BASE_URL", "https://uat.gateway.local"),
		GatewayTokenURL: getEnv("GATEWAY_TOKEN_URL", "https://uat.gateway.local/oauth/token"),
		GatewayClientID: getEnv("GATEWAY_CLIENT_ID", ""),
		GatewaySecret:   getEnv("GATEWAY_CLIENT_SECRET", ""),
		GatewayPartner:  getEnv("GATEWAY_PARTNER_ID", ""),
		GatewayKeyID:    getEnv("GATEWAY_KEY_ID", ""),
		GatewayHMACKey:  getEnv("GATEWAY_HMAC_KEY", ""),

		// Redis
		RedisURL:   getEnv("REDIS_URL", "localhost:6379"),
		SessionTTL: getEnvAsDuration("SESSION_TTL", "30m"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),

		// Downloads
		DownloadDir: getEnv("DOWNLOAD_DIR", "downloads"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
