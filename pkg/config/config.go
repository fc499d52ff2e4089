package config

import (
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIRoot   = "https://api.zoom.us/v2/"
	DefaultOAuthRoot = "https://zoom.us/oauth/"
)

// Config holds the runtime configuration of a zoomapi client.
type Config struct {
	ServiceName string
	Env         string // "dev", "uat", "prod"
	LogLevel    string

	ClientID     string
	ClientSecret string
	// CredentialsSecret names an AWS Secrets Manager secret holding client_id and
	// client_secret. When set it overrides ClientID/ClientSecret.
	CredentialsSecret string
	AWSRegion         string
	SecretCacheTTL    time.Duration

	APIRoot     string
	OAuthRoot   string
	RedirectURI string

	HTTPTimeout       time.Duration // 0 = no client timeout
	FanOutLimit       int           // 0 = unbounded
	RequestsPerSecond float64       // 0 = no pacing
	Burst             int

	RedisAddr     string // empty = no redis token store
	RedisDB       int
	RedisPass     string
	TokenTTL      time.Duration
	DatabaseURL   string // empty = no postgres token store
	TokenStoreKey string
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:       GetEnv("SERVICE_NAME", "zoomapi"),
		Env:               GetEnv("ENV", "dev"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		ClientID:          GetEnv("ZM_CLIENT_ID", ""),
		ClientSecret:      GetEnv("ZM_CLIENT_SECRET", ""),
		CredentialsSecret: GetEnv("ZM_CREDENTIALS_SECRET", ""),
		AWSRegion:         GetEnv("AWS_REGION", "us-east-2"),
		SecretCacheTTL:    GetEnvDuration("ZM_SECRET_CACHE_TTL", 24*time.Hour),
		APIRoot:           GetEnv("ZM_API_ROOT", DefaultAPIRoot),
		OAuthRoot:         GetEnv("ZM_OAUTH_ROOT", DefaultOAuthRoot),
		RedirectURI:       GetEnv("ZM_REDIRECT_URI", ""),
		HTTPTimeout:       GetEnvDuration("ZM_HTTP_TIMEOUT", 0),
		FanOutLimit:       GetEnvInt("ZM_FANOUT_LIMIT", 0),
		RequestsPerSecond: GetEnvFloat("ZM_REQUESTS_PER_SECOND", 0),
		Burst:             GetEnvInt("ZM_BURST", 1),
		RedisAddr:         GetEnv("REDIS_ADDR", ""),
		RedisDB:           GetEnvInt("REDIS_DB", 0),
		RedisPass:         GetEnv("REDIS_PASS", ""),
		TokenTTL:          GetEnvDuration("ZM_TOKEN_TTL", 0),
		DatabaseURL:       GetEnv("DATABASE_URL", ""),
		TokenStoreKey:     GetEnv("ZM_TOKEN_STORE_KEY", "me"),
	}
}
