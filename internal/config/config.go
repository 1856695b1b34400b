package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Auth0     Auth0Config
	Session   SessionConfig
	ML        MLConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	AppName     string
	Version     string
	Environment string
	HTTPPort    string
	FrontendURL string
}

type PostgresConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	PoolMinConns   int32
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type Auth0Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string
	CallbackURL  string
}

type SessionConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type MLConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	Window  time.Duration
	APIMax  int
	AuthMax int
}

const (
	// ResolveBestEffort drops content ids that fail to resolve; ResolveFailFast
	// surfaces the first failure instead.
	ResolveBestEffort = "best_effort"
	ResolveFailFast   = "fail_fast"
)

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "allumino-backend"),
		Version:     opt("APP_VERSION", "1.0.0"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8080"),
		FrontendURL: opt("FRONTEND_URL", "http://localhost:3000"),
	}

	cfg.Postgres = PostgresConfig{
		Host:           opt("DB_HOST", "localhost"),
		Port:           opt("DB_PORT", "5432"),
		Name:           req("DB_NAME"),
		User:           req("DB_USER"),
		Password:       os.Getenv("DB_PASSWORD"),
		SSLMode:        opt("DB_SSL_MODE", "disable"),
		ConnectTimeout: optDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:   int32(optInt("DB_POOL_MIN_CONNS", 0)),
	}

	cfg.Mongo = MongoConfig{
		URI:      opt("MONGO_URI", "mongodb://localhost:27017"),
		Database: opt("MONGO_DB", "allumino"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	cfg.Auth0 = Auth0Config{
		Domain:       req("AUTH0_DOMAIN"),
		ClientID:     req("AUTH0_CLIENT_ID"),
		ClientSecret: req("AUTH0_CLIENT_SECRET"),
		Audience:     req("AUTH0_AUDIENCE"),
		CallbackURL:  opt("AUTH0_CALLBACK_URL", "http://localhost:8080/api/auth/callback"),
	}

	cfg.Session = SessionConfig{
		Secret:    req("SESSION_SECRET"),
		ExpiresIn: optDuration("SESSION_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.ML = MLConfig{
		BaseURL: opt("ML_SERVICE_URL", "http://localhost:5001"),
		Timeout: optDuration("ML_SERVICE_TIMEOUT", 10*time.Second),
	}

	cfg.RateLimit = RateLimitConfig{
		Window:  optDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		APIMax:  optInt("RATE_LIMIT_API_MAX", 100),
		AuthMax: optInt("RATE_LIMIT_AUTH_MAX", 10),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// ContentResolvePolicy controls how PathwayUsecase treats content ids that fail
// to resolve. Anything other than "fail_fast" means best-effort.
func ContentResolvePolicy() string {
	if strings.TrimSpace(os.Getenv("CONTENT_RESOLVE_POLICY")) == ResolveFailFast {
		return ResolveFailFast
	}
	return ResolveBestEffort
}

func (a AppConfig) IsDevelopment() bool {
	env := strings.ToLower(strings.TrimSpace(a.Environment))
	return env == "" || env == "development" || env == "dev" || env == "local"
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
