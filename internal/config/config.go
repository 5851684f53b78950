package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	Relay     RelayConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DBConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Pass        string
	Name        string
	SSLMode     string
	DSN         string
	AutoMigrate bool
}

// AuthConfig selects how bearer tokens are turned into caller identities.
// Mode "jwt" verifies HS256 tokens locally, mode "remote" asks the
// identity service at URL.
type AuthConfig struct {
	Mode        string
	JWTSecret   string
	JWTAudience string
	URL         string
	APIKey      string
	Timeout     time.Duration
}

// RelayConfig holds the hard bounds applied to every relayed request.
type RelayConfig struct {
	Timeout         time.Duration
	MaxBodyBytes    int64
	MaxRedirects    int
	StoreTimeout    time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
	HistoryLimit    int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelemetryConfig struct {
	ServiceName string
	Endpoint    string
	Insecure    bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	DefaultRelayTimeout      = 20 * time.Second
	DefaultRelayMaxBodyBytes = 5 * 1024 * 1024 // 5 MiB
	DefaultRelayMaxRedirects = 10
	DefaultStoreTimeout      = 5 * time.Second
	DefaultHistoryLimit      = 25
)

// DefaultRelayConfig returns the relay bounds used when no overrides are set.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Timeout:         DefaultRelayTimeout,
		MaxBodyBytes:    DefaultRelayMaxBodyBytes,
		MaxRedirects:    DefaultRelayMaxRedirects,
		StoreTimeout:    DefaultStoreTimeout,
		RateLimitWindow: time.Minute,
		HistoryLimit:    DefaultHistoryLimit,
	}
}

func LoadConfig() (*Config, error) {
	dbConfig, err := loadDBConfig()
	if err != nil {
		return nil, err
	}

	authConfig, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	relayConfig, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisConfig := RedisConfig{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	serverConfig := ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: relayConfig.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	telemetryConfig := TelemetryConfig{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "suar-relay"),
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"), "true"),
	}

	return &Config{
		Server:    serverConfig,
		DB:        dbConfig,
		Auth:      authConfig,
		Relay:     relayConfig,
		Redis:     redisConfig,
		Telemetry: telemetryConfig,
		CORS:      CORSConfig{AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))},
	}, nil
}

func loadDBConfig() (DBConfig, error) {
	driver := strings.ToLower(getEnv("STORE_DRIVER", "postgres"))
	if driver != "postgres" && driver != "memory" {
		return DBConfig{}, fmt.Errorf("invalid STORE_DRIVER: %q", driver)
	}

	dbConfig := DBConfig{
		Driver:      driver,
		AutoMigrate: strings.EqualFold(os.Getenv("DB_AUTO_MIGRATE"), "true"),
	}
	if driver == "memory" {
		return dbConfig, nil
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return DBConfig{}, fmt.Errorf("invalid DB_PORT: %v", err)
	}

	dbConfig.Host = getEnv("DB_HOST", "localhost")
	dbConfig.Port = dbPort
	dbConfig.User = os.Getenv("DB_USER")
	dbConfig.Pass = os.Getenv("DB_PASS")
	dbConfig.Name = os.Getenv("DB_NAME")
	dbConfig.SSLMode = getEnv("DB_SSLMODE", "disable")
	dbConfig.DSN = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Pass, dbConfig.Name, dbConfig.SSLMode,
	)
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		dbConfig.DSN = dsn
	}

	return dbConfig, nil
}

func loadAuthConfig() (AuthConfig, error) {
	timeout, err := getEnvDuration("AUTH_TIMEOUT", 5*time.Second)
	if err != nil {
		return AuthConfig{}, err
	}

	authConfig := AuthConfig{
		Mode:        strings.ToLower(getEnv("AUTH_MODE", "jwt")),
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		JWTAudience: strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		URL:         strings.TrimRight(strings.TrimSpace(os.Getenv("AUTH_URL")), "/"),
		APIKey:      os.Getenv("AUTH_API_KEY"),
		Timeout:     timeout,
	}

	switch authConfig.Mode {
	case "jwt":
		if authConfig.JWTSecret == "" {
			return AuthConfig{}, fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case "remote":
		if authConfig.URL == "" {
			return AuthConfig{}, fmt.Errorf("AUTH_URL is required when AUTH_MODE=remote")
		}
	default:
		return AuthConfig{}, fmt.Errorf("invalid AUTH_MODE: %q", authConfig.Mode)
	}

	return authConfig, nil
}

func loadRelayConfig() (RelayConfig, error) {
	relayConfig := DefaultRelayConfig()

	var err error
	if relayConfig.Timeout, err = getEnvDuration("RELAY_TIMEOUT", relayConfig.Timeout); err != nil {
		return RelayConfig{}, err
	}
	if relayConfig.StoreTimeout, err = getEnvDuration("STORE_TIMEOUT", relayConfig.StoreTimeout); err != nil {
		return RelayConfig{}, err
	}
	maxBody, err := getEnvInt("RELAY_MAX_BODY_BYTES", int(relayConfig.MaxBodyBytes))
	if err != nil {
		return RelayConfig{}, err
	}
	relayConfig.MaxBodyBytes = int64(maxBody)
	if relayConfig.MaxRedirects, err = getEnvInt("RELAY_MAX_REDIRECTS", relayConfig.MaxRedirects); err != nil {
		return RelayConfig{}, err
	}
	if relayConfig.RateLimit, err = getEnvInt("RELAY_RATE_LIMIT", 0); err != nil {
		return RelayConfig{}, err
	}

	if relayConfig.Timeout <= 0 || relayConfig.MaxBodyBytes <= 0 {
		return RelayConfig{}, fmt.Errorf("relay timeout and body limit must be positive")
	}

	return relayConfig, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
