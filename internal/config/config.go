package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Limiter  LimiterConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	TrustedProxies []string
}

type AuthConfig struct {
	JWTSecret           string
	AccessTokenExpiry   time.Duration
	AuthRequestsPerMin  int // per-IP throttle on /login, /token and /signup
	UserRequestsPerMin  int // per-user throttle on authenticated routes
	CleanupInterval     time.Duration
	AttemptRetention    time.Duration
	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

// LimiterConfig drives the username lockout. The defaults (5 failures in
// 1 minute blocks for 30 minutes) are what clients are told to expect.
type LimiterConfig struct {
	MaxFailedAttempts int
	RecentWindow      time.Duration
	BlockWindow       time.Duration
}

// EmailConfig is optional; lockout notifications fall back to the log
// when FromAddress is empty.
type EmailConfig struct {
	AWSRegion   string
	FromAddress string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	limiter, err := loadLimiterConfig()
	if err != nil {
		return nil, err
	}

	retention, err := parseEnvDuration("LOGIN_ATTEMPT_RETENTION", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: loadDatabaseConfig(),
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
		},
		Auth: AuthConfig{
			JWTSecret:           jwtSecret,
			AccessTokenExpiry:   getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
			AuthRequestsPerMin:  getEnvAsInt("AUTH_REQUESTS_PER_MINUTE", 30),
			UserRequestsPerMin:  getEnvAsInt("USER_REQUESTS_PER_MINUTE", 300),
			CleanupInterval:     getEnvAsDuration("ATTEMPT_CLEANUP_INTERVAL", 1*time.Hour),
			AttemptRetention:    retention,
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 0),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 0),
		},
		Limiter: limiter,
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := cfg.Limiter.validate(); err != nil {
		return nil, err
	}

	// the limiter reads back max(recent, block) window; pruning must stay behind it
	if horizon := cfg.Limiter.lookback(); cfg.Auth.AttemptRetention < horizon {
		return nil, fmt.Errorf("LOGIN_ATTEMPT_RETENTION (%s) must not be shorter than the limiter lookback (%s, the larger of LOGIN_RECENT_WINDOW and LOGIN_BLOCK_WINDOW)",
			cfg.Auth.AttemptRetention, horizon)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. cmd/migrate uses it so
// schema changes do not need the API secrets.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	cfg := loadDatabaseConfig()
	if cfg.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	return &cfg, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvAsInt("DB_PORT", 5432),
		User:              getEnv("DB_USER", "expense_user"),
		Password:          getEnv("DB_PASSWORD", ""),
		Name:              getEnv("DB_NAME", "expense_tracker"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
		HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		ConnectTimeout:    getEnvAsDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		AutoMigrate:       getEnvAsBool("API_AUTO_MIGRATE", false),
	}
}

// loadLimiterConfig parses the LOGIN_* settings strictly. A value that is
// set but unparseable is an error rather than a silent default.
func loadLimiterConfig() (LimiterConfig, error) {
	var (
		c   LimiterConfig
		err error
	)
	if c.MaxFailedAttempts, err = parseEnvInt("LOGIN_MAX_FAILED_ATTEMPTS", 5); err != nil {
		return c, err
	}
	if c.RecentWindow, err = parseEnvDuration("LOGIN_RECENT_WINDOW", 1*time.Minute); err != nil {
		return c, err
	}
	if c.BlockWindow, err = parseEnvDuration("LOGIN_BLOCK_WINDOW", 30*time.Minute); err != nil {
		return c, err
	}
	return c, nil
}

// lookback is how far back the limiter ever queries the attempt log
func (c LimiterConfig) lookback() time.Duration {
	return max(c.RecentWindow, c.BlockWindow)
}

func (c LimiterConfig) validate() error {
	if c.MaxFailedAttempts < 1 {
		return fmt.Errorf("LOGIN_MAX_FAILED_ATTEMPTS must be positive (got %d)", c.MaxFailedAttempts)
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("LOGIN_RECENT_WINDOW must be positive")
	}
	if c.BlockWindow <= 0 {
		return fmt.Errorf("LOGIN_BLOCK_WINDOW must be positive")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example", "your-secret-key-here",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func parseEnvInt(key string, defaultVal int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	intVal, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, value)
	}
	return intVal, nil
}

func parseEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	duration, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 90s or 1m (got %q)", key, value)
	}
	return duration, nil
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return parseList(getEnv("ALLOWED_ORIGINS", ""))
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8000",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8000",
		"http://127.0.0.1:5173",
	}
}
