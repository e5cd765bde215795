package config

import (
	"fmt"     // Error formatting
	"net/url" // URL validation
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // Joining validation errors
	"time"    // Durations for TTLs

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration shared by the API server,
// the web client and the terminal client.
type Config struct {
	AppPort    string // API server port
	WebPort    string // Web client port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	TokenTTL   time.Duration
	RedisAddr  string // Redis server address, empty disables redis
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment
	LogLevel   string

	// OTP flow
	OTPTTL           time.Duration
	ResetTokenTTL    time.Duration
	OTPRatePerMinute int

	// AMQP notifier, empty URL falls back to logging
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Clients
	APIBaseURL   string // Base URL of the REST API including the /api prefix
	WebBaseURL   string // Public URL of the web client, used in reset links
	CookieSecure bool
	PageSize     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getEnv("APP_PORT", "8000"),
		WebPort:    getEnv("WEB_PORT", "5173"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "finance_tracker"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 30*time.Minute),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		IsProd:     os.Getenv("IS_PROD") == "true",
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		OTPTTL:           getEnvDuration("OTP_TTL", 10*time.Minute),
		ResetTokenTTL:    getEnvDuration("RESET_TOKEN_TTL", 15*time.Minute),
		OTPRatePerMinute: getEnvInt("OTP_RATE_PER_MINUTE", 3),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "otp_mail"),

		APIBaseURL:   getEnv("API_BASE_URL", "http://127.0.0.1:8000/api"),
		WebBaseURL:   getEnv("WEB_BASE_URL", "http://127.0.0.1:5173"),
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",
		PageSize:     getEnvInt("PAGE_SIZE", 5),
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// Validate checks the settings needed by the API server and returns every
// problem in a single error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.AppPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid APP_PORT %q", c.AppPort))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if c.IsProd && len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}
	if c.DBUser == "" || c.DBName == "" {
		problems = append(problems, "DB_USER and DB_NAME are required")
	}
	if c.TokenTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("TOKEN_TTL %v must be at least 1m", c.TokenTTL))
	}
	if c.OTPTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("OTP_TTL %v must be at least 1m", c.OTPTTL))
	}
	if c.OTPRatePerMinute < 1 {
		problems = append(problems, "OTP_RATE_PER_MINUTE must be at least 1")
	}
	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL %q: scheme must be amqp or amqps", c.AMQPURL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateClient checks the settings needed by the web and terminal clients.
func (c *Config) ValidateClient() error {
	var problems []string

	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid API_BASE_URL %q", c.APIBaseURL))
	}
	if port, err := strconv.Atoi(c.WebPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid WEB_PORT %q", c.WebPort))
	}
	if c.PageSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid PAGE_SIZE %d: must be at least 1", c.PageSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
