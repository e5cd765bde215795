package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("API_BASE_URL", "")

	cfg := LoadConfig()

	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.APIBaseURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "45m")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()

	assert.Equal(t, 45*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 0, cfg.RedisDB, "unparsable ints fall back to the default")
	assert.True(t, cfg.IsProd)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "fin"}
	assert.Equal(t, "app:pw@tcp(db:3306)/fin?parseTime=true", cfg.DSN())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppPort:          "8000",
			JWTSecret:        "secret",
			DBUser:           "app",
			DBName:           "fin",
			TokenTTL:         30 * time.Minute,
			OTPTTL:           10 * time.Minute,
			OTPRatePerMinute: 3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.AppPort = "abc" }, wantErr: "invalid APP_PORT"},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "short prod secret", mutate: func(c *Config) { c.IsProd = true }, wantErr: "at least 32 characters"},
		{name: "missing db", mutate: func(c *Config) { c.DBUser = "" }, wantErr: "DB_USER and DB_NAME"},
		{name: "bad amqp scheme", mutate: func(c *Config) { c.AMQPURL = "http://broker" }, wantErr: "invalid AMQP_URL"},
		{name: "tiny otp ttl", mutate: func(c *Config) { c.OTPTTL = time.Second }, wantErr: "OTP_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateClient(t *testing.T) {
	cfg := &Config{APIBaseURL: "http://127.0.0.1:8000/api", WebPort: "5173", PageSize: 5}
	require.NoError(t, cfg.ValidateClient())

	cfg.APIBaseURL = "not a url"
	cfg.PageSize = 0
	err := cfg.ValidateClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
	assert.Contains(t, err.Error(), "PAGE_SIZE")
}
