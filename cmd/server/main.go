package main

import (
	"context"   // Signal-bound lifecycle
	"os"        // Process signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM

	"finance_tracker/internal/api"        // API handlers and router
	"finance_tracker/internal/config"     // Configuration
	"finance_tracker/internal/db"         // Database connection
	"finance_tracker/internal/httpserver" // Serve and graceful shutdown
	"finance_tracker/internal/middleware" // Rate limiting and metrics
	"finance_tracker/internal/notify"     // OTP delivery
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/utils"      // Cache and OTP stores

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the API server
func main() {
	cfg := config.LoadConfig() // Load configuration
	cfg.ConfigureLogging()
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DSN(), cfg.LogLevel == "debug")
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Redis backs the dashboard cache and OTP state when configured
	var (
		cache utils.Cache    = utils.NewMemoryCache()
		codes utils.OTPStore = utils.NewMemoryOTPStore()
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewRedisCache(redisClient)
		codes = utils.NewRedisOTPStore(redisClient)
	} else {
		logrus.Warn("REDIS_ADDR not set, keeping cache and OTP state in memory")
	}

	// OTP messages go to the broker when configured, to the log otherwise
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logrus.Fatalf("failed to connect to AMQP: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	users := repository.NewUserRepository(conn)
	router := api.NewRouter(api.Deps{
		Users:    users,
		Expenses: repository.NewExpenseRepository(conn),
		Incomes:  repository.NewIncomeRepository(conn),
		Cache:    cache,
		Recovery: &api.Recovery{
			Users:      users,
			Codes:      codes,
			Notifier:   notifier,
			Limiter:    middleware.NewRateLimiter(cfg.OTPRatePerMinute),
			OTPTTL:     cfg.OTPTTL,
			ResetTTL:   cfg.ResetTokenTTL,
			WebBaseURL: cfg.WebBaseURL,
		},
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		OTPLimit:  middleware.NewRateLimiter(cfg.OTPRatePerMinute * 4),
		Metrics:   middleware.NewMetrics(),
	})

	// Set trusted proxies for Gin
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := httpserver.New(":"+cfg.AppPort, router)
	if err := httpserver.ListenAndRun(ctx, srv); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
