package main

import (
	"context"   // Signal-bound lifecycle
	"os"        // Process signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM

	"finance_tracker/internal/client"     // REST API client
	"finance_tracker/internal/config"     // Configuration
	"finance_tracker/internal/httpserver" // Serve and graceful shutdown
	"finance_tracker/internal/middleware" // Metrics
	"finance_tracker/internal/session"    // Token cookie options
	"finance_tracker/internal/web"        // Server-rendered pages

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main function to set up and run the web client
func main() {
	cfg := config.LoadConfig() // Load configuration
	cfg.ConfigureLogging()
	if err := cfg.ValidateClient(); err != nil {
		logrus.Fatal(err)
	}

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := web.New(web.Options{
		API: client.New(client.Config{BaseURL: cfg.APIBaseURL}),
		Cookie: session.CookieOptions{
			Secure: cfg.CookieSecure,
			MaxAge: cfg.TokenTTL, // Expire with the token
		},
		PageSize: cfg.PageSize,
		Metrics:  middleware.NewMetrics(),
	})
	if err != nil {
		logrus.Fatalf("failed to load templates: %v", err)
	}

	router := server.Router()
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithField("api", cfg.APIBaseURL).Info("Web client configured")
	srv := httpserver.New(":"+cfg.WebPort, router)
	if err := httpserver.ListenAndRun(ctx, srv); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
