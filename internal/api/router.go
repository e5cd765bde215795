package api

import (
	"time" // Token lifetime

	"finance_tracker/internal/domain"     // Domain models
	"finance_tracker/internal/middleware" // Auth, logging, metrics and rate limiting
	"finance_tracker/internal/utils"      // Dashboard cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Deps are the collaborators of the REST API
type Deps struct {
	Users     UserStore
	Expenses  RecordStore[domain.Expense, *domain.Expense]
	Incomes   RecordStore[domain.Income, *domain.Income]
	Cache     utils.Cache
	Recovery  *Recovery
	JWTSecret string
	TokenTTL  time.Duration
	OTPLimit  *middleware.RateLimiter // Per client IP limit on the OTP endpoints
	Metrics   *middleware.Metrics     // Optional, exposes /metrics when set
}

// NewRouter builds the REST API engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logrus.StandardLogger()))
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
		r.GET("/metrics", gin.WrapH(d.Metrics.Exporter()))
	}

	api := r.Group("/api")
	api.GET("/health", HealthHandler())

	// Auth routes
	api.POST("/signup", SignupHandler(d.Users))
	api.POST("/signin", SigninHandler(d.Users, d.JWTSecret, d.TokenTTL))

	// Password recovery routes
	recovery := api.Group("")
	if d.OTPLimit != nil {
		recovery.Use(d.OTPLimit.Handler())
	}
	recovery.POST("/send-otp", d.Recovery.SendOTP())
	recovery.POST("/verify-otp", d.Recovery.VerifyOTP())
	recovery.POST("/reset-password-with-otp", d.Recovery.ResetPassword())
	recovery.POST("/reset-password", d.Recovery.ResetPassword())

	// Record routes (protected by JWT)
	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.RequireAccount(d.Users))
	authed.GET("/dashboard", DashboardHandler(d.Expenses, d.Incomes, d.Cache))

	expenses := &RecordHandlers[domain.Expense, *domain.Expense]{Store: d.Expenses, Cache: d.Cache, Name: "Expense"}
	authed.GET("/expenses", expenses.List())
	authed.POST("/expenses", expenses.Create())
	authed.PUT("/expenses/:id", expenses.Update())
	authed.DELETE("/expenses/:id", expenses.Delete())

	incomes := &RecordHandlers[domain.Income, *domain.Income]{Store: d.Incomes, Cache: d.Cache, Name: "Income"}
	authed.GET("/incomes", incomes.List())
	authed.POST("/incomes", incomes.Create())
	authed.PUT("/incomes/:id", incomes.Update())
	authed.DELETE("/incomes/:id", incomes.Delete())

	return r
}
