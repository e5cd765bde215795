package middleware

import (
	"context"  // Lookup context
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain"     // Domain models
	"finance_tracker/internal/repository" // Repository sentinels

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// AccountLookup finds the account behind a token
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RequireAccount rejects tokens whose account no longer exists or whose
// email now belongs to a different account. It runs after JWTAuthMiddleware.
func RequireAccount(users AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)        // Get userID from context
		email := c.GetString(EmailKey) // Get email from context
		// Check if the JWT middleware ran
		if !ok || email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
			return
		}
		user, err := users.FindByEmail(c.Request.Context(), email) // Fetch user from database
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Token account lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
			return
		}
		// Deleted or replaced account, treat the token as invalid
		if user == nil || user.ID != userID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid authentication credentials"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
