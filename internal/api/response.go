package api

import (
	"context"  // Store interfaces
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain" // Domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// Response envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// UserStore is the account persistence used by the auth handlers
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindConflict(ctx context.Context, email, mobile string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
}

// recordPtr constrains P to be a pointer to T implementing domain.Record
type recordPtr[T any] interface {
	*T
	domain.Record
}

// RecordStore is the per-user record persistence used by the CRUD handlers
type RecordStore[T any, P recordPtr[T]] interface {
	List(ctx context.Context, userID uint) ([]T, error)
	Create(ctx context.Context, userID uint, rec P) error
	Update(ctx context.Context, userID, id uint, rec P) error
	Delete(ctx context.Context, userID, id uint) error
}

// respondError writes an error envelope
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": StatusError, "message": message})
}

// respondValidation writes a 400 envelope carrying per-field errors
func respondValidation(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": StatusError, "message": "Validation failed", "errors": errs})
}

// respondData writes a success envelope with a data payload
func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"status": StatusSuccess, "message": message, "data": data})
}
