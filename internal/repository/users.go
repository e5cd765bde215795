package repository

import (
	"context" // Request-scoped queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"finance_tracker/internal/domain" // Domain models

	sqlmysql "github.com/go-sql-driver/mysql" // MySQL error codes
	"gorm.io/gorm"                            // GORM ORM library
)

var (
	// ErrNotFound is returned for missing rows and rows owned by another user
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value
	ErrDuplicate = errors.New("duplicate record")
)

const mysqlDuplicateEntry = 1062

// UserRepository persists accounts
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and fills in its ID
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail looks a user up by lower-cased email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// FindConflict returns the first user holding either the email or the mobile
// number, or ErrNotFound when both are free.
func (r *UserRepository) FindConflict(ctx context.Context, email, mobile string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ? OR mobile_number = ?", email, mobile).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("find conflicting user: %w", err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *sqlmysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
