package api

import (
	"context"  // Request-scoped lookups
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token lifetime

	"finance_tracker/internal/domain"     // Domain models and validation rules
	"finance_tracker/internal/repository" // Repository sentinels
	"finance_tracker/internal/utils"      // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// bcryptCost is lowered by tests
var bcryptCost = bcrypt.DefaultCost

// SignupRequest is the sign-up form payload
type SignupRequest struct {
	FullName     string `json:"fullname"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	MobileNumber string `json:"mobilenumber"`
	Password     string `json:"password"`
}

// SigninRequest is the sign-in form payload
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserView is the public part of an account returned at sign-in
type UserView struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
}

// validate normalises the request in place and returns field errors
func (r *SignupRequest) validate() map[string]string {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Gender = strings.TrimSpace(r.Gender)
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)

	errs := map[string]string{}
	if msg := domain.ValidateFullName(r.FullName); msg != "" {
		errs["fullname"] = msg
	}
	if msg := domain.ValidateEmail(r.Email); msg != "" {
		errs["email"] = msg
	}
	if msg := domain.ValidateGender(r.Gender); msg != "" {
		errs["gender"] = msg
	}
	if msg := domain.ValidateMobile(r.MobileNumber); msg != "" {
		errs["mobilenumber"] = msg
	}
	if msg := domain.ValidatePassword(r.Password); msg != "" {
		errs["password"] = msg
	}
	return errs
}

// hashPassword hashes a plain password with bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

// conflictErrors adds a field error for an email or mobile number that is
// already registered
func conflictErrors(ctx context.Context, users UserStore, req *SignupRequest, errs map[string]string) error {
	existing, err := users.FindConflict(ctx, req.Email, req.MobileNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	if existing.Email == req.Email {
		errs["email"] = "Email already registered"
	}
	if existing.MobileNumber == req.MobileNumber {
		errs["mobilenumber"] = "Mobile number already registered"
	}
	return nil
}

// SignupHandler registers a new account
func SignupHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		errs := req.validate() // Collect every field error at once
		if err := conflictErrors(c.Request.Context(), users, &req, errs); err != nil {
			logrus.WithFields(logrus.Fields{"email": req.Email, "error": err.Error()}).Error("Signup lookup failed")
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}
		if len(errs) > 0 {
			respondValidation(c, errs)
			return
		}
		// Hash the password and create the user
		hash, err := hashPassword(req.Password)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		user := domain.User{
			FullName:     req.FullName,
			Email:        req.Email,
			Gender:       req.Gender,
			MobileNumber: req.MobileNumber,
			Password:     hash,
		}
		if err := users.Create(c.Request.Context(), &user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// Lost a race with a concurrent sign-up; find out which field clashed
				errs := map[string]string{}
				if err := conflictErrors(c.Request.Context(), users, &req, errs); err != nil || len(errs) == 0 {
					errs["email"] = "Email already registered"
				}
				respondValidation(c, errs)
				return
			}
			logrus.WithFields(logrus.Fields{"email": req.Email, "error": err.Error()}).Error("Signup failed")
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"status": StatusSuccess, "message": "User registered successfully", "user_id": user.ID})
	}
}

// SigninHandler authenticates a user and returns a bearer token
func SigninHandler(users UserStore, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SigninRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || req.Password == "" {
			respondError(c, http.StatusBadRequest, "Email and password are required")
			return
		}
		user, err := users.FindByEmail(c.Request.Context(), email) // Fetch user from database
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("Signin lookup failed")
			respondError(c, http.StatusInternalServerError, "Login failed")
			return
		}
		// Unknown email and wrong password look the same to the caller
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret, ttl) // Generate JWT token
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Token generation failed")
			respondError(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       StatusSuccess,
			"message":      "Login successful",
			"access_token": token,
			"token_type":   "bearer",
			"user":         UserView{ID: user.ID, FullName: user.FullName, Email: user.Email, Gender: user.Gender},
		})
	}
}
