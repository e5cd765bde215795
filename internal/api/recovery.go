package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/notify"
	"finance_tracker/internal/repository"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether another OTP may be sent for a key
type Limiter interface {
	Allow(key string) bool
}

// Recovery serves the password-recovery endpoints
type Recovery struct {
	Users      UserStore
	Codes      utils.OTPStore
	Notifier   notify.Notifier
	Limiter    Limiter
	OTPTTL     time.Duration
	ResetTTL   time.Duration
	WebBaseURL string // Reset links point at <WebBaseURL>/reset-password
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// resetLink builds the one-shot link mailed next to the OTP
func (h *Recovery) resetLink(token string) string {
	return strings.TrimRight(h.WebBaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// SendOTP issues an OTP and a reset link for a registered email. Unknown
// emails get the same response so accounts cannot be enumerated.
func (h *Recovery) SendOTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if msg := domain.ValidateEmail(email); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
		if !h.Limiter.Allow(email) {
			respondError(c, http.StatusTooManyRequests, "Too many OTP requests, please try again later")
			return
		}

		const sent = "If the email is registered, an OTP has been sent"
		ctx := c.Request.Context()
		if _, err := h.Users.FindByEmail(ctx, email); errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("email", email).Debug("OTP requested for unknown email")
			c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": sent})
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("OTP lookup failed")
			respondError(c, http.StatusInternalServerError, "Failed to send OTP")
			return
		}

		code, err := utils.GenerateOTP()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
		linkToken := utils.NewResetToken()
		if err := h.Codes.SaveOTP(ctx, email, code, h.OTPTTL); err != nil {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("Saving OTP failed")
			respondError(c, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
		if err := h.Codes.SaveToken(ctx, linkToken, email, h.ResetTTL); err != nil {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("Saving reset link failed")
			respondError(c, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
		msg := notify.Message{
			Email:     email,
			OTP:       code,
			ResetLink: h.resetLink(linkToken),
			ExpiresAt: time.Now().Add(h.OTPTTL).UTC(),
		}
		if err := h.Notifier.SendOTP(ctx, msg); err != nil {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("OTP delivery failed")
			respondError(c, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": sent})
	}
}

// VerifyOTP exchanges a valid OTP for a reset token
func (h *Recovery) VerifyOTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		code := strings.TrimSpace(req.OTP)
		if msg := domain.ValidateEmail(email); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}
		if msg := domain.ValidateOTP(code); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		ctx := c.Request.Context()
		switch err := h.Codes.VerifyOTP(ctx, email, code); {
		case errors.Is(err, utils.ErrOTPInvalid):
			respondError(c, http.StatusBadRequest, "Invalid OTP")
			return
		case errors.Is(err, utils.ErrOTPExpired):
			respondError(c, http.StatusBadRequest, "OTP expired or not requested")
			return
		case errors.Is(err, utils.ErrOTPAttempts):
			respondError(c, http.StatusTooManyRequests, "Too many attempts, request a new OTP")
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("OTP verification failed")
			respondError(c, http.StatusInternalServerError, "Failed to verify OTP")
			return
		}

		token := utils.NewResetToken()
		if err := h.Codes.SaveToken(ctx, token, email, h.ResetTTL); err != nil {
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("Saving reset token failed")
			respondError(c, http.StatusInternalServerError, "Failed to verify OTP")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": "OTP verified", "reset_token": token})
	}
}

// ResetPassword sets a new password given a reset token from either the OTP
// flow or the mailed link. Tokens are consumed on first use.
func (h *Recovery) ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if strings.TrimSpace(req.ResetToken) == "" {
			respondError(c, http.StatusBadRequest, "Reset token is required")
			return
		}
		if msg := domain.ValidatePassword(req.NewPassword); msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		ctx := c.Request.Context()
		email, err := h.Codes.ConsumeToken(ctx, req.ResetToken)
		if errors.Is(err, utils.ErrTokenInvalid) {
			respondError(c, http.StatusBadRequest, "Invalid or expired reset token")
			return
		} else if err != nil {
			logrus.WithField("error", err.Error()).Error("Reset token lookup failed")
			respondError(c, http.StatusInternalServerError, "Failed to reset password")
			return
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to reset password")
			return
		}
		if err := h.Users.UpdatePassword(ctx, email, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, http.StatusBadRequest, "Invalid or expired reset token")
				return
			}
			logrus.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Error("Password update failed")
			respondError(c, http.StatusInternalServerError, "Failed to reset password")
			return
		}
		logrus.WithField("email", email).Info("Password reset")
		c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": "Password reset successfully"})
	}
}
