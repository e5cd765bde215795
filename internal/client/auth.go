package client

import (
	"context"
	"errors"
	"net/http"
)

// User is the profile returned at sign-in
type User struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
}

// SigninResult carries the issued token. The caller starts the session.
type SigninResult struct {
	Token   string
	User    User
	Message string
}

// SignupRequest is the sign-up payload
type SignupRequest struct {
	FullName     string `json:"fullname"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	MobileNumber string `json:"mobilenumber"`
	Password     string `json:"password"`
}

// Signin exchanges credentials for a bearer token
func (c *Client) Signin(ctx context.Context, email, password string) (*SigninResult, error) {
	envelope, err := c.do(ctx, http.MethodPost, "/signin", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	token := envelope.Get("access_token").String()
	if token == "" {
		return nil, errors.New("sign-in response has no access token")
	}
	user := envelope.Get("user")
	return &SigninResult{
		Token: token,
		User: User{
			ID:       uint(user.Get("id").Uint()),
			FullName: user.Get("fullname").String(),
			Email:    user.Get("email").String(),
			Gender:   user.Get("gender").String(),
		},
		Message: envelope.Get("message").String(),
	}, nil
}

// Signup registers an account and returns the new user's id. Field
// problems come back as *APIError with Fields set.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (uint, string, error) {
	envelope, err := c.do(ctx, http.MethodPost, "/signup", "", req)
	if err != nil {
		return 0, "", err
	}
	return uint(envelope.Get("user_id").Uint()), envelope.Get("message").String(), nil
}

// SendOTP asks for a one-time code and reset link for email
func (c *Client) SendOTP(ctx context.Context, email string) (string, error) {
	envelope, err := c.do(ctx, http.MethodPost, "/send-otp", "", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	return envelope.Get("message").String(), nil
}

// VerifyOTP checks a code and returns the reset token it unlocks
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	envelope, err := c.do(ctx, http.MethodPost, "/verify-otp", "", map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return "", err
	}
	token := envelope.Get("reset_token").String()
	if token == "" {
		return "", errors.New("verify response has no reset token")
	}
	return token, nil
}

// ResetPasswordWithOTP sets a new password using the token from VerifyOTP
func (c *Client) ResetPasswordWithOTP(ctx context.Context, resetToken, newPassword string) (string, error) {
	return c.resetPassword(ctx, "/reset-password-with-otp", resetToken, newPassword)
}

// ResetPassword sets a new password using the token from a reset link
func (c *Client) ResetPassword(ctx context.Context, linkToken, newPassword string) (string, error) {
	return c.resetPassword(ctx, "/reset-password", linkToken, newPassword)
}

func (c *Client) resetPassword(ctx context.Context, path, token, newPassword string) (string, error) {
	envelope, err := c.do(ctx, http.MethodPost, path, "", map[string]string{
		"reset_token":  token,
		"new_password": newPassword,
	})
	if err != nil {
		return "", err
	}
	return envelope.Get("message").String(), nil
}
